// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"os"
	"sort"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/tfctl/pkgdiff/internal/config"
	"github.com/tfctl/pkgdiff/internal/log"
	"github.com/tfctl/pkgdiff/internal/meta"
	"github.com/tfctl/pkgdiff/internal/run"
)

// storeFactory builds the S3 store for run and plan. Tests swap it for an
// in-memory fake.
var storeFactory run.StoreFactory = run.DefaultStore

func InitApp(ctx context.Context, args []string) (*cli.Command, error) {
	sd, _ := os.Getwd()

	// The arg[1] immediately following the binary (arg[0]) is the pkgdiff
	// subcommand and also represents the namespace key to be used when
	// retrieving config values. arg[1] could be -h/--help, so ignore it if it
	// appears to be a flag.
	var ns string
	if len(args) > 1 && !strings.HasPrefix(args[1], "-") {
		ns = args[1]
	}

	// A missing defaults file is normal; flags simply keep their defaults.
	cfg, err := config.Load(ns)
	if err != nil {
		log.Debugf("defaults not loaded: %v", err)
	}

	meta := meta.Meta{
		Args:         args,
		Config:       cfg,
		Context:      ctx,
		StartingDir:  sd,
		DefaultsFile: cfg.Source,
	}

	app := &cli.Command{
		Name:  "pkgdiff",
		Usage: "package the files that are new or changed between two archives",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "version",
				Aliases:     []string{"v"},
				Usage:       "pkgdiff version info",
				HideDefault: true,
			},
		},
	}

	app.Commands = append(app.Commands,
		runCommandBuilder(meta),
		planCommandBuilder(meta),
		completionCommandBuilder(meta),
	)

	// Make sure flags are sorted for the --help text.
	for _, cmd := range app.Commands {
		sort.Slice(cmd.Flags, func(i, j int) bool {
			return cmd.Flags[i].Names()[0] < cmd.Flags[j].Names()[0]
		})
	}

	return app, nil
}
