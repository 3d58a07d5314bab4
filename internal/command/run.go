// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/tfctl/pkgdiff/internal/log"
	"github.com/tfctl/pkgdiff/internal/meta"
	"github.com/tfctl/pkgdiff/internal/run"
)

// runCommandAction is the action handler for the "run" subcommand. It loads
// the run configuration and drives the whole pipeline, printing progress to
// stdout.
func runCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args)

	if cmd.String("config") == "" {
		return ErrNoConfig
	}

	out := stdout(cmd)
	fmt.Fprintf(out, "Loading configuration from %s...\n", cmd.String("config"))

	rc, err := LoadRunConfig(cmd)
	if err != nil {
		return err
	}
	log.Debugf("run config: source=%s dev=%s test=%s out=%s workDir=%s",
		rc.Source, rc.DevArchive, rc.TestArchive, rc.OutputArchive, rc.WorkDir)

	PurgeCache(cmd)

	runner := &run.Runner{Out: out, NewStore: storeFactory}
	res, err := runner.Run(ctx, rc)
	log.Debugf("run finished: phase=%s reached=%s failed=%v elapsed=%s",
		res.Phase, res.Reached, res.Failed, res.Elapsed)
	return err
}

// runCommandBuilder constructs the cli.Command for "run".
func runCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "build the diff archive of new and changed files",
		UsageText: "pkgdiff run --config FILE [options]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Flags:  NewRunFlags("run", meta.DefaultsFile),
		Action: runCommandAction,
	}
}
