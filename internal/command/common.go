// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"

	"github.com/urfave/cli/v3"

	"github.com/tfctl/pkgdiff/internal/attrs"
	"github.com/tfctl/pkgdiff/internal/cacheutil"
	"github.com/tfctl/pkgdiff/internal/config"
	"github.com/tfctl/pkgdiff/internal/log"
	"github.com/tfctl/pkgdiff/internal/meta"
	"github.com/tfctl/pkgdiff/internal/output"
	"github.com/tfctl/pkgdiff/internal/util"
)

// ErrNoConfig is returned when neither --config nor PKGDIFF_CONFIG names a
// run configuration file.
var ErrNoConfig = errors.New("no run configuration: set --config or PKGDIFF_CONFIG")

// BuildAttrs constructs an AttrList from the plan defaults and optional
// extras from --attrs, then applies the global transform spec.
func BuildAttrs(cmd *cli.Command) (attrs.AttrList, error) {
	al := attrs.Defaults()
	if extras := cmd.String("attrs"); extras != "" {
		if err := al.Set(extras); err != nil {
			return nil, err
		}
	}
	if err := al.SetGlobalTransformSpec(); err != nil {
		return nil, err
	}
	return al, nil
}

// DumpSchemaIfRequested writes the plan dataset keys to w when --schema is
// set, and returns true if it handled the request.
func DumpSchemaIfRequested(cmd *cli.Command, t reflect.Type, w io.Writer) bool {
	if cmd.Bool("schema") {
		output.DumpSchema(t, w)
		return true
	}
	return false
}

// GetMeta returns the meta.Meta stored in the command's Metadata. If missing
// or of an unexpected type, it returns the zero value.
func GetMeta(cmd *cli.Command) meta.Meta {
	if cmd == nil || cmd.Metadata == nil {
		return meta.Meta{}
	}
	if m, ok := cmd.Metadata["meta"].(meta.Meta); ok {
		return m
	}
	return meta.Meta{}
}

// LoadRunConfig resolves the --config file and layers the command-line
// overrides on top of it. Booleans only override the file when given
// explicitly, so a file's keep_temp: true survives a bare invocation.
func LoadRunConfig(cmd *cli.Command) (config.RunConfig, error) {
	m := GetMeta(cmd)

	if cmd.String("config") == "" {
		return config.RunConfig{}, ErrNoConfig
	}

	path, err := util.ExpandPath(cmd.String("config"), m.StartingDir)
	if err != nil {
		return config.RunConfig{}, fmt.Errorf("config path: %w", err)
	}

	ov := config.Overrides{
		Ignore: cmd.StringSlice("ignore"),
	}
	if wd := cmd.String("work-dir"); wd != "" {
		if ov.WorkDir, err = util.ExpandPath(wd, m.StartingDir); err != nil {
			return config.RunConfig{}, fmt.Errorf("work-dir: %w", err)
		}
	}
	if cmd.IsSet("keep-temp") {
		v := cmd.Bool("keep-temp")
		ov.KeepTemp = &v
	}
	if cmd.IsSet("skip-dev-only") {
		v := cmd.Bool("skip-dev-only")
		ov.SkipDevOnly = &v
	}

	// Patterns from the user defaults file apply to every run.
	if global, _ := config.GetStringSlice("ignore_patterns"); len(global) > 0 {
		ov.Ignore = append(global, ov.Ignore...)
	}

	log.Debugf("overrides: workDir=%s keepTemp=%v skipDevOnly=%v ignore=%v",
		ov.WorkDir, ov.KeepTemp != nil, ov.SkipDevOnly != nil, ov.Ignore)

	return config.LoadRunConfig(filepath.Clean(path), ov)
}

// PurgeCache applies --cache-ttl. A purge failure is logged, never fatal.
func PurgeCache(cmd *cli.Command) {
	ttl := cmd.Int("cache-ttl")
	if ttl <= 0 {
		return
	}
	if err := cacheutil.Purge(ttl); err != nil {
		log.Warnf("cache purge failed: %v", err)
	}
}

// stdout and stderr return the root command's writers so tests can capture
// them.
func stdout(cmd *cli.Command) io.Writer {
	if root := cmd.Root(); root != nil && root.Writer != nil {
		return root.Writer
	}
	return os.Stdout
}

func stderr(cmd *cli.Command) io.Writer {
	if root := cmd.Root(); root != nil && root.ErrWriter != nil {
		return root.ErrWriter
	}
	return os.Stderr
}
