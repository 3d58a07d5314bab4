// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package meta

import (
	"context"

	"github.com/tfctl/pkgdiff/internal/config"
)

// Meta contains runtime metadata shared by commands. It carries CLI arguments,
// the loaded user defaults, context and the starting working directory, which
// anchors relative paths given on the command line.
type Meta struct {
	Args        []string
	Config      config.Type
	Context     context.Context
	StartingDir string
	// DefaultsFile is the user defaults file backing flag values, or empty
	// when none was found.
	DefaultsFile string
}
