// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"os"
	"time"

	"github.com/tfctl/pkgdiff/internal/tree"
)

// Row is one planned file. The attr tags are the keys available to --attrs.
type Row struct {
	Path   string `attr:"path"`
	Kind   string `attr:"kind"`
	Size   int64  `attr:"size"`
	Mode   string `attr:"mode"`
	MTime  string `attr:"mtime"`
	Source string `attr:"source"`
}

// Dataset stats each candidate's content source and returns one row per
// candidate, keyed like Row's attr tags.
func Dataset(candidates []tree.Candidate) ([]map[string]interface{}, error) {
	rows := make([]map[string]interface{}, 0, len(candidates))
	for _, c := range candidates {
		fi, err := os.Stat(c.SourcePath)
		if err != nil {
			return nil, err
		}

		source := "test"
		if c.Kind == tree.DevOnly {
			source = "dev"
		}

		rows = append(rows, map[string]interface{}{
			"path":   c.RelPath,
			"kind":   c.Kind.String(),
			"size":   fi.Size(),
			"mode":   fi.Mode().Perm().String(),
			"mtime":  fi.ModTime().UTC().Format(time.RFC3339),
			"source": source,
		})
	}
	return rows, nil
}
