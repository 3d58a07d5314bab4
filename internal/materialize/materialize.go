// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package materialize copies comparator candidates into the diff tree.
package materialize

import (
	"iter"
	"path/filepath"

	"github.com/tfctl/pkgdiff/internal/failure"
	"github.com/tfctl/pkgdiff/internal/fsutil"
	"github.com/tfctl/pkgdiff/internal/log"
	"github.com/tfctl/pkgdiff/internal/tree"
)

// Stats counts what was copied.
type Stats struct {
	Modified int
	Added    int
	DevOnly  int
	Bytes    int64
}

// Files returns the total number of files copied.
func (s Stats) Files() int {
	return s.Modified + s.Added + s.DevOnly
}

// Materialize copies each candidate's SourcePath to diffRoot/RelPath,
// creating parent directories, replacing any existing file and carrying over
// the source's permission bits. The first error from seq or from a copy
// aborts the run.
func Materialize(seq iter.Seq2[tree.Candidate, error], diffRoot string) (Stats, error) {
	var stats Stats

	for c, err := range seq {
		if err != nil {
			return stats, err
		}

		dst := filepath.Join(diffRoot, filepath.FromSlash(c.RelPath))
		n, err := fsutil.CopyFile(c.SourcePath, dst)
		if err != nil {
			return stats, failure.NewIO("copy", c.SourcePath, err)
		}
		if err := fsutil.PreservePermissions(c.SourcePath, dst); err != nil {
			return stats, failure.NewIO("chmod", dst, err)
		}
		log.Debugf("materialize: path=%s kind=%s bytes=%d", c.RelPath, c.Kind, n)

		stats.Bytes += n
		switch c.Kind {
		case tree.Modified:
			stats.Modified++
		case tree.Added:
			stats.Added++
		case tree.DevOnly:
			stats.DevOnly++
		}
	}

	return stats, nil
}
