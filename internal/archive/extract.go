// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tfctl/pkgdiff/internal/failure"
	"github.com/tfctl/pkgdiff/internal/fsutil"
	"github.com/tfctl/pkgdiff/internal/ignore"
	"github.com/tfctl/pkgdiff/internal/log"
)

// ExtractStats summarises an extraction.
type ExtractStats struct {
	Files   int
	Dirs    int
	Skipped int
	Bytes   int64
}

// Extract unpacks the zip at zipPath into destDir. Members whose name matches
// filter, or that live under __MACOSX/, are skipped. File permission bits
// recorded in the archive are applied where the platform supports them.
//
// A missing, unreadable or corrupt zip, or a member that would be written
// outside destDir, yields a *failure.ArchiveError. Filesystem failures yield
// a *failure.IOError.
func Extract(zipPath, destDir string, filter *ignore.Filter) (ExtractStats, error) {
	var stats ExtractStats
	log.Debugf("extract: zip=%s dest=%s", zipPath, destDir)

	zr, err := zip.OpenReader(zipPath)
	if err != nil {
		return stats, openError(zipPath, err)
	}
	defer zr.Close()

	if err := os.MkdirAll(destDir, fsutil.DefaultDirMode); err != nil {
		return stats, failure.NewIO("mkdir", destDir, err)
	}

	for _, zf := range zr.File {
		if filter.ShouldIgnore(zf.Name) || strings.HasPrefix(zf.Name, macOSResourceDir) {
			log.Tracef("extract skip: entry=%s", zf.Name)
			stats.Skipped++
			continue
		}

		rel, err := entryPath(zf.Name)
		if err != nil {
			return stats, &failure.ArchiveError{Op: "extract", Path: zipPath, Cause: err}
		}
		if rel == "" {
			continue
		}
		target := filepath.Join(destDir, filepath.FromSlash(rel))

		if zf.FileInfo().IsDir() {
			if err := os.MkdirAll(target, fsutil.DefaultDirMode); err != nil {
				return stats, failure.NewIO("mkdir", target, err)
			}
			stats.Dirs++
			continue
		}

		n, err := extractFile(zf, target)
		if err != nil {
			return stats, err
		}
		stats.Files++
		stats.Bytes += n
	}

	log.Debugf("extract done: zip=%s files=%d dirs=%d skipped=%d",
		zipPath, stats.Files, stats.Dirs, stats.Skipped)
	return stats, nil
}

func extractFile(zf *zip.File, target string) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(target), fsutil.DefaultDirMode); err != nil {
		return 0, failure.NewIO("mkdir", filepath.Dir(target), err)
	}

	rc, err := zf.Open()
	if err != nil {
		return 0, &failure.ArchiveError{Op: "read", Path: zf.Name, Cause: err}
	}
	defer rc.Close()

	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return 0, failure.NewIO("remove", target, err)
	}
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, fsutil.DefaultFileMode)
	if err != nil {
		return 0, failure.NewIO("create", target, err)
	}

	n, err := io.Copy(out, memberReader{rc})
	if err != nil {
		_ = out.Close()
		var re memberReadError
		if errors.As(err, &re) {
			return n, &failure.ArchiveError{Op: "read", Path: zf.Name, Cause: re.err}
		}
		return n, failure.NewIO("write", target, err)
	}
	if err := out.Close(); err != nil {
		return n, failure.NewIO("close", target, err)
	}

	mode := zf.Mode()
	if mode.Perm() == 0 {
		mode = fsutil.DefaultFileMode
	}
	if err := fsutil.ApplyPerm(target, mode); err != nil {
		return n, failure.NewIO("chmod", target, err)
	}
	return n, nil
}

// memberReader tags read-side failures (checksum, inflate, truncation) so
// they are reported as archive corruption rather than local I/O trouble.
type memberReader struct {
	r io.Reader
}

type memberReadError struct {
	err error
}

func (e memberReadError) Error() string { return e.err.Error() }

func (e memberReadError) Unwrap() error { return e.err }

func (m memberReader) Read(p []byte) (int, error) {
	n, err := m.r.Read(p)
	if err != nil && err != io.EOF {
		return n, memberReadError{err}
	}
	return n, err
}

func openError(path string, err error) error {
	if os.IsNotExist(err) {
		return &failure.ArchiveError{Op: "open", Path: path, Cause: fmt.Errorf("no such archive: %w", err)}
	}
	return &failure.ArchiveError{Op: "open", Path: path, Cause: err}
}
