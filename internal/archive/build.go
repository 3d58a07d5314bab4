// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"archive/zip"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/tfctl/pkgdiff/internal/failure"
	"github.com/tfctl/pkgdiff/internal/fsutil"
	"github.com/tfctl/pkgdiff/internal/ignore"
	"github.com/tfctl/pkgdiff/internal/log"
)

// BuildStats summarises a build.
type BuildStats struct {
	Files   int
	Skipped int
	Bytes   int64
}

// Build packs every regular file under diffRoot into a Deflate-compressed
// zip at outputZipPath. Entry names are paths relative to diffRoot with
// forward slashes; mode and modification time come from the file. Names
// matching filter are pruned (directories) or skipped (files).
//
// The parent directory of outputZipPath is created if needed and an
// existing archive at that path is replaced. The archive is written to a
// temporary sibling first so a failed build never leaves a truncated zip
// behind.
func Build(diffRoot, outputZipPath string, filter *ignore.Filter) (BuildStats, error) {
	var stats BuildStats
	log.Debugf("build: root=%s out=%s", diffRoot, outputZipPath)

	outDir := filepath.Dir(outputZipPath)
	if err := os.MkdirAll(outDir, fsutil.DefaultDirMode); err != nil {
		return stats, failure.NewIO("mkdir", outDir, err)
	}

	tmp, err := os.CreateTemp(outDir, ".pkgdiff-*.zip")
	if err != nil {
		return stats, failure.NewIO("create", outDir, err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	zw := zip.NewWriter(tmp)
	walkErr := filepath.WalkDir(diffRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return failure.NewIO("walk", path, err)
		}
		if path == diffRoot {
			return nil
		}
		if filter.ShouldIgnore(d.Name()) {
			stats.Skipped++
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(diffRoot, path)
		if err != nil {
			return failure.NewIO("rel", path, err)
		}
		n, err := addFile(zw, path, filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		stats.Files++
		stats.Bytes += n
		return nil
	})
	if walkErr != nil {
		return stats, walkErr
	}

	if err := zw.Close(); err != nil {
		return stats, &failure.ArchiveError{Op: "write", Path: outputZipPath, Cause: err}
	}
	if err := tmp.Close(); err != nil {
		return stats, failure.NewIO("close", tmpName, err)
	}
	// CreateTemp uses 0600; the archive is an ordinary artefact.
	if err := fsutil.ApplyPerm(tmpName, fsutil.DefaultFileMode); err != nil {
		return stats, failure.NewIO("chmod", tmpName, err)
	}
	if err := os.Rename(tmpName, outputZipPath); err != nil {
		return stats, failure.NewIO("rename", outputZipPath, err)
	}
	committed = true

	log.Debugf("build done: out=%s files=%d bytes=%d", outputZipPath, stats.Files, stats.Bytes)
	return stats, nil
}

func addFile(zw *zip.Writer, path, name string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, failure.NewIO("stat", path, err)
	}

	h, err := zip.FileInfoHeader(info)
	if err != nil {
		return 0, &failure.ArchiveError{Op: "header", Path: path, Cause: err}
	}
	h.Name = name
	h.Method = zip.Deflate

	w, err := zw.CreateHeader(h)
	if err != nil {
		return 0, &failure.ArchiveError{Op: "write", Path: name, Cause: err}
	}

	f, err := os.Open(path)
	if err != nil {
		return 0, failure.NewIO("open", path, err)
	}
	defer f.Close()

	n, err := io.Copy(w, f)
	if err != nil {
		return n, &failure.ArchiveError{Op: "write", Path: name, Cause: err}
	}
	return n, nil
}
