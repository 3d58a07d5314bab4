// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package workspace owns the scratch directories of a single run. A
// workspace is not safe to share between concurrent runs; callers keep the
// root unique per invocation.
package workspace

import (
	"os"
	"path/filepath"

	"github.com/tfctl/pkgdiff/internal/failure"
	"github.com/tfctl/pkgdiff/internal/fsutil"
	"github.com/tfctl/pkgdiff/internal/log"
)

// Subdirectory names beneath the workspace root.
const (
	DevDirName      = "DEV_extracted"
	TestDirName     = "TEST_extracted"
	DiffDirName     = "DIFF"
	DownloadDirName = "DOWNLOAD"
	OutputDirName   = "OUTPUT"
)

// Paths are the directories of a prepared workspace.
type Paths struct {
	Root           string
	DevExtractDir  string
	TestExtractDir string
	DiffDir        string
}

// PathsFor derives the workspace layout for root without touching disk.
func PathsFor(root string) Paths {
	return Paths{
		Root:           root,
		DevExtractDir:  filepath.Join(root, DevDirName),
		TestExtractDir: filepath.Join(root, TestDirName),
		DiffDir:        filepath.Join(root, DiffDirName),
	}
}

// DownloadDir is where remote inputs are staged when not served from cache.
func (p Paths) DownloadDir() string {
	return filepath.Join(p.Root, DownloadDirName)
}

// OutputDir is where the archive is built before it is uploaded elsewhere.
func (p Paths) OutputDir() string {
	return filepath.Join(p.Root, OutputDirName)
}

// Prepare creates workDir if needed and recreates the three working
// subdirectories empty. Existing contents are destroyed, never merged.
func Prepare(workDir string) (Paths, error) {
	p := PathsFor(workDir)
	log.Debugf("workspace prepare: root=%s", workDir)

	if err := os.MkdirAll(workDir, fsutil.DefaultDirMode); err != nil {
		return p, failure.NewIO("mkdir", workDir, err)
	}
	for _, dir := range []string{p.DevExtractDir, p.TestExtractDir, p.DiffDir} {
		if err := os.RemoveAll(dir); err != nil {
			return p, failure.NewIO("remove", dir, err)
		}
		if err := os.Mkdir(dir, fsutil.DefaultDirMode); err != nil {
			return p, failure.NewIO("mkdir", dir, err)
		}
	}
	return p, nil
}

// Teardown removes the whole workspace root unless keep is set. Removing a
// root that does not exist is not an error.
func Teardown(p Paths, keep bool) error {
	if keep {
		log.Debugf("workspace kept: root=%s", p.Root)
		return nil
	}
	if p.Root == "" {
		return nil
	}
	log.Debugf("workspace teardown: root=%s", p.Root)
	if err := os.RemoveAll(p.Root); err != nil {
		return failure.NewIO("remove", p.Root, err)
	}
	return nil
}
