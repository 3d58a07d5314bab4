// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package run

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tfctl/pkgdiff/internal/config"
	"github.com/tfctl/pkgdiff/internal/failure"
	"github.com/tfctl/pkgdiff/internal/fsutil"
	"github.com/tfctl/pkgdiff/internal/remote"
	"github.com/tfctl/pkgdiff/internal/testutil"
	"github.com/tfctl/pkgdiff/internal/tree"
	"github.com/tfctl/pkgdiff/internal/workspace"
)

type fixture struct {
	dir string
	rc  config.RunConfig
}

// newFixture writes the DEV and TEST zips and returns a config pointing at
// them with a work dir that does not exist yet.
func newFixture(t *testing.T, dev, test map[string]testutil.File) fixture {
	t.Helper()
	dir := t.TempDir()
	return fixture{
		dir: dir,
		rc: config.RunConfig{
			Source:        filepath.Join(dir, "pkgdiff.json"),
			DevArchive:    testutil.WriteZip(t, filepath.Join(dir, "in", "dev.zip"), dev),
			TestArchive:   testutil.WriteZip(t, filepath.Join(dir, "in", "test.zip"), test),
			OutputArchive: filepath.Join(dir, "out", "diff.zip"),
			WorkDir:       filepath.Join(dir, "work"),
		},
	}
}

func TestConcreteScenario(t *testing.T) {
	f := newFixture(t,
		map[string]testutil.File{"a.txt": {Content: "hello"}, "b.txt": {Content: "x"}},
		map[string]testutil.File{"a.txt": {Content: "hello"}, "b.txt": {Content: "y"}, "c.txt": {Content: "new"}},
	)
	var out bytes.Buffer

	res, err := (&Runner{Out: &out}).Run(context.Background(), f.rc)
	require.NoError(t, err)

	got := testutil.ReadZip(t, f.rc.OutputArchive)
	assert.Len(t, got, 2)
	assert.Equal(t, "y", got["b.txt"].Content)
	assert.Equal(t, "new", got["c.txt"].Content)
	assert.NotContains(t, got, "a.txt")

	assert.False(t, res.Failed)
	assert.Equal(t, TornDown, res.Phase)
	assert.Equal(t, ArchiveBuilt, res.Reached)
	assert.Equal(t, 1, res.Diff.Modified)
	assert.Equal(t, 1, res.Diff.Added)
	assert.Equal(t, 2, res.Archive.Files)
	assert.Equal(t, f.rc.OutputArchive, res.Output)

	progress := out.String()
	for _, line := range []string{
		"Extracting dev.zip...",
		"Extracting test.zip...",
		"Comparing trees and copying changed files...",
		"Creating archive diff.zip...",
		"Done! 2 files",
		"Cleaning up workspace...",
	} {
		assert.Contains(t, progress, line)
	}
}

func TestIdentity(t *testing.T) {
	files := map[string]testutil.File{
		"app/index.html":  {Content: "<html/>"},
		"app/bin/run.sh":  {Content: "#!/bin/sh\n", Mode: 0o755},
		"app/static/a.js": {Content: "let a = 1"},
	}
	f := newFixture(t, files, files)
	f.rc.TestArchive = f.rc.DevArchive

	res, err := (&Runner{}).Run(context.Background(), f.rc)
	require.NoError(t, err)
	assert.Empty(t, testutil.ReadZip(t, f.rc.OutputArchive))
	assert.Zero(t, res.Diff.Files())
}

func TestAdditionAndModificationCarryTestContentAndMode(t *testing.T) {
	f := newFixture(t,
		map[string]testutil.File{
			"bin/deploy.sh": {Content: "echo v1\n", Mode: 0o644},
			"same.txt":      {Content: "same"},
		},
		map[string]testutil.File{
			"bin/deploy.sh":   {Content: "echo v2\n", Mode: 0o755},
			"bin/rollback.sh": {Content: "echo back\n", Mode: 0o750},
			"same.txt":        {Content: "same"},
		},
	)

	_, err := (&Runner{}).Run(context.Background(), f.rc)
	require.NoError(t, err)

	got := testutil.ReadZip(t, f.rc.OutputArchive)
	require.Len(t, got, 2)
	assert.Equal(t, "echo v2\n", got["bin/deploy.sh"].Content)
	assert.Equal(t, "echo back\n", got["bin/rollback.sh"].Content)
	if fsutil.PermissionsSupported {
		assert.Equal(t, os.FileMode(0o755), got["bin/deploy.sh"].Mode)
		assert.Equal(t, os.FileMode(0o750), got["bin/rollback.sh"].Mode)
	}
}

func TestDevOnlyFiles(t *testing.T) {
	dev := map[string]testutil.File{"legacy.cfg": {Content: "old"}, "keep.txt": {Content: "k"}}
	test := map[string]testutil.File{"keep.txt": {Content: "k"}}

	t.Run("included with dev content", func(t *testing.T) {
		f := newFixture(t, dev, test)
		res, err := (&Runner{}).Run(context.Background(), f.rc)
		require.NoError(t, err)

		got := testutil.ReadZip(t, f.rc.OutputArchive)
		assert.Equal(t, map[string]testutil.Entry{"legacy.cfg": {Content: "old", Mode: 0o644}}, got)
		assert.Equal(t, 1, res.Diff.DevOnly)
	})

	t.Run("skipped", func(t *testing.T) {
		f := newFixture(t, dev, test)
		f.rc.SkipDevOnly = true
		_, err := (&Runner{}).Run(context.Background(), f.rc)
		require.NoError(t, err)
		assert.Empty(t, testutil.ReadZip(t, f.rc.OutputArchive))
	})
}

func TestFileDirectoryTypeChange(t *testing.T) {
	t.Run("test replaced directory with file", func(t *testing.T) {
		f := newFixture(t,
			map[string]testutil.File{"cfg/app.ini": {Content: "a=1"}, "keep.txt": {Content: "k"}},
			map[string]testutil.File{"cfg": {Content: "flat"}, "keep.txt": {Content: "k"}},
		)
		res, err := (&Runner{}).Run(context.Background(), f.rc)
		require.NoError(t, err)

		got := testutil.ReadZip(t, f.rc.OutputArchive)
		assert.Equal(t, map[string]testutil.Entry{"cfg": {Content: "flat", Mode: 0o644}}, got)
		assert.Equal(t, 1, res.Diff.Added)
		assert.Equal(t, 0, res.Diff.DevOnly)
	})

	t.Run("test replaced file with directory", func(t *testing.T) {
		f := newFixture(t,
			map[string]testutil.File{"cfg": {Content: "flat"}, "keep.txt": {Content: "k"}},
			map[string]testutil.File{"cfg/app.ini": {Content: "a=1"}, "keep.txt": {Content: "k"}},
		)
		res, err := (&Runner{}).Run(context.Background(), f.rc)
		require.NoError(t, err)

		got := testutil.ReadZip(t, f.rc.OutputArchive)
		assert.Equal(t, map[string]testutil.Entry{"cfg/app.ini": {Content: "a=1", Mode: 0o644}}, got)
		assert.Equal(t, 1, res.Diff.Added)
		assert.Equal(t, 0, res.Diff.DevOnly)
	})
}

func TestIgnoredFilesNeverAppear(t *testing.T) {
	f := newFixture(t,
		map[string]testutil.File{
			"__MACOSX/resource":       {Content: "dev fork"},
			".DS_Store":               {Content: "dev"},
			"app/.DS_Store":           {Content: "dev"},
			"app/config/secret.env":   {Content: "A=1"},
			"app/my-secret-notes.txt": {Content: "one"},
			"app/main.py":             {Content: "print(1)"},
		},
		map[string]testutil.File{
			"__MACOSX/resource":       {Content: "test fork"},
			".DS_Store":               {Content: "test"},
			"app/.DS_Store":           {Content: "test"},
			"app/config/secret.env":   {Content: "A=2"},
			"app/my-secret-notes.txt": {Content: "two"},
			"app/main.py":             {Content: "print(2)"},
			"secrets/new.key":         {Content: "k"},
		},
	)
	f.rc.IgnorePatterns = []string{"secret"}
	f.rc.KeepTemp = true

	_, err := (&Runner{}).Run(context.Background(), f.rc)
	require.NoError(t, err)

	got := testutil.ReadZip(t, f.rc.OutputArchive)
	assert.Equal(t, map[string]testutil.Entry{"app/main.py": {Content: "print(2)", Mode: 0o644}}, got)

	ws := workspace.PathsFor(f.rc.WorkDir)
	for _, root := range []string{ws.DevExtractDir, ws.TestExtractDir} {
		assert.NoFileExists(t, filepath.Join(root, ".DS_Store"))
		assert.NoFileExists(t, filepath.Join(root, "app", ".DS_Store"))
		assert.NoDirExists(t, filepath.Join(root, "__MACOSX"))
		assert.NoFileExists(t, filepath.Join(root, "app", "config", "secret.env"))
		assert.FileExists(t, filepath.Join(root, "app", "main.py"))
	}
	assert.NoDirExists(t, filepath.Join(ws.TestExtractDir, "secrets"))
}

func TestCleanup(t *testing.T) {
	dev := map[string]testutil.File{"a.txt": {Content: "1"}}
	test := map[string]testutil.File{"a.txt": {Content: "2"}}

	t.Run("removed after success", func(t *testing.T) {
		f := newFixture(t, dev, test)
		_, err := (&Runner{}).Run(context.Background(), f.rc)
		require.NoError(t, err)
		assert.NoDirExists(t, f.rc.WorkDir)
	})

	t.Run("kept with intermediate state", func(t *testing.T) {
		f := newFixture(t, dev, test)
		f.rc.KeepTemp = true
		var out bytes.Buffer

		_, err := (&Runner{Out: &out}).Run(context.Background(), f.rc)
		require.NoError(t, err)

		ws := workspace.PathsFor(f.rc.WorkDir)
		assert.FileExists(t, filepath.Join(ws.DevExtractDir, "a.txt"))
		assert.FileExists(t, filepath.Join(ws.TestExtractDir, "a.txt"))
		data, err := os.ReadFile(filepath.Join(ws.DiffDir, "a.txt"))
		require.NoError(t, err)
		assert.Equal(t, "2", string(data))
		assert.Contains(t, out.String(), "Keeping workspace at "+f.rc.WorkDir)
	})

	t.Run("removed after failure", func(t *testing.T) {
		f := newFixture(t, dev, test)
		require.NoError(t, os.WriteFile(f.rc.TestArchive, []byte("not a zip"), 0o644))

		res, err := (&Runner{}).Run(context.Background(), f.rc)
		require.Error(t, err)
		assert.True(t, failure.IsArchive(err))
		assert.True(t, res.Failed)
		assert.Equal(t, DevExtracted, res.Reached)
		assert.Equal(t, TornDown, res.Phase)
		assert.NoDirExists(t, f.rc.WorkDir)
		assert.NoFileExists(t, f.rc.OutputArchive)
	})

	t.Run("kept after failure", func(t *testing.T) {
		f := newFixture(t, dev, test)
		f.rc.KeepTemp = true
		require.NoError(t, os.WriteFile(f.rc.TestArchive, []byte("not a zip"), 0o644))

		_, err := (&Runner{}).Run(context.Background(), f.rc)
		require.Error(t, err)
		ws := workspace.PathsFor(f.rc.WorkDir)
		assert.FileExists(t, filepath.Join(ws.DevExtractDir, "a.txt"))
		assert.DirExists(t, ws.TestExtractDir)
		assert.DirExists(t, ws.DiffDir)
	})
}

func TestMissingInput(t *testing.T) {
	f := newFixture(t, map[string]testutil.File{"a": {}}, map[string]testutil.File{"a": {}})

	t.Run("dev", func(t *testing.T) {
		rc := f.rc
		rc.DevArchive = filepath.Join(f.dir, "nope.zip")
		res, err := (&Runner{}).Run(context.Background(), rc)

		var missing *failure.MissingInputError
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, "dev", missing.Role)
		assert.Equal(t, Idle, res.Reached)
		assert.NoDirExists(t, rc.WorkDir)
	})

	t.Run("test is a directory", func(t *testing.T) {
		rc := f.rc
		rc.TestArchive = f.dir
		_, err := (&Runner{}).Run(context.Background(), rc)

		var missing *failure.MissingInputError
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, "test", missing.Role)
	})
}

func TestOutputOverwritten(t *testing.T) {
	f := newFixture(t,
		map[string]testutil.File{"a.txt": {Content: "1"}},
		map[string]testutil.File{"a.txt": {Content: "2"}},
	)
	require.NoError(t, os.MkdirAll(filepath.Dir(f.rc.OutputArchive), 0o755))
	require.NoError(t, os.WriteFile(f.rc.OutputArchive, []byte("stale"), 0o644))

	_, err := (&Runner{}).Run(context.Background(), f.rc)
	require.NoError(t, err)
	assert.Equal(t, map[string]testutil.Entry{"a.txt": {Content: "2", Mode: 0o644}}, testutil.ReadZip(t, f.rc.OutputArchive))
}

func TestPlan(t *testing.T) {
	f := newFixture(t,
		map[string]testutil.File{"a.txt": {Content: "hello"}, "b.txt": {Content: "x"}, "gone.txt": {Content: "g"}},
		map[string]testutil.File{"a.txt": {Content: "hello"}, "b.txt": {Content: "y"}, "c.txt": {Content: "new"}},
	)

	var seen []tree.Candidate
	res, err := (&Runner{}).Plan(context.Background(), f.rc, func(p Plan) error {
		seen = p.Candidates
		for _, c := range p.Candidates {
			assert.FileExists(t, c.SourcePath)
		}
		return nil
	})
	require.NoError(t, err)

	require.Len(t, seen, 3)
	assert.Equal(t, "b.txt", seen[0].RelPath)
	assert.Equal(t, tree.Modified, seen[0].Kind)
	assert.Equal(t, "c.txt", seen[1].RelPath)
	assert.Equal(t, tree.Added, seen[1].Kind)
	assert.Equal(t, "gone.txt", seen[2].RelPath)
	assert.Equal(t, tree.DevOnly, seen[2].Kind)

	assert.Equal(t, Compared, res.Reached)
	assert.Equal(t, 1, res.Diff.Modified)
	assert.NoFileExists(t, f.rc.OutputArchive)
	assert.NoDirExists(t, f.rc.WorkDir)

	boom := errors.New("render failed")
	_, err = (&Runner{}).Plan(context.Background(), f.rc, func(Plan) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.NoDirExists(t, f.rc.WorkDir)
}

// fakeStore serves s3:// locations from local files.
type fakeStore struct {
	objects  map[string]string
	uploaded map[string][]byte
	fetches  int
}

func (s *fakeStore) Stat(_ context.Context, loc remote.Location) (remote.ObjectInfo, error) {
	p, ok := s.objects[loc.String()]
	if !ok {
		return remote.ObjectInfo{}, remote.ErrNotFound
	}
	fi, err := os.Stat(p)
	if err != nil {
		return remote.ObjectInfo{}, err
	}
	return remote.ObjectInfo{Size: fi.Size(), ETag: "etag"}, nil
}

func (s *fakeStore) Fetch(_ context.Context, loc remote.Location, dst string) (remote.FetchResult, error) {
	s.fetches++
	p, ok := s.objects[loc.String()]
	if !ok {
		return remote.FetchResult{}, remote.ErrNotFound
	}
	n, err := fsutil.CopyFile(p, dst)
	return remote.FetchResult{Path: dst, Size: n}, err
}

func (s *fakeStore) Upload(_ context.Context, src string, loc remote.Location) (int64, error) {
	data, err := os.ReadFile(src)
	if err != nil {
		return 0, err
	}
	s.uploaded[loc.String()] = data
	return int64(len(data)), nil
}

func TestS3Locations(t *testing.T) {
	f := newFixture(t,
		map[string]testutil.File{"a.txt": {Content: "1"}},
		map[string]testutil.File{"a.txt": {Content: "2"}, "b.txt": {Content: "b"}},
	)
	store := &fakeStore{
		objects: map[string]string{
			"s3://releases/dev/app.zip":  f.rc.DevArchive,
			"s3://releases/test/app.zip": f.rc.TestArchive,
		},
		uploaded: map[string][]byte{},
	}
	newStore := func(context.Context, config.RunConfig) (ObjectStore, error) { return store, nil }

	rc := f.rc
	rc.DevArchive = "s3://releases/dev/app.zip"
	rc.TestArchive = "s3://releases/test/app.zip"
	rc.OutputArchive = "s3://releases/diff/app-diff.zip"

	var out bytes.Buffer
	res, err := (&Runner{Out: &out, NewStore: newStore}).Run(context.Background(), rc)
	require.NoError(t, err)
	assert.Equal(t, 2, store.fetches)
	assert.Equal(t, "s3://releases/diff/app-diff.zip", res.Output)
	assert.Contains(t, out.String(), "Downloading s3://releases/dev/app.zip...")
	assert.Contains(t, out.String(), "Uploading s3://releases/diff/app-diff.zip...")
	assert.NoDirExists(t, rc.WorkDir)

	data, ok := store.uploaded["s3://releases/diff/app-diff.zip"]
	require.True(t, ok)
	local := filepath.Join(f.dir, "uploaded.zip")
	require.NoError(t, os.WriteFile(local, data, 0o644))
	got := testutil.ReadZip(t, local)
	assert.Equal(t, "2", got["a.txt"].Content)
	assert.Equal(t, "b", got["b.txt"].Content)

	t.Run("missing object", func(t *testing.T) {
		rc := rc
		rc.TestArchive = "s3://releases/test/missing.zip"
		_, err := (&Runner{NewStore: newStore}).Run(context.Background(), rc)
		var missing *failure.MissingInputError
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, "test", missing.Role)
		assert.NoDirExists(t, rc.WorkDir)
	})

	t.Run("bad uri", func(t *testing.T) {
		rc := rc
		rc.OutputArchive = "s3://releases"
		_, err := (&Runner{NewStore: newStore}).Run(context.Background(), rc)
		var cfgErr *failure.ConfigError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, "output_zip", cfgErr.Key)
	})

	t.Run("store unavailable", func(t *testing.T) {
		failing := func(context.Context, config.RunConfig) (ObjectStore, error) {
			return nil, errors.New("no credentials")
		}
		_, err := (&Runner{NewStore: failing}).Run(context.Background(), rc)
		assert.True(t, failure.IsConfig(err))
	})
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "archive-built", ArchiveBuilt.String())
	assert.Equal(t, "torn-down", TornDown.String())
	assert.Equal(t, "unknown", Phase(99).String())
}
