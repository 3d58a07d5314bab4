// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package materialize

import (
	"errors"
	"iter"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tfctl/pkgdiff/internal/failure"
	"github.com/tfctl/pkgdiff/internal/fsutil"
	"github.com/tfctl/pkgdiff/internal/testutil"
	"github.com/tfctl/pkgdiff/internal/tree"
)

func seqOf(items ...tree.Candidate) iter.Seq2[tree.Candidate, error] {
	return func(yield func(tree.Candidate, error) bool) {
		for _, c := range items {
			if !yield(c, nil) {
				return
			}
		}
	}
}

func TestMaterialize(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "TEST_extracted")
	testutil.WriteTree(t, src, map[string]testutil.File{
		"b.txt":        {Content: "y"},
		"bin/tool":     {Content: "#!/bin/sh\n", Mode: 0o755},
		"deep/a/b/c.d": {Content: "deep"},
	})
	diff := filepath.Join(dir, "DIFF")
	require.NoError(t, os.MkdirAll(diff, 0o755))

	stats, err := Materialize(seqOf(
		tree.Candidate{RelPath: "b.txt", SourcePath: filepath.Join(src, "b.txt"), Kind: tree.Modified},
		tree.Candidate{RelPath: "bin/tool", SourcePath: filepath.Join(src, "bin", "tool"), Kind: tree.Added},
		tree.Candidate{RelPath: "deep/a/b/c.d", SourcePath: filepath.Join(src, "deep", "a", "b", "c.d"), Kind: tree.DevOnly},
	), diff)
	require.NoError(t, err)

	assert.Equal(t, Stats{Modified: 1, Added: 1, DevOnly: 1, Bytes: int64(1 + 10 + 4)}, stats)
	assert.Equal(t, 3, stats.Files())

	got, err := os.ReadFile(filepath.Join(diff, "deep", "a", "b", "c.d"))
	require.NoError(t, err)
	assert.Equal(t, "deep", string(got))

	if fsutil.PermissionsSupported {
		info, err := os.Stat(filepath.Join(diff, "bin", "tool"))
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())
	}
}

func TestMaterializeOverwrites(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	require.NoError(t, os.WriteFile(src, []byte("fresh"), 0o644))
	diff := filepath.Join(dir, "DIFF")
	testutil.WriteTree(t, diff, map[string]testutil.File{"src.txt": {Content: "stale and longer"}})

	_, err := Materialize(seqOf(tree.Candidate{RelPath: "src.txt", SourcePath: src, Kind: tree.Modified}), diff)
	require.NoError(t, err)

	got, err := os.ReadFile(filepath.Join(diff, "src.txt"))
	require.NoError(t, err)
	assert.Equal(t, "fresh", string(got))
}

func TestMaterializeErrors(t *testing.T) {
	dir := t.TempDir()

	t.Run("sequence error", func(t *testing.T) {
		boom := errors.New("walk failed")
		seq := func(yield func(tree.Candidate, error) bool) {
			yield(tree.Candidate{}, boom)
		}
		_, err := Materialize(seq, dir)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("missing source", func(t *testing.T) {
		_, err := Materialize(seqOf(tree.Candidate{RelPath: "x", SourcePath: filepath.Join(dir, "missing")}), dir)
		assert.True(t, failure.IsIO(err))
	})
}
