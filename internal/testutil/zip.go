// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package testutil builds and inspects zip fixtures for package tests.
package testutil

import (
	"archive/zip"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// File describes a zip fixture entry. A zero Mode means 0644. Names ending in
// "/" are written as directory entries.
type File struct {
	Content string
	Mode    fs.FileMode
}

// Entry is what ReadZip reports for each entry in an archive.
type Entry struct {
	Content string
	Mode    fs.FileMode
}

// WriteZip writes a zip at path containing files, in sorted name order, and
// returns path.
func WriteZip(t *testing.T, path string, files map[string]File) string {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	zw := zip.NewWriter(f)
	for _, name := range names {
		spec := files[name]
		h := &zip.FileHeader{Name: name, Method: zip.Deflate}
		if strings.HasSuffix(name, "/") {
			h.SetMode(fs.ModeDir | 0o755)
			_, err := zw.CreateHeader(h)
			require.NoError(t, err)
			continue
		}
		mode := spec.Mode
		if mode == 0 {
			mode = 0o644
		}
		h.SetMode(mode)
		w, err := zw.CreateHeader(h)
		require.NoError(t, err)
		_, err = io.WriteString(w, spec.Content)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return path
}

// ReadZip returns the regular-file entries of the archive at path.
func ReadZip(t *testing.T, path string) map[string]Entry {
	t.Helper()

	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer zr.Close()

	out := make(map[string]Entry, len(zr.File))
	for _, zf := range zr.File {
		if zf.FileInfo().IsDir() {
			continue
		}
		rc, err := zf.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		out[zf.Name] = Entry{Content: string(data), Mode: zf.Mode().Perm()}
	}
	return out
}

// WriteTree materialises files under root; keys are slash-separated.
func WriteTree(t *testing.T, root string, files map[string]File) {
	t.Helper()

	for name, spec := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		mode := spec.Mode
		if mode == 0 {
			mode = 0o644
		}
		require.NoError(t, os.WriteFile(p, []byte(spec.Content), mode))
		require.NoError(t, os.Chmod(p, mode))
	}
}
