// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tfctl/pkgdiff/internal/testutil"
	"github.com/tfctl/pkgdiff/internal/version"
)

func isolate(t *testing.T) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("PKGDIFF_CACHE", "0")
	for _, k := range []string{"PKGDIFF_CFG_FILE", "PKGDIFF_CONFIG", "PKGDIFF_WORK_DIR", "PKGDIFF_CACHE_TTL"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestHandleVersion(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		handled bool
	}{
		{"long", []string{"pkgdiff", "--version"}, true},
		{"short", []string{"pkgdiff", "-v"}, true},
		{"bare", []string{"pkgdiff"}, false},
		{"subcommand", []string{"pkgdiff", "run", "-v"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			assert.Equal(t, tt.handled, handleVersion(tt.args, &out))
			if tt.handled {
				assert.Equal(t, version.Version+"\n", out.String())
			} else {
				assert.Empty(t, out.String())
			}
		})
	}
}

func TestHandleNakedCommand(t *testing.T) {
	assert.Equal(t, []string{"pkgdiff", "--help"}, handleNakedCommand([]string{"pkgdiff"}))
	assert.Equal(t, []string{"pkgdiff", "run"}, handleNakedCommand([]string{"pkgdiff", "run"}))
}

func TestInitAndRunAppExitCodes(t *testing.T) {
	isolate(t)
	dir := t.TempDir()

	dev := testutil.WriteZip(t, filepath.Join(dir, "dev.zip"), map[string]testutil.File{"a.txt": {Content: "1"}})
	test := testutil.WriteZip(t, filepath.Join(dir, "test.zip"), map[string]testutil.File{"a.txt": {Content: "2"}})
	cfg := filepath.Join(dir, "pkgdiff.json")
	out := filepath.Join(dir, "diff.zip")
	doc := fmt.Sprintf(`{"dev_zip": %q, "test_zip": %q, "output_zip": %q, "work_dir": %q}`,
		dev, test, out, filepath.Join(dir, "work"))
	require.NoError(t, os.WriteFile(cfg, []byte(doc), 0o644))

	var stderr bytes.Buffer
	assert.Equal(t, 0, initAndRunApp([]string{"pkgdiff", "run", "--config", cfg}, &stderr))
	assert.Empty(t, stderr.String())
	assert.Equal(t, "2", testutil.ReadZip(t, out)["a.txt"].Content)

	stderr.Reset()
	missing := filepath.Join(dir, "missing.json")
	assert.Equal(t, 2, initAndRunApp([]string{"pkgdiff", "run", "--config", missing}, &stderr))
	assert.Contains(t, stderr.String(), "Error: ")
	assert.Contains(t, stderr.String(), "missing.json")
}

func TestInitAndRunAppReportsCacheDirFailure(t *testing.T) {
	isolate(t)
	dir := t.TempDir()

	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
	t.Setenv("PKGDIFF_CACHE", "1")
	t.Setenv("PKGDIFF_CACHE_DIR", filepath.Join(blocker, "cache"))

	var stderr bytes.Buffer
	assert.Equal(t, 0, initAndRunApp([]string{"pkgdiff", "completion", "bash"}, &stderr))
	assert.Contains(t, stderr.String(), "failed to create cache base directory")
}
