// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tfctl/pkgdiff/internal/failure"
)

const base = "/srv/pkgs"

func TestParseRunConfig(t *testing.T) {
	tests := []struct {
		name      string
		source    string
		doc       string
		ov        Overrides
		wantErr   bool
		errKey    string
		checkFunc func(*testing.T, RunConfig)
	}{
		{
			name:   "minimal json applies defaults",
			source: "c.json",
			doc:    `{"dev_zip":"dev.zip","test_zip":"test.zip","output_zip":"out/diff.zip"}`,
			checkFunc: func(t *testing.T, rc RunConfig) {
				assert.Equal(t, filepath.Join(base, "dev.zip"), rc.DevArchive)
				assert.Equal(t, filepath.Join(base, "test.zip"), rc.TestArchive)
				assert.Equal(t, filepath.Join(base, "out", "diff.zip"), rc.OutputArchive)
				assert.Equal(t, filepath.Join(base, "temp"), rc.WorkDir)
				assert.False(t, rc.KeepTemp)
				assert.Empty(t, rc.IgnorePatterns)
				assert.False(t, rc.SkipDevOnly)
				assert.False(t, rc.UsesS3())
			},
		},
		{
			name:   "all keys json",
			source: "c.json",
			doc: `{
				"dev_zip": "/abs/dev.zip",
				"test_zip": "s3://bucket/releases/test.zip",
				"output_zip": "diff.zip",
				"work_dir": "scratch",
				"keep_temp": true,
				"ignore_patterns": ["secret", ".log"],
				"skip_dev_only": true,
				"aws_profile": "deploy",
				"aws_region": "eu-central-1",
				"s3_endpoint": "http://localhost:9000"
			}`,
			checkFunc: func(t *testing.T, rc RunConfig) {
				assert.Equal(t, "/abs/dev.zip", rc.DevArchive)
				assert.Equal(t, "s3://bucket/releases/test.zip", rc.TestArchive)
				assert.Equal(t, filepath.Join(base, "scratch"), rc.WorkDir)
				assert.True(t, rc.KeepTemp)
				assert.Equal(t, []string{"secret", ".log"}, rc.IgnorePatterns)
				assert.True(t, rc.SkipDevOnly)
				assert.Equal(t, "deploy", rc.AWSProfile)
				assert.Equal(t, "eu-central-1", rc.AWSRegion)
				assert.Equal(t, "http://localhost:9000", rc.S3Endpoint)
				assert.True(t, rc.UsesS3())
			},
		},
		{
			name:   "yaml document",
			source: "c.yaml",
			doc: "dev_zip: dev.zip\ntest_zip: test.zip\noutput_zip: diff.zip\n" +
				"keep_temp: true\nignore_patterns:\n  - cache\n",
			checkFunc: func(t *testing.T, rc RunConfig) {
				assert.Equal(t, filepath.Join(base, "dev.zip"), rc.DevArchive)
				assert.True(t, rc.KeepTemp)
				assert.Equal(t, []string{"cache"}, rc.IgnorePatterns)
			},
		},
		{
			name:   "overrides win",
			source: "c.json",
			doc:    `{"dev_zip":"d","test_zip":"t","output_zip":"o","work_dir":"w","keep_temp":false,"ignore_patterns":["a"]}`,
			ov:     Overrides{WorkDir: "/tmp/other", KeepTemp: boolPtr(true), SkipDevOnly: boolPtr(true), Ignore: []string{"b"}},
			checkFunc: func(t *testing.T, rc RunConfig) {
				assert.Equal(t, "/tmp/other", rc.WorkDir)
				assert.True(t, rc.KeepTemp)
				assert.True(t, rc.SkipDevOnly)
				assert.Equal(t, []string{"a", "b"}, rc.IgnorePatterns)
			},
		},
		{
			name:   "unknown keys tolerated",
			source: "c.json",
			doc:    `{"dev_zip":"d","test_zip":"t","output_zip":"o","colour":"blue"}`,
			checkFunc: func(t *testing.T, rc RunConfig) {
				assert.Equal(t, filepath.Join(base, "d"), rc.DevArchive)
			},
		},
		{name: "malformed json", source: "c.json", doc: `{"dev_zip": "d",`, wantErr: true},
		{name: "array document", source: "c.json", doc: `["dev_zip"]`, wantErr: true},
		{name: "malformed yaml", source: "c.yml", doc: "dev_zip: [unclosed", wantErr: true},
		{name: "empty yaml", source: "c.yml", doc: "", wantErr: true},
		{name: "missing dev", source: "c.json", doc: `{"test_zip":"t","output_zip":"o"}`, wantErr: true, errKey: "dev_zip"},
		{name: "missing test", source: "c.json", doc: `{"dev_zip":"d","output_zip":"o"}`, wantErr: true, errKey: "test_zip"},
		{name: "missing output", source: "c.json", doc: `{"dev_zip":"d","test_zip":"t"}`, wantErr: true, errKey: "output_zip"},
		{name: "null output", source: "c.json", doc: `{"dev_zip":"d","test_zip":"t","output_zip":null}`, wantErr: true, errKey: "output_zip"},
		{name: "empty dev", source: "c.json", doc: `{"dev_zip":" ","test_zip":"t","output_zip":"o"}`, wantErr: true, errKey: "dev_zip"},
		{name: "wrong type", source: "c.json", doc: `{"dev_zip":"d","test_zip":"t","output_zip":"o","keep_temp":"yes"}`, wantErr: true},
		{name: "s3 work dir", source: "c.json", doc: `{"dev_zip":"d","test_zip":"t","output_zip":"o","work_dir":"s3://b/w"}`, wantErr: true, errKey: "work_dir"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rc, err := ParseRunConfig([]byte(tt.doc), tt.source, tt.ov, base)
			if tt.wantErr {
				require.Error(t, err)
				var cfgErr *failure.ConfigError
				require.ErrorAs(t, err, &cfgErr)
				assert.Equal(t, tt.errKey, cfgErr.Key)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.source, rc.Source)
			tt.checkFunc(t, rc)
		})
	}
}

func TestLoadRunConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pkgdiff.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"dev_zip":"/a/dev.zip","test_zip":"/a/test.zip","output_zip":"/a/out.zip"}`), 0o644))

	rc, err := LoadRunConfig(path, Overrides{})
	require.NoError(t, err)
	assert.Equal(t, "/a/dev.zip", rc.DevArchive)

	cwd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cwd, "temp"), rc.WorkDir)

	_, err = LoadRunConfig(filepath.Join(dir, "missing.json"), Overrides{})
	assert.True(t, failure.IsConfig(err))
}

func boolPtr(b bool) *bool { return &b }
