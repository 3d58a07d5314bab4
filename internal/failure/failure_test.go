// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package failure

import (
	"errors"
	"fmt"
	"io/fs"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"config", &ConfigError{Path: "c.json", Key: "dev_zip"}, "config"},
		{"missing input", &MissingInputError{Role: "dev", Path: "/x.zip"}, "missing-input"},
		{"archive", &ArchiveError{Op: "open", Path: "/x.zip", Cause: errors.New("bad")}, "archive"},
		{"io", &IOError{Op: "mkdir", Path: "/x", Cause: fs.ErrPermission}, "io"},
		{"wrapped archive", fmt.Errorf("run: %w", &ArchiveError{Op: "open"}), "archive"},
		{"plain", errors.New("boom"), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Kind(tt.err))
		})
	}
}

func TestNewIO(t *testing.T) {
	assert.NoError(t, NewIO("copy", "/a", nil))

	err := NewIO("copy", "/a", fs.ErrPermission)
	assert.True(t, IsIO(err))
	assert.ErrorIs(t, err, fs.ErrPermission)
	assert.Equal(t, "copy /a: permission denied", err.Error())

	statErr := &fs.PathError{Op: "stat", Path: "/a/b", Err: syscall.ENOTDIR}
	err = NewIO("stat", "/a/b", statErr)
	assert.True(t, IsIO(err))
	assert.ErrorIs(t, err, syscall.ENOTDIR)
	assert.Equal(t, "stat /a/b: not a directory", err.Error())

	// Already-classified errors pass through untouched.
	archiveErr := &ArchiveError{Op: "open", Path: "/z.zip", Cause: errors.New("not a zip")}
	assert.Same(t, archiveErr, NewIO("copy", "/a", archiveErr))
}

func TestConfigErrorMessages(t *testing.T) {
	assert.Equal(t, `config c.json: missing required key "dev_zip"`,
		(&ConfigError{Path: "c.json", Key: "dev_zip"}).Error())
	assert.Equal(t, `config c.json: key "keep_temp": not a bool`,
		(&ConfigError{Path: "c.json", Key: "keep_temp", Cause: errors.New("not a bool")}).Error())
	assert.Equal(t, "config c.json: invalid JSON",
		(&ConfigError{Path: "c.json", Cause: errors.New("invalid JSON")}).Error())
}
