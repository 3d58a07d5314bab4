// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package fsutil holds the small filesystem helpers shared by the extractor,
// the materializer and the workspace: whole-file copies and permission-bit
// preservation that degrades to a no-op where the platform has no POSIX
// permission model.
package fsutil

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// DefaultFileMode and DefaultDirMode are used when no better mode is known.
const (
	DefaultFileMode fs.FileMode = 0o644
	DefaultDirMode  fs.FileMode = 0o755
)

// CopyFile copies the content of src to dst, creating dst's parent
// directories. An existing dst is replaced. It returns the number of bytes
// copied. Permission bits are not touched; see PreservePermissions.
func CopyFile(src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), DefaultDirMode); err != nil {
		return 0, err
	}

	// Remove first so a read-only leftover cannot block the write.
	if err := os.Remove(dst); err != nil && !os.IsNotExist(err) {
		return 0, err
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, DefaultFileMode)
	if err != nil {
		return 0, err
	}

	n, err := io.Copy(out, in)
	if err != nil {
		_ = out.Close()
		return n, fmt.Errorf("copy %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		return n, err
	}
	return n, nil
}

// PreservePermissions copies the permission bits of src onto dst. It is a
// no-op on platforms without a POSIX permission model.
func PreservePermissions(src, dst string) error {
	if !PermissionsSupported {
		return nil
	}
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	return ApplyPerm(dst, info.Mode())
}

// ApplyPerm sets the permission bits of mode on path. It is a no-op on
// platforms without a POSIX permission model.
func ApplyPerm(path string, mode fs.FileMode) error {
	if !PermissionsSupported {
		return nil
	}
	return os.Chmod(path, mode.Perm())
}
