// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io/fs"
	"strings"
)

// macOSResourceDir is the prefix of Finder resource-fork entries.
const macOSResourceDir = "__MACOSX/"

var errEscapesRoot = errors.New("entry escapes extraction directory")

// Entry is a summary of one archive member.
type Entry struct {
	Name  string
	Mode  fs.FileMode
	Size  uint64
	IsDir bool
}

// List returns the members of the zip at path in archive order.
func List(path string) ([]Entry, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, openError(path, err)
	}
	defer zr.Close()

	entries := make([]Entry, 0, len(zr.File))
	for _, zf := range zr.File {
		entries = append(entries, Entry{
			Name:  zf.Name,
			Mode:  zf.Mode(),
			Size:  zf.UncompressedSize64,
			IsDir: zf.FileInfo().IsDir(),
		})
	}
	return entries, nil
}

// entryPath normalises a zip member name into a slash-separated relative
// path. Backslashes are treated as separators, drive letters and leading
// slashes are dropped, and "." segments removed. A ".." that would climb
// above the root is an error rather than being clamped.
func entryPath(name string) (string, error) {
	s := strings.ReplaceAll(name, `\`, "/")
	if len(s) > 1 && s[1] == ':' {
		s = s[2:]
	}
	s = strings.TrimLeft(s, "/")

	parts := strings.Split(s, "/")
	stack := make([]string, 0, len(parts))
	for _, part := range parts {
		switch part {
		case "", ".":
			continue
		case "..":
			if len(stack) == 0 {
				return "", fmt.Errorf("%q: %w", name, errEscapesRoot)
			}
			stack = stack[:len(stack)-1]
		default:
			stack = append(stack, part)
		}
	}
	return strings.Join(stack, "/"), nil
}
