// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package failure

import (
	"errors"
	"fmt"
	"io/fs"
)

// ConfigError is returned when the run configuration is missing a required
// key, holds a value of the wrong type or cannot be parsed at all.
type ConfigError struct {
	Path  string
	Key   string
	Cause error
}

func (e *ConfigError) Error() string {
	switch {
	case e.Key != "" && e.Cause != nil:
		return fmt.Sprintf("config %s: key %q: %v", e.Path, e.Key, e.Cause)
	case e.Key != "":
		return fmt.Sprintf("config %s: missing required key %q", e.Path, e.Key)
	default:
		return fmt.Sprintf("config %s: %v", e.Path, e.Cause)
	}
}

func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// MissingInputError is returned when the DEV or TEST archive does not exist.
type MissingInputError struct {
	Role  string // "dev" or "test"
	Path  string
	Cause error
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("%s archive not found: %s", e.Role, e.Path)
}

func (e *MissingInputError) Unwrap() error {
	return e.Cause
}

// ArchiveError is returned when a zip cannot be opened, parsed or written, or
// when an entry would land outside the extraction directory.
type ArchiveError struct {
	Op    string
	Path  string
	Cause error
}

func (e *ArchiveError) Error() string {
	return fmt.Sprintf("archive %s %s: %v", e.Op, e.Path, e.Cause)
}

func (e *ArchiveError) Unwrap() error {
	return e.Cause
}

// IOError is returned when a filesystem operation (copy, mkdir, remove,
// chmod) fails.
type IOError struct {
	Op    string
	Path  string
	Cause error
}

func (e *IOError) Error() string {
	// A PathError already names its op and path.
	if _, ok := e.Cause.(*fs.PathError); ok {
		return e.Cause.Error()
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Cause)
}

func (e *IOError) Unwrap() error {
	return e.Cause
}

// NewIO wraps err as an IOError unless it already is one of the taxonomy
// errors, in which case it is returned unchanged.
func NewIO(op, path string, err error) error {
	if err == nil {
		return nil
	}
	if Classified(err) {
		return err
	}
	return &IOError{Op: op, Path: path, Cause: err}
}

// IsConfig reports whether err is or wraps a ConfigError.
func IsConfig(err error) bool {
	var target *ConfigError
	return errors.As(err, &target)
}

// IsMissingInput reports whether err is or wraps a MissingInputError.
func IsMissingInput(err error) bool {
	var target *MissingInputError
	return errors.As(err, &target)
}

// IsArchive reports whether err is or wraps an ArchiveError.
func IsArchive(err error) bool {
	var target *ArchiveError
	return errors.As(err, &target)
}

// IsIO reports whether err is or wraps an IOError.
func IsIO(err error) bool {
	var target *IOError
	return errors.As(err, &target)
}

// Classified reports whether err belongs to the taxonomy.
func Classified(err error) bool {
	return IsConfig(err) || IsMissingInput(err) || IsArchive(err) || IsIO(err)
}

// Kind returns a short label for the taxonomy class of err, or "unknown".
func Kind(err error) string {
	switch {
	case IsConfig(err):
		return "config"
	case IsMissingInput(err):
		return "missing-input"
	case IsArchive(err):
		return "archive"
	case IsIO(err):
		return "io"
	default:
		return "unknown"
	}
}
