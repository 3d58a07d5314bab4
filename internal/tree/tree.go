// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package tree

import (
	"errors"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"sort"
	"syscall"

	"github.com/tfctl/pkgdiff/internal/failure"
	"github.com/tfctl/pkgdiff/internal/ignore"
	"github.com/tfctl/pkgdiff/internal/log"
)

// Classification is the verdict for a file found on the DEV side.
type Classification int

const (
	Identical Classification = iota
	ChangedOrNew
)

func (c Classification) String() string {
	if c == Identical {
		return "identical"
	}
	return "changed-or-new"
}

// Kind says why a candidate was selected.
type Kind int

const (
	Modified Kind = iota
	Added
	DevOnly
)

func (k Kind) String() string {
	switch k {
	case Modified:
		return "modified"
	case Added:
		return "added"
	case DevOnly:
		return "dev-only"
	default:
		return "unknown"
	}
}

// Candidate is a file that belongs in the diff.
type Candidate struct {
	// RelPath is slash-separated and relative to both roots.
	RelPath string
	// SourcePath is the absolute path of the file whose content goes into
	// the diff.
	SourcePath string
	Kind       Kind
	// DevPath and TestPath are the file's location in each tree, empty when
	// absent on that side.
	DevPath  string
	TestPath string
}

// Options tune Compare.
type Options struct {
	// SkipDevOnly drops files that exist only in DEV instead of carrying
	// their DEV content into the diff.
	SkipDevOnly bool
}

// Compare walks sourceRoot (DEV) and then targetRoot (TEST) and yields a
// Candidate for every file that is not byte-identical on both sides.
// Directories and files whose name matches filter are pruned before they are
// visited. The sequence is lazy and single-use; the first error is yielded
// with a zero Candidate and ends the sequence.
func Compare(sourceRoot, targetRoot string, filter *ignore.Filter, opts Options) iter.Seq2[Candidate, error] {
	return func(yield func(Candidate, error) bool) {
		stopped := false
		emit := func(c Candidate) bool {
			if !yield(c, nil) {
				stopped = true
				return false
			}
			return true
		}

		err := walkFiles(sourceRoot, filter, func(rel, devPath string) error {
			testPath := filepath.Join(targetRoot, filepath.FromSlash(rel))
			state, err := lookup(testPath)
			if err != nil {
				return failure.NewIO("stat", testPath, err)
			}

			switch state {
			case absent:
				if opts.SkipDevOnly {
					log.Tracef("compare dev-only skipped: path=%s", rel)
					return nil
				}
				if !emit(Candidate{RelPath: rel, SourcePath: devPath, Kind: DevOnly, DevPath: devPath}) {
					return errStop
				}
				return nil
			case occupied:
				// TEST has a directory here or a file where DEV has a parent
				// directory. TEST's shape wins so the diff tree stays buildable.
				log.Debugf("compare dev-only dropped, type differs in test: path=%s", rel)
				return nil
			}

			verdict, err := Classify(devPath, testPath)
			if err != nil {
				return err
			}
			if verdict == Identical {
				log.Tracef("compare identical: path=%s", rel)
				return nil
			}
			if !emit(Candidate{RelPath: rel, SourcePath: testPath, Kind: Modified, DevPath: devPath, TestPath: testPath}) {
				return errStop
			}
			return nil
		})
		if done(err, stopped, yield) {
			return
		}

		err = walkFiles(targetRoot, filter, func(rel, testPath string) error {
			devPath := filepath.Join(sourceRoot, filepath.FromSlash(rel))
			state, err := lookup(devPath)
			if err != nil {
				return failure.NewIO("stat", devPath, err)
			}
			if state == regular {
				return nil
			}
			if !emit(Candidate{RelPath: rel, SourcePath: testPath, Kind: Added, TestPath: testPath}) {
				return errStop
			}
			return nil
		})
		done(err, stopped, yield)
	}
}

// Collect drains seq into a slice sorted by RelPath.
func Collect(seq iter.Seq2[Candidate, error]) ([]Candidate, error) {
	var out []Candidate
	for c, err := range seq {
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RelPath < out[j].RelPath })
	return out, nil
}

var errStop = errors.New("stop")

// done reports whether iteration must end, yielding err to the consumer when
// it is a real failure.
func done(err error, stopped bool, yield func(Candidate, error) bool) bool {
	if stopped || errors.Is(err, errStop) {
		return true
	}
	if err != nil {
		yield(Candidate{}, err)
		return true
	}
	return false
}

// walkFiles calls fn for every regular, non-ignored file under root with its
// slash-separated relative path and absolute path. Ignored directories are
// skipped without descending.
func walkFiles(root string, filter *ignore.Filter, fn func(rel, abs string) error) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return failure.NewIO("walk", path, err)
		}
		if path == root {
			return nil
		}
		if filter.ShouldIgnore(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return failure.NewIO("rel", path, err)
		}
		return fn(filepath.ToSlash(rel), path)
	})
}

// presence is what a path holds on the other side of the comparison.
type presence int

const (
	absent presence = iota
	regular
	// occupied is anything but a regular file: a directory, a special file,
	// or a path whose parent is a regular file.
	occupied
)

func lookup(path string) (presence, error) {
	info, err := os.Stat(path)
	switch {
	case err == nil && info.Mode().IsRegular():
		return regular, nil
	case err == nil:
		return occupied, nil
	case errors.Is(err, fs.ErrNotExist):
		return absent, nil
	case errors.Is(err, syscall.ENOTDIR):
		return occupied, nil
	}
	return absent, err
}
