// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package run

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/tfctl/pkgdiff/internal/archive"
	"github.com/tfctl/pkgdiff/internal/config"
	"github.com/tfctl/pkgdiff/internal/failure"
	"github.com/tfctl/pkgdiff/internal/ignore"
	"github.com/tfctl/pkgdiff/internal/log"
	"github.com/tfctl/pkgdiff/internal/materialize"
	"github.com/tfctl/pkgdiff/internal/remote"
	"github.com/tfctl/pkgdiff/internal/tree"
	"github.com/tfctl/pkgdiff/internal/workspace"
)

// Result summarises a run. Reached is the last work phase completed; Phase
// becomes TornDown once teardown has been attempted.
type Result struct {
	Phase     Phase
	Reached   Phase
	Failed    bool
	Workspace workspace.Paths
	Dev       archive.ExtractStats
	Test      archive.ExtractStats
	Diff      materialize.Stats
	Archive   archive.BuildStats
	Output    string
	Elapsed   time.Duration
}

// Plan is what a dry run hands to its inspector while the extracted trees
// still exist.
type Plan struct {
	Workspace  workspace.Paths
	Candidates []tree.Candidate
}

// Runner executes runs. The zero value writes no progress and talks to S3
// through DefaultStore.
type Runner struct {
	// Out receives operator progress lines.
	Out io.Writer
	// NewStore builds the S3 store on first use.
	NewStore StoreFactory

	store ObjectStore
}

// Run executes the whole pipeline for rc: inputs are checked, the workspace
// is prepared, both archives are extracted and compared, the changed files
// are materialized and packed into the diff archive. Teardown always runs.
func (r *Runner) Run(ctx context.Context, rc config.RunConfig) (res Result, err error) {
	start := time.Now()
	res.Workspace = workspace.PathsFor(rc.WorkDir)
	defer r.finish(rc, &res, &err, start)

	inputs, out, err := r.resolve(ctx, rc)
	if err != nil {
		return res, err
	}

	filter := ignore.New(rc.IgnorePatterns...)
	if err = r.extract(ctx, rc, inputs, filter, &res); err != nil {
		return res, err
	}

	r.printf("Comparing trees and copying changed files...\n")
	seq := tree.Compare(res.Workspace.DevExtractDir, res.Workspace.TestExtractDir, filter, tree.Options{SkipDevOnly: rc.SkipDevOnly})
	res.Diff, err = materialize.Materialize(track(seq, func() { res.Reached = Compared }), res.Workspace.DiffDir)
	if err != nil {
		return res, err
	}
	res.Reached = Materialized

	buildPath := out.location
	if out.remote != nil {
		buildPath = filepath.Join(res.Workspace.OutputDir(), out.remote.Base())
	}
	r.printf("Creating archive %s...\n", filepath.Base(buildPath))
	res.Archive, err = archive.Build(res.Workspace.DiffDir, buildPath, filter)
	if err != nil {
		return res, err
	}
	res.Reached = ArchiveBuilt

	if out.remote != nil {
		r.printf("Uploading %s...\n", out.location)
		store, err := r.objectStore(ctx, rc)
		if err != nil {
			return res, err
		}
		if _, err := store.Upload(ctx, buildPath, *out.remote); err != nil {
			return res, failure.NewIO("upload", out.location, err)
		}
	}
	res.Output = out.location

	r.printf("Done! %s files (%s): %d modified, %d added, %d dev-only. Diff archive: %s\n",
		humanize.Comma(int64(res.Diff.Files())), humanize.Bytes(uint64(res.Diff.Bytes)), //nolint:gosec
		res.Diff.Modified, res.Diff.Added, res.Diff.DevOnly, res.Output)
	return res, nil
}

// Plan extracts and compares like Run but writes nothing. inspect, if
// non-nil, is called with the candidates before the workspace is torn down
// and its error fails the plan.
func (r *Runner) Plan(ctx context.Context, rc config.RunConfig, inspect func(Plan) error) (res Result, err error) {
	start := time.Now()
	res.Workspace = workspace.PathsFor(rc.WorkDir)
	defer r.finish(rc, &res, &err, start)

	inputs, _, err := r.resolve(ctx, rc)
	if err != nil {
		return res, err
	}

	filter := ignore.New(rc.IgnorePatterns...)
	if err = r.extract(ctx, rc, inputs, filter, &res); err != nil {
		return res, err
	}

	r.printf("Comparing trees...\n")
	seq := tree.Compare(res.Workspace.DevExtractDir, res.Workspace.TestExtractDir, filter, tree.Options{SkipDevOnly: rc.SkipDevOnly})
	candidates, err := tree.Collect(seq)
	if err != nil {
		return res, err
	}
	res.Reached = Compared

	for _, c := range candidates {
		switch c.Kind {
		case tree.Modified:
			res.Diff.Modified++
		case tree.Added:
			res.Diff.Added++
		case tree.DevOnly:
			res.Diff.DevOnly++
		}
	}

	if inspect != nil {
		if err = inspect(Plan{Workspace: res.Workspace, Candidates: candidates}); err != nil {
			return res, err
		}
	}
	return res, nil
}

// extract prepares the workspace, downloads remote inputs and unpacks both
// archives into their trees.
func (r *Runner) extract(ctx context.Context, rc config.RunConfig, inputs []*source, filter *ignore.Filter, res *Result) error {
	paths, err := workspace.Prepare(rc.WorkDir)
	res.Workspace = paths
	if err != nil {
		return err
	}
	res.Reached = WorkspacePrepared

	for _, in := range inputs {
		if in.remote != nil {
			if err := r.download(ctx, rc, in, paths.DownloadDir()); err != nil {
				return err
			}
		}

		dest, stats, phase := paths.DevExtractDir, &res.Dev, DevExtracted
		if in.role == roleTest {
			dest, stats, phase = paths.TestExtractDir, &res.Test, TestExtracted
		}

		r.printf("Extracting %s...\n", in.name())
		*stats, err = archive.Extract(in.path, dest, filter)
		if err != nil {
			return err
		}
		log.Debugf("extracted %s: files=%d dirs=%d skipped=%d", in.role, stats.Files, stats.Dirs, stats.Skipped)
		res.Reached = phase
	}
	return nil
}

func (r *Runner) download(ctx context.Context, rc config.RunConfig, in *source, dir string) error {
	store, err := r.objectStore(ctx, rc)
	if err != nil {
		return err
	}

	r.printf("Downloading %s...\n", in.location)
	fr, err := store.Fetch(ctx, *in.remote, filepath.Join(dir, in.role+"-"+in.remote.Base()))
	if err != nil {
		if errors.Is(err, remote.ErrNotFound) {
			return &failure.MissingInputError{Role: in.role, Path: in.location, Cause: err}
		}
		return failure.NewIO("download", in.location, err)
	}
	if fr.Cached {
		log.Debugf("%s archive served from cache: size=%d", in.role, fr.Size)
	}
	in.path = fr.Path
	return nil
}

// finish tears the workspace down and records the final state. A teardown
// failure is joined with the run error, or becomes the error on success.
func (r *Runner) finish(rc config.RunConfig, res *Result, err *error, start time.Time) {
	if rc.KeepTemp {
		r.printf("Keeping workspace at %s\n", res.Workspace.Root)
	} else {
		r.printf("Cleaning up workspace...\n")
	}

	if terr := workspace.Teardown(res.Workspace, rc.KeepTemp); terr != nil {
		if *err == nil {
			*err = terr
		} else {
			*err = errors.Join(*err, terr)
		}
	}

	res.Failed = *err != nil
	res.Phase = TornDown
	res.Elapsed = time.Since(start)
	if res.Failed {
		log.Debugf("run failed: reached=%s kind=%s elapsed=%s", res.Reached, failure.Kind(*err), res.Elapsed)
	} else {
		log.Debugf("run finished: reached=%s elapsed=%s", res.Reached, res.Elapsed)
	}
}

func (r *Runner) printf(format string, args ...any) {
	if r.Out == nil {
		return
	}
	fmt.Fprintf(r.Out, format, args...)
}

// track calls onDone once seq has been drained without error.
func track(seq iter.Seq2[tree.Candidate, error], onDone func()) iter.Seq2[tree.Candidate, error] {
	return func(yield func(tree.Candidate, error) bool) {
		for c, err := range seq {
			if !yield(c, err) || err != nil {
				return
			}
		}
		onDone()
	}
}
