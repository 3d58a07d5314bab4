// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package run

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/tfctl/pkgdiff/internal/aws"
	"github.com/tfctl/pkgdiff/internal/config"
	"github.com/tfctl/pkgdiff/internal/failure"
	"github.com/tfctl/pkgdiff/internal/remote"
)

const (
	roleDev    = "dev"
	roleTest   = "test"
	roleOutput = "output"
)

// ObjectStore is the S3 surface a run needs. *remote.Store satisfies it.
type ObjectStore interface {
	Stat(ctx context.Context, loc remote.Location) (remote.ObjectInfo, error)
	Fetch(ctx context.Context, loc remote.Location, dst string) (remote.FetchResult, error)
	Upload(ctx context.Context, src string, loc remote.Location) (int64, error)
}

// StoreFactory builds an ObjectStore for a run configuration.
type StoreFactory func(ctx context.Context, rc config.RunConfig) (ObjectStore, error)

// DefaultStore connects to S3 with the profile, region and endpoint from rc.
func DefaultStore(ctx context.Context, rc config.RunConfig) (ObjectStore, error) {
	client, err := aws.NewS3FromSettings(ctx, aws.Settings{
		Profile:  rc.AWSProfile,
		Region:   rc.AWSRegion,
		Endpoint: rc.S3Endpoint,
	})
	if err != nil {
		return nil, err
	}
	return remote.New(client), nil
}

// source is one archive location of a run. path is the local file once
// known; remote is set for s3:// locations.
type source struct {
	role     string
	location string
	path     string
	remote   *remote.Location
}

func (s *source) name() string {
	if s.remote != nil {
		return s.remote.Base()
	}
	return filepath.Base(s.location)
}

// resolve checks that both inputs exist before anything touches the
// workspace and parses every s3:// location.
func (r *Runner) resolve(ctx context.Context, rc config.RunConfig) ([]*source, *source, error) {
	inputs := []*source{
		{role: roleDev, location: rc.DevArchive},
		{role: roleTest, location: rc.TestArchive},
	}
	out := &source{role: roleOutput, location: rc.OutputArchive, path: rc.OutputArchive}

	for _, s := range append(inputs, out) {
		if !remote.IsS3URI(s.location) {
			continue
		}
		loc, err := remote.ParseS3URI(s.location)
		if err != nil {
			return nil, nil, &failure.ConfigError{Path: rc.Source, Key: s.role + "_zip", Cause: err}
		}
		s.remote = &loc
	}

	for _, s := range inputs {
		if s.remote == nil {
			if err := checkLocal(s.role, s.location); err != nil {
				return nil, nil, err
			}
			s.path = s.location
			continue
		}

		store, err := r.objectStore(ctx, rc)
		if err != nil {
			return nil, nil, err
		}
		if _, err := store.Stat(ctx, *s.remote); err != nil {
			if errors.Is(err, remote.ErrNotFound) {
				return nil, nil, &failure.MissingInputError{Role: s.role, Path: s.location, Cause: err}
			}
			return nil, nil, failure.NewIO("stat", s.location, err)
		}
	}

	return inputs, out, nil
}

func checkLocal(role, path string) error {
	fi, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return &failure.MissingInputError{Role: role, Path: path, Cause: err}
	case err != nil:
		return failure.NewIO("stat", path, err)
	case fi.IsDir():
		return &failure.MissingInputError{Role: role, Path: path, Cause: errors.New("is a directory")}
	}
	return nil
}

func (r *Runner) objectStore(ctx context.Context, rc config.RunConfig) (ObjectStore, error) {
	if r.store != nil {
		return r.store, nil
	}

	factory := r.NewStore
	if factory == nil {
		factory = DefaultStore
	}
	store, err := factory(ctx, rc)
	if err != nil {
		return nil, &failure.ConfigError{Path: rc.Source, Key: "aws_profile", Cause: err}
	}
	r.store = store
	return store, nil
}
