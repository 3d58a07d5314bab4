// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	s3v2 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/gabriel-vasile/mimetype"

	"github.com/tfctl/pkgdiff/internal/cacheutil"
	"github.com/tfctl/pkgdiff/internal/fsutil"
	"github.com/tfctl/pkgdiff/internal/log"
)

// ErrNotFound is returned when the bucket or object does not exist.
var ErrNotFound = errors.New("s3 object not found")

// ObjectAPI is the subset of *s3.Client used here.
type ObjectAPI interface {
	HeadObject(ctx context.Context, params *s3v2.HeadObjectInput, optFns ...func(*s3v2.Options)) (*s3v2.HeadObjectOutput, error)
	GetObject(ctx context.Context, params *s3v2.GetObjectInput, optFns ...func(*s3v2.Options)) (*s3v2.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3v2.PutObjectInput, optFns ...func(*s3v2.Options)) (*s3v2.PutObjectOutput, error)
}

// ObjectInfo is what a HEAD request tells us about an archive.
type ObjectInfo struct {
	Size int64
	ETag string
}

// FetchResult describes one downloaded archive.
type FetchResult struct {
	Path   string
	Size   int64
	Cached bool
}

// Store reads and writes archives in S3.
type Store struct {
	api ObjectAPI
}

// New returns a Store backed by api.
func New(api ObjectAPI) *Store {
	return &Store{api: api}
}

// Stat issues a HEAD for loc. A missing bucket or key yields an error that
// matches ErrNotFound.
func (s *Store) Stat(ctx context.Context, loc Location) (ObjectInfo, error) {
	out, err := s.api.HeadObject(ctx, &s3v2.HeadObjectInput{
		Bucket: awsv2.String(loc.Bucket),
		Key:    awsv2.String(loc.Key),
	})
	if err != nil {
		return ObjectInfo{}, wrap(loc, "head", err)
	}
	return ObjectInfo{
		Size: awsv2.ToInt64(out.ContentLength),
		ETag: awsv2.ToString(out.ETag),
	}, nil
}

// Fetch downloads loc to dst. When the object carries an ETag the download
// goes through the cache and a later Fetch of the same version is served
// from disk.
func (s *Store) Fetch(ctx context.Context, loc Location, dst string) (FetchResult, error) {
	info, err := s.Stat(ctx, loc)
	if err != nil {
		return FetchResult{}, err
	}

	subdirs := []string{"s3", loc.Bucket}
	key := loc.String() + "@" + info.ETag
	if info.ETag != "" {
		if hit, ok := cacheutil.Lookup(subdirs, key); ok {
			n, err := fsutil.CopyFile(hit.Path, dst)
			if err == nil {
				log.Debugf("fetch %s: served from cache", loc)
				return FetchResult{Path: dst, Size: n, Cached: true}, nil
			}
			log.WithError(err).Warnf("fetch %s: unusable cache entry, downloading", loc)
		}
	}

	out, err := s.api.GetObject(ctx, &s3v2.GetObjectInput{
		Bucket: awsv2.String(loc.Bucket),
		Key:    awsv2.String(loc.Key),
	})
	if err != nil {
		return FetchResult{}, wrap(loc, "get", err)
	}
	defer out.Body.Close() //nolint:errcheck

	if info.ETag != "" {
		entry, err := cacheutil.Store(subdirs, key, out.Body)
		if err != nil {
			return FetchResult{}, fmt.Errorf("fetch %s: %w", loc, err)
		}
		if entry != nil {
			n, err := fsutil.CopyFile(entry.Path, dst)
			if err != nil {
				return FetchResult{}, err
			}
			return FetchResult{Path: dst, Size: n}, nil
		}
	}

	n, err := writeFile(dst, out.Body)
	if err != nil {
		return FetchResult{}, fmt.Errorf("fetch %s: %w", loc, err)
	}
	return FetchResult{Path: dst, Size: n}, nil
}

// Upload puts the local file src at loc. The content type is sniffed from
// the file and falls back to application/zip.
func (s *Store) Upload(ctx context.Context, src string, loc Location) (int64, error) {
	f, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer f.Close() //nolint:errcheck

	fi, err := f.Stat()
	if err != nil {
		return 0, err
	}

	contentType := "application/zip"
	if mt, err := mimetype.DetectReader(f); err == nil && mt.Is("application/zip") {
		contentType = mt.String()
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return 0, err
	}

	_, err = s.api.PutObject(ctx, &s3v2.PutObjectInput{
		Bucket:        awsv2.String(loc.Bucket),
		Key:           awsv2.String(loc.Key),
		Body:          f,
		ContentLength: awsv2.Int64(fi.Size()),
		ContentType:   awsv2.String(contentType),
	})
	if err != nil {
		return 0, wrap(loc, "put", err)
	}
	log.Debugf("uploaded %s: size=%d type=%s", loc, fi.Size(), contentType)
	return fi.Size(), nil
}

func writeFile(dst string, r io.Reader) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(dst), fsutil.DefaultDirMode); err != nil {
		return 0, err
	}
	f, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, fsutil.DefaultFileMode)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return n, err
}

func wrap(loc Location, op string, err error) error {
	if isNotFound(err) {
		return fmt.Errorf("%s %s: %w", op, loc, ErrNotFound)
	}
	return fmt.Errorf("%s %s: %w", op, loc, err)
}

func isNotFound(err error) bool {
	var nf *types.NotFound
	var nsk *types.NoSuchKey
	var nsb *types.NoSuchBucket
	if errors.As(err, &nf) || errors.As(err, &nsk) || errors.As(err, &nsb) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey", "NoSuchBucket":
			return true
		}
	}
	return false
}
