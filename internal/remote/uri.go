// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package remote

import (
	"fmt"
	"path"
	"strings"
)

// Scheme prefixes every S3 location.
const Scheme = "s3://"

// Location is a parsed s3://bucket/key URI.
type Location struct {
	Bucket string
	Key    string
}

func (l Location) String() string {
	return Scheme + l.Bucket + "/" + l.Key
}

// Base returns the final path element of the key.
func (l Location) Base() string {
	return path.Base(l.Key)
}

// IsS3URI reports whether s names an S3 object.
func IsS3URI(s string) bool {
	return strings.HasPrefix(strings.ToLower(s), Scheme)
}

// ParseS3URI splits s into bucket and key. Both must be present and the key
// must not name a "directory".
func ParseS3URI(s string) (Location, error) {
	if !IsS3URI(s) {
		return Location{}, fmt.Errorf("not an s3 uri: %q", s)
	}

	rest := s[len(Scheme):]
	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return Location{}, fmt.Errorf("s3 uri needs bucket and key: %q", s)
	}
	if strings.HasSuffix(key, "/") {
		return Location{}, fmt.Errorf("s3 key must name an object: %q", s)
	}

	return Location{Bucket: bucket, Key: key}, nil
}
