// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

//go:build integration
// +build integration

package aws

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"testing"
	"time"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	s3v2 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestIntegration_ArchiveRoundTrip pushes a small archive through a real
// bucket. PKGDIFF_TEST_S3_ENDPOINT may point at MinIO or LocalStack.
func TestIntegration_ArchiveRoundTrip(t *testing.T) {
	ctx := context.Background()

	client, err := NewS3FromSettings(ctx, Settings{
		Region:   "us-east-1",
		Endpoint: os.Getenv("PKGDIFF_TEST_S3_ENDPOINT"),
	})
	require.NoError(t, err)

	bucket := fmt.Sprintf("pkgdiff-test-%d", time.Now().UnixNano())
	key := "releases/diff.zip"
	body := []byte("PK\x05\x06" + string(make([]byte, 18)))

	_, err = client.CreateBucket(ctx, &s3v2.CreateBucketInput{Bucket: awsv2.String(bucket)})
	require.NoError(t, err)
	defer func() {
		_, _ = client.DeleteObject(ctx, &s3v2.DeleteObjectInput{Bucket: awsv2.String(bucket), Key: awsv2.String(key)})
		_, _ = client.DeleteBucket(ctx, &s3v2.DeleteBucketInput{Bucket: awsv2.String(bucket)})
	}()

	_, err = client.PutObject(ctx, &s3v2.PutObjectInput{
		Bucket:      awsv2.String(bucket),
		Key:         awsv2.String(key),
		Body:        bytes.NewReader(body),
		ContentType: awsv2.String("application/zip"),
	})
	require.NoError(t, err)

	head, err := client.HeadObject(ctx, &s3v2.HeadObjectInput{Bucket: awsv2.String(bucket), Key: awsv2.String(key)})
	require.NoError(t, err)
	assert.Equal(t, int64(len(body)), awsv2.ToInt64(head.ContentLength))
	assert.NotEmpty(t, awsv2.ToString(head.ETag))

	out, err := client.GetObject(ctx, &s3v2.GetObjectInput{Bucket: awsv2.String(bucket), Key: awsv2.String(key)})
	require.NoError(t, err)
	defer out.Body.Close()
	got, err := io.ReadAll(out.Body)
	require.NoError(t, err)
	assert.Equal(t, body, got)
}
