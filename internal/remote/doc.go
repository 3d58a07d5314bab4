// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package remote moves package archives between S3 and the local workspace.
// Inputs are fetched through the download cache keyed by object ETag, so a
// release that has not changed is only transferred once.
package remote
