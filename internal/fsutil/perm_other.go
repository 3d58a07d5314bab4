// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

//go:build windows || plan9 || js || wasip1

package fsutil

// PermissionsSupported reports whether the platform honours POSIX mode bits.
const PermissionsSupported = false
