// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package failure defines the error taxonomy shared by the pkgdiff
// components. Every error carries the operation and path it relates to and
// wraps the underlying cause so callers can use errors.Is and errors.As.
package failure
