// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package differ renders previews of what changed in a candidate file: a
// structural diff for JSON documents, a unified diff for text and a one-line
// note for binary content.
package differ
