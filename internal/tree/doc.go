// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package tree compares an extracted DEV tree with an extracted TEST tree and
// yields the files that must be copied into the diff.
//
// Content selection is asymmetric:
//   - present in both, bytes differ: TEST content (Modified)
//   - present only in TEST: TEST content (Added)
//   - present only in DEV: DEV content (DevOnly)
//
// Files with identical bytes on both sides are never yielded.
package tree
