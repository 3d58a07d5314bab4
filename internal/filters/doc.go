// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package filters narrows the plan dataset with --filter expressions.
//
// A filter is key, operator, target. Several filters are joined with a comma,
// or with PKGDIFF_FILTER_DELIM when targets contain commas. A row is kept
// only when it matches every filter.
//
// Operators, each negated with a leading !:
//
//   - = : exact match, numeric for numeric columns
//   - ~ : case-insensitive match
//   - ^ : prefix match
//   - < and > : ordering, numeric for numeric columns
//   - @ : substring match
//   - / : regular expression match
//
// Examples:
//
//   - "kind=added" : only new files
//   - "path^bin/" : files under bin/
//   - "size>1048576" : files larger than 1 MiB
//   - "path!/\.md$" : everything except markdown
//
// Keys are dataset keys (see plan --schema) or column titles set with
// --attrs. An unknown key is reported and ignored.
package filters
