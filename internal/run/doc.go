// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package run drives one package diff from a resolved configuration to the
// diff archive. The workspace is torn down on every exit path unless the
// configuration asks to keep it.
package run
