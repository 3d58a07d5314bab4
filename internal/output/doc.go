// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package output turns plan candidates into a dataset and emits it as a
// table, JSON or YAML.
package output
