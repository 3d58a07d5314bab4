// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package config provides the two configuration layers of pkgdiff.
//
// The run configuration (LoadRunConfig) is the JSON or YAML document naming
// the DEV, TEST and output archives for one invocation. It is resolved once
// into an immutable RunConfig.
//
// The user defaults (Load, GetString, GetInt, GetStringSlice) are an optional
// YAML document located via PKGDIFF_CFG_FILE or in the user's configuration
// directory, typically:
//   - Linux/macOS: $XDG_CONFIG_HOME/pkgdiff.yaml or $HOME/.config/pkgdiff.yaml
//   - Windows: %APPDATA%/pkgdiff.yaml
//
// They supply flag defaults, table colours and global ignore patterns.
package config
