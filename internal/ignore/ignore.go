// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package ignore decides which paths are excluded from extraction,
// comparison and archiving.
package ignore

import (
	"sort"
	"strings"
)

// Builtin lists the platform-noise names that are always ignored.
var Builtin = []string{
	".DS_Store",
	"._.DS_Store",
	"__MACOSX",
	".AppleDouble",
	".LSOverride",
	"Thumbs.db",
	"desktop.ini",
}

// Filter matches names against the built-in set plus custom patterns. A
// pattern matches when it occurs anywhere in the name, so "cache" matches
// "mycache.json" and "__MACOSX" matches "__MACOSX/foo". The zero value and a
// nil *Filter only apply the built-in set.
type Filter struct {
	patterns []string
}

// New returns a Filter with the built-in patterns and the given custom ones.
// Empty and duplicate custom patterns are dropped.
func New(custom ...string) *Filter {
	seen := make(map[string]struct{}, len(Builtin)+len(custom))
	patterns := make([]string, 0, len(Builtin)+len(custom))
	for _, p := range append(append([]string{}, Builtin...), custom...) {
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		patterns = append(patterns, p)
	}
	return &Filter{patterns: patterns}
}

// ShouldIgnore reports whether name contains any of the filter's patterns.
func (f *Filter) ShouldIgnore(name string) bool {
	if f == nil || f.patterns == nil {
		return ShouldIgnore(name, nil)
	}
	for _, p := range f.patterns {
		if strings.Contains(name, p) {
			return true
		}
	}
	return false
}

// Patterns returns the effective pattern set, sorted.
func (f *Filter) Patterns() []string {
	if f == nil || f.patterns == nil {
		f = New()
	}
	out := append([]string(nil), f.patterns...)
	sort.Strings(out)
	return out
}

// ShouldIgnore is the functional form of Filter.ShouldIgnore.
func ShouldIgnore(name string, custom []string) bool {
	for _, p := range Builtin {
		if strings.Contains(name, p) {
			return true
		}
	}
	for _, p := range custom {
		if p != "" && strings.Contains(name, p) {
			return true
		}
	}
	return false
}
