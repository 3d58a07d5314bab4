// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package run

// Phase is a state of a single run.
type Phase int

const (
	Idle Phase = iota
	WorkspacePrepared
	DevExtracted
	TestExtracted
	Compared
	Materialized
	ArchiveBuilt
	TornDown
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case WorkspacePrepared:
		return "workspace-prepared"
	case DevExtracted:
		return "dev-extracted"
	case TestExtracted:
		return "test-extracted"
	case Compared:
		return "compared"
	case Materialized:
		return "materialized"
	case ArchiveBuilt:
		return "archive-built"
	case TornDown:
		return "torn-down"
	default:
		return "unknown"
	}
}
