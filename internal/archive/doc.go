// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package archive unpacks snapshot zips into working trees and packs a
// working tree back into a zip. Both directions apply the ignore filter, so
// platform noise never enters or leaves a workspace.
package archive
