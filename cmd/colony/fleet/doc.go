// Copyright 2026 The Colony Authors
// SPDX-License-Identifier: Apache-2.0

// Package fleet implements the colony fleet commands: availability
// listing, node requisition and release, identity resolution, and the
// inventory dump.
//
// Every command loads the colony configuration (from --config or the
// COLONY_CONFIG environment variable), builds the SSH executor and the
// availability cache from it, and then drives the lease protocol in
// lib/lease.
package fleet
