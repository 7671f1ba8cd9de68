// Copyright 2026 The Colony Authors
// SPDX-License-Identifier: Apache-2.0

// Package inventory parses and holds the static inventory of fleet
// nodes. The inventory is a pipe-delimited text file, one node per
// line. Records are sorted by zone at load time and each node is
// assigned a stable index in post-sort order; the index identifies
// the node for the lifetime of the process.
//
// The Catalog loads the inventory once and caches the result. An
// explicit Reload re-reads the source, but identical bytes (compared
// by blake3 fingerprint) yield the identical node sequence without
// reparsing, so reloading an unchanged file is free and deterministic.
package inventory
