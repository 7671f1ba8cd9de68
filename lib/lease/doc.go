// Copyright 2026 The Colony Authors
// SPDX-License-Identifier: Apache-2.0

// Package lease implements exclusive node leasing over a node-resident
// advisory file lock.
//
// Each fleet node carries its lease state entirely in a well-known
// state file: absent or empty holder means Free, populated holder and
// instance name means Held. A node that cannot be reached is Down,
// which is a caller-side observation, never stored anywhere.
//
// All mutation happens on the node itself, inside a small closed set
// of shell scripts rendered from typed RemoteCommand values and sent
// through the remote executor. The scripts serialize against each
// other with flock on the state file: queries take a shared lock,
// requisitions take an exclusive non-blocking lock (failing
// immediately on contention; this is the sole race-prevention
// mechanism), and frees take an exclusive lock and verify the caller's
// identity before touching anything. The in-process snapshot cache is
// bookkeeping only and is never used for mutual exclusion.
package lease
