// Copyright 2026 The Colony Authors
// SPDX-License-Identifier: Apache-2.0

// Package advisorylock wraps OS advisory file locking (flock) behind
// a small capability: acquire-shared, acquire-exclusive-nonblocking,
// and release. Advisory locks are honored only by cooperating
// processes; they do not protect against uncooperative access.
//
// The same contract governs both sides of the lease protocol: the
// remote node scripts use flock(1) on the node-resident state file,
// and this package gives local colony processes the identical
// semantics for the snapshot disk cache. The one property that must
// hold exactly is that a non-blocking exclusive acquisition fails
// immediately when the lock is held; it never queues.
package advisorylock
