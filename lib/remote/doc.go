// Copyright 2026 The Colony Authors
// SPDX-License-Identifier: Apache-2.0

// Package remote runs shell commands on fleet nodes. It is the sole
// channel through which any colony component talks to a node.
//
// The Executor fans a command out to many targets concurrently, one
// connection per target, bounded by a configurable concurrency cap,
// and joins at a completion barrier: Run returns only when every
// target has finished or failed to connect. There are no partial
// results and no per-target cancellation once a batch is dispatched.
//
// A connection failure never aborts the batch; the failed target gets
// a synthetic Result with Unreachable set and a non-zero exit code.
package remote
