// Copyright 2026 The Colony Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for colony packages.
//
// [RequireReceive], [RequireSend], and [RequireClosed] encapsulate the
// timeout safety valve pattern (select with time.After fallback) so
// that individual tests do not need direct time.After calls. They keep
// concurrency tests from hanging the suite when a fan-out barrier or
// channel handshake misbehaves.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
package testutil
