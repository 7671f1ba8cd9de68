// Copyright 2026 The Colony Authors
// SPDX-License-Identifier: Apache-2.0

// Package profile parses the operator's requisition profile: the
// identity string leases are recorded under, the public keys installed
// into a node's access list during bootstrap, and the message-of-day
// template written to leased nodes.
//
// Profiles are authored on disk as JSONC files (JSON extended with
// comments and trailing commas), since operators edit them by hand.
package profile
