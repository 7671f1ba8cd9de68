// Copyright 2026 The Colony Authors
// SPDX-License-Identifier: Apache-2.0

package lease

import (
	"time"

	"github.com/colonyops/colony/lib/inventory"
)

// Entry pairs a node with its observed status.
type Entry struct {
	Node   inventory.Node `json:"node"`
	Status NodeStatus     `json:"status"`
}

// Snapshot is a process-wide availability snapshot: one entry per
// inventory node, sorted by public address. A snapshot is only
// trustworthy between the moment it was built and the next remote
// state change; there is no invalidation mechanism, staleness is
// entirely caller-managed.
//
// Snapshots are replaced wholesale by the Cache; treat them as
// immutable once obtained.
type Snapshot struct {
	// Entries is the ordered (node, status) sequence.
	Entries []Entry `json:"entries"`

	// BuiltAt is when the snapshot was built, including for
	// snapshots loaded from the disk cache.
	BuiltAt time.Time `json:"built_at"`

	// Stale is true when the snapshot was not built by this
	// process's most recent refresh (for example, loaded from the
	// disk cache of an earlier invocation).
	Stale bool `json:"stale"`

	// Requisitioned holds the inventory indices this process has
	// itself successfully leased. Local bookkeeping only: the
	// authoritative truth is always the node-resident record.
	Requisitioned map[int]bool `json:"requisitioned,omitempty"`
}

// IsRequisitioned reports whether this process leased the node with
// the given inventory index.
func (s *Snapshot) IsRequisitioned(index int) bool {
	return s.Requisitioned[index]
}

// FreeEntries returns the entries observed Free, in snapshot order.
func (s *Snapshot) FreeEntries() []Entry {
	var free []Entry
	for _, entry := range s.Entries {
		if entry.Status.State == StateFree {
			free = append(free, entry)
		}
	}
	return free
}

// FirstFreeSatisfying returns the first Free entry whose machine
// class satisfies the requested class, in snapshot order.
func (s *Snapshot) FirstFreeSatisfying(requested inventory.MachineClass) (Entry, bool) {
	for _, entry := range s.Entries {
		if entry.Status.State == StateFree && entry.Node.Class.Satisfies(requested) {
			return entry, true
		}
	}
	return Entry{}, false
}
