// Copyright 2026 The Colony Authors
// SPDX-License-Identifier: Apache-2.0

package lease

import (
	"strings"

	"github.com/colonyops/colony/lib/remote"
)

// State is a node's lease state as observed by one query.
type State int

const (
	// StateFree means the node carries no lease record.
	StateFree State = iota

	// StateHeld means a holder identity and instance name are
	// recorded on the node.
	StateHeld

	// StateDown means the node could not be reached. It is derived
	// from the connectivity failure, never stored.
	StateDown
)

// String returns the canonical upper-case state name used in status
// output.
func (s State) String() string {
	switch s {
	case StateFree:
		return "FREE"
	case StateHeld:
		return "HELD"
	case StateDown:
		return "DOWN"
	}
	return "UNKNOWN"
}

// LockRecord is the node-resident lease record. An empty Holder means
// the node is free.
type LockRecord struct {
	// Holder is the identity the lease is recorded under.
	Holder string `json:"holder_identity"`

	// Instance is the cluster run the lease is for.
	Instance string `json:"instance_name"`
}

// NodeStatus is the ephemeral, per-query status of one node.
type NodeStatus struct {
	// State is Free, Held, or Down.
	State State `json:"state"`

	// Record is the lease record for Held nodes; zero otherwise.
	Record LockRecord `json:"record"`

	// Degraded is true for a held node whose bootstrap sentinel is
	// missing: the record was committed but the bootstrap never
	// finished. Colony surfaces this but does not attempt recovery.
	Degraded bool `json:"degraded,omitempty"`
}

// StatusFromQuery interprets one query result. Unreachable targets
// are Down; an empty holder field (including absent or unreadable
// state files) is Free.
func StatusFromQuery(result remote.Result) NodeStatus {
	if result.Unreachable {
		return NodeStatus{State: StateDown}
	}

	fields := parseAssignments(result.Output)
	holder := fields["HOLDER_IDENTITY"]
	if holder == "" {
		return NodeStatus{State: StateFree}
	}
	return NodeStatus{
		State: StateHeld,
		Record: LockRecord{
			Holder:   holder,
			Instance: fields["INSTANCE_NAME"],
		},
		Degraded: fields["BOOTSTRAP"] == "partial",
	}
}

// parseAssignments reads KEY=value lines into a map, ignoring lines
// without '='. Later occurrences of a key win, matching shell
// sourcing semantics.
func parseAssignments(lines []string) map[string]string {
	fields := make(map[string]string, len(lines))
	for _, line := range lines {
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		fields[key] = value
	}
	return fields
}
