// Copyright 2026 The Colony Authors
// SPDX-License-Identifier: Apache-2.0

package fleet

import (
	"strings"
	"testing"

	"github.com/colonyops/colony/lib/inventory"
	"github.com/colonyops/colony/lib/lease"
)

func TestPorcelainLine(t *testing.T) {
	entry := lease.Entry{
		Node: inventory.Node{
			Hostname:    "host1",
			PublicAddr:  "192.0.2.10",
			PrivateAddr: "10.0.0.10",
			Zone:        "us-east",
		},
		Status: lease.NodeStatus{
			State:  lease.StateHeld,
			Record: lease.LockRecord{Holder: "alice", Instance: "testnet-1"},
		},
	}

	got := porcelainLine(entry)
	want := "host1\v192.0.2.10\v10.0.0.10\vHELD\vus-east\valice\vtestnet-1"
	if got != want {
		t.Errorf("porcelainLine = %q, want %q", got, want)
	}
}

func TestPorcelainLineFreeNodeHasEmptyHolderFields(t *testing.T) {
	entry := lease.Entry{
		Node: inventory.Node{
			Hostname:    "host2",
			PublicAddr:  "192.0.2.11",
			PrivateAddr: "10.0.0.11",
			Zone:        "us-west",
		},
		Status: lease.NodeStatus{State: lease.StateFree},
	}

	fields := strings.Split(porcelainLine(entry), "\v")
	if len(fields) != 7 {
		t.Fatalf("got %d fields, want 7: %q", len(fields), fields)
	}
	if fields[3] != "FREE" {
		t.Errorf("status field = %q, want FREE", fields[3])
	}
	if fields[5] != "" || fields[6] != "" {
		t.Errorf("free node has non-empty holder fields: %q", fields)
	}
}

func TestStatusCellDegradedMarker(t *testing.T) {
	status := lease.NodeStatus{
		State:    lease.StateHeld,
		Record:   lease.LockRecord{Holder: "alice", Instance: "testnet-1"},
		Degraded: true,
	}

	if got := statusCell(status); !strings.Contains(got, "(degraded)") {
		t.Errorf("statusCell = %q, want degraded marker", got)
	}

	status.Degraded = false
	if got := statusCell(status); strings.Contains(got, "degraded") {
		t.Errorf("statusCell = %q, unexpected degraded marker", got)
	}
}

func TestStorageSummary(t *testing.T) {
	node := inventory.Node{
		PrimaryStorage: inventory.Storage{Type: "ssd", CapacityGB: 500},
		AdditionalStorage: []inventory.Storage{
			{Type: "hdd", CapacityGB: 1000},
			{Type: "hdd", CapacityGB: 2000},
		},
	}
	if got, want := storageSummary(node), "ssd:500,hdd:1000,hdd:2000"; got != want {
		t.Errorf("storageSummary = %q, want %q", got, want)
	}

	node.AdditionalStorage = nil
	if got, want := storageSummary(node), "ssd:500"; got != want {
		t.Errorf("storageSummary = %q, want %q", got, want)
	}
}
