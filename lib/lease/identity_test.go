// Copyright 2026 The Colony Authors
// SPDX-License-Identifier: Apache-2.0

package lease

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/colonyops/colony/lib/inventory"
)

func testNodes(count int) []inventory.Node {
	nodes := make([]inventory.Node, count)
	for i := range nodes {
		nodes[i] = inventory.Node{
			Index:      i,
			Hostname:   "host" + string(rune('1'+i)),
			PublicAddr: testAddress(i),
		}
	}
	return nodes
}

func TestResolveIdentityConsensus(t *testing.T) {
	fleet := newFakeFleet()
	for i := range 3 {
		fleet.node(testAddress(i)).identity = "alice"
	}

	identity, err := ResolveIdentity(context.Background(), newTestExecutor(fleet), testNodes(3), testPaths(), discardLogger())
	if err != nil {
		t.Fatalf("ResolveIdentity: %v", err)
	}
	if identity != "alice" {
		t.Errorf("resolved %q, want alice", identity)
	}
}

func TestResolveIdentitySkipsUnreachableAndUnconfigured(t *testing.T) {
	fleet := newFakeFleet()
	fleet.down[testAddress(0)] = true
	// testAddress(1) has no configured identity.
	fleet.node(testAddress(2)).identity = "alice"

	identity, err := ResolveIdentity(context.Background(), newTestExecutor(fleet), testNodes(3), testPaths(), discardLogger())
	if err != nil {
		t.Fatalf("ResolveIdentity: %v", err)
	}
	if identity != "alice" {
		t.Errorf("resolved %q, want alice", identity)
	}
}

func TestResolveIdentityConflictFirstSeenWins(t *testing.T) {
	fleet := newFakeFleet()
	fleet.node(testAddress(0)).identity = "alice"
	fleet.node(testAddress(1)).identity = "mallory"
	fleet.node(testAddress(2)).identity = "alice"

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	identity, err := ResolveIdentity(context.Background(), newTestExecutor(fleet), testNodes(3), testPaths(), logger)
	if err != nil {
		t.Fatalf("ResolveIdentity: %v", err)
	}
	if identity != "alice" {
		t.Errorf("resolved %q, want first-seen alice", identity)
	}

	logged := buf.String()
	if !strings.Contains(logged, "identity conflict") || !strings.Contains(logged, "mallory") {
		t.Errorf("conflict not logged:\n%s", logged)
	}
	if strings.Count(logged, "identity conflict") != 1 {
		t.Errorf("want exactly one conflict warning:\n%s", logged)
	}
}

func TestResolveIdentityAllUnreachable(t *testing.T) {
	fleet := newFakeFleet()
	for i := range 2 {
		fleet.down[testAddress(i)] = true
	}

	_, err := ResolveIdentity(context.Background(), newTestExecutor(fleet), testNodes(2), testPaths(), discardLogger())
	if !errors.Is(err, ErrNoIdentity) {
		t.Fatalf("all unreachable: %v, want ErrNoIdentity", err)
	}
}

func TestResolveIdentityNoneConfigured(t *testing.T) {
	fleet := newFakeFleet()

	_, err := ResolveIdentity(context.Background(), newTestExecutor(fleet), testNodes(2), testPaths(), discardLogger())
	if !errors.Is(err, ErrNoIdentity) {
		t.Fatalf("none configured: %v, want ErrNoIdentity", err)
	}
}

func TestResolveIdentityEmptyInventory(t *testing.T) {
	_, err := ResolveIdentity(context.Background(), newTestExecutor(newFakeFleet()), nil, testPaths(), discardLogger())
	if err == nil {
		t.Fatalf("empty inventory: want error")
	}
}
