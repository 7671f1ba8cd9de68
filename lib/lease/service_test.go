// Copyright 2026 The Colony Authors
// SPDX-License-Identifier: Apache-2.0

package lease

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/colonyops/colony/lib/inventory"
	"github.com/colonyops/colony/lib/profile"
)

func testProfile(identity string) *profile.Profile {
	return &profile.Profile{
		Identity:       identity,
		AuthorizedKeys: []string{"ssh-ed25519 KEY " + identity + "@laptop"},
		MOTD:           "leased by ${IDENTITY} for ${INSTANCE}",
	}
}

func newTestService(t *testing.T, fleet *fakeFleet, identity string, count int) (*Service, *Cache) {
	t.Helper()
	cache := newTestCache(t, fleet, count)
	service := NewService(newTestExecutor(fleet), cache, testProfile(identity), testPaths(), discardLogger())
	return service, cache
}

func TestAcquireReleaseRoundTrip(t *testing.T) {
	fleet := newFakeFleet()
	service, _ := newTestService(t, fleet, "alice", 2)
	node := inventory.Node{Index: 0, Hostname: "host1", PublicAddr: testAddress(0)}
	ctx := context.Background()

	if err := service.Acquire(ctx, node, "testnet-1"); err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	status := service.Status(ctx, node)
	if status.State != StateHeld {
		t.Fatalf("after acquire: state %v, want HELD", status.State)
	}
	if status.Record != (LockRecord{Holder: "alice", Instance: "testnet-1"}) {
		t.Errorf("after acquire: record %+v", status.Record)
	}
	if status.Degraded {
		t.Errorf("clean acquire reported degraded bootstrap")
	}
	if !service.IsRequisitionedByThisProcess(0) {
		t.Errorf("acquire did not record local bookkeeping")
	}

	remote := fleet.node(testAddress(0))
	if len(remote.authKeys) != 1 || remote.authKeys[0] != "ssh-ed25519 KEY alice@laptop" {
		t.Errorf("access keys not installed: %q", remote.authKeys)
	}
	if remote.motd != "leased by alice for testnet-1" {
		t.Errorf("motd not expanded: %q", remote.motd)
	}

	if err := service.Release(ctx, node); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if status := service.Status(ctx, node); status.State != StateFree {
		t.Errorf("after release: state %v, want FREE", status.State)
	}
	if service.IsRequisitionedByThisProcess(0) {
		t.Errorf("release did not clear local bookkeeping")
	}
	if remote.motd != "" || len(remote.authKeys) != 0 || remote.scratch {
		t.Errorf("release left bootstrap artifacts: %+v", remote)
	}
}

func TestAcquireHeldNode(t *testing.T) {
	fleet := newFakeFleet()
	fleet.node(testAddress(0)).holder = "bob"
	fleet.node(testAddress(0)).instance = "perf-3"
	fleet.node(testAddress(0)).sentinel = true

	service, _ := newTestService(t, fleet, "alice", 1)
	node := inventory.Node{Index: 0, PublicAddr: testAddress(0)}

	err := service.Acquire(context.Background(), node, "testnet-1")
	if !errors.Is(err, ErrAlreadyHeld) {
		t.Fatalf("Acquire on held node: %v, want ErrAlreadyHeld", err)
	}
	if service.IsRequisitionedByThisProcess(0) {
		t.Errorf("failed acquire recorded local bookkeeping")
	}
	if got := fleet.node(testAddress(0)).holder; got != "bob" {
		t.Errorf("failed acquire changed holder to %q", got)
	}
}

func TestAcquireContendedNode(t *testing.T) {
	fleet := newFakeFleet()
	fleet.node(testAddress(0)).wedged = true

	service, _ := newTestService(t, fleet, "alice", 1)
	err := service.Acquire(context.Background(), inventory.Node{PublicAddr: testAddress(0)}, "testnet-1")
	if !errors.Is(err, ErrContended) {
		t.Fatalf("Acquire on contended node: %v, want ErrContended", err)
	}
}

func TestAcquireUnreachableNode(t *testing.T) {
	fleet := newFakeFleet()
	fleet.down[testAddress(0)] = true

	service, _ := newTestService(t, fleet, "alice", 1)
	err := service.Acquire(context.Background(), inventory.Node{PublicAddr: testAddress(0)}, "testnet-1")
	if !errors.Is(err, ErrUnreachable) {
		t.Fatalf("Acquire on down node: %v, want ErrUnreachable", err)
	}
}

func TestReleaseByNonHolderLeavesStateUnchanged(t *testing.T) {
	fleet := newFakeFleet()
	remote := fleet.node(testAddress(0))
	remote.holder = "bob"
	remote.instance = "perf-3"
	remote.sentinel = true
	remote.motd = "leased by bob for perf-3"

	service, _ := newTestService(t, fleet, "alice", 1)
	node := inventory.Node{Index: 0, PublicAddr: testAddress(0)}

	err := service.Release(context.Background(), node)
	if !errors.Is(err, ErrIdentityMismatch) {
		t.Fatalf("Release by non-holder: %v, want ErrIdentityMismatch", err)
	}
	if remote.holder != "bob" || remote.instance != "perf-3" || !remote.sentinel {
		t.Errorf("failed release mutated node state: %+v", remote)
	}
}

func TestReleaseUnleasedNode(t *testing.T) {
	service, _ := newTestService(t, newFakeFleet(), "alice", 1)
	err := service.Release(context.Background(), inventory.Node{PublicAddr: testAddress(0)})
	if !errors.Is(err, ErrNotHeld) {
		t.Fatalf("Release of free node: %v, want ErrNotHeld", err)
	}
}

// Two operators race for the same node. The node-resident lock decides;
// exactly one acquire succeeds and the other observes the winner's
// record.
func TestConcurrentAcquireSingleWinner(t *testing.T) {
	for range 20 {
		fleet := newFakeFleet()
		alice, _ := newTestService(t, fleet, "alice", 1)
		bob, _ := newTestService(t, fleet, "bob", 1)
		node := inventory.Node{Index: 0, PublicAddr: testAddress(0)}

		var wg sync.WaitGroup
		errs := make([]error, 2)
		for i, service := range []*Service{alice, bob} {
			wg.Add(1)
			go func() {
				defer wg.Done()
				errs[i] = service.Acquire(context.Background(), node, "testnet-1")
			}()
		}
		wg.Wait()

		succeeded := 0
		for _, err := range errs {
			if err == nil {
				succeeded++
			} else if !errors.Is(err, ErrAlreadyHeld) && !errors.Is(err, ErrContended) {
				t.Fatalf("loser got unexpected error: %v", err)
			}
		}
		if succeeded != 1 {
			t.Fatalf("%d acquires succeeded, want exactly 1", succeeded)
		}

		winner := fleet.node(testAddress(0)).holder
		if winner != "alice" && winner != "bob" {
			t.Fatalf("holder after race: %q", winner)
		}
	}
}
