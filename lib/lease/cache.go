// Copyright 2026 The Colony Authors
// SPDX-License-Identifier: Apache-2.0

package lease

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/colonyops/colony/lib/advisorylock"
	"github.com/colonyops/colony/lib/clock"
	"github.com/colonyops/colony/lib/inventory"
	"github.com/colonyops/colony/lib/remote"
)

// Runner is the subset of *remote.Executor the lease layer needs.
// Tests substitute a fake fleet.
type Runner interface {
	Run(ctx context.Context, addresses []string, command string) []remote.Result
	RunOne(ctx context.Context, address, command string) remote.Result
}

// snapshotFileName is the CBOR snapshot cache inside the state dir.
// The companion .lock file serializes concurrent colony processes.
const snapshotFileName = "snapshot.cbor"

// diskSnapshot is the on-disk form of a snapshot. The requisitioned
// set is process-local bookkeeping and is deliberately not persisted.
type diskSnapshot struct {
	BuiltAt time.Time `json:"built_at"`
	Entries []Entry   `json:"entries"`
}

// Cache owns the process-wide availability snapshot. It rebuilds the
// snapshot on demand with one query per node through the remote
// executor, and mirrors the latest build to a CBOR file so later
// invocations can start from a (stale) view without touching the
// fleet.
//
// The cache is not a concurrency primitive: it must never be used as
// a source of truth for mutual exclusion. That job belongs to the
// node-resident advisory lock.
type Cache struct {
	runner   Runner
	catalog  *inventory.Catalog
	paths    Paths
	stateDir string
	clock    clock.Clock
	logger   *slog.Logger

	mu       sync.Mutex
	snapshot *Snapshot
}

// NewCache creates an availability cache. stateDir may be empty to
// disable the disk mirror.
func NewCache(runner Runner, catalog *inventory.Catalog, paths Paths, stateDir string, clk clock.Clock, logger *slog.Logger) *Cache {
	return &Cache{
		runner:   runner,
		catalog:  catalog,
		paths:    paths,
		stateDir: stateDir,
		clock:    clk,
		logger:   logger,
		snapshot: &Snapshot{Stale: true, Requisitioned: make(map[int]bool)},
	}
}

// Refresh rebuilds the snapshot: one Query per inventory node,
// fanned out through the executor, normalized, sorted by public
// address. The requisitioned set carries over from the previous
// snapshot: refreshing the view does not forget what this process
// leased.
func (c *Cache) Refresh(ctx context.Context) (*Snapshot, error) {
	nodes, err := c.catalog.Nodes()
	if err != nil {
		return nil, err
	}

	addresses := make([]string, len(nodes))
	for i, node := range nodes {
		addresses[i] = node.PublicAddr
	}

	script := QueryCommand{}.Script(c.paths)
	results := c.runner.Run(ctx, addresses, script)

	entries := make([]Entry, len(nodes))
	for i, node := range nodes {
		entries[i] = Entry{Node: node, Status: StatusFromQuery(results[i])}
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Node.PublicAddr < entries[j].Node.PublicAddr
	})

	builtAt := c.clock.Now()

	c.mu.Lock()
	requisitioned := c.snapshot.Requisitioned
	snapshot := &Snapshot{Entries: entries, BuiltAt: builtAt, Requisitioned: requisitioned}
	c.snapshot = snapshot
	c.mu.Unlock()

	c.writeDisk(entries, builtAt)
	return snapshot, nil
}

// Get returns the current snapshot. With useCache false it refreshes
// first. With useCache true it serves, in order of preference: the
// snapshot built earlier in this process, the disk mirror of an
// earlier invocation (marked Stale), or a fresh refresh if neither
// exists.
func (c *Cache) Get(ctx context.Context, useCache bool) (*Snapshot, error) {
	if !useCache {
		return c.Refresh(ctx)
	}

	c.mu.Lock()
	current := c.snapshot
	c.mu.Unlock()
	if len(current.Entries) > 0 {
		return current, nil
	}

	if disk, ok := c.readDisk(); ok {
		c.mu.Lock()
		disk.Requisitioned = c.snapshot.Requisitioned
		c.snapshot = disk
		c.mu.Unlock()
		return disk, nil
	}

	return c.Refresh(ctx)
}

// MarkRequisitioned records that this process leased the node with
// the given inventory index.
func (c *Cache) MarkRequisitioned(index int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshot.Requisitioned[index] = true
}

// ClearRequisitioned removes the local lease bookkeeping for the
// given inventory index.
func (c *Cache) ClearRequisitioned(index int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.snapshot.Requisitioned, index)
}

// IsRequisitioned reports whether this process leased the node with
// the given inventory index. Local bookkeeping only, never
// authoritative.
func (c *Cache) IsRequisitioned(index int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot.Requisitioned[index]
}

// writeDisk mirrors the snapshot to the state dir under an exclusive
// advisory lock. Failures are logged, never fatal: the disk mirror is
// a convenience, not part of the protocol.
func (c *Cache) writeDisk(entries []Entry, builtAt time.Time) {
	if c.stateDir == "" {
		return
	}

	path := filepath.Join(c.stateDir, snapshotFileName)
	lock, err := advisorylock.AcquireExclusive(path + ".lock")
	if err != nil {
		c.logger.Warn("snapshot cache lock failed", "path", path, "error", err)
		return
	}
	defer lock.Release()

	data, err := cbor.Marshal(diskSnapshot{BuiltAt: builtAt, Entries: entries})
	if err != nil {
		c.logger.Warn("snapshot cache encode failed", "error", err)
		return
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		c.logger.Warn("snapshot cache write failed", "path", path, "error", err)
	}
}

// readDisk loads the snapshot mirror written by an earlier
// invocation. The result is always marked Stale.
func (c *Cache) readDisk() (*Snapshot, bool) {
	if c.stateDir == "" {
		return nil, false
	}

	path := filepath.Join(c.stateDir, snapshotFileName)
	lock, err := advisorylock.AcquireShared(path + ".lock")
	if err != nil {
		c.logger.Warn("snapshot cache lock failed", "path", path, "error", err)
		return nil, false
	}
	defer lock.Release()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			c.logger.Warn("snapshot cache read failed", "path", path, "error", err)
		}
		return nil, false
	}

	var disk diskSnapshot
	if err := cbor.Unmarshal(data, &disk); err != nil {
		c.logger.Warn("snapshot cache decode failed", "path", path, "error", err)
		return nil, false
	}
	if len(disk.Entries) == 0 {
		return nil, false
	}

	c.logger.Debug("serving snapshot from disk cache",
		"path", path, "built_at", disk.BuiltAt)
	return &Snapshot{Entries: disk.Entries, BuiltAt: disk.BuiltAt, Stale: true}, true
}

// InvalidateDisk removes the disk mirror. Used when the inventory
// changes shape and old entries would be misleading.
func (c *Cache) InvalidateDisk() error {
	if c.stateDir == "" {
		return nil
	}
	path := filepath.Join(c.stateDir, snapshotFileName)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing snapshot cache %s: %w", path, err)
	}
	return nil
}
