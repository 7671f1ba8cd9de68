// Copyright 2026 The Colony Authors
// SPDX-License-Identifier: Apache-2.0

package fleet

import (
	"fmt"
	"log/slog"

	"github.com/colonyops/colony/lib/clock"
	"github.com/colonyops/colony/lib/config"
	"github.com/colonyops/colony/lib/inventory"
	"github.com/colonyops/colony/lib/lease"
	"github.com/colonyops/colony/lib/profile"
	"github.com/colonyops/colony/lib/remote"
)

// configParams is the shared --config parameter block embedded by
// every fleet command's params struct.
type configParams struct {
	Config string `flag:"config" desc:"configuration file path (overrides COLONY_CONFIG)"`
}

// environment bundles the per-invocation object graph every fleet
// command needs: configuration, catalog, executor, and the
// availability cache.
type environment struct {
	config   *config.Config
	catalog  *inventory.Catalog
	executor *remote.Executor
	paths    lease.Paths
	cache    *lease.Cache
	logger   *slog.Logger
}

// newEnvironment loads the configuration (from configPath if set,
// otherwise COLONY_CONFIG) and wires up the fleet object graph.
func newEnvironment(configPath string, logger *slog.Logger) (*environment, error) {
	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := cfg.EnsureStateDir(); err != nil {
		return nil, err
	}

	catalog := inventory.NewCatalog(cfg.Inventory)
	transport := &remote.SSHTransport{
		User:           cfg.SSH.User,
		Port:           cfg.SSH.Port,
		KeyFile:        cfg.SSH.KeyFile,
		ConnectTimeout: cfg.SSH.ConnectTimeout,
	}
	executor := remote.NewExecutor(transport, cfg.MaxConcurrent, logger)
	paths := lease.PathsFromConfig(cfg.Remote)
	cache := lease.NewCache(executor, catalog, paths, cfg.StateDir, clock.Real(), logger)

	return &environment{
		config:   cfg,
		catalog:  catalog,
		executor: executor,
		paths:    paths,
		cache:    cache,
		logger:   logger,
	}, nil
}

// service reads the operator's requisition profile and returns the
// lease service acting as that identity. Only the commands that
// mutate lease state (requisition, free) need the profile; the
// read-only commands never touch it.
func (e *environment) service() (*lease.Service, error) {
	operatorProfile, err := profile.ReadFile(e.config.Profile)
	if err != nil {
		return nil, fmt.Errorf("loading requisition profile: %w", err)
	}
	return lease.NewService(e.executor, e.cache, operatorProfile, e.paths, e.logger), nil
}
