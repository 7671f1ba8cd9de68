// Copyright 2026 The Colony Authors
// SPDX-License-Identifier: Apache-2.0

package remote

import (
	"context"
	"log/slog"
	"sync"
)

// DefaultMaxConcurrent caps in-flight connections when no explicit cap
// is configured. The base protocol places no bound at all (one
// connection per target); the cap exists so a fan-out over a large
// fleet does not exhaust OS connection limits.
const DefaultMaxConcurrent = 32

// Executor fans commands out to fleet nodes through a Transport.
type Executor struct {
	transport     Transport
	maxConcurrent int
	logger        *slog.Logger
}

// NewExecutor creates an executor. maxConcurrent bounds in-flight
// connections; zero or negative selects DefaultMaxConcurrent.
func NewExecutor(transport Transport, maxConcurrent int, logger *slog.Logger) *Executor {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrent
	}
	return &Executor{
		transport:     transport,
		maxConcurrent: maxConcurrent,
		logger:        logger,
	}
}

// Run executes command on every target concurrently and blocks until
// all of them have completed or failed to connect. The returned slice
// has one Result per target, in target order. Per-target failures are
// contained in their Result and never abort sibling operations; once
// dispatched, a sub-operation cannot be cancelled individually.
func (e *Executor) Run(ctx context.Context, addresses []string, command string) []Result {
	results := make([]Result, len(addresses))
	semaphore := make(chan struct{}, e.maxConcurrent)

	var wg sync.WaitGroup
	for i, address := range addresses {
		wg.Add(1)
		go func(i int, address string) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			results[i] = e.execOne(ctx, address, command)
		}(i, address)
	}
	wg.Wait()

	return results
}

// RunOne executes command against exactly one target. Status and
// lease operations use this form.
func (e *Executor) RunOne(ctx context.Context, address, command string) Result {
	return e.execOne(ctx, address, command)
}

// execOne runs the command on a single target, converting connection
// failures into a synthetic unreachable Result.
func (e *Executor) execOne(ctx context.Context, address, command string) Result {
	exitCode, output, err := e.transport.Exec(ctx, address, command)
	if err != nil {
		e.logger.Debug("target unreachable", "address", address, "error", err)
		return Result{
			Address:     address,
			ExitCode:    UnreachableExitCode,
			Unreachable: true,
		}
	}
	return Result{
		Address:  address,
		ExitCode: exitCode,
		Output:   output,
	}
}
