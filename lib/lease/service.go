// Copyright 2026 The Colony Authors
// SPDX-License-Identifier: Apache-2.0

package lease

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/colonyops/colony/lib/inventory"
	"github.com/colonyops/colony/lib/profile"
)

// Failure taxonomy for lease operations. Callers are expected to
// retry contention against a different node, never the same one.
var (
	// ErrUnreachable means the node could not be reached; its state
	// is unknown but uncorrupted (a disconnect before the commit
	// point leaves the node free, after it leaves it held).
	ErrUnreachable = errors.New("node unreachable")

	// ErrContended means the node's exclusive lock was held by a
	// concurrent operation and the non-blocking acquisition failed
	// immediately.
	ErrContended = errors.New("lease lock contended")

	// ErrAlreadyHeld means the node already carries a lease record.
	ErrAlreadyHeld = errors.New("node already leased")

	// ErrIdentityMismatch means a free was attempted by an identity
	// that is not the recorded holder; node state is unchanged.
	ErrIdentityMismatch = errors.New("caller is not the lease holder")

	// ErrNotHeld means a free was attempted on a node with no lease
	// record.
	ErrNotHeld = errors.New("node is not leased")
)

// Service orchestrates lease acquisition and release against the
// node-resident lock protocol, and records success in the
// availability cache's local bookkeeping.
type Service struct {
	runner  Runner
	cache   *Cache
	profile *profile.Profile
	paths   Paths
	logger  *slog.Logger
}

// NewService creates a requisition service acting as the identity in
// the given profile.
func NewService(runner Runner, cache *Cache, operatorProfile *profile.Profile, paths Paths, logger *slog.Logger) *Service {
	return &Service{
		runner:  runner,
		cache:   cache,
		profile: operatorProfile,
		paths:   paths,
		logger:  logger,
	}
}

// Identity returns the identity leases are recorded under.
func (s *Service) Identity() string {
	return s.profile.Identity
}

// Acquire attempts to lease node for the named instance. On success
// the node's index is recorded in the cache's requisitioned set. On
// failure the returned error distinguishes contention, an existing
// lease, and unreachability; remote state is unchanged in all failure
// cases.
func (s *Service) Acquire(ctx context.Context, node inventory.Node, instance string) error {
	command := RequisitionCommand{
		Identity:       s.profile.Identity,
		Instance:       instance,
		AuthorizedKeys: s.profile.AuthorizedKeys,
		MOTD:           s.profile.ExpandMOTD(instance),
	}

	result := s.runner.RunOne(ctx, node.PublicAddr, command.Script(s.paths))
	if result.Unreachable {
		return fmt.Errorf("requisition %s: %w", node.PublicAddr, ErrUnreachable)
	}

	fields := parseAssignments(result.Output)
	switch fields["RESULT"] {
	case "ok":
		s.cache.MarkRequisitioned(node.Index)
		s.logger.Info("node requisitioned",
			"node", node.Hostname,
			"address", node.PublicAddr,
			"instance", instance,
			"identity", s.profile.Identity,
		)
		return nil
	case "contended":
		return fmt.Errorf("requisition %s: %w", node.PublicAddr, ErrContended)
	case "held":
		return fmt.Errorf("requisition %s: held by %q for %q: %w",
			node.PublicAddr, fields["HOLDER_IDENTITY"], fields["INSTANCE_NAME"], ErrAlreadyHeld)
	}
	return fmt.Errorf("requisition %s: unexpected response (exit %d): %v",
		node.PublicAddr, result.ExitCode, result.Output)
}

// Release frees the lease this service's identity holds on node. The
// remote side verifies the identity under the exclusive lock before
// mutating anything; a mismatch leaves the node byte-for-byte
// unchanged.
func (s *Service) Release(ctx context.Context, node inventory.Node) error {
	command := FreeCommand{Identity: s.profile.Identity}

	result := s.runner.RunOne(ctx, node.PublicAddr, command.Script(s.paths))
	if result.Unreachable {
		return fmt.Errorf("free %s: %w", node.PublicAddr, ErrUnreachable)
	}

	fields := parseAssignments(result.Output)
	switch fields["RESULT"] {
	case "ok":
		s.cache.ClearRequisitioned(node.Index)
		s.logger.Info("node freed",
			"node", node.Hostname,
			"address", node.PublicAddr,
			"identity", s.profile.Identity,
		)
		return nil
	case "free":
		return fmt.Errorf("free %s: %w", node.PublicAddr, ErrNotHeld)
	case "identity-mismatch":
		return fmt.Errorf("free %s: held by %q: %w",
			node.PublicAddr, fields["HOLDER_IDENTITY"], ErrIdentityMismatch)
	}
	return fmt.Errorf("free %s: unexpected response (exit %d): %v",
		node.PublicAddr, result.ExitCode, result.Output)
}

// Status queries one node's lease state.
func (s *Service) Status(ctx context.Context, node inventory.Node) NodeStatus {
	result := s.runner.RunOne(ctx, node.PublicAddr, QueryCommand{}.Script(s.paths))
	return StatusFromQuery(result)
}

// IsRequisitionedByThisProcess reports whether this process leased
// the node with the given inventory index. Local bookkeeping only;
// the authoritative truth is always the node-resident record.
func (s *Service) IsRequisitionedByThisProcess(index int) bool {
	return s.cache.IsRequisitioned(index)
}
