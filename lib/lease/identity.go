// Copyright 2026 The Colony Authors
// SPDX-License-Identifier: Apache-2.0

package lease

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/colonyops/colony/lib/inventory"
)

// ErrNoIdentity means no reachable node reported a configured
// identity, so there is nothing to resolve.
var ErrNoIdentity = errors.New("no reachable node reported an identity")

// ResolveIdentity determines the caller's trusted identity by probing
// every node for its configured identity value. Unreachable nodes and
// nodes with no configured value are ignored. When the remaining
// responses agree, that value is returned. When they disagree, the
// first-seen value (in sorted inventory order) wins and every
// conflicting response is logged as a warning. Disagreement is an
// inconsistency to flag, not an error.
func ResolveIdentity(ctx context.Context, runner Runner, nodes []inventory.Node, paths Paths, logger *slog.Logger) (string, error) {
	if len(nodes) == 0 {
		return "", fmt.Errorf("resolving identity: inventory is empty")
	}

	addresses := make([]string, len(nodes))
	for i, node := range nodes {
		addresses[i] = node.PublicAddr
	}

	script := IdentityProbeCommand{}.Script(paths)
	results := runner.Run(ctx, addresses, script)

	resolved := ""
	reachable := 0
	for i, result := range results {
		if result.Unreachable {
			continue
		}
		reachable++

		value := parseAssignments(result.Output)["IDENTITY"]
		if value == "" {
			logger.Debug("node has no configured identity",
				"node", nodes[i].Hostname, "address", nodes[i].PublicAddr)
			continue
		}

		if resolved == "" {
			resolved = value
			continue
		}
		if value != resolved {
			logger.Warn("identity conflict",
				"node", nodes[i].Hostname,
				"address", nodes[i].PublicAddr,
				"reported", value,
				"resolved", resolved,
			)
		}
	}

	if resolved == "" {
		if reachable == 0 {
			return "", fmt.Errorf("resolving identity: every node is unreachable: %w", ErrNoIdentity)
		}
		return "", ErrNoIdentity
	}
	return resolved, nil
}
