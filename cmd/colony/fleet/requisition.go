// Copyright 2026 The Colony Authors
// SPDX-License-Identifier: Apache-2.0

package fleet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/pflag"

	"github.com/colonyops/colony/cmd/colony/cli"
	"github.com/colonyops/colony/lib/inventory"
	"github.com/colonyops/colony/lib/lease"
)

type requisitionParams struct {
	configParams
	Class int `flag:"class" desc:"pick the first free node whose machine class satisfies this value" default:"-1"`
}

// RequisitionCommand returns the requisition command.
func RequisitionCommand() *cli.Command {
	var params requisitionParams

	return &cli.Command{
		Name:    "requisition",
		Summary: "Lease a node for an instance",
		Description: `Lease a fleet node and record the caller as its holder.

With a public address, the named node is leased directly. With
--class N, the address is omitted and the first free node whose
machine class satisfies N is leased instead; contended candidates
are skipped and the next free node is tried.

Acquisition is atomic per node: exactly one concurrent caller wins,
losers fail immediately without waiting.`,
		Usage: "colony requisition <public-address> <instance-name>\n  colony requisition --class N <instance-name>",
		Examples: []cli.Example{
			{
				Description: "Lease a specific node",
				Command:     "colony requisition 192.0.2.10 testnet-1",
			},
			{
				Description: "Lease any free node of class 2 or better",
				Command:     "colony requisition --class 2 perf-3",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("requisition", &params)
		},
		Run: func(ctx context.Context, args []string) error {
			logger := cli.NewCommandLogger().With("command", "requisition")
			env, err := newEnvironment(params.Config, logger)
			if err != nil {
				return err
			}
			service, err := env.service()
			if err != nil {
				return err
			}

			if params.Class >= 0 {
				if len(args) != 1 {
					return fmt.Errorf("usage: colony requisition --class N <instance-name>")
				}
				return requisitionByClass(ctx, env, service, inventory.MachineClass(params.Class), args[0], logger)
			}

			if len(args) != 2 {
				return fmt.Errorf("usage: colony requisition <public-address> <instance-name>")
			}
			node, err := env.catalog.ByPublicAddr(args[0])
			if err != nil {
				return err
			}
			if err := service.Acquire(ctx, node, args[1]); err != nil {
				return err
			}
			fmt.Printf("requisitioned %s (%s) for %s\n", node.Hostname, node.PublicAddr, args[1])
			return nil
		},
	}
}

// requisitionByClass refreshes the availability snapshot and walks the
// free nodes whose class satisfies the request, in snapshot order.
// Nodes that turn out contended or taken between the query and the
// acquisition attempt are skipped; any other failure aborts.
func requisitionByClass(ctx context.Context, env *environment, service *lease.Service, class inventory.MachineClass, instance string, logger *slog.Logger) error {
	snapshot, err := env.cache.Get(ctx, false)
	if err != nil {
		return err
	}

	attempted := 0
	for _, entry := range snapshot.Entries {
		if entry.Status.State != lease.StateFree || !entry.Node.Class.Satisfies(class) {
			continue
		}
		attempted++

		err := service.Acquire(ctx, entry.Node, instance)
		if err == nil {
			fmt.Printf("requisitioned %s (%s) for %s\n", entry.Node.Hostname, entry.Node.PublicAddr, instance)
			return nil
		}
		if errors.Is(err, lease.ErrContended) || errors.Is(err, lease.ErrAlreadyHeld) {
			logger.Info("candidate taken, trying next", "node", entry.Node.Hostname, "address", entry.Node.PublicAddr)
			continue
		}
		return err
	}

	if attempted == 0 {
		return fmt.Errorf("no free node with machine class >= %d", class)
	}
	return fmt.Errorf("all %d free nodes with machine class >= %d were taken concurrently", attempted, class)
}
