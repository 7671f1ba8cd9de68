// Copyright 2026 The Colony Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the complete colony CLI command tree.
package commands

import (
	"context"
	"fmt"

	"github.com/colonyops/colony/cmd/colony/cli"
	"github.com/colonyops/colony/cmd/colony/fleet"
	"github.com/colonyops/colony/lib/version"
)

// Root builds and returns the complete colony CLI command tree.
func Root() *cli.Command {
	return &cli.Command{
		Name: "colony",
		Description: `Colony: fleet resource leasing.

Discover, lease, and release physical fleet nodes used to provision
ephemeral test clusters. Leases are recorded on the nodes themselves
under an advisory lock; colony is a client of that protocol, never
the source of truth.`,
		Subcommands: []*cli.Command{
			fleet.ListAvailabilityCommand(),
			fleet.RequisitionCommand(),
			fleet.FreeCommand(),
			fleet.WhoAmICommand(),
			fleet.CatalogCommand(),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(ctx context.Context, args []string) error {
					fmt.Printf("colony %s\n", version.Full())
					return nil
				},
			},
		},
	}
}
