// Copyright 2026 The Colony Authors
// SPDX-License-Identifier: Apache-2.0

package fleet

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/colonyops/colony/cmd/colony/cli"
)

type freeParams struct {
	configParams
}

// FreeCommand returns the free command.
func FreeCommand() *cli.Command {
	var params freeParams

	return &cli.Command{
		Name:    "free",
		Summary: "Release a lease held by this identity",
		Description: `Release the lease this operator's identity holds on a node.

The node verifies the caller's identity against the recorded holder
before mutating anything: freeing a node leased by someone else
fails and leaves the node untouched.`,
		Usage: "colony free <public-address>",
		Examples: []cli.Example{
			{
				Description: "Release a leased node",
				Command:     "colony free 192.0.2.10",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("free", &params)
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: colony free <public-address>")
			}

			logger := cli.NewCommandLogger().With("command", "free")
			env, err := newEnvironment(params.Config, logger)
			if err != nil {
				return err
			}
			service, err := env.service()
			if err != nil {
				return err
			}

			node, err := env.catalog.ByPublicAddr(args[0])
			if err != nil {
				return err
			}
			if err := service.Release(ctx, node); err != nil {
				return err
			}
			fmt.Printf("freed %s (%s)\n", node.Hostname, node.PublicAddr)
			return nil
		},
	}
}
