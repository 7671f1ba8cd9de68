// Copyright 2026 The Colony Authors
// SPDX-License-Identifier: Apache-2.0

package fleet

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/colonyops/colony/cmd/colony/cli"
	"github.com/colonyops/colony/lib/lease"
)

type whoamiParams struct {
	cli.JSONOutput
	configParams
}

// WhoAmICommand returns the whoami command.
func WhoAmICommand() *cli.Command {
	var params whoamiParams

	return &cli.Command{
		Name:    "whoami",
		Summary: "Print the identity the fleet knows this caller as",
		Description: `Resolve the caller's identity by probing every fleet node for its
configured identity value. Unreachable nodes are ignored; when the
reachable nodes disagree, the first-seen value wins and conflicts
are logged as warnings.

When no node is reachable, nothing is printed and the exit code
is 1.`,
		Usage: "colony whoami [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("whoami", &params)
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}

			logger := cli.NewCommandLogger().With("command", "whoami")
			env, err := newEnvironment(params.Config, logger)
			if err != nil {
				return err
			}

			nodes, err := env.catalog.Nodes()
			if err != nil {
				return err
			}

			identity, err := lease.ResolveIdentity(ctx, env.executor, nodes, env.paths, logger)
			if errors.Is(err, lease.ErrNoIdentity) {
				logger.Error("identity resolution failed", "error", err)
				return &cli.ExitError{Code: 1}
			}
			if err != nil {
				return err
			}

			if done, err := params.EmitJSON(map[string]string{"identity": identity}); done {
				return err
			}
			fmt.Println(identity)
			return nil
		},
	}
}
