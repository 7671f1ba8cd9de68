// Copyright 2026 The Colony Authors
// SPDX-License-Identifier: Apache-2.0

package fleet

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/colonyops/colony/cmd/colony/cli"
	"github.com/colonyops/colony/lib/inventory"
)

type catalogParams struct {
	cli.JSONOutput
	configParams
}

// CatalogCommand returns the catalog command.
func CatalogCommand() *cli.Command {
	var params catalogParams

	return &cli.Command{
		Name:    "catalog",
		Summary: "Print the parsed node inventory",
		Description: `Print the parsed node inventory in catalog order (sorted by zone,
indices assigned after the sort). No fleet nodes are contacted.`,
		Usage: "colony catalog [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("catalog", &params)
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}

			logger := cli.NewCommandLogger().With("command", "catalog")
			env, err := newEnvironment(params.Config, logger)
			if err != nil {
				return err
			}

			nodes, err := env.catalog.Nodes()
			if err != nil {
				return err
			}

			if done, err := params.EmitJSON(nodes); done {
				return err
			}

			writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(writer, "IDX\tNODE\tADDRESS\tPRIVATE\tCPU\tRAM\tSTORAGE\tCLASS\tZONE")
			for _, node := range nodes {
				fmt.Fprintf(writer, "%d\t%s\t%s\t%s\t%d\t%d\t%s\t%d\t%s\n",
					node.Index,
					node.Hostname,
					node.PublicAddr,
					node.PrivateAddr,
					node.CPUCores,
					node.RAMGB,
					storageSummary(node),
					node.Class,
					node.Zone,
				)
			}
			return writer.Flush()
		},
	}
}

// storageSummary formats a node's storage devices as a compact
// comma-separated list, e.g. "ssd:500,hdd:1000".
func storageSummary(node inventory.Node) string {
	parts := []string{fmt.Sprintf("%s:%d", node.PrimaryStorage.Type, node.PrimaryStorage.CapacityGB)}
	for _, storage := range node.AdditionalStorage {
		parts = append(parts, fmt.Sprintf("%s:%d", storage.Type, storage.CapacityGB))
	}
	return strings.Join(parts, ",")
}
