// Copyright 2026 The Colony Authors
// SPDX-License-Identifier: Apache-2.0

package fleet

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/pflag"

	"github.com/colonyops/colony/cmd/colony/cli"
	"github.com/colonyops/colony/lib/lease"
)

type availabilityParams struct {
	cli.JSONOutput
	configParams
	Cached    bool `flag:"cached" desc:"serve the cached snapshot instead of querying the fleet"`
	Porcelain bool `flag:"porcelain" desc:"machine-readable output (vertical-tab separated tuples)"`
}

// ListAvailabilityCommand returns the list-availability command.
func ListAvailabilityCommand() *cli.Command {
	var params availabilityParams

	return &cli.Command{
		Name:    "list-availability",
		Summary: "Show the lease state of every node",
		Description: `Show the lease state of every inventory node.

By default every node is queried over SSH and the availability
snapshot is rebuilt. With --cached, the snapshot from an earlier
refresh (this process or a previous invocation's disk cache) is
served without touching the fleet; cached output is marked stale.`,
		Usage: "colony list-availability [flags]",
		Examples: []cli.Example{
			{
				Description: "Query the fleet and print the availability table",
				Command:     "colony list-availability",
			},
			{
				Description: "Machine-readable tuples from the cached snapshot",
				Command:     "colony list-availability --cached --porcelain",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("list-availability", &params)
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}

			logger := cli.NewCommandLogger().With("command", "list-availability")
			env, err := newEnvironment(params.Config, logger)
			if err != nil {
				return err
			}

			snapshot, err := env.cache.Get(ctx, params.Cached)
			if err != nil {
				return err
			}

			if snapshot.Stale {
				fmt.Fprintf(os.Stderr, "note: serving cached snapshot built at %s\n",
					snapshot.BuiltAt.Format("2006-01-02 15:04:05 MST"))
			}

			if done, err := params.EmitJSON(snapshot.Entries); done {
				return err
			}
			if params.Porcelain {
				return writePorcelain(snapshot)
			}
			return writeTable(snapshot)
		},
	}
}

// writePorcelain emits one vertical-tab separated tuple per node.
func writePorcelain(snapshot *lease.Snapshot) error {
	for _, entry := range snapshot.Entries {
		if _, err := fmt.Println(porcelainLine(entry)); err != nil {
			return err
		}
	}
	return nil
}

// porcelainLine formats one snapshot entry as the vertical-tab
// separated tuple: hostname, public address, private address, status,
// zone, holder, instance. Empty holder and instance fields stay empty.
func porcelainLine(entry lease.Entry) string {
	return strings.Join([]string{
		entry.Node.Hostname,
		entry.Node.PublicAddr,
		entry.Node.PrivateAddr,
		entry.Status.State.String(),
		entry.Node.Zone,
		entry.Status.Record.Holder,
		entry.Status.Record.Instance,
	}, "\v")
}

var (
	styleFree = lipgloss.NewStyle().Foreground(lipgloss.Color("2")) // green
	styleHeld = lipgloss.NewStyle().Foreground(lipgloss.Color("3")) // yellow
	styleDown = lipgloss.NewStyle().Foreground(lipgloss.Color("1")) // red
)

// statusCell renders a status for the availability table, coloured by
// state, with a degraded-bootstrap marker on held nodes whose
// completion sentinel is missing.
func statusCell(status lease.NodeStatus) string {
	text := status.State.String()
	if status.Degraded {
		text += " (degraded)"
	}
	switch status.State {
	case lease.StateFree:
		return styleFree.Render(text)
	case lease.StateHeld:
		return styleHeld.Render(text)
	case lease.StateDown:
		return styleDown.Render(text)
	}
	return text
}

func writeTable(snapshot *lease.Snapshot) error {
	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "NODE\tADDRESS\tCLASS\tZONE\tSTATUS\tHOLDER\tINSTANCE")

	for _, entry := range snapshot.Entries {
		holder := entry.Status.Record.Holder
		if holder == "" {
			holder = "-"
		}
		instance := entry.Status.Record.Instance
		if instance == "" {
			instance = "-"
		}
		fmt.Fprintf(writer, "%s\t%s\t%d\t%s\t%s\t%s\t%s\n",
			entry.Node.Hostname,
			entry.Node.PublicAddr,
			entry.Node.Class,
			entry.Node.Zone,
			statusCell(entry.Status),
			holder,
			instance,
		)
	}
	return writer.Flush()
}
