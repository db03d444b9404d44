package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lumen/internal/appversion"
)

// newRootCmd creates the root lumen command with all subcommands attached.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "lumen",
		Short:         "Lumen interaction observability CLI",
		Long:          "lumen inspects logged AI-application interactions:\nfiltered task tables, aggregated dashboard metrics, and tag/flag annotation.",
		Version:       fmt.Sprintf("lumen %s", appversion.String()),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate("{{.Version}}\n")

	cmd.AddCommand(
		newInitCmd(),
		newTasksCmd(),
		newMetricsCmd(),
		newTagCmd(),
		newFlagCmd(),
		newEventsCmd(),
		newDashCmd(),
	)

	return cmd
}
