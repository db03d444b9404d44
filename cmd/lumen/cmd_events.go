package main

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"lumen/pkg/model"
)

// newEventsCmd creates the "lumen events" subcommand: vocabulary inspection
// and growth.
func newEventsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Show the project's event vocabulary",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, client, closer, err := loadConfigAndClient()
			if err != nil {
				return err
			}
			defer closer() //nolint:errcheck // best-effort close

			project, err := client.Project(cmd.Context(), cfg.ProjectID)
			if err != nil {
				return err
			}

			names := project.EventNames()
			sort.Strings(names)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "EVENT\tDESCRIPTION")
			for _, name := range names {
				fmt.Fprintf(w, "%s\t%s\n", name, project.Events[name].Description)
			}
			return w.Flush()
		},
	}

	var description string
	add := &cobra.Command{
		Use:   "add <event-name>",
		Short: "Add an event definition to the vocabulary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, client, closer, err := loadConfigAndClient()
			if err != nil {
				return err
			}
			defer closer() //nolint:errcheck // best-effort close

			def := model.EventDefinition{Name: args[0], Description: description}
			if err := client.DefineEvent(cmd.Context(), cfg.ProjectID, def); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "defined event %s\n", def.Name)
			return nil
		},
	}
	add.Flags().StringVar(&description, "description", "", "what this event means")
	cmd.AddCommand(add)

	return cmd
}
