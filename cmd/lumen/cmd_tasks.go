package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"lumen/pkg/filter"
	"lumen/pkg/model"
)

// parseFilter builds the canonical filter from CLI flag values. An empty
// string means no constraint; "unset" selects unlabelled tasks.
func parseFilter(flagValue, eventValue string) (filter.Filter, error) {
	var f filter.Filter
	switch flagValue {
	case "":
	case "success":
		f = filter.ByFlag(model.FlagSuccess)
	case "failure":
		f = filter.ByFlag(model.FlagFailure)
	case "unset":
		f = filter.ByFlag(model.FlagUnset)
	default:
		return filter.Filter{}, &model.ValidationError{Field: "flag", Value: flagValue, Reason: "must be success, failure or unset"}
	}
	if eventValue != "" {
		f.EventName = &eventValue
	}
	return f, nil
}

// newTasksCmd creates the "lumen tasks" subcommand.
func newTasksCmd() *cobra.Command {
	var (
		flagValue  string
		eventValue string
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List the project's tasks, optionally filtered",
		RunE: func(cmd *cobra.Command, args []string) error {
			flt, err := parseFilter(flagValue, eventValue)
			if err != nil {
				return err
			}

			cfg, client, closer, err := loadConfigAndClient()
			if err != nil {
				return err
			}
			defer closer() //nolint:errcheck // best-effort close

			tasks, err := client.Tasks(cmd.Context(), cfg.ProjectID)
			if err != nil {
				return err
			}
			tasks = filter.Apply(flt, tasks)

			if asJSON {
				data, err := json.MarshalIndent(tasks, "", "  ")
				if err != nil {
					return fmt.Errorf("encode tasks: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tCREATED\tSESSION\tFLAG\tEVENTS")
			for _, t := range tasks {
				flag := string(t.Flag)
				if flag == "" {
					flag = "-"
				}
				session := t.SessionID
				if session == "" {
					session = "-"
				}
				events := "-"
				if len(t.Events) > 0 {
					names := make([]byte, 0, 32)
					for i, e := range t.Events {
						if i > 0 {
							names = append(names, ',')
						}
						names = append(names, e.EventName...)
					}
					events = string(names)
				}
				created := time.Unix(t.CreatedAt, 0).UTC().Format("2006-01-02 15:04")
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", t.ID, created, session, flag, events)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&flagValue, "flag", "", "filter by flag: success, failure or unset")
	cmd.Flags().StringVar(&eventValue, "event", "", "filter by attached event name")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output JSON instead of a table")

	return cmd
}
