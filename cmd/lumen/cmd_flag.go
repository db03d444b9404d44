package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lumen/pkg/annotate"
	"lumen/pkg/model"
)

// newFlagCmd creates the "lumen flag" subcommand.
func newFlagCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "flag <task-id> <success|failure|unset>",
		Short: "Set a task's tri-state verdict",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID := args[0]
			var flag model.Flag
			switch args[1] {
			case "success":
				flag = model.FlagSuccess
			case "failure":
				flag = model.FlagFailure
			case "unset":
				flag = model.FlagUnset
			default:
				return &model.ValidationError{Field: "flag", Value: args[1], Reason: "must be success, failure or unset"}
			}

			cfg, client, closer, err := loadConfigAndClient()
			if err != nil {
				return err
			}
			defer closer() //nolint:errcheck // best-effort close

			_, task, err := fetchProjectTask(cmd.Context(), client, cfg.ProjectID, taskID)
			if err != nil {
				return err
			}

			a := annotate.New(client)
			if err := a.SetFlag(cmd.Context(), &task, flag); err != nil {
				return err
			}

			label := string(task.Flag)
			if label == "" {
				label = "unset"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "task %s flag: %s\n", task.ID, label)
			return nil
		},
	}
}
