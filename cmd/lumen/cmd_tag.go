package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"lumen/pkg/annotate"
	"lumen/pkg/model"
	"lumen/pkg/store"
)

// newTagCmd creates the "lumen tag" subcommand with add/rm/confirm verbs.
func newTagCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tag",
		Short: "Edit the events attached to a task",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "add <task-id> <event-name>",
			Short: "Attach a vocabulary event to a task",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runTagMutation(cmd.Context(), cmd, args[0], func(ctx context.Context, a *annotate.Annotator, project *model.Project, task *model.Task) error {
					return a.AddEvent(ctx, project, task, args[1])
				})
			},
		},
		&cobra.Command{
			Use:   "rm <task-id> <event-name>",
			Short: "Remove an event from a task",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runTagMutation(cmd.Context(), cmd, args[0], func(ctx context.Context, a *annotate.Annotator, _ *model.Project, task *model.Task) error {
					return a.RemoveEvent(ctx, task, args[1])
				})
			},
		},
		&cobra.Command{
			Use:   "confirm <task-id> <event-name>",
			Short: "Mark a detector-attached event as human-confirmed",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runTagMutation(cmd.Context(), cmd, args[0], func(ctx context.Context, a *annotate.Annotator, _ *model.Project, task *model.Task) error {
					return a.ConfirmEvent(ctx, task, args[1])
				})
			},
		},
	)

	return cmd
}

// runTagMutation loads project and task, runs one mutation through the
// annotation protocol and reports the outcome.
func runTagMutation(ctx context.Context, cmd *cobra.Command, taskID string, mutate func(context.Context, *annotate.Annotator, *model.Project, *model.Task) error) error {
	cfg, client, closer, err := loadConfigAndClient()
	if err != nil {
		return err
	}
	defer closer() //nolint:errcheck // best-effort close

	project, task, err := fetchProjectTask(ctx, client, cfg.ProjectID, taskID)
	if err != nil {
		return err
	}

	a := annotate.New(client)
	if err := mutate(ctx, a, &project, &task); err != nil {
		return err
	}

	events := "none"
	if len(task.Events) > 0 {
		events = ""
		for i, e := range task.Events {
			if i > 0 {
				events += ", "
			}
			events += fmt.Sprintf("%s (%s)", e.EventName, e.Source)
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "task %s events: %s\n", task.ID, events)
	return nil
}

// fetchProjectTask loads the project vocabulary and one task.
func fetchProjectTask(ctx context.Context, client store.Client, projectID, taskID string) (model.Project, model.Task, error) {
	project, err := client.Project(ctx, projectID)
	if err != nil {
		return model.Project{}, model.Task{}, err
	}
	tasks, err := client.Tasks(ctx, projectID)
	if err != nil {
		return model.Project{}, model.Task{}, err
	}
	for _, t := range tasks {
		if t.ID == taskID {
			return project, t, nil
		}
	}
	return model.Project{}, model.Task{}, &model.NotFoundError{Kind: "task", ID: taskID}
}
