// Package store defines the boundary to the external interaction store: the
// Client interface the core consumes, the wire shapes of its requests, and an
// HTTP implementation. The store is the authority over all persisted data;
// the core only reads filtered/aggregated views and proposes mutations to a
// task's events and flag.
package store

import (
	"context"

	"lumen/pkg/model"
)

// Client is the fetch boundary to the external store. The bearer credential
// and project id are parameters of the implementation, not secrets the core
// manages. Implementations must be safe for concurrent use.
type Client interface {
	// Project fetches the project and its event vocabulary.
	Project(ctx context.Context, projectID string) (model.Project, error)

	// Sessions fetches the project's sessions with nested tasks and events,
	// tasks ordered chronologically within each session.
	Sessions(ctx context.Context, projectID string) ([]model.Session, error)

	// Tasks fetches every task of the project (session-less ones included),
	// ordered by created_at ascending.
	Tasks(ctx context.Context, projectID string) ([]model.Task, error)

	// Aggregate computes the requested metrics over the tasks selected by
	// the request's filter. Metrics are independent; a metric degrading to
	// its sentinel arrives as null without failing the rest.
	Aggregate(ctx context.Context, projectID string, req AggregateRequest) (AggregateResponse, error)

	// UpdateTaskEvents replaces the task's event list and echoes the
	// confirmed task.
	UpdateTaskEvents(ctx context.Context, projectID, taskID string, events []model.Event) (model.Task, error)

	// UpdateTaskFlag sets the task's flag and echoes the confirmed task.
	UpdateTaskFlag(ctx context.Context, projectID, taskID string, flag model.Flag) (model.Task, error)

	// DefineEvent adds an entry to the project's event vocabulary.
	DefineEvent(ctx context.Context, projectID string, def model.EventDefinition) error
}
