package store

import (
	"lumen/pkg/filter"
	"lumen/pkg/model"
)

// AggregateRequest is the body of an aggregation query:
// {"metrics": [...], "tasks_filter": {"flag": ..., "event_name": ...}}.
type AggregateRequest struct {
	Metrics     []string      `json:"metrics"`
	TasksFilter filter.Filter `json:"tasks_filter"`
}

// AggregateResponse maps each requested metric name to its computed value.
// Sentinels arrive as nil.
type AggregateResponse map[string]any

// errorPayload is the store's error body: {"error": "..."}.
type errorPayload struct {
	Error string `json:"error"`
}

// sessionsResponse wraps the session list fetch.
type sessionsResponse struct {
	Sessions []model.Session `json:"sessions"`
}

// tasksResponse wraps the task list fetch.
type tasksResponse struct {
	Tasks []model.Task `json:"tasks"`
}

// taskUpdate carries a proposed mutation: exactly one of Events or Flag is
// set per request.
type taskUpdate struct {
	Events []model.Event `json:"events,omitempty"`
	Flag   *model.Flag   `json:"flag,omitempty"`
}
