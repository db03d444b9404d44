package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"lumen/pkg/model"
)

// defaultTimeout bounds every store round trip. Calls are best-effort single
// attempts; there is no retry or backoff.
const defaultTimeout = 10 * time.Second

// HTTPClient talks to a remote lumen store over its JSON API. Every request
// carries the bearer credential; the credential is opaque to the core.
type HTTPClient struct {
	base   string
	apiKey string
	hc     *http.Client
}

var _ Client = (*HTTPClient)(nil)

// NewHTTP returns a client for the store at baseURL authenticating with
// apiKey.
func NewHTTP(baseURL, apiKey string) *HTTPClient {
	return &HTTPClient{
		base:   strings.TrimRight(baseURL, "/"),
		apiKey: apiKey,
		hc:     &http.Client{Timeout: defaultTimeout},
	}
}

// Project implements Client.
func (c *HTTPClient) Project(ctx context.Context, projectID string) (model.Project, error) {
	var p model.Project
	err := c.do(ctx, http.MethodGet, "/api/projects/"+projectID, nil, &p)
	return p, err
}

// Sessions implements Client.
func (c *HTTPClient) Sessions(ctx context.Context, projectID string) ([]model.Session, error) {
	var resp sessionsResponse
	if err := c.do(ctx, http.MethodGet, "/api/projects/"+projectID+"/sessions", nil, &resp); err != nil {
		return nil, err
	}
	for i := range resp.Sessions {
		resp.Sessions[i].SortTasks()
	}
	return resp.Sessions, nil
}

// Tasks implements Client.
func (c *HTTPClient) Tasks(ctx context.Context, projectID string) ([]model.Task, error) {
	var resp tasksResponse
	if err := c.do(ctx, http.MethodGet, "/api/projects/"+projectID+"/tasks", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Tasks, nil
}

// Aggregate implements Client.
func (c *HTTPClient) Aggregate(ctx context.Context, projectID string, req AggregateRequest) (AggregateResponse, error) {
	var resp AggregateResponse
	path := "/api/explore/" + projectID + "/aggregated/tasks"
	if err := c.do(ctx, http.MethodPost, path, req, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// UpdateTaskEvents implements Client.
func (c *HTTPClient) UpdateTaskEvents(ctx context.Context, projectID, taskID string, events []model.Event) (model.Task, error) {
	// Send an empty list rather than omitting the field: omission means
	// "no event change" on this endpoint.
	if events == nil {
		events = []model.Event{}
	}
	var task model.Task
	path := "/api/projects/" + projectID + "/tasks/" + taskID
	err := c.do(ctx, http.MethodPatch, path, taskUpdate{Events: events}, &task)
	return task, err
}

// UpdateTaskFlag implements Client.
func (c *HTTPClient) UpdateTaskFlag(ctx context.Context, projectID, taskID string, flag model.Flag) (model.Task, error) {
	var task model.Task
	path := "/api/projects/" + projectID + "/tasks/" + taskID
	err := c.do(ctx, http.MethodPatch, path, taskUpdate{Flag: &flag}, &task)
	return task, err
}

// DefineEvent implements Client.
func (c *HTTPClient) DefineEvent(ctx context.Context, projectID string, def model.EventDefinition) error {
	return c.do(ctx, http.MethodPost, "/api/projects/"+projectID+"/events", def, nil)
}

// do runs one JSON round trip. Network failures surface as TransportError,
// 404 as NotFoundError; other non-2xx statuses become TransportError with
// the store's error payload as the cause.
func (c *HTTPClient) do(ctx context.Context, method, path string, in, out any) error {
	op := fmt.Sprintf("%s %s", method, path)

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s body: %w", op, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return fmt.Errorf("build %s: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return &model.TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close on read path

	if resp.StatusCode == http.StatusNotFound {
		return &model.NotFoundError{Kind: "resource", ID: path}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var payload errorPayload
		_ = json.NewDecoder(resp.Body).Decode(&payload)
		if payload.Error == "" {
			payload.Error = resp.Status
		}
		return &model.TransportError{Op: op, Err: fmt.Errorf("store: %s", payload.Error)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", op, err)
	}
	return nil
}
