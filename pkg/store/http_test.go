package store_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"lumen/pkg/filter"
	"lumen/pkg/model"
	"lumen/pkg/store"
)

// recordingServer captures the last request and replies with a fixed body.
type recordingServer struct {
	method string
	path   string
	auth   string
	body   []byte

	status int
	reply  string
}

func (s *recordingServer) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.method = r.Method
		s.path = r.URL.Path
		s.auth = r.Header.Get("Authorization")
		s.body, _ = io.ReadAll(r.Body)
		if s.status != 0 {
			w.WriteHeader(s.status)
		}
		if s.reply != "" {
			_, _ = w.Write([]byte(s.reply))
		}
	}
}

func TestProject(t *testing.T) {
	srv := &recordingServer{reply: `{"id":"p1","events":{"bug":{"event_name":"bug"}}}`}
	ts := httptest.NewServer(srv.handler())
	defer ts.Close()

	c := store.NewHTTP(ts.URL, "secret")
	p, err := c.Project(context.Background(), "p1")
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	if srv.method != http.MethodGet || srv.path != "/api/projects/p1" {
		t.Errorf("request = %s %s, want GET /api/projects/p1", srv.method, srv.path)
	}
	if srv.auth != "Bearer secret" {
		t.Errorf("auth header = %q, want Bearer secret", srv.auth)
	}
	if p.ID != "p1" || !p.HasEvent("bug") {
		t.Errorf("project = %+v, want p1 with bug in vocabulary", p)
	}
}

func TestTasks(t *testing.T) {
	srv := &recordingServer{reply: `{"tasks":[{"id":"t1","flag":"success"},{"id":"t2"}]}`}
	ts := httptest.NewServer(srv.handler())
	defer ts.Close()

	c := store.NewHTTP(ts.URL, "secret")
	tasks, err := c.Tasks(context.Background(), "p1")
	if err != nil {
		t.Fatalf("Tasks: %v", err)
	}
	if srv.path != "/api/projects/p1/tasks" {
		t.Errorf("path = %s, want /api/projects/p1/tasks", srv.path)
	}
	if len(tasks) != 2 || tasks[0].Flag != model.FlagSuccess || tasks[1].Flag != model.FlagUnset {
		t.Errorf("tasks = %+v", tasks)
	}
}

func TestSessionsSortsTasks(t *testing.T) {
	srv := &recordingServer{reply: `{"sessions":[{"id":"s1","tasks":[
		{"id":"t2","created_at":200},
		{"id":"t1","created_at":100}
	]}]}`}
	ts := httptest.NewServer(srv.handler())
	defer ts.Close()

	c := store.NewHTTP(ts.URL, "secret")
	sessions, err := c.Sessions(context.Background(), "p1")
	if err != nil {
		t.Fatalf("Sessions: %v", err)
	}
	if len(sessions) != 1 || len(sessions[0].Tasks) != 2 {
		t.Fatalf("sessions = %+v", sessions)
	}
	if sessions[0].Tasks[0].ID != "t1" {
		t.Error("session tasks must arrive ordered by created_at")
	}
}

func TestAggregate(t *testing.T) {
	srv := &recordingServer{reply: `{"total_nb_tasks":3,"global_success_rate":null}`}
	ts := httptest.NewServer(srv.handler())
	defer ts.Close()

	c := store.NewHTTP(ts.URL, "secret")
	resp, err := c.Aggregate(context.Background(), "p1", store.AggregateRequest{
		Metrics:     []string{"total_nb_tasks", "global_success_rate"},
		TasksFilter: filter.ByFlag(model.FlagSuccess),
	})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if srv.method != http.MethodPost || srv.path != "/api/explore/p1/aggregated/tasks" {
		t.Errorf("request = %s %s, want POST /api/explore/p1/aggregated/tasks", srv.method, srv.path)
	}

	var sent struct {
		Metrics     []string      `json:"metrics"`
		TasksFilter filter.Filter `json:"tasks_filter"`
	}
	if err := json.Unmarshal(srv.body, &sent); err != nil {
		t.Fatalf("request body %s: %v", srv.body, err)
	}
	if len(sent.Metrics) != 2 || sent.TasksFilter.Flag == nil || *sent.TasksFilter.Flag != model.FlagSuccess {
		t.Errorf("request body = %s", srv.body)
	}

	if resp["total_nb_tasks"] != float64(3) {
		t.Errorf("total_nb_tasks = %v, want 3", resp["total_nb_tasks"])
	}
	if v, present := resp["global_success_rate"]; !present || v != nil {
		t.Errorf("global_success_rate = %v (present %v), want null sentinel", v, present)
	}
}

func TestUpdateTaskEventsSendsEmptyList(t *testing.T) {
	srv := &recordingServer{reply: `{"id":"t1"}`}
	ts := httptest.NewServer(srv.handler())
	defer ts.Close()

	c := store.NewHTTP(ts.URL, "secret")
	if _, err := c.UpdateTaskEvents(context.Background(), "p1", "t1", nil); err != nil {
		t.Fatalf("UpdateTaskEvents: %v", err)
	}
	if srv.method != http.MethodPatch || srv.path != "/api/projects/p1/tasks/t1" {
		t.Errorf("request = %s %s, want PATCH /api/projects/p1/tasks/t1", srv.method, srv.path)
	}
	// Clearing all events must send [], not omit the field.
	if string(srv.body) != `{"events":[]}` {
		t.Errorf("body = %s, want {\"events\":[]}", srv.body)
	}
}

func TestUpdateTaskFlag(t *testing.T) {
	srv := &recordingServer{reply: `{"id":"t1","flag":"failure"}`}
	ts := httptest.NewServer(srv.handler())
	defer ts.Close()

	c := store.NewHTTP(ts.URL, "secret")
	task, err := c.UpdateTaskFlag(context.Background(), "p1", "t1", model.FlagFailure)
	if err != nil {
		t.Fatalf("UpdateTaskFlag: %v", err)
	}
	if string(srv.body) != `{"flag":"failure"}` {
		t.Errorf("body = %s, want {\"flag\":\"failure\"}", srv.body)
	}
	if task.Flag != model.FlagFailure {
		t.Errorf("echoed flag = %q, want failure", task.Flag)
	}
}

func TestDefineEvent(t *testing.T) {
	srv := &recordingServer{}
	ts := httptest.NewServer(srv.handler())
	defer ts.Close()

	c := store.NewHTTP(ts.URL, "secret")
	err := c.DefineEvent(context.Background(), "p1", model.EventDefinition{Name: "bug", Description: "model produced wrong output"})
	if err != nil {
		t.Fatalf("DefineEvent: %v", err)
	}
	if srv.method != http.MethodPost || srv.path != "/api/projects/p1/events" {
		t.Errorf("request = %s %s, want POST /api/projects/p1/events", srv.method, srv.path)
	}
}

func TestNotFound(t *testing.T) {
	srv := &recordingServer{status: http.StatusNotFound}
	ts := httptest.NewServer(srv.handler())
	defer ts.Close()

	c := store.NewHTTP(ts.URL, "secret")
	_, err := c.Project(context.Background(), "nope")
	var notFound *model.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("404 surfaced as %v, want NotFoundError", err)
	}
}

func TestServerErrorIsTransport(t *testing.T) {
	srv := &recordingServer{status: http.StatusInternalServerError, reply: `{"error":"db down"}`}
	ts := httptest.NewServer(srv.handler())
	defer ts.Close()

	c := store.NewHTTP(ts.URL, "secret")
	_, err := c.Tasks(context.Background(), "p1")
	var transport *model.TransportError
	if !errors.As(err, &transport) {
		t.Fatalf("500 surfaced as %v, want TransportError", err)
	}
}

func TestUnreachableStoreIsTransport(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	ts.Close() // immediately: every dial now fails

	c := store.NewHTTP(ts.URL, "secret")
	_, err := c.Tasks(context.Background(), "p1")
	var transport *model.TransportError
	if !errors.As(err, &transport) {
		t.Fatalf("dial failure surfaced as %v, want TransportError", err)
	}
}
