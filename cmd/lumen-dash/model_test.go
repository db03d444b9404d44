package main

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"lumen/pkg/filter"
	"lumen/pkg/localstore"
	"lumen/pkg/model"
	"lumen/pkg/store"
)

func testModel(t *testing.T) Model {
	t.Helper()
	s, err := localstore.Open(filepath.Join(t.TempDir(), "lumen.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = s.Close() })
	cfg := &dashConfig{ProjectID: "p1"}
	return newModel(cfg, s)
}

func keyMsg(s string) tea.Msg {
	return tea.KeyMsg(tea.Key{Type: tea.KeyRunes, Runes: []rune(s)})
}

func TestUpdateDropsStaleSnapshots(t *testing.T) {
	m := testModel(t)
	m.seq = 3

	// A snapshot from an earlier request arrives after a newer one was issued.
	stale := dataMsg{seq: 2, tasks: []model.Task{{ID: "old"}}}
	next, _ := m.Update(stale)
	m = next.(Model)
	if len(m.tasks) != 0 {
		t.Error("stale snapshot must be dropped")
	}

	current := dataMsg{seq: 3, tasks: []model.Task{{ID: "fresh"}}}
	next, _ = m.Update(current)
	m = next.(Model)
	if len(m.tasks) != 1 || m.tasks[0].ID != "fresh" {
		t.Errorf("current snapshot not applied: %+v", m.tasks)
	}
	if m.loading {
		t.Error("loading must clear when the current snapshot lands")
	}
}

func TestUpdateDropsStaleErrors(t *testing.T) {
	m := testModel(t)
	m.seq = 5

	next, _ := m.Update(errMsg{seq: 4, err: errors.New("old failure")})
	m = next.(Model)
	if m.err != nil {
		t.Error("stale error must be dropped")
	}

	next, _ = m.Update(errMsg{seq: 5, err: errors.New("current failure")})
	m = next.(Model)
	if m.err == nil {
		t.Error("current error must surface")
	}
}

func TestFlagFilterCyclingBumpsSequence(t *testing.T) {
	m := testModel(t)
	seq := m.seq

	states := []*model.Flag{flagPtr(model.FlagSuccess), flagPtr(model.FlagFailure), flagPtr(model.FlagUnset), nil}
	for i, want := range states {
		next, cmd := m.Update(keyMsg("f"))
		m = next.(Model)
		if cmd == nil {
			t.Fatal("filter change must trigger a refetch")
		}
		if m.seq != seq+uint64(i)+1 {
			t.Errorf("seq = %d after %d presses, want %d", m.seq, i+1, seq+uint64(i)+1)
		}
		if (m.flt.Flag == nil) != (want == nil) {
			t.Fatalf("press %d: flag constraint = %v, want %v", i+1, m.flt.Flag, want)
		}
		if want != nil && *m.flt.Flag != *want {
			t.Errorf("press %d: flag = %q, want %q", i+1, *m.flt.Flag, *want)
		}
	}
}

func TestEventFilterCycling(t *testing.T) {
	m := testModel(t)
	m.vocab = []string{"bug", "positive"}

	next, _ := m.Update(keyMsg("e"))
	m = next.(Model)
	if m.flt.EventName == nil || *m.flt.EventName != "bug" {
		t.Fatalf("first press: event = %v, want bug", m.flt.EventName)
	}

	next, _ = m.Update(keyMsg("e"))
	m = next.(Model)
	if m.flt.EventName == nil || *m.flt.EventName != "positive" {
		t.Fatalf("second press: event = %v, want positive", m.flt.EventName)
	}

	next, _ = m.Update(keyMsg("e"))
	m = next.(Model)
	if m.flt.EventName != nil {
		t.Errorf("third press: event = %v, want no constraint", *m.flt.EventName)
	}
}

func TestDescribeFilter(t *testing.T) {
	tests := []struct {
		name string
		f    filter.Filter
		want string
	}{
		{"identity", filter.Filter{}, "all flags · all events"},
		{"success", filter.ByFlag(model.FlagSuccess), "flag=success · all events"},
		{"unset", filter.ByFlag(model.FlagUnset), "flag=unset · all events"},
		{"event", filter.ByEvent("bug"), "all flags · event=bug"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := describeFilter(tt.f, false); got != tt.want {
				t.Errorf("describeFilter = %q, want %q", got, tt.want)
			}
		})
	}
	if got := describeFilter(filter.Filter{}, true); !strings.Contains(got, "refreshing") {
		t.Errorf("loading state not indicated: %q", got)
	}
}

func TestFormatMetric(t *testing.T) {
	tests := []struct {
		name   string
		metric string
		value  any
		want   string
	}{
		{"count as int", "total_nb_tasks", 3, "3"},
		{"count decoded as float", "total_nb_tasks", float64(3), "3"},
		{"rate as percentage", "global_success_rate", 0.5, "50.0%"},
		{"string passthrough", "most_detected_event", "bug", "bug"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatMetric(tt.metric, tt.value); got != tt.want {
				t.Errorf("formatMetric(%s, %v) = %q, want %q", tt.metric, tt.value, got, tt.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 12, "short"},
		{"exactly-12ch", 12, "exactly-12ch"},
		{"this-is-a-long-identifier", 12, "this-is-a-l…"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.width); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}

func TestTaskRowsMarksDetectorEvents(t *testing.T) {
	m := testModel(t)
	tasks := []model.Task{
		{ID: "t1", Events: []model.Event{
			{EventName: "bug", Source: model.DetectorSource("bug-detector")},
			{EventName: "positive", Source: model.HumanSource()},
		}},
	}
	rows := taskRows(tasks, m.annotator)
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	events := rows[0][4]
	if !strings.Contains(events, "bug*") {
		t.Errorf("detector event not marked: %q", events)
	}
	if strings.Contains(events, "positive*") {
		t.Errorf("human event wrongly marked: %q", events)
	}
}

func TestRobotModeSnapshot(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "lumen.db")
	s, err := localstore.Open(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = s.Close() })

	ctx := context.Background()
	if err := s.CreateProject(ctx, model.Project{ID: "p1"}); err != nil {
		t.Fatal(err)
	}
	if err := s.InsertTask(ctx, model.Task{ID: "t1", ProjectID: "p1", CreatedAt: 100, Flag: model.FlagSuccess}); err != nil {
		t.Fatal(err)
	}

	cfg := &dashConfig{ProjectID: "p1", LocalDB: dbPath}
	data, err := robotMode(cfg, s)
	if err != nil {
		t.Fatalf("robotMode: %v", err)
	}

	var snapshot struct {
		Project string                  `json:"project"`
		Metrics store.AggregateResponse `json:"metrics"`
		Tasks   []model.Task            `json:"tasks"`
	}
	if err := json.Unmarshal(data, &snapshot); err != nil {
		t.Fatalf("snapshot is not valid JSON: %v", err)
	}
	if snapshot.Project != "p1" || len(snapshot.Tasks) != 1 {
		t.Errorf("snapshot = %+v", snapshot)
	}
	if snapshot.Metrics["total_nb_tasks"] != float64(1) {
		t.Errorf("total_nb_tasks = %v, want 1", snapshot.Metrics["total_nb_tasks"])
	}
}
