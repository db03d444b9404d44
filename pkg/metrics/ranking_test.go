package metrics_test

import (
	"testing"
	"time"

	"lumen/pkg/metrics"
	"lumen/pkg/model"
)

func TestEventsRankingOrder(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC).Unix()
	tasks := []model.Task{
		{CreatedAt: now, Events: []model.Event{{EventName: "bug"}, {EventName: "positive"}}},
		{CreatedAt: now - 3600, Events: []model.Event{{EventName: "bug"}}},
		{CreatedAt: now - 7200, Events: []model.Event{{EventName: "toxicity"}}},
	}
	ranking := metrics.EventsRanking(tasks)
	if len(ranking) != 3 {
		t.Fatalf("got %d entries, want 3", len(ranking))
	}
	if ranking[0].EventName != "bug" || ranking[0].NbEvents != 2 {
		t.Errorf("rank 0 = %+v, want bug x2", ranking[0])
	}
	// positive and toxicity both count 1; ascending name breaks the tie.
	if ranking[1].EventName != "positive" || ranking[2].EventName != "toxicity" {
		t.Errorf("tie order = %s, %s; want positive, toxicity", ranking[1].EventName, ranking[2].EventName)
	}
	for i := 1; i < len(ranking); i++ {
		if ranking[i].NbEvents > ranking[i-1].NbEvents {
			t.Errorf("ranking not descending at %d: %+v", i, ranking)
		}
	}
}

func TestEventsRankingTrailingWindow(t *testing.T) {
	latest := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC).Unix()
	weekAgo := latest - 7*24*60*60
	tasks := []model.Task{
		{CreatedAt: latest, Events: []model.Event{{EventName: "recent"}}},
		{CreatedAt: weekAgo, Events: []model.Event{{EventName: "edge"}}},
		{CreatedAt: weekAgo - 1, Events: []model.Event{{EventName: "stale"}}},
	}
	ranking := metrics.EventsRanking(tasks)
	names := make(map[string]bool)
	for _, e := range ranking {
		names[e.EventName] = true
	}
	if !names["recent"] || !names["edge"] {
		t.Errorf("window must include tasks at and inside the cutoff: %+v", ranking)
	}
	if names["stale"] {
		t.Errorf("task older than the 7-day window must be excluded: %+v", ranking)
	}
}

func TestEventsRankingEmpty(t *testing.T) {
	ranking := metrics.EventsRanking(nil)
	if ranking == nil || len(ranking) != 0 {
		t.Errorf("empty input must yield an empty non-nil series, got %v", ranking)
	}
}

func TestSuccessRatePerTaskPosition(t *testing.T) {
	sessions := []model.Session{
		{ID: "s1", Tasks: []model.Task{
			{ID: "a1", SessionID: "s1", CreatedAt: 100},
			{ID: "a2", SessionID: "s1", CreatedAt: 200},
		}},
		{ID: "s2", Tasks: []model.Task{
			{ID: "b1", SessionID: "s2", CreatedAt: 100},
			{ID: "b2", SessionID: "s2", CreatedAt: 200},
		}},
	}
	tasks := []model.Task{
		{ID: "a1", SessionID: "s1", CreatedAt: 100, Flag: model.FlagSuccess},
		{ID: "a2", SessionID: "s1", CreatedAt: 200, Flag: model.FlagFailure},
		{ID: "b1", SessionID: "s2", CreatedAt: 100, Flag: model.FlagSuccess},
		{ID: "b2", SessionID: "s2", CreatedAt: 200, Flag: model.FlagSuccess},
	}
	series, ok := metrics.SuccessRatePerTaskPosition(tasks, sessions)
	if !ok {
		t.Fatal("session data present, series must be available")
	}
	if len(series) != 2 {
		t.Fatalf("got %d positions, want 2", len(series))
	}
	if series[0].TaskPosition != 1 || series[0].SuccessRate != 1.0 {
		t.Errorf("position 1 = %+v, want rate 1.0", series[0])
	}
	if series[1].TaskPosition != 2 || series[1].SuccessRate != 0.5 {
		t.Errorf("position 2 = %+v, want rate 0.5", series[1])
	}
}

func TestSuccessRatePerTaskPositionUnavailable(t *testing.T) {
	// No task belongs to a session: the metric is unavailable, which is not
	// the same as an empty series.
	tasks := []model.Task{{ID: "t1", Flag: model.FlagSuccess}}
	series, ok := metrics.SuccessRatePerTaskPosition(tasks, nil)
	if ok {
		t.Errorf("expected unavailable, got series %+v", series)
	}
}

func TestSuccessRatePerTaskPositionSkipsUnlabelledGroups(t *testing.T) {
	sessions := []model.Session{
		{ID: "s1", Tasks: []model.Task{
			{ID: "a1", SessionID: "s1", CreatedAt: 100},
			{ID: "a2", SessionID: "s1", CreatedAt: 200},
		}},
	}
	tasks := []model.Task{
		{ID: "a1", SessionID: "s1", CreatedAt: 100, Flag: model.FlagUnset},
		{ID: "a2", SessionID: "s1", CreatedAt: 200, Flag: model.FlagFailure},
	}
	series, ok := metrics.SuccessRatePerTaskPosition(tasks, sessions)
	if !ok {
		t.Fatal("session data present, series must be available")
	}
	if len(series) != 1 || series[0].TaskPosition != 2 {
		t.Errorf("series = %+v, want only position 2", series)
	}
}
