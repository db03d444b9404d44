package metrics_test

import (
	"testing"
	"time"

	"lumen/pkg/metrics"
	"lumen/pkg/model"
)

// unixUTC builds a timestamp on a given UTC calendar day.
func unixUTC(year int, month time.Month, day, hour int) int64 {
	return time.Date(year, month, day, hour, 0, 0, 0, time.UTC).Unix()
}

func TestNbDailyTasks(t *testing.T) {
	tasks := []model.Task{
		{ID: "a", CreatedAt: unixUTC(2026, 8, 30, 9)},
		{ID: "b", CreatedAt: unixUTC(2026, 8, 30, 17)},
		{ID: "c", CreatedAt: unixUTC(2026, 8, 31, 3)},
	}
	series := metrics.NbDailyTasks(tasks)
	if len(series) != 2 {
		t.Fatalf("got %d buckets, want 2", len(series))
	}
	if series[0].Date != "2026-08-30" || series[0].NbTasks != 2 {
		t.Errorf("bucket 0 = %+v, want 2026-08-30 with 2 tasks", series[0])
	}
	if series[1].Date != "2026-08-31" || series[1].NbTasks != 1 {
		t.Errorf("bucket 1 = %+v, want 2026-08-31 with 1 task", series[1])
	}
	if series[0].Day != "Sun" || series[1].Day != "Mon" {
		t.Errorf("weekday labels = %q, %q; want Sun, Mon", series[0].Day, series[1].Day)
	}
}

func TestNbDailyTasksBucketsByUTC(t *testing.T) {
	// 23:30 and 00:30 UTC on either side of midnight land in different days
	// regardless of any local timezone.
	tasks := []model.Task{
		{ID: "a", CreatedAt: time.Date(2026, 8, 30, 23, 30, 0, 0, time.UTC).Unix()},
		{ID: "b", CreatedAt: time.Date(2026, 8, 31, 0, 30, 0, 0, time.UTC).Unix()},
	}
	series := metrics.NbDailyTasks(tasks)
	if len(series) != 2 {
		t.Fatalf("got %d buckets, want 2", len(series))
	}
}

func TestNbDailyTasksSumEqualsTotal(t *testing.T) {
	tasks := []model.Task{
		{CreatedAt: unixUTC(2026, 8, 28, 1)},
		{CreatedAt: unixUTC(2026, 8, 28, 2)},
		{CreatedAt: unixUTC(2026, 8, 29, 1)},
		{CreatedAt: unixUTC(2026, 8, 31, 1)},
	}
	sum := 0
	for _, b := range metrics.NbDailyTasks(tasks) {
		sum += b.NbTasks
	}
	if sum != metrics.TotalNbTasks(tasks) {
		t.Errorf("daily counts sum to %d, total is %d", sum, metrics.TotalNbTasks(tasks))
	}
}

func TestDailySuccessRate(t *testing.T) {
	tasks := []model.Task{
		{CreatedAt: unixUTC(2026, 8, 30, 9), Flag: model.FlagSuccess},
		{CreatedAt: unixUTC(2026, 8, 30, 10), Flag: model.FlagFailure},
		{CreatedAt: unixUTC(2026, 8, 31, 9), Flag: model.FlagSuccess},
		{CreatedAt: unixUTC(2026, 8, 31, 10), Flag: model.FlagUnset},
	}
	series := metrics.DailySuccessRate(tasks)
	if len(series) != 2 {
		t.Fatalf("got %d buckets, want 2", len(series))
	}
	if series[0].Date != "2026-08-30" || series[0].SuccessRate != 0.5 {
		t.Errorf("bucket 0 = %+v, want 2026-08-30 at 0.5", series[0])
	}
	if series[1].Date != "2026-08-31" || series[1].SuccessRate != 1.0 {
		t.Errorf("bucket 1 = %+v, want 2026-08-31 at 1.0", series[1])
	}
}

func TestDailySuccessRateOmitsUnlabelledDays(t *testing.T) {
	tasks := []model.Task{
		{CreatedAt: unixUTC(2026, 8, 30, 9), Flag: model.FlagUnset},
		{CreatedAt: unixUTC(2026, 8, 31, 9), Flag: model.FlagSuccess},
	}
	series := metrics.DailySuccessRate(tasks)
	if len(series) != 1 || series[0].Date != "2026-08-31" {
		t.Fatalf("series = %+v, want only 2026-08-31", series)
	}
}
