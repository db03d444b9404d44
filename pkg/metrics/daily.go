package metrics

import (
	"sort"
	"time"

	"lumen/pkg/model"
)

// DailyCount is one calendar-day bucket of the nb_daily_tasks series.
type DailyCount struct {
	Day     string `json:"day"`  // short weekday label, e.g. "Mon"
	Date    string `json:"date"` // ISO date, e.g. "2026-08-31"
	NbTasks int    `json:"nb_tasks"`
}

// DailyRate is one calendar-day bucket of the daily_success_rate series.
type DailyRate struct {
	Day         string  `json:"day"`
	Date        string  `json:"date"`
	SuccessRate float64 `json:"success_rate"`
}

// dayKey buckets a unix timestamp by UTC calendar day.
func dayKey(unix int64) string {
	return time.Unix(unix, 0).UTC().Format("2006-01-02")
}

// dayLabel returns the short weekday name for an ISO date.
func dayLabel(date string) string {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		return ""
	}
	return d.Format("Mon")
}

// bucketByDay groups tasks by UTC calendar day and returns the days present
// in chronological order.
func bucketByDay(tasks []model.Task) (map[string][]model.Task, []string) {
	buckets := make(map[string][]model.Task)
	for _, t := range tasks {
		k := dayKey(t.CreatedAt)
		buckets[k] = append(buckets[k], t)
	}
	days := make([]string, 0, len(buckets))
	for d := range buckets {
		days = append(days, d)
	}
	sort.Strings(days)
	return buckets, days
}

// NbDailyTasks buckets the task set by UTC calendar day of created_at and
// returns one count per day present, ordered chronologically.
func NbDailyTasks(tasks []model.Task) []DailyCount {
	buckets, days := bucketByDay(tasks)
	series := make([]DailyCount, 0, len(days))
	for _, d := range days {
		series = append(series, DailyCount{
			Day:     dayLabel(d),
			Date:    d,
			NbTasks: len(buckets[d]),
		})
	}
	return series
}

// DailySuccessRate computes the global success rate restricted to each
// calendar day's tasks. Days where no task is labelled have no defined rate
// and are omitted from the series.
func DailySuccessRate(tasks []model.Task) []DailyRate {
	buckets, days := bucketByDay(tasks)
	series := make([]DailyRate, 0, len(days))
	for _, d := range days {
		rate, ok := GlobalSuccessRate(buckets[d])
		if !ok {
			continue
		}
		series = append(series, DailyRate{
			Day:         dayLabel(d),
			Date:        d,
			SuccessRate: rate,
		})
	}
	return series
}
