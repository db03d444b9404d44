package metrics

import "lumen/pkg/model"

// Metric names, as they appear in aggregation requests and responses.
const (
	MetricTotalNbTasks               = "total_nb_tasks"
	MetricGlobalSuccessRate          = "global_success_rate"
	MetricMostDetectedEvent          = "most_detected_event"
	MetricNbDailyTasks               = "nb_daily_tasks"
	MetricDailySuccessRate           = "daily_success_rate"
	MetricEventsRanking              = "events_ranking"
	MetricSuccessRatePerTaskPosition = "success_rate_per_task_position"
	MetricHasEnoughLabelledTasks     = "has_enough_labelled_tasks"
)

// AllMetrics lists every known metric name in presentation order.
func AllMetrics() []string {
	return []string{
		MetricTotalNbTasks,
		MetricGlobalSuccessRate,
		MetricMostDetectedEvent,
		MetricNbDailyTasks,
		MetricDailySuccessRate,
		MetricEventsRanking,
		MetricSuccessRatePerTaskPosition,
		MetricHasEnoughLabelledTasks,
	}
}

// Known reports whether name is a computable metric.
func Known(name string) bool {
	for _, m := range AllMetrics() {
		if m == name {
			return true
		}
	}
	return false
}

// Options carries the configuration some metrics depend on.
type Options struct {
	// EnoughLabelled is the labelling-sufficiency threshold.
	EnoughLabelled int
}

// Compute evaluates the requested metrics over an already-filtered,
// already-windowed task set. Metrics are independent: one degrading to its
// sentinel never fails the others. Sentinels (and unknown metric names) map
// to nil, which marshals as JSON null.
func Compute(names []string, tasks []model.Task, sessions []model.Session, opts Options) map[string]any {
	out := make(map[string]any, len(names))
	for _, name := range names {
		out[name] = computeOne(name, tasks, sessions, opts)
	}
	return out
}

func computeOne(name string, tasks []model.Task, sessions []model.Session, opts Options) any {
	switch name {
	case MetricTotalNbTasks:
		return TotalNbTasks(tasks)
	case MetricGlobalSuccessRate:
		rate, ok := GlobalSuccessRate(tasks)
		if !ok {
			return nil
		}
		return rate
	case MetricMostDetectedEvent:
		event, ok := MostDetectedEvent(tasks)
		if !ok {
			return nil
		}
		return event
	case MetricNbDailyTasks:
		return NbDailyTasks(tasks)
	case MetricDailySuccessRate:
		return DailySuccessRate(tasks)
	case MetricEventsRanking:
		return EventsRanking(tasks)
	case MetricSuccessRatePerTaskPosition:
		series, ok := SuccessRatePerTaskPosition(tasks, sessions)
		if !ok {
			// Unavailable (no session data), distinct from an empty series.
			return nil
		}
		return series
	case MetricHasEnoughLabelledTasks:
		return LabellingSufficiency(tasks, opts.EnoughLabelled)
	default:
		return nil
	}
}
