// Package metrics computes the dashboard aggregations: pure reductions over
// a filtered task set, with explicit "insufficient data" sentinels instead of
// made-up zeroes. Rates are fractions in [0,1]; percentage formatting belongs
// to the presentation layer.
package metrics

import "lumen/pkg/model"

// TotalNbTasks returns the size of the task set.
func TotalNbTasks(tasks []model.Task) int {
	return len(tasks)
}

// GlobalSuccessRate returns the fraction of labelled tasks flagged success.
// Unset tasks are excluded from the denominator. ok is false when no task is
// labelled (insufficient data).
func GlobalSuccessRate(tasks []model.Task) (float64, bool) {
	var success, labelled int
	for _, t := range tasks {
		if !t.Flag.Labelled() {
			continue
		}
		labelled++
		if t.Flag == model.FlagSuccess {
			success++
		}
	}
	if labelled == 0 {
		return 0, false
	}
	return float64(success) / float64(labelled), true
}

// MostDetectedEvent returns the event name with the highest occurrence count
// across all events of the task set. Ties break to the lexicographically
// smallest name. ok is false when the set carries no events.
func MostDetectedEvent(tasks []model.Task) (string, bool) {
	counts := eventCounts(tasks)
	if len(counts) == 0 {
		return "", false
	}
	var best string
	bestCount := -1
	for name, n := range counts {
		if n > bestCount || (n == bestCount && name < best) {
			best, bestCount = name, n
		}
	}
	return best, true
}

// Sufficiency is the labelling-sufficiency check payload: how many tasks
// carry a verdict versus the configured threshold.
type Sufficiency struct {
	CurrentlyLabelled int  `json:"currently_labelled"`
	EnoughLabelled    int  `json:"enough_labelled"`
	HasEnough         bool `json:"has_enough"`
}

// LabellingSufficiency counts tasks with a set flag and compares against the
// configured threshold.
func LabellingSufficiency(tasks []model.Task, threshold int) Sufficiency {
	var labelled int
	for _, t := range tasks {
		if t.Flag != model.FlagUnset {
			labelled++
		}
	}
	return Sufficiency{
		CurrentlyLabelled: labelled,
		EnoughLabelled:    threshold,
		HasEnough:         labelled >= threshold,
	}
}

// eventCounts tallies event occurrences by name across the task set.
func eventCounts(tasks []model.Task) map[string]int {
	counts := make(map[string]int)
	for _, t := range tasks {
		for _, e := range t.Events {
			counts[e.EventName]++
		}
	}
	return counts
}
