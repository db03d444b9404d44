package metrics

import (
	"fmt"
	"time"

	"lumen/pkg/model"
)

// Window bounds a task set in time before aggregation. Zero bounds are open:
// the zero Window keeps every task.
type Window struct {
	Start time.Time // inclusive; zero = unbounded
	End   time.Time // exclusive; zero = unbounded
}

// IsZero reports whether the window is unbounded on both sides.
func (w Window) IsZero() bool {
	return w.Start.IsZero() && w.End.IsZero()
}

// Contains reports whether a unix-seconds timestamp falls inside the window.
func (w Window) Contains(unix int64) bool {
	t := time.Unix(unix, 0).UTC()
	if !w.Start.IsZero() && t.Before(w.Start) {
		return false
	}
	if !w.End.IsZero() && !t.Before(w.End) {
		return false
	}
	return true
}

// Apply returns the tasks whose created_at falls inside the window,
// preserving order. The zero window returns the input unchanged.
func (w Window) Apply(tasks []model.Task) []model.Task {
	if w.IsZero() {
		return tasks
	}
	kept := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if w.Contains(t.CreatedAt) {
			kept = append(kept, t)
		}
	}
	return kept
}

// Key returns a canonical serialization of the window for cache keys.
func (w Window) Key() string {
	format := func(t time.Time) string {
		if t.IsZero() {
			return "*"
		}
		return t.UTC().Format(time.RFC3339)
	}
	return fmt.Sprintf("%s..%s", format(w.Start), format(w.End))
}
