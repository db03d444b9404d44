// Package filter builds and applies the canonical task filter used by every
// view: a conjunctive predicate on flag and event name. The same Filter value
// drives in-memory table filtering and the tasks_filter sent with aggregation
// requests, so local filtering and remote aggregation select identical sets.
package filter

import (
	"fmt"

	"lumen/pkg/model"
)

// Filter narrows a task set. A nil field means no constraint on that field;
// set fields combine with logical AND. The zero Filter is the identity.
type Filter struct {
	Flag      *model.Flag `json:"flag"`
	EventName *string     `json:"event_name"`
}

// ByFlag returns a filter constraining only the flag.
func ByFlag(f model.Flag) Filter {
	return Filter{Flag: &f}
}

// ByEvent returns a filter constraining only the event name.
func ByEvent(name string) Filter {
	return Filter{EventName: &name}
}

// IsZero reports whether the filter has no constraints.
func (f Filter) IsZero() bool {
	return f.Flag == nil && f.EventName == nil
}

// Validate rejects filters referencing invalid flag values. Event names are
// not checked against the vocabulary here: filtering on a name with no
// occurrences is legal and selects the empty set.
func (f Filter) Validate() error {
	if f.Flag != nil && !(*f.Flag == model.FlagSuccess || *f.Flag == model.FlagFailure || *f.Flag == model.FlagUnset) {
		return &model.ValidationError{Field: "flag", Value: string(*f.Flag), Reason: "must be success, failure or unset"}
	}
	return nil
}

// Match reports whether the task satisfies every set constraint.
func (f Filter) Match(t model.Task) bool {
	if f.Flag != nil && t.Flag != *f.Flag {
		return false
	}
	if f.EventName != nil && !t.HasEvent(*f.EventName) {
		return false
	}
	return true
}

// Apply returns the tasks satisfying the filter, preserving input order.
// It is pure: the input slice is never modified and the result is a new
// slice (empty, not nil, when nothing matches).
func Apply(f Filter, tasks []model.Task) []model.Task {
	kept := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Match(t) {
			kept = append(kept, t)
		}
	}
	return kept
}

// Key returns a canonical serialization of the filter for use in cache keys.
// Unconstrained fields serialize as "*" so distinct filters never collide.
func (f Filter) Key() string {
	flag := "*"
	if f.Flag != nil {
		flag = string(*f.Flag)
		if flag == "" {
			flag = "unset"
		}
	}
	event := "*"
	if f.EventName != nil {
		event = *f.EventName
	}
	return fmt.Sprintf("flag=%s&event=%s", flag, event)
}
