// Package model defines the shared vocabulary of the lumen core: projects,
// sessions, tasks, tagged events and the tri-state success flag. These types
// mirror the external store's wire representation; all behavior lives in the
// filter, metrics and annotate packages.
package model

// Flag is the tri-state human/automated verdict on a task.
// The zero value is FlagUnset, which marshals as an absent/null field.
type Flag string

// Flag constants. No other value is valid.
const (
	FlagSuccess Flag = "success"
	FlagFailure Flag = "failure"
	FlagUnset   Flag = ""
)

// Valid reports whether f is one of the three allowed flag states.
func (f Flag) Valid() bool {
	return f == FlagSuccess || f == FlagFailure || f == FlagUnset
}

// Labelled reports whether f carries a verdict (success or failure).
// Unset tasks are excluded from success-rate denominators.
func (f Flag) Labelled() bool {
	return f == FlagSuccess || f == FlagFailure
}

// EventDefinition is a vocabulary entry describing a taggable event.
// Names are unique within a project.
type EventDefinition struct {
	Name        string `json:"event_name"`
	Description string `json:"description,omitempty"`
}

// Project owns the event vocabulary for its sessions and tasks.
// The vocabulary may grow; everything else is immutable for this core.
type Project struct {
	ID     string                     `json:"id"`
	Events map[string]EventDefinition `json:"events"`
}

// HasEvent reports whether name is defined in the project vocabulary.
func (p *Project) HasEvent(name string) bool {
	_, ok := p.Events[name]
	return ok
}

// DefineEvent adds (or replaces) a vocabulary entry.
func (p *Project) DefineEvent(def EventDefinition) {
	if p.Events == nil {
		p.Events = make(map[string]EventDefinition)
	}
	p.Events[def.Name] = def
}

// EventNames returns the vocabulary names in no particular order.
func (p *Project) EventNames() []string {
	names := make([]string, 0, len(p.Events))
	for name := range p.Events {
		names = append(names, name)
	}
	return names
}

// Event is a named tag attached to a task, drawn from the project vocabulary.
type Event struct {
	ID        string `json:"id"`
	TaskID    string `json:"task_id"`
	SessionID string `json:"session_id,omitempty"`
	ProjectID string `json:"project_id"`
	EventName string `json:"event_name"`
	Source    Source `json:"source"`
	CreatedAt int64  `json:"created_at"` // unix seconds
}

// Task is a single logged interaction: an input/output pair with a flag,
// metadata and an ordered sequence of events.
type Task struct {
	ID        string         `json:"id"`
	ProjectID string         `json:"project_id"`
	SessionID string         `json:"session_id,omitempty"` // empty for session-less tasks
	CreatedAt int64          `json:"created_at"`           // unix seconds
	Input     string         `json:"input"`
	Output    string         `json:"output"`
	Flag      Flag           `json:"flag,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Events    []Event        `json:"events"`
}

// HasEvent reports whether the task carries an event with the given name.
func (t *Task) HasEvent(name string) bool {
	for _, e := range t.Events {
		if e.EventName == name {
			return true
		}
	}
	return false
}

// EventByName returns a pointer to the task's event with the given name,
// or nil if absent.
func (t *Task) EventByName(name string) *Event {
	for i := range t.Events {
		if t.Events[i].EventName == name {
			return &t.Events[i]
		}
	}
	return nil
}

// Clone returns a deep copy of the task. The annotation protocol mutates
// clones optimistically so a failed round trip never corrupts shared state.
func (t *Task) Clone() Task {
	c := *t
	if t.Events != nil {
		c.Events = make([]Event, len(t.Events))
		copy(c.Events, t.Events)
	}
	if t.Metadata != nil {
		c.Metadata = make(map[string]any, len(t.Metadata))
		for k, v := range t.Metadata {
			c.Metadata[k] = v
		}
	}
	return c
}
