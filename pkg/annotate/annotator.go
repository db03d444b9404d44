// Package annotate implements the mutation protocol for editing a task's tag
// set and flag: local validation, optimistic application, a single round trip
// to the external store, and reconciliation with the store's response. At
// most one mutation per task may be outstanding at a time.
package annotate

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"lumen/pkg/model"
)

// Store is the slice of the external store boundary the protocol needs: the
// store is the authority for a task's events and flag and echoes the
// confirmed task on success.
type Store interface {
	UpdateTaskEvents(ctx context.Context, projectID, taskID string, events []model.Event) (model.Task, error)
	UpdateTaskFlag(ctx context.Context, projectID, taskID string, flag model.Flag) (model.Task, error)
}

// State describes a task's standing with respect to a pending edit.
type State int

const (
	// StateClean means no local change is outstanding.
	StateClean State = iota
	// StatePending means an optimistic local copy diverges from the
	// last-confirmed task and a request is in flight.
	StatePending
	// StateUnsynced means the last mutation failed: the optimistic copy is
	// retained locally but was not persisted by the store.
	StateUnsynced
)

// String returns a short label for logs and views.
func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateUnsynced:
		return "unsynced"
	default:
		return "clean"
	}
}

// Annotator runs the mutation protocol against a store. It serializes
// mutations per task, rejecting a second mutation while one is pending, and
// notifies registered listeners when a mutation completes so cached
// aggregates can be invalidated.
type Annotator struct {
	store Store

	mu        sync.Mutex
	states    map[string]State
	listeners []func(projectID string)

	// injectable for tests
	now   func() time.Time
	newID func() string
}

// New returns an annotator backed by the given store.
func New(store Store) *Annotator {
	return &Annotator{
		store:  store,
		states: make(map[string]State),
		now:    time.Now,
		newID:  func() string { return uuid.New().String() },
	}
}

// OnMutation registers a listener invoked with the project id each time a
// mutation is confirmed by the store. The cache layer registers its
// Invalidate here.
func (a *Annotator) OnMutation(fn func(projectID string)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.listeners = append(a.listeners, fn)
}

// State returns the task's current mutation state.
func (a *Annotator) State(taskID string) State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.states[taskID]
}

// AddEvent appends a human-attached event with the given name to the task.
// It fails with a ValidationError when the name is not in the project
// vocabulary, and is a no-op when the task already carries the event.
func (a *Annotator) AddEvent(ctx context.Context, project *model.Project, task *model.Task, eventName string) error {
	if !project.HasEvent(eventName) {
		return &model.ValidationError{Field: "event_name", Value: eventName, Reason: "not in project vocabulary"}
	}
	if task.HasEvent(eventName) {
		// Duplicate tag: idempotent no-op, nothing to send.
		return nil
	}

	optimistic := task.Clone()
	optimistic.Events = append(optimistic.Events, model.Event{
		ID:        a.newID(), // provisional until the store confirms
		TaskID:    task.ID,
		SessionID: task.SessionID,
		ProjectID: task.ProjectID,
		EventName: eventName,
		Source:    model.HumanSource(),
		CreatedAt: a.now().Unix(),
	})
	return a.sendEvents(ctx, task, optimistic)
}

// RemoveEvent removes the event with the given name from the task. It is a
// no-op when the task does not carry the event.
func (a *Annotator) RemoveEvent(ctx context.Context, task *model.Task, eventName string) error {
	if !task.HasEvent(eventName) {
		return nil
	}
	optimistic := task.Clone()
	kept := optimistic.Events[:0]
	for _, e := range optimistic.Events {
		if e.EventName != eventName {
			kept = append(kept, e)
		}
	}
	optimistic.Events = kept
	return a.sendEvents(ctx, task, optimistic)
}

// ConfirmEvent marks an automatically detected event as human-confirmed by
// relabelling its source. Confirming an event the task does not carry is a
// ValidationError; confirming an already-human event is a no-op.
func (a *Annotator) ConfirmEvent(ctx context.Context, task *model.Task, eventName string) error {
	ev := task.EventByName(eventName)
	if ev == nil {
		return &model.ValidationError{Field: "event_name", Value: eventName, Reason: "not attached to task"}
	}
	if ev.Source.IsHuman() {
		return nil
	}
	optimistic := task.Clone()
	optimistic.EventByName(eventName).Source = model.HumanSource()
	return a.sendEvents(ctx, task, optimistic)
}

// SetFlag sets the task's tri-state flag. Every transition between success,
// failure and unset is legal; only an invalid value fails locally.
func (a *Annotator) SetFlag(ctx context.Context, task *model.Task, flag model.Flag) error {
	if !flag.Valid() {
		return &model.ValidationError{Field: "flag", Value: string(flag), Reason: "must be success, failure or unset"}
	}

	if err := a.begin(task.ID); err != nil {
		return err
	}
	optimistic := task.Clone()
	optimistic.Flag = flag

	confirmed, err := a.store.UpdateTaskFlag(ctx, task.ProjectID, task.ID, flag)
	a.finish(task, optimistic, confirmed, err)
	return err
}

// sendEvents runs the shared round-trip path for event-list mutations.
func (a *Annotator) sendEvents(ctx context.Context, task *model.Task, optimistic model.Task) error {
	if err := a.begin(task.ID); err != nil {
		return err
	}
	confirmed, err := a.store.UpdateTaskEvents(ctx, task.ProjectID, task.ID, optimistic.Events)
	a.finish(task, optimistic, confirmed, err)
	return err
}

// begin transitions the task to StatePending, rejecting concurrent mutations.
func (a *Annotator) begin(taskID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.states[taskID] == StatePending {
		return &model.ConflictError{TaskID: taskID}
	}
	a.states[taskID] = StatePending
	return nil
}

// finish reconciles the round trip. On success the store's echo becomes the
// authoritative task and listeners are notified; on failure the optimistic
// copy is retained and the task is marked unsynced.
func (a *Annotator) finish(task *model.Task, optimistic, confirmed model.Task, err error) {
	a.mu.Lock()
	if err != nil {
		*task = optimistic
		a.states[task.ID] = StateUnsynced
		a.mu.Unlock()
		return
	}
	*task = confirmed
	a.states[task.ID] = StateClean
	listeners := make([]func(string), len(a.listeners))
	copy(listeners, a.listeners)
	a.mu.Unlock()

	for _, fn := range listeners {
		fn(task.ProjectID)
	}
}
