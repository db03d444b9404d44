package model

import "sort"

// Session is an ordered group of tasks belonging to one end-user
// conversation/run. Task order is chronological arrival (created_at
// ascending); a task's 1-based index in that order is its task position.
type Session struct {
	ID        string `json:"id"`
	ProjectID string `json:"project_id"`
	Tasks     []Task `json:"tasks"`
}

// SortTasks orders the session's tasks by created_at ascending. The sort is
// stable so same-second tasks keep their arrival order.
func (s *Session) SortTasks() {
	sort.SliceStable(s.Tasks, func(i, j int) bool {
		return s.Tasks[i].CreatedAt < s.Tasks[j].CreatedAt
	})
}

// TaskPosition returns the 1-based position of the task with the given id
// within the session's chronological task order, recomputed from created_at
// on every call. Inserting a task with an earlier timestamp after the fact
// therefore renumbers later positions.
func (s *Session) TaskPosition(taskID string) (int, bool) {
	order := make([]Task, len(s.Tasks))
	copy(order, s.Tasks)
	sort.SliceStable(order, func(i, j int) bool {
		return order[i].CreatedAt < order[j].CreatedAt
	})
	for i, t := range order {
		if t.ID == taskID {
			return i + 1, true
		}
	}
	return 0, false
}

// Events returns the union of the session's tasks' events, in task order.
func (s *Session) Events() []Event {
	var events []Event
	for _, t := range s.Tasks {
		events = append(events, t.Events...)
	}
	return events
}
