package localstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"lumen/pkg/filter"
	"lumen/pkg/metrics"
	"lumen/pkg/model"
	"lumen/pkg/store"
)

// Store implements store.Client on top of a local SQLite file.
type Store struct {
	db *sql.DB

	// EnoughLabelled is the labelling-sufficiency threshold used by
	// has_enough_labelled_tasks aggregations.
	EnoughLabelled int
}

var _ store.Client = (*Store)(nil)

// Open opens (creating if needed) the local store at path.
func Open(path string) (*Store, error) {
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	if err := createTables(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close releases the database connection. Safe to call multiple times.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// CreateProject inserts a project and its vocabulary. Used by init/seed and
// tests; remote stores own project creation.
func (s *Store) CreateProject(ctx context.Context, p model.Project) error {
	if _, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO projects (id) VALUES (?)`, p.ID); err != nil {
		return fmt.Errorf("insert project %s: %w", p.ID, err)
	}
	for _, def := range p.Events {
		if err := s.DefineEvent(ctx, p.ID, def); err != nil {
			return err
		}
	}
	return nil
}

// InsertTask inserts a task and its events. Missing identifiers are minted.
func (s *Store) InsertTask(ctx context.Context, t model.Task) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	meta := "{}"
	if t.Metadata != nil {
		data, err := json.Marshal(t.Metadata)
		if err != nil {
			return fmt.Errorf("encode task metadata: %w", err)
		}
		meta = string(data)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (id, project_id, session_id, created_at, input, output, flag, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.ProjectID, t.SessionID, t.CreatedAt, t.Input, t.Output, string(t.Flag), meta)
	if err != nil {
		return fmt.Errorf("insert task %s: %w", t.ID, err)
	}
	for _, e := range t.Events {
		e.TaskID = t.ID
		e.SessionID = t.SessionID
		e.ProjectID = t.ProjectID
		if err := s.insertEvent(ctx, s.db, e); err != nil {
			return err
		}
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) insertEvent(ctx context.Context, db execer, e model.Event) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO events (id, task_id, session_id, project_id, event_name, source, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.TaskID, e.SessionID, e.ProjectID, e.EventName, e.Source.String(), e.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert event %s: %w", e.EventName, err)
	}
	return nil
}

// Project implements store.Client.
func (s *Store) Project(ctx context.Context, projectID string) (model.Project, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `SELECT id FROM projects WHERE id = ?`, projectID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Project{}, &model.NotFoundError{Kind: "project", ID: projectID}
	}
	if err != nil {
		return model.Project{}, fmt.Errorf("query project %s: %w", projectID, err)
	}

	p := model.Project{ID: id, Events: make(map[string]model.EventDefinition)}
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, description FROM event_definitions WHERE project_id = ?`, projectID)
	if err != nil {
		return model.Project{}, fmt.Errorf("query vocabulary: %w", err)
	}
	defer rows.Close() //nolint:errcheck // best-effort close after full iteration

	for rows.Next() {
		var def model.EventDefinition
		if err := rows.Scan(&def.Name, &def.Description); err != nil {
			return model.Project{}, fmt.Errorf("scan vocabulary row: %w", err)
		}
		p.Events[def.Name] = def
	}
	if err := rows.Err(); err != nil {
		return model.Project{}, fmt.Errorf("iterate vocabulary: %w", err)
	}
	return p, nil
}

// Tasks implements store.Client.
func (s *Store) Tasks(ctx context.Context, projectID string) ([]model.Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, project_id, session_id, created_at, input, output, flag, metadata
		FROM   tasks
		WHERE  project_id = ?
		ORDER  BY created_at, id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close() //nolint:errcheck // best-effort close after full iteration

	tasks := []model.Task{}
	index := make(map[string]int)
	for rows.Next() {
		var t model.Task
		var flag, meta string
		if err := rows.Scan(&t.ID, &t.ProjectID, &t.SessionID, &t.CreatedAt, &t.Input, &t.Output, &flag, &meta); err != nil {
			return nil, fmt.Errorf("scan task row: %w", err)
		}
		t.Flag = model.Flag(flag)
		if meta != "" && meta != "{}" {
			if err := json.Unmarshal([]byte(meta), &t.Metadata); err != nil {
				return nil, fmt.Errorf("decode metadata for task %s: %w", t.ID, err)
			}
		}
		index[t.ID] = len(tasks)
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}

	if err := s.attachEvents(ctx, projectID, tasks, index); err != nil {
		return nil, err
	}
	return tasks, nil
}

// attachEvents loads the project's events and distributes them to tasks in
// attachment order.
func (s *Store) attachEvents(ctx context.Context, projectID string, tasks []model.Task, index map[string]int) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, task_id, session_id, project_id, event_name, source, created_at
		FROM   events
		WHERE  project_id = ?
		ORDER  BY created_at, id`, projectID)
	if err != nil {
		return fmt.Errorf("query events: %w", err)
	}
	defer rows.Close() //nolint:errcheck // best-effort close after full iteration

	for rows.Next() {
		var e model.Event
		var source string
		if err := rows.Scan(&e.ID, &e.TaskID, &e.SessionID, &e.ProjectID, &e.EventName, &source, &e.CreatedAt); err != nil {
			return fmt.Errorf("scan event row: %w", err)
		}
		e.Source = model.DetectorSource(source)
		if i, ok := index[e.TaskID]; ok {
			tasks[i].Events = append(tasks[i].Events, e)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate events: %w", err)
	}
	return nil
}

// Sessions implements store.Client. Sessions are derived by grouping the
// project's tasks on session_id; session-less tasks belong to none.
func (s *Store) Sessions(ctx context.Context, projectID string) ([]model.Session, error) {
	tasks, err := s.Tasks(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return GroupSessions(projectID, tasks), nil
}

// GroupSessions builds sessions from a chronologically ordered task list.
func GroupSessions(projectID string, tasks []model.Task) []model.Session {
	var order []string
	byID := make(map[string]*model.Session)
	for _, t := range tasks {
		if t.SessionID == "" {
			continue
		}
		sess, ok := byID[t.SessionID]
		if !ok {
			order = append(order, t.SessionID)
			sess = &model.Session{ID: t.SessionID, ProjectID: projectID}
			byID[t.SessionID] = sess
		}
		sess.Tasks = append(sess.Tasks, t)
	}
	sessions := make([]model.Session, 0, len(order))
	for _, id := range order {
		sess := byID[id]
		sess.SortTasks()
		sessions = append(sessions, *sess)
	}
	return sessions
}

// Aggregate implements store.Client by running the shared filter and metrics
// code over the stored tasks.
func (s *Store) Aggregate(ctx context.Context, projectID string, req store.AggregateRequest) (store.AggregateResponse, error) {
	if err := req.TasksFilter.Validate(); err != nil {
		return nil, err
	}
	tasks, err := s.Tasks(ctx, projectID)
	if err != nil {
		return nil, err
	}
	filtered := filter.Apply(req.TasksFilter, tasks)
	sessions := GroupSessions(projectID, tasks)
	opts := metrics.Options{EnoughLabelled: s.EnoughLabelled}
	return metrics.Compute(req.Metrics, filtered, sessions, opts), nil
}

// UpdateTaskEvents implements store.Client. The store is the authority: it
// re-validates event names against the vocabulary and rejects duplicate
// names on one task.
func (s *Store) UpdateTaskEvents(ctx context.Context, projectID, taskID string, events []model.Event) (model.Task, error) {
	project, err := s.Project(ctx, projectID)
	if err != nil {
		return model.Task{}, err
	}
	seen := make(map[string]bool, len(events))
	for _, e := range events {
		if !project.HasEvent(e.EventName) {
			return model.Task{}, &model.ValidationError{Field: "event_name", Value: e.EventName, Reason: "not in project vocabulary"}
		}
		if seen[e.EventName] {
			return model.Task{}, &model.ValidationError{Field: "event_name", Value: e.EventName, Reason: "duplicate event on task"}
		}
		seen[e.EventName] = true
	}

	task, err := s.task(ctx, projectID, taskID)
	if err != nil {
		return model.Task{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Task{}, fmt.Errorf("begin update: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, `DELETE FROM events WHERE task_id = ?`, taskID); err != nil {
		return model.Task{}, fmt.Errorf("clear events for task %s: %w", taskID, err)
	}
	for _, e := range events {
		e.TaskID = taskID
		e.SessionID = task.SessionID
		e.ProjectID = projectID
		if err := s.insertEvent(ctx, tx, e); err != nil {
			return model.Task{}, err
		}
	}
	if err := tx.Commit(); err != nil {
		return model.Task{}, fmt.Errorf("commit update: %w", err)
	}

	return s.task(ctx, projectID, taskID)
}

// UpdateTaskFlag implements store.Client.
func (s *Store) UpdateTaskFlag(ctx context.Context, projectID, taskID string, flag model.Flag) (model.Task, error) {
	if !flag.Valid() {
		return model.Task{}, &model.ValidationError{Field: "flag", Value: string(flag), Reason: "must be success, failure or unset"}
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET flag = ? WHERE id = ? AND project_id = ?`,
		string(flag), taskID, projectID)
	if err != nil {
		return model.Task{}, fmt.Errorf("update flag for task %s: %w", taskID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return model.Task{}, &model.NotFoundError{Kind: "task", ID: taskID}
	}
	return s.task(ctx, projectID, taskID)
}

// DefineEvent implements store.Client.
func (s *Store) DefineEvent(ctx context.Context, projectID string, def model.EventDefinition) error {
	if def.Name == "" {
		return &model.ValidationError{Field: "event_name", Value: "", Reason: "must not be empty"}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO event_definitions (project_id, name, description)
		VALUES (?, ?, ?)
		ON CONFLICT (project_id, name) DO UPDATE SET description = excluded.description`,
		projectID, def.Name, def.Description)
	if err != nil {
		return fmt.Errorf("define event %s: %w", def.Name, err)
	}
	return nil
}

// task loads a single task with its events.
func (s *Store) task(ctx context.Context, projectID, taskID string) (model.Task, error) {
	tasks, err := s.Tasks(ctx, projectID)
	if err != nil {
		return model.Task{}, err
	}
	for _, t := range tasks {
		if t.ID == taskID {
			return t, nil
		}
	}
	return model.Task{}, &model.NotFoundError{Kind: "task", ID: taskID}
}
