package localstore

// Schema statements for the local store. Sessions are derived from the
// session_id column on tasks rather than stored as rows.
const (
	// CreateProjectsTable holds one row per local project.
	CreateProjectsTable = `
		CREATE TABLE IF NOT EXISTS projects (
			id TEXT PRIMARY KEY
		)`

	// CreateEventDefinitionsTable holds the per-project event vocabulary.
	CreateEventDefinitionsTable = `
		CREATE TABLE IF NOT EXISTS event_definitions (
			project_id  TEXT NOT NULL,
			name        TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (project_id, name)
		)`

	// CreateTasksTable holds interaction records. metadata is a JSON blob.
	CreateTasksTable = `
		CREATE TABLE IF NOT EXISTS tasks (
			id         TEXT PRIMARY KEY,
			project_id TEXT NOT NULL,
			session_id TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL,
			input      TEXT NOT NULL DEFAULT '',
			output     TEXT NOT NULL DEFAULT '',
			flag       TEXT NOT NULL DEFAULT '',
			metadata   TEXT NOT NULL DEFAULT '{}'
		)`

	// CreateEventsTable holds events attached to tasks. source is the wire
	// form: "owner" or a detector name.
	CreateEventsTable = `
		CREATE TABLE IF NOT EXISTS events (
			id         TEXT PRIMARY KEY,
			task_id    TEXT NOT NULL,
			session_id TEXT NOT NULL DEFAULT '',
			project_id TEXT NOT NULL,
			event_name TEXT NOT NULL,
			source     TEXT NOT NULL DEFAULT 'owner',
			created_at INTEGER NOT NULL
		)`

	// CreateEventsTaskIndex speeds up attaching events to fetched tasks.
	CreateEventsTaskIndex = `
		CREATE INDEX IF NOT EXISTS idx_events_task ON events (task_id)`
)
