package main

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"lumen/pkg/annotate"
	"lumen/pkg/model"
)

// newTaskTable builds the task table component.
func newTaskTable() table.Model {
	columns := []table.Column{
		{Title: "ID", Width: 12},
		{Title: "Created", Width: 16},
		{Title: "Session", Width: 12},
		{Title: "Flag", Width: 8},
		{Title: "Events", Width: 28},
		{Title: "Sync", Width: 8},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.Bold(true).BorderStyle(lipgloss.NormalBorder()).BorderBottom(true)
	s.Selected = s.Selected.Reverse(true)
	t.SetStyles(s)
	return t
}

// taskRows converts tasks to table rows, annotating each with its mutation
// sync state.
func taskRows(tasks []model.Task, annotator *annotate.Annotator) []table.Row {
	rows := make([]table.Row, 0, len(tasks))
	for _, t := range tasks {
		flag := string(t.Flag)
		if flag == "" {
			flag = "-"
		}
		session := t.SessionID
		if session == "" {
			session = "-"
		}
		names := make([]string, 0, len(t.Events))
		for _, e := range t.Events {
			name := e.EventName
			if _, detected := e.Source.Detector(); detected {
				name += "*" // detector-attached, not yet human-confirmed
			}
			names = append(names, name)
		}
		events := "-"
		if len(names) > 0 {
			events = strings.Join(names, ",")
		}
		sync := ""
		if state := annotator.State(t.ID); state != annotate.StateClean {
			sync = state.String()
		}
		rows = append(rows, table.Row{
			truncate(t.ID, 12),
			time.Unix(t.CreatedAt, 0).UTC().Format("2006-01-02 15:04"),
			truncate(session, 12),
			flag,
			truncate(events, 28),
			sync,
		})
	}
	return rows
}

// truncate shortens s to width runes with an ellipsis.
func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 1 {
		return string(r[:width])
	}
	return string(r[:width-1]) + "…"
}
