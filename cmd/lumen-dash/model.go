package main

import (
	"context"
	"sort"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"lumen/pkg/annotate"
	"lumen/pkg/filter"
	"lumen/pkg/model"
	"lumen/pkg/reqcache"
	"lumen/pkg/store"
)

// tickMsg is sent by Bubble Tea on every tick interval to trigger periodic
// data refresh from the store.
type tickMsg time.Time

// dataMsg carries one fetched snapshot. seq identifies the request that
// produced it; snapshots from superseded requests are dropped on arrival.
type dataMsg struct {
	seq      uint64
	project  model.Project
	tasks    []model.Task
	sessions []model.Session
	metrics  store.AggregateResponse
}

// errMsg carries a fetch failure for the given request sequence.
type errMsg struct {
	seq uint64
	err error
}

// mutationMsg reports the outcome of an annotation round trip.
type mutationMsg struct {
	err error
}

// fsChangeMsg is sent when the local store file changes on disk.
type fsChangeMsg struct{}

// tickCmd returns a command that sends a tickMsg after 5 seconds.
func tickCmd() tea.Cmd {
	return tea.Tick(5*time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// flagCycle is the order the f key steps through flag constraints.
var flagCycle = []*model.Flag{nil, flagPtr(model.FlagSuccess), flagPtr(model.FlagFailure), flagPtr(model.FlagUnset)}

func flagPtr(f model.Flag) *model.Flag {
	return &f
}

// Model is the Bubble Tea model for the lumen dashboard.
type Model struct {
	cfg       *dashConfig
	client    store.Client
	cache     *reqcache.Cache
	annotator *annotate.Annotator

	// Active filter and the request sequence used to drop stale responses:
	// only the snapshot matching the latest issued sequence is applied.
	flt      filter.Filter
	flagIdx  int
	eventIdx int // 0 = no event constraint, 1..n = vocabulary index
	seq      uint64

	// Data from the last applied snapshot
	project  model.Project
	vocab    []string // sorted vocabulary names for event cycling
	tasks    []model.Task
	sessions []model.Session
	metrics  store.AggregateResponse

	// UI state
	tbl     table.Model
	width   int
	height  int
	loading bool
	err     error
	notice  string

	styles Styles
}

// newModel creates the dashboard model and wires mutation completion to
// cache invalidation.
func newModel(cfg *dashConfig, client store.Client) Model {
	cache := reqcache.New()
	annotator := annotate.New(client)
	annotator.OnMutation(func(projectID string) {
		cache.Invalidate(projectID)
	})
	return Model{
		cfg:       cfg,
		client:    client,
		cache:     cache,
		annotator: annotator,
		tbl:       newTaskTable(),
		loading:   true,
		styles:    DefaultStyles(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{fetchCmd(m.client, m.cache, m.cfg, m.flt, m.seq), tickCmd()}
	if m.cfg.StoreURL == "" && m.cfg.LocalDB != "" {
		if w := watchStoreFile(m.cfg.LocalDB); w != nil {
			cmds = append(cmds, w)
		}
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.refetch(), tickCmd())

	case fsChangeMsg:
		// The store changed underneath us; cached aggregates are stale.
		m.cache.Invalidate(m.cfg.ProjectID)
		cmds := []tea.Cmd{m.refetch()}
		if w := watchStoreFile(m.cfg.LocalDB); w != nil {
			cmds = append(cmds, w)
		}
		return m, tea.Batch(cmds...)

	case dataMsg:
		if msg.seq != m.seq {
			// Superseded request: a fresher filter is already in flight.
			return m, nil
		}
		m.loading = false
		m.err = nil
		m.project = msg.project
		m.vocab = sortedVocab(msg.project)
		m.tasks = msg.tasks
		m.sessions = msg.sessions
		m.metrics = msg.metrics
		m.tbl.SetRows(taskRows(m.tasks, m.annotator))
		return m, nil

	case errMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		m.loading = false
		m.err = msg.err
		return m, nil

	case mutationMsg:
		if msg.err != nil {
			m.notice = "not persisted: " + msg.err.Error()
		} else {
			m.notice = ""
		}
		return m, m.refetch()
	}

	return m, nil
}

// refetch bumps the request sequence and issues a fresh fetch; any response
// from an earlier sequence will be ignored on arrival.
func (m *Model) refetch() tea.Cmd {
	m.seq++
	m.loading = true
	return fetchCmd(m.client, m.cache, m.cfg, m.flt, m.seq)
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "f":
		m.flagIdx = (m.flagIdx + 1) % len(flagCycle)
		m.flt.Flag = flagCycle[m.flagIdx]
		return m, m.refetch()

	case "e":
		if len(m.vocab) == 0 {
			return m, nil
		}
		m.eventIdx = (m.eventIdx + 1) % (len(m.vocab) + 1)
		if m.eventIdx == 0 {
			m.flt.EventName = nil
		} else {
			m.flt.EventName = &m.vocab[m.eventIdx-1]
		}
		return m, m.refetch()

	case "r":
		m.cache.Invalidate(m.cfg.ProjectID)
		return m, m.refetch()

	case "s":
		return m, m.flagSelected(model.FlagSuccess)
	case "x":
		return m, m.flagSelected(model.FlagFailure)
	case "u":
		return m, m.flagSelected(model.FlagUnset)
	}

	var cmd tea.Cmd
	m.tbl, cmd = m.tbl.Update(msg)
	return m, cmd
}

// flagSelected runs a flag mutation on the task under the cursor through the
// annotation protocol. A second mutation while one is pending is rejected by
// the annotator and surfaced as a notice.
func (m *Model) flagSelected(flag model.Flag) tea.Cmd {
	cursor := m.tbl.Cursor()
	if cursor < 0 || cursor >= len(m.tasks) {
		return nil
	}
	task := m.tasks[cursor].Clone()
	annotator := m.annotator
	return func() tea.Msg {
		err := annotator.SetFlag(context.Background(), &task, flag)
		return mutationMsg{err: err}
	}
}

// sortedVocab returns the project vocabulary names in stable cycling order.
func sortedVocab(p model.Project) []string {
	names := p.EventNames()
	sort.Strings(names)
	return names
}

// View implements tea.Model.
func (m Model) View() string {
	header := m.styles.Title.Render("lumen · " + m.cfg.ProjectID)
	filterLine := m.styles.FilterLine.Render(describeFilter(m.flt, m.loading))

	sections := []string{
		header,
		filterLine,
		renderMetrics(m.metrics, m.styles),
		m.tbl.View(),
	}
	if m.err != nil {
		sections = append(sections, m.styles.Error.Render("error: "+m.err.Error()))
	}
	if m.notice != "" {
		sections = append(sections, m.styles.Warning.Render(m.notice))
	}
	sections = append(sections, m.styles.Help.Render("f filter flag · e filter event · s/x/u flag task · r refresh · q quit"))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// describeFilter renders the active filter constraints.
func describeFilter(f filter.Filter, loading bool) string {
	flag := "all flags"
	if f.Flag != nil {
		flag = "flag=" + string(*f.Flag)
		if *f.Flag == model.FlagUnset {
			flag = "flag=unset"
		}
	}
	event := "all events"
	if f.EventName != nil {
		event = "event=" + *f.EventName
	}
	s := flag + " · " + event
	if loading {
		s += " · refreshing…"
	}
	return s
}
