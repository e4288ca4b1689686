// Package tui is the terminal monitor of a running server: a table of the
// documents open right now, refreshed on an interval.
package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/glaximini/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/glaximini/internal/adapters/driving/tui/styles"
)

// documentsMsg carries the result of one poll.
type documentsMsg struct {
	docs []Document
	err  error
	at   time.Time
}

// tickMsg schedules the next poll.
type tickMsg struct{}

// Monitor is the bubbletea model of the monitor.
type Monitor struct {
	ctx      context.Context
	source   Source
	server   string
	interval time.Duration

	styles  *styles.Styles
	keys    *keymap.KeyMap
	table   table.Model
	help    help.Model
	spinner spinner.Model

	docs    []Document
	err     error
	updated time.Time
	loading bool
	width   int
}

// Ensure Monitor implements tea.Model.
var _ tea.Model = (*Monitor)(nil)

// NewMonitor creates a monitor polling source every interval. server is only
// shown in the header.
func NewMonitor(ctx context.Context, source Source, server string, interval time.Duration) *Monitor {
	s := styles.DefaultStyles()

	t := table.New(
		table.WithColumns(columns(80)),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	t.SetStyles(s.Table)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = s.Status

	if interval <= 0 {
		interval = 2 * time.Second
	}

	return &Monitor{
		ctx:      ctx,
		source:   source,
		server:   server,
		interval: interval,
		styles:   s,
		keys:     keymap.DefaultKeyMap(),
		table:    t,
		help:     help.New(),
		spinner:  sp,
		loading:  true,
		width:    80,
	}
}

// columns sizes the table for a terminal width.
func columns(width int) []table.Column {
	idWidth := width - 6*9 - 8
	if idWidth < 10 {
		idWidth = 10
	}
	return []table.Column{
		{Title: "Document", Width: idWidth},
		{Title: "Sessions", Width: 9},
		{Title: "Shapes", Width: 9},
		{Title: "Size", Width: 11},
		{Title: "FPS", Width: 6},
		{Title: "Duration", Width: 9},
	}
}

// rows renders docs as table rows.
func rows(docs []Document) []table.Row {
	out := make([]table.Row, 0, len(docs))
	for _, d := range docs {
		out = append(out, table.Row{
			d.ID,
			strconv.Itoa(d.Sessions),
			strconv.Itoa(d.Shapes),
			fmt.Sprintf("%dx%d", d.Timeline.Width, d.Timeline.Height),
			strconv.FormatFloat(d.Timeline.FPS, 'f', -1, 64),
			strconv.FormatFloat(d.Timeline.Duration, 'f', -1, 64),
		})
	}
	return out
}

func (m *Monitor) poll() tea.Cmd {
	return func() tea.Msg {
		docs, err := m.source.Documents(m.ctx)
		return documentsMsg{docs: docs, err: err, at: time.Now()}
	}
}

// Init implements tea.Model.
func (m *Monitor) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("glaximini monitor"),
		m.spinner.Tick,
		m.poll(),
	)
}

// Update implements tea.Model.
func (m *Monitor) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		m.table.SetColumns(columns(msg.Width))
		height := msg.Height - 6
		if height < 3 {
			height = 3
		}
		m.table.SetHeight(height)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Refresh):
			m.loading = true
			return m, m.poll()
		}
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd

	case documentsMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.docs = msg.docs
			m.updated = msg.at
			m.table.SetRows(rows(msg.docs))
		}
		return m, tea.Tick(m.interval, func(time.Time) tea.Msg { return tickMsg{} })

	case tickMsg:
		return m, m.poll()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View implements tea.Model.
func (m *Monitor) View() string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render("glaximini"))
	b.WriteString(m.styles.Muted.Render("  " + m.server))
	if m.loading {
		b.WriteString(" " + m.spinner.View())
	}
	b.WriteString("\n\n")

	b.WriteString(m.table.View())
	b.WriteString("\n\n")

	switch {
	case m.err != nil:
		b.WriteString(m.styles.Error.Render("error: " + m.err.Error()))
	case m.updated.IsZero():
		b.WriteString(m.styles.Muted.Render("waiting for server"))
	default:
		b.WriteString(m.styles.Status.Render(summary(m.docs)))
		b.WriteString(m.styles.Muted.Render(", updated " + m.updated.Format(time.TimeOnly)))
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))

	return b.String()
}

// summary counts documents and sessions.
func summary(docs []Document) string {
	sessions := 0
	for _, d := range docs {
		sessions += d.Sessions
	}
	return fmt.Sprintf("%d open documents, %d sessions", len(docs), sessions)
}

// Snapshot renders docs as plain text, for output that is not a terminal.
func Snapshot(docs []Document) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-24s %8s %8s %11s %6s %9s\n", "DOCUMENT", "SESSIONS", "SHAPES", "SIZE", "FPS", "DURATION")
	for _, r := range rows(docs) {
		fmt.Fprintf(&b, "%-24s %8s %8s %11s %6s %9s\n", r[0], r[1], r[2], r[3], r[4], r[5])
	}
	b.WriteString(summary(docs))
	b.WriteString("\n")
	return b.String()
}

// Run starts the monitor and blocks until the user quits or ctx is done.
func Run(ctx context.Context, source Source, server string, interval time.Duration, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithContext(ctx), tea.WithAltScreen()}, opts...)
	_, err := tea.NewProgram(NewMonitor(ctx, source, server, interval), opts...).Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}
