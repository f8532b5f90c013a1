// ABOUTME: Model is the bubbletea view behind interactive keyview: a scrolling table of decoded key events
// ABOUTME: Events arrive as KeyMsg from the input dispatcher; bound keys quit, clear, or query the cursor

package viewer

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mauromedda/keyview/internal/keybindings"
	"github.com/mauromedda/keyview/pkg/tui/key"
	"github.com/mauromedda/keyview/pkg/tui/width"
)

// MaxEvents bounds the event history kept by the model.
const MaxEvents = 500

// KeyMsg carries one decoded event into the program.
type KeyMsg struct {
	Key key.Key
	At  time.Time
}

// ErrMsg reports a fatal input error; the model shows it and quits.
type ErrMsg struct {
	Err error
}

// ProfilesMsg replaces the profile names shown in the header, after a reload.
type ProfilesMsg struct {
	Names []string
}

// QueryFunc asks the terminal to report the cursor position.
type QueryFunc func() error

type entry struct {
	seq   int
	key   key.Key
	delta time.Duration
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	headerStyle = lipgloss.NewStyle().Faint(true)
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle    = lipgloss.NewStyle().Faint(true)
)

// Column widths of the event table.
const (
	colSeq   = 6
	colLabel = 24
	colSpec  = 22
)

// Model lists decoded events newest-last.
type Model struct {
	events   []entry
	next     int
	last     time.Time
	profiles []string

	pos    key.Position
	hasPos bool

	bindings *keybindings.Manager
	query    QueryFunc
	notice   string
	err      error
	done     bool
	width    int
	height   int
}

// New creates a Model showing the given profile names. A nil bindings uses
// the default keys; a nil query disables the cursor position request.
func New(profiles []string, bindings *keybindings.Manager, query QueryFunc) Model {
	if bindings == nil {
		bindings, _ = keybindings.New(nil)
	}
	return Model{
		profiles: append([]string(nil), profiles...),
		bindings: bindings,
		query:    query,
		next:     1,
		width:    80,
		height:   24,
	}
}

// Init returns nil; events are pushed in from outside the program.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update records events and handles the quit and control keys.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case KeyMsg:
		return m.handleKey(msg)

	case ErrMsg:
		m.err = msg.Err
		m.done = true
		return m, tea.Quit

	case queryFailedMsg:
		m.notice = msg.err.Error()

	case ProfilesMsg:
		m.profiles = append([]string(nil), msg.Names...)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}
	return m, nil
}

func (m Model) handleKey(msg KeyMsg) (tea.Model, tea.Cmd) {
	m.record(msg)

	k := msg.Key
	switch k.Type {
	case key.KeyEOF:
		m.done = true
		return m, tea.Quit
	case key.KeyCursorLocation:
		m.pos, m.hasPos = k.Position, true
		return m, nil
	}

	switch m.bindings.ActionFor(k) {
	case keybindings.ActionQuit:
		m.done = true
		return m, tea.Quit
	case keybindings.ActionClear:
		m.events = m.events[:0]
	case keybindings.ActionQueryCursor:
		if m.query != nil {
			return m, requestPosition(m.query)
		}
	}
	return m, nil
}

// queryFailedMsg reports a failed cursor request without ending the program.
type queryFailedMsg struct {
	err error
}

func requestPosition(query QueryFunc) tea.Cmd {
	return func() tea.Msg {
		if err := query(); err != nil {
			return queryFailedMsg{err: fmt.Errorf("requesting cursor position: %w", err)}
		}
		return nil
	}
}

func (m *Model) record(msg KeyMsg) {
	e := entry{seq: m.next, key: msg.Key}
	if !m.last.IsZero() && !msg.At.IsZero() {
		e.delta = msg.At.Sub(m.last)
	}
	if !msg.At.IsZero() {
		m.last = msg.At
	}
	m.next++
	m.events = append(m.events, e)
	if len(m.events) > MaxEvents {
		m.events = m.events[len(m.events)-MaxEvents:]
	}
}

// Err returns the input error that ended the program, if any.
func (m Model) Err() error {
	return m.err
}

// Done reports whether the model asked the program to quit.
func (m Model) Done() bool {
	return m.done
}

// View renders the header, the newest events that fit, and the status line.
func (m Model) View() string {
	var b strings.Builder

	title := "keyview"
	if len(m.profiles) > 0 {
		title += " · " + strings.Join(m.profiles, ", ")
	}
	b.WriteString(titleStyle.Render(width.Truncate(title, m.width)))
	b.WriteByte('\n')
	b.WriteString(headerStyle.Render(m.row("#", "key", "spec", "Δ")))
	b.WriteByte('\n')

	rows := m.height - 4
	if rows < 1 {
		rows = 1
	}
	start := 0
	if len(m.events) > rows {
		start = len(m.events) - rows
	}
	for _, e := range m.events[start:] {
		b.WriteString(m.row(fmt.Sprintf("%d", e.seq), e.key.String(), e.key.Spec(), formatDelta(e.delta)))
		b.WriteByte('\n')
	}

	b.WriteString(m.status())
	return b.String()
}

func (m Model) row(seq, label, spec, delta string) string {
	line := width.Pad(width.Truncate(seq, colSeq-1), colSeq) +
		width.Pad(width.Truncate(label, colLabel-1), colLabel) +
		width.Pad(width.Truncate(spec, colSpec-1), colSpec) +
		delta
	return width.Truncate(line, m.width)
}

func (m Model) status() string {
	var parts []string
	if m.hasPos {
		parts = append(parts, cursorStyle.Render(fmt.Sprintf("cursor %d,%d", m.pos.Row, m.pos.Col)))
	}
	switch {
	case m.err != nil:
		parts = append(parts, errStyle.Render(m.err.Error()))
	case m.notice != "":
		parts = append(parts, errStyle.Render(m.notice))
	}
	parts = append(parts, dimStyle.Render(m.bindings.Help()))
	return strings.Join(parts, "  ")
}

func formatDelta(d time.Duration) string {
	if d <= 0 {
		return ""
	}
	if d < time.Second {
		return fmt.Sprintf("+%dms", d.Milliseconds())
	}
	return fmt.Sprintf("+%.1fs", d.Seconds())
}
