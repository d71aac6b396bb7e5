// ABOUTME: Transient notification banner for the TUI
// ABOUTME: Shows one message at a time and hides it after a delay or on dismiss

package toast

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/ptisa/inventory-admin/internal/tui/icons"
	"github.com/ptisa/inventory-admin/internal/tui/styles"
)

// DefaultDuration is how long a toast stays visible
const DefaultDuration = 4 * time.Second

// Level selects the toast color
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelError
)

// ShowMsg asks the toast to display a message
type ShowMsg struct {
	Text  string
	Level Level
}

type expireMsg struct {
	seq uint64
}

// Show returns a command that displays text
func Show(text string, level Level) tea.Cmd {
	return func() tea.Msg { return ShowMsg{Text: text, Level: level} }
}

// Error is Show at error level
func Error(text string) tea.Cmd { return Show(text, LevelError) }

// Model holds the visible toast, if any
type Model struct {
	text     string
	level    Level
	seq      uint64
	duration time.Duration
}

// New creates an empty toast
func New() Model {
	return Model{duration: DefaultDuration}
}

// Update handles show and expiry messages
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ShowMsg:
		m.text = msg.Text
		m.level = msg.Level
		m.seq++
		seq := m.seq
		return m, tea.Tick(m.duration, func(time.Time) tea.Msg { return expireMsg{seq: seq} })
	case expireMsg:
		// A newer toast replaced this one
		if msg.seq == m.seq {
			m.text = ""
		}
	}
	return m, nil
}

// Dismiss hides the current toast
func (m Model) Dismiss() Model {
	m.text = ""
	m.seq++
	return m
}

// Visible reports whether a message is shown
func (m Model) Visible() bool { return m.text != "" }

// Text returns the current message
func (m Model) Text() string { return m.text }

// View renders the banner, or nothing when hidden
func (m Model) View() string {
	if m.text == "" {
		return ""
	}
	switch m.level {
	case LevelError:
		return styles.ToastError.Render(icons.Critical.String() + " " + m.text)
	case LevelSuccess:
		return styles.ToastSuccess.Render(icons.CheckOK.String() + " " + m.text)
	default:
		return styles.ToastInfo.Render(icons.Info.String() + " " + m.text)
	}
}
