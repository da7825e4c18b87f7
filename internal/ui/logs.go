package ui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/larder/internal/logtail"
)

// logState holds all log-related state.
type logState struct {
	lines  []string
	follow bool
	err    error
	// dirty marks content that must be re-rendered into the viewport.
	dirty bool
}

type logLinesMsg struct {
	lines []string
	err   error
}

// levelStates maps log levels to theme state colors.
var levelStates = map[string]string{
	"DEBUG": stateClean,
	"INFO":  stateFresh,
	"WARN":  stateDirty,
	"ERROR": stateUnsynced,
	"FATAL": stateUnsynced,
}

// refreshLogs reads the tail of the log file.
func (m Model) refreshLogs() tea.Cmd {
	if m.config == nil || m.config.LogFile == "" {
		return nil
	}
	path := m.config.LogFile
	return func() tea.Msg {
		lines, err := logtail.Tail(path, LogBufferLimit)
		return logLinesMsg{lines: lines, err: err}
	}
}

func (m *Model) handleLogLines(msg logLinesMsg) {
	m.logState.err = msg.err
	if msg.err == nil && slices.Equal(msg.lines, m.logState.lines) {
		return
	}
	if msg.err == nil {
		m.logState.lines = msg.lines
	}
	m.logState.dirty = true
	m.updateLogViewport()
}

// initLogViewport initializes the log viewport.
func (m *Model) initLogViewport() {
	m.logViewport = viewport.New(max(m.width-2, 0), max(m.height-5, 0))
	m.logViewport.Style = lipgloss.NewStyle()
	m.logState.dirty = true
}

// updateLogViewport updates the log viewport with current content.
func (m *Model) updateLogViewport() {
	// Box height = m.height - 3 (header, cmdbar, status line)
	// Box inner = box height - 2 (top and bottom borders)
	m.logViewport.Width = max(m.width-2, 0)
	m.logViewport.Height = max(m.height-5, 0)
	m.logViewport.Style = lipgloss.NewStyle().Background(lipgloss.Color(m.theme.FocusBg))

	if m.logState.dirty {
		m.logViewport.SetContent(m.renderLogContent())
		m.logState.dirty = false
	}

	if m.logState.follow {
		m.logViewport.GotoBottom()
	}
}

// handleLogsKey processes keyboard input for the log view.
func (m Model) handleLogsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.ToggleFollow):
		m.logState.follow = !m.logState.follow
		if m.logState.follow {
			m.logViewport.GotoBottom()
			return m, m.refreshLogs()
		}
	case key.Matches(msg, m.keys.Top):
		m.logState.follow = false
		m.logViewport.GotoTop()
	case key.Matches(msg, m.keys.Bottom):
		m.logState.follow = true
		m.logViewport.GotoBottom()
	case key.Matches(msg, m.keys.Down):
		m.logViewport.ScrollDown(1)
	case key.Matches(msg, m.keys.Up):
		m.logState.follow = false
		m.logViewport.ScrollUp(1)
	case key.Matches(msg, m.keys.HalfPageDown):
		m.logViewport.HalfPageDown()
	case key.Matches(msg, m.keys.HalfPageUp):
		m.logState.follow = false
		m.logViewport.HalfPageUp()
	case key.Matches(msg, m.keys.Refresh):
		return m, m.refreshLogs()
	}
	return m, nil
}

// renderLogs renders the log view.
func (m Model) renderLogs() string {
	contentHeight := m.height - 3

	follow := "paused"
	if m.logState.follow {
		follow = "following"
	}
	title := fmt.Sprintf("Log · %d lines · %s", len(m.logState.lines), follow)

	return m.renderTitledBox(title, m.logViewport.View(), m.width, contentHeight, true)
}

// renderLogContent renders the colorized log lines.
func (m *Model) renderLogContent() string {
	bg := NewBgStyle(m.theme.FocusBg)
	styles := m.theme.Styles()
	width := m.logViewport.Width

	if m.logState.err != nil && len(m.logState.lines) == 0 {
		return bg.FillLine(bg.Render("Log unavailable: "+m.logState.err.Error(), styles.DangerText), width)
	}
	if len(m.logState.lines) == 0 {
		path := ""
		if m.config != nil {
			path = truncateMiddle(m.config.LogFile, max(width-20, 10))
		}
		return bg.FillLine(bg.Render("No log entries in "+path, styles.MutedText), width)
	}

	var b strings.Builder
	for i, line := range m.logState.lines {
		lineContent := bg.Render(fmt.Sprintf("%4d │ ", i+1), styles.FaintText) +
			m.colorizeLine(line, styles, bg)
		b.WriteString(bg.FillLine(lineContent, width))
		if i < len(m.logState.lines)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// colorizeLine colors the level word of a formatted log line.
func (m *Model) colorizeLine(line string, styles Styles, bg BgStyle) string {
	fields := strings.Fields(line)
	// "2006-01-02 15:04:05 LEVEL ..."
	if len(fields) < 3 {
		return bg.Render(line, styles.Text)
	}
	state, ok := levelStates[fields[2]]
	if !ok {
		return bg.Render(line, styles.Text)
	}
	stamp := fields[0] + " " + fields[1]
	rest := strings.TrimPrefix(strings.TrimPrefix(line, stamp+" "), fields[2])
	return bg.Render(stamp, styles.FaintText) + bg.Space() +
		bg.Render(fields[2], styles.StateText(state).Bold(true)) +
		bg.Render(rest, styles.Text)
}
