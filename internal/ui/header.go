package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/larder/internal/inventory"
)

// renderHeader renders the status bar with all information.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	compact := m.width < LayoutCompactWidth

	parts := []string{bg.Render("larder", styles.Logo)}

	// Connection indicator
	switch {
	case m.snapshot.IsOffline():
		parts = append(parts, bg.Render("● OFFLINE", styles.DangerText))
	case m.snapshot.LastUpdated.IsZero():
		parts = append(parts, bg.Render("● Connecting...", styles.WarningText))
	default:
		parts = append(parts, bg.Render("● ONLINE", styles.SuccessText))
	}

	parts = append(parts,
		bg.Render("Items:", styles.MutedText)+bg.Space()+
			bg.Render(fmt.Sprintf("%d", len(m.snapshot.Entries)), styles.Text),
	)

	// Expired and pending counts
	expired, pending := m.countAttention(time.Now())
	expiredStyle := styles.MutedText
	if expired > 0 {
		expiredStyle = styles.DangerText
	}
	pendingStyle := styles.MutedText
	if pending > 0 {
		pendingStyle = styles.WarningText
	}
	expiredLabel, pendingLabel := "Expired:", "Pending:"
	if compact {
		expiredLabel, pendingLabel = "E:", "P:"
	}
	parts = append(parts,
		bg.Render(expiredLabel, styles.MutedText)+bg.Space()+bg.Render(fmt.Sprintf("%d", expired), expiredStyle)+
			bg.Spaces(2)+bg.Render("•", styles.FaintText)+bg.Spaces(2)+
			bg.Render(pendingLabel, styles.MutedText)+bg.Space()+bg.Render(fmt.Sprintf("%d", pending), pendingStyle),
	)

	if sort := m.snapshot.Sort; sort.Key != inventory.KeyNone {
		parts = append(parts,
			bg.Render("Sort:", styles.MutedText)+bg.Space()+
				bg.Render(string(sort.Key)+" "+sort.Direction.String(), styles.InfoText),
		)
	}

	if ts := formatTimestamp(m.snapshot.LastUpdated, time.Now()); ts != "" {
		parts = append(parts, bg.Render(ts, styles.MutedText))
	}

	if !compact && m.config != nil {
		parts = append(parts, bg.Render(truncateMiddle(m.config.APIURL, 40), styles.FaintText))
	}

	return styles.Header.Width(m.width).Render(bg.Join(parts, "  "))
}

// countAttention returns the number of expired items and of items with
// unconfirmed local edits.
func (m Model) countAttention(now time.Time) (expired, pending int) {
	for _, e := range m.snapshot.Entries {
		if freshness(e.Item.ExpiryDate, now) == stateExpired {
			expired++
		}
		if e.Sync != inventory.SyncClean {
			pending++
		}
	}
	return
}

// formatTimestamp formats the last update time with a relative indicator.
func formatTimestamp(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}

	since := now.Sub(t)
	s := t.Format("15:04:05")

	switch {
	case since < time.Minute:
		s += " (now)"
	case since < time.Hour:
		s += fmt.Sprintf(" (%dm ago)", int(since.Minutes()))
	case since < 24*time.Hour:
		s += fmt.Sprintf(" (%dh ago)", int(since.Hours()))
	}
	return s
}

// renderCommandBar renders the command hints bar.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	type cmd struct{ key, desc string }
	var commands []cmd

	switch m.currentView {
	case ViewSearch:
		if m.search.input.Focused() {
			commands = []cmd{
				{"enter", "Search"},
				{"esc", "Results"},
			}
		} else {
			commands = []cmd{
				{"a", "Add"},
				{"j/k", "Navigate"},
				{"s", "New search"},
				{"i", "Inventory"},
				{"?", "More"},
			}
		}
	case ViewLogs:
		followLabel := "Pause"
		if !m.logState.follow {
			followLabel = "Follow"
		}
		commands = []cmd{
			{"Space", followLabel},
			{"j/k", "Scroll"},
			{"i", "Inventory"},
			{"s", "Search"},
			{"?", "More"},
		}
	default: // ViewInventory
		commands = []cmd{
			{"1-5", "Sort"},
			{"e", "Expiry"},
			{"d", "Delete"},
			{"x", "Export"},
			{"r", "Refresh"},
			{"s", "Search"},
			{"l", "Logs"},
			{"?", "More"},
		}
	}

	colon := bg.Sep(":")
	segments := make([]string, 0, len(commands)+1)
	for _, c := range commands {
		segments = append(segments,
			bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}

	segments = append(segments,
		bg.Render("T", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText))

	return styles.Header.Width(m.width).Render(strings.Join(segments, bg.Spaces(2)))
}

// renderStatusLine renders the line below the content: an active prompt,
// then action errors, the success banner and the last remote error.
func (m Model) renderStatusLine() string {
	styles := m.theme.Styles()
	bg := NewBgStyle(m.theme.Background)
	line := lipgloss.NewStyle().Background(lipgloss.Color(m.theme.Background)).Width(m.width)

	switch {
	case m.editing:
		name := m.editID
		if e, ok := m.store.Entry(m.editID); ok {
			name = e.Item.Name
		}
		return line.Render(
			bg.Render("Expiry for "+truncate(name, 30)+":", styles.AccentText) + bg.Space() +
				m.editInput.View() + bg.Spaces(2) +
				bg.Render("enter/esc save", styles.FaintText))

	case m.confirmDeleteAll:
		return line.Render(bg.Render(
			fmt.Sprintf("Delete all %d items? (y/N)", len(m.snapshot.Entries)), styles.WarningText.Bold(true)))

	case m.errorMsg != "":
		return line.Render(bg.Render("ERROR", styles.DangerText) + bg.Space() + bg.Render(m.errorMsg, styles.DangerText))

	case m.notice != "":
		return line.Render(bg.Render(m.notice, styles.SuccessText))

	case m.snapshot.LastError != nil:
		return line.Render(bg.Render("ERROR", styles.DangerText) + bg.Space() +
			bg.Render(inventory.Message(m.snapshot.LastError), styles.DangerText))
	}

	if e, ok := m.selectedEntry(); ok && m.currentView == ViewInventory && e.Sync == inventory.SyncUnsynced {
		return line.Render(styles.Badge(stateUnsynced).Render("NOT SAVED") + bg.Space() +
			bg.Render(inventory.Message(e.SyncErr), styles.WarningText))
	}
	return line.Render("")
}
