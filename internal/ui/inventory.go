package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/larder/internal/inventory"
)

// expiringWindow marks dates this close to today as expiring.
const expiringWindow = 7 * 24 * time.Hour

// sortColumns maps the sort keys to the table columns, in display order.
var sortColumns = []struct {
	key   inventory.SortKey
	title string
}{
	{inventory.KeyName, "Name"},
	{inventory.KeyBrand, "Brand"},
	{inventory.KeyQuantity, "Quantity"},
	{inventory.KeyCount, "Amount"},
	{inventory.KeyExpiry, "Expiry"},
}

// selectedEntry returns the entry under the cursor.
func (m Model) selectedEntry() (inventory.Entry, bool) {
	if m.selectedRow < 0 || m.selectedRow >= len(m.snapshot.Entries) {
		return inventory.Entry{}, false
	}
	return m.snapshot.Entries[m.selectedRow], true
}

// clampSelection moves the cursor to id when it is still present and keeps
// it in range otherwise.
func (m *Model) clampSelection(id string) {
	entries := m.snapshot.Entries
	if len(entries) == 0 {
		m.selectedRow = 0
		return
	}
	if id != "" {
		for i, e := range entries {
			if e.Item.ID == id {
				m.selectedRow = i
				return
			}
		}
	}
	m.selectedRow = min(max(m.selectedRow, 0), len(entries)-1)
}

// handleInventoryKey processes keyboard input for the inventory view.
func (m Model) handleInventoryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	count := len(m.snapshot.Entries)
	half := max(m.tableRows()/2, 1)

	switch {
	case key.Matches(msg, m.keys.Down):
		if m.selectedRow < count-1 {
			m.selectedRow++
		}
	case key.Matches(msg, m.keys.Up):
		if m.selectedRow > 0 {
			m.selectedRow--
		}
	case key.Matches(msg, m.keys.Top):
		m.selectedRow = 0
	case key.Matches(msg, m.keys.Bottom):
		m.selectedRow = max(count-1, 0)
	case key.Matches(msg, m.keys.HalfPageDown):
		m.selectedRow = min(m.selectedRow+half, max(count-1, 0))
	case key.Matches(msg, m.keys.HalfPageUp):
		m.selectedRow = max(m.selectedRow-half, 0)

	case key.Matches(msg, m.keys.SortName):
		m.sortBy(inventory.KeyName)
	case key.Matches(msg, m.keys.SortBrand):
		m.sortBy(inventory.KeyBrand)
	case key.Matches(msg, m.keys.SortQuantity):
		m.sortBy(inventory.KeyQuantity)
	case key.Matches(msg, m.keys.SortCount):
		m.sortBy(inventory.KeyCount)
	case key.Matches(msg, m.keys.SortExpiry):
		m.sortBy(inventory.KeyExpiry)

	case key.Matches(msg, m.keys.EditExpiry):
		cmd := m.beginEdit()
		return m, cmd
	case key.Matches(msg, m.keys.Delete):
		if e, ok := m.selectedEntry(); ok {
			return m, m.deleteCmd(e.Item.ID)
		}
	case key.Matches(msg, m.keys.DeleteAll):
		if count > 0 {
			m.confirmDeleteAll = true
		}
	case key.Matches(msg, m.keys.Export):
		return m, m.exportCmd()
	case key.Matches(msg, m.keys.Refresh):
		return m, m.fetchCmd()
	}

	return m, nil
}

// sortBy applies a column sort and remembers it.
func (m *Model) sortBy(k inventory.SortKey) {
	if m.store == nil {
		return
	}
	if err := m.store.SortBy(k); err != nil {
		m.errorMsg = inventory.Message(err)
		return
	}
	m.refreshSnapshot()
	m.savePrefs()
}

// beginEdit focuses the expiry input for the selected item.
func (m *Model) beginEdit() tea.Cmd {
	e, ok := m.selectedEntry()
	if !ok || m.gateway == nil {
		return nil
	}
	m.editing = true
	m.editID = e.Item.ID
	m.editInput.SetValue(e.Item.ExpiryDate)
	m.editInput.CursorEnd()
	return m.editInput.Focus()
}

// handleEditKey feeds the expiry input. Every change is applied locally at
// once; enter or esc sends the value.
func (m Model) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Confirm) || key.Matches(msg, m.keys.Escape) {
		m.editing = false
		m.editInput.Blur()
		id, date := m.editID, strings.TrimSpace(m.editInput.Value())
		if e, ok := m.store.Entry(id); ok && e.Sync == inventory.SyncClean && e.PersistedExpiry == date {
			return m, nil
		}
		return m, m.updateExpiryCmd(id, date)
	}

	before := m.editInput.Value()
	var cmd tea.Cmd
	m.editInput, cmd = m.editInput.Update(msg)
	if after := m.editInput.Value(); after != before {
		if err := m.gateway.EditExpiry(m.editID, after); err != nil {
			// The item went away underneath the edit.
			m.editing = false
			m.editInput.Blur()
			m.errorMsg = inventory.Message(err)
		}
		m.refreshSnapshot()
	}
	return m, cmd
}

// tableRows returns how many item rows fit in the inventory box.
func (m Model) tableRows() int {
	// header, cmdbar, status line, two borders, column header
	return max(m.height-6, 1)
}

// renderInventory renders the inventory table.
func (m Model) renderInventory() string {
	styles := m.theme.Styles()
	contentHeight := m.height - 3 // header + cmdbar + status line

	if len(m.snapshot.Entries) == 0 {
		msg := "Inventory is empty. Press s to search the catalog."
		if m.snapshot.LastError != nil {
			msg = inventory.Message(m.snapshot.LastError)
		}
		return lipgloss.Place(m.width, contentHeight, lipgloss.Center, lipgloss.Center, styles.MutedText.Render(msg))
	}

	title := fmt.Sprintf("Inventory (%d)", len(m.snapshot.Entries))
	content := m.renderInventoryTable(m.width-2, m.theme.FocusBg)
	return m.renderTitledBox(title, content, m.width, contentHeight, true)
}

// columnWidths splits the available width between the table columns.
// The first cell is the sync marker.
func columnWidths(width int) [6]int {
	const marker, amount, expiry = 2, 8, 12
	rest := max(width-marker-amount-expiry-5, 12) // five column gaps
	name := rest * 45 / 100
	brand := rest * 30 / 100
	quantity := rest - name - brand
	return [6]int{marker, name, brand, quantity, amount, expiry}
}

// renderInventoryTable renders the column header and the visible rows.
func (m Model) renderInventoryTable(width int, bgColor string) string {
	bg := NewBgStyle(bgColor)
	styles := m.theme.Styles()
	widths := columnWidths(width)
	sort := m.snapshot.Sort

	// Column header with sort indicator
	header := []string{bg.Spaces(widths[0])}
	for i, col := range sortColumns {
		label := fmt.Sprintf("%d %s", i+1, col.title)
		style := styles.MutedText.Bold(true)
		if sort.Key == col.key {
			label += ternary(sort.Direction == inventory.Ascending, " ▲", " ▼")
			style = styles.AccentText.Bold(true)
		}
		header = append(header, bg.Render(padRight(truncate(label, widths[i+1]), widths[i+1]), style))
	}
	lines := []string{bg.FillLine(bg.Join(header, " "), width)}

	visible := m.tableRows()
	offset := max(m.selectedRow-visible+1, 0)
	now := time.Now()

	i := 0
	for row := range inventory.Rows(m.snapshot.Entries) {
		if i >= offset+visible {
			break
		}
		if i >= offset {
			selected := i == m.selectedRow
			rowBg := bgColor
			if selected {
				rowBg = m.theme.SelectionBg
			}
			content := m.formatInventoryRow(row, widths, rowBg, selected, now)
			lines = append(lines, NewBgStyle(rowBg).FillLine(content, width))
		}
		i++
	}

	return strings.Join(lines, "\n")
}

// formatInventoryRow renders one table row. Selected rows use the
// selection text color for everything except the state markers.
func (m Model) formatInventoryRow(row inventory.Row, widths [6]int, bgColor string, selected bool, now time.Time) string {
	bg := NewBgStyle(bgColor)
	styles := m.theme.Styles()

	text := styles.Text
	muted := styles.MutedText
	if selected {
		text = lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.SelectionText))
		muted = text
	}

	marker, markerState := syncMarker(row.Sync)
	brandStyle := text
	if row.Brand == inventory.NoBrand {
		brandStyle = muted
	}
	expiryState := freshness(row.Expiry, now)

	cells := []string{
		bg.Render(padRight(marker, widths[0]), styles.StateText(markerState)),
		bg.Render(padRight(truncate(row.Name, widths[1]), widths[1]), text),
		bg.Render(padRight(truncate(row.Brand, widths[2]), widths[2]), brandStyle),
		bg.Render(padRight(truncate(row.Quantity, widths[3]), widths[3]), text),
		bg.Render(padRight(fmt.Sprintf("%d", row.Count), widths[4]), text),
		bg.Render(padRight(truncate(expiryLabel(row.Expiry), widths[5]), widths[5]), styles.StateText(expiryState)),
	}
	return bg.Join(cells, " ")
}

// syncMarker returns the glyph and state key for a sync state.
func syncMarker(s inventory.SyncState) (string, string) {
	switch s {
	case inventory.SyncDirty:
		return "●", stateDirty
	case inventory.SyncSyncing:
		return "↻", stateSyncing
	case inventory.SyncUnsynced:
		return "!", stateUnsynced
	default:
		return "", stateClean
	}
}

// freshness classifies a projected expiry value relative to now.
func freshness(expiry string, now time.Time) string {
	date, err := time.ParseInLocation(inventory.ExpiryLayout, expiry, now.Location())
	if err != nil {
		return stateUndated
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch {
	case date.Before(today):
		return stateExpired
	case date.Sub(today) <= expiringWindow:
		return stateExpiring
	default:
		return stateFresh
	}
}

// expiryLabel shortens the no-expiry fallback to fit the column.
func expiryLabel(expiry string) string {
	if expiry == inventory.NoExpiry {
		return "none"
	}
	return expiry
}

// renderTitledBox renders content in a box with the title embedded in the top border.
// When focused is true, uses BorderFocus color and FocusBg background.
func (m Model) renderTitledBox(title, content string, width, height int, focused bool) string {
	var borderColorStr, bgColorStr string
	if focused {
		borderColorStr = m.theme.BorderFocus
		bgColorStr = m.theme.FocusBg
	} else {
		borderColorStr = m.theme.Border
		bgColorStr = m.theme.SurfaceAlt
	}
	bg := NewBgStyle(bgColorStr)
	borderStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(borderColorStr))
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.theme.Text))

	innerWidth := max(width-2, 0)
	titleLen := lipgloss.Width(title)
	leftPad := max((innerWidth-titleLen-2)/2, 0)
	rightPad := max(innerWidth-titleLen-2-leftPad, 0)

	topBorder := bg.Render("┌", borderStyle) +
		bg.Render(strings.Repeat("─", leftPad), borderStyle) +
		bg.Render(" "+title+" ", titleStyle) +
		bg.Render(strings.Repeat("─", rightPad), borderStyle) +
		bg.Render("┐", borderStyle)

	bottomBorder := bg.Render("└", borderStyle) +
		bg.Render(strings.Repeat("─", innerWidth), borderStyle) +
		bg.Render("┘", borderStyle)

	contentStyle := lipgloss.NewStyle().Width(innerWidth).Background(lipgloss.Color(bgColorStr))

	contentLines := strings.Split(content, "\n")
	boxHeight := max(height-2, 0)

	paddedLines := make([]string, 0, boxHeight)
	for i := range boxHeight {
		var line string
		if i < len(contentLines) {
			line = contentLines[i]
		}
		paddedLines = append(paddedLines,
			bg.Render("│", borderStyle)+
				contentStyle.Render(line)+
				bg.Render("│", borderStyle))
	}

	return topBorder + "\n" + strings.Join(paddedLines, "\n") + "\n" + bottomBorder
}
