package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/five82/larder/internal/foodapi"
	"github.com/five82/larder/internal/inventory"
)

// Shown when the catalog lookup fails.
const searchFailedMessage = "Error fetching products, please try again!"

// searchState holds the catalog search view state.
type searchState struct {
	input    textinput.Model
	query    string
	results  []foodapi.Product
	selected int
	loading  bool
	seq      int
	err      string
}

type searchResultMsg struct {
	seq      int
	products []foodapi.Product
	err      error
}

func newSearchState() searchState {
	ti := textinput.New()
	ti.Placeholder = "Search products..."
	ti.CharLimit = 100
	ti.Prompt = "/ "
	return searchState{input: ti}
}

func searchCmd(ctx context.Context, catalog Catalog, seq int, term string) tea.Cmd {
	return func() tea.Msg {
		products, err := catalog.Search(ctx, term)
		return searchResultMsg{seq: seq, products: products, err: err}
	}
}

// handleSearchInputKey processes keys while the search input has focus.
func (m Model) handleSearchInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		term := strings.TrimSpace(m.search.input.Value())
		if term == "" || m.catalog == nil {
			return m, nil
		}
		m.search.input.Blur()
		m.search.query = term
		m.search.loading = true
		m.search.err = ""
		m.search.seq++
		return m, searchCmd(m.ctx, m.catalog, m.search.seq, term)

	case key.Matches(msg, m.keys.Escape):
		m.search.input.Blur()
		if len(m.search.results) == 0 {
			m.currentView = ViewInventory
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.search.input, cmd = m.search.input.Update(msg)
	return m, cmd
}

// handleSearchKey processes keys for the result list.
func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	count := len(m.search.results)

	switch {
	case key.Matches(msg, m.keys.ViewSearch):
		cmd := m.search.input.Focus()
		return m, cmd
	case key.Matches(msg, m.keys.Down):
		if m.search.selected < count-1 {
			m.search.selected++
		}
	case key.Matches(msg, m.keys.Up):
		if m.search.selected > 0 {
			m.search.selected--
		}
	case key.Matches(msg, m.keys.Top):
		m.search.selected = 0
	case key.Matches(msg, m.keys.Bottom):
		m.search.selected = max(count-1, 0)
	case key.Matches(msg, m.keys.Add):
		if m.search.selected < count {
			return m, m.addCmd(m.search.results[m.search.selected])
		}
	}
	return m, nil
}

func (m *Model) handleSearchResult(msg searchResultMsg) {
	if msg.seq != m.search.seq {
		return
	}
	m.search.loading = false
	m.search.selected = 0
	if msg.err != nil {
		m.logger.Warn("catalog search failed", zap.String("term", m.search.query), zap.Error(msg.err))
		m.search.results = nil
		m.search.err = searchFailedMessage
		return
	}
	m.search.results = msg.products
	m.search.err = ""
}

// renderSearch renders the catalog search view.
func (m Model) renderSearch() string {
	bg := NewBgStyle(m.theme.FocusBg)
	styles := m.theme.Styles()
	contentHeight := m.height - 3
	width := m.width - 2

	lines := []string{
		bg.FillLine(m.search.input.View(), width),
		bg.FillLine("", width),
	}

	switch {
	case m.search.loading:
		lines = append(lines, bg.FillLine(bg.Render("Searching...", styles.WarningText), width))
	case m.search.err != "":
		lines = append(lines, bg.FillLine(bg.Render(m.search.err, styles.DangerText), width))
	case m.search.query == "":
		lines = append(lines, bg.FillLine(bg.Render("Type a product name and press enter", styles.MutedText), width))
	case len(m.search.results) == 0:
		lines = append(lines, bg.FillLine(bg.Render("No products found for "+m.search.query, styles.MutedText), width))
	default:
		visible := max(contentHeight-2-len(lines), 1)
		offset := max(m.search.selected-visible+1, 0)
		end := min(offset+visible, len(m.search.results))
		for i := offset; i < end; i++ {
			lines = append(lines, m.formatProductRow(m.search.results[i], width, i == m.search.selected))
		}
	}

	title := "Catalog"
	if m.search.query != "" && !m.search.loading {
		title = fmt.Sprintf("Catalog: %s (%d)", truncate(m.search.query, 30), len(m.search.results))
	}
	return m.renderTitledBox(title, strings.Join(lines, "\n"), m.width, contentHeight, true)
}

// formatProductRow renders "Name · Brand · Quantity" for one result.
func (m Model) formatProductRow(p foodapi.Product, width int, selected bool) string {
	bgColor := m.theme.FocusBg
	if selected {
		bgColor = m.theme.SelectionBg
	}
	bg := NewBgStyle(bgColor)
	styles := m.theme.Styles()

	text := styles.Text
	muted := styles.MutedText
	if selected {
		text = lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.SelectionText))
		muted = text
	}

	brand := strings.TrimSpace(p.Brands)
	if brand == "" {
		brand = inventory.NoBrand
	}
	parts := []string{bg.Render(truncate(p.Name, width/2), text), bg.Render(truncate(brand, width/4), muted)}
	if q := strings.TrimSpace(p.Quantity); q != "" {
		parts = append(parts, bg.Render(q, muted))
	}
	sep := bg.Space() + bg.Render("·", styles.FaintText) + bg.Space()
	return bg.FillLine(strings.Join(parts, sep), width)
}
