package ui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/five82/larder/internal/config"
	"github.com/five82/larder/internal/foodapi"
	"github.com/five82/larder/internal/inventory"
	"github.com/five82/larder/internal/prefs"
)

// View represents the current active view.
type View int

const (
	ViewInventory View = iota
	ViewSearch
	ViewLogs
)

// Catalog looks up products that can be added to the inventory.
type Catalog interface {
	Search(ctx context.Context, term string) ([]foodapi.Product, error)
}

// Options configures the UI.
type Options struct {
	Context   context.Context
	Gateway   *inventory.Gateway
	Catalog   Catalog
	Config    *config.Config
	Logger    *zap.Logger
	PollTick  time.Duration
	ThemeName string
	PrefsPath string
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	gateway   *inventory.Gateway
	store     *inventory.Store
	catalog   Catalog
	config    *config.Config
	logger    *zap.Logger
	prefsPath string
	pollTick  time.Duration
	keys      keyMap

	// UI state
	theme       Theme
	currentView View
	width       int
	height      int
	ready       bool

	// Data state
	snapshot inventory.Snapshot

	// Inventory state
	selectedRow      int
	editing          bool
	editID           string
	editInput        textinput.Model
	confirmDeleteAll bool

	// Search state
	search searchState

	// Log state
	logViewport viewport.Model
	logState    logState

	// Help overlay
	showHelp bool

	// Transient messages
	notice    string
	noticeSeq int
	errorMsg  string
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	pollTick := opts.PollTick
	if pollTick == 0 {
		pollTick = DefaultUIInterval
	}

	themeName := opts.ThemeName
	if themeName == "" {
		themeName = "Nightfox"
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var store *inventory.Store
	if opts.Gateway != nil {
		store = opts.Gateway.Store()
	}

	edit := textinput.New()
	edit.Placeholder = inventory.ExpiryLayout
	edit.CharLimit = len(inventory.ExpiryLayout)

	m := Model{
		ctx:         ctx,
		gateway:     opts.Gateway,
		store:       store,
		catalog:     opts.Catalog,
		config:      opts.Config,
		logger:      logger,
		prefsPath:   prefsPath,
		pollTick:    pollTick,
		keys:        DefaultKeyMap(),
		theme:       GetTheme(themeName),
		currentView: ViewInventory,
		editInput:   edit,
		search:      newSearchState(),
		logState:    logState{follow: true},
	}
	if store != nil {
		m.snapshot = store.Snapshot()
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnterAltScreen,
		tickCmd(m.pollTick),
	}
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.initLogViewport()
		}
		m.ready = true
		m.updateLogViewport()
		return m, nil

	case tickMsg:
		return m.handleTick()

	case snapshotMsg:
		m.applySnapshot(inventory.Snapshot(msg))
		return m, nil

	case logLinesMsg:
		m.handleLogLines(msg)
		return m, nil

	case actionDoneMsg:
		return m.handleActionDone(msg)

	case searchResultMsg:
		m.handleSearchResult(msg)
		return m, nil

	case addedMsg:
		return m.handleAdded(msg)

	case noticeExpiredMsg:
		if int(msg) == m.noticeSeq {
			m.notice = ""
		}
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	// Text inputs take every key except their own controls.
	if m.editing {
		return m.handleEditKey(msg)
	}
	if m.currentView == ViewSearch && m.search.input.Focused() {
		return m.handleSearchInputKey(msg)
	}

	if m.confirmDeleteAll {
		m.confirmDeleteAll = false
		if key := msg.String(); key == "y" || key == "Y" {
			return m, m.deleteAllCmd()
		}
		return m, nil
	}

	switch {
	case msg.String() == "ctrl+c", msg.String() == "q":
		return m, tea.Quit

	case msg.String() == "?":
		m.showHelp = true
		return m, nil

	case msg.String() == "T":
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.savePrefs()
		m.logState.dirty = true
		m.updateLogViewport()
		return m, nil

	case msg.String() == "i":
		m.currentView = ViewInventory
		return m, nil

	case msg.String() == "l":
		m.currentView = ViewLogs
		return m, m.refreshLogs()

	case msg.String() == "s" && m.currentView != ViewSearch:
		m.currentView = ViewSearch
		cmd := m.search.input.Focus()
		return m, cmd

	case msg.String() == "esc":
		m.currentView = ViewInventory
		m.errorMsg = ""
		return m, nil
	}

	switch m.currentView {
	case ViewInventory:
		return m.handleInventoryKey(msg)
	case ViewSearch:
		return m.handleSearchKey(msg)
	case ViewLogs:
		return m.handleLogsKey(msg)
	}

	return m, nil
}

// handleTick processes the polling tick.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}

	if m.currentView == ViewLogs && m.logState.follow {
		if cmd := m.refreshLogs(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}

	cmds = append(cmds, tickCmd(m.pollTick))

	return m, tea.Batch(cmds...)
}

// applySnapshot stores a fresh snapshot and keeps the selection on the
// same item when it still exists.
func (m *Model) applySnapshot(snap inventory.Snapshot) {
	var selectedID string
	if e, ok := m.selectedEntry(); ok {
		selectedID = e.Item.ID
	}
	m.snapshot = snap
	m.clampSelection(selectedID)
}

// refreshSnapshot reads the store synchronously after a local change.
func (m *Model) refreshSnapshot() {
	if m.store == nil {
		return
	}
	m.applySnapshot(m.store.Snapshot())
}

// savePrefs persists the theme and the active sort.
func (m Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	p := prefs.Prefs{Theme: m.theme.Name}
	if m.store != nil {
		sort := m.store.Sort()
		if sort.Key != inventory.KeyNone {
			p.SortKey = string(sort.Key)
			p.SortDirection = sort.Direction.String()
		}
	}
	if err := prefs.Save(m.prefsPath, p); err != nil {
		m.logger.Warn("save preferences failed", zap.Error(err))
	}
}

// renderMain renders the full UI.
func (m Model) renderMain() string {
	var b strings.Builder

	// Header line 1: logo + status
	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	// Header line 2: command bar
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")

	// Main content
	b.WriteString(m.renderContent())
	b.WriteString("\n")

	// Prompt, error or banner
	b.WriteString(m.renderStatusLine())

	return b.String()
}

// renderContent renders the main content area based on current view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewInventory:
		return m.renderInventory()
	case ViewSearch:
		return m.renderSearch()
	case ViewLogs:
		return m.renderLogs()
	default:
		return ""
	}
}

// Messages

type tickMsg time.Time

type snapshotMsg inventory.Snapshot

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *inventory.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
