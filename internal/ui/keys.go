package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	Escape     key.Binding

	// View switching
	ViewInventory key.Binding
	ViewSearch    key.Binding
	ViewLogs      key.Binding

	// Inventory actions
	SortName     key.Binding
	SortBrand    key.Binding
	SortQuantity key.Binding
	SortCount    key.Binding
	SortExpiry   key.Binding
	EditExpiry   key.Binding
	Delete       key.Binding
	DeleteAll    key.Binding
	Export       key.Binding
	Refresh      key.Binding

	// Search actions
	Add key.Binding

	// Navigation
	Up           key.Binding
	Down         key.Binding
	Top          key.Binding
	Bottom       key.Binding
	HalfPageUp   key.Binding
	HalfPageDown key.Binding

	// Logs actions
	ToggleFollow key.Binding

	// Input
	Confirm key.Binding
	Yes     key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Back"),
		),

		ViewInventory: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "Inventory"),
		),
		ViewSearch: key.NewBinding(
			key.WithKeys("s", "/"),
			key.WithHelp("s", "Search catalog"),
		),
		ViewLogs: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "Logs"),
		),

		SortName: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "Sort by name"),
		),
		SortBrand: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "Sort by brand"),
		),
		SortQuantity: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "Sort by quantity"),
		),
		SortCount: key.NewBinding(
			key.WithKeys("4"),
			key.WithHelp("4", "Sort by amount"),
		),
		SortExpiry: key.NewBinding(
			key.WithKeys("5"),
			key.WithHelp("5", "Sort by expiry"),
		),
		EditExpiry: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "Edit expiry date"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "Delete item"),
		),
		DeleteAll: key.NewBinding(
			key.WithKeys("D"),
			key.WithHelp("D", "Delete all"),
		),
		Export: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "Export CSV"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Refresh"),
		),

		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "Add to inventory"),
		),

		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Move down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "Go to top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "Go to bottom"),
		),
		HalfPageUp: key.NewBinding(
			key.WithKeys("ctrl+u"),
			key.WithHelp("ctrl+u", "Half page up"),
		),
		HalfPageDown: key.NewBinding(
			key.WithKeys("ctrl+d"),
			key.WithHelp("ctrl+d", "Half page down"),
		),

		ToggleFollow: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("Space", "Toggle follow mode"),
		),

		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Confirm"),
		),
		Yes: key.NewBinding(
			key.WithKeys("y", "Y"),
			key.WithHelp("y", "Yes"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.ViewInventory, k.ViewSearch, k.ViewLogs, k.Escape},
		{k.Up, k.Down, k.Top, k.Bottom, k.HalfPageDown, k.HalfPageUp},
		{k.SortName, k.SortBrand, k.SortQuantity, k.SortCount, k.SortExpiry},
		{k.EditExpiry, k.Delete, k.DeleteAll, k.Export, k.Refresh},
		{k.Add},
		{k.ToggleFollow},
		{k.CycleTheme, k.Help, k.Quit},
	}
}
