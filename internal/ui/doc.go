// Package ui provides the Bubble Tea terminal interface for larder.
//
// # Package Structure
//
//   - app.go: Model, Init/Update/View, polling tick and Run
//   - actions.go: commands that call the Gateway and their result messages
//   - inventory.go: inventory table, sorting, expiry editing
//   - search.go: catalog search and add
//   - logs.go: tail of the application log
//   - header.go: status bar, command bar, status line
//   - help.go, keys.go: key bindings and the help overlay
//   - theme.go, style_helpers.go: colors and background-safe rendering
//
// # Views
//
//   - Inventory: every item with Name, Brand, Quantity, Amount and Expiry
//   - Search: query the product catalog and add results to the inventory
//   - Logs: the JSON log file rendered through logtail
//
// # Data Flow
//
// The Model never owns inventory data. It reads inventory.Store snapshots on
// every tick and right after local changes, and it performs remote work
// through tea.Cmd functions that call the Gateway off the update loop.
// Their outcomes come back as messages and only affect transient UI state:
// the error line and the success banner.
//
// # Expiry Editing
//
// Pressing e opens an input for the selected item. Each keystroke is
// applied to the Store as a local edit, so the row shows the new value and
// a pending marker immediately. enter or esc sends the final value. When a
// later edit for the same item overtakes a request, the stale outcome is
// dropped silently.
package ui
