// Package app wires larder together.
//
// # Overview
//
// This is the composition root: it loads configuration, builds the logger,
// the API client, the inventory Store and Gateway, and then hands control
// to the TUI or, in export mode, writes a CSV and returns.
//
// # Components
//
//   - app.go: Run (interactive) and Export (one-shot)
//   - logger.go: JSON zap logger writing to the configured log file
//   - poller.go: background refresh with exponential backoff
//
// # Data Flow
//
//	┌──────────────┐
//	│   Run()      │
//	└──────┬───────┘
//	       ├─────> config.Load()          TOML + .env + environment
//	       ├─────> newLogger()            zap, JSON to log_file
//	       ├─────> foodapi.NewClient()    HTTP client
//	       ├─────> inventory.NewGateway() Store + Gateway
//	       ├─────> prefs.Load()           theme, saved sort
//	       ├─────> Gateway.FetchAll()     first load
//	       ├─────> StartPoller()          background refresh
//	       └─────> ui.Run()               TUI (blocks)
//
// # Polling Behavior
//
// The poller calls Gateway.FetchAll every refresh interval. It skips a tick
// while the Store has unconfirmed local edits, and after consecutive
// failures it doubles the wait up to five minutes. A zero interval disables
// it; the user can still refresh by hand.
//
// # Error Handling
//
// Only setup errors are returned from Run: an unreadable config file, an
// invalid API URL, or a log file that cannot be opened. Everything after
// that is recorded in the Store and shown in the UI.
package app
