// Package config loads larder's runtime settings.
//
// # Resolution Order
//
//  1. Built-in defaults
//  2. The TOML file (explicit path, or ~/.config/larder/config.toml)
//  3. A .env file in the working directory
//  4. The process environment
//
// A missing config file is not an error. Empty values in the file keep the
// default.
//
// # Default Values
//
//   - API URL: http://localhost:5000/api/food
//   - Request timeout: 5s
//   - Refresh interval: 30s (0s disables background refresh)
//   - Export directory: ~
//   - Log file: ~/.local/state/larder/larder.log
//   - Log level: info
//
// # TOML Format
//
//	api_url = "http://pantry.local:5000/api/food"
//	request_timeout = "5s"
//	refresh_interval = "30s"
//	export_dir = "~/Documents"
//	log_file = "~/.local/state/larder/larder.log"
//	log_level = "info"
//
// # Environment
//
//   - LARDER_API_URL
//   - LARDER_LOG_LEVEL
//   - LARDER_EXPORT_DIR
//
// Paths starting with ~ are expanded to the home directory and made
// absolute.
package config
