package ui

import "time"

// LayoutCompactWidth is the terminal width below which the header shortens
// its labels.
const LayoutCompactWidth = 100

// Log display limits.
const (
	// LogBufferLimit is the maximum number of log lines read from the tail
	// of the log file.
	LogBufferLimit = 2000
)

// DefaultUIInterval is the default UI refresh interval.
const DefaultUIInterval = time.Second
