// Package logtail reads larder's own log file for the in-app Logs view.
//
// # Overview
//
// The application logs JSON lines with zap. This package reads the last N
// lines of that file and turns each record into a single readable line:
//
//	2024-05-01 10:00:00 ERROR [gateway] – fetch inventory failed error="..."
//
// Lines that are not JSON objects are passed through unchanged.
//
// # Reading Log Files
//
// Read keeps a ring buffer of maxLines entries and scans the file once, so
// memory stays O(maxLines) regardless of file size. A missing file is not
// an error; the log may not exist before the first write.
//
// # Design Rationale
//
// No file watching. The UI re-reads on a timer while the Logs view is open.
package logtail
