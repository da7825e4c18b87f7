// Package inventory owns the local inventory state and keeps it in step
// with the remote API.
//
// # Components
//
//   - store.go: Store, the ordered collection plus sort configuration and
//     error state. The only mutable state in the client.
//   - gateway.go: Gateway, which calls the remote API and reconciles each
//     outcome into the Store.
//   - view.go: Rows/Project, pure display projection with fallbacks.
//   - sort.go: sort keys and comparators.
//   - errors.go: error taxonomy and Message for user-facing text.
//
// # Data Flow
//
//	Gateway.FetchAll ──> Store.Load ──> Store.Snapshot ──> Rows ──> UI / export
//	                        ▲
//	UI edits ───────────────┤  EditExpiry (optimistic, local only)
//	UI blur ──> Gateway.UpdateExpiry ──> ConfirmSync | FailSync
//	UI delete ─> Gateway.DeleteOne / DeleteAll ──> RemoveLocal / Clear
//
// # Edit Reconciliation
//
// Only the expiry date may run ahead of the server. Each item moves
// through
//
//	Clean ──edit──> Dirty ──blur──> Syncing ──ok──> Clean
//	                                   └──fail──> Unsynced (value kept)
//
// A failed update never rolls back the local value; the row is flagged
// and the user can blur again to retry. Updates for one item are sent one
// at a time and only the newest request's outcome is applied, so the
// final state never depends on network timing.
//
// # Ordering
//
// SortBy toggles direction on the active key and resets to ascending on a
// new key. Sorting is stable. Empty values are the lowest value: first when
// ascending, last when descending. Expiry dates compare chronologically,
// with unparseable dates between empty and valid ones.
//
// # Concurrency Model
//
// The Store uses a readers-writer lock. Gateway calls run in background
// goroutines started by the UI; the lock is never held during network I/O.
package inventory
