package inventory

import (
	"fmt"
	"sync"
	"time"

	"github.com/five82/larder/internal/foodapi"
)

// SyncState tracks a locally edited field against the remote record.
type SyncState int

const (
	// SyncClean means the local item matches the last confirmed record.
	SyncClean SyncState = iota
	// SyncDirty means a local edit has not been sent yet.
	SyncDirty
	// SyncSyncing means an update request is in flight.
	SyncSyncing
	// SyncUnsynced means the last update failed; the local value is kept.
	SyncUnsynced
)

func (s SyncState) String() string {
	switch s {
	case SyncDirty:
		return "dirty"
	case SyncSyncing:
		return "syncing"
	case SyncUnsynced:
		return "unsynced"
	default:
		return "clean"
	}
}

// Patch is a partial local update. Nil fields are left untouched.
type Patch struct {
	ExpiryDate *string
}

// Entry is one inventory row as seen by readers of a Snapshot.
type Entry struct {
	Item foodapi.Item
	Sync SyncState
	// SyncErr holds the failure that left the entry Unsynced.
	SyncErr error
	// PersistedExpiry is the last expiry date confirmed by the server.
	PersistedExpiry string
}

// Snapshot represents the latest inventory state available to the UI.
type Snapshot struct {
	Entries             []Entry
	Sort                SortConfig
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int // Number of consecutive failed remote operations
}

// IsOffline returns true when the API has failed several times in a row.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

type entry struct {
	item      foodapi.Item
	sync      SyncState
	syncErr   error
	persisted string
	gen       uint64 // bumped on every local edit
	loaded    uint64 // generation of the Load that created the entry
}

// Store owns the ordered inventory collection, the sort configuration and
// the last error. It is safe for concurrent use.
type Store struct {
	mu          sync.RWMutex
	entries     []*entry
	sort        SortConfig
	lastUpdated time.Time
	lastError   error
	failures    int
	gen         uint64 // store-wide, so generations never repeat across loads
}

// Load replaces the whole collection with items, clears error and pending
// edit state, and re-applies the active sort configuration. Items repeating
// an earlier id are dropped; the number dropped is returned.
func (s *Store) Load(items []foodapi.Item) (dropped int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen++
	seen := make(map[string]struct{}, len(items))
	entries := make([]*entry, 0, len(items))
	for _, it := range items {
		if _, dup := seen[it.ID]; dup {
			dropped++
			continue
		}
		seen[it.ID] = struct{}{}
		entries = append(entries, &entry{item: it, persisted: it.ExpiryDate, gen: s.gen, loaded: s.gen})
	}
	sortEntries(entries, s.sort)

	s.entries = entries
	s.lastError = nil
	s.failures = 0
	s.lastUpdated = time.Now()
	return dropped
}

// UpsertLocal applies patch to the item matching id without a round trip.
func (s *Store) UpsertLocal(id string, patch Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.find(id)
	if e == nil {
		return fmt.Errorf("upsert %q: %w", id, ErrNotFound)
	}
	if patch.ExpiryDate != nil {
		e.item.ExpiryDate = *patch.ExpiryDate
		s.gen++
		e.gen = s.gen
		e.sync = SyncDirty
		e.syncErr = nil
	}
	s.lastUpdated = time.Now()
	return nil
}

// RemoveLocal removes the item matching id.
func (s *Store) RemoveLocal(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, e := range s.entries {
		if e.item.ID == id {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			s.lastUpdated = time.Now()
			return nil
		}
	}
	return fmt.Errorf("remove %q: %w", id, ErrNotFound)
}

// Clear empties the collection.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = nil
	s.lastUpdated = time.Now()
}

// SortBy reorders the collection by key. Selecting the active key toggles
// the direction; any other key becomes active in ascending order.
func (s *Store) SortBy(key SortKey) error {
	if !ValidSortKey(key) {
		return fmt.Errorf("sort by %q: %w", key, ErrUnknownSortKey)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sort = s.sort.next(key)
	sortEntries(s.entries, s.sort)
	return nil
}

// SetSort installs cfg as-is, for example when restoring saved preferences.
func (s *Store) SetSort(cfg SortConfig) error {
	if cfg.Key != KeyNone && !ValidSortKey(cfg.Key) {
		return fmt.Errorf("sort by %q: %w", cfg.Key, ErrUnknownSortKey)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sort = cfg
	sortEntries(s.entries, s.sort)
	return nil
}

// Sort returns the active sort configuration.
func (s *Store) Sort() SortConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sort
}

// Fail records err for display. Items are left untouched.
func (s *Store) Fail(err error) {
	if err == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastError = err
	s.lastUpdated = time.Now()
	s.failures++
}

// ClearError resets the error state after a successful operation.
func (s *Store) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastError = nil
	s.failures = 0
}

// BeginSync marks the item as Syncing and returns its current edit
// generation.
func (s *Store) BeginSync(id string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.find(id)
	if e == nil {
		return 0, fmt.Errorf("sync %q: %w", id, ErrNotFound)
	}
	e.sync = SyncSyncing
	e.syncErr = nil
	return e.gen, nil
}

// ConfirmSync records persisted as the server's expiry date. The item
// becomes Clean unless it changed after generation gen: a newer local edit
// keeps it Dirty, and an entry reloaded since already holds the server
// state and is left as loaded.
func (s *Store) ConfirmSync(id string, gen uint64, persisted string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.find(id)
	if e == nil {
		return fmt.Errorf("confirm %q: %w", id, ErrNotFound)
	}
	switch {
	case e.gen == gen:
		e.item.ExpiryDate = persisted
		e.persisted = persisted
		e.sync = SyncClean
		e.syncErr = nil
	case e.loaded > gen:
		return nil
	default:
		e.persisted = persisted
	}
	s.lastUpdated = time.Now()
	return nil
}

// FailSync marks the item Unsynced, keeping the local value. An item
// edited or reloaded after generation gen is left alone.
func (s *Store) FailSync(id string, gen uint64, err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.find(id)
	if e == nil {
		return fmt.Errorf("fail sync %q: %w", id, ErrNotFound)
	}
	if e.gen != gen {
		return nil
	}
	e.sync = SyncUnsynced
	e.syncErr = err
	s.lastUpdated = time.Now()
	return nil
}

// Pending reports whether any item has a local edit that is unsent or in
// flight. Unsynced items do not count: their request already finished.
func (s *Store) Pending() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, e := range s.entries {
		if e.sync == SyncDirty || e.sync == SyncSyncing {
			return true
		}
	}
	return false
}

// Len returns the number of items.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Entry returns a copy of the entry for id.
func (s *Store) Entry(id string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e := s.find(id)
	if e == nil {
		return Entry{}, false
	}
	return e.export(), true
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Sort:                s.sort,
		LastUpdated:         s.lastUpdated,
		LastError:           s.lastError,
		ConsecutiveFailures: s.failures,
	}
	if len(s.entries) > 0 {
		snap.Entries = make([]Entry, len(s.entries))
		for i, e := range s.entries {
			snap.Entries[i] = e.export()
		}
	}
	return snap
}

func (s *Store) find(id string) *entry {
	for _, e := range s.entries {
		if e.item.ID == id {
			return e
		}
	}
	return nil
}

func (e *entry) export() Entry {
	return Entry{
		Item:            e.item,
		Sync:            e.sync,
		SyncErr:         e.syncErr,
		PersistedExpiry: e.persisted,
	}
}
