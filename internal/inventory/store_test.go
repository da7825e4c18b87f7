package inventory

import (
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/five82/larder/internal/foodapi"
)

func sampleItems() []foodapi.Item {
	return []foodapi.Item{
		{ID: "1", Name: "Milk", Brands: "Acme", Quantity: "1L", Count: 2},
		{ID: "2", Name: "Bread", Brands: "Acme", Quantity: "500g", Count: 1, ExpiryDate: "2024-01-01"},
	}
}

func names(s *Store) []string {
	snap := s.Snapshot()
	out := make([]string, 0, len(snap.Entries))
	for _, e := range snap.Entries {
		out = append(out, e.Item.Name)
	}
	return out
}

func ids(snap Snapshot) []string {
	out := make([]string, 0, len(snap.Entries))
	for _, e := range snap.Entries {
		out = append(out, e.Item.ID)
	}
	return out
}

func TestStore_SortByNameToggles(t *testing.T) {
	var s Store
	s.Load(sampleItems())

	if err := s.SortBy(KeyName); err != nil {
		t.Fatalf("SortBy returned error: %v", err)
	}
	if got := names(&s); !slices.Equal(got, []string{"Bread", "Milk"}) {
		t.Fatalf("after first sort = %v, want [Bread Milk]", got)
	}
	if cfg := s.Sort(); cfg.Key != KeyName || cfg.Direction != Ascending {
		t.Fatalf("Sort() = %+v, want name asc", cfg)
	}

	if err := s.SortBy(KeyName); err != nil {
		t.Fatalf("SortBy returned error: %v", err)
	}
	if got := names(&s); !slices.Equal(got, []string{"Milk", "Bread"}) {
		t.Fatalf("after second sort = %v, want [Milk Bread]", got)
	}
	if cfg := s.Sort(); cfg.Direction != Descending {
		t.Fatalf("Sort().Direction = %v, want desc", cfg.Direction)
	}
}

func TestStore_SortByNewKeyResetsAscending(t *testing.T) {
	var s Store
	s.Load(sampleItems())

	_ = s.SortBy(KeyName)
	_ = s.SortBy(KeyName) // desc
	if err := s.SortBy(KeyCount); err != nil {
		t.Fatalf("SortBy returned error: %v", err)
	}
	cfg := s.Sort()
	if cfg.Key != KeyCount || cfg.Direction != Ascending {
		t.Fatalf("Sort() = %+v, want count asc", cfg)
	}
	if got := names(&s); !slices.Equal(got, []string{"Bread", "Milk"}) {
		t.Fatalf("sorted by count = %v, want [Bread Milk]", got)
	}
}

func TestStore_SortTwiceIsReversePermutation(t *testing.T) {
	items := []foodapi.Item{
		{ID: "a", Name: "Cheese", Count: 3},
		{ID: "b", Name: "Apples", Count: 1},
		{ID: "c", Name: "Eggs", Count: 12},
		{ID: "d", Name: "Butter", Count: 2},
	}
	var s Store
	s.Load(items)

	_ = s.SortBy(KeyName)
	asc := ids(s.Snapshot())
	_ = s.SortBy(KeyName)
	desc := ids(s.Snapshot())

	reversed := slices.Clone(asc)
	slices.Reverse(reversed)
	if !slices.Equal(desc, reversed) {
		t.Fatalf("desc = %v, want reverse of asc %v", desc, asc)
	}

	sortedAsc := slices.Sorted(slices.Values(asc))
	if !slices.Equal(sortedAsc, []string{"a", "b", "c", "d"}) {
		t.Fatalf("sorting changed the item set: %v", asc)
	}
}

func TestStore_SortIsStable(t *testing.T) {
	items := []foodapi.Item{
		{ID: "1", Name: "Milk", Brands: "Acme"},
		{ID: "2", Name: "Bread", Brands: "Bakery"},
		{ID: "3", Name: "Butter", Brands: "Acme"},
		{ID: "4", Name: "Jam", Brands: "Acme"},
	}
	var s Store
	s.Load(items)

	for i := 0; i < 4; i++ {
		_ = s.SortBy(KeyBrand)
		snap := s.Snapshot()
		var acme []string
		for _, e := range snap.Entries {
			if e.Item.Brands == "Acme" {
				acme = append(acme, e.Item.ID)
			}
		}
		if !slices.Equal(acme, []string{"1", "3", "4"}) {
			t.Fatalf("click %d: Acme order = %v, want [1 3 4]", i+1, acme)
		}
	}
}

func TestStore_EmptyValuesSortLowest(t *testing.T) {
	items := []foodapi.Item{
		{ID: "dated", ExpiryDate: "2024-03-01"},
		{ID: "none"},
		{ID: "earlier", ExpiryDate: "2023-12-31"},
		{ID: "junk", ExpiryDate: "soon"},
	}
	var s Store
	s.Load(items)

	_ = s.SortBy(KeyExpiry)
	if got := ids(s.Snapshot()); !slices.Equal(got, []string{"none", "junk", "earlier", "dated"}) {
		t.Fatalf("expiry asc = %v, want [none junk earlier dated]", got)
	}
	_ = s.SortBy(KeyExpiry)
	if got := ids(s.Snapshot()); !slices.Equal(got, []string{"dated", "earlier", "junk", "none"}) {
		t.Fatalf("expiry desc = %v, want [dated earlier junk none]", got)
	}
}

func TestStore_SortByUnknownKey(t *testing.T) {
	var s Store
	s.Load(sampleItems())

	err := s.SortBy("colour")
	if !errors.Is(err, ErrUnknownSortKey) {
		t.Fatalf("SortBy error = %v, want ErrUnknownSortKey", err)
	}
	if cfg := s.Sort(); cfg.Key != KeyNone {
		t.Fatalf("Sort() = %+v, want unchanged", cfg)
	}
}

func TestStore_LoadReappliesSortAndClearsError(t *testing.T) {
	var s Store
	s.Load(sampleItems())
	_ = s.SortBy(KeyName)
	_ = s.SortBy(KeyName) // desc
	s.Fail(errors.New("boom"))

	dropped := s.Load([]foodapi.Item{
		{ID: "3", Name: "Apples"},
		{ID: "4", Name: "Yoghurt"},
		{ID: "4", Name: "Duplicate"},
	})
	if dropped != 1 {
		t.Fatalf("Load dropped %d items, want 1", dropped)
	}

	snap := s.Snapshot()
	if snap.LastError != nil || snap.ConsecutiveFailures != 0 {
		t.Fatalf("LastError = %v failures = %d, want cleared", snap.LastError, snap.ConsecutiveFailures)
	}
	if got := ids(snap); !slices.Equal(got, []string{"4", "3"}) {
		t.Fatalf("ids = %v, want [4 3] (desc by name, duplicates dropped)", got)
	}
	if snap.Sort.Direction != Descending {
		t.Fatalf("Load toggled direction: %+v", snap.Sort)
	}
}

func TestStore_UpsertLocalTracksDirty(t *testing.T) {
	var s Store
	s.Load(sampleItems())

	date := "2024-02-02"
	if err := s.UpsertLocal("2", Patch{ExpiryDate: &date}); err != nil {
		t.Fatalf("UpsertLocal returned error: %v", err)
	}
	e, ok := s.Entry("2")
	if !ok {
		t.Fatalf("Entry(2) missing")
	}
	if e.Item.ExpiryDate != date || e.Sync != SyncDirty || e.PersistedExpiry != "2024-01-01" {
		t.Fatalf("entry = %+v, want local %s dirty persisted 2024-01-01", e, date)
	}
	if !s.Pending() {
		t.Fatalf("Pending() = false, want true")
	}

	err := s.UpsertLocal("missing", Patch{ExpiryDate: &date})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("UpsertLocal(missing) error = %v, want ErrNotFound", err)
	}
}

func TestStore_SyncLifecycle(t *testing.T) {
	var s Store
	s.Load(sampleItems())

	date := "2024-02-02"
	_ = s.UpsertLocal("2", Patch{ExpiryDate: &date})
	gen, err := s.BeginSync("2")
	if err != nil {
		t.Fatalf("BeginSync returned error: %v", err)
	}
	if e, _ := s.Entry("2"); e.Sync != SyncSyncing {
		t.Fatalf("Sync = %v, want syncing", e.Sync)
	}

	if err := s.ConfirmSync("2", gen, date); err != nil {
		t.Fatalf("ConfirmSync returned error: %v", err)
	}
	e, _ := s.Entry("2")
	if e.Sync != SyncClean || e.PersistedExpiry != date {
		t.Fatalf("entry = %+v, want clean persisted %s", e, date)
	}
	if s.Pending() {
		t.Fatalf("Pending() = true, want false")
	}

	// A failure keeps the local value.
	later := "2024-03-03"
	_ = s.UpsertLocal("2", Patch{ExpiryDate: &later})
	gen, _ = s.BeginSync("2")
	_ = s.FailSync("2", gen, errors.New("offline"))
	e, _ = s.Entry("2")
	if e.Sync != SyncUnsynced || e.Item.ExpiryDate != later || e.SyncErr == nil {
		t.Fatalf("entry = %+v, want unsynced with local %s", e, later)
	}
}

func TestStore_ConfirmAfterNewerEditStaysDirty(t *testing.T) {
	var s Store
	s.Load(sampleItems())

	first := "2024-02-02"
	_ = s.UpsertLocal("2", Patch{ExpiryDate: &first})
	gen, _ := s.BeginSync("2")

	second := "2024-02-20"
	_ = s.UpsertLocal("2", Patch{ExpiryDate: &second})
	_ = s.ConfirmSync("2", gen, first)

	e, _ := s.Entry("2")
	if e.Sync != SyncDirty || e.Item.ExpiryDate != second || e.PersistedExpiry != first {
		t.Fatalf("entry = %+v, want dirty local %s persisted %s", e, second, first)
	}
}

func TestStore_ReloadDuringSync(t *testing.T) {
	date := "2024-02-02"
	reloaded := []foodapi.Item{
		{ID: "1", Name: "Milk", Brands: "Acme", Quantity: "1L", Count: 2},
		{ID: "2", Name: "Bread", Brands: "Acme", Quantity: "500g", Count: 1, ExpiryDate: date},
	}

	tests := []struct {
		name   string
		finish func(s *Store, gen uint64)
	}{
		{"confirmed", func(s *Store, gen uint64) { _ = s.ConfirmSync("2", gen, date) }},
		{"failed", func(s *Store, gen uint64) { _ = s.FailSync("2", gen, errors.New("offline")) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s Store
			s.Load(sampleItems())
			_ = s.UpsertLocal("2", Patch{ExpiryDate: &date})
			gen, _ := s.BeginSync("2")

			s.Load(reloaded)
			tt.finish(&s, gen)

			e, _ := s.Entry("2")
			if e.Sync != SyncClean || e.Item.ExpiryDate != date || e.PersistedExpiry != date {
				t.Fatalf("entry = %+v, want clean %s as loaded", e, date)
			}
			if s.Pending() {
				t.Fatalf("Pending() = true after reload")
			}
		})
	}
}

func TestStore_UnsyncedIsNotPending(t *testing.T) {
	var s Store
	s.Load(sampleItems())

	date := "2024-02-02"
	_ = s.UpsertLocal("2", Patch{ExpiryDate: &date})
	gen, _ := s.BeginSync("2")
	if !s.Pending() {
		t.Fatalf("Pending() = false while syncing")
	}
	_ = s.FailSync("2", gen, errors.New("offline"))

	if e, _ := s.Entry("2"); e.Sync != SyncUnsynced {
		t.Fatalf("Sync = %v, want unsynced", e.Sync)
	}
	if s.Pending() {
		t.Fatalf("Pending() = true for an unsynced item")
	}
}

func TestStore_RemoveLocalAndClear(t *testing.T) {
	var s Store
	s.Load(sampleItems())

	if err := s.RemoveLocal("1"); err != nil {
		t.Fatalf("RemoveLocal returned error: %v", err)
	}
	if got := ids(s.Snapshot()); !slices.Equal(got, []string{"2"}) {
		t.Fatalf("ids = %v, want [2]", got)
	}
	if err := s.RemoveLocal("1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("RemoveLocal twice error = %v, want ErrNotFound", err)
	}

	s.Clear()
	if s.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", s.Len())
	}
}

func TestStore_FailKeepsItemsAndCountsFailures(t *testing.T) {
	var s Store
	s.Load(sampleItems())
	before := time.Now()

	s.Fail(errors.New("fail 1"))
	s.Fail(errors.New("fail 2"))

	snap := s.Snapshot()
	if len(snap.Entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(snap.Entries))
	}
	if snap.LastError == nil || snap.LastError.Error() != "fail 2" {
		t.Fatalf("LastError = %v, want fail 2", snap.LastError)
	}
	if !snap.IsOffline() {
		t.Fatalf("IsOffline() = false, want true after 2 failures")
	}
	if snap.LastUpdated.Before(before) {
		t.Fatalf("LastUpdated = %v, want >= %v", snap.LastUpdated, before)
	}

	s.ClearError()
	if snap := s.Snapshot(); snap.LastError != nil || snap.IsOffline() {
		t.Fatalf("after ClearError: %v offline=%v", snap.LastError, snap.IsOffline())
	}
}

func TestStore_SnapshotIsIndependent(t *testing.T) {
	var s Store
	s.Load(sampleItems())

	snap := s.Snapshot()
	snap.Entries[0].Item.Name = "changed"

	if got := s.Snapshot().Entries[0].Item.Name; got == "changed" {
		t.Fatalf("Snapshot should copy entries")
	}
}

func TestStore_SetSortRestoresWithoutToggle(t *testing.T) {
	var s Store
	s.Load(sampleItems())

	if err := s.SetSort(SortConfig{Key: KeyName, Direction: Descending}); err != nil {
		t.Fatalf("SetSort returned error: %v", err)
	}
	if got := names(&s); !slices.Equal(got, []string{"Milk", "Bread"}) {
		t.Fatalf("names = %v, want [Milk Bread]", got)
	}
	if err := s.SetSort(SortConfig{Key: "bogus"}); !errors.Is(err, ErrUnknownSortKey) {
		t.Fatalf("SetSort(bogus) error = %v, want ErrUnknownSortKey", err)
	}
}
