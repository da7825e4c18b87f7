package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/five82/larder/internal/foodapi"
	"github.com/five82/larder/internal/inventory"
)

func TestCalculateBackoff(t *testing.T) {
	baseInterval := 30 * time.Second

	tests := []struct {
		name     string
		failures int
		want     time.Duration
	}{
		{"zero failures", 0, 30 * time.Second},
		{"negative failures", -1, 30 * time.Second},
		{"one failure", 1, time.Minute},
		{"two failures", 2, 2 * time.Minute},
		{"three failures", 3, 4 * time.Minute},
		{"four failures capped", 4, 5 * time.Minute}, // Would be 8m, capped to 5m
		{"many failures capped", 40, 5 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calculateBackoff(tt.failures, baseInterval)
			if got != tt.want {
				t.Errorf("calculateBackoff(%d, %v) = %v, want %v", tt.failures, baseInterval, got, tt.want)
			}
		})
	}
}

func TestCalculateBackoff_MaxCap(t *testing.T) {
	baseInterval := 2 * time.Second
	for failures := 0; failures <= 64; failures++ {
		got := calculateBackoff(failures, baseInterval)
		if got > maxBackoff {
			t.Errorf("calculateBackoff(%d, %v) = %v, exceeds maxBackoff %v", failures, baseInterval, got, maxBackoff)
		}
	}
}

// countingAPI answers every call immediately and counts inventory fetches.
type countingAPI struct {
	lists atomic.Int32
	err   error
	items []foodapi.Item
}

func (c *countingAPI) ListInventory(context.Context) ([]foodapi.Item, error) {
	c.lists.Add(1)
	return c.items, c.err
}

func (c *countingAPI) AddItem(_ context.Context, p foodapi.Product) (*foodapi.Item, error) {
	return &foodapi.Item{Name: p.Name}, nil
}

func (c *countingAPI) DeleteItem(context.Context, string) error { return nil }

func (c *countingAPI) DeleteAll(context.Context) error { return nil }

func (c *countingAPI) UpdateExpiry(_ context.Context, id, date string) (*foodapi.Item, error) {
	return &foodapi.Item{ID: id, ExpiryDate: date}, nil
}

func TestPollOnce_SkipsWhilePending(t *testing.T) {
	api := &countingAPI{items: []foodapi.Item{{ID: "1", Name: "Milk"}}}
	store := &inventory.Store{}
	store.Load(api.items)
	gw := inventory.NewGateway(api, store)

	if err := gw.EditExpiry("1", "2024-02-02"); err != nil {
		t.Fatalf("EditExpiry returned error: %v", err)
	}
	skipped, err := pollOnce(context.Background(), gw)
	if !skipped || err != nil {
		t.Fatalf("pollOnce = %v, %v, want skipped", skipped, err)
	}
	if n := api.lists.Load(); n != 0 {
		t.Fatalf("ListInventory called %d times, want 0", n)
	}
	if e, _ := store.Entry("1"); e.Item.ExpiryDate != "2024-02-02" {
		t.Fatalf("local edit lost: %q", e.Item.ExpiryDate)
	}

	if err := gw.UpdateExpiry(context.Background(), "1", "2024-02-02"); err != nil {
		t.Fatalf("UpdateExpiry returned error: %v", err)
	}
	skipped, err = pollOnce(context.Background(), gw)
	if skipped || err != nil {
		t.Fatalf("pollOnce = %v, %v, want refresh", skipped, err)
	}
	if n := api.lists.Load(); n != 1 {
		t.Fatalf("ListInventory called %d times, want 1", n)
	}
}

// failingUpdateAPI rejects every expiry update.
type failingUpdateAPI struct {
	countingAPI
}

func (f *failingUpdateAPI) UpdateExpiry(context.Context, string, string) (*foodapi.Item, error) {
	return nil, errors.New("service unavailable")
}

func TestPollOnce_RefreshesAfterFailedUpdate(t *testing.T) {
	api := &failingUpdateAPI{countingAPI{items: []foodapi.Item{{ID: "1", Name: "Milk"}}}}
	store := &inventory.Store{}
	store.Load(api.items)
	gw := inventory.NewGateway(api, store)

	_ = gw.EditExpiry("1", "2024-02-02")
	if err := gw.UpdateExpiry(context.Background(), "1", "2024-02-02"); !errors.Is(err, inventory.ErrUpdate) {
		t.Fatalf("UpdateExpiry error = %v, want ErrUpdate", err)
	}
	if e, _ := store.Entry("1"); e.Sync != inventory.SyncUnsynced {
		t.Fatalf("Sync = %v, want unsynced", e.Sync)
	}

	skipped, err := pollOnce(context.Background(), gw)
	if skipped || err != nil {
		t.Fatalf("pollOnce = %v, %v, want refresh", skipped, err)
	}
	if n := api.lists.Load(); n != 1 {
		t.Fatalf("ListInventory called %d times, want 1", n)
	}
	if e, _ := store.Entry("1"); e.Sync != inventory.SyncClean || e.Item.ExpiryDate != "" {
		t.Fatalf("entry = %+v, want reconciled with server", e)
	}
}

func TestPollOnce_ReportsFailure(t *testing.T) {
	api := &countingAPI{err: errors.New("connection refused")}
	gw := inventory.NewGateway(api, &inventory.Store{})

	_, err := pollOnce(context.Background(), gw)
	if !errors.Is(err, inventory.ErrFetch) {
		t.Fatalf("pollOnce error = %v, want ErrFetch", err)
	}
}

func TestStartPoller_RefreshesUntilCancelled(t *testing.T) {
	api := &countingAPI{items: []foodapi.Item{{ID: "1", Name: "Milk"}}}
	store := &inventory.Store{}
	gw := inventory.NewGateway(api, store)

	ctx, cancel := context.WithCancel(context.Background())
	StartPoller(ctx, gw, 5*time.Millisecond, nil)

	deadline := time.Now().Add(2 * time.Second)
	for api.lists.Load() < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("poller made %d refreshes, want >= 2", api.lists.Load())
		}
		time.Sleep(time.Millisecond)
	}
	cancel()

	if store.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", store.Len())
	}
}
