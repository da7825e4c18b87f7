package inventory

import (
	"iter"
	"strings"
)

// Display fallbacks for optional fields.
const (
	NoBrand          = "No brand available"
	NoExpiry         = "No expiry date available"
	PlaceholderImage = "https://st4.depositphotos.com/14953852/24787/v/450/depositphotos_247872612-stock-illustration-no-image-available-icon-vector.jpg"
)

// Row is a display-ready inventory entry.
type Row struct {
	ID          string
	Name        string
	Brand       string
	Quantity    string
	Count       int
	Expiry      string
	Ingredients string
	Categories  string
	ImageURL    string
	SourceURL   string
	Sync        SyncState
	SyncErr     error
}

// Project applies display fallbacks to e. The entry is not modified.
func Project(e Entry) Row {
	it := e.Item
	return Row{
		ID:          it.ID,
		Name:        it.Name,
		Brand:       fallback(it.Brands, NoBrand),
		Quantity:    it.Quantity,
		Count:       it.Count,
		Expiry:      fallback(it.ExpiryDate, NoExpiry),
		Ingredients: it.Ingredients,
		Categories:  it.Categories,
		ImageURL:    fallback(it.ImageURL, PlaceholderImage),
		SourceURL:   it.URL,
		Sync:        e.Sync,
		SyncErr:     e.SyncErr,
	}
}

// Rows yields the projection of entries in order. The sequence can be
// ranged over any number of times.
func Rows(entries []Entry) iter.Seq[Row] {
	return func(yield func(Row) bool) {
		for _, e := range entries {
			if !yield(Project(e)) {
				return
			}
		}
	}
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return value
}
