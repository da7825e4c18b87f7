package inventory

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/five82/larder/internal/foodapi"
)

// SortKey names a sortable inventory column.
type SortKey string

const (
	KeyNone        SortKey = ""
	KeyName        SortKey = "name"
	KeyBrand       SortKey = "brands"
	KeyQuantity    SortKey = "quantity"
	KeyCount       SortKey = "count"
	KeyExpiry      SortKey = "expiryDate"
	KeyIngredients SortKey = "ingredients"
	KeyCategories  SortKey = "categories"
)

// Direction is the sort order for the active key.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

func (d Direction) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// ParseDirection accepts "asc" or "desc"; anything else is ascending.
func ParseDirection(s string) Direction {
	if strings.EqualFold(strings.TrimSpace(s), "desc") {
		return Descending
	}
	return Ascending
}

// SortConfig is the view-only ordering. It is never sent to the remote API.
type SortConfig struct {
	Key       SortKey
	Direction Direction
}

// next returns the configuration after the user selects key.
func (c SortConfig) next(key SortKey) SortConfig {
	if c.Key == key && c.Direction == Ascending {
		return SortConfig{Key: key, Direction: Descending}
	}
	return SortConfig{Key: key, Direction: Ascending}
}

// ExpiryLayout is the wire format of expiry dates.
const ExpiryLayout = "2006-01-02"

type compareFunc func(a, b foodapi.Item) int

var comparators = map[SortKey]compareFunc{
	KeyName:        func(a, b foodapi.Item) int { return strings.Compare(a.Name, b.Name) },
	KeyBrand:       func(a, b foodapi.Item) int { return strings.Compare(a.Brands, b.Brands) },
	KeyQuantity:    func(a, b foodapi.Item) int { return strings.Compare(a.Quantity, b.Quantity) },
	KeyIngredients: func(a, b foodapi.Item) int { return strings.Compare(a.Ingredients, b.Ingredients) },
	KeyCategories:  func(a, b foodapi.Item) int { return strings.Compare(a.Categories, b.Categories) },
	KeyCount:       func(a, b foodapi.Item) int { return cmp.Compare(a.Count, b.Count) },
	KeyExpiry:      func(a, b foodapi.Item) int { return compareExpiry(a.ExpiryDate, b.ExpiryDate) },
}

// ValidSortKey reports whether key has a comparator.
func ValidSortKey(key SortKey) bool {
	_, ok := comparators[key]
	return ok
}

// compareExpiry orders empty < unparseable (by raw text) < valid dates
// (chronologically).
func compareExpiry(a, b string) int {
	ra, ta := expiryRank(a)
	rb, tb := expiryRank(b)
	if ra != rb {
		return cmp.Compare(ra, rb)
	}
	switch ra {
	case 2:
		return ta.Compare(tb)
	case 1:
		return strings.Compare(a, b)
	default:
		return 0
	}
}

func expiryRank(value string) (int, time.Time) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, time.Time{}
	}
	t, err := time.Parse(ExpiryLayout, value)
	if err != nil {
		return 1, time.Time{}
	}
	return 2, t
}

// sortEntries orders entries in place. Ties keep their relative order.
func sortEntries(entries []*entry, cfg SortConfig) {
	compare, ok := comparators[cfg.Key]
	if !ok {
		return
	}
	slices.SortStableFunc(entries, func(a, b *entry) int {
		c := compare(a.item, b.item)
		if cfg.Direction == Descending {
			return -c
		}
		return c
	})
}
