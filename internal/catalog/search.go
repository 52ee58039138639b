package catalog

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/GlaceYT/E-Canteen/internal/model"
)

// SortOrder orders search results by base price.
type SortOrder string

const (
	SortNone SortOrder = ""
	SortLow  SortOrder = "low"
	SortHigh SortOrder = "high"
)

// ParseSortOrder accepts "", "low" or "high".
func ParseSortOrder(s string) (SortOrder, error) {
	switch SortOrder(strings.ToLower(strings.TrimSpace(s))) {
	case SortNone:
		return SortNone, nil
	case SortLow:
		return SortLow, nil
	case SortHigh:
		return SortHigh, nil
	default:
		return SortNone, fmt.Errorf("unknown sort order %q (want low or high)", s)
	}
}

// Filter narrows a menu listing.
//
// Veg and NonVeg are toggles: setting exactly one keeps only that kind,
// setting both or neither keeps everything.
type Filter struct {
	Query         string
	Veg           bool
	NonVeg        bool
	Sort          SortOrder
	AvailableOnly bool
}

// Search applies f to items and returns a new slice. Catalog order is kept
// unless a sort is requested; equal prices keep catalog order.
func Search(items []model.MenuItem, f Filter) []model.MenuItem {
	query := foldString(strings.TrimSpace(f.Query))

	out := make([]model.MenuItem, 0, len(items))
	for _, it := range items {
		if f.AvailableOnly && !it.Available {
			continue
		}
		if f.Veg != f.NonVeg {
			if f.Veg && !it.Veg {
				continue
			}
			if f.NonVeg && it.Veg {
				continue
			}
		}
		if query != "" && !strings.Contains(foldString(it.Name), query) {
			continue
		}
		out = append(out, it)
	}

	switch f.Sort {
	case SortLow:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price.LessThan(out[j].Price) })
	case SortHigh:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price.GreaterThan(out[j].Price) })
	}
	return out
}

// foldString maps s to a caseless NFC form for substring matching.
func foldString(s string) string {
	return norm.NFC.String(cases.Fold().String(s))
}
