package ui

import (
	"sort"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortOrder names a list ordering offered on public pages.
type SortOrder string

const (
	SortNewest   SortOrder = "newest"
	SortOldest   SortOrder = "oldest"
	SortNameAsc  SortOrder = "name-asc"
	SortNameDesc SortOrder = "name-desc"
	// SortAlpha is the gallery's label for SortNameAsc.
	SortAlpha SortOrder = "a-z"
)

// ParseSortOrder maps a query value to an order, defaulting to newest.
func ParseSortOrder(raw string) SortOrder {
	switch o := SortOrder(raw); o {
	case SortNewest, SortOldest, SortNameAsc, SortNameDesc:
		return o
	case SortAlpha:
		return SortNameAsc
	default:
		return SortNewest
	}
}

// SortBy orders items in place by created time or name. Names are compared
// with Arabic collation so that mixed Arabic and Latin titles sort sensibly.
func SortBy[T any](items []T, order SortOrder, created func(T) time.Time, name func(T) string) {
	col := collate.New(language.Arabic, collate.IgnoreCase)
	sort.SliceStable(items, func(i, j int) bool {
		switch order {
		case SortOldest:
			return created(items[i]).Before(created(items[j]))
		case SortNameAsc, SortAlpha:
			return col.CompareString(name(items[i]), name(items[j])) < 0
		case SortNameDesc:
			return col.CompareString(name(items[i]), name(items[j])) > 0
		default:
			return created(items[i]).After(created(items[j]))
		}
	})
}
