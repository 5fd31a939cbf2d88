package ui

import "strings"

// FieldFunc extracts a named field for searching or filtering.
type FieldFunc[T any] func(item T) string

// SearchFilter narrows a fixed set of items by a free-text query over some
// fields and by exact-match dropdown filters over others. Every Apply starts
// again from the full set.
type SearchFilter[T any] struct {
	items    []T
	search   []FieldFunc[T]
	filters  map[string]FieldFunc[T]
	onChange func([]T)
	result   []T
}

// NewSearchFilter builds a filter over items.
func NewSearchFilter[T any](items []T, search []FieldFunc[T], filters map[string]FieldFunc[T]) *SearchFilter[T] {
	if filters == nil {
		filters = map[string]FieldFunc[T]{}
	}
	return &SearchFilter[T]{
		items:   items,
		search:  search,
		filters: filters,
		result:  append([]T(nil), items...),
	}
}

// OnFilterChange registers the callback run after every Apply.
func (f *SearchFilter[T]) OnFilterChange(fn func([]T)) {
	f.onChange = fn
}

// Apply recomputes the result. A blank query matches everything; an empty
// filter value is ignored; filter keys without a configured field are ignored.
func (f *SearchFilter[T]) Apply(query string, filters map[string]string) []T {
	query = strings.ToLower(strings.TrimSpace(query))
	out := make([]T, 0, len(f.items))
	for _, item := range f.items {
		if query != "" && !f.matches(item, query) {
			continue
		}
		if !f.passes(item, filters) {
			continue
		}
		out = append(out, item)
	}
	f.result = out
	if f.onChange != nil {
		f.onChange(out)
	}
	return out
}

// Result returns the last computed result.
func (f *SearchFilter[T]) Result() []T { return f.result }

// Options returns the distinct non-empty values of a filter field, in first-seen order.
func (f *SearchFilter[T]) Options(key string) []string {
	field, ok := f.filters[key]
	if !ok {
		return nil
	}
	seen := map[string]bool{}
	var out []string
	for _, item := range f.items {
		v := field(item)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

func (f *SearchFilter[T]) matches(item T, query string) bool {
	for _, field := range f.search {
		if strings.Contains(strings.ToLower(field(item)), query) {
			return true
		}
	}
	return false
}

func (f *SearchFilter[T]) passes(item T, filters map[string]string) bool {
	for key, want := range filters {
		if want == "" {
			continue
		}
		field, ok := f.filters[key]
		if !ok {
			continue
		}
		if field(item) != want {
			return false
		}
	}
	return true
}
