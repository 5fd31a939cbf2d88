package ui

import "strconv"

const maxVisiblePages = 5

// Ellipsis marks a gap in the page list.
const Ellipsis = "..."

// PageLink is one entry of the rendered page list.
type PageLink struct {
	Label   string
	Page    int
	Current bool
	Gap     bool
}

// Pagination tracks the current page of a list. Pages are 1-based.
type Pagination struct {
	TotalItems int
	PageSize   int
	Current    int

	onChange func(page int)
}

// NewPagination starts on page 1. A non-positive page size defaults to 10.
func NewPagination(totalItems, pageSize int) *Pagination {
	if pageSize <= 0 {
		pageSize = 10
	}
	if totalItems < 0 {
		totalItems = 0
	}
	return &Pagination{TotalItems: totalItems, PageSize: pageSize, Current: 1}
}

// OnPageChange registers a callback run after every GoToPage.
func (p *Pagination) OnPageChange(fn func(page int)) {
	p.onChange = fn
}

// TotalPages is ceil(TotalItems / PageSize).
func (p *Pagination) TotalPages() int {
	return (p.TotalItems + p.PageSize - 1) / p.PageSize
}

// Visible reports whether controls should render at all.
func (p *Pagination) Visible() bool {
	return p.TotalPages() > 1
}

// HasPrev reports whether a previous page exists.
func (p *Pagination) HasPrev() bool { return p.Current > 1 }

// HasNext reports whether a next page exists.
func (p *Pagination) HasNext() bool { return p.Current < p.TotalPages() }

// GoToPage accepts "prev", "next", "..." or a page number. prev on the first
// page and next on the last are no-ops; numbers are clamped into range.
func (p *Pagination) GoToPage(page string) int {
	switch page {
	case "prev":
		if p.HasPrev() {
			p.Current--
		}
	case "next":
		if p.HasNext() {
			p.Current++
		}
	case Ellipsis, "":
	default:
		if n, err := strconv.Atoi(page); err == nil {
			p.Current = p.clamp(n)
		}
	}
	if p.onChange != nil {
		p.onChange(p.Current)
	}
	return p.Current
}

// SetPage jumps to n without running the callback.
func (p *Pagination) SetPage(n int) {
	p.Current = p.clamp(n)
}

func (p *Pagination) clamp(n int) int {
	total := p.TotalPages()
	if n > total {
		n = total
	}
	if n < 1 {
		n = 1
	}
	return n
}

// Pages lists the page links. With more than five pages the list keeps the
// first, the last and the neighbours of the current page.
func (p *Pagination) Pages() []PageLink {
	total := p.TotalPages()
	links := []PageLink{}
	add := func(n int) {
		links = append(links, PageLink{Label: strconv.Itoa(n), Page: n, Current: n == p.Current})
	}
	if total <= maxVisiblePages {
		for i := 1; i <= total; i++ {
			add(i)
		}
		return links
	}

	add(1)
	start := max(2, p.Current-1)
	end := min(total-1, p.Current+1)
	if start > 2 {
		links = append(links, PageLink{Label: Ellipsis, Gap: true})
	}
	for i := start; i <= end; i++ {
		add(i)
	}
	if end < total-1 {
		links = append(links, PageLink{Label: Ellipsis, Gap: true})
	}
	add(total)
	return links
}

// Bounds returns the [from, to) slice indices of the current page.
func (p *Pagination) Bounds() (int, int) {
	from := (p.Current - 1) * p.PageSize
	if from > p.TotalItems {
		from = p.TotalItems
	}
	to := from + p.PageSize
	if to > p.TotalItems {
		to = p.TotalItems
	}
	return from, to
}

// Paginate returns the current page of items.
func Paginate[T any](p *Pagination, items []T) []T {
	from, to := p.Bounds()
	if to > len(items) {
		to = len(items)
	}
	if from > to {
		from = to
	}
	return items[from:to]
}
