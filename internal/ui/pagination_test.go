package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func labels(links []PageLink) []string {
	out := make([]string, 0, len(links))
	for _, l := range links {
		out = append(out, l.Label)
	}
	return out
}

func TestPaginationEnds(t *testing.T) {
	p := NewPagination(95, 10)
	assert.Equal(t, 10, p.TotalPages())

	assert.Equal(t, 1, p.GoToPage("prev"))
	assert.Equal(t, 10, p.GoToPage("10"))
	assert.Equal(t, 10, p.GoToPage("next"))
	assert.Equal(t, 10, p.GoToPage("..."))
	assert.Equal(t, 10, p.GoToPage("99"))
	assert.Equal(t, 1, p.GoToPage("-3"))
}

func TestPaginationCallback(t *testing.T) {
	p := NewPagination(30, 10)
	var seen []int
	p.OnPageChange(func(page int) { seen = append(seen, page) })
	p.GoToPage("next")
	p.GoToPage("next")
	p.GoToPage("next")
	assert.Equal(t, []int{2, 3, 3}, seen)
}

func TestPaginationPages(t *testing.T) {
	p := NewPagination(40, 10)
	assert.Equal(t, []string{"1", "2", "3", "4"}, labels(p.Pages()))

	p = NewPagination(95, 10)
	assert.Equal(t, []string{"1", "2", "...", "10"}, labels(p.Pages()))
	p.SetPage(5)
	assert.Equal(t, []string{"1", "...", "4", "5", "6", "...", "10"}, labels(p.Pages()))
	p.SetPage(10)
	assert.Equal(t, []string{"1", "...", "9", "10"}, labels(p.Pages()))

	for _, l := range p.Pages() {
		if l.Label == "10" {
			assert.True(t, l.Current)
		}
	}
}

func TestPaginationBounds(t *testing.T) {
	p := NewPagination(95, 10)
	p.SetPage(10)
	from, to := p.Bounds()
	assert.Equal(t, 90, from)
	assert.Equal(t, 95, to)

	items := make([]int, 95)
	assert.Len(t, Paginate(p, items), 5)

	empty := NewPagination(0, 10)
	assert.Equal(t, 0, empty.TotalPages())
	assert.False(t, empty.Visible())
	assert.Empty(t, Paginate(empty, []int{}))
}
