package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/A7maad1/LSA/internal/models"
)

// Gallery holds the visible gallery items and the lightbox position.
// Search and sort are recombined from the full set on every change.
type Gallery struct {
	all     []models.GalleryItem
	visible []models.GalleryItem
	term    string
	order   SortOrder
	index   int
	open    bool
}

// NewGallery shows items in their stored order until Sort is called.
func NewGallery(items []models.GalleryItem) *Gallery {
	g := &Gallery{all: items}
	g.visible = append([]models.GalleryItem(nil), items...)
	return g
}

// Items returns the visible items.
func (g *Gallery) Items() []models.GalleryItem { return g.visible }

// Search filters by a case-insensitive match on title or description.
func (g *Gallery) Search(term string) []models.GalleryItem {
	g.term = strings.ToLower(strings.TrimSpace(term))
	return g.recombine()
}

// Sort orders the visible items: newest, oldest or a-z.
func (g *Gallery) Sort(order SortOrder) []models.GalleryItem {
	g.order = order
	return g.recombine()
}

// Term returns the active search term.
func (g *Gallery) Term() string { return g.term }

// Order returns the active sort order; empty means stored order.
func (g *Gallery) Order() SortOrder { return g.order }

func (g *Gallery) recombine() []models.GalleryItem {
	out := make([]models.GalleryItem, 0, len(g.all))
	for _, item := range g.all {
		if g.term == "" || strings.Contains(strings.ToLower(item.Title), g.term) ||
			(item.Description != nil && strings.Contains(strings.ToLower(*item.Description), g.term)) {
			out = append(out, item)
		}
	}
	if g.order != "" {
		SortBy(out, ParseSortOrder(string(g.order)),
			func(i models.GalleryItem) time.Time { return i.CreatedAt },
			func(i models.GalleryItem) string { return i.Title })
	}
	g.visible = out
	if g.index >= len(out) {
		g.Close()
	}
	return out
}

// Open shows item i in the lightbox. Out of range indices are ignored.
func (g *Gallery) Open(i int) bool {
	if i < 0 || i >= len(g.visible) {
		return false
	}
	g.index = i
	g.open = true
	return true
}

// Close hides the lightbox.
func (g *Gallery) Close() {
	g.open = false
	g.index = 0
}

// IsOpen reports whether the lightbox is showing.
func (g *Gallery) IsOpen() bool { return g.open }

// Index returns the lightbox position.
func (g *Gallery) Index() int { return g.index }

// Current returns the item in the lightbox.
func (g *Gallery) Current() (models.GalleryItem, bool) {
	if !g.open {
		return models.GalleryItem{}, false
	}
	return g.visible[g.index], true
}

// Next moves forward, stopping at the last item.
func (g *Gallery) Next() bool {
	if !g.open || g.index >= len(g.visible)-1 {
		return false
	}
	g.index++
	return true
}

// Previous moves back, stopping at the first item.
func (g *Gallery) Previous() bool {
	if !g.open || g.index <= 0 {
		return false
	}
	g.index--
	return true
}

// HasNext reports whether Next would move.
func (g *Gallery) HasNext() bool { return g.open && g.index < len(g.visible)-1 }

// HasPrevious reports whether Previous would move.
func (g *Gallery) HasPrevious() bool { return g.open && g.index > 0 }

// HandleKey supports ArrowLeft, ArrowRight and Escape.
func (g *Gallery) HandleKey(key string) bool {
	switch key {
	case "ArrowLeft":
		return g.Previous()
	case "ArrowRight":
		return g.Next()
	case "Escape":
		wasOpen := g.open
		g.Close()
		return wasOpen
	}
	return false
}

// Counter renders "i من n" for the lightbox.
func (g *Gallery) Counter() string {
	if !g.open {
		return ""
	}
	return fmt.Sprintf("%d من %d", g.index+1, len(g.visible))
}
