package ui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/A7maad1/LSA/internal/models"
)

func TestTabs(t *testing.T) {
	tabs := NewTabs("activities", "gallery")
	assert.Equal(t, "activities", tabs.Active())
	assert.True(t, tabs.Switch("gallery"))
	assert.False(t, tabs.Switch("missing"))
	assert.True(t, tabs.IsActive("gallery"))
}

func TestCollapsible(t *testing.T) {
	c := NewCollapsible("upcoming")
	assert.False(t, c.Collapsed("upcoming"))
	assert.True(t, c.Collapsed("past"))
	assert.False(t, c.Toggle("past"))
	assert.True(t, c.Toggle("past"))
}

func TestProgressTracker(t *testing.T) {
	p := NewProgressTracker(0, 4)
	p.Increment(1)
	assert.Equal(t, 25, p.Percentage())
	p.Update(10)
	assert.Equal(t, 4.0, p.Value())
	assert.True(t, p.Done())

	p = NewProgressTracker(3, 0)
	assert.Equal(t, 3, p.Percentage())
	p.Complete()
	assert.Equal(t, 100, p.Percentage())
}

type row struct {
	Title    string
	Category string
}

func TestSearchFilterRecomputesFromFullSet(t *testing.T) {
	items := []row{{"Rentrée scolaire", "عام"}, {"Examen final", "امتحانات"}, {"Examen blanc", "عام"}}
	f := NewSearchFilter(items,
		[]FieldFunc[row]{func(r row) string { return r.Title }},
		map[string]FieldFunc[row]{"category": func(r row) string { return r.Category }},
	)
	var calls int
	f.OnFilterChange(func([]row) { calls++ })

	assert.Len(t, f.Apply("examen", nil), 2)
	assert.Len(t, f.Apply("examen", map[string]string{"category": "عام"}), 1)
	assert.Len(t, f.Apply("", map[string]string{"category": ""}), 3)
	assert.Len(t, f.Apply("", map[string]string{"unknown": "x"}), 3)
	assert.Equal(t, 4, calls)
	assert.Equal(t, []string{"عام", "امتحانات"}, f.Options("category"))
}

func galleryFixture() []models.GalleryItem {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	desc := "Sortie au musée"
	return []models.GalleryItem{
		{ID: "1", Title: "Bravo", CreatedAt: base},
		{ID: "2", Title: "alpha", CreatedAt: base.Add(48 * time.Hour), Description: &desc},
		{ID: "3", Title: "Charlie", CreatedAt: base.Add(24 * time.Hour)},
	}
}

func ids(items []models.GalleryItem) []models.ID {
	out := make([]models.ID, 0, len(items))
	for _, i := range items {
		out = append(out, i.ID)
	}
	return out
}

func TestGallerySortAndSearch(t *testing.T) {
	g := NewGallery(galleryFixture())
	assert.Equal(t, []models.ID{"2", "3", "1"}, ids(g.Sort(SortNewest)))
	assert.Equal(t, []models.ID{"1", "3", "2"}, ids(g.Sort(SortOldest)))
	assert.Equal(t, []models.ID{"2", "1", "3"}, ids(g.Sort(SortAlpha)))

	assert.Equal(t, []models.ID{"2"}, ids(g.Search("MUSÉE")))
	assert.Equal(t, []models.ID{"2", "1", "3"}, ids(g.Search("")))
}

func TestGalleryLightboxStopsAtEnds(t *testing.T) {
	g := NewGallery(galleryFixture())
	assert.False(t, g.Next())
	assert.False(t, g.Open(3))
	require.True(t, g.Open(0))
	assert.Equal(t, "1 من 3", g.Counter())

	assert.False(t, g.HandleKey("ArrowLeft"))
	assert.True(t, g.HandleKey("ArrowRight"))
	assert.True(t, g.Next())
	assert.False(t, g.Next())
	assert.Equal(t, 2, g.Index())

	current, ok := g.Current()
	require.True(t, ok)
	assert.Equal(t, models.ID("3"), current.ID)

	assert.True(t, g.HandleKey("Escape"))
	assert.False(t, g.IsOpen())
	assert.Empty(t, g.Counter())
}

func TestParseSortOrder(t *testing.T) {
	assert.Equal(t, SortNewest, ParseSortOrder(""))
	assert.Equal(t, SortNameAsc, ParseSortOrder("a-z"))
	assert.Equal(t, SortNameDesc, ParseSortOrder("name-desc"))
}
