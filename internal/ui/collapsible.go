package ui

// Collapsible tracks the open state of sections keyed by target id.
// Sections start collapsed unless opened.
type Collapsible struct {
	open map[string]bool
}

// NewCollapsible opens the given targets.
func NewCollapsible(open ...string) *Collapsible {
	c := &Collapsible{open: map[string]bool{}}
	for _, id := range open {
		c.open[id] = true
	}
	return c
}

// Toggle flips a section and returns whether it is now collapsed.
func (c *Collapsible) Toggle(id string) bool {
	c.open[id] = !c.open[id]
	return !c.open[id]
}

// Collapsed reports whether id is collapsed.
func (c *Collapsible) Collapsed(id string) bool {
	return !c.open[id]
}
