package ui

// Tabs tracks which named tab is active.
type Tabs struct {
	names  []string
	active string
}

// NewTabs activates the first name.
func NewTabs(names ...string) *Tabs {
	t := &Tabs{names: names}
	if len(names) > 0 {
		t.active = names[0]
	}
	return t
}

// Switch activates name. Unknown names leave the selection unchanged.
func (t *Tabs) Switch(name string) bool {
	for _, n := range t.names {
		if n == name {
			t.active = name
			return true
		}
	}
	return false
}

// Active returns the active tab name.
func (t *Tabs) Active() string { return t.active }

// IsActive reports whether name is the active tab.
func (t *Tabs) IsActive(name string) bool { return t.active == name }

// Names returns the tab names in order.
func (t *Tabs) Names() []string { return append([]string(nil), t.names...) }
