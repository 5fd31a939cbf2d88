package ui

import "math"

// ProgressTracker is a bounded progress bar.
type ProgressTracker struct {
	value float64
	max   float64
}

// NewProgressTracker clamps initial into [0, max]. A non-positive max defaults to 100.
func NewProgressTracker(initial, max float64) *ProgressTracker {
	if max <= 0 {
		max = 100
	}
	p := &ProgressTracker{max: max}
	p.Update(initial)
	return p
}

// Update sets the value, clamped to max.
func (p *ProgressTracker) Update(value float64) {
	p.value = math.Max(0, math.Min(value, p.max))
}

// Increment adds amount.
func (p *ProgressTracker) Increment(amount float64) {
	p.Update(p.value + amount)
}

// Complete fills the bar.
func (p *ProgressTracker) Complete() {
	p.Update(p.max)
}

// Value returns the current value.
func (p *ProgressTracker) Value() float64 { return p.value }

// Percentage returns the rounded percentage.
func (p *ProgressTracker) Percentage() int {
	return int(math.Round(p.value / p.max * 100))
}

// Done reports whether the bar is full.
func (p *ProgressTracker) Done() bool { return p.value >= p.max }
