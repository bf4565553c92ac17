// Package selector turns coherent-noise samples into gated, weighted
// decisions: a two-way hold, a density gate and a three-way weighted pick.
package selector

// Sampler is the noise source a selector reads. lane picks an independent
// stream, t is the phase coordinate. Values are in [-1, 1].
type Sampler interface {
	Sample(lane, t float64) float64
}

// Choice is one branch of a three-way pick.
type Choice int

const (
	X Choice = iota
	Y
	Z
	None
)

// ParseChoice maps a persisted integer back to a Choice. Anything outside
// X..Z loads as None.
func ParseChoice(v int) Choice {
	if v < int(X) || v > int(None) {
		return None
	}
	return Choice(v)
}

func (c Choice) String() string {
	switch c {
	case X:
		return "X"
	case Y:
		return "Y"
	case Z:
		return "Z"
	}
	return "-"
}

// ChangeTracker remembers the current and previous selection and whether
// the last Process call changed it.
type ChangeTracker struct {
	Current  Choice `json:"currentOutput"`
	Previous Choice `json:"previousOutput"`

	changed bool
}

func NewChangeTracker() ChangeTracker {
	return ChangeTracker{Current: None, Previous: None}
}

// Process records c as the current selection.
func (t *ChangeTracker) Process(c Choice) bool {
	t.changed = false
	if c != t.Current {
		t.Previous = t.Current
		t.Current = c
		t.changed = true
	}
	return t.changed
}

func (t *ChangeTracker) Changed() bool {
	return t.changed
}

// Restore loads persisted values. It is not a change: a fade that was in
// flight is restored with the crossfade state.
func (t *ChangeTracker) Restore(current, previous int) {
	t.Current = ParseChoice(current)
	t.Previous = ParseChoice(previous)
	t.changed = false
}
