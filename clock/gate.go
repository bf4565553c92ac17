package clock

import "go-omen/dsp"

// GateInterval is how many frames a parameter change waits before the
// gate samples it again.
const GateInterval = 16384

// Gate holds a knob value that must not change mid-pattern. A pending value
// is adopted only on the frame the slow divider fires, so a change lands at
// most GateInterval frames late and costs nothing while the knob is still.
type Gate struct {
	value   float64
	divider dsp.ClockDivider
}

// NewGate starts the gate at initial.
func NewGate(initial float64) Gate {
	return Gate{value: initial, divider: dsp.NewClockDivider(GateInterval)}
}

// Process offers the knob's current value and returns the gated value.
func (g *Gate) Process(pending float64) float64 {
	if pending != g.value && g.divider.Process() {
		g.value = pending
	}
	return g.value
}

func (g *Gate) Value() float64 {
	return g.value
}

// Set bypasses the gate, for restoring persisted state.
func (g *Gate) Set(v float64) {
	g.value = v
}
