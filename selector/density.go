package selector

import "go-omen/dsp"

// GateResult is what a density gate did on its latest division boundary.
type GateResult int

const (
	Idle GateResult = iota
	Fired
	Blocked
)

func (r GateResult) String() string {
	switch r {
	case Fired:
		return "fired"
	case Blocked:
		return "blocked"
	}
	return "idle"
}

// Density applies the max-density CV (0..10 V as 0..1) to a 0..100 knob
// when the input is connected.
func Density(param, cv float64, connected bool) float64 {
	if !connected {
		return param
	}
	return param * dsp.Clamp(dsp.Rescale(cv, 0, 10, 0, 1), 0, 1)
}

// DensityGate decides on each division boundary whether a pulse fires.
type DensityGate struct {
	Last GateResult
}

// Process returns the result for this frame; Idle between boundaries. Last
// keeps the most recent boundary result for the indicator light. A boundary
// fires when density >= sample, except that a density of zero never fires,
// even on a sample of exactly zero.
func (g *DensityGate) Process(onDivision bool, density float64, muted bool, f Sampler, lane, phase float64) GateResult {
	if !onDivision {
		return Idle
	}

	sample := dsp.Rescale(f.Sample(lane, phase), -1, 1, 0, 100)
	switch {
	case density <= 0 || density < sample:
		g.Last = Idle
	case muted:
		g.Last = Blocked
	default:
		g.Last = Fired
	}
	return g.Last
}
