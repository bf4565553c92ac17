package selector

import "go-omen/dsp"

// HoldState is the two-way hold's output.
type HoldState int

const (
	HoldA HoldState = iota
	HoldB
	HoldNone
)

// ParseHoldState maps a persisted integer; unknown values load as HoldNone.
func ParseHoldState(v int) HoldState {
	if v < int(HoldA) || v > int(HoldNone) {
		return HoldNone
	}
	return HoldState(v)
}

func (h HoldState) String() string {
	switch h {
	case HoldA:
		return "A"
	case HoldB:
		return "B"
	}
	return "-"
}

// BiasFromParam maps a 0..100 knob onto [-1, 1].
func BiasFromParam(v float64) float64 {
	return dsp.Rescale(v, 0, 100, -1, 1)
}

// BiasFromCV maps -5..5 V onto [-1, 1].
func BiasFromCV(v float64) float64 {
	return dsp.Rescale(v, -5, 5, -1, 1)
}

// Hold samples once per rising gate and keeps the branch until the gate
// falls, or in latch mode until the next rising gate.
type Hold struct {
	State HoldState
	Armed bool
	Latch bool
}

func NewHold() Hold {
	return Hold{State: HoldNone, Armed: true}
}

// Process takes the debounced gate level for this frame.
func (h *Hold) Process(gate bool, bias float64, f Sampler, lane, phase float64) HoldState {
	switch {
	case gate && h.Armed:
		if f.Sample(lane, phase) >= bias {
			h.State = HoldA
		} else {
			h.State = HoldB
		}
		h.Armed = false
	case !gate:
		if !h.Latch {
			h.State = HoldNone
		}
		h.Armed = true
	}
	return h.State
}
