package rack

import (
	"encoding/json"
	"fmt"

	"go-omen/chain"
	"go-omen/dsp"
	"go-omen/selector"
)

const (
	FateBias = iota
	FateVariant
)

const (
	FateBiasIn = iota
	FateIn
	FateResetIn
)

const (
	FateOutA = iota
	FateOutB
)

// Fate routes a gate to A or B. The branch is drawn once per rising edge
// against the bias and held until the gate falls, or in latch mode until
// the next rising edge.
type Fate struct {
	ModuleBase
	follower

	gate dsp.SchmittTrigger
	hold selector.Hold
}

func NewFate() *Fate {
	f := &Fate{
		ModuleBase: newBase(KindFate, []Param{
			{Name: "bias", Min: 0, Max: 100, Default: 50},
			{Name: "variant", Min: 1, Max: 128, Default: 1, Snap: true},
		}, []string{"bias", "in", "reset"}, []string{"a", "b"}, 0),
		follower: newFollower(string(KindFate), 1),
		hold:     selector.NewHold(),
	}
	return f
}

func (f *Fate) Process(host chain.Host, args ProcessArgs) {
	f.beginFrame(host, f, &f.Inputs[FateResetIn])

	f.phase += args.SampleTime
	variant := f.variant.Process(f.param(FateVariant))

	f.gate.ProcessThresholds(f.Inputs[FateIn].Voltage(), dsp.GateLow, dsp.GateHigh)
	state := f.hold.Process(f.gate.IsHigh(), f.bias(), f.field, variant, f.phase)

	a, b := 0.0, 0.0
	switch state {
	case selector.HoldA:
		a = 10
	case selector.HoldB:
		b = 10
	}
	f.Outputs[FateOutA].SetVoltage(a)
	f.Outputs[FateOutB].SetVoltage(b)
}

func (f *Fate) bias() float64 {
	if in := &f.Inputs[FateBiasIn]; in.IsConnected() {
		return selector.BiasFromCV(in.Voltage())
	}
	return selector.BiasFromParam(f.param(FateBias))
}

func (f *Fate) SetOption(name string, on bool) error {
	if name != "latch" {
		return fmt.Errorf("fate has no option %q", name)
	}
	f.hold.Latch = on
	return nil
}

func (f *Fate) Latch() bool {
	return f.hold.Latch
}

func (f *Fate) State() selector.HoldState {
	return f.hold.State
}

func (f *Fate) Summary() string {
	latch := ""
	if f.hold.Latch {
		latch = " latch"
	}
	return fmt.Sprintf("hold=%s%s", f.hold.State, latch)
}

type fateState struct {
	Seed              *int     `json:"seed,omitempty"`
	Variant           *float64 `json:"variant,omitempty"`
	Phase             *float64 `json:"phase,omitempty"`
	HoldState         *int     `json:"holdState,omitempty"`
	Latch             *bool    `json:"latch,omitempty"`
	CanProcessNewGate *bool    `json:"canProcessNewGate,omitempty"`
	Clock             *uint32  `json:"clock,omitempty"`
}

func (f *Fate) MarshalJSON() ([]byte, error) {
	variant := f.variant.Value()
	hold := int(f.hold.State)
	tick := f.tracker.Count()
	return json.Marshal(fateState{
		Seed:              &f.seed,
		Variant:           &variant,
		Phase:             &f.phase,
		HoldState:         &hold,
		Latch:             &f.hold.Latch,
		CanProcessNewGate: &f.hold.Armed,
		Clock:             &tick,
	})
}

func (f *Fate) UnmarshalJSON(data []byte) error {
	var st fateState
	if err := json.Unmarshal(data, &st); err != nil {
		return fmt.Errorf("fate state: %w", err)
	}
	if st.Seed != nil {
		f.OnSeed(*st.Seed)
	}
	if st.Variant != nil {
		f.variant.Set(*st.Variant)
	}
	if st.Phase != nil {
		f.phase = *st.Phase
	}
	if st.HoldState != nil {
		f.hold.State = selector.ParseHoldState(*st.HoldState)
	}
	if st.Latch != nil {
		f.hold.Latch = *st.Latch
	}
	if st.CanProcessNewGate != nil {
		f.hold.Armed = *st.CanProcessNewGate
	}
	if st.Clock != nil {
		f.tracker.Restore(*st.Clock)
	}
	return nil
}
