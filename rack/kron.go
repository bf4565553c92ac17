package rack

import (
	"encoding/json"
	"fmt"

	"go-omen/chain"
	"go-omen/clock"
	"go-omen/dsp"
	"go-omen/selector"
)

const (
	KronDensity = iota
	KronDivision
	KronVariant
)

const (
	KronMuteIn = iota
	KronResetIn
	KronMaxDensityIn
)

const KronOut = 0

// kronStride spaces successive division steps along the noise phase axis.
const kronStride = 0.618

// Kron fires a pulse on a musical division of the chain clock with a
// probability set by the density knob. Every Kron with the same seed,
// variant and division makes the same decisions.
type Kron struct {
	ModuleBase
	follower

	division clock.Gate
	mute     dsp.SchmittTrigger
	gate     selector.DensityGate
	pulse    dsp.PulseGenerator
}

// PulseWidth is the length of a trigger output, in seconds.
const PulseWidth = 1e-3

func NewKron() *Kron {
	return &Kron{
		ModuleBase: newBase(KindKron, []Param{
			{Name: "density", Min: 0, Max: 100, Default: 50},
			{Name: "division", Min: 0, Max: float64(len(clock.Divisions) - 1), Default: 3, Snap: true},
			{Name: "variant", Min: 1, Max: 128, Default: 1, Snap: true},
		}, []string{"mute", "reset", "max density"}, []string{"out"}, 1),
		follower: newFollower(string(KindKron), 1),
		division: clock.NewGate(3),
	}
}

func (k *Kron) Process(host chain.Host, args ProcessArgs) {
	k.beginFrame(host, k, &k.Inputs[KronResetIn])

	variant := k.variant.Process(k.param(KronVariant))
	div := clock.DivisionAt(int(k.division.Process(k.param(KronDivision))))
	k.mute.Process(k.Inputs[KronMuteIn].Voltage())

	if k.clocked && k.tracker.OnDivision(div.Ticks) {
		step := float64(k.tracker.Count() / div.Ticks)
		maxIn := &k.Inputs[KronMaxDensityIn]
		density := selector.Density(k.param(KronDensity), maxIn.Voltage(), maxIn.IsConnected())
		muted := k.mute.IsHigh()

		switch k.gate.Process(true, density, muted, k.field, variant, step*kronStride) {
		case selector.Fired:
			k.pulse.Trigger(PulseWidth)
			k.Lights[0].Set(0, 1, 0)
		case selector.Blocked:
			k.Lights[0].Set(1, 0, 0)
		default:
			k.Lights[0].Set(0, 0, 0)
		}
	}

	out := 0.0
	if k.pulse.Process(args.SampleTime) {
		out = 10
	}
	k.Outputs[KronOut].SetVoltage(out)
}

// OnReset also drops any pulse in flight.
func (k *Kron) OnReset() {
	k.follower.OnReset()
	k.pulse.Reset()
	k.Lights[0].Set(0, 0, 0)
}

// Division is the gated division currently in effect.
func (k *Kron) Division() clock.Division {
	return clock.DivisionAt(int(k.division.Value()))
}

func (k *Kron) Last() selector.GateResult {
	return k.gate.Last
}

func (k *Kron) Summary() string {
	return fmt.Sprintf("div=%s tick=%d %s", k.Division().Name, k.tracker.Count(), k.gate.Last)
}

type kronState struct {
	Seed     *int     `json:"seed,omitempty"`
	Variant  *float64 `json:"variant,omitempty"`
	Division *int     `json:"division,omitempty"`
	Clock    *uint32  `json:"clock,omitempty"`
}

func (k *Kron) MarshalJSON() ([]byte, error) {
	variant := k.variant.Value()
	div := int(k.division.Value())
	tick := k.tracker.Count()
	return json.Marshal(kronState{
		Seed:     &k.seed,
		Variant:  &variant,
		Division: &div,
		Clock:    &tick,
	})
}

func (k *Kron) UnmarshalJSON(data []byte) error {
	var st kronState
	if err := json.Unmarshal(data, &st); err != nil {
		return fmt.Errorf("kron state: %w", err)
	}
	if st.Seed != nil {
		k.OnSeed(*st.Seed)
	}
	if st.Variant != nil {
		k.variant.Set(*st.Variant)
	}
	if st.Division != nil {
		k.division.Set(float64(clock.ClampDivision(*st.Division)))
	}
	if st.Clock != nil {
		k.tracker.Restore(*st.Clock)
	}
	return nil
}
