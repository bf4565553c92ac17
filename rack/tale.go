package rack

import (
	"encoding/json"
	"fmt"
	"math"

	"go-omen/chain"
	"go-omen/dsp"
)

const (
	TalePace = iota
	TaleVariant
	TaleSlew
)

const (
	TalePaceIn = iota
	TaleSampleIn
	TaleResetIn
)

const TaleOut = 0

// Phase speed range of the pace knob, in Hz.
const (
	TaleMinSpeed = 0.001
	TaleMaxSpeed = dsp.FreqA4
)

const taleLightEvery = 512

// Tale outputs the noise field itself as a ±5 V voltage, travelling along
// the phase axis at an exponential pace. With a cable in the sample input
// it becomes a sample-and-hold.
type Tale struct {
	ModuleBase
	follower

	sample dsp.SchmittTrigger
	held   float64
	slew   dsp.Slew
	lights dsp.ClockDivider
}

func NewTale() *Tale {
	return &Tale{
		ModuleBase: newBase(KindTale, []Param{
			{Name: "pace", Min: 0, Max: 1, Default: 0.5},
			{Name: "variant", Min: 1, Max: 128, Default: 1, Snap: true},
			{Name: "slew", Min: 0, Max: 1000},
		}, []string{"pace", "s&h", "reset"}, []string{"out"}, 1),
		follower: newFollower(string(KindTale), 1),
		slew:     dsp.NewSlew(dsp.SlewOff),
		lights:   dsp.NewClockDivider(taleLightEvery),
	}
}

// Speed maps a 0..1 pace onto TaleMinSpeed..TaleMaxSpeed exponentially.
func Speed(pace float64) float64 {
	return TaleMinSpeed * math.Pow(TaleMaxSpeed/TaleMinSpeed, pace)
}

func (t *Tale) Process(host chain.Host, args ProcessArgs) {
	t.beginFrame(host, t, &t.Inputs[TaleResetIn])

	variant := t.variant.Process(t.param(TaleVariant))

	v := t.held
	if in := &t.Inputs[TaleSampleIn]; in.IsConnected() {
		if t.sample.Process(in.Voltage()) {
			t.held = t.field.Sample(variant, t.phase)
			v = t.held
		}
	} else {
		v = t.field.Sample(variant, t.phase)
	}

	out := dsp.Rescale(v, -1, 1, -5, 5)
	t.slew.SetMillisPerVolt(t.param(TaleSlew))
	out = t.slew.Process(out, args.SampleTime)
	t.Outputs[TaleOut].SetVoltage(out)

	pace := t.param(TalePace)
	if in := &t.Inputs[TalePaceIn]; in.IsConnected() {
		pace *= dsp.Rescale(in.Voltage(), -5, 5, 0, 1)
	}
	t.phase += Speed(pace) * args.SampleTime

	if t.lights.Process() {
		level := dsp.Clamp(out/5, -1, 1)
		if level >= 0 {
			t.Lights[0].Set(0, level, 0)
		} else {
			t.Lights[0].Set(-level, 0, 0)
		}
	}
}

func (t *Tale) Summary() string {
	return fmt.Sprintf("out=%+.2fV", t.Outputs[TaleOut].Voltage())
}

type taleState struct {
	Seed           *int     `json:"seed,omitempty"`
	Variant        *float64 `json:"variant,omitempty"`
	HeldNoiseValue *float64 `json:"heldNoiseValue,omitempty"`
	Phase          *float64 `json:"phase,omitempty"`
}

func (t *Tale) MarshalJSON() ([]byte, error) {
	variant := t.variant.Value()
	return json.Marshal(taleState{
		Seed:           &t.seed,
		Variant:        &variant,
		HeldNoiseValue: &t.held,
		Phase:          &t.phase,
	})
}

func (t *Tale) UnmarshalJSON(data []byte) error {
	var st taleState
	if err := json.Unmarshal(data, &st); err != nil {
		return fmt.Errorf("tale state: %w", err)
	}
	if st.Seed != nil {
		t.OnSeed(*st.Seed)
	}
	if st.Variant != nil {
		t.variant.Set(*st.Variant)
	}
	if st.HeldNoiseValue != nil {
		t.held = *st.HeldNoiseValue
	}
	if st.Phase != nil {
		t.phase = *st.Phase
	}
	return nil
}
