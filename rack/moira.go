package rack

import (
	"encoding/json"
	"fmt"

	"go-omen/chain"
	"go-omen/dsp"
	"go-omen/selector"
)

const (
	MoiraXProb = iota
	MoiraYProb
	MoiraZProb
	MoiraXValue
	MoiraYValue
	MoiraZValue
	MoiraVariant
	MoiraFade
)

const (
	MoiraXProbIn = iota
	MoiraYProbIn
	MoiraZProbIn
	MoiraXValueIn
	MoiraYValueIn
	MoiraZValueIn
	MoiraTriggerIn
	MoiraResetIn
)

const (
	MoiraXChosen = iota
	MoiraYChosen
	MoiraZChosen
	MoiraAux
	MoiraOut
)

// moiraLightEvery is how many frames pass between light refreshes.
const moiraLightEvery = 512

// Moira picks one of three values on each trigger with relative
// probabilities, plus an auxiliary pick among the two it did not choose.
// Switches between values crossfade over the fade time.
type Moira struct {
	ModuleBase
	follower

	trigger  dsp.SchmittTrigger
	picker   selector.Weighted
	probs    selector.Probabilities
	channels int

	outFades [MaxChannels]dsp.Crossfade
	auxFades [MaxChannels]dsp.Crossfade

	chosen [3]dsp.PulseGenerator
	lights dsp.ClockDivider
}

func NewMoira() *Moira {
	return &Moira{
		ModuleBase: newBase(KindMoira, []Param{
			{Name: "x prob", Min: 0, Max: 100, Default: 50},
			{Name: "y prob", Min: 0, Max: 100, Default: 50},
			{Name: "z prob", Min: 0, Max: 100, Default: 50},
			{Name: "x", Min: -10, Max: 10},
			{Name: "y", Min: -10, Max: 10},
			{Name: "z", Min: -10, Max: 10},
			{Name: "variant", Min: 1, Max: 128, Default: 1, Snap: true},
			{Name: "fade", Min: 0, Max: 20},
		},
			[]string{"x prob", "y prob", "z prob", "x", "y", "z", "trigger", "reset"},
			[]string{"x chosen", "y chosen", "z chosen", "aux", "out"},
			3),
		follower: newFollower(string(KindMoira), 1),
		picker:   selector.NewWeighted(),
		channels: 1,
		lights:   dsp.NewClockDivider(moiraLightEvery),
	}
}

func (m *Moira) Process(host chain.Host, args ProcessArgs) {
	m.beginFrame(host, m, &m.Inputs[MoiraResetIn])

	m.phase += args.SampleTime * dsp.FreqA4
	variant := m.variant.Process(m.param(MoiraVariant))

	triggered := m.trigger.ProcessThresholds(m.Inputs[MoiraTriggerIn].Voltage(), dsp.GateLow, dsp.GateHigh)

	m.probs = selector.Normalize(
		m.probability(MoiraXProb, MoiraXProbIn),
		m.probability(MoiraYProb, MoiraYProbIn),
		m.probability(MoiraZProb, MoiraZProbIn),
	)
	m.picker.Process(triggered, m.probs, m.field, variant, m.phase)

	m.channels = 1
	for in := MoiraXValueIn; in <= MoiraZValueIn; in++ {
		if p := &m.Inputs[in]; p.IsConnected() {
			m.channels = max(m.channels, p.Channels())
		}
	}
	m.Outputs[MoiraOut].SetChannels(m.channels)
	m.Outputs[MoiraAux].SetChannels(m.channels)

	fade := m.param(MoiraFade)
	main, aux := &m.picker.Main, &m.picker.Aux
	for c := 0; c < m.channels; c++ {
		if main.Changed() {
			m.outFades[c].Start(fade)
		}
		if aux.Changed() {
			m.auxFades[c].Start(fade)
		}
		m.Outputs[MoiraOut].SetVoltageAt(m.outFades[c].Process(m.value(main.Current, c), args.SampleTime), c)
		m.Outputs[MoiraAux].SetVoltageAt(m.auxFades[c].Process(m.value(aux.Current, c), args.SampleTime), c)
	}

	m.updateChosen(triggered, args.SampleTime)
	if m.lights.Process() {
		m.updateLights()
	}
}

// probability reads a relative weight; a connected CV (-5..5 V) scales the
// slider by 0..1.
func (m *Moira) probability(param, input int) float64 {
	v := m.param(param)
	if in := &m.Inputs[input]; in.IsConnected() {
		v *= dsp.Rescale(in.Voltage(), -5, 5, 0, 1)
	}
	return v
}

// value is the voltage of a branch on channel c. With a cable in the value
// input the knob becomes an attenuator.
func (m *Moira) value(c selector.Choice, channel int) float64 {
	if c == selector.None {
		return 0
	}
	param, input := MoiraXValue+int(c), MoiraXValueIn+int(c)
	v := m.param(param)
	if in := &m.Inputs[input]; in.IsConnected() {
		v = in.VoltageAt(channel) * dsp.Rescale(m.param(param), -10, 10, 0, 1)
	}
	return v
}

func (m *Moira) updateChosen(triggered bool, dt float64) {
	main := &m.picker.Main
	if main.Changed() || triggered {
		if main.Current == selector.None {
			for i := range m.chosen {
				m.chosen[i].Reset()
			}
		} else {
			m.chosen[main.Current].Trigger(PulseWidth)
		}
	}
	for i := range m.chosen {
		v := 0.0
		if m.chosen[i].Process(dt) {
			v = 10
		}
		m.Outputs[MoiraXChosen+i].SetVoltage(v)
	}
}

// updateLights shows each branch's probability in white, the main pick in
// green and the auxiliary pick in blue.
func (m *Moira) updateLights() {
	for i := range m.Lights {
		p := m.probs.Of(selector.Choice(i))
		m.Lights[i].Set(p, p, p)
	}
	if c := m.picker.Main.Current; c != selector.None {
		p := m.probs.Of(c)
		m.Lights[c].Set(0, p, 0)
	}
	if c := m.picker.Aux.Current; c != selector.None {
		p := m.probs.Of(c)
		m.Lights[c].Set(p*0.15, p*0.5, p)
	}
}

// OnReset also cuts the chosen pulses short.
func (m *Moira) OnReset() {
	m.follower.OnReset()
	for i := range m.chosen {
		m.chosen[i].Reset()
	}
}

func (m *Moira) Main() selector.Choice {
	return m.picker.Main.Current
}

func (m *Moira) Aux() selector.Choice {
	return m.picker.Aux.Current
}

func (m *Moira) Summary() string {
	return fmt.Sprintf("main=%s aux=%s", m.picker.Main.Current, m.picker.Aux.Current)
}

type moiraState struct {
	Seed              *int            `json:"seed,omitempty"`
	Variant           *float64        `json:"variant,omitempty"`
	Phase             *float64        `json:"phase,omitempty"`
	MainOutputTracker *trackerState   `json:"mainOutputTracker,omitempty"`
	AuxOutputTracker  *trackerState   `json:"auxOutputTracker,omitempty"`
	OutCrossfade      []dsp.Crossfade `json:"outCrossfade,omitempty"`
	AuxCrossfade      []dsp.Crossfade `json:"auxCrossfade,omitempty"`
	Clock             *uint32         `json:"clock,omitempty"`
}

type trackerState struct {
	Current  *int `json:"currentOutput,omitempty"`
	Previous *int `json:"previousOutput,omitempty"`
}

func saveTracker(t *selector.ChangeTracker) *trackerState {
	cur, prev := int(t.Current), int(t.Previous)
	return &trackerState{Current: &cur, Previous: &prev}
}

func loadTracker(t *selector.ChangeTracker, st *trackerState) {
	if st == nil {
		return
	}
	cur, prev := int(t.Current), int(t.Previous)
	if st.Current != nil {
		cur = *st.Current
	}
	if st.Previous != nil {
		prev = *st.Previous
	}
	t.Restore(cur, prev)
}

func (m *Moira) MarshalJSON() ([]byte, error) {
	variant := m.variant.Value()
	tick := m.tracker.Count()
	return json.Marshal(moiraState{
		Seed:              &m.seed,
		Variant:           &variant,
		Phase:             &m.phase,
		MainOutputTracker: saveTracker(&m.picker.Main),
		AuxOutputTracker:  saveTracker(&m.picker.Aux),
		OutCrossfade:      m.outFades[:m.channels],
		AuxCrossfade:      m.auxFades[:m.channels],
		Clock:             &tick,
	})
}

func (m *Moira) UnmarshalJSON(data []byte) error {
	var st moiraState
	if err := json.Unmarshal(data, &st); err != nil {
		return fmt.Errorf("moira state: %w", err)
	}
	if st.Seed != nil {
		m.OnSeed(*st.Seed)
	}
	if st.Variant != nil {
		m.variant.Set(*st.Variant)
	}
	if st.Phase != nil {
		m.phase = *st.Phase
	}
	loadTracker(&m.picker.Main, st.MainOutputTracker)
	loadTracker(&m.picker.Aux, st.AuxOutputTracker)
	copy(m.outFades[:], st.OutCrossfade)
	copy(m.auxFades[:], st.AuxCrossfade)
	if st.Clock != nil {
		m.tracker.Restore(*st.Clock)
	}
	return nil
}
