package rack

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"

	"go-omen/chain"
	"go-omen/dsp"
	"go-omen/seed"
)

// Oracle params, inputs and lights.
const (
	OracleButton0 = iota // six buttons, 0..5
)

const (
	OracleClockIn = iota
	OracleResetIn
)

// OracleClockHigh is the clock input's upper threshold.
const OracleClockHigh = 2.0

// Oracle is the chain origin. Six buttons form the seed configuration; the
// clock and reset inputs drive the chain clock. Everything that happens in
// one frame leaves in a single message.
type Oracle struct {
	ModuleBase

	link   *chain.Link
	config seed.Configuration
	seed   int
	tick   uint32

	buttons [seed.Positions]dsp.BooleanTrigger
	clockIn dsp.SchmittTrigger
	resetIn dsp.SchmittTrigger

	// republish the seed on the next frame
	pending bool
}

func NewOracle() *Oracle {
	params := make([]Param, seed.Positions)
	for i := range params {
		params[i] = Param{Name: fmt.Sprintf("button%d", i+1), Min: 0, Max: 1, Snap: true}
	}
	o := &Oracle{
		ModuleBase: newBase(KindOracle, params, []string{"clock", "reset"}, nil, seed.Positions),
		link:       chain.NewLink(string(KindOracle)),
		pending:    true,
	}
	o.seed = o.config.Seed()
	o.updateLights()
	return o
}

func (o *Oracle) Process(host chain.Host, args ProcessArgs) {
	msg := chain.Message{Seed: o.seed, Clock: o.tick}

	changed := o.pending
	o.pending = false
	for i := range o.buttons {
		if o.buttons[i].Process(o.param(OracleButton0+i) > 0) {
			o.config.Advance(i)
			changed = true
		}
	}
	if changed {
		o.seed = o.config.Seed()
		msg.Seed = o.seed
		msg.SeedChanged = true
		o.updateLights()
	}

	if o.resetIn.Process(o.Inputs[OracleResetIn].Voltage()) {
		o.tick = 0
		msg.GlobalReset = true
	}
	if o.clockIn.ProcessThresholds(o.Inputs[OracleClockIn].Voltage(), dsp.GateLow, OracleClockHigh) {
		o.tick++
		msg.ClockReceived = true
	}
	msg.Clock = o.tick

	if !msg.Empty() {
		o.link.Publish(host, msg)
	}
}

func (o *Oracle) updateLights() {
	for i, s := range o.config {
		c := s.Color()
		o.Lights[i].Set(c.R, c.G, c.B)
	}
}

// Randomize draws a new configuration, published like a manual edit.
func (o *Oracle) Randomize(n uint64) {
	o.config.Randomize(rand.New(rand.NewPCG(n, n^0x9e3779b97f4a7c15)))
	o.pending = true
}

// SetConfiguration replaces the configuration and republishes.
func (o *Oracle) SetConfiguration(c seed.Configuration) {
	o.config = c
	o.pending = true
}

func (o *Oracle) Configuration() seed.Configuration {
	return o.config
}

func (o *Oracle) Seed() int {
	return o.seed
}

func (o *Oracle) Tick() uint32 {
	return o.tick
}

func (o *Oracle) Connected() bool {
	return o.link.Connected()
}

func (o *Oracle) Summary() string {
	return fmt.Sprintf("%s seed=%d tick=%d", o.config, o.seed, o.tick)
}

type oracleState struct {
	Seed              *int    `json:"seed,omitempty"`
	SeedConfiguration []int   `json:"seedConfiguration,omitempty"`
	Clock             *uint32 `json:"clock,omitempty"`
}

func (o *Oracle) MarshalJSON() ([]byte, error) {
	return json.Marshal(oracleState{
		Seed:              &o.seed,
		SeedConfiguration: o.config.Ints(),
		Clock:             &o.tick,
	})
}

// UnmarshalJSON restores the configuration and republishes its seed on the
// next frame. The stored seed is ignored in favor of the configuration.
func (o *Oracle) UnmarshalJSON(data []byte) error {
	var st oracleState
	if err := json.Unmarshal(data, &st); err != nil {
		return fmt.Errorf("oracle state: %w", err)
	}
	if st.SeedConfiguration != nil {
		o.config = seed.FromInts(st.SeedConfiguration)
	}
	if st.Clock != nil {
		o.tick = *st.Clock
	}
	o.seed = o.config.Seed()
	o.pending = true
	o.updateLights()
	return nil
}
