package rack

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"go-omen/chain"
	"go-omen/debug"
)

// DefaultSampleRate is used when a patch does not set one.
const DefaultSampleRate = 48000

// commandBuffer bounds how many control events can queue between render
// blocks.
const commandBuffer = 64

// CommandKind selects what a Command does.
type CommandKind int

const (
	// CmdPress presses a momentary button param for one trigger width.
	CmdPress CommandKind = iota
	// CmdTrigger sends a trigger pulse into an input.
	CmdTrigger
	// CmdSetParam sets a param value.
	CmdSetParam
	// CmdSetInput holds an input at a voltage and marks it connected.
	CmdSetInput
	// CmdRandomize randomizes a module.
	CmdRandomize
	// CmdCapture snapshots persisted state into Reply.
	CmdCapture
)

// Command is a control event from outside the audio goroutine.
type Command struct {
	Kind   CommandKind
	Module int
	Index  int
	Value  float64
	Reply  chan<- *State
}

// TriggerEvent is a rising or falling edge on a watched output.
type TriggerEvent struct {
	Module int
	Output int
	Note   uint8
	On     bool
}

// ModuleSnapshot is what the monitor shows for one module.
type ModuleSnapshot struct {
	Kind      Kind
	Name      string
	Summary   string
	Seed      int
	Tick      uint32
	Connected bool
	Lights    []Light
	Outputs   []float64
}

// Snapshot is a read-only copy of the rack published for other goroutines.
type Snapshot struct {
	Frame   int64
	Time    time.Duration
	Modules []ModuleSnapshot
}

// Trigger maps an output onto a MIDI note.
type Trigger struct {
	Module int   `json:"module"`
	Output int   `json:"output"`
	Note   uint8 `json:"note"`
}

type watch struct {
	Trigger
	high bool
}

// Cable copies an output into an input at the end of every frame.
type Cable struct {
	From   int `json:"from"`
	Output int `json:"output"`
	To     int `json:"to"`
	Input  int `json:"input"`
}

// hold releases a pressed param or triggered input after a few frames.
// Triggers that arrive while an input is still held are queued and played
// back as separate pulses with a gap of the same width.
type hold struct {
	module, index int
	param         bool
	frames        int
	low           bool
	queued        int
}

// Rack runs modules left to right once per frame. Flip requests from the
// chain link are serviced immediately, so a message published on a frame
// reaches the end of the chain on that same frame.
type Rack struct {
	sampleRate float64
	modules    []Module
	hosts      []chain.Host
	frame      int64

	commands  chan Command
	triggers  chan TriggerEvent
	snapshot  atomic.Pointer[Snapshot]
	snapEvery int64

	cables  []Cable
	watches []watch
	holds   [16]hold
	tap     Tap
	rng     *rand.Rand
}

// Tap selects the output the audio backend plays.
type Tap struct {
	Module int `json:"module"`
	Output int `json:"output"`
}

type host struct {
	r   *Rack
	idx int
}

func (h *host) Neighbor(side chain.Side) any {
	i := h.idx + 1
	if side == chain.Left {
		i = h.idx - 1
	}
	if i < 0 || i >= len(h.r.modules) {
		return nil
	}
	return h.r.modules[i]
}

func (h *host) RequestFlip(side chain.Side) {
	if l, ok := chain.Supports(h.Neighbor(side)); ok {
		l.Flip()
	}
}

// NewRack builds a rack from modules in chain order.
func NewRack(sampleRate float64, modules ...Module) *Rack {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	r := &Rack{
		sampleRate: sampleRate,
		commands:   make(chan Command, commandBuffer),
		triggers:   make(chan TriggerEvent, commandBuffer),
		snapEvery:  max(int64(sampleRate/30), 1),
		tap:        Tap{Module: -1},
		rng:        rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x6f6d656e)),
	}
	for _, m := range modules {
		r.Add(m)
	}
	r.publish()
	return r
}

// Add appends a module at the right end of the chain.
func (r *Rack) Add(m Module) {
	r.modules = append(r.modules, m)
	r.hosts = append(r.hosts, &host{r: r, idx: len(r.modules) - 1})
}

func (r *Rack) Modules() []Module {
	return r.modules
}

func (r *Rack) Module(i int) (Module, error) {
	if i < 0 || i >= len(r.modules) {
		return nil, fmt.Errorf("no module at slot %d", i)
	}
	return r.modules[i], nil
}

func (r *Rack) SampleRate() float64 {
	return r.sampleRate
}

func (r *Rack) Frame() int64 {
	return r.frame
}

// Origin returns the slot of the first Oracle, or -1.
func (r *Rack) Origin() int {
	for i, m := range r.modules {
		if _, ok := m.(*Oracle); ok {
			return i
		}
	}
	return -1
}

// SetTap selects the audio output. A module index of -1 mutes.
func (r *Rack) SetTap(t Tap) error {
	if t.Module >= 0 {
		m, err := r.Module(t.Module)
		if err != nil {
			return err
		}
		if t.Output < 0 || t.Output >= len(m.Base().Outputs) {
			return fmt.Errorf("%s has no output %d", m.Base().Kind, t.Output)
		}
	}
	r.tap = t
	return nil
}

// Connect patches an output into an input. The input takes the output's
// channel count.
func (r *Rack) Connect(c Cable) error {
	from, err := r.Module(c.From)
	if err != nil {
		return err
	}
	to, err := r.Module(c.To)
	if err != nil {
		return err
	}
	if c.Output < 0 || c.Output >= len(from.Base().Outputs) {
		return fmt.Errorf("%s has no output %d", from.Base().Kind, c.Output)
	}
	if c.Input < 0 || c.Input >= len(to.Base().Inputs) {
		return fmt.Errorf("%s has no input %d", to.Base().Kind, c.Input)
	}
	to.Base().Inputs[c.Input].Connect(from.Base().Outputs[c.Output].Channels())
	r.cables = append(r.cables, c)
	return nil
}

func (r *Rack) Cables() []Cable {
	return r.cables
}

// Watch forwards edges on an output to Triggers as note events.
func (r *Rack) Watch(t Trigger) error {
	m, err := r.Module(t.Module)
	if err != nil {
		return err
	}
	if t.Output < 0 || t.Output >= len(m.Base().Outputs) {
		return fmt.Errorf("%s has no output %d", m.Base().Kind, t.Output)
	}
	r.watches = append(r.watches, watch{Trigger: t})
	return nil
}

// Watches lists the watched outputs.
func (r *Rack) Watches() []Trigger {
	out := make([]Trigger, len(r.watches))
	for i, w := range r.watches {
		out[i] = w.Trigger
	}
	return out
}

// Triggers delivers watched output edges. Events are dropped when nobody
// keeps up.
func (r *Rack) Triggers() <-chan TriggerEvent {
	return r.triggers
}

// Send queues a command for the audio goroutine without blocking.
func (r *Rack) Send(cmd Command) bool {
	select {
	case r.commands <- cmd:
		return true
	default:
		debug.Log("rack", "command queue full, dropped %v", cmd.Kind)
		return false
	}
}

// Clock sends one pulse into the origin's clock input.
func (r *Rack) Clock() bool {
	return r.Send(Command{Kind: CmdTrigger, Module: r.Origin(), Index: OracleClockIn})
}

// Reset sends one pulse into the origin's reset input.
func (r *Rack) Reset() bool {
	return r.Send(Command{Kind: CmdTrigger, Module: r.Origin(), Index: OracleResetIn})
}

// Press presses seed button i on the origin.
func (r *Rack) Press(i int) bool {
	return r.Send(Command{Kind: CmdPress, Module: r.Origin(), Index: OracleButton0 + i})
}

// Randomize randomizes the origin's seed configuration.
func (r *Rack) Randomize() bool {
	return r.Send(Command{Kind: CmdRandomize, Module: r.Origin()})
}

// Snapshot returns the latest published snapshot. Safe from any goroutine.
func (r *Rack) Snapshot() *Snapshot {
	return r.snapshot.Load()
}

// Step processes one frame for every module.
func (r *Rack) Step() {
	args := ProcessArgs{
		SampleRate: r.sampleRate,
		SampleTime: 1 / r.sampleRate,
		Frame:      r.frame,
	}
	for i, m := range r.modules {
		m.Process(r.hosts[i], args)
	}
	r.carry()
	r.release()
	r.emitTriggers()
	r.frame++
}

// Render drains pending commands and fills out with interleaved frames of
// the tapped output, scaled so ±10 V is full scale.
func (r *Rack) Render(out []float32, channels int) {
	r.drain()
	if channels < 1 {
		channels = 1
	}
	for i := 0; i+channels <= len(out); i += channels {
		r.Step()
		v := float32(r.tapVoltage() / 10)
		for c := 0; c < channels; c++ {
			out[i+c] = v
		}
		if r.frame%r.snapEvery == 0 {
			r.publish()
		}
	}
}

// Run steps n frames without audio, draining commands first.
func (r *Rack) Run(n int) {
	r.drain()
	for i := 0; i < n; i++ {
		r.Step()
	}
	r.publish()
}

func (r *Rack) carry() {
	for _, c := range r.cables {
		out := &r.modules[c.From].Base().Outputs[c.Output]
		in := &r.modules[c.To].Base().Inputs[c.Input]
		n := max(out.Channels(), 1)
		in.SetChannels(n)
		for ch := 0; ch < n; ch++ {
			in.SetVoltageAt(out.VoltageAt(ch), ch)
		}
	}
}

func (r *Rack) tapVoltage() float64 {
	if r.tap.Module < 0 || r.tap.Module >= len(r.modules) {
		return 0
	}
	outs := r.modules[r.tap.Module].Base().Outputs
	if r.tap.Output >= len(outs) {
		return 0
	}
	return outs[r.tap.Output].Voltage()
}

func (r *Rack) drain() {
	for {
		select {
		case cmd := <-r.commands:
			if err := r.apply(cmd); err != nil {
				debug.Defer("rack", "command %v: %v", cmd.Kind, err)
			}
		default:
			return
		}
	}
}

var errNoHoldSlot = errors.New("too many held inputs")

func (r *Rack) apply(cmd Command) error {
	if cmd.Kind == CmdCapture {
		if cmd.Reply == nil {
			return errors.New("capture without reply channel")
		}
		st, err := r.State()
		cmd.Reply <- st
		return err
	}

	m, err := r.Module(cmd.Module)
	if err != nil {
		return err
	}
	b := m.Base()

	switch cmd.Kind {
	case CmdPress:
		if cmd.Index < 0 || cmd.Index >= len(b.Params) {
			return fmt.Errorf("%s has no param %d", b.Kind, cmd.Index)
		}
		b.Params[cmd.Index].Set(b.Params[cmd.Index].Max)
		return r.holdFor(cmd.Module, cmd.Index, true)
	case CmdTrigger:
		if cmd.Index < 0 || cmd.Index >= len(b.Inputs) {
			return fmt.Errorf("%s has no input %d", b.Kind, cmd.Index)
		}
		b.Inputs[cmd.Index].Connect(1)
		return r.holdFor(cmd.Module, cmd.Index, false)
	case CmdSetParam:
		if cmd.Index < 0 || cmd.Index >= len(b.Params) {
			return fmt.Errorf("%s has no param %d", b.Kind, cmd.Index)
		}
		b.Params[cmd.Index].Set(cmd.Value)
	case CmdSetInput:
		if cmd.Index < 0 || cmd.Index >= len(b.Inputs) {
			return fmt.Errorf("%s has no input %d", b.Kind, cmd.Index)
		}
		b.Inputs[cmd.Index].Connect(1)
		b.Inputs[cmd.Index].SetVoltage(cmd.Value)
	case CmdRandomize:
		rnd, ok := m.(Randomizer)
		if !ok {
			return fmt.Errorf("%s cannot randomize", b.Kind)
		}
		rnd.Randomize(r.rng.Uint64())
	default:
		return fmt.Errorf("unknown command %d", cmd.Kind)
	}
	return nil
}

// holdFor schedules the release of a pressed param or pulsed input after
// one trigger width. A new input hold raises the input to 10 V.
func (r *Rack) holdFor(module, index int, param bool) error {
	frames := r.pulseFrames()
	for i := range r.holds {
		h := &r.holds[i]
		if h.frames > 0 && h.module == module && h.index == index && h.param == param {
			if param {
				h.frames = frames
			} else {
				h.queued++
			}
			return nil
		}
	}
	for i := range r.holds {
		if r.holds[i].frames == 0 {
			r.holds[i] = hold{module: module, index: index, param: param, frames: frames}
			if !param {
				r.modules[module].Base().Inputs[index].SetVoltage(10)
			}
			return nil
		}
	}
	return errNoHoldSlot
}

func (r *Rack) pulseFrames() int {
	return max(int(PulseWidth*r.sampleRate), 2)
}

func (r *Rack) release() {
	for i := range r.holds {
		h := &r.holds[i]
		if h.frames == 0 {
			continue
		}
		h.frames--
		if h.frames > 0 {
			continue
		}
		b := r.modules[h.module].Base()
		switch {
		case h.param:
			b.Params[h.index].Set(b.Params[h.index].Min)
		case h.low:
			b.Inputs[h.index].SetVoltage(10)
			h.low = false
			h.queued--
			h.frames = r.pulseFrames()
		default:
			b.Inputs[h.index].SetVoltage(0)
			if h.queued > 0 {
				h.low = true
				h.frames = r.pulseFrames()
			}
		}
	}
}

func (r *Rack) emitTriggers() {
	for i := range r.watches {
		w := &r.watches[i]
		v := r.modules[w.Module].Base().Outputs[w.Output].Voltage()
		high := w.high
		switch {
		case !high && v >= 1:
			high = true
		case high && v <= 0.1:
			high = false
		}
		if high == w.high {
			continue
		}
		w.high = high
		select {
		case r.triggers <- TriggerEvent{Module: w.Module, Output: w.Output, Note: w.Note, On: high}:
		default:
		}
	}
}

type seeded interface {
	Seed() int
	Tick() uint32
}

func (r *Rack) publish() {
	snap := &Snapshot{
		Frame:   r.frame,
		Time:    time.Duration(float64(r.frame) / r.sampleRate * float64(time.Second)),
		Modules: make([]ModuleSnapshot, len(r.modules)),
	}
	for i, m := range r.modules {
		b := m.Base()
		ms := ModuleSnapshot{
			Kind:    b.Kind,
			Name:    b.Name,
			Lights:  append([]Light(nil), b.Lights...),
			Outputs: make([]float64, len(b.Outputs)),
		}
		for j := range b.Outputs {
			ms.Outputs[j] = b.Outputs[j].Voltage()
		}
		if s, ok := m.(Summarizer); ok {
			ms.Summary = s.Summary()
		}
		if s, ok := m.(seeded); ok {
			ms.Seed = s.Seed()
			ms.Tick = s.Tick()
		}
		if l, ok := m.(chain.Linked); ok {
			ms.Connected = l.ChainLink().Connected()
		} else if o, ok := m.(*Oracle); ok {
			ms.Connected = o.Connected()
		}
		snap.Modules[i] = ms
	}
	r.snapshot.Store(snap)
}

func (r *Rack) Tap() Tap {
	return r.tap
}
