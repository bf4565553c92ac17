package rack

import (
	"go-omen/chain"
	"go-omen/clock"
	"go-omen/dsp"
	"go-omen/noise"
)

// follower is the chain-side state shared by every non-origin module: its
// link, the seed it last applied, the noise field built from that seed, the
// local clock and the noise phase.
type follower struct {
	link    *chain.Link
	seed    int
	field   *noise.Field
	tracker clock.Tracker
	phase   float64
	variant clock.Gate

	resetIn dsp.SchmittTrigger

	// set by OnClock for the frame a tick arrived
	clocked bool
}

func newFollower(name string, variant float64) follower {
	return follower{
		link:    chain.NewLink(name),
		field:   noise.New(0),
		variant: clock.NewGate(variant),
	}
}

func (f *follower) ChainLink() *chain.Link {
	return f.link
}

// OnSeed rebuilds the noise field only when the seed actually changed.
func (f *follower) OnSeed(seed int) {
	if seed == f.seed && f.field.Seed() == seed {
		return
	}
	f.seed = seed
	f.field.Reseed(seed)
}

func (f *follower) OnReset() {
	f.phase = 0
	f.tracker.Reset()
}

func (f *follower) OnClock(tick uint32) {
	f.tracker.Advance(tick)
	f.clocked = true
}

// Seed is the seed the module's noise field is built from.
func (f *follower) Seed() int {
	return f.seed
}

// Tick is the local clock count.
func (f *follower) Tick() uint32 {
	return f.tracker.Count()
}

// beginFrame runs the chain protocol for r and the local reset input.
// A local reset clears the same state a global one does, but the clock
// restarts from zero in Tracking so later chain ticks count from there.
func (f *follower) beginFrame(host chain.Host, r chain.Receiver, reset *Port) {
	f.clocked = false
	f.link.Process(host, r)
	if reset != nil && f.resetIn.Process(reset.Voltage()) {
		r.OnReset()
		f.tracker.Zero()
	}
}
