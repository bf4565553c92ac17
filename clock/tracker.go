// Package clock turns the chain's broadcast tick stream into a local tick
// counter and provides the musical division table shared by the clocked
// modules.
package clock

// PPQN is the base resolution of the chain clock.
const PPQN = 24

// State of a Tracker.
type State int

const (
	Uninitialized State = iota
	Tracking
)

func (s State) String() string {
	if s == Tracking {
		return "tracking"
	}
	return "uninitialized"
}

// FirstTick is the value the origin broadcasts on the first pulse after a
// reset: it zeroes its counter on reset and increments before sending.
const FirstTick uint32 = 1

// Tracker follows the origin clock by accumulating deltas, so a module that
// missed some chain updates still lands on the same count, and a module whose
// count was zeroed or restored locally keeps its own alignment.
//
// It re-initializes (counter = incoming, no delta) when it has not seen a
// clock yet, when the incoming value is FirstTick, or when the incoming
// value went backwards.
type Tracker struct {
	state    State
	counter  uint32
	lastSeen uint32
	// false after a restore with no incoming value to measure from
	synced bool
}

// Advance applies one incoming tick and returns the local counter.
func (t *Tracker) Advance(incoming uint32) uint32 {
	switch {
	case t.state == Uninitialized || incoming == FirstTick || (t.synced && incoming < t.lastSeen):
		t.state = Tracking
		t.counter = incoming
	case !t.synced:
		t.counter++
	default:
		t.counter += incoming - t.lastSeen
	}
	t.lastSeen = incoming
	t.synced = true
	return t.counter
}

// Reset returns to Uninitialized with a zero counter.
func (t *Tracker) Reset() {
	t.state = Uninitialized
	t.counter = 0
	t.lastSeen = 0
	t.synced = false
}

// Restore sets the local count and keeps tracking. Later ticks add their
// deltas from the last incoming value; with none seen yet, the first tick
// counts as one.
func (t *Tracker) Restore(count uint32) {
	t.synced = t.state == Tracking && t.synced
	t.state = Tracking
	t.counter = count
}

// Zero restarts the local count without leaving Tracking.
func (t *Tracker) Zero() {
	t.Restore(0)
}

func (t *Tracker) Count() uint32 {
	return t.counter
}

func (t *Tracker) State() State {
	return t.state
}

// OnDivision reports whether the current count is a multiple of ticks.
// An untracked clock is never on a division.
func (t *Tracker) OnDivision(ticks uint32) bool {
	if t.state != Tracking || ticks == 0 {
		return false
	}
	return t.counter%ticks == 0
}
