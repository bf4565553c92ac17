package chain

import "go-omen/debug"

// Link owns exactly two message slots. The left neighbor writes into the
// producer slot; after a flip that slot becomes the consumer slot this
// module reads. Only one writer ever touches a given slot.
type Link struct {
	name     string
	slots    [2]Message
	consumer int

	// right-neighbor state, tracked so a broken chain is logged once per
	// transition instead of every frame
	rightKnown     bool
	rightConnected bool

	delivered uint64
	forwarded uint64
}

// NewLink creates a link with both slots empty.
func NewLink(name string) *Link {
	l := &Link{name: name}
	l.slots[0].Processed = true
	l.slots[1].Processed = true
	return l
}

// Producer is the slot the left neighbor writes into.
func (l *Link) Producer() *Message {
	return &l.slots[1-l.consumer]
}

// Consumer is the slot this module reads.
func (l *Link) Consumer() *Message {
	return &l.slots[l.consumer]
}

// Flip swaps producer and consumer. Called by the host.
func (l *Link) Flip() {
	l.consumer = 1 - l.consumer
}

// Deliver returns a copy of the pending message, or false if there is none
// or it has already been acted on.
func (l *Link) Deliver() (Message, bool) {
	m := l.Consumer()
	if m.Processed {
		return Message{}, false
	}
	return *m, true
}

// Process runs one frame of the protocol for a non-origin module: apply the
// pending message to r, mark it processed, and pass it on. It reports
// whether a message was consumed.
func (l *Link) Process(host Host, r Receiver) bool {
	msg, ok := l.Deliver()
	if !ok {
		return false
	}

	if msg.SeedChanged {
		r.OnSeed(msg.Seed)
	}
	if msg.GlobalReset {
		r.OnReset()
	}
	if msg.ClockReceived {
		r.OnClock(msg.Clock)
	}

	l.Consumer().Processed = true
	l.delivered++

	msg.Processed = true
	l.Forward(host, msg)
	return true
}

// Publish starts a broadcast from the chain origin.
func (l *Link) Publish(host Host, msg Message) {
	l.Forward(host, msg)
}

// Forward copies msg into the right neighbor's producer slot with Processed
// cleared and asks the host to flip it. A missing or incompatible neighbor
// ends propagation silently.
func (l *Link) Forward(host Host, msg Message) {
	if host == nil {
		return
	}
	next, ok := Supports(host.Neighbor(Right))
	l.noteRight(ok)
	if !ok {
		return
	}

	p := next.Producer()
	*p = msg
	p.Processed = false
	l.forwarded++

	host.RequestFlip(Right)
}

func (l *Link) noteRight(connected bool) {
	if l.rightKnown && l.rightConnected == connected {
		return
	}
	if connected {
		debug.Defer("chain", "%s: right neighbor linked", l.name)
	} else if l.rightKnown {
		debug.Defer("chain", "%s: right neighbor lost, propagation stops here", l.name)
	}
	l.rightKnown = true
	l.rightConnected = connected
}

// Name identifies the owning module in logs.
func (l *Link) Name() string {
	return l.name
}

// Delivered counts messages this link has acted on.
func (l *Link) Delivered() uint64 {
	return l.delivered
}

// Forwarded counts messages this link has passed to its right neighbor.
func (l *Link) Forwarded() uint64 {
	return l.forwarded
}

// Connected reports whether the last forward found a compatible neighbor.
func (l *Link) Connected() bool {
	return l.rightConnected
}
