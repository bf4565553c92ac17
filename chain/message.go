// Package chain implements the daisy-chain link: a double-buffered mailbox
// per module through which the origin broadcasts seed, clock and reset to
// every compatible module on its right.
package chain

// Side names a neighbor direction.
type Side int

const (
	Left Side = iota
	Right
)

func (s Side) String() string {
	if s == Left {
		return "left"
	}
	return "right"
}

// Message is copied by value from hop to hop. Each flag is true only on the
// frame its event happened upstream.
type Message struct {
	Seed          int
	SeedChanged   bool
	GlobalReset   bool
	Clock         uint32
	ClockReceived bool
	Processed     bool
}

// Empty reports whether the message carries no event at all.
func (m Message) Empty() bool {
	return !m.SeedChanged && !m.GlobalReset && !m.ClockReceived
}

// Receiver is implemented by every module that reacts to chain events.
type Receiver interface {
	OnSeed(seed int)
	OnReset()
	OnClock(tick uint32)
}

// Host is the module graph as seen from one module: it resolves neighbors
// and performs the buffer flip for a mailbox. The host owns neighbor
// lifetime; a Link never holds on to what Neighbor returns.
type Host interface {
	Neighbor(side Side) any
	RequestFlip(side Side)
}

// Linked is the capability a neighbor exposes when it understands the chain
// protocol.
type Linked interface {
	ChainLink() *Link
}

// Supports checks the capability and returns the neighbor's link.
func Supports(module any) (*Link, bool) {
	if module == nil {
		return nil, false
	}
	l, ok := module.(Linked)
	if !ok {
		return nil, false
	}
	link := l.ChainLink()
	return link, link != nil
}
