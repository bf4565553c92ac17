package midi

import (
	"fmt"
	"sync/atomic"
	"time"

	"go-omen/clock"
	"go-omen/debug"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// ClockInput forwards 24 PPQN MIDI clock from one input port to a Target.
// Start resets the chain so the next clock becomes its first tick. Stop
// holds clocks back until Continue or Start.
type ClockInput struct {
	id     string
	target Target
	stop   func()

	paused  atomic.Bool
	ticks   atomic.Uint64
	dropped atomic.Uint64
	last    atomic.Int64
	period  atomic.Int64
}

// NewClockInput returns a ClockInput that is not attached to a port.
// Feed it with Handle.
func NewClockInput(id string, target Target) *ClockInput {
	return &ClockInput{id: id, target: target}
}

// OpenClockInput listens on in. Timing clock is filtered by the driver
// unless time code is requested, so the listener asks for it.
func OpenClockInput(id string, in drivers.In, target Target) (*ClockInput, error) {
	c := NewClockInput(id, target)
	stop, err := gomidi.ListenTo(in, func(msg gomidi.Message, timestampms int32) {
		c.Handle(msg, time.Now())
	}, gomidi.UseTimeCode())
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", id, err)
	}
	c.stop = stop
	debug.Log("midi", "clock input open: %s", id)
	return c, nil
}

func (c *ClockInput) ID() string {
	return c.id
}

// Handle processes one raw message received at now.
func (c *ClockInput) Handle(msg []byte, now time.Time) {
	t := Decode(msg)
	switch t {
	case TransportClock:
		if c.paused.Load() {
			return
		}
		c.measure(now)
		c.ticks.Add(1)
		if !c.target.Clock() {
			c.dropped.Add(1)
		}
	case TransportStart:
		c.paused.Store(false)
		c.last.Store(0)
		c.target.Reset()
		debug.Log("midi", "%s: start", c.id)
	case TransportContinue:
		c.paused.Store(false)
		c.last.Store(0)
		debug.Log("midi", "%s: continue", c.id)
	case TransportStop:
		c.paused.Store(true)
		debug.Log("midi", "%s: stop after %d ticks", c.id, c.ticks.Load())
	}
}

func (c *ClockInput) measure(now time.Time) {
	ns := now.UnixNano()
	prev := c.last.Swap(ns)
	if prev == 0 || ns <= prev {
		return
	}
	d := ns - prev
	p := c.period.Load()
	if p == 0 {
		c.period.Store(d)
		return
	}
	c.period.Store(p + (d-p)/8)
}

// BPM estimates the incoming tempo from the smoothed clock period.
func (c *ClockInput) BPM() float64 {
	p := c.period.Load()
	if p <= 0 {
		return 0
	}
	return float64(time.Minute) / (float64(p) * clock.PPQN)
}

// Ticks counts clocks forwarded since the port opened.
func (c *ClockInput) Ticks() uint64 {
	return c.ticks.Load()
}

// Dropped counts clocks the target refused because its queue was full.
func (c *ClockInput) Dropped() uint64 {
	return c.dropped.Load()
}

// Paused reports whether a Stop is in effect.
func (c *ClockInput) Paused() bool {
	return c.paused.Load()
}

func (c *ClockInput) Close() error {
	if c.stop != nil {
		c.stop()
		c.stop = nil
	}
	return nil
}
