package midi

import (
	"context"
	"fmt"
	"sync/atomic"

	"go-omen/debug"
	"go-omen/rack"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// DefaultVelocity is used for every trigger note.
const DefaultVelocity uint8 = 100

// SendFunc writes one message to a port.
type SendFunc func(msg gomidi.Message) error

type sender struct {
	id   string
	send SendFunc
}

// TriggerOut turns rack trigger edges into note on/off messages. The
// destination can be swapped while Run is active; with no destination the
// events are consumed and discarded.
type TriggerOut struct {
	channel  uint8
	velocity uint8
	dest     atomic.Pointer[sender]
	sent     atomic.Uint64
	failed   atomic.Uint64
}

func NewTriggerOut(channel uint8) *TriggerOut {
	return &TriggerOut{channel: channel & 0x0F, velocity: DefaultVelocity}
}

// Attach routes notes to send. id names the destination in logs.
func (t *TriggerOut) Attach(id string, send SendFunc) {
	t.dest.Store(&sender{id: id, send: send})
	debug.Log("midi", "trigger out attached: %s", id)
}

// AttachPort opens out and routes notes to it.
func (t *TriggerOut) AttachPort(id string, out drivers.Out) error {
	send, err := gomidi.SendTo(out)
	if err != nil {
		return fmt.Errorf("open output %s: %w", id, err)
	}
	t.Attach(id, send)
	return nil
}

// Detach drops the destination if it is still id.
func (t *TriggerOut) Detach(id string) {
	d := t.dest.Load()
	if d != nil && d.id == id {
		t.dest.CompareAndSwap(d, nil)
		debug.Log("midi", "trigger out detached: %s", id)
	}
}

// Attached reports the current destination id.
func (t *TriggerOut) Attached() (string, bool) {
	if d := t.dest.Load(); d != nil {
		return d.id, true
	}
	return "", false
}

// Run consumes events until ctx is done or events is closed.
func (t *TriggerOut) Run(ctx context.Context, events <-chan rack.TriggerEvent) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case evt, ok := <-events:
			if !ok {
				return nil
			}
			t.Send(evt)
		}
	}
}

// Send writes one event to the current destination.
func (t *TriggerOut) Send(evt rack.TriggerEvent) {
	d := t.dest.Load()
	if d == nil {
		return
	}
	var msg gomidi.Message
	if evt.On {
		msg = gomidi.NoteOn(t.channel, evt.Note, t.velocity)
	} else {
		msg = gomidi.NoteOff(t.channel, evt.Note)
	}
	if err := d.send(msg); err != nil {
		t.failed.Add(1)
		debug.LogEvery(50, "midi", "send to %s failed: %v", d.id, err)
		return
	}
	t.sent.Add(1)
}

// Sent counts messages written successfully.
func (t *TriggerOut) Sent() uint64 {
	return t.sent.Load()
}

// Failed counts messages the destination rejected.
func (t *TriggerOut) Failed() uint64 {
	return t.failed.Load()
}
