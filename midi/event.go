package midi

// MIDI message types
const (
	NoteOn  uint8 = 0x90
	NoteOff uint8 = 0x80
	CC      uint8 = 0xB0
)

// System realtime bytes
const (
	TimingClock uint8 = 0xF8
	Start       uint8 = 0xFA
	Continue    uint8 = 0xFB
	Stop        uint8 = 0xFC
)

// Transport is a decoded system realtime message.
type Transport int

const (
	TransportNone Transport = iota
	TransportClock
	TransportStart
	TransportContinue
	TransportStop
)

func (t Transport) String() string {
	switch t {
	case TransportClock:
		return "clock"
	case TransportStart:
		return "start"
	case TransportContinue:
		return "continue"
	case TransportStop:
		return "stop"
	}
	return "none"
}

// Decode classifies a raw message. Anything that is not a single realtime
// byte decodes as TransportNone.
func Decode(msg []byte) Transport {
	if len(msg) != 1 {
		return TransportNone
	}
	switch msg[0] {
	case TimingClock:
		return TransportClock
	case Start:
		return TransportStart
	case Continue:
		return TransportContinue
	case Stop:
		return TransportStop
	}
	return TransportNone
}

// Target receives transport and panel actions. *rack.Rack satisfies it.
type Target interface {
	Clock() bool
	Reset() bool
	Press(i int) bool
	Randomize() bool
}
