package rack

import "strings"

// MaxChannels is the polyphony limit of a port.
const MaxChannels = 16

// Port carries up to MaxChannels voltages. An input with no cable reads 0
// and reports zero channels.
type Port struct {
	Name string

	voltages  [MaxChannels]float64
	channels  int
	connected bool
}

func (p *Port) Voltage() float64 {
	return p.voltages[0]
}

// VoltageAt reads channel c. A monophonic input is duplicated to every
// channel.
func (p *Port) VoltageAt(c int) float64 {
	if p.channels <= 1 {
		return p.voltages[0]
	}
	if c < 0 || c >= p.channels {
		return 0
	}
	return p.voltages[c]
}

func (p *Port) SetVoltage(v float64) {
	p.voltages[0] = v
}

func (p *Port) SetVoltageAt(v float64, c int) {
	if c >= 0 && c < MaxChannels {
		p.voltages[c] = v
	}
}

func (p *Port) Channels() int {
	return p.channels
}

// SetChannels sets the channel count, zeroing channels that go unused.
func (p *Port) SetChannels(n int) {
	n = min(max(n, 0), MaxChannels)
	for c := n; c < p.channels; c++ {
		p.voltages[c] = 0
	}
	p.channels = n
}

func (p *Port) IsConnected() bool {
	return p.connected
}

// Connect marks the port as patched with the given channel count.
func (p *Port) Connect(channels int) {
	p.connected = true
	p.SetChannels(max(channels, 1))
}

// Disconnect unpatches the port and zeroes it.
func (p *Port) Disconnect() {
	p.connected = false
	p.SetChannels(0)
	p.voltages[0] = 0
}

// Param is a knob, slider or button.
type Param struct {
	Name    string
	Min     float64
	Max     float64
	Default float64
	Snap    bool

	value float64
}

func (p *Param) Value() float64 {
	return p.value
}

// Set clamps v into the param range and rounds snapped params.
func (p *Param) Set(v float64) {
	if v < p.Min {
		v = p.Min
	}
	if v > p.Max {
		v = p.Max
	}
	if p.Snap {
		v = float64(int(v + 0.5))
	}
	p.value = v
}

// Light is one RGB indicator, each component in [0, 1].
type Light struct {
	R, G, B float64
}

func (l *Light) Set(r, g, b float64) {
	l.R, l.G, l.B = r, g, b
}

func findPort(ports []Port, name string) int {
	for i := range ports {
		if strings.EqualFold(ports[i].Name, name) {
			return i
		}
	}
	return -1
}

func findParam(params []Param, name string) int {
	for i := range params {
		if strings.EqualFold(params[i].Name, name) {
			return i
		}
	}
	return -1
}
