package dsp

// Default gate thresholds in volts.
const (
	GateLow  = 0.1
	GateHigh = 1.0
)

// SchmittTrigger turns a continuous voltage into a gate with hysteresis.
type SchmittTrigger struct {
	high bool
}

// Process uses the default 0.1V/1V thresholds and reports a rising edge.
func (s *SchmittTrigger) Process(in float64) bool {
	return s.ProcessThresholds(in, GateLow, GateHigh)
}

// ProcessThresholds reports true only on the frame the input crosses high
// after having been below low.
func (s *SchmittTrigger) ProcessThresholds(in, low, high float64) bool {
	if s.high {
		if in <= low {
			s.high = false
		}
		return false
	}
	if in >= high {
		s.high = true
		return true
	}
	return false
}

// IsHigh reports the current gate state.
func (s *SchmittTrigger) IsHigh() bool {
	return s.high
}

func (s *SchmittTrigger) Reset() {
	s.high = false
}

// BooleanTrigger detects false->true transitions, once per press no matter
// how long the button is held.
type BooleanTrigger struct {
	state bool
}

func (b *BooleanTrigger) Process(in bool) bool {
	rising := in && !b.state
	b.state = in
	return rising
}

func (b *BooleanTrigger) Reset() {
	b.state = false
}

// PulseGenerator emits a fixed-width high pulse.
type PulseGenerator struct {
	remaining float64
}

// Trigger starts (or extends) a pulse of the given width in seconds.
func (p *PulseGenerator) Trigger(width float64) {
	if width > p.remaining {
		p.remaining = width
	}
}

// Process advances the pulse by dt and reports whether it is high this frame.
func (p *PulseGenerator) Process(dt float64) bool {
	if p.remaining > 0 {
		p.remaining -= dt
		return true
	}
	return false
}

func (p *PulseGenerator) Reset() {
	p.remaining = 0
}

// ClockDivider fires once every Division calls.
type ClockDivider struct {
	division uint32
	count    uint32
}

// NewClockDivider creates a divider; divisions below 1 are treated as 1.
func NewClockDivider(division uint32) ClockDivider {
	d := ClockDivider{}
	d.SetDivision(division)
	return d
}

func (d *ClockDivider) SetDivision(division uint32) {
	if division < 1 {
		division = 1
	}
	d.division = division
}

func (d *ClockDivider) Division() uint32 {
	return d.division
}

// Process counts one call and reports true when the division is reached.
func (d *ClockDivider) Process() bool {
	if d.division == 0 {
		d.division = 1
	}
	d.count++
	if d.count >= d.division {
		d.count = 0
		return true
	}
	return false
}

func (d *ClockDivider) Reset() {
	d.count = 0
}
