package dsp

import "math"

// SlewOff disables rate limiting when passed to SetMillisPerVolt.
const SlewOff = 0.0

// SlewStep moves prev toward target by at most maxDelta. It never
// overshoots.
func SlewStep(prev, target, maxDelta float64) float64 {
	if math.IsInf(maxDelta, 1) {
		return target
	}
	d := target - prev
	if d > maxDelta {
		return prev + maxDelta
	}
	if d < -maxDelta {
		return prev - maxDelta
	}
	return target
}

// Slew is a linear rate limiter. Rate is in volts per second; +Inf means
// unlimited.
type Slew struct {
	Rate  float64
	Value float64
}

// NewSlew builds a limiter from a ms-per-volt setting.
func NewSlew(msPerVolt float64) Slew {
	s := Slew{}
	s.SetMillisPerVolt(msPerVolt)
	return s
}

// SetMillisPerVolt converts the panel unit to volts/second. Values <= 0
// (SlewOff) turn limiting off.
func (s *Slew) SetMillisPerVolt(ms float64) {
	if ms <= SlewOff {
		s.Rate = math.Inf(1)
		return
	}
	s.Rate = 1000 / ms
}

// Process moves the held value toward target for one frame of dt seconds.
func (s *Slew) Process(target, dt float64) float64 {
	if math.IsInf(s.Rate, 1) {
		s.Value = target
		return target
	}
	s.Value = SlewStep(s.Value, target, s.Rate*dt)
	return s.Value
}

func (s *Slew) Reset(v float64) {
	s.Value = v
}
