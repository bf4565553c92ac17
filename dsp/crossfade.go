package dsp

// EaseInOut is a cubic ease: 4t³ below 0.5, mirrored above.
func EaseInOut(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	u := 2*t - 2
	return (t-1)*u*u + 1
}

// FadeStep evaluates a fade from one value to another after elapsed seconds
// of a fade lasting duration seconds. done is true once the fade has reached
// its target. A non-positive duration is an instant cut.
func FadeStep(from, to, elapsed, duration float64) (value float64, done bool) {
	if duration <= 0 {
		return to, true
	}
	t := Clamp(elapsed/duration, 0, 1)
	return Mix(from, to, EaseInOut(t)), t >= 1
}

// Crossfade smooths a switch between two discrete values over a fixed
// duration. Restarting mid-fade begins from the value currently being
// emitted, so a retrigger never jumps.
type Crossfade struct {
	Duration float64 `json:"fadeTime"`
	Elapsed  float64 `json:"fadeProgress"`
	Fading   bool    `json:"isFading"`
	From     float64 `json:"from"`
	Last     float64 `json:"last"`
}

// Start begins a new fade. duration <= 0 disables fading so the next
// Process returns the target directly.
func (c *Crossfade) Start(duration float64) {
	if duration <= 0 {
		c.Fading = false
		return
	}
	c.Duration = duration
	c.Elapsed = 0
	c.From = c.Last
	c.Fading = true
}

// Process advances the fade by dt and returns the blended value toward
// target.
func (c *Crossfade) Process(target, dt float64) float64 {
	if !c.Fading {
		c.Last = target
		return target
	}

	c.Elapsed += dt
	v, done := FadeStep(c.From, target, c.Elapsed, c.Duration)
	if done {
		c.Fading = false
	}
	c.Last = v
	return v
}

// Reset drops any fade in progress and pins the output to v.
func (c *Crossfade) Reset(v float64) {
	c.Fading = false
	c.Elapsed = 0
	c.From = v
	c.Last = v
}
