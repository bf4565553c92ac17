// Package dsp holds the small per-frame building blocks shared by every
// module: edge detectors, pulse and divider counters, and the output
// smoothers that keep discrete selections click-free.
package dsp

// FreqA4 is concert A, used as the phase speed of the fastest modules.
const FreqA4 = 440.0

// Clamp limits x to [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// Rescale maps x linearly from [xMin, xMax] to [yMin, yMax]. No clamping.
func Rescale(x, xMin, xMax, yMin, yMax float64) float64 {
	return yMin + (x-xMin)/(xMax-xMin)*(yMax-yMin)
}

// Mix linearly blends a toward b by p (0 = a, 1 = b).
func Mix(a, b, p float64) float64 {
	return a + (b-a)*p
}
