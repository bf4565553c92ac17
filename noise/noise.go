// Package noise provides the deterministic coherent-noise field every module
// samples from. Two modules holding the same seed read identical values at
// identical coordinates.
package noise

import (
	opensimplex "github.com/ojrac/opensimplex-go"
)

// Field is a reseedable 2-D OpenSimplex field with values in [-1, 1].
type Field struct {
	seed int
	gen  opensimplex.Noise
}

// New creates a field seeded with seed.
func New(seed int) *Field {
	return &Field{seed: seed, gen: opensimplex.New(int64(seed))}
}

// Reseed rebuilds the permutation tables. This allocates, so callers only
// reseed when the seed actually changes.
func (f *Field) Reseed(seed int) {
	f.seed = seed
	f.gen = opensimplex.New(int64(seed))
}

// Seed returns the seed the field was last built from.
func (f *Field) Seed() int {
	return f.seed
}

// Sample evaluates the field. lane selects an independent stream (the
// variant knob), t is the advancing phase.
func (f *Field) Sample(lane, t float64) float64 {
	v := f.gen.Eval2(lane, t)
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}

// Unit samples the field rescaled to [0, 1].
func (f *Field) Unit(lane, t float64) float64 {
	return (f.Sample(lane, t) + 1) * 0.5
}
