package selector

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// scripted returns a fixed unit value for the primary phase and another
// for anything at or beyond AuxOffset.
type scripted struct {
	primary, aux float64
	calls        int
}

func (s *scripted) Sample(lane, t float64) float64 {
	s.calls++
	if t >= AuxOffset {
		return 2*s.aux - 1
	}
	return 2*s.primary - 1
}

func TestNormalize(t *testing.T) {
	p := Normalize(50, 50, 100)
	assert.InDelta(t, 0.25, p.X, 1e-12)
	assert.InDelta(t, 0.25, p.Y, 1e-12)
	assert.InDelta(t, 0.5, p.Z, 1e-12)

	assert.Equal(t, Probabilities{}, Normalize(0, 0, 0))
	assert.Equal(t, Probabilities{Y: 1}, Normalize(-3, 4, 0))
}

func TestPartitionIntervals(t *testing.T) {
	p := Normalize(1, 1, 2)
	counts := map[Choice]int{}
	const n = 10000
	for i := 0; i < n; i++ {
		counts[p.Partition(float64(i)/n)]++
	}
	assert.Equal(t, 2500, counts[X])
	assert.Equal(t, 2500, counts[Y])
	assert.Equal(t, 5000, counts[Z])
	assert.Zero(t, counts[None])
}

func TestPartitionResidueGoesToLastNonzero(t *testing.T) {
	p := Probabilities{X: 0.3, Y: 0.7}
	assert.Equal(t, Y, p.Partition(1))
	assert.Equal(t, X, p.Partition(0))

	p = Probabilities{Z: 1}
	assert.Equal(t, Z, p.Partition(0))
}

func TestZeroWeightBranchNeverChosen(t *testing.T) {
	p := Normalize(1, 0, 1)
	for i := 0; i <= 100; i++ {
		main, aux := Pick(p, float64(i)/100, float64(100-i)/100)
		assert.NotEqual(t, Y, main)
		assert.NotEqual(t, Y, aux)
	}
}

func TestPickAuxComesFromRemaining(t *testing.T) {
	p := Normalize(1, 1, 1)
	for i := 0; i <= 20; i++ {
		for j := 0; j <= 20; j++ {
			main, aux := Pick(p, float64(i)/20, float64(j)/20)
			assert.NotEqual(t, None, main)
			assert.NotEqual(t, main, aux)
		}
	}
}

func TestPickAuxFallsBackToPrimary(t *testing.T) {
	main, aux := Pick(Normalize(0, 5, 0), 0.9, 0.1)
	assert.Equal(t, Y, main)
	assert.Equal(t, Y, aux)
}

func TestPickZeroTotal(t *testing.T) {
	main, aux := Pick(Probabilities{}, 0.5, 0.5)
	assert.Equal(t, None, main)
	assert.Equal(t, None, aux)
}

func TestWeightedHoldsWithoutTrigger(t *testing.T) {
	w := NewWeighted()
	f := &scripted{primary: 0.1, aux: 0.9}
	p := Normalize(1, 1, 1)

	w.Process(true, p, f, 1, 0)
	assert.Equal(t, X, w.Main.Current)
	assert.Equal(t, Z, w.Aux.Current)
	assert.True(t, w.Main.Changed())
	assert.Equal(t, 2, f.calls)

	w.Process(false, p, f, 1, 0)
	assert.Equal(t, X, w.Main.Current)
	assert.Equal(t, Z, w.Aux.Current)
	assert.False(t, w.Main.Changed())
	assert.Equal(t, 2, f.calls, "no sampling without a trigger")

	w.Process(true, Probabilities{}, f, 1, 0)
	assert.Equal(t, None, w.Main.Current)
	assert.Equal(t, X, w.Main.Previous)
}

func TestChangeTracker(t *testing.T) {
	tr := NewChangeTracker()
	assert.False(t, tr.Process(None))
	assert.True(t, tr.Process(Y))
	assert.Equal(t, None, tr.Previous)
	assert.False(t, tr.Process(Y))
	assert.True(t, tr.Process(X))
	assert.Equal(t, Y, tr.Previous)

	tr.Restore(7, 1)
	assert.Equal(t, None, tr.Current)
	assert.Equal(t, Y, tr.Previous)
	assert.False(t, tr.Changed())
}

func TestHoldUntilRelease(t *testing.T) {
	h := NewHold()
	f := &scripted{primary: 0.8}

	assert.Equal(t, HoldA, h.Process(true, 0, f, 1, 0))
	f.primary = 0.1
	assert.Equal(t, HoldA, h.Process(true, 0, f, 1, 0), "sampled once per rising edge")
	assert.Equal(t, HoldNone, h.Process(false, 0, f, 1, 0))
	assert.Equal(t, HoldB, h.Process(true, 0, f, 1, 0))
}

func TestHoldLatch(t *testing.T) {
	h := NewHold()
	h.Latch = true
	f := &scripted{primary: 0.8}

	h.Process(true, 0, f, 1, 0)
	assert.Equal(t, HoldA, h.Process(false, 0, f, 1, 0))
	f.primary = 0.2
	assert.Equal(t, HoldB, h.Process(true, 0, f, 1, 0))
}

func TestBias(t *testing.T) {
	assert.InDelta(t, -1, BiasFromParam(0), 1e-12)
	assert.InDelta(t, 0, BiasFromParam(50), 1e-12)
	assert.InDelta(t, 1, BiasFromCV(5), 1e-12)
	assert.Equal(t, HoldNone, ParseHoldState(9))
}

func TestDensityGate(t *testing.T) {
	var g DensityGate
	f := &scripted{primary: 0.25} // 25 on the 0..100 scale

	assert.Equal(t, Idle, g.Process(false, 100, false, f, 1, 0))
	assert.Equal(t, Fired, g.Process(true, 25, false, f, 1, 0))
	assert.Equal(t, Idle, g.Process(true, 24, false, f, 1, 0))
	assert.Equal(t, Blocked, g.Process(true, 80, true, f, 1, 0))
	assert.Equal(t, Blocked, g.Last)
	assert.Equal(t, Idle, g.Process(true, 0, false, &scripted{}, 1, 0), "zero density on a zero sample")
}

func TestDensityCV(t *testing.T) {
	assert.Equal(t, 80.0, Density(80, 0, false))
	assert.InDelta(t, 40, Density(80, 5, true), 1e-12)
	assert.InDelta(t, 80, Density(80, 12, true), 1e-12)
	assert.Zero(t, Density(80, -1, true))
}
