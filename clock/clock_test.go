package clock

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrackerSumsDeltasAcrossGaps(t *testing.T) {
	var tr Tracker
	assert.Equal(t, Uninitialized, tr.State())

	// Start mid-stream: the first value seeds the counter directly.
	tr.Advance(10)
	assert.Equal(t, Tracking, tr.State())
	assert.Equal(t, uint32(10), tr.Count())

	tr.Restore(0)
	for _, in := range []uint32{11, 12, 15, 16} {
		tr.Advance(in)
	}
	// deltas 1,1,3,1 from the restored zero
	assert.Equal(t, uint32(6), tr.Count())

	tr.Restore(100)
	tr.Advance(20)
	assert.Equal(t, uint32(104), tr.Count())
}

func TestTrackerZeroKeepsTracking(t *testing.T) {
	var tr Tracker
	tr.Advance(10)
	tr.Zero()
	assert.Equal(t, Tracking, tr.State())
	assert.Equal(t, uint32(0), tr.Count())

	tr.Advance(11)
	assert.Equal(t, uint32(1), tr.Count())
	assert.True(t, tr.OnDivision(1))
	tr.Advance(14)
	assert.Equal(t, uint32(4), tr.Count())
}

func TestTrackerRestoreBeforeAnyTick(t *testing.T) {
	var tr Tracker
	tr.Restore(30)
	assert.Equal(t, Tracking, tr.State())

	// nothing to measure from yet, so the first tick counts as one
	tr.Advance(500)
	assert.Equal(t, uint32(31), tr.Count())
	tr.Advance(502)
	assert.Equal(t, uint32(33), tr.Count())

	tr.Zero()
	tr.Advance(FirstTick)
	assert.Equal(t, FirstTick, tr.Count(), "origin reset still wins")
}

func TestTrackerFirstTickReinitializes(t *testing.T) {
	var tr Tracker
	tr.Advance(40)
	tr.Advance(41)
	assert.Equal(t, uint32(41), tr.Count())

	tr.Advance(FirstTick)
	assert.Equal(t, uint32(1), tr.Count())
	tr.Advance(2)
	assert.Equal(t, uint32(2), tr.Count())
}

func TestTrackerRollbackReinitializes(t *testing.T) {
	var tr Tracker
	tr.Advance(100)
	tr.Advance(50)
	assert.Equal(t, uint32(50), tr.Count())
	tr.Advance(52)
	assert.Equal(t, uint32(52), tr.Count())
}

func TestTrackerReset(t *testing.T) {
	var tr Tracker
	tr.Advance(5)
	tr.Reset()
	assert.Equal(t, Uninitialized, tr.State())
	assert.Equal(t, uint32(0), tr.Count())
	assert.False(t, tr.OnDivision(6))
}

func TestOnDivision(t *testing.T) {
	var tr Tracker
	fired := 0
	for tick := uint32(1); tick <= 48; tick++ {
		tr.Advance(tick)
		if tr.OnDivision(DivisionAt(3).Ticks) {
			fired++
		}
	}
	assert.Equal(t, 2, fired, "quarter notes in two beats")
	assert.False(t, tr.OnDivision(0))
}

func TestDivisionTable(t *testing.T) {
	want := []uint32{48, 32, 72, 24, 16, 36, 12, 8, 18, 6, 4, 9}
	assert.Len(t, Divisions, 12)
	for i, w := range want {
		assert.Equal(t, w, Divisions[i].Ticks, Divisions[i].Name)
	}
	assert.Equal(t, Divisions[0], DivisionAt(-3))
	assert.Equal(t, Divisions[11], DivisionAt(99))
}

func TestGateAdoptsChangeOnlyOnSlowTick(t *testing.T) {
	g := NewGate(1)

	for i := 0; i < GateInterval-1; i++ {
		assert.Equal(t, 1.0, g.Process(5))
	}
	assert.Equal(t, 5.0, g.Process(5))
	assert.Equal(t, 5.0, g.Value())

	g.Set(2)
	assert.Equal(t, 2.0, g.Process(2))
}
