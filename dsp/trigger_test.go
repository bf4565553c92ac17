package dsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSchmittTriggerHysteresis(t *testing.T) {
	var s SchmittTrigger

	assert.False(t, s.Process(0.5), "below high threshold")
	assert.True(t, s.Process(1.0), "rising edge")
	assert.False(t, s.Process(5.0), "still high")
	assert.False(t, s.Process(0.5), "inside hysteresis band")
	assert.True(t, s.IsHigh())
	assert.False(t, s.Process(0.05), "falls")
	assert.False(t, s.IsHigh())
	assert.True(t, s.Process(2.0), "second edge")
}

func TestBooleanTriggerOncePerPress(t *testing.T) {
	var b BooleanTrigger

	edges := 0
	for _, pressed := range []bool{false, true, true, true, false, true, false} {
		if b.Process(pressed) {
			edges++
		}
	}
	assert.Equal(t, 2, edges)
}

func TestPulseGeneratorWidth(t *testing.T) {
	var p PulseGenerator
	dt := 1.0 / 1000

	p.Trigger(3e-3)
	high := 0
	for i := 0; i < 10; i++ {
		if p.Process(dt) {
			high++
		}
	}
	assert.InDelta(t, 3, high, 1)
}

func TestClockDivider(t *testing.T) {
	d := NewClockDivider(4)
	fired := 0
	for i := 0; i < 16; i++ {
		if d.Process() {
			fired++
		}
	}
	assert.Equal(t, 4, fired)

	zero := NewClockDivider(0)
	assert.Equal(t, uint32(1), zero.Division())
	assert.True(t, zero.Process())
}

func TestRescale(t *testing.T) {
	assert.InDelta(t, -1.0, Rescale(0, 0, 100, -1, 1), 1e-12)
	assert.InDelta(t, 0.0, Rescale(50, 0, 100, -1, 1), 1e-12)
	assert.InDelta(t, 0.75, Rescale(2.5, -5, 5, 0, 1), 1e-12)
	assert.Equal(t, 1.0, Clamp(3, 0, 1))
}
