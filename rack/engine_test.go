package rack

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"go-omen/clock"
	"go-omen/seed"
	"go-omen/selector"
)

// settle is enough frames for a pressed button or pulsed input to release.
const settle = 100

func clockPulses(r *Rack, n int) {
	for i := 0; i < n; i++ {
		r.Clock()
		r.Run(settle)
	}
}

func TestSeedReachesWholeChainInOneFrame(t *testing.T) {
	o := NewOracle()
	fate, kron, blank, moira := NewFate(), NewKron(), NewBlank(), NewMoira()
	r := NewRack(48000, o, fate, kron, blank, moira)

	r.Step()
	want := seed.Configuration{}.Seed()
	for _, s := range []seeded{o, fate, kron, blank, moira} {
		assert.Equal(t, want, s.Seed())
	}

	require.True(t, r.Press(2))
	r.Run(1)
	want = seed.Configuration{seed.A, seed.A, seed.B}.Seed()
	assert.Equal(t, want, o.Seed())
	for _, s := range []seeded{fate, kron, blank, moira} {
		assert.Equal(t, want, s.Seed())
	}
	assert.Equal(t, want, moira.field.Seed(), "noise field rebuilt")
	assert.Equal(t, uint64(2), moira.link.Delivered())
}

func TestSecondOracleStartsNewChain(t *testing.T) {
	first, second := NewOracle(), NewOracle()
	fate, kron := NewFate(), NewKron()
	second.SetConfiguration(seed.Configuration{seed.F, seed.E})
	r := NewRack(48000, first, fate, second, kron)

	r.Run(1)
	assert.Equal(t, first.Seed(), fate.Seed())
	assert.Equal(t, second.Seed(), kron.Seed())
	assert.NotEqual(t, first.Seed(), second.Seed())
	assert.False(t, fate.link.Connected())
}

func TestClockAndReset(t *testing.T) {
	o, kron, tale := NewOracle(), NewKron(), NewTale()
	r := NewRack(48000, o, kron, tale)
	r.Run(1)

	clockPulses(r, 3)
	assert.Equal(t, uint32(3), o.Tick())
	assert.Equal(t, uint32(3), kron.Tick())
	assert.Equal(t, uint32(3), tale.Tick())

	tale.phase = 12
	r.Reset()
	r.Run(settle)
	assert.Equal(t, uint32(0), o.Tick())
	assert.Equal(t, clock.Uninitialized, kron.tracker.State())
	assert.Less(t, tale.phase, 1.0)

	clockPulses(r, 1)
	assert.Equal(t, uint32(1), kron.Tick())
}

func TestClockBurstIsNotMerged(t *testing.T) {
	o, kron := NewOracle(), NewKron()
	r := NewRack(48000, o, kron)
	r.Run(1)

	for i := 0; i < 4; i++ {
		require.True(t, r.Clock())
	}
	r.Run(settle * 8)
	assert.Equal(t, uint32(4), o.Tick())
	assert.Equal(t, uint32(4), kron.Tick())
}

func TestKronFiresOnDivision(t *testing.T) {
	o, kron := NewOracle(), NewKron()
	kron.Params[KronDensity].Set(100)
	r := NewRack(48000, o, kron)
	require.NoError(t, r.Watch(Trigger{Module: 1, Output: KronOut, Note: 36}))

	clockPulses(r, 23)
	assert.Empty(t, r.Triggers())

	clockPulses(r, 1)
	assert.Equal(t, selector.Fired, kron.Last())
	require.Len(t, r.Triggers(), 2)
	on := <-r.Triggers()
	off := <-r.Triggers()
	assert.Equal(t, TriggerEvent{Module: 1, Output: KronOut, Note: 36, On: true}, on)
	assert.False(t, off.On)

	r.Send(Command{Kind: CmdSetInput, Module: 1, Index: KronMuteIn, Value: 10})
	clockPulses(r, 24)
	assert.Equal(t, selector.Blocked, kron.Last())
	assert.Empty(t, r.Triggers())
	assert.Equal(t, Light{R: 1}, kron.Lights[0])
}

func TestKronMuteHasHysteresis(t *testing.T) {
	o, kron := NewOracle(), NewKron()
	kron.Params[KronDensity].Set(100)
	r := NewRack(48000, o, kron)

	r.Send(Command{Kind: CmdSetInput, Module: 1, Index: KronMuteIn, Value: 10})
	clockPulses(r, 24)
	assert.Equal(t, selector.Blocked, kron.Last())

	r.Send(Command{Kind: CmdSetInput, Module: 1, Index: KronMuteIn, Value: 0.5})
	clockPulses(r, 24)
	assert.Equal(t, selector.Blocked, kron.Last(), "between thresholds stays muted")

	r.Send(Command{Kind: CmdSetInput, Module: 1, Index: KronMuteIn, Value: 0})
	clockPulses(r, 24)
	assert.Equal(t, selector.Fired, kron.Last())
}

func TestKronLocalResetRealignsDivision(t *testing.T) {
	o, kron := NewOracle(), NewKron()
	kron.Params[KronDensity].Set(100)
	r := NewRack(48000, o, kron)
	require.NoError(t, r.Watch(Trigger{Module: 1, Output: KronOut, Note: 36}))

	clockPulses(r, 10)
	r.Send(Command{Kind: CmdTrigger, Module: 1, Index: KronResetIn})
	r.Run(settle)
	assert.Equal(t, clock.Tracking, kron.tracker.State())
	assert.Equal(t, uint32(0), kron.Tick())
	assert.Equal(t, uint32(10), o.Tick())

	clockPulses(r, 14)
	assert.Equal(t, uint32(24), o.Tick())
	assert.Equal(t, uint32(14), kron.Tick())
	assert.Empty(t, r.Triggers(), "origin quarter note is not kron's")

	clockPulses(r, 10)
	assert.Equal(t, uint32(24), kron.Tick())
	assert.Equal(t, selector.Fired, kron.Last())
	assert.Len(t, r.Triggers(), 2)
}

func TestKronDivisionChangeIsGated(t *testing.T) {
	kron := NewKron()
	r := NewRack(48000, NewOracle(), kron)
	kron.Params[KronDivision].Set(9)
	r.Run(clock.GateInterval - 1)
	assert.Equal(t, "1/4", kron.Division().Name)
	r.Run(1)
	assert.Equal(t, "1/16", kron.Division().Name)
}

func TestRenderTapsOutput(t *testing.T) {
	o, moira := NewOracle(), NewMoira()
	for _, p := range []int{MoiraXValue, MoiraYValue, MoiraZValue} {
		moira.Params[p].Set(5)
	}
	r := NewRack(48000, o, moira)
	require.NoError(t, r.SetTap(Tap{Module: 1, Output: MoiraOut}))

	r.Send(Command{Kind: CmdTrigger, Module: 1, Index: MoiraTriggerIn})
	buf := make([]float32, 2*64)
	r.Render(buf, 2)
	assert.Equal(t, float32(0.5), buf[0])
	assert.Equal(t, float32(0.5), buf[127])
	assert.Equal(t, int64(64), r.Frame())

	assert.Error(t, r.SetTap(Tap{Module: 1, Output: 99}))
	assert.Error(t, r.SetTap(Tap{Module: 7}))
}

func TestSendDoesNotBlock(t *testing.T) {
	r := NewRack(48000, NewOracle())
	sent := 0
	for i := 0; i < commandBuffer*2; i++ {
		if r.Send(Command{Kind: CmdSetParam, Module: 0, Index: 0}) {
			sent++
		}
	}
	assert.Equal(t, commandBuffer, sent)
}

func TestRandomizeRepublishes(t *testing.T) {
	o, fate := NewOracle(), NewFate()
	r := NewRack(48000, o, fate)
	r.Run(1)

	for i := 0; i < 5; i++ {
		require.True(t, r.Randomize())
		r.Run(1)
		assert.Equal(t, o.Configuration().Seed(), fate.Seed())
	}
}

func TestCommandErrorsAreDropped(t *testing.T) {
	r := NewRack(48000, NewFate())
	assert.True(t, r.Clock(), "queued even without an origin")
	r.Send(Command{Kind: CmdRandomize, Module: 0})
	r.Send(Command{Kind: CmdSetParam, Module: 0, Index: 42})
	assert.NotPanics(t, func() { r.Run(1) })
}

func TestSnapshot(t *testing.T) {
	o, kron := NewOracle(), NewKron()
	r := NewRack(48000, o, kron)
	r.Run(10)

	snap := r.Snapshot()
	require.NotNil(t, snap)
	require.Len(t, snap.Modules, 2)
	assert.Equal(t, int64(10), snap.Frame)
	assert.Equal(t, KindOracle, snap.Modules[0].Kind)
	assert.True(t, snap.Modules[0].Connected)
	assert.Equal(t, o.Seed(), snap.Modules[1].Seed)
	assert.Len(t, snap.Modules[0].Lights, seed.Positions)
	assert.Contains(t, snap.Modules[1].Summary, "div=1/4")
}

func TestCaptureFromAnotherGoroutine(t *testing.T) {
	defer goleak.VerifyNone(t)

	r := NewRack(48000, NewOracle(), NewMoira())
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		buf := make([]float32, 256)
		for ctx.Err() == nil {
			r.Render(buf, 2)
			time.Sleep(time.Millisecond)
		}
	}()

	st, err := r.Capture(ctx)
	require.NoError(t, err)
	assert.Len(t, st.Modules, 2)

	cancel()
	<-done
}
