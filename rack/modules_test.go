package rack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-omen/dsp"
	"go-omen/seed"
	"go-omen/selector"
)

func TestOracleMergesFlagsIntoOneMessage(t *testing.T) {
	o, blank := NewOracle(), NewBlank()
	r := NewRack(48000, o, blank)
	r.Run(1)
	before := blank.link.Delivered()

	r.Press(0)
	r.Reset()
	r.Clock()
	r.Run(1)

	assert.Equal(t, before+1, blank.link.Delivered())
	assert.Equal(t, uint32(1), o.Tick(), "reset applies before the clock")
	assert.Equal(t, seed.B, o.Configuration()[0])
}

func TestOracleLightsFollowStates(t *testing.T) {
	o := NewOracle()
	o.SetConfiguration(seed.Configuration{seed.A, seed.B, seed.C, seed.D, seed.E, seed.F})
	o.Process(nil, ProcessArgs{SampleRate: 48000, SampleTime: 1.0 / 48000})
	assert.Equal(t, Light{R: 1}, o.Lights[0])
	assert.Equal(t, Light{G: 1}, o.Lights[1])
	assert.Equal(t, Light{R: 1, B: 1}, o.Lights[5])
}

func TestFateRoutesGate(t *testing.T) {
	fate := NewFate()
	r := NewRack(48000, NewOracle(), fate)

	r.Send(Command{Kind: CmdSetInput, Module: 1, Index: FateIn, Value: 10})
	r.Run(10)
	a, b := fate.Outputs[FateOutA].Voltage(), fate.Outputs[FateOutB].Voltage()
	assert.Equal(t, 10.0, a+b, "exactly one branch is high")
	assert.NotEqual(t, selector.HoldNone, fate.State())

	r.Send(Command{Kind: CmdSetInput, Module: 1, Index: FateIn, Value: 0})
	r.Run(1)
	assert.Equal(t, selector.HoldNone, fate.State())
	assert.Zero(t, fate.Outputs[FateOutA].Voltage()+fate.Outputs[FateOutB].Voltage())
}

func TestFateBiasExtremes(t *testing.T) {
	fate := NewFate()
	r := NewRack(48000, NewOracle(), fate)

	fate.Params[FateBias].Set(0) // bias -1, noise always >= bias
	r.Send(Command{Kind: CmdSetInput, Module: 1, Index: FateIn, Value: 10})
	r.Run(1)
	assert.Equal(t, selector.HoldA, fate.State())

	r.Send(Command{Kind: CmdSetInput, Module: 1, Index: FateIn, Value: 0})
	r.Send(Command{Kind: CmdSetInput, Module: 1, Index: FateBiasIn, Value: 5.5})
	r.Run(1)
	r.Send(Command{Kind: CmdSetInput, Module: 1, Index: FateIn, Value: 10})
	r.Run(1)
	assert.Equal(t, selector.HoldB, fate.State(), "CV overrides the knob")
}

func TestFateLatchOption(t *testing.T) {
	fate := NewFate()
	require.NoError(t, fate.SetOption("latch", true))
	assert.True(t, fate.Latch())
	assert.Error(t, fate.SetOption("bogus", true))

	r := NewRack(48000, NewOracle(), fate)
	r.Send(Command{Kind: CmdSetInput, Module: 1, Index: FateIn, Value: 10})
	r.Run(1)
	held := fate.State()
	r.Send(Command{Kind: CmdSetInput, Module: 1, Index: FateIn, Value: 0})
	r.Run(1)
	assert.Equal(t, held, fate.State())
}

func TestMoiraSingleBranch(t *testing.T) {
	moira := NewMoira()
	moira.Params[MoiraXProb].Set(0)
	moira.Params[MoiraZProb].Set(0)
	moira.Params[MoiraYValue].Set(3)
	r := NewRack(48000, NewOracle(), moira)

	r.Send(Command{Kind: CmdTrigger, Module: 1, Index: MoiraTriggerIn})
	r.Run(1)
	assert.Equal(t, selector.Y, moira.Main())
	assert.Equal(t, selector.Y, moira.Aux(), "no other branch has weight")
	assert.Equal(t, 3.0, moira.Outputs[MoiraOut].Voltage())
	assert.Equal(t, 10.0, moira.Outputs[MoiraYChosen].Voltage())
	assert.Zero(t, moira.Outputs[MoiraXChosen].Voltage())

	r.Run(settle)
	assert.Zero(t, moira.Outputs[MoiraYChosen].Voltage(), "chosen pulse ends")
	assert.Equal(t, selector.Y, moira.Main(), "held between triggers")
}

func TestMoiraResetCutsChosenPulse(t *testing.T) {
	moira := NewMoira()
	moira.Params[MoiraYProb].Set(0)
	moira.Params[MoiraZProb].Set(0)
	r := NewRack(48000, NewOracle(), moira)

	r.Send(Command{Kind: CmdTrigger, Module: 1, Index: MoiraTriggerIn})
	r.Run(1)
	require.Equal(t, 10.0, moira.Outputs[MoiraXChosen].Voltage())

	r.Reset()
	r.Run(2)
	assert.Zero(t, moira.Outputs[MoiraXChosen].Voltage())
}

func TestMoiraZeroWeightsGoDark(t *testing.T) {
	moira := NewMoira()
	for _, p := range []int{MoiraXProb, MoiraYProb, MoiraZProb} {
		moira.Params[p].Set(0)
	}
	moira.Params[MoiraXValue].Set(4)
	r := NewRack(48000, NewOracle(), moira)

	r.Send(Command{Kind: CmdTrigger, Module: 1, Index: MoiraTriggerIn})
	r.Run(moiraLightEvery)
	assert.Equal(t, selector.None, moira.Main())
	assert.Zero(t, moira.Outputs[MoiraOut].Voltage())
	for _, l := range moira.Lights {
		assert.Equal(t, Light{}, l)
	}
}

func TestMoiraAuxDiffersFromMain(t *testing.T) {
	moira := NewMoira()
	r := NewRack(48000, NewOracle(), moira)
	for i := 0; i < 20; i++ {
		r.Send(Command{Kind: CmdTrigger, Module: 1, Index: MoiraTriggerIn})
		r.Run(settle)
		require.NotEqual(t, selector.None, moira.Main())
		assert.NotEqual(t, moira.Main(), moira.Aux())
	}
}

func TestMoiraCrossfade(t *testing.T) {
	moira := NewMoira()
	moira.Params[MoiraYProb].Set(0)
	moira.Params[MoiraZProb].Set(0)
	moira.Params[MoiraXValue].Set(8)
	moira.Params[MoiraFade].Set(0.01)
	r := NewRack(1000, NewOracle(), moira)

	r.Send(Command{Kind: CmdTrigger, Module: 1, Index: MoiraTriggerIn})
	r.Run(1)
	v := moira.Outputs[MoiraOut].Voltage()
	assert.Greater(t, v, 0.0)
	assert.Less(t, v, 8.0)

	r.Run(10)
	assert.Equal(t, 8.0, moira.Outputs[MoiraOut].Voltage())
}

func TestMoiraPolyValueInputs(t *testing.T) {
	moira := NewMoira()
	moira.Params[MoiraYProb].Set(0)
	moira.Params[MoiraZProb].Set(0)
	moira.Params[MoiraXValue].Set(10) // full attenuation range
	in := &moira.Inputs[MoiraXValueIn]
	in.Connect(3)
	in.SetVoltageAt(1, 0)
	in.SetVoltageAt(2, 1)
	in.SetVoltageAt(3, 2)
	r := NewRack(48000, NewOracle(), moira)

	r.Send(Command{Kind: CmdTrigger, Module: 1, Index: MoiraTriggerIn})
	r.Run(1)
	out := &moira.Outputs[MoiraOut]
	require.Equal(t, 3, out.Channels())
	assert.Equal(t, 1.0, out.VoltageAt(0))
	assert.Equal(t, 2.0, out.VoltageAt(1))
	assert.Equal(t, 3.0, out.VoltageAt(2))
}

func TestTaleSpeedRange(t *testing.T) {
	assert.InDelta(t, TaleMinSpeed, Speed(0), 1e-12)
	assert.InDelta(t, TaleMaxSpeed, Speed(1), 1e-9)
	assert.Less(t, Speed(0.4), Speed(0.6))
}

func TestTaleOutputRangeAndHold(t *testing.T) {
	tale := NewTale()
	tale.Params[TalePace].Set(1)
	r := NewRack(48000, NewOracle(), tale)

	for i := 0; i < 2000; i++ {
		r.Step()
		v := tale.Outputs[TaleOut].Voltage()
		require.GreaterOrEqual(t, v, -5.0)
		require.LessOrEqual(t, v, 5.0)
	}

	r.Send(Command{Kind: CmdTrigger, Module: 1, Index: TaleSampleIn})
	r.Run(1)
	held := tale.Outputs[TaleOut].Voltage()
	r.Run(500)
	assert.Equal(t, held, tale.Outputs[TaleOut].Voltage())
}

func TestTaleSlew(t *testing.T) {
	tale := NewTale()
	tale.Params[TaleSlew].Set(1000) // 1 V/s
	tale.held = 1                   // +5 V once rescaled
	tale.Inputs[TaleSampleIn].Connect(1)
	r := NewRack(1000, NewOracle(), tale)

	r.Run(1)
	assert.InDelta(t, 0.001, tale.Outputs[TaleOut].Voltage(), 1e-9)

	tale.Params[TaleSlew].Set(dsp.SlewOff)
	r.Run(1)
	assert.Equal(t, 5.0, tale.Outputs[TaleOut].Voltage())
}

func TestPortChannels(t *testing.T) {
	var p Port
	assert.Zero(t, p.Channels())
	p.Connect(0)
	assert.Equal(t, 1, p.Channels())
	p.SetVoltage(2)
	assert.Equal(t, 2.0, p.VoltageAt(5), "mono duplicates")

	p.SetChannels(40)
	assert.Equal(t, MaxChannels, p.Channels())
	assert.Zero(t, p.VoltageAt(20))

	p.Disconnect()
	assert.False(t, p.IsConnected())
	assert.Zero(t, p.Voltage())
}

func TestParamClampAndSnap(t *testing.T) {
	p := Param{Min: 1, Max: 128, Snap: true}
	p.Set(3.6)
	assert.Equal(t, 4.0, p.Value())
	p.Set(500)
	assert.Equal(t, 128.0, p.Value())
	p.Set(-1)
	assert.Equal(t, 1.0, p.Value())
}

func TestRegistry(t *testing.T) {
	for _, k := range Kinds() {
		m, err := New(k)
		require.NoError(t, err)
		assert.Equal(t, k, m.Base().Kind)
	}
	_, err := New("pythia")
	assert.Error(t, err)
	assert.Len(t, Kinds(), 6)
}
