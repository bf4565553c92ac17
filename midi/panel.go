package midi

import (
	"context"
	"time"

	"go-omen/debug"
	"go-omen/rack"
	"go-omen/seed"
)

// Panel layout on the grid, row 0 at the bottom:
//
//	row 0     seed buttons 1-6, lit with the origin's seed lights
//	row 1     clock, reset, randomize
//	rows 2-7  module lights, rightmost module on row 2
const (
	panelSeedRow      = 0
	panelTransportRow = 1
	panelClockCol     = 0
	panelResetCol     = 1
	panelRandomCol    = 2
	panelFirstRow     = 2
	panelLastRow      = 7
	panelCols         = 8
)

var (
	colorClock  = [3]uint8{255, 255, 255}
	colorReset  = [3]uint8{255, 100, 0}
	colorRandom = [3]uint8{150, 0, 200}
)

type pad struct{ row, col int }

// Panel maps a grid controller onto the origin's buttons and mirrors the
// rack's lights back onto the pads.
type Panel struct {
	ctrl   Controller
	target Target
	shown  map[pad][3]uint8
}

func NewPanel(ctrl Controller, target Target) *Panel {
	return &Panel{ctrl: ctrl, target: target, shown: make(map[pad][3]uint8)}
}

// HandlePad applies one press. It reports whether the pad is mapped.
func (p *Panel) HandlePad(ev PadEvent) bool {
	switch {
	case ev.Row == panelSeedRow && ev.Col < seed.Positions:
		p.target.Press(ev.Col)
	case ev.Row == panelTransportRow && ev.Col == panelClockCol:
		p.target.Clock()
	case ev.Row == panelTransportRow && ev.Col == panelResetCol:
		p.target.Reset()
	case ev.Row == panelTransportRow && ev.Col == panelRandomCol:
		p.target.Randomize()
	default:
		return false
	}
	return true
}

// Diff returns the pad updates needed to show snap and remembers them as
// shown.
func (p *Panel) Diff(snap *rack.Snapshot, origin int) []LEDUpdate {
	want := make(map[pad][3]uint8)
	want[pad{panelTransportRow, panelClockCol}] = colorClock
	want[pad{panelTransportRow, panelResetCol}] = colorReset
	want[pad{panelTransportRow, panelRandomCol}] = colorRandom

	if snap != nil {
		if origin >= 0 && origin < len(snap.Modules) {
			lights := snap.Modules[origin].Lights
			for i := 0; i < seed.Positions && i < len(lights); i++ {
				want[pad{panelSeedRow, i}] = lightRGB(lights[i])
			}
		}
		row := panelLastRow
		for i, m := range snap.Modules {
			if i == origin || row < panelFirstRow {
				continue
			}
			for col := 0; col < panelCols && col < len(m.Lights); col++ {
				want[pad{row, col}] = lightRGB(m.Lights[col])
			}
			row--
		}
	}

	var updates []LEDUpdate
	for k, c := range want {
		if old, ok := p.shown[k]; ok && old == c {
			continue
		}
		p.shown[k] = c
		updates = append(updates, LEDUpdate{Row: k.row, Col: k.col, Color: c})
	}
	for k, old := range p.shown {
		if _, ok := want[k]; ok || old == ([3]uint8{}) {
			continue
		}
		p.shown[k] = [3]uint8{}
		updates = append(updates, LEDUpdate{Row: k.row, Col: k.col})
	}
	return updates
}

// Run handles pad presses and refreshes the pads every interval until ctx
// is done or the controller closes its event channel.
func (p *Panel) Run(ctx context.Context, snapshot func() *rack.Snapshot, origin int, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-p.ctrl.PadEvents():
			if !ok {
				return
			}
			p.HandlePad(ev)
		case <-ticker.C:
			if err := p.ctrl.SetLEDBatch(p.Diff(snapshot(), origin)); err != nil {
				debug.LogEvery(20, "panel", "%s: led update failed: %v", p.ctrl.ID(), err)
			}
		}
	}
}

func lightRGB(l rack.Light) [3]uint8 {
	return [3]uint8{unitByte(l.R), unitByte(l.G), unitByte(l.B)}
}

func unitByte(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	}
	return uint8(v*255 + 0.5)
}
