package midi

import (
	"fmt"
	"strings"
	"sync/atomic"

	"go-omen/debug"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// Launchpad X SysEx bodies (without F0/F7).
var (
	sysexProgrammerMode = []byte{0x00, 0x20, 0x29, 0x02, 0x0C, 0x00, 0x7F}
	sysexBrightnessMax  = []byte{0x00, 0x20, 0x29, 0x02, 0x0C, 0x08, 0x7F}
	sysexLEDFeedback    = []byte{0x00, 0x20, 0x29, 0x02, 0x0C, 0x0A, 0x01, 0x01}
)

// LaunchpadController drives a Novation Launchpad X in programmer mode.
type LaunchpadController struct {
	id       string
	outPort  drivers.Out
	inPort   drivers.In
	send     func(msg gomidi.Message) error
	stopFunc func()
	ledSends atomic.Uint64

	padChan chan PadEvent
}

// NewLaunchpadController opens both ports and switches the device into
// programmer mode. Either port may be nil.
func NewLaunchpadController(id string, inPort drivers.In, outPort drivers.Out) (*LaunchpadController, error) {
	lp := &LaunchpadController{
		id:      id,
		inPort:  inPort,
		outPort: outPort,
		padChan: make(chan PadEvent, 32),
	}

	if outPort != nil {
		send, err := gomidi.SendTo(outPort)
		if err != nil {
			return nil, fmt.Errorf("open output: %w", err)
		}
		lp.send = send
		for _, body := range [][]byte{sysexProgrammerMode, sysexBrightnessMax, sysexLEDFeedback} {
			if err := lp.send(gomidi.SysEx(body)); err != nil {
				debug.Log("panel", "%s: sysex failed: %v", id, err)
			}
		}
	}

	if inPort != nil {
		stop, err := gomidi.ListenTo(inPort, lp.receive)
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		lp.stopFunc = stop
	}

	return lp, nil
}

func (lp *LaunchpadController) receive(msg gomidi.Message, timestampms int32) {
	var channel, key, value uint8
	row, col := -1, -1
	switch {
	case msg.GetNoteOn(&channel, &key, &value) && value > 0:
		row, col = noteToRowCol(key)
	case msg.GetControlChange(&channel, &key, &value) && value > 0:
		row, col = ccToRowCol(key)
	}
	if row < 0 {
		return
	}
	select {
	case lp.padChan <- PadEvent{Row: row, Col: col, Velocity: value}:
	default:
	}
}

func (lp *LaunchpadController) ID() string {
	return lp.id
}

func (lp *LaunchpadController) PadEvents() <-chan PadEvent {
	return lp.padChan
}

func (lp *LaunchpadController) SetLEDRGB(row, col int, rgb [3]uint8, channel uint8) error {
	if lp.send == nil {
		return nil
	}
	lp.ledSends.Add(1)
	return lp.send(gomidi.NoteOn(channel, rowColToNote(row, col), mapRGBToLaunchpad(rgb)))
}

// SetLEDBatch sends one NoteOn per update. Callers diff against what the
// pads already show, so batches stay small.
func (lp *LaunchpadController) SetLEDBatch(updates []LEDUpdate) error {
	if lp.send == nil || len(updates) == 0 {
		return nil
	}
	var firstErr error
	for _, u := range updates {
		err := lp.send(gomidi.NoteOn(u.Channel, rowColToNote(u.Row, u.Col), mapRGBToLaunchpad(u.Color)))
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	count := lp.ledSends.Add(uint64(len(updates)))
	if count%100 < uint64(len(updates)) {
		debug.Log("panel", "led count=%d (this batch=%d)", count, len(updates))
	}
	return firstErr
}

// Close blanks the pads and stops the listener before closing the event
// channel.
func (lp *LaunchpadController) Close() error {
	if lp.send != nil {
		var updates []LEDUpdate
		for row := 0; row < 9; row++ {
			for col := 0; col < 9; col++ {
				if row == 8 && col == 8 {
					continue // no LED at 8,8
				}
				updates = append(updates, LEDUpdate{Row: row, Col: col})
			}
		}
		lp.SetLEDBatch(updates)
	}
	if lp.stopFunc != nil {
		lp.stopFunc()
	}
	close(lp.padChan)
	return nil
}

// launchpadPalette holds approximate RGB values for palette velocities.
// Format: {velocity, R, G, B}
var launchpadPalette = [][4]uint8{
	{0, 0, 0, 0},
	{5, 255, 0, 0},
	{7, 180, 60, 60},
	{9, 255, 100, 0},
	{13, 255, 255, 0},
	{17, 0, 180, 0},
	{19, 0, 100, 0},
	{21, 0, 255, 0},
	{37, 0, 255, 255},
	{43, 40, 60, 120},
	{45, 0, 0, 255},
	{47, 80, 150, 255},
	{49, 150, 0, 200},
	{53, 255, 0, 255},
	{97, 180, 180, 60},
	{119, 255, 255, 255},
}

// mapRGBToLaunchpad finds the nearest palette velocity by squared distance.
func mapRGBToLaunchpad(rgb [3]uint8) uint8 {
	best := uint8(0)
	bestDist := 1 << 30
	r, g, b := int(rgb[0]), int(rgb[1]), int(rgb[2])
	for _, p := range launchpadPalette {
		dr, dg, db := r-int(p[1]), g-int(p[2]), b-int(p[3])
		if d := dr*dr + dg*dg + db*db; d < bestDist {
			bestDist = d
			best = p[0]
		}
	}
	return best
}

// Launchpad X note mapping
// 8x8 Grid:  Row 0 (bottom) = notes 11-18, Row 7 = notes 81-88
// Side col:  Col 8 (right side scene buttons) = notes 19, 29, ... 89
// Top row:   Row 8 = CC 91-98

func rowColToNote(row, col int) uint8 {
	if row == 8 {
		return uint8(91 + col)
	}
	return uint8((row+1)*10 + col + 1)
}

func noteToRowCol(note uint8) (row, col int) {
	if note >= 91 && note <= 98 {
		return 8, int(note - 91)
	}
	row = int(note/10) - 1
	col = int(note%10) - 1
	if row < 0 || row > 7 || col < 0 || col > 8 {
		return -1, -1
	}
	return row, col
}

func ccToRowCol(cc uint8) (row, col int) {
	if cc >= 91 && cc <= 98 {
		return 8, int(cc - 91)
	}
	return -1, -1
}

func isLaunchpad(name string) bool {
	name = strings.ToLower(name)
	return strings.Contains(name, "launchpad") && strings.Contains(name, "midi")
}
