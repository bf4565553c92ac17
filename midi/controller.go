package midi

// PadEvent is sent when a pad/button is pressed on a grid controller
type PadEvent struct {
	Row, Col int
	Velocity uint8
}

// LEDUpdate sets one pad to an RGB color.
type LEDUpdate struct {
	Row, Col int
	Color    [3]uint8
	Channel  uint8
}

// Controller is a grid controller used as a hardware panel.
type Controller interface {
	ID() string

	PadEvents() <-chan PadEvent

	SetLEDRGB(row, col int, rgb [3]uint8, channel uint8) error // maps RGB to palette
	SetLEDBatch(updates []LEDUpdate) error

	Close() error
}

// Channel modes for SetLED (use as 'channel' parameter)
const (
	ChannelStatic uint8 = 0 // solid color
	ChannelFlash  uint8 = 1 // flashing A/B alternating
	ChannelPulse  uint8 = 2 // pulsing (fades)
)
