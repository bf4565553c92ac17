package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// RenderLight renders one module light. Channels are 0-1 brightness; a
// fully dark light shows the off symbol.
func RenderLight(r, g, b float64, on, off rune) string {
	c := [3]uint8{unitByte(r), unitByte(g), unitByte(b)}
	if c == ([3]uint8{}) {
		return string(off)
	}
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(rgbToHex(c)))
	return style.Render(string(on))
}

// RenderMeter draws a centered bar for a bipolar voltage in -limit..limit.
func RenderMeter(v, limit float64, width int) string {
	if width < 3 {
		width = 3
	}
	half := width / 2
	n := 0
	if limit > 0 {
		n = int(v / limit * float64(half))
	}
	n = max(-half, min(half, n))

	cells := []rune(strings.Repeat("·", width))
	cells[half] = '|'
	for i := 1; i <= n; i++ {
		cells[half+i] = '█'
	}
	for i := -1; i >= n; i-- {
		cells[half+i] = '█'
	}
	return string(cells)
}

func rgbToHex(c [3]uint8) string {
	return fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2])
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
