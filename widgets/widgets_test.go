package widgets

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderLightOff(t *testing.T) {
	assert.Equal(t, "○", RenderLight(0, 0, 0, '●', '○'))
	assert.Contains(t, RenderLight(1, 0, 0, '●', '○'), "●")
}

func TestRenderMeter(t *testing.T) {
	assert.Equal(t, "··|··", RenderMeter(0, 10, 5))
	assert.Equal(t, "··|██", RenderMeter(10, 10, 5))
	assert.Equal(t, "██|··", RenderMeter(-20, 10, 5))
	assert.Equal(t, "··|█·", RenderMeter(5, 10, 5))
	assert.Equal(t, 3, len([]rune(RenderMeter(1, 10, 0))))
}

func TestRgbToHex(t *testing.T) {
	assert.Equal(t, "#ff8000", rgbToHex([3]uint8{255, 128, 0}))
	assert.Equal(t, uint8(128), unitByte(0.5))
}
