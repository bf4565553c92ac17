package audio

import (
	"context"
	"time"

	"go-omen/debug"
)

// Ticker renders a Source against the wall clock and discards the output.
// It keeps the rack running when no audio device is in use.
type Ticker struct {
	src        Source
	sampleRate int
	channels   int
	interval   time.Duration
	buf        []float32
	rendered   int64
}

func NewTicker(src Source, sampleRate, channels, bufferMs int) *Ticker {
	if channels < 1 {
		channels = 1
	}
	if bufferMs < 1 {
		bufferMs = 1
	}
	block := sampleRate * bufferMs / 1000
	if block < 1 {
		block = 1
	}
	return &Ticker{
		src:        src,
		sampleRate: sampleRate,
		channels:   channels,
		interval:   time.Duration(bufferMs) * time.Millisecond,
		buf:        make([]float32, block*channels),
	}
}

// Run renders until ctx is done. Each tick catches up to the number of
// frames due since start, so a late tick does not lose time.
func (t *Ticker) Run(ctx context.Context) error {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	start := time.Now()
	for {
		select {
		case <-ctx.Done():
			debug.Log("audio", "ticker stopped after %d frames", t.rendered)
			return nil
		case now := <-ticker.C:
			t.catchUp(int64(now.Sub(start).Seconds() * float64(t.sampleRate)))
		}
	}
}

func (t *Ticker) catchUp(due int64) {
	block := int64(len(t.buf) / t.channels)
	for t.rendered < due {
		n := min(block, due-t.rendered)
		t.src.Render(t.buf[:n*int64(t.channels)], t.channels)
		t.rendered += n
	}
}

// Rendered counts frames rendered so far.
func (t *Ticker) Rendered() int64 {
	return t.rendered
}
