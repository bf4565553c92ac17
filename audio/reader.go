// Package audio pulls interleaved frames from the rack and hands them to
// an output device, or renders them on a timer when there is none.
package audio

import (
	"encoding/binary"
	"math"
	"sync/atomic"
)

// Source renders interleaved frames. *rack.Rack satisfies it.
type Source interface {
	Render(out []float32, channels int)
}

// Reader adapts a Source to an io.Reader of float32 little-endian PCM.
type Reader struct {
	src      Source
	channels int
	buf      []float32
	frames   atomic.Int64
}

func NewReader(src Source, channels int) *Reader {
	if channels < 1 {
		channels = 1
	}
	return &Reader{src: src, channels: channels, buf: make([]float32, 1024*channels)}
}

// Read fills p with whole frames. Trailing bytes that do not make up a
// frame are zeroed.
func (r *Reader) Read(p []byte) (int, error) {
	frameBytes := 4 * r.channels
	frames := len(p) / frameBytes
	samples := frames * r.channels
	if len(r.buf) < samples {
		r.buf = make([]float32, samples)
	}
	buf := r.buf[:samples]
	if frames > 0 {
		r.src.Render(buf, r.channels)
	}
	for i, s := range buf {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(s))
	}
	clear(p[samples*4:])
	r.frames.Add(int64(frames))
	return len(p), nil
}

// Frames counts frames rendered so far.
func (r *Reader) Frames() int64 {
	return r.frames.Load()
}
