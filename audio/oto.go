//go:build !headless

package audio

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go-omen/debug"

	"github.com/ebitengine/oto/v3"
)

// Player plays a Source through the system audio device.
type Player struct {
	ctx     *oto.Context
	player  *oto.Player
	reader  *Reader
	started bool
	mutex   sync.Mutex
}

// NewPlayer opens the audio device. bufferMs sizes the device buffer.
func NewPlayer(src Source, sampleRate, channels, bufferMs int) (*Player, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channels,
		Format:       oto.FormatFloat32LE,
		BufferSize:   time.Duration(bufferMs) * time.Millisecond,
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("open audio: %w", err)
	}
	<-ready

	p := &Player{ctx: ctx, reader: NewReader(src, channels)}
	p.player = ctx.NewPlayer(p.reader)
	return p, nil
}

func (p *Player) Start() {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if !p.started && p.player != nil {
		p.player.Play()
		p.started = true
		debug.Log("audio", "playing")
	}
}

func (p *Player) Close() error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.player == nil {
		return nil
	}
	err := p.player.Close()
	p.player = nil
	p.started = false
	debug.Log("audio", "closed after %d frames", p.reader.Frames())
	return err
}

// Run plays until ctx is done.
func (p *Player) Run(ctx context.Context) error {
	p.Start()
	<-ctx.Done()
	return p.Close()
}
