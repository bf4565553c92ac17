//go:build headless

package audio

import "context"

// Player renders on a timer in builds without an audio device.
type Player struct {
	ticker *Ticker
}

func NewPlayer(src Source, sampleRate, channels, bufferMs int) (*Player, error) {
	return &Player{ticker: NewTicker(src, sampleRate, channels, bufferMs)}, nil
}

func (p *Player) Start() {}

func (p *Player) Close() error {
	return nil
}

func (p *Player) Run(ctx context.Context) error {
	return p.ticker.Run(ctx)
}
