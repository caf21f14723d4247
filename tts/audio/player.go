package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ebitengine/oto/v3"
)

var (
	// ErrClosed is returned by a closed player.
	ErrClosed = errors.New("player is closed")
	// ErrInterrupted is returned by Play when another clip replaced it.
	ErrInterrupted = errors.New("playback interrupted")
)

// oto allows a single context per process.
var (
	contextOnce sync.Once
	sharedCtx   *oto.Context
	contextErr  error
)

const pollInterval = 10 * time.Millisecond

// Player plays clips on the system audio device using oto.
type Player struct {
	context *oto.Context
	rate    int

	mu      sync.Mutex
	current *oto.Player
	active  []byte // Kept alive while oto reads it
	paused  bool
	closed  bool
}

// NewPlayer opens the audio device.
func NewPlayer() (*Player, error) {
	contextOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   OutputRate,
			ChannelCount: Channels,
			Format:       oto.FormatSignedInt16LE,
		}
		ctx, ready, err := oto.NewContext(op)
		if err != nil {
			contextErr = fmt.Errorf("failed to create oto context: %w", err)
			return
		}
		<-ready
		sharedCtx = ctx
	})
	if contextErr != nil {
		return nil, contextErr
	}
	return &Player{context: sharedCtx, rate: OutputRate}, nil
}

// Play plays clip and blocks until it finishes, ctx is canceled, or another
// Play call replaces it. A canceled playback returns ctx.Err().
func (p *Player) Play(ctx context.Context, clip Clip) error {
	if err := clip.Validate(); err != nil {
		return err
	}
	data := Resample(clip, p.rate).PCM

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrClosed
	}
	p.releaseLocked()
	pl := p.context.NewPlayer(bytes.NewReader(data))
	p.current = pl
	p.active = data
	p.paused = false
	pl.Play()
	p.mu.Unlock()

	log.Debug("Playing clip", "duration", clip.Duration(), "bytes", len(data))

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.release(pl)
			return ctx.Err()

		case <-ticker.C:
			p.mu.Lock()
			if p.current != pl {
				p.mu.Unlock()
				return ErrInterrupted
			}
			if err := pl.Err(); err != nil {
				p.releaseLocked()
				p.mu.Unlock()
				return fmt.Errorf("playback failed: %w", err)
			}
			finished := !p.paused && !pl.IsPlaying()
			if finished {
				p.releaseLocked()
			}
			p.mu.Unlock()
			if finished {
				return nil
			}
		}
	}
}

// Pause suspends the current clip. It is a no-op when nothing is playing.
func (p *Player) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	if p.current != nil && !p.paused {
		p.current.Pause()
		p.paused = true
	}
	return nil
}

// Resume continues a paused clip. It is a no-op when nothing is paused.
func (p *Player) Resume() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	if p.current != nil && p.paused {
		p.current.Play()
		p.paused = false
	}
	return nil
}

// Close stops playback. The shared device context stays open.
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.releaseLocked()
	p.closed = true
	return nil
}

func (p *Player) release(pl *oto.Player) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == pl {
		p.releaseLocked()
	}
}

func (p *Player) releaseLocked() {
	if p.current == nil {
		return
	}
	p.current.Pause()
	if err := p.current.Close(); err != nil {
		log.Debug("Closing oto player failed", "err", err)
	}
	p.current = nil
	p.active = nil
	p.paused = false
}
