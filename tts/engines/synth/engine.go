// Package synth adapts a Synthesizer and an audio player to tts.Engine.
// Synthesis and playback run on a worker goroutine per utterance; results
// reach the controller only through the done callback.
package synth

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lawflow/lawflow/internal/cache"
	"github.com/lawflow/lawflow/tts"
	"github.com/lawflow/lawflow/tts/audio"
	"github.com/lawflow/lawflow/tts/engines"
)

// Player plays audio clips. *audio.Player and *audio.MockPlayer satisfy it.
type Player interface {
	Play(ctx context.Context, clip audio.Clip) error
	Pause() error
	Resume() error
	Close() error
}

// Cache stores synthesized audio by key. *cache.Manager satisfies it.
type Cache interface {
	Get(key string) ([]byte, bool)
	Put(key string, value []byte) error
}

// Option configures an Engine.
type Option func(*Engine)

// WithCache stores synthesized clips in c.
func WithCache(c Cache) Option {
	return func(e *Engine) { e.cache = c }
}

// WithVoiceTimeout bounds voice discovery.
func WithVoiceTimeout(d time.Duration) Option {
	return func(e *Engine) { e.voiceTimeout = d }
}

// Engine implements tts.Engine on top of a Synthesizer.
type Engine struct {
	synth        engines.Synthesizer
	player       Player
	cache        Cache
	voiceTimeout time.Duration

	ctx      context.Context
	shutdown context.CancelFunc

	mu      sync.Mutex
	cancel  context.CancelFunc // Current utterance
	gen     uint64
	paused  bool
	resume  chan struct{} // Closed on Resume while paused
	closed  bool
	voices  []tts.Voice
	loaded  bool
	onVoice func([]tts.Voice)
	wg      sync.WaitGroup
}

// New creates an engine and starts discovering voices in the background.
func New(s engines.Synthesizer, p Player, opts ...Option) *Engine {
	ctx, cancel := context.WithCancel(context.Background())
	e := &Engine{
		synth:        s,
		player:       p,
		voiceTimeout: 10 * time.Second,
		ctx:          ctx,
		shutdown:     cancel,
	}
	for _, opt := range opts {
		opt(e)
	}

	e.wg.Add(1)
	go e.loadVoices()
	return e
}

// Speak implements tts.Engine. Any utterance in flight is canceled first;
// done is not called for a canceled utterance.
func (e *Engine) Speak(u tts.Utterance, done func(error)) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return tts.ErrEngineClosed
	}
	e.cancelLocked()
	ctx, cancel := context.WithCancel(e.ctx)
	e.cancel = cancel
	e.gen++
	gen := e.gen
	e.mu.Unlock()

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		err := e.speak(ctx, u)
		if ctx.Err() != nil {
			return
		}

		e.mu.Lock()
		if e.gen == gen {
			e.cancel = nil
		}
		e.mu.Unlock()
		cancel()
		done(err)
	}()
	return nil
}

func (e *Engine) speak(ctx context.Context, u tts.Utterance) error {
	clip, err := e.clip(ctx, u)
	if err != nil {
		return fmt.Errorf("synthesis failed: %w", err)
	}
	if err := e.waitUnpaused(ctx); err != nil {
		return err
	}
	if err := e.player.Play(ctx, clip); err != nil {
		return fmt.Errorf("playback failed: %w", err)
	}
	return nil
}

// clip returns cached audio for u or synthesizes it.
func (e *Engine) clip(ctx context.Context, u tts.Utterance) (audio.Clip, error) {
	var key string
	if e.cache != nil {
		key = cache.Key(e.synth.Name(), u.Voice, u.Text, u.Rate, u.Pitch)
		if data, ok := e.cache.Get(key); ok {
			if clip, err := decodeClip(data); err == nil {
				log.Debug("Audio cache hit", "key", key)
				return clip, nil
			}
		}
	}

	start := time.Now()
	clip, err := e.synth.Synthesize(ctx, u)
	if err != nil {
		return audio.Clip{}, err
	}
	log.Debug("Synthesized utterance", "synth", e.synth.Name(), "runes", len([]rune(u.Text)), "took", time.Since(start), "duration", clip.Duration())

	if e.cache != nil {
		if err := e.cache.Put(key, encodeClip(clip)); err != nil {
			log.Debug("Failed to cache audio", "key", key, "err", err)
		}
	}
	return clip, nil
}

// waitUnpaused blocks while the engine is paused. A pause can arrive while
// synthesis is still running, before the player has anything to pause.
func (e *Engine) waitUnpaused(ctx context.Context) error {
	e.mu.Lock()
	wait := e.resume
	e.mu.Unlock()
	if wait == nil {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-wait:
		return nil
	}
}

// Pause implements tts.Engine.
func (e *Engine) Pause() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return tts.ErrEngineClosed
	}
	if e.paused {
		return nil
	}
	e.paused = true
	e.resume = make(chan struct{})
	return e.player.Pause()
}

// Resume implements tts.Engine.
func (e *Engine) Resume() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return tts.ErrEngineClosed
	}
	if !e.paused {
		return tts.ErrNotPaused
	}
	e.paused = false
	close(e.resume)
	e.resume = nil
	return e.player.Resume()
}

// Cancel implements tts.Engine. It also clears a pause.
func (e *Engine) Cancel() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelLocked()
	if e.paused {
		e.paused = false
		close(e.resume)
		e.resume = nil
		return e.player.Resume()
	}
	return nil
}

func (e *Engine) cancelLocked() {
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
}

// Voices implements tts.Engine. It is empty until discovery finishes.
func (e *Engine) Voices() []tts.Voice {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]tts.Voice(nil), e.voices...)
}

// OnVoicesChanged implements tts.Engine. If discovery already finished, fn
// is called right away.
func (e *Engine) OnVoicesChanged(fn func([]tts.Voice)) {
	e.mu.Lock()
	e.onVoice = fn
	loaded := e.loaded
	voices := append([]tts.Voice(nil), e.voices...)
	e.mu.Unlock()

	if loaded && fn != nil {
		fn(voices)
	}
}

func (e *Engine) loadVoices() {
	defer e.wg.Done()

	ctx, cancel := context.WithTimeout(e.ctx, e.voiceTimeout)
	defer cancel()

	voices, err := e.synth.Voices(ctx)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			log.Warn("Voice discovery failed", "synth", e.synth.Name(), "err", err)
		}
		return
	}
	log.Debug("Voices discovered", "synth", e.synth.Name(), "count", len(voices))

	e.mu.Lock()
	e.voices = voices
	e.loaded = true
	fn := e.onVoice
	e.mu.Unlock()

	if fn != nil {
		fn(append([]tts.Voice(nil), voices...))
	}
}

// Close implements tts.Engine. It cancels everything and waits for the
// worker goroutines.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.cancelLocked()
	if e.paused {
		e.paused = false
		close(e.resume)
		e.resume = nil
	}
	e.mu.Unlock()

	e.shutdown()
	e.wg.Wait()
	return e.player.Close()
}

// Cached clips are stored as a little-endian uint32 sample rate followed
// by the PCM data.
func encodeClip(c audio.Clip) []byte {
	out := make([]byte, 4+len(c.PCM))
	binary.LittleEndian.PutUint32(out, uint32(c.SampleRate))
	copy(out[4:], c.PCM)
	return out
}

func decodeClip(data []byte) (audio.Clip, error) {
	if len(data) < 4 {
		return audio.Clip{}, cache.ErrCacheCorrupted
	}
	clip := audio.Clip{
		SampleRate: int(binary.LittleEndian.Uint32(data)),
		PCM:        data[4:],
	}
	if err := clip.Validate(); err != nil {
		return audio.Clip{}, fmt.Errorf("%w: %w", cache.ErrCacheCorrupted, err)
	}
	return clip, nil
}
