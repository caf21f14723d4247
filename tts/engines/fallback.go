package engines

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/lawflow/lawflow/tts"
	"github.com/lawflow/lawflow/tts/audio"
)

// Fallback wraps a primary synthesizer with automatic fallback to a
// secondary one when the primary fails consistently.
type Fallback struct {
	primary     Synthesizer
	fallback    Synthesizer
	maxFailures int

	mu            sync.Mutex
	failures      int
	usingFallback bool
}

// NewFallback creates a synthesizer that switches to fallback after
// maxFailures consecutive primary failures, or immediately when the primary
// is unavailable.
func NewFallback(primary, fallback Synthesizer, maxFailures int) *Fallback {
	if maxFailures < 1 {
		maxFailures = 1
	}
	f := &Fallback{
		primary:     primary,
		fallback:    fallback,
		maxFailures: maxFailures,
	}
	if err := primary.Available(); err != nil {
		log.Warn("Primary synthesizer unavailable, using fallback", "primary", primary.Name(), "fallback", fallback.Name(), "err", err)
		f.usingFallback = true
	}
	return f
}

// Name returns the active synthesizer's name.
func (f *Fallback) Name() string {
	return f.active().Name()
}

// Available reports an error only when neither synthesizer can run.
func (f *Fallback) Available() error {
	primaryErr := f.primary.Available()
	if primaryErr == nil {
		return nil
	}
	fallbackErr := f.fallback.Available()
	if fallbackErr == nil {
		return nil
	}
	return fmt.Errorf("both synthesizers unavailable: %w", errors.Join(primaryErr, fallbackErr))
}

// Voices returns voices from the active synthesizer.
func (f *Fallback) Voices(ctx context.Context) ([]tts.Voice, error) {
	return f.active().Voices(ctx)
}

// Synthesize uses the active synthesizer, switching to the fallback once
// the primary has failed maxFailures times in a row.
func (f *Fallback) Synthesize(ctx context.Context, u tts.Utterance) (audio.Clip, error) {
	f.mu.Lock()
	usingFallback := f.usingFallback
	f.mu.Unlock()

	if usingFallback {
		return f.fallback.Synthesize(ctx, u)
	}

	clip, err := f.primary.Synthesize(ctx, u)
	if err == nil || ctx.Err() != nil {
		f.mu.Lock()
		if err == nil && f.failures > 0 {
			log.Info("Primary synthesizer recovered", "failures", f.failures)
			f.failures = 0
		}
		f.mu.Unlock()
		return clip, err
	}

	f.mu.Lock()
	f.failures++
	failures := f.failures
	if failures >= f.maxFailures {
		f.usingFallback = true
	}
	switched := f.usingFallback
	f.mu.Unlock()

	log.Warn("Primary synthesizer failed", "attempt", failures, "max", f.maxFailures, "err", err)
	if !switched {
		return audio.Clip{}, err
	}

	log.Warn("Switching to fallback synthesizer", "fallback", f.fallback.Name())
	clip, fbErr := f.fallback.Synthesize(ctx, u)
	if fbErr != nil {
		return audio.Clip{}, fmt.Errorf("both synthesizers failed: %w", errors.Join(err, fbErr))
	}
	return clip, nil
}

// Reset returns to the primary synthesizer.
func (f *Fallback) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures = 0
	f.usingFallback = false
	log.Info("Reset to primary synthesizer")
}

// Status describes which synthesizer is in use.
func (f *Fallback) Status() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.usingFallback {
		return fmt.Sprintf("Using fallback synthesizer %s (primary failed %d times)", f.fallback.Name(), f.failures)
	}
	return fmt.Sprintf("Using primary synthesizer %s (failures: %d/%d)", f.primary.Name(), f.failures, f.maxFailures)
}

func (f *Fallback) active() Synthesizer {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.usingFallback {
		return f.fallback
	}
	return f.primary
}
