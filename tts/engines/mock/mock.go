// Package mock provides a silent synthesizer for tests and for running
// without a speech backend.
package mock

import (
	"context"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/lawflow/lawflow/tts"
	"github.com/lawflow/lawflow/tts/audio"
)

// Default mock voices. The Thai voice lets the UI exercise voice selection
// without a real backend.
var defaultVoices = []tts.Voice{
	{ID: "mock-th", Name: "Mock Thai", Language: "th-TH"},
	{ID: "mock-en", Name: "Mock English", Language: "en-US"},
}

// Synthesizer generates silence whose length follows the text length and
// the requested rate.
type Synthesizer struct {
	mu sync.Mutex

	perRune   time.Duration // Speaking time per character at rate 1
	delay     time.Duration // Simulated processing delay
	voices    []tts.Voice
	failure   error
	available error
	calls     []tts.Utterance
}

// New creates a mock synthesizer.
func New() *Synthesizer {
	return &Synthesizer{
		perRune: 60 * time.Millisecond,
		voices:  append([]tts.Voice(nil), defaultVoices...),
	}
}

// Name implements engines.Synthesizer.
func (s *Synthesizer) Name() string { return "mock" }

// Available implements engines.Synthesizer.
func (s *Synthesizer) Available() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.available
}

// Voices implements engines.Synthesizer.
func (s *Synthesizer) Voices(ctx context.Context) ([]tts.Voice, error) {
	s.mu.Lock()
	delay := s.delay
	voices := append([]tts.Voice(nil), s.voices...)
	s.mu.Unlock()

	if err := sleep(ctx, delay); err != nil {
		return nil, err
	}
	return voices, nil
}

// Synthesize implements engines.Synthesizer.
func (s *Synthesizer) Synthesize(ctx context.Context, u tts.Utterance) (audio.Clip, error) {
	s.mu.Lock()
	s.calls = append(s.calls, u)
	failure := s.failure
	delay := s.delay
	perRune := s.perRune
	s.mu.Unlock()

	if err := sleep(ctx, delay); err != nil {
		return audio.Clip{}, err
	}
	if failure != nil {
		return audio.Clip{}, failure
	}

	rate := u.Rate
	if rate <= 0 {
		rate = 1
	}
	n := max(utf8.RuneCountInString(u.Text), 1)
	d := time.Duration(float64(perRune) * float64(n) / rate)
	return audio.Silence(d, audio.SampleRate), nil
}

// Test control methods

// SetDelay sets the simulated processing delay.
func (s *Synthesizer) SetDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delay = d
}

// SetPerRune sets the simulated speaking time per character.
func (s *Synthesizer) SetPerRune(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.perRune = d
}

// SetVoices replaces the voices reported by Voices.
func (s *Synthesizer) SetVoices(voices []tts.Voice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.voices = append([]tts.Voice(nil), voices...)
}

// SetFailure makes Synthesize fail with err; nil clears it.
func (s *Synthesizer) SetFailure(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failure = err
}

// SetAvailable makes Available return err.
func (s *Synthesizer) SetAvailable(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.available = err
}

// Calls returns the utterances synthesized so far.
func (s *Synthesizer) Calls() []tts.Utterance {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]tts.Utterance(nil), s.calls...)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
