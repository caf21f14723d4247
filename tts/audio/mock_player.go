package audio

import (
	"context"
	"sync"
	"time"
)

// MockPlayer simulates playback without producing sound. A clip "plays" for
// its duration scaled by DelayFactor, and pausing stops the clock.
type MockPlayer struct {
	// DelayFactor scales simulated playback time; 0.01 plays a second of
	// audio in 10ms.
	DelayFactor float64

	mu      sync.Mutex
	played  []Clip
	paused  bool
	resume  chan struct{}
	closed  bool
	playErr error
}

// NewMockPlayer returns a mock that plays in real time.
func NewMockPlayer() *MockPlayer {
	return &MockPlayer{DelayFactor: 1}
}

// FailWith makes subsequent Play calls fail with err.
func (m *MockPlayer) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playErr = err
}

// Play records clip and waits out its simulated duration.
func (m *MockPlayer) Play(ctx context.Context, clip Clip) error {
	if err := clip.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	if m.playErr != nil {
		err := m.playErr
		m.mu.Unlock()
		return err
	}
	m.played = append(m.played, clip)
	m.mu.Unlock()

	remaining := time.Duration(float64(clip.Duration()) * m.DelayFactor)
	for remaining > 0 {
		m.mu.Lock()
		wait := m.resume
		m.mu.Unlock()
		if wait != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-wait:
			}
			continue
		}

		step := min(remaining, pollInterval)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(step):
			remaining -= step
		}
	}
	return nil
}

// Pause stops the simulated clock.
func (m *MockPlayer) Pause() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if !m.paused {
		m.paused = true
		m.resume = make(chan struct{})
	}
	return nil
}

// Resume restarts the simulated clock.
func (m *MockPlayer) Resume() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if m.paused {
		m.paused = false
		close(m.resume)
		m.resume = nil
	}
	return nil
}

// Close marks the player closed.
func (m *MockPlayer) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.paused {
		close(m.resume)
		m.resume = nil
		m.paused = false
	}
	m.closed = true
	return nil
}

// Played returns the clips played so far.
func (m *MockPlayer) Played() []Clip {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Clip(nil), m.played...)
}

// Paused reports whether the mock is paused.
func (m *MockPlayer) Paused() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.paused
}
