package audio

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMockPlayerPlaysForDuration(t *testing.T) {
	m := NewMockPlayer()
	m.DelayFactor = 0.1

	start := time.Now()
	if err := m.Play(context.Background(), Silence(300*time.Millisecond, SampleRate)); err != nil {
		t.Fatal(err)
	}
	if elapsed := time.Since(start); elapsed < 25*time.Millisecond {
		t.Errorf("played for %v, want about 30ms", elapsed)
	}
	if len(m.Played()) != 1 {
		t.Errorf("recorded %d clips", len(m.Played()))
	}
}

func TestMockPlayerCancel(t *testing.T) {
	m := NewMockPlayer()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- m.Play(ctx, Silence(time.Hour, SampleRate)) }()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Play() = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Play ignored cancellation")
	}
}

func TestMockPlayerPauseHoldsPlayback(t *testing.T) {
	m := NewMockPlayer()
	m.DelayFactor = 0.05
	if err := m.Pause(); err != nil {
		t.Fatal(err)
	}

	done := make(chan error, 1)
	go func() { done <- m.Play(context.Background(), Silence(200*time.Millisecond, SampleRate)) }()

	select {
	case <-done:
		t.Fatal("paused player finished")
	case <-time.After(50 * time.Millisecond):
	}

	if err := m.Resume(); err != nil {
		t.Fatal(err)
	}
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Play() = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("resume did not finish playback")
	}
}

func TestMockPlayerErrors(t *testing.T) {
	m := NewMockPlayer()
	if err := m.Play(context.Background(), Clip{}); !errors.Is(err, ErrEmptyAudio) {
		t.Errorf("Play(empty) = %v", err)
	}

	boom := errors.New("device gone")
	m.FailWith(boom)
	if err := m.Play(context.Background(), Silence(time.Millisecond, SampleRate)); !errors.Is(err, boom) {
		t.Errorf("Play() = %v, want injected error", err)
	}

	_ = m.Close()
	if err := m.Pause(); !errors.Is(err, ErrClosed) {
		t.Errorf("Pause() after close = %v", err)
	}
}
