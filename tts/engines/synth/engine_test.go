package synth

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/lawflow/lawflow/internal/cache"
	"github.com/lawflow/lawflow/tts"
	"github.com/lawflow/lawflow/tts/audio"
	"github.com/lawflow/lawflow/tts/engines/mock"
)

func newTestEngine(t *testing.T, opts ...Option) (*Engine, *mock.Synthesizer, *audio.MockPlayer) {
	t.Helper()
	s := mock.New()
	s.SetPerRune(time.Millisecond)
	p := audio.NewMockPlayer()
	p.DelayFactor = 0.5
	e := New(s, p, opts...)
	t.Cleanup(func() { _ = e.Close() })
	return e, s, p
}

func waitDone(t *testing.T, ch <-chan error) error {
	t.Helper()
	select {
	case err := <-ch:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("utterance never finished")
		return nil
	}
}

func TestSpeakCallsDone(t *testing.T) {
	e, s, p := newTestEngine(t)

	done := make(chan error, 1)
	if err := e.Speak(tts.Utterance{Text: "สวัสดี", Rate: 1}, func(err error) { done <- err }); err != nil {
		t.Fatal(err)
	}
	if err := waitDone(t, done); err != nil {
		t.Errorf("done(%v), want nil", err)
	}
	if len(s.Calls()) != 1 || len(p.Played()) != 1 {
		t.Errorf("synthesized %d, played %d", len(s.Calls()), len(p.Played()))
	}
}

func TestSpeakReportsSynthesisError(t *testing.T) {
	e, s, _ := newTestEngine(t)
	boom := errors.New("model missing")
	s.SetFailure(boom)

	done := make(chan error, 1)
	_ = e.Speak(tts.Utterance{Text: "x"}, func(err error) { done <- err })
	if err := waitDone(t, done); !errors.Is(err, boom) {
		t.Errorf("done(%v), want wrapped synthesis error", err)
	}
}

func TestCancelSuppressesDone(t *testing.T) {
	e, s, _ := newTestEngine(t)
	s.SetDelay(time.Hour)

	var mu sync.Mutex
	called := false
	_ = e.Speak(tts.Utterance{Text: "x"}, func(error) {
		mu.Lock()
		called = true
		mu.Unlock()
	})
	if err := e.Cancel(); err != nil {
		t.Fatal(err)
	}
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if called {
		t.Error("done called for a canceled utterance")
	}
}

func TestSpeakReplacesCurrentUtterance(t *testing.T) {
	e, s, _ := newTestEngine(t)
	s.SetDelay(30 * time.Millisecond)

	first := make(chan error, 1)
	second := make(chan error, 1)
	_ = e.Speak(tts.Utterance{Text: "first"}, func(err error) { first <- err })
	_ = e.Speak(tts.Utterance{Text: "second"}, func(err error) { second <- err })

	if err := waitDone(t, second); err != nil {
		t.Fatal(err)
	}
	select {
	case <-first:
		t.Error("replaced utterance reported completion")
	case <-time.After(20 * time.Millisecond):
	}
}

func TestPauseBeforePlaybackHoldsIt(t *testing.T) {
	e, s, p := newTestEngine(t)
	s.SetDelay(20 * time.Millisecond)

	done := make(chan error, 1)
	_ = e.Speak(tts.Utterance{Text: "x"}, func(err error) { done <- err })
	if err := e.Pause(); err != nil {
		t.Fatal(err)
	}

	select {
	case <-done:
		t.Fatal("paused utterance finished")
	case <-time.After(100 * time.Millisecond):
	}
	if len(p.Played()) != 0 {
		t.Error("playback started while paused")
	}

	if err := e.Resume(); err != nil {
		t.Fatal(err)
	}
	if err := waitDone(t, done); err != nil {
		t.Errorf("done(%v)", err)
	}
}

func TestResumeWhenNotPaused(t *testing.T) {
	e, _, _ := newTestEngine(t)
	if err := e.Resume(); !errors.Is(err, tts.ErrNotPaused) {
		t.Errorf("Resume() = %v, want ErrNotPaused", err)
	}
}

func TestVoicesArriveAsynchronously(t *testing.T) {
	s := mock.New()
	s.SetDelay(20 * time.Millisecond)
	e := New(s, audio.NewMockPlayer())
	defer e.Close()

	if len(e.Voices()) != 0 {
		t.Error("voices should still be loading")
	}

	got := make(chan []tts.Voice, 1)
	e.OnVoicesChanged(func(v []tts.Voice) { got <- v })

	select {
	case voices := <-got:
		if len(tts.ThaiVoices(voices)) == 0 {
			t.Errorf("expected a Thai voice in %v", voices)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("voices never arrived")
	}
}

func TestOnVoicesChangedAfterLoad(t *testing.T) {
	e, _, _ := newTestEngine(t)
	deadline := time.Now().Add(2 * time.Second)
	for len(e.Voices()) == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	got := make(chan []tts.Voice, 1)
	e.OnVoicesChanged(func(v []tts.Voice) { got <- v })
	select {
	case v := <-got:
		if len(v) == 0 {
			t.Error("expected voices")
		}
	default:
		t.Error("late subscriber should be called immediately")
	}
}

func TestCacheAvoidsResynthesis(t *testing.T) {
	c, err := cache.NewManager(cache.CacheConfig{MemoryCapacity: 1 << 20})
	if err != nil {
		t.Fatal(err)
	}
	e, s, p := newTestEngine(t, WithCache(c))

	u := tts.Utterance{Text: "มาตรา", Voice: "mock-th", Rate: 1, Pitch: 1}
	for i := 0; i < 2; i++ {
		done := make(chan error, 1)
		_ = e.Speak(u, func(err error) { done <- err })
		if err := waitDone(t, done); err != nil {
			t.Fatal(err)
		}
	}

	if got := len(s.Calls()); got != 1 {
		t.Errorf("synthesized %d times, want 1", got)
	}
	if got := len(p.Played()); got != 2 {
		t.Errorf("played %d times, want 2", got)
	}
}

func TestClosedEngine(t *testing.T) {
	e, _, _ := newTestEngine(t)
	_ = e.Close()
	if err := e.Speak(tts.Utterance{Text: "x"}, func(error) {}); !errors.Is(err, tts.ErrEngineClosed) {
		t.Errorf("Speak() = %v, want ErrEngineClosed", err)
	}
}

func TestClipEncoding(t *testing.T) {
	in := audio.Clip{PCM: []byte{1, 2, 3, 4}, SampleRate: 16000}
	out, err := decodeClip(encodeClip(in))
	if err != nil {
		t.Fatal(err)
	}
	if out.SampleRate != 16000 || string(out.PCM) != string(in.PCM) {
		t.Errorf("decoded %+v", out)
	}
	if _, err := decodeClip([]byte{1}); !errors.Is(err, cache.ErrCacheCorrupted) {
		t.Errorf("decodeClip(short) = %v", err)
	}
}
