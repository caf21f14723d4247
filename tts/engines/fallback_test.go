package engines

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/lawflow/lawflow/tts"
	"github.com/lawflow/lawflow/tts/engines/mock"
)

func TestFallback(t *testing.T) {
	// Create a primary mock that always fails
	primary := mock.New()
	primary.SetFailure(errors.New("primary synthesizer failure"))
	secondary := mock.New()

	f := NewFallback(primary, secondary, 2)
	ctx := context.Background()
	u := tts.Utterance{Text: "ทดสอบ", Rate: 1}

	// First attempt fails (count = 1)
	if _, err := f.Synthesize(ctx, u); err == nil {
		t.Error("Expected first attempt to fail")
	}

	// Second attempt switches to the fallback (count = 2)
	if _, err := f.Synthesize(ctx, u); err != nil {
		t.Errorf("Expected second attempt to succeed with fallback: %v", err)
	}
	if !strings.HasPrefix(f.Status(), "Using fallback synthesizer") {
		t.Errorf("Unexpected status: %s", f.Status())
	}

	// Subsequent calls go straight to the fallback
	if _, err := f.Synthesize(ctx, u); err != nil {
		t.Errorf("Expected subsequent calls to use fallback: %v", err)
	}
	if got := len(primary.Calls()); got != 2 {
		t.Errorf("primary called %d times, want 2", got)
	}

	f.Reset()
	if !strings.HasPrefix(f.Status(), "Using primary synthesizer") {
		t.Errorf("Unexpected status after reset: %s", f.Status())
	}
}

func TestFallbackRecovery(t *testing.T) {
	primary := mock.New()
	primary.SetFailure(errors.New("transient"))
	f := NewFallback(primary, mock.New(), 3)
	ctx := context.Background()

	_, _ = f.Synthesize(ctx, tts.Utterance{Text: "a"})
	primary.SetFailure(nil)
	if _, err := f.Synthesize(ctx, tts.Utterance{Text: "b"}); err != nil {
		t.Fatal(err)
	}
	if f.Status() != "Using primary synthesizer mock (failures: 0/3)" {
		t.Errorf("Unexpected status: %s", f.Status())
	}
}

func TestFallbackWhenPrimaryUnavailable(t *testing.T) {
	primary := mock.New()
	primary.SetAvailable(ErrUnavailable)
	f := NewFallback(primary, mock.New(), 3)

	if _, err := f.Synthesize(context.Background(), tts.Utterance{Text: "a"}); err != nil {
		t.Fatal(err)
	}
	if len(primary.Calls()) != 0 {
		t.Error("unavailable primary should not be called")
	}
	if err := f.Available(); err != nil {
		t.Errorf("Available() = %v", err)
	}
}

func TestFallbackBothUnavailable(t *testing.T) {
	primary, secondary := mock.New(), mock.New()
	primary.SetAvailable(ErrUnavailable)
	secondary.SetAvailable(ErrUnavailable)

	err := NewFallback(primary, secondary, 1).Available()
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("Available() = %v, want ErrUnavailable", err)
	}
}
