// Package engines provides text-to-speech synthesizers. A Synthesizer turns
// one utterance into PCM audio; synth.Engine plays it and adapts it to the
// controller's tts.Engine interface.
package engines

import (
	"context"
	"errors"

	"github.com/lawflow/lawflow/tts"
	"github.com/lawflow/lawflow/tts/audio"
)

// ErrUnavailable is returned when a synthesizer's backend is missing.
var ErrUnavailable = errors.New("synthesizer unavailable")

// Synthesizer converts text to audio.
type Synthesizer interface {
	// Name identifies the synthesizer in logs and cache keys.
	Name() string

	// Available reports why the synthesizer cannot run, or nil.
	Available() error

	// Voices lists the installed voices. It may be slow.
	Voices(ctx context.Context) ([]tts.Voice, error)

	// Synthesize renders u as mono 16-bit PCM.
	Synthesize(ctx context.Context, u tts.Utterance) (audio.Clip, error)
}
