package tts

import (
	"strings"
	"time"

	"golang.org/x/text/language"
)

// Engine is the speech capability the controller drives one utterance at a
// time. Implementations may run synthesis and playback on their own
// goroutines but must report back only through the done callback.
type Engine interface {
	// Speak starts speaking u. done is called exactly once when the
	// utterance ends naturally (nil) or fails. After Cancel, done may be
	// called with ErrCanceled or not at all.
	Speak(u Utterance, done func(error)) error

	// Pause suspends the current utterance in place.
	Pause() error

	// Resume continues a paused utterance.
	Resume() error

	// Cancel drops the current utterance immediately.
	Cancel() error

	// Voices returns the voices known so far. The list may be empty and be
	// replaced later.
	Voices() []Voice

	// OnVoicesChanged registers a callback invoked whenever the voice list
	// is replaced. It may be called from any goroutine.
	OnVoicesChanged(fn func([]Voice))

	// Close releases the engine's resources.
	Close() error
}

// Dispatcher delivers events to the goroutine that owns a Controller.
type Dispatcher interface {
	// Dispatch queues ev for handling. It must not block the caller.
	Dispatch(ev Event)

	// DispatchAfter queues ev once d has elapsed.
	DispatchAfter(d time.Duration, ev Event)
}

// Utterance is a single speak request. Voice is a voice ID; empty selects
// the engine default.
type Utterance struct {
	Text  string
	Voice string
	Rate  float64
	Pitch float64
}

// Voice describes a voice an engine can speak with.
type Voice struct {
	ID       string // Voice identifier passed back in Utterance.Voice
	Name     string // Human-readable name
	Language string // BCP 47 tag, e.g. "th" or "th-TH"
}

// IsThai reports whether the voice speaks Thai.
func (v Voice) IsThai() bool {
	tag, err := language.Parse(strings.ReplaceAll(v.Language, "_", "-"))
	if err != nil {
		return strings.HasPrefix(strings.ToLower(v.Language), "th")
	}
	base, _ := tag.Base()
	thai, _ := language.Thai.Base()
	return base == thai
}

// String formats the voice the way voice pickers show it.
func (v Voice) String() string {
	if v.Language == "" {
		return v.Name
	}
	return v.Name + " (" + v.Language + ")"
}

// FindVoice returns the voice with the given ID.
func FindVoice(voices []Voice, id string) (Voice, bool) {
	for _, v := range voices {
		if v.ID == id {
			return v, true
		}
	}
	return Voice{}, false
}

// ThaiVoices returns the Thai voices in voices, in order.
func ThaiVoices(voices []Voice) []Voice {
	var out []Voice
	for _, v := range voices {
		if v.IsThai() {
			out = append(out, v)
		}
	}
	return out
}
