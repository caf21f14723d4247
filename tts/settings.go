package tts

import (
	"fmt"
	"math"
)

// Rate and pitch bounds. Values are multipliers of the engine's normal
// speaking rate and pitch.
const (
	MinRate     = 0.5
	MaxRate     = 2.0
	DefaultRate = 0.8

	MinPitch     = 0.0
	MaxPitch     = 2.0
	DefaultPitch = 1.0

	// Step is the increment used by the rate and pitch keys.
	Step = 0.1
)

// Settings are the per-utterance parameters. They are read each time a chunk
// is dispatched, so changes apply from the next chunk on.
type Settings struct {
	VoiceID string
	Rate    float64
	Pitch   float64
}

// DefaultSettings returns the settings used before the user changes anything.
func DefaultSettings() Settings {
	return Settings{Rate: DefaultRate, Pitch: DefaultPitch}
}

// Validate checks the rate and pitch ranges.
func (s Settings) Validate() error {
	if s.Rate < MinRate || s.Rate > MaxRate {
		return fmt.Errorf("%w: %.1f (want %.1f-%.1f)", ErrInvalidRate, s.Rate, MinRate, MaxRate)
	}
	if s.Pitch < MinPitch || s.Pitch > MaxPitch {
		return fmt.Errorf("%w: %.1f (want %.1f-%.1f)", ErrInvalidPitch, s.Pitch, MinPitch, MaxPitch)
	}
	return nil
}

// RateLabel formats the rate the way the rate slider shows it.
func (s Settings) RateLabel() string {
	return fmt.Sprintf("%.1fx", s.Rate)
}

// PitchLabel formats the pitch.
func (s Settings) PitchLabel() string {
	return fmt.Sprintf("%.1f", s.Pitch)
}

// stepValue moves v by delta steps, clamped to [lo, hi] and rounded to one
// decimal so repeated steps don't drift.
func stepValue(v, delta, lo, hi float64) float64 {
	v = math.Round((v+delta)*10) / 10
	return math.Max(lo, math.Min(hi, v))
}
