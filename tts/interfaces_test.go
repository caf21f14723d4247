package tts

import (
	"errors"
	"testing"
)

func TestVoiceIsThai(t *testing.T) {
	tests := []struct {
		language string
		want     bool
	}{
		{"th", true},
		{"th-TH", true},
		{"th_TH", true},
		{"TH", true},
		{"en-US", false},
		{"", false},
		{"thai-ish?", true},
	}
	for _, tt := range tests {
		t.Run(tt.language, func(t *testing.T) {
			if got := (Voice{Language: tt.language}).IsThai(); got != tt.want {
				t.Errorf("IsThai(%q) = %v, want %v", tt.language, got, tt.want)
			}
		})
	}
}

func TestVoiceHelpers(t *testing.T) {
	voices := []Voice{
		{ID: "en", Name: "English", Language: "en"},
		{ID: "th", Name: "Thai", Language: "th"},
		{ID: "th-x", Name: "Kanya"},
		{ID: "th-2", Name: "Thai 2", Language: "th-TH"},
	}

	thai := ThaiVoices(voices)
	if len(thai) != 2 || thai[0].ID != "th" || thai[1].ID != "th-2" {
		t.Errorf("ThaiVoices = %+v", thai)
	}
	if v, ok := FindVoice(voices, "th-2"); !ok || v.Name != "Thai 2" {
		t.Errorf("FindVoice(th-2) = %+v, %v", v, ok)
	}
	if _, ok := FindVoice(voices, "missing"); ok {
		t.Error("FindVoice found a missing voice")
	}
	if got := voices[1].String(); got != "Thai (th)" {
		t.Errorf("String() = %q", got)
	}
	if got := voices[2].String(); got != "Kanya" {
		t.Errorf("String() = %q", got)
	}
}

func TestSettingsValidate(t *testing.T) {
	tests := []struct {
		name     string
		settings Settings
		want     error
	}{
		{"defaults", DefaultSettings(), nil},
		{"bounds", Settings{Rate: MinRate, Pitch: MaxPitch}, nil},
		{"silent pitch", Settings{Rate: MaxRate, Pitch: MinPitch}, nil},
		{"too slow", Settings{Rate: 0.4, Pitch: 1}, ErrInvalidRate},
		{"too fast", Settings{Rate: 2.1, Pitch: 1}, ErrInvalidRate},
		{"pitch high", Settings{Rate: 1, Pitch: 2.5}, ErrInvalidPitch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.settings.Validate()
			if tt.want == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Fatalf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSettingsLabels(t *testing.T) {
	s := Settings{Rate: 0.8, Pitch: 1}
	if got := s.RateLabel(); got != "0.8x" {
		t.Errorf("RateLabel() = %q", got)
	}
	if got := s.PitchLabel(); got != "1.0" {
		t.Errorf("PitchLabel() = %q", got)
	}
}

func TestStepValue(t *testing.T) {
	tests := []struct {
		v, delta, want float64
	}{
		{0.8, Step, 0.9},
		{0.8, -Step, 0.7},
		{2.0, Step, 2.0},
		{0.5, -Step, 0.5},
		{0.7, Step * 3, 1.0},
	}
	for _, tt := range tests {
		if got := stepValue(tt.v, tt.delta, MinRate, MaxRate); got != tt.want {
			t.Errorf("stepValue(%v, %v) = %v, want %v", tt.v, tt.delta, got, tt.want)
		}
	}
}
