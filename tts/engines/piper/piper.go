// Package piper synthesizes speech with the Piper neural TTS command-line
// tool. Voices are the .onnx models found in a model directory.
package piper

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lawflow/lawflow/tts"
	"github.com/lawflow/lawflow/tts/audio"
	"github.com/lawflow/lawflow/tts/engines"
)

const modelExt = ".onnx"

// Config configures the Piper synthesizer.
type Config struct {
	Binary  string        // Path to piper; searched on PATH when empty
	Models  string        // Directory holding *.onnx voice models
	Timeout time.Duration // Per-utterance process timeout
}

// Synthesizer implements engines.Synthesizer with piper.
type Synthesizer struct {
	config Config
	run    engines.Runner
}

// New creates a Piper synthesizer.
func New(config Config) *Synthesizer {
	if config.Binary == "" {
		config.Binary = findPiperBinary()
	}
	return &Synthesizer{config: config, run: engines.RunCommand(config.Timeout)}
}

func findPiperBinary() string {
	candidates := []string{"piper", "/usr/local/bin/piper", "/usr/bin/piper"}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates,
			filepath.Join(home, ".local", "bin", "piper"),
			filepath.Join(home, "bin", "piper"),
		)
	}
	return engines.FindBinary(candidates...)
}

// Name implements engines.Synthesizer.
func (s *Synthesizer) Name() string { return "piper" }

// Available implements engines.Synthesizer.
func (s *Synthesizer) Available() error {
	if s.config.Binary == "" {
		return fmt.Errorf("%w: piper not found on PATH", engines.ErrUnavailable)
	}
	if s.config.Models == "" {
		return fmt.Errorf("%w: no piper model directory configured", engines.ErrUnavailable)
	}
	if _, err := os.Stat(s.config.Models); err != nil {
		return fmt.Errorf("%w: %w", engines.ErrUnavailable, err)
	}
	return nil
}

// Voices implements engines.Synthesizer by listing the model directory.
func (s *Synthesizer) Voices(ctx context.Context) ([]tts.Voice, error) {
	if err := s.Available(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(s.config.Models)
	if err != nil {
		return nil, fmt.Errorf("failed to read model directory: %w", err)
	}

	var voices []tts.Voice
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if e.IsDir() || !strings.HasSuffix(e.Name(), modelExt) {
			continue
		}
		voices = append(voices, voiceFromModel(strings.TrimSuffix(e.Name(), modelExt)))
	}
	slices.SortFunc(voices, func(a, b tts.Voice) int { return strings.Compare(a.ID, b.ID) })
	return voices, nil
}

// voiceFromModel derives a voice from a model name such as
// "th_TH-tsync-medium": language th-TH, name "tsync medium".
func voiceFromModel(id string) tts.Voice {
	v := tts.Voice{ID: id, Name: id}
	locale, rest, ok := strings.Cut(id, "-")
	if !ok {
		return v
	}
	v.Language = strings.ReplaceAll(locale, "_", "-")
	if rest != "" {
		v.Name = strings.ReplaceAll(rest, "-", " ")
	}
	return v
}

// Synthesize implements engines.Synthesizer. Piper has no pitch control;
// the rate maps onto the model's length scale.
func (s *Synthesizer) Synthesize(ctx context.Context, u tts.Utterance) (audio.Clip, error) {
	if err := s.Available(); err != nil {
		return audio.Clip{}, err
	}
	model, err := s.model(ctx, u.Voice)
	if err != nil {
		return audio.Clip{}, err
	}

	args := []string{"--model", model, "--output-raw"}
	if u.Rate > 0 && u.Rate != 1 {
		args = append(args, "--length_scale", strconv.FormatFloat(1/u.Rate, 'f', 2, 64))
	}
	out, err := s.run(ctx, u.Text+"\n", s.config.Binary, args...)
	if err != nil {
		return audio.Clip{}, err
	}
	clip := audio.Clip{PCM: out, SampleRate: sampleRate(model)}
	if err := clip.Validate(); err != nil {
		return audio.Clip{}, fmt.Errorf("no audio generated: %w", err)
	}
	return clip, nil
}

// model resolves a voice ID to a model path. Without a voice, the first
// Thai model is preferred, then the first model.
func (s *Synthesizer) model(ctx context.Context, voice string) (string, error) {
	if voice == "" {
		voices, err := s.Voices(ctx)
		if err != nil {
			return "", err
		}
		if len(voices) == 0 {
			return "", fmt.Errorf("%w: no models in %s", engines.ErrUnavailable, s.config.Models)
		}
		voice = voices[0].ID
		if thai := tts.ThaiVoices(voices); len(thai) > 0 {
			voice = thai[0].ID
		}
	}
	path := filepath.Join(s.config.Models, voice+modelExt)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("voice %q: %w", voice, err)
	}
	return path, nil
}

// sampleRate reads audio.sample_rate from the model's .onnx.json sidecar,
// defaulting to 22050 Hz.
func sampleRate(model string) int {
	data, err := os.ReadFile(model + ".json")
	if err != nil {
		return audio.SampleRate
	}
	var cfg struct {
		Audio struct {
			SampleRate int `json:"sample_rate"`
		} `json:"audio"`
	}
	if err := json.Unmarshal(data, &cfg); err != nil || cfg.Audio.SampleRate <= 0 {
		log.Debug("Ignoring unreadable piper model config", "model", model, "err", err)
		return audio.SampleRate
	}
	return cfg.Audio.SampleRate
}
