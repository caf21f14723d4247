// Package espeak synthesizes speech with the espeak-ng command-line tool,
// which ships a Thai voice.
package espeak

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/lawflow/lawflow/tts"
	"github.com/lawflow/lawflow/tts/audio"
	"github.com/lawflow/lawflow/tts/engines"
)

// espeak-ng's default speaking rate in words per minute, and its pitch
// scale.
const (
	baseWPM   = 175
	basePitch = 50
	maxPitch  = 99
)

// Config configures the espeak-ng synthesizer.
type Config struct {
	Binary  string        // Path to espeak-ng; searched on PATH when empty
	Voice   string        // Voice used when an utterance names none
	Timeout time.Duration // Per-utterance process timeout
}

// DefaultConfig returns a configuration using the Thai voice.
func DefaultConfig() Config {
	return Config{
		Binary:  engines.FindBinary("espeak-ng", "espeak"),
		Voice:   "th",
		Timeout: engines.DefaultTimeout,
	}
}

// Synthesizer implements engines.Synthesizer with espeak-ng.
type Synthesizer struct {
	config Config
	run    engines.Runner
}

// New creates an espeak-ng synthesizer.
func New(config Config) *Synthesizer {
	if config.Binary == "" {
		config.Binary = engines.FindBinary("espeak-ng", "espeak")
	}
	return &Synthesizer{config: config, run: engines.RunCommand(config.Timeout)}
}

// Name implements engines.Synthesizer.
func (s *Synthesizer) Name() string { return "espeak" }

// Available implements engines.Synthesizer.
func (s *Synthesizer) Available() error {
	if s.config.Binary == "" {
		return fmt.Errorf("%w: espeak-ng not found on PATH", engines.ErrUnavailable)
	}
	return nil
}

// Voices implements engines.Synthesizer by parsing espeak-ng --voices.
func (s *Synthesizer) Voices(ctx context.Context) ([]tts.Voice, error) {
	if err := s.Available(); err != nil {
		return nil, err
	}
	out, err := s.run(ctx, "", s.config.Binary, "--voices")
	if err != nil {
		return nil, fmt.Errorf("failed to list voices: %w", err)
	}
	return parseVoices(out), nil
}

// Synthesize implements engines.Synthesizer.
func (s *Synthesizer) Synthesize(ctx context.Context, u tts.Utterance) (audio.Clip, error) {
	if err := s.Available(); err != nil {
		return audio.Clip{}, err
	}
	out, err := s.run(ctx, u.Text, s.config.Binary, s.args(u)...)
	if err != nil {
		return audio.Clip{}, err
	}
	clip, err := audio.ParseWAV(out)
	if err != nil {
		return audio.Clip{}, fmt.Errorf("unexpected espeak-ng output: %w", err)
	}
	return clip, nil
}

// args maps rate and pitch multipliers onto espeak-ng's words per minute
// and 0-99 pitch scale.
func (s *Synthesizer) args(u tts.Utterance) []string {
	voice := u.Voice
	if voice == "" {
		voice = s.config.Voice
	}
	rate := u.Rate
	if rate <= 0 {
		rate = 1
	}
	pitch := int(math.Round(u.Pitch * basePitch))
	pitch = max(0, min(maxPitch, pitch))

	args := []string{
		"-s", strconv.Itoa(int(math.Round(rate * baseWPM))),
		"-p", strconv.Itoa(pitch),
		"--stdout",
		"--stdin",
	}
	if voice != "" {
		args = append([]string{"-v", voice}, args...)
	}
	return args
}

// parseVoices reads the table printed by espeak-ng --voices:
//
//	Pty Language       Age/Gender VoiceName          File          Other Languages
//	 5  th              --/M      Thai               sit/th
func parseVoices(out []byte) []tts.Voice {
	var voices []tts.Voice
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 4 || fields[0] == "Pty" {
			continue
		}
		if _, err := strconv.Atoi(fields[0]); err != nil {
			continue
		}
		lang := fields[1]
		voices = append(voices, tts.Voice{
			ID:       lang,
			Name:     strings.ReplaceAll(fields[3], "_", " "),
			Language: lang,
		})
	}
	return voices
}
