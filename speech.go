package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/viper"

	"github.com/lawflow/lawflow/internal/cache"
	"github.com/lawflow/lawflow/tts"
	"github.com/lawflow/lawflow/tts/audio"
	"github.com/lawflow/lawflow/tts/engines"
	"github.com/lawflow/lawflow/tts/engines/espeak"
	"github.com/lawflow/lawflow/tts/engines/mock"
	"github.com/lawflow/lawflow/tts/engines/piper"
	"github.com/lawflow/lawflow/tts/engines/synth"
)

// Engine names accepted by tts.engine and tts.fallback.
const (
	engineEspeak = "espeak"
	enginePiper  = "piper"
	engineMock   = "mock"
)

// maxEngineFailures is how many chunks in a row the main engine may fail
// before the fallback takes over.
const maxEngineFailures = 3

// speech is the engine the controller drives plus the resources behind it.
type speech struct {
	engine tts.Engine
	name   string
	cache  *cache.Manager
}

func (s *speech) Close() error {
	return errors.Join(s.engine.Close(), s.cache.Close())
}

// newSynthesizer builds the synthesizer called name from the tts.* config.
func newSynthesizer(name string) (engines.Synthesizer, error) {
	switch name {
	case engineEspeak:
		cfg := espeak.DefaultConfig()
		if b := viper.GetString("tts.espeak.binary"); b != "" {
			cfg.Binary = expandPath(b)
		}
		if v := viper.GetString("tts.espeak.voice"); v != "" {
			cfg.Voice = v
		}
		return espeak.New(cfg), nil
	case enginePiper:
		return piper.New(piper.Config{
			Binary:  expandPath(viper.GetString("tts.piper.binary")),
			Models:  expandPath(viper.GetString("tts.piper.models")),
			Timeout: engines.DefaultTimeout,
		}), nil
	case engineMock:
		return mock.New(), nil
	default:
		return nil, fmt.Errorf("unknown speech engine %q: use %s, %s or %s", name, engineEspeak, enginePiper, engineMock)
	}
}

// configuredSynthesizer returns the main synthesizer, wrapped with the
// fallback when one is configured.
func configuredSynthesizer() (engines.Synthesizer, bool, error) {
	name := viper.GetString("tts.engine")
	primary, err := newSynthesizer(name)
	if err != nil {
		return nil, false, err
	}
	fb := viper.GetString("tts.fallback")
	if fb == "" || fb == name {
		return primary, name == engineMock, nil
	}
	secondary, err := newSynthesizer(fb)
	if err != nil {
		return nil, false, fmt.Errorf("fallback: %w", err)
	}
	return engines.NewFallback(primary, secondary, maxEngineFailures), name == engineMock && fb == engineMock, nil
}

func cacheConfig() (cache.CacheConfig, error) {
	cfg := cache.DefaultCacheConfig()
	if mb := viper.GetInt64("tts.cache.max_size"); mb > 0 {
		cfg.DiskCapacity = mb * 1024 * 1024
	}
	if dir := viper.GetString("tts.cache.dir"); dir != "" {
		cfg.DiskPath = expandPath(dir)
		return cfg, nil
	}
	dir, err := gap.NewScope(gap.User, "lawflow").CacheDir()
	if err != nil {
		return cfg, fmt.Errorf("unable to find cache directory: %w", err)
	}
	cfg.DiskPath = filepath.Join(dir, "audio")
	return cfg, nil
}

// openSpeech builds the configured engine. The mock engine plays into a
// silent player so no audio device is needed.
func openSpeech() (*speech, error) {
	s, silent, err := configuredSynthesizer()
	if err != nil {
		return nil, err
	}

	var player synth.Player
	if silent {
		player = audio.NewMockPlayer()
	} else {
		p, err := audio.NewPlayer()
		if err != nil {
			return nil, fmt.Errorf("unable to open audio output: %w", err)
		}
		player = p
	}

	cfg, err := cacheConfig()
	if err != nil {
		return nil, err
	}
	c, err := cache.NewManager(cfg)
	if err != nil {
		log.Warn("Audio cache unavailable, caching in memory only", "err", err)
		cfg.DiskPath = ""
		if c, err = cache.NewManager(cfg); err != nil {
			return nil, fmt.Errorf("unable to create audio cache: %w", err)
		}
	}

	log.Debug("Speech engine ready", "synth", s.Name(), "cache", cfg.DiskPath)
	return &speech{
		engine: synth.New(s, player, synth.WithCache(c)),
		name:   s.Name(),
		cache:  c,
	}, nil
}

// initialSettings returns the speech settings from the tts.* config.
func initialSettings() tts.Settings {
	s := tts.DefaultSettings()
	if r := viper.GetFloat64("tts.rate"); r != 0 {
		s.Rate = r
	}
	if viper.IsSet("tts.pitch") {
		s.Pitch = viper.GetFloat64("tts.pitch")
	}
	s.VoiceID = viper.GetString("tts.voice")
	return s
}
