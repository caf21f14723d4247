// Package tts reads text aloud one sentence at a time. The Controller owns
// the playback state machine and drives an Engine; everything it does runs
// on a single goroutine fed by a Dispatcher.
package tts

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lawflow/lawflow/tts/sentence"
)

// ControllerConfig holds the pause lengths used between utterances.
type ControllerConfig struct {
	SentencePause    time.Duration // After a chunk inside a paragraph
	ParagraphPause   time.Duration // After the last chunk of a paragraph
	RepeatDelay      time.Duration // Before starting over in repeat mode
	StatusResetDelay time.Duration // How long "finished" stays on screen
}

// DefaultControllerConfig returns the standard reading rhythm.
func DefaultControllerConfig() ControllerConfig {
	return ControllerConfig{
		SentencePause:    300 * time.Millisecond,
		ParagraphPause:   time.Second,
		RepeatDelay:      time.Second,
		StatusResetDelay: 2 * time.Second,
	}
}

// Controller is the playback state machine. It is not safe for concurrent
// use: every method, including Handle, must be called from the goroutine
// that receives the Dispatcher's events.
type Controller struct {
	engine     Engine
	dispatcher Dispatcher
	config     ControllerConfig

	state  PlaybackState
	chunks []sentence.Chunk

	// session identifies the current playback. Every callback and scheduled
	// continuation carries the session it was created for; anything from an
	// older session is discarded.
	session uint64

	// pending is a continuation that fired while paused.
	pending *ContinueEvent

	settings Settings
	voices   []Voice
	status   string
	progress float64

	onStateChange func(Snapshot)
	onError       func(error)
}

// NewController creates a controller for engine. Engine callbacks and
// timers are routed through dispatcher.
func NewController(engine Engine, dispatcher Dispatcher) *Controller {
	c := &Controller{
		engine:     engine,
		dispatcher: dispatcher,
		config:     DefaultControllerConfig(),
		settings:   DefaultSettings(),
		status:     StatusReady,
	}
	c.setVoices(engine.Voices())
	engine.OnVoicesChanged(func(voices []Voice) {
		dispatcher.Dispatch(VoicesChanged{Voices: voices})
	})
	return c
}

// SetConfiguration replaces the pause lengths.
func (c *Controller) SetConfiguration(config ControllerConfig) {
	c.config = config
}

// OnStateChange registers a callback invoked after every visible change.
func (c *Controller) OnStateChange(fn func(Snapshot)) {
	c.onStateChange = fn
}

// OnError registers a callback for engine failures.
func (c *Controller) OnError(fn func(error)) {
	c.onError = fn
}

// Start begins reading text, or resumes in place when paused. Any other
// in-flight reading is canceled first. It returns ErrEmptyInput, without
// touching the current state, when text has nothing to read.
func (c *Controller) Start(text string) error {
	if c.state.State() == StatePaused {
		return c.resume()
	}

	chunks := sentence.Collect(text)
	if len(chunks) == 0 {
		if c.state.State() == StateIdle {
			c.status = StatusNoText
			c.notify()
		}
		return ErrEmptyInput
	}

	c.cancelEngine()
	c.session++
	c.pending = nil
	c.chunks = chunks
	c.state = c.state.reset()
	c.state.IsSpeaking = true
	c.status = StatusSpeaking
	c.progress = 0

	log.Debug("Starting playback", "session", c.session, "chunks", len(chunks))
	c.speakCurrent()
	return nil
}

// TogglePlay pauses when speaking and starts or resumes otherwise.
func (c *Controller) TogglePlay(text string) error {
	if c.state.State() == StateSpeaking {
		return c.Pause()
	}
	return c.Start(text)
}

// Pause suspends playback. It is a no-op unless speaking.
func (c *Controller) Pause() error {
	if c.state.State() != StateSpeaking {
		return nil
	}
	if err := c.engine.Pause(); err != nil {
		return fmt.Errorf("failed to pause engine: %w", err)
	}
	c.state.IsPaused = true
	c.status = StatusPaused
	c.notify()
	return nil
}

// Stop cancels playback from any state and resets to the first chunk. It
// is always safe to call.
func (c *Controller) Stop() {
	c.cancelEngine()
	c.session++
	c.pending = nil
	c.chunks = nil
	c.state = c.state.reset()
	c.status = StatusReady
	c.progress = 0
	c.notify()
}

// SetRepeat turns repeat-on-completion on or off.
func (c *Controller) SetRepeat(on bool) {
	c.state.RepeatEnabled = on
	c.notify()
}

// ToggleRepeat flips repeat mode and returns the new value.
func (c *Controller) ToggleRepeat() bool {
	c.SetRepeat(!c.state.RepeatEnabled)
	return c.state.RepeatEnabled
}

// SetSettings replaces voice, rate and pitch after validating them.
func (c *Controller) SetSettings(s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	c.settings = s
	c.notify()
	return nil
}

// SetVoice selects a voice by ID. Unknown IDs are kept and fall back to the
// engine default when spoken, since the voice list may still be loading.
func (c *Controller) SetVoice(id string) {
	c.settings.VoiceID = id
	c.notify()
}

// NextVoice cycles to the next known voice and returns it.
func (c *Controller) NextVoice() (Voice, bool) {
	if len(c.voices) == 0 {
		return Voice{}, false
	}
	next := 0
	for i, v := range c.voices {
		if v.ID == c.settings.VoiceID {
			next = (i + 1) % len(c.voices)
			break
		}
	}
	c.SetVoice(c.voices[next].ID)
	return c.voices[next], true
}

// AdjustRate moves the rate by steps of Step.
func (c *Controller) AdjustRate(steps int) float64 {
	c.settings.Rate = stepValue(c.settings.Rate, float64(steps)*Step, MinRate, MaxRate)
	c.notify()
	return c.settings.Rate
}

// AdjustPitch moves the pitch by steps of Step.
func (c *Controller) AdjustPitch(steps int) float64 {
	c.settings.Pitch = stepValue(c.settings.Pitch, float64(steps)*Step, MinPitch, MaxPitch)
	c.notify()
	return c.settings.Pitch
}

// State returns a copy of the playback flags.
func (c *Controller) State() PlaybackState {
	return c.state
}

// Snapshot returns everything a renderer needs.
func (c *Controller) Snapshot() Snapshot {
	s := Snapshot{
		PlaybackState:      c.state,
		State:              c.state.State(),
		Total:              len(c.chunks),
		Progress:           c.progress,
		Status:             c.status,
		Settings:           c.settings,
		Voices:             append([]Voice(nil), c.voices...),
		ThaiVoiceAvailable: len(ThaiVoices(c.voices)) > 0,
	}
	if c.state.SentenceIndex < len(c.chunks) {
		s.Chunk = c.chunks[c.state.SentenceIndex]
	}
	return s
}

// Handle applies an event. It returns the error an event surfaced, if any;
// stale events are dropped without error.
func (c *Controller) Handle(ev Event) error {
	switch ev := ev.(type) {
	case ChunkFinished:
		if c.isStale(ev.Session, ev.Index) {
			log.Debug("Dropping stale chunk completion", "session", ev.Session, "index", ev.Index)
			return nil
		}
		c.advance()

	case ChunkFailed:
		if c.isStale(ev.Session, ev.Index) {
			log.Debug("Dropping stale chunk failure", "session", ev.Session, "index", ev.Index, "err", ev.Err)
			return nil
		}
		return c.fail(ev.Index, ev.Err)

	case ContinueEvent:
		if ev.Session != c.session || !c.state.IsSpeaking {
			log.Debug("Dropping stale continuation", "session", ev.Session, "current", c.session)
			return nil
		}
		if c.state.IsPaused {
			c.pending = &ev
			return nil
		}
		c.speakCurrent()

	case UserPause:
		return c.Pause()

	case UserStop:
		c.Stop()

	case VoicesChanged:
		c.setVoices(ev.Voices)
		c.notify()

	case StatusReset:
		if ev.Session == c.session && c.state.State() == StateIdle {
			c.status = StatusReady
			c.progress = 0
			c.notify()
		}

	case callEvent:
		ev.fn()
	}
	return nil
}

// isStale reports whether an engine callback belongs to an older session or
// a chunk other than the one being spoken.
func (c *Controller) isStale(session uint64, index int) bool {
	return session != c.session || !c.state.IsSpeaking || index != c.state.SentenceIndex
}

// advance moves past the chunk that just finished and schedules whatever
// comes next.
func (c *Controller) advance() {
	finished := c.chunks[c.state.SentenceIndex]
	c.state.SentenceIndex++

	if c.state.SentenceIndex < len(c.chunks) {
		delay := c.config.SentencePause
		if finished.IsLastInParagraph {
			delay = c.config.ParagraphPause
		}
		c.dispatcher.DispatchAfter(delay, ContinueEvent{Session: c.session})
		return
	}

	if c.state.RepeatEnabled {
		log.Debug("Repeating playback", "session", c.session)
		c.state.SentenceIndex = 0
		c.progress = 0
		c.status = StatusRepeating
		c.dispatcher.DispatchAfter(c.config.RepeatDelay, ContinueEvent{Session: c.session})
		c.notify()
		return
	}

	log.Debug("Playback complete", "session", c.session)
	c.session++
	c.chunks = nil
	c.state = c.state.reset()
	c.progress = 1
	c.status = StatusFinished
	c.dispatcher.DispatchAfter(c.config.StatusResetDelay, StatusReset{Session: c.session})
	c.notify()
}

// speakCurrent dispatches the chunk at SentenceIndex with the settings in
// effect right now.
func (c *Controller) speakCurrent() {
	index := c.state.SentenceIndex
	chunk := c.chunks[index]
	session := c.session

	u := Utterance{
		Text:  chunk.Text,
		Voice: c.resolveVoice(),
		Rate:  c.settings.Rate,
		Pitch: c.settings.Pitch,
	}

	c.progress = float64(index+1) / float64(len(c.chunks))
	if c.status != StatusRepeating {
		c.status = StatusSpeaking
	}

	log.Debug("Speaking chunk", "session", session, "index", index, "paragraph", chunk.ParagraphIndex, "voice", u.Voice)
	err := c.engine.Speak(u, func(err error) {
		if err != nil {
			c.dispatcher.Dispatch(ChunkFailed{Session: session, Index: index, Err: err})
			return
		}
		c.dispatcher.Dispatch(ChunkFinished{Session: session, Index: index})
	})
	if err != nil {
		_ = c.fail(index, err)
		return
	}
	c.notify()
}

// resume continues a paused session, including a continuation that came due
// while paused.
func (c *Controller) resume() error {
	if err := c.engine.Resume(); err != nil && !errors.Is(err, ErrNotPaused) {
		return c.fail(c.state.SentenceIndex, fmt.Errorf("failed to resume: %w", err))
	}
	c.state.IsPaused = false
	c.status = StatusSpeaking

	if p := c.pending; p != nil {
		c.pending = nil
		return c.Handle(*p)
	}
	c.notify()
	return nil
}

// fail abandons the session after an engine error.
func (c *Controller) fail(index int, err error) error {
	engineErr := &EngineError{Index: index, Err: err}
	if index < len(c.chunks) {
		engineErr.Text = c.chunks[index].Text
	}
	log.Error("Speech engine failed", "index", index, "err", err)

	c.cancelEngine()
	c.session++
	c.pending = nil
	c.chunks = nil
	c.state = c.state.reset()
	c.status = StatusError
	c.progress = 0

	if c.onError != nil {
		c.onError(engineErr)
	}
	c.notify()
	return engineErr
}

// resolveVoice returns the selected voice if the engine still offers it,
// otherwise the engine default.
func (c *Controller) resolveVoice() string {
	id := c.settings.VoiceID
	if id == "" {
		return ""
	}
	if _, ok := FindVoice(c.voices, id); !ok {
		log.Warn("Selected voice unavailable, using engine default", "voice", id)
		return ""
	}
	return id
}

// setVoices replaces the voice list. An empty list keeps the current choice
// because engines may publish their voices late. A missing choice falls
// back to the first Thai voice.
func (c *Controller) setVoices(voices []Voice) {
	c.voices = append([]Voice(nil), voices...)
	if len(voices) == 0 {
		return
	}
	if _, ok := FindVoice(voices, c.settings.VoiceID); ok {
		return
	}
	c.settings.VoiceID = ""
	if thai := ThaiVoices(voices); len(thai) > 0 {
		c.settings.VoiceID = thai[0].ID
	} else {
		log.Warn("No Thai voice installed", "voices", len(voices))
	}
}

func (c *Controller) cancelEngine() {
	if err := c.engine.Cancel(); err != nil {
		log.Debug("Engine cancel failed", "err", err)
	}
}

func (c *Controller) notify() {
	if c.onStateChange != nil {
		c.onStateChange(c.Snapshot())
	}
}
