package tts

import (
	"errors"
	"fmt"
)

// Common errors for the playback system.
var (
	// ErrEmptyInput is returned by Start when the text has nothing to read.
	ErrEmptyInput = errors.New("nothing to read")

	// ErrEngine marks failures reported by the speech engine.
	ErrEngine = errors.New("speech engine failed")

	// ErrEngineClosed is returned by engines after Close.
	ErrEngineClosed = errors.New("speech engine is closed")

	// ErrCanceled is passed to done callbacks of canceled utterances.
	ErrCanceled = errors.New("utterance was canceled")

	// ErrNotPaused is returned by engines asked to resume without a pause.
	ErrNotPaused = errors.New("nothing is paused")

	// ErrInvalidRate is returned for speech rates out of range.
	ErrInvalidRate = errors.New("invalid speech rate")

	// ErrInvalidPitch is returned for pitches out of range.
	ErrInvalidPitch = errors.New("invalid pitch")
)

// EngineError describes a speech failure that abandoned a playback session.
type EngineError struct {
	Index int    // Chunk index being spoken
	Text  string // Chunk text
	Err   error  // Underlying engine error
}

// Error implements the error interface.
func (e *EngineError) Error() string {
	return fmt.Sprintf("speech engine failed on chunk %d: %v", e.Index, e.Err)
}

// Unwrap exposes both ErrEngine and the engine's own error to errors.Is.
func (e *EngineError) Unwrap() []error {
	return []error{ErrEngine, e.Err}
}

// IsRecoverableError reports whether the application can carry on after
// err. Only a closed engine ends reading for good.
func IsRecoverableError(err error) bool {
	if err == nil {
		return true
	}
	return !errors.Is(err, ErrEngineClosed)
}
