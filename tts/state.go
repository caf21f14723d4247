package tts

import "github.com/lawflow/lawflow/tts/sentence"

// StateType is the externally visible playback state.
type StateType int

const (
	// StateIdle indicates nothing is being read.
	StateIdle StateType = iota
	// StateSpeaking indicates chunks are being dispatched to the engine.
	StateSpeaking
	// StatePaused indicates playback is suspended in place.
	StatePaused
)

// String returns the string representation of the state.
func (s StateType) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSpeaking:
		return "speaking"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}

// Status lines shown to the reader.
const (
	StatusReady       = "พร้อมฟัง"
	StatusSpeaking    = "กำลังอ่าน..."
	StatusPaused      = "หยุดชั่วคราว"
	StatusFinished    = "อ่านเสร็จแล้ว"
	StatusRepeating   = "🔁 กำลังอ่านซ้ำ..."
	StatusError       = "เกิดข้อผิดพลาด"
	StatusNoText      = "ไม่พบข้อความที่จะอ่าน"
	StatusNoThaiVoice = "ไม่พบเสียงภาษาไทย ระบบจะใช้เสียงภาษาอื่นแทน"
)

// PlaybackState is the controller's mutable state.
type PlaybackState struct {
	SentenceIndex int
	IsSpeaking    bool
	IsPaused      bool
	RepeatEnabled bool
}

// State derives the visible state from the flags.
func (s PlaybackState) State() StateType {
	switch {
	case !s.IsSpeaking:
		return StateIdle
	case s.IsPaused:
		return StatePaused
	default:
		return StateSpeaking
	}
}

// reset returns the state after a stop. Repeat is a user preference and
// survives.
func (s PlaybackState) reset() PlaybackState {
	return PlaybackState{RepeatEnabled: s.RepeatEnabled}
}

// Snapshot is a read-only copy of everything a renderer needs.
type Snapshot struct {
	PlaybackState

	State    StateType
	Total    int     // Chunks in the current session
	Progress float64 // (SentenceIndex+1)/Total once a chunk has begun
	Status   string  // Status line text
	Chunk    sentence.Chunk

	Settings           Settings
	Voices             []Voice
	ThaiVoiceAvailable bool
}

// CanPlay reports whether play should be offered.
func (s Snapshot) CanPlay() bool { return s.State != StateSpeaking }

// CanPause reports whether pause should be offered.
func (s Snapshot) CanPause() bool { return s.State == StateSpeaking }

// CanStop reports whether stop should be offered.
func (s Snapshot) CanStop() bool { return s.State != StateIdle }
