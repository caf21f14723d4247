package tts

// Events are delivered to Controller.Handle on the controller's goroutine.
// They double as Bubble Tea messages.

// Event is anything the controller handles.
type Event interface {
	event()
}

// ChunkFinished is posted when the engine finishes a chunk naturally.
type ChunkFinished struct {
	Session uint64
	Index   int
}

// ChunkFailed is posted when the engine fails while speaking a chunk.
type ChunkFailed struct {
	Session uint64
	Index   int
	Err     error
}

// ContinueEvent is posted when an inter-chunk or repeat delay has elapsed.
type ContinueEvent struct {
	Session uint64
}

// UserPause asks the controller to pause.
type UserPause struct{}

// UserStop asks the controller to stop.
type UserStop struct{}

// VoicesChanged carries a replacement voice list from the engine.
type VoicesChanged struct {
	Voices []Voice
}

// StatusReset returns a finished session's status line to ready.
type StatusReset struct {
	Session uint64
}

// callEvent runs fn on the loop goroutine.
type callEvent struct {
	fn func()
}

func (ChunkFinished) event() {}
func (ChunkFailed) event()   {}
func (ContinueEvent) event() {}
func (UserPause) event()     {}
func (UserStop) event()      {}
func (VoicesChanged) event() {}
func (StatusReset) event()   {}
func (callEvent) event()     {}
