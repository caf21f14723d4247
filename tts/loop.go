package tts

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Handler consumes events on the loop goroutine.
type Handler interface {
	Handle(ev Event) error
}

// Loop is a Dispatcher that runs every event on one goroutine. It is the
// execution context for headless reading; the TUI uses the Bubble Tea
// program instead.
type Loop struct {
	mu     sync.Mutex
	queue  []Event
	wake   chan struct{}
	timers map[*time.Timer]struct{}
}

// NewLoop creates an idle loop. Events dispatched before Run are queued.
func NewLoop() *Loop {
	return &Loop{
		wake:   make(chan struct{}, 1),
		timers: make(map[*time.Timer]struct{}),
	}
}

// Dispatch queues ev. It never blocks, so engine callbacks may call it from
// inside Speak.
func (l *Loop) Dispatch(ev Event) {
	l.mu.Lock()
	l.queue = append(l.queue, ev)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// DispatchAfter queues ev once d has elapsed.
func (l *Loop) DispatchAfter(d time.Duration, ev Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var t *time.Timer
	t = time.AfterFunc(d, func() {
		l.mu.Lock()
		delete(l.timers, t)
		l.mu.Unlock()
		l.Dispatch(ev)
	})
	l.timers[t] = struct{}{}
}

// Do runs fn on the loop goroutine.
func (l *Loop) Do(fn func()) {
	l.Dispatch(callEvent{fn: fn})
}

// Run handles events until ctx is done, then stops pending timers.
func (l *Loop) Run(ctx context.Context, h Handler) error {
	defer l.stopTimers()

	for {
		for _, ev := range l.drain() {
			if call, ok := ev.(callEvent); ok {
				call.fn()
				continue
			}
			if err := h.Handle(ev); err != nil {
				log.Debug("Event surfaced an error", "event", ev, "err", err)
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}

func (l *Loop) drain() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	q := l.queue
	l.queue = nil
	return q
}

func (l *Loop) stopTimers() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for t := range l.timers {
		t.Stop()
	}
	clear(l.timers)
}
