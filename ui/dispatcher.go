package ui

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lawflow/lawflow/tts"
)

// ttsEventMsg carries a playback event into the Bubble Tea loop, which is
// the goroutine that owns the controller.
type ttsEventMsg struct{ event tts.Event }

// teaDispatcher implements tts.Dispatcher on top of a Bubble Tea program.
// Engine callbacks arrive from other goroutines and are sent to the
// program. Delays are scheduled by the controller while it runs inside
// Update, so they are collected as tea.Tick commands and returned from
// that same Update.
type teaDispatcher struct {
	mu      sync.Mutex
	program *tea.Program
	early   []tts.Event
	cmds    []tea.Cmd
}

// Dispatch implements tts.Dispatcher. It never blocks: Send runs on its own
// goroutine because the callback may fire while Update is running.
func (d *teaDispatcher) Dispatch(ev tts.Event) {
	d.mu.Lock()
	p := d.program
	if p == nil {
		d.early = append(d.early, ev)
		d.mu.Unlock()
		return
	}
	d.mu.Unlock()

	go p.Send(ttsEventMsg{ev})
}

// DispatchAfter implements tts.Dispatcher.
func (d *teaDispatcher) DispatchAfter(delay time.Duration, ev tts.Event) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cmds = append(d.cmds, tea.Tick(delay, func(time.Time) tea.Msg {
		return ttsEventMsg{ev}
	}))
}

// attach connects the dispatcher to its program and flushes events that
// were dispatched before the program existed.
func (d *teaDispatcher) attach(p *tea.Program) {
	d.mu.Lock()
	d.program = p
	early := d.early
	d.early = nil
	d.mu.Unlock()

	for _, ev := range early {
		go p.Send(ttsEventMsg{ev})
	}
}

// takeCmds returns and clears the scheduled ticks.
func (d *teaDispatcher) takeCmds() []tea.Cmd {
	d.mu.Lock()
	defer d.mu.Unlock()
	cmds := d.cmds
	d.cmds = nil
	return cmds
}

// takeEarly returns and clears events dispatched before attach. Tests use
// it in place of a running program.
func (d *teaDispatcher) takeEarly() []tts.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	early := d.early
	d.early = nil
	return early
}
