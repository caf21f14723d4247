package ui

import (
	"testing"
	"time"

	"github.com/lawflow/lawflow/tts"
)

func TestDispatcherBuffersUntilAttached(t *testing.T) {
	d := &teaDispatcher{}
	d.Dispatch(tts.UserStop{})
	d.Dispatch(tts.UserPause{})

	early := d.takeEarly()
	if len(early) != 2 {
		t.Fatalf("takeEarly() returned %d events, want 2", len(early))
	}
	if _, ok := early[0].(tts.UserStop); !ok {
		t.Errorf("first event = %T, want tts.UserStop", early[0])
	}
	if len(d.takeEarly()) != 0 {
		t.Error("takeEarly() should clear the buffer")
	}
}

func TestDispatchAfterCollectsCommands(t *testing.T) {
	d := &teaDispatcher{}
	d.DispatchAfter(time.Millisecond, tts.ContinueEvent{Session: 3})
	d.DispatchAfter(time.Millisecond, tts.StatusReset{Session: 3})

	cmds := d.takeCmds()
	if len(cmds) != 2 {
		t.Fatalf("takeCmds() returned %d commands, want 2", len(cmds))
	}
	msg, ok := cmds[0]().(ttsEventMsg)
	if !ok {
		t.Fatalf("command produced %T, want ttsEventMsg", cmds[0]())
	}
	if ev, ok := msg.event.(tts.ContinueEvent); !ok || ev.Session != 3 {
		t.Errorf("event = %#v", msg.event)
	}
	if len(d.takeCmds()) != 0 {
		t.Error("takeCmds() should clear the queue")
	}
}
