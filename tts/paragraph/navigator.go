// Package paragraph implements paragraph mode: reading an article one
// paragraph at a time with previous/next navigation.
package paragraph

import (
	"fmt"

	"github.com/lawflow/lawflow/tts/sentence"
)

// Stopper halts playback. The playback controller satisfies it.
type Stopper interface {
	Stop()
}

// State is the navigator's data. OriginalText is captured once on Enable
// and handed back verbatim on Disable.
type State struct {
	Paragraphs   []string
	CurrentIndex int
	OriginalText string
}

// Navigator tracks the current paragraph while paragraph mode is on.
type Navigator struct {
	state   State
	enabled bool
	stopper Stopper
}

// New returns a navigator that stops playback through s whenever the
// current paragraph changes. s may be nil.
func New(s Stopper) *Navigator {
	return &Navigator{stopper: s}
}

// Enable turns paragraph mode on for text and returns the first paragraph.
// Paragraphs are separated by blank lines; when text has none, all of it is
// one paragraph.
func (n *Navigator) Enable(text string) string {
	paragraphs := sentence.Paragraphs(text)
	if len(paragraphs) == 0 {
		paragraphs = []string{text}
	}
	n.state = State{
		Paragraphs:   paragraphs,
		OriginalText: text,
	}
	n.enabled = true
	return n.Current()
}

// Disable turns paragraph mode off and returns the text Enable was given.
func (n *Navigator) Disable() string {
	original := n.state.OriginalText
	n.state = State{}
	n.enabled = false
	return original
}

// Enabled reports whether paragraph mode is on.
func (n *Navigator) Enabled() bool { return n.enabled }

// Current returns the paragraph being displayed.
func (n *Navigator) Current() string {
	if len(n.state.Paragraphs) == 0 {
		return ""
	}
	return n.state.Paragraphs[n.state.CurrentIndex]
}

// Index returns the zero-based current paragraph.
func (n *Navigator) Index() int { return n.state.CurrentIndex }

// Len returns the number of paragraphs.
func (n *Navigator) Len() int { return len(n.state.Paragraphs) }

// State returns a copy of the navigator's data.
func (n *Navigator) State() State {
	s := n.state
	s.Paragraphs = append([]string(nil), n.state.Paragraphs...)
	return s
}

// CanPrevious reports whether Previous would move.
func (n *Navigator) CanPrevious() bool {
	return n.state.CurrentIndex > 0
}

// CanNext reports whether Next would move.
func (n *Navigator) CanNext() bool {
	return n.state.CurrentIndex < len(n.state.Paragraphs)-1
}

// Next moves to the following paragraph and stops playback. It returns
// false, changing nothing, at the last paragraph.
func (n *Navigator) Next() bool {
	if !n.CanNext() {
		return false
	}
	n.state.CurrentIndex++
	n.stop()
	return true
}

// Previous moves to the preceding paragraph and stops playback. It returns
// false, changing nothing, at the first paragraph.
func (n *Navigator) Previous() bool {
	if !n.CanPrevious() {
		return false
	}
	n.state.CurrentIndex--
	n.stop()
	return true
}

// Indicator returns the position as "n/total", one-based.
func (n *Navigator) Indicator() string {
	if len(n.state.Paragraphs) == 0 {
		return "0/0"
	}
	return fmt.Sprintf("%d/%d", n.state.CurrentIndex+1, len(n.state.Paragraphs))
}

func (n *Navigator) stop() {
	if n.stopper != nil {
		n.stopper.Stop()
	}
}
