package ui

import (
	"github.com/charmbracelet/bubbles/key"
)

const keyEsc = "esc"

// libraryKeyMap are the bindings of the article list.
type libraryKeyMap struct {
	Up             key.Binding
	Down           key.Binding
	Open           key.Binding
	NextCategory   key.Binding
	PrevCategory   key.Binding
	Search         key.Binding
	Add            key.Binding
	Edit           key.Binding
	Delete         key.Binding
	AddCategory    key.Binding
	DeleteCategory key.Binding
	Help           key.Binding
	Quit           key.Binding
}

func newLibraryKeyMap() libraryKeyMap {
	return libraryKeyMap{
		Up:             key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:           key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Open:           key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		NextCategory:   key.NewBinding(key.WithKeys("tab", "l", "right"), key.WithHelp("tab", "next category")),
		PrevCategory:   key.NewBinding(key.WithKeys("shift+tab", "h", "left"), key.WithHelp("shift+tab", "prev category")),
		Search:         key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Add:            key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add article")),
		Edit:           key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit article")),
		Delete:         key.NewBinding(key.WithKeys("x", "delete"), key.WithHelp("x", "delete article")),
		AddCategory:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "add category")),
		DeleteCategory: key.NewBinding(key.WithKeys("C"), key.WithHelp("C", "delete category")),
		Help:           key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:           key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k libraryKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Open, k.NextCategory, k.Search, k.Add, k.Help, k.Quit}
}

func (k libraryKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Open},
		{k.NextCategory, k.PrevCategory, k.Search},
		{k.Add, k.Edit, k.Delete},
		{k.AddCategory, k.DeleteCategory, k.Help, k.Quit},
	}
}

// readerKeyMap are the bindings of the reader.
type readerKeyMap struct {
	Play          key.Binding
	Stop          key.Binding
	Repeat        key.Binding
	Faster        key.Binding
	Slower        key.Binding
	PitchUp       key.Binding
	PitchDown     key.Binding
	Voice         key.Binding
	ParagraphMode key.Binding
	NextParagraph key.Binding
	PrevParagraph key.Binding
	Copy          key.Binding
	Edit          key.Binding
	Back          key.Binding
	Help          key.Binding
	Quit          key.Binding
}

func newReaderKeyMap() readerKeyMap {
	return readerKeyMap{
		Play:          key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "play/pause")),
		Stop:          key.NewBinding(key.WithKeys("s", keyEsc), key.WithHelp("s/esc", "stop")),
		Repeat:        key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "repeat")),
		Faster:        key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "faster")),
		Slower:        key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "slower")),
		PitchUp:       key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "pitch up")),
		PitchDown:     key.NewBinding(key.WithKeys("["), key.WithHelp("[", "pitch down")),
		Voice:         key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "next voice")),
		ParagraphMode: key.NewBinding(key.WithKeys("P"), key.WithHelp("P", "paragraph mode")),
		NextParagraph: key.NewBinding(key.WithKeys("n", "right"), key.WithHelp("n/→", "next paragraph")),
		PrevParagraph: key.NewBinding(key.WithKeys("p", "left"), key.WithHelp("p/←", "prev paragraph")),
		Copy:          key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy text")),
		Edit:          key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit in $EDITOR")),
		Back:          key.NewBinding(key.WithKeys("backspace", "b"), key.WithHelp("b", "back to library")),
		Help:          key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:          key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k readerKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Play, k.Stop, k.Repeat, k.ParagraphMode, k.Back, k.Help}
}

func (k readerKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Play, k.Stop, k.Repeat},
		{k.Faster, k.Slower, k.PitchUp, k.PitchDown, k.Voice},
		{k.ParagraphMode, k.NextParagraph, k.PrevParagraph},
		{k.Copy, k.Edit, k.Back, k.Help, k.Quit},
	}
}
