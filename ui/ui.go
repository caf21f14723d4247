// Package ui provides the terminal interface for lawflow: the article
// library, the reader with its playback controls, and the edit dialogs.
package ui

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/log"
	te "github.com/muesli/termenv"

	"github.com/lawflow/lawflow/internal/library"
	"github.com/lawflow/lawflow/tts"
	"github.com/lawflow/lawflow/tts/paragraph"
)

const statusMessageTimeout = time.Second * 3 // how long to show messages like "เพิ่มมาตราเรียบร้อยแล้ว!"

// LibraryChangedMsg tells the program that the library was changed by
// another process and should be re-read.
type LibraryChangedMsg struct{}

type errMsg struct{ err error }

func (e errMsg) Error() string { return e.err.Error() }

type statusMessageTimeoutMsg struct{ id int }

// NewProgram returns a new Tea program reading articles from lib with
// engine.
func NewProgram(cfg Config, lib *library.Library, engine tts.Engine) *tea.Program {
	log.Debug(
		"Starting lawflow",
		"engine", cfg.EngineName,
		"glamour", cfg.GlamourEnabled,
		"paragraph_mode", cfg.ParagraphMode,
	)

	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if cfg.EnableMouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	d := &teaDispatcher{}
	m := newModel(cfg, lib, engine, d)
	p := tea.NewProgram(m, opts...)
	d.attach(p)
	return p
}

// state is the top-level application state.
type state int

const (
	stateShowLibrary state = iota
	stateShowArticle
	stateArticleForm
	stateCategoryForm
	stateConfirm
)

func (s state) String() string {
	return map[state]string{
		stateShowLibrary:  "showing library",
		stateShowArticle:  "showing article",
		stateArticleForm:  "editing article",
		stateCategoryForm: "adding category",
		stateConfirm:      "confirming",
	}[s]
}

// Common stuff we'll need to access in all models.
type commonModel struct {
	cfg        Config
	lib        *library.Library
	ctrl       *tts.Controller
	dispatcher *teaDispatcher
	width      int
	height     int

	// lastErr is set by the controller's error callback, which runs inside
	// Update, and picked up before Update returns.
	lastErr error
}

type model struct {
	common   *commonModel
	state    state
	fatalErr error

	// Sub-models
	library  libraryModel
	reader   readerModel
	form     articleFormModel
	category categoryFormModel
	confirm  confirmModel

	// State to return to when a dialog closes
	returnState state

	statusMessage   string
	statusIsError   bool
	statusMessageID int
}

func newModel(cfg Config, lib *library.Library, engine tts.Engine, d *teaDispatcher) model {
	if cfg.GlamourStyle == "" || cfg.GlamourStyle == styles.AutoStyle {
		if te.HasDarkBackground() {
			cfg.GlamourStyle = styles.DarkStyle
		} else {
			cfg.GlamourStyle = styles.LightStyle
		}
	}

	ctrl := tts.NewController(engine, d)
	ctrl.SetRepeat(cfg.Repeat)
	settings := tts.DefaultSettings()
	if cfg.Rate != 0 {
		settings.Rate = cfg.Rate
	}
	if cfg.Pitch != 0 {
		settings.Pitch = cfg.Pitch
	}
	settings.VoiceID = cfg.Voice
	if err := ctrl.SetSettings(settings); err != nil {
		log.Warn("ignoring invalid speech settings", "error", err)
	}

	common := &commonModel{
		cfg:        cfg,
		lib:        lib,
		ctrl:       ctrl,
		dispatcher: d,
	}
	ctrl.OnError(func(err error) {
		common.lastErr = err
	})

	m := model{
		common:   common,
		state:    stateShowLibrary,
		library:  newLibraryModel(common),
		reader:   newReaderModel(common, paragraph.New(ctrl)),
		form:     newArticleFormModel(common),
		category: newCategoryFormModel(common),
	}
	return m
}

func (m model) Init() tea.Cmd {
	log.Debug("Init() called", "state", m.state)
	return m.reader.spinner.Tick
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// If there's been an error, any key exits
	if m.fatalErr != nil {
		if _, ok := msg.(tea.KeyMsg); ok {
			return m, tea.Quit
		}
	}

	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Ctrl+C always quits no matter where in the application you are.
		if msg.String() == "ctrl+c" {
			return m, m.quit()
		}
		cmds = append(cmds, m.handleKey(msg))

	// Window size is received when starting up and on every resize
	case tea.WindowSizeMsg:
		m.common.width = msg.Width
		m.common.height = msg.Height
		m.library.setSize(msg.Width, msg.Height)
		m.form.setSize(msg.Width, msg.Height)
		if cmd := m.reader.setSize(msg.Width, msg.Height); cmd != nil {
			cmds = append(cmds, cmd)
		}

	case ttsEventMsg:
		if err := m.common.ctrl.Handle(msg.event); err != nil && !errors.Is(err, tts.ErrEngine) {
			log.Debug("playback event failed", "error", err)
		}

	case LibraryChangedMsg:
		log.Debug("library changed, refreshing")
		m.library.refresh()
		if m.state == stateShowArticle || m.returnState == stateShowArticle {
			if cmd := m.reloadArticle(); cmd != nil {
				cmds = append(cmds, cmd)
			}
		}

	case contentRenderedMsg:
		m.reader.setContent(msg)

	case editorFinishedMsg:
		cmds = append(cmds, m.finishEditor(msg))

	case statusMessageTimeoutMsg:
		if msg.id == m.statusMessageID {
			m.statusMessage = ""
			m.statusIsError = false
		}

	case errMsg:
		log.Error("error", "error", msg.err)
		cmds = append(cmds, m.showStatusMessage(msg.err.Error(), true))

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.reader, cmd = m.reader.updateSpinner(msg)
		cmds = append(cmds, cmd)

	default:
		cmds = append(cmds, m.updateFocused(msg))
	}

	if err := m.common.lastErr; err != nil {
		m.common.lastErr = nil
		cmds = append(cmds, m.showStatusMessage(tts.StatusError+": "+errorCause(err), true))
	}
	if m.state == stateShowArticle {
		cmds = append(cmds, m.reader.syncHighlight())
	}
	cmds = append(cmds, m.common.dispatcher.takeCmds()...)
	return m, tea.Batch(cmds...)
}

func (m *model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch m.state {
	case stateShowLibrary:
		return m.handleLibraryKey(msg)
	case stateShowArticle:
		return m.handleReaderKey(msg)
	case stateArticleForm:
		return m.handleArticleFormKey(msg)
	case stateCategoryForm:
		return m.handleCategoryFormKey(msg)
	case stateConfirm:
		return m.handleConfirmKey(msg)
	}
	return nil
}

// updateFocused passes non-key messages, such as cursor blinks, to the
// component that has focus.
func (m *model) updateFocused(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch m.state {
	case stateShowLibrary:
		m.library, cmd = m.library.update(msg)
	case stateShowArticle:
		m.reader, cmd = m.reader.update(msg)
	case stateArticleForm:
		m.form, cmd = m.form.update(msg)
	case stateCategoryForm:
		m.category, cmd = m.category.update(msg)
	}
	return cmd
}

func (m *model) quit() tea.Cmd {
	m.common.ctrl.Stop()
	return tea.Quit
}

// openArticle shows a in the reader. Selecting an article stops whatever
// was being read.
func (m *model) openArticle(a library.Article) tea.Cmd {
	log.Debug("opening article", "id", a.ID, "number", a.Number)
	m.state = stateShowArticle
	return m.reader.open(a)
}

func (m *model) reloadArticle() tea.Cmd {
	a, err := m.common.lib.Get(m.reader.article.ID)
	if err != nil {
		m.common.ctrl.Stop()
		if m.state == stateShowArticle {
			m.state = stateShowLibrary
		}
		m.returnState = stateShowLibrary
		return nil
	}
	if a == m.reader.article {
		return nil
	}
	return m.reader.open(a)
}

// Perform stuff that needs to happen after a successful action. The message
// disappears after statusMessageTimeout.
func (m *model) showStatusMessage(text string, isError bool) tea.Cmd {
	m.statusMessage = text
	m.statusIsError = isError
	m.statusMessageID++
	id := m.statusMessageID
	return tea.Tick(statusMessageTimeout, func(time.Time) tea.Msg {
		return statusMessageTimeoutMsg{id}
	})
}

func (m model) View() string {
	if m.fatalErr != nil {
		return errorView(m.fatalErr, true)
	}

	switch m.state {
	case stateShowArticle:
		return m.reader.View(m.statusMessage, m.statusIsError)
	case stateArticleForm:
		return m.form.View()
	case stateCategoryForm:
		return m.category.View()
	case stateConfirm:
		return m.confirm.View(m.common.width, m.common.height)
	default:
		return m.library.View(m.statusMessage, m.statusIsError)
	}
}

// errorCause returns the message of the innermost error, which is what a
// reader can act on.
func errorCause(err error) string {
	var engineErr *tts.EngineError
	if errors.As(err, &engineErr) && engineErr.Err != nil {
		return engineErr.Err.Error()
	}
	return err.Error()
}

func articleLabel(a library.Article) string {
	return fmt.Sprintf("%s (%s)", a.Number, library.ShortName(a.Category))
}
