package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/log"
	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/termenv"

	"github.com/lawflow/lawflow/internal/library"
	"github.com/lawflow/lawflow/tts"
	"github.com/lawflow/lawflow/tts/paragraph"
)

const progressWidth = 16

type contentRenderedMsg string

// readerModel shows one article and drives its playback.
type readerModel struct {
	common   *commonModel
	article  library.Article
	nav      *paragraph.Navigator
	viewport viewport.Model
	progress progress.Model
	spinner  spinner.Model
	help     help.Model
	keys     readerKeyMap
	showHelp bool

	// What the viewport currently shows highlighted.
	rendered highlightKey
}

func newReaderModel(common *commonModel, nav *paragraph.Navigator) readerModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = subtleStyle

	return readerModel{
		common:   common,
		nav:      nav,
		viewport: viewport.New(0, 0),
		progress: progress.New(
			progress.WithDefaultGradient(),
			progress.WithWidth(progressWidth),
			progress.WithoutPercentage(),
		),
		spinner: sp,
		help:    help.New(),
		keys:    newReaderKeyMap(),
	}
}

func (m *readerModel) setSize(w, h int) tea.Cmd {
	m.help.Width = w
	m.viewport.Width = w
	m.viewport.Height = max(0, h-m.footerHeight())
	if m.article.ID == 0 {
		return nil
	}
	return m.render()
}

func (m readerModel) footerHeight() int {
	h := statusBarHeight
	if m.showThaiWarning() {
		h++
	}
	if m.showHelp {
		h += lineCount(m.help.View(m.keys))
	}
	return h
}

func (m *readerModel) toggleHelp() {
	m.showHelp = !m.showHelp
	m.help.ShowAll = m.showHelp
	m.viewport.Height = max(0, m.common.height-m.footerHeight())
}

// open loads a into the reader. Playback is stopped; paragraph mode carries
// over to the new article.
func (m *readerModel) open(a library.Article) tea.Cmd {
	m.common.ctrl.Stop()
	m.article = a
	if m.nav.Enabled() || m.common.cfg.ParagraphMode {
		m.nav.Disable()
		m.nav.Enable(a.Content)
	}
	m.viewport.GotoTop()
	return m.render()
}

// text is what play reads: the current paragraph in paragraph mode,
// otherwise the whole article.
func (m readerModel) text() string {
	if m.nav.Enabled() {
		return m.nav.Current()
	}
	return m.article.Content
}

func (m readerModel) currentHighlight() highlightKey {
	snap := m.common.ctrl.Snapshot()
	if snap.State == tts.StateIdle {
		return highlightKey{}
	}
	return highlightKey{
		active:    true,
		paragraph: snap.Chunk.ParagraphIndex,
		offset:    snap.Chunk.Offset,
		text:      snap.Chunk.Text,
	}
}

// syncHighlight re-renders when the chunk being read has changed.
func (m *readerModel) syncHighlight() tea.Cmd {
	if m.article.ID == 0 || m.currentHighlight() == m.rendered {
		return nil
	}
	return m.render()
}

func (m *readerModel) render() tea.Cmd {
	hl := m.currentHighlight()
	m.rendered = hl
	snap := m.common.ctrl.Snapshot()

	if !m.common.cfg.GlamourEnabled {
		s := labelStyle.Render(m.article.Number) + "\n" +
			subtleStyle.Render(m.article.Category) + "\n\n" +
			highlightPlain(m.text(), snap.Chunk, hl.active, m.viewport.Width)
		return func() tea.Msg { return contentRenderedMsg(s) }
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", m.article.Number)
	fmt.Fprintf(&b, "_%s_\n\n", m.article.Category)
	b.WriteString(highlightMarkdown(m.text(), snap.Chunk, hl.active))

	return renderWithGlamour(m.common.cfg, m.viewport.Width, b.String())
}

func (m *readerModel) setContent(s contentRenderedMsg) {
	m.viewport.SetContent(string(s))
}

func (m readerModel) update(msg tea.Msg) (readerModel, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m readerModel) updateSpinner(msg spinner.TickMsg) (readerModel, tea.Cmd) {
	// Keep spinning only while the engine is still discovering voices.
	if len(m.common.ctrl.Snapshot().Voices) > 0 {
		return m, nil
	}
	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return m, cmd
}

func (m *model) handleReaderKey(msg tea.KeyMsg) tea.Cmd {
	r := &m.reader
	ctrl := m.common.ctrl

	switch {
	case key.Matches(msg, r.keys.Quit):
		return m.quit()

	case key.Matches(msg, r.keys.Play):
		if err := ctrl.TogglePlay(r.text()); err != nil {
			log.Debug("play failed", "error", err)
			if errors.Is(err, tts.ErrEmptyInput) {
				return m.showStatusMessage(tts.StatusNoText, true)
			}
			return m.showStatusMessage(err.Error(), true)
		}

	case key.Matches(msg, r.keys.Stop):
		ctrl.Stop()

	case key.Matches(msg, r.keys.Repeat):
		if ctrl.ToggleRepeat() {
			return m.showStatusMessage("เปิดโหมดอ่านซ้ำ", false)
		}
		return m.showStatusMessage("ปิดโหมดอ่านซ้ำ", false)

	case key.Matches(msg, r.keys.Faster):
		ctrl.AdjustRate(1)
	case key.Matches(msg, r.keys.Slower):
		ctrl.AdjustRate(-1)
	case key.Matches(msg, r.keys.PitchUp):
		ctrl.AdjustPitch(1)
	case key.Matches(msg, r.keys.PitchDown):
		ctrl.AdjustPitch(-1)

	case key.Matches(msg, r.keys.Voice):
		v, ok := ctrl.NextVoice()
		if !ok {
			return m.showStatusMessage("ยังไม่พบเสียงอ่าน", true)
		}
		return m.showStatusMessage("เสียง: "+v.String(), false)

	case key.Matches(msg, r.keys.ParagraphMode):
		ctrl.Stop()
		if r.nav.Enabled() {
			r.nav.Disable()
		} else {
			r.nav.Enable(r.article.Content)
		}
		r.viewport.GotoTop()
		return r.render()

	case key.Matches(msg, r.keys.NextParagraph):
		if r.nav.Enabled() && r.nav.Next() {
			r.viewport.GotoTop()
			return r.render()
		}

	case key.Matches(msg, r.keys.PrevParagraph):
		if r.nav.Enabled() && r.nav.Previous() {
			r.viewport.GotoTop()
			return r.render()
		}

	case key.Matches(msg, r.keys.Copy):
		// Copy using OSC 52
		termenv.Copy(r.text())
		// Copy using native system clipboard
		_ = clipboard.WriteAll(r.text())
		return m.showStatusMessage("คัดลอกข้อความแล้ว", false)

	case key.Matches(msg, r.keys.Edit):
		ctrl.Stop()
		return openEditor(r.article)

	case key.Matches(msg, r.keys.Back):
		ctrl.Stop()
		m.state = stateShowLibrary
		m.library.refresh()

	case key.Matches(msg, r.keys.Help):
		r.toggleHelp()

	default:
		var cmd tea.Cmd
		r.viewport, cmd = r.viewport.Update(msg)
		return cmd
	}
	return nil
}

func (m readerModel) showThaiWarning() bool {
	snap := m.common.ctrl.Snapshot()
	return len(snap.Voices) > 0 && !snap.ThaiVoiceAvailable
}

func (m readerModel) View(statusMessage string, isError bool) string {
	var b strings.Builder
	fmt.Fprint(&b, m.viewport.View()+"\n")

	if m.showThaiWarning() {
		b.WriteString(warningStyle.Render(" ⚠ "+tts.StatusNoThaiVoice) + "\n")
	}
	b.WriteString(m.statusBarView(statusMessage, isError))
	if m.showHelp {
		b.WriteString("\n" + helpViewStyle(m.help.View(m.keys)))
	}
	return b.String()
}

func stateIcon(s tts.StateType) string {
	switch s {
	case tts.StateSpeaking:
		return "▶"
	case tts.StatePaused:
		return "⏸"
	default:
		return "■"
	}
}

func (m readerModel) statusBarView(statusMessage string, isError bool) string {
	snap := m.common.ctrl.Snapshot()

	logo := logoView()
	bar := " " + m.progress.ViewAs(snap.Progress) + " "
	helpNote := statusBarHelpStyle(" ? Help ")

	parts := []string{stateIcon(snap.State) + " " + snap.Status}
	if snap.Total > 0 {
		parts = append(parts, fmt.Sprintf("%d/%d", snap.SentenceIndex+1, snap.Total))
	}
	if m.nav.Enabled() {
		parts = append(parts, "¶ "+m.nav.Indicator())
	}
	parts = append(parts, snap.Settings.RateLabel(), "pitch "+snap.Settings.PitchLabel())
	if v, ok := tts.FindVoice(snap.Voices, snap.Settings.VoiceID); ok {
		parts = append(parts, v.Name)
	} else if len(snap.Voices) == 0 {
		parts = append(parts, m.spinner.View()+" กำลังโหลดเสียง")
	}
	if snap.RepeatEnabled {
		parts = append(parts, "🔁")
	}

	note := strings.Join(parts, " | ")
	style := statusBarNoteStyle
	if statusMessage != "" {
		note = statusMessage
		style = statusBarMessageStyle
		if isError {
			style = statusBarErrorStyle
		}
	}

	note = truncate.StringWithTail(" "+note+" ", uint(max(0, //nolint:gosec
		m.common.width-
			ansi.PrintableRuneWidth(logo)-
			ansi.PrintableRuneWidth(bar)-
			ansi.PrintableRuneWidth(helpNote),
	)), ellipsis)
	padding := max(0,
		m.common.width-
			ansi.PrintableRuneWidth(logo)-
			ansi.PrintableRuneWidth(note)-
			ansi.PrintableRuneWidth(bar)-
			ansi.PrintableRuneWidth(helpNote),
	)

	return logo + style(note) + style(strings.Repeat(" ", padding)) + statusBarNoteStyle(bar) + helpNote
}

// COMMANDS

func renderWithGlamour(cfg Config, width int, md string) tea.Cmd {
	return func() tea.Msg {
		s, err := glamourRender(cfg, width, md)
		if err != nil {
			log.Error("error rendering with Glamour", "error", err)
			return errMsg{err}
		}
		return contentRenderedMsg(s)
	}
}

// This is where the magic happens.
func glamourRender(cfg Config, viewportWidth int, markdown string) (string, error) {
	width := viewportWidth
	if cfg.GlamourMaxWidth > 0 {
		width = min(int(cfg.GlamourMaxWidth), viewportWidth) //nolint:gosec
	}

	r, err := glamour.NewTermRenderer(
		glamourStyle(cfg.GlamourStyle),
		glamour.WithWordWrap(max(0, width)),
		glamour.WithPreservedNewLines(),
	)
	if err != nil {
		return "", fmt.Errorf("error creating glamour renderer: %w", err)
	}

	out, err := r.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("error rendering markdown: %w", err)
	}
	return strings.TrimRight(out, "\n"), nil
}

// glamourStyle returns the option for a built-in style name or a JSON style
// path.
func glamourStyle(style string) glamour.TermRendererOption {
	if _, ok := styles.DefaultStyles[style]; ok {
		return glamour.WithStandardStyle(style)
	}
	return glamour.WithStylePath(style)
}
