package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	runewidth "github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"

	"github.com/lawflow/lawflow/internal/library"
)

const (
	cardHeight      = 3 // number line, preview line, gap
	statusBarHeight = 1
)

// libraryModel is the article list with its category filter chips.
type libraryModel struct {
	common *commonModel
	keys   libraryKeyMap
	help   help.Model

	// categories[0] is library.All
	categories []string
	counts     map[string]int
	filter     int

	articles []library.Article
	cursor   int
	offset   int

	search    textinput.Model
	searching bool
	showHelp  bool
}

func newLibraryModel(common *commonModel) libraryModel {
	si := textinput.New()
	si.Prompt = "ค้นหา: "
	si.PromptStyle = labelStyle
	si.CharLimit = 120

	m := libraryModel{
		common: common,
		keys:   newLibraryKeyMap(),
		help:   help.New(),
		search: si,
	}
	m.refresh()
	return m
}

func (m *libraryModel) setSize(w, _ int) {
	m.help.Width = w
	m.search.Width = max(0, w-runewidth.StringWidth(m.search.Prompt)-2)
	m.scrollToCursor()
}

// refresh re-reads the library, keeping the filter and the selected
// article where possible.
func (m *libraryModel) refresh() {
	selected := -1
	if a, ok := m.selected(); ok {
		selected = a.ID
	}
	current := m.currentCategory()

	m.categories = append([]string{library.All}, m.common.lib.Categories()...)
	m.counts = m.common.lib.Counts()
	m.filter = 0
	for i, c := range m.categories {
		if c == current {
			m.filter = i
		}
	}
	m.articles = m.common.lib.Search(m.search.Value(), m.currentCategory())

	m.cursor = min(m.cursor, max(0, len(m.articles)-1))
	for i, a := range m.articles {
		if a.ID == selected {
			m.cursor = i
		}
	}
	m.scrollToCursor()
}

func (m libraryModel) currentCategory() string {
	if m.filter < 0 || m.filter >= len(m.categories) {
		return library.All
	}
	return m.categories[m.filter]
}

func (m libraryModel) selected() (library.Article, bool) {
	if m.cursor < 0 || m.cursor >= len(m.articles) {
		return library.Article{}, false
	}
	return m.articles[m.cursor], true
}

func (m *libraryModel) moveFilter(delta int) {
	n := len(m.categories)
	if n == 0 {
		return
	}
	m.filter = (m.filter + delta + n) % n
	m.cursor = 0
	m.offset = 0
	m.refresh()
}

func (m *libraryModel) moveCursor(delta int) {
	m.cursor = max(0, min(len(m.articles)-1, m.cursor+delta))
	m.scrollToCursor()
}

func (m libraryModel) perPage() int {
	h := m.common.height - m.headerHeight() - statusBarHeight
	if m.showHelp {
		h -= lineCount(m.help.View(m.keys))
	}
	return max(1, h/cardHeight)
}

func (m libraryModel) headerHeight() int {
	h := 2 + lineCount(m.chipsView()) + 1 // title, blank, chips, blank
	if m.searching || m.search.Value() != "" {
		h++
	}
	return h
}

func (m *libraryModel) scrollToCursor() {
	per := m.perPage()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+per {
		m.offset = m.cursor - per + 1
	}
	m.offset = max(0, m.offset)
}

func (m libraryModel) update(msg tea.Msg) (libraryModel, tea.Cmd) {
	if !m.searching {
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m *model) handleLibraryKey(msg tea.KeyMsg) tea.Cmd {
	l := &m.library

	if l.searching {
		switch msg.String() {
		case keyEsc:
			l.searching = false
			l.search.Blur()
			l.search.Reset()
			l.refresh()
			return nil
		case "enter", "tab", "up", "down":
			l.searching = false
			l.search.Blur()
			return nil
		}
		var cmd tea.Cmd
		l.search, cmd = l.search.Update(msg)
		l.cursor, l.offset = 0, 0
		l.refresh()
		return cmd
	}

	switch {
	case key.Matches(msg, l.keys.Quit):
		return m.quit()
	case key.Matches(msg, l.keys.Up):
		l.moveCursor(-1)
	case key.Matches(msg, l.keys.Down):
		l.moveCursor(1)
	case key.Matches(msg, l.keys.NextCategory):
		l.moveFilter(1)
	case key.Matches(msg, l.keys.PrevCategory):
		l.moveFilter(-1)
	case key.Matches(msg, l.keys.Search):
		l.searching = true
		return l.search.Focus()
	case key.Matches(msg, l.keys.Help):
		l.showHelp = !l.showHelp
		l.help.ShowAll = l.showHelp
		l.scrollToCursor()
	case key.Matches(msg, l.keys.Open):
		if a, ok := l.selected(); ok {
			return m.openArticle(a)
		}
	case key.Matches(msg, l.keys.Add):
		category := l.currentCategory()
		if category == library.All {
			category = library.OtherCategory
		}
		return m.openArticleForm(library.Article{Category: category})
	case key.Matches(msg, l.keys.Edit):
		if a, ok := l.selected(); ok {
			return m.openArticleForm(a)
		}
	case key.Matches(msg, l.keys.Delete):
		if a, ok := l.selected(); ok {
			m.askConfirm(confirmDeleteArticle, a.ID, "", library.DeleteArticlePrompt(a))
		}
	case key.Matches(msg, l.keys.AddCategory):
		return m.openCategoryForm()
	case key.Matches(msg, l.keys.DeleteCategory):
		name := l.currentCategory()
		if name == library.All {
			return m.showStatusMessage("เลือกหมวดหมู่ที่ต้องการลบก่อน", true)
		}
		if name == library.OtherCategory {
			return m.showStatusMessage(fmt.Sprintf("ไม่สามารถลบหมวด \"%s\" ได้", name), true)
		}
		m.askConfirm(confirmDeleteCategory, 0, name, library.DeleteCategoryPrompt(name, l.counts[name]))
	case msg.String() == keyEsc:
		if l.search.Value() != "" {
			l.search.Reset()
			l.refresh()
			return nil
		}
		// Esc stops playback when no dialog is open.
		m.common.ctrl.Stop()
	}
	return nil
}

func (m libraryModel) chipsView() string {
	chips := make([]string, 0, len(m.categories))
	for i, c := range m.categories {
		label := "ทั้งหมด"
		if c != library.All {
			label = library.ShortName(c)
		}
		label = fmt.Sprintf("%s %d", label, m.counts[c])
		if i == m.filter {
			chips = append(chips, activeChipStyle.Render(label))
		} else {
			chips = append(chips, chipStyle.Render(label))
		}
	}
	s := strings.Join(chips, " ")
	if m.common.width > 0 {
		s = wordwrap.String(s, m.common.width-2)
	}
	return s
}

func (m libraryModel) cardView(a library.Article, selected bool) string {
	width := max(10, m.common.width-4)

	gutter := "  "
	title := cardTitleStyle.Render(a.Number)
	if selected {
		gutter = selectedBorderStyle.Render("│ ")
		title = selectedTitleStyle.Render(a.Number)
	}

	meta := categoryBadgeStyle.Render(library.ShortName(a.Category))
	if !a.UpdatedAt.IsZero() {
		meta += subtleStyle.Render(" • " + humanize.Time(a.UpdatedAt))
	}

	preview := strings.Join(strings.Fields(a.Content), " ")
	preview = runewidth.Truncate(preview, width, ellipsis)

	return gutter + title + "  " + meta + "\n" +
		gutter + subtleStyle.Render(preview)
}

func (m libraryModel) View(statusMessage string, isError bool) string {
	var b strings.Builder

	b.WriteString(" " + logoView() + subtleStyle.Render("  มาตรากฎหมาย") + "\n\n")
	b.WriteString(indent(m.chipsView(), 1))
	if m.searching || m.search.Value() != "" {
		b.WriteString(" " + m.search.View() + "\n")
	}
	b.WriteString("\n")

	used := m.headerHeight()
	if len(m.articles) == 0 {
		b.WriteString(subtleStyle.Render("  ไม่มีมาตราในหมวดนี้") + "\n")
		used++
	} else {
		end := min(len(m.articles), m.offset+m.perPage())
		for i := m.offset; i < end; i++ {
			b.WriteString(m.cardView(m.articles[i], i == m.cursor) + "\n\n")
			used += cardHeight
		}
	}

	footer := m.statusBarView(statusMessage, isError)
	if m.showHelp {
		footer += "\n" + helpViewStyle(m.help.View(m.keys))
	}
	if pad := m.common.height - used - lineCount(footer); pad > 0 {
		b.WriteString(strings.Repeat("\n", pad))
	}
	b.WriteString(footer)
	return b.String()
}

func (m libraryModel) statusBarView(statusMessage string, isError bool) string {
	logo := logoView()
	helpNote := statusBarHelpStyle(" ? Help ")

	note := fmt.Sprintf("%d มาตรา", len(m.articles))
	if m.common.cfg.EngineName != "" {
		note += " | " + m.common.cfg.EngineName
	}
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
			ansi.PrintableRuneWidth(helpNote),
	)), ellipsis)
	padding := max(0,
		m.common.width-
			ansi.PrintableRuneWidth(logo)-
			ansi.PrintableRuneWidth(note)-
			ansi.PrintableRuneWidth(helpNote),
	)
	return logo + style(note) + style(strings.Repeat(" ", padding)) + helpNote
}

func lineCount(s string) int {
	if s == "" {
		return 0
	}
	return strings.Count(s, "\n") + 1
}
