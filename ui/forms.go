package ui

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/lawflow/lawflow/internal/library"
)

const (
	formNumberField = iota
	formCategoryField
	formContentField
	formFieldCount
)

const formHint = "tab: ช่องถัดไป • ←/→: เปลี่ยนหมวด • ctrl+s: บันทึก • esc: ยกเลิก"

// articleFormModel adds or edits one article.
type articleFormModel struct {
	common *commonModel

	editingID  int // zero when adding
	number     textinput.Model
	categories []string
	category   int
	content    textarea.Model
	focus      int
	err        string
}

func newArticleFormModel(common *commonModel) articleFormModel {
	number := textinput.New()
	number.Placeholder = "เช่น มาตรา 276"
	number.Prompt = ""
	number.CharLimit = 120

	content := textarea.New()
	content.Placeholder = "เนื้อหามาตรา"
	content.ShowLineNumbers = false
	content.CharLimit = 0

	return articleFormModel{
		common:  common,
		number:  number,
		content: content,
	}
}

func (m *articleFormModel) setSize(w, h int) {
	inner := max(10, w-8)
	m.number.Width = inner
	m.content.SetWidth(inner)
	m.content.SetHeight(max(3, h-14))
}

// load fills the form from a. An article without an ID is a new one.
func (m *articleFormModel) load(a library.Article) tea.Cmd {
	m.editingID = a.ID
	m.err = ""
	m.categories = m.common.lib.Categories()
	m.category = max(0, slices.Index(m.categories, a.Category))
	m.number.SetValue(a.Number)
	m.number.CursorEnd()
	m.content.SetValue(a.Content)
	m.focus = formNumberField
	return m.applyFocus()
}

func (m *articleFormModel) applyFocus() tea.Cmd {
	m.number.Blur()
	m.content.Blur()
	switch m.focus {
	case formNumberField:
		return m.number.Focus()
	case formContentField:
		return m.content.Focus()
	}
	return nil
}

func (m *articleFormModel) moveFocus(delta int) tea.Cmd {
	m.focus = (m.focus + delta + formFieldCount) % formFieldCount
	return m.applyFocus()
}

func (m articleFormModel) selectedCategory() string {
	if m.category < 0 || m.category >= len(m.categories) {
		return library.OtherCategory
	}
	return m.categories[m.category]
}

func (m articleFormModel) update(msg tea.Msg) (articleFormModel, tea.Cmd) {
	var cmd tea.Cmd
	switch m.focus {
	case formNumberField:
		m.number, cmd = m.number.Update(msg)
	case formContentField:
		m.content, cmd = m.content.Update(msg)
	}
	return m, cmd
}

func (m articleFormModel) title() string {
	if m.editingID != 0 {
		return "แก้ไขมาตรา"
	}
	return "เพิ่มมาตราใหม่"
}

func (m articleFormModel) View() string {
	label := func(field int, s string) string {
		if m.focus == field {
			return focusedLabelStyle.Render(s)
		}
		return labelStyle.Render(s)
	}

	chips := make([]string, len(m.categories))
	for i, c := range m.categories {
		if i == m.category {
			chips[i] = activeChipStyle.Render(c)
		} else {
			chips[i] = chipStyle.Render(c)
		}
	}

	var b strings.Builder
	b.WriteString(logoView() + "  " + labelStyle.Render(m.title()) + "\n\n")
	b.WriteString(label(formNumberField, "เลขมาตรา") + "\n")
	b.WriteString(m.number.View() + "\n\n")
	b.WriteString(label(formCategoryField, "หมวดหมู่") + "\n")
	b.WriteString(strings.Join(chips, " ") + "\n\n")
	b.WriteString(label(formContentField, "เนื้อหา") + "\n")
	b.WriteString(m.content.View() + "\n\n")
	if m.err != "" {
		b.WriteString(statusBarErrorStyle(" "+m.err+" ") + "\n")
	}
	b.WriteString(subtleStyle.Render(formHint))

	return "\n" + indent(b.String(), 2)
}

func (m *model) openArticleForm(a library.Article) tea.Cmd {
	m.returnState = m.state
	m.state = stateArticleForm
	cmd := m.form.load(a)
	m.form.setSize(m.common.width, m.common.height)
	return tea.Batch(cmd, textarea.Blink)
}

func (m *model) handleArticleFormKey(msg tea.KeyMsg) tea.Cmd {
	f := &m.form

	switch msg.String() {
	case keyEsc:
		m.state = m.returnState
		return nil
	case "ctrl+s":
		return m.saveArticleForm()
	case "tab":
		return f.moveFocus(1)
	case "shift+tab":
		return f.moveFocus(-1)
	case "enter":
		if f.focus != formContentField {
			return f.moveFocus(1)
		}
	case "left", "h":
		if f.focus == formCategoryField && len(f.categories) > 0 {
			f.category = (f.category - 1 + len(f.categories)) % len(f.categories)
			return nil
		}
	case "right", "l":
		if f.focus == formCategoryField && len(f.categories) > 0 {
			f.category = (f.category + 1) % len(f.categories)
			return nil
		}
	}

	var cmd tea.Cmd
	*f, cmd = f.update(msg)
	return cmd
}

func (m *model) saveArticleForm() tea.Cmd {
	f := &m.form
	number, category, content := f.number.Value(), f.selectedCategory(), f.content.Value()

	var (
		a      library.Article
		err    error
		status string
	)
	if f.editingID != 0 {
		a, err = m.common.lib.Update(f.editingID, number, category, content)
		status = "แก้ไขมาตราเรียบร้อยแล้ว!"
	} else {
		a, err = m.common.lib.Add(number, category, content)
		status = "เพิ่มมาตราเรียบร้อยแล้ว!"
	}
	if err != nil {
		log.Debug("saving article failed", "error", err)
		f.err = formError(err)
		return nil
	}

	m.state = m.returnState
	m.library.refresh()
	cmds := []tea.Cmd{m.showStatusMessage(status, false)}
	if m.state == stateShowArticle && m.reader.article.ID == a.ID {
		cmds = append(cmds, m.reader.open(a))
	}
	return tea.Batch(cmds...)
}

func formError(err error) string {
	switch {
	case errors.Is(err, library.ErrInvalidArticle):
		return "กรุณากรอกเลขมาตราและเนื้อหา"
	case errors.Is(err, library.ErrInvalidCategory):
		return "กรุณากรอกชื่อหมวดหมู่"
	case errors.Is(err, library.ErrCategoryNotFound):
		return "ไม่พบหมวดหมู่"
	default:
		return err.Error()
	}
}

// categoryFormModel asks for the name of a new category.
type categoryFormModel struct {
	common *commonModel
	name   textinput.Model
	err    string
}

func newCategoryFormModel(common *commonModel) categoryFormModel {
	name := textinput.New()
	name.Placeholder = "ชื่อหมวดหมู่"
	name.Prompt = "› "
	name.PromptStyle = focusedLabelStyle
	name.CharLimit = 80
	name.Width = 40
	return categoryFormModel{common: common, name: name}
}

func (m categoryFormModel) update(msg tea.Msg) (categoryFormModel, tea.Cmd) {
	var cmd tea.Cmd
	m.name, cmd = m.name.Update(msg)
	return m, cmd
}

func (m categoryFormModel) View() string {
	var b strings.Builder
	b.WriteString(logoView() + "  " + labelStyle.Render("เพิ่มหมวดหมู่") + "\n\n")
	b.WriteString(m.name.View() + "\n\n")
	if m.err != "" {
		b.WriteString(statusBarErrorStyle(" "+m.err+" ") + "\n\n")
	}
	b.WriteString(subtleStyle.Render("enter: บันทึก • esc: ยกเลิก"))
	return "\n" + indent(b.String(), 2)
}

func (m *model) openCategoryForm() tea.Cmd {
	m.returnState = m.state
	m.state = stateCategoryForm
	m.category.err = ""
	m.category.name.Reset()
	return m.category.name.Focus()
}

func (m *model) handleCategoryFormKey(msg tea.KeyMsg) tea.Cmd {
	c := &m.category

	switch msg.String() {
	case keyEsc:
		c.name.Blur()
		m.state = m.returnState
		return nil
	case "enter":
		name, err := m.common.lib.AddCategory(c.name.Value())
		if err != nil {
			c.err = formError(err)
			return nil
		}
		log.Debug("category added", "name", name)
		c.name.Blur()
		m.state = m.returnState
		m.library.refresh()
		return m.showStatusMessage("เพิ่มหมวดหมู่เรียบร้อยแล้ว!", false)
	}

	var cmd tea.Cmd
	*c, cmd = c.update(msg)
	return cmd
}

type confirmKind int

const (
	confirmDeleteArticle confirmKind = iota
	confirmDeleteCategory
)

// confirmModel is a yes/no question about a destructive action.
type confirmModel struct {
	kind   confirmKind
	id     int
	name   string
	prompt string
}

func (m confirmModel) View(width, height int) string {
	body := m.prompt + "\n\n" +
		focusedLabelStyle.Render("y") + subtleStyle.Render(" ใช่  ") +
		focusedLabelStyle.Render("n") + subtleStyle.Render(" ยกเลิก")
	box := dialogStyle.Render(body)
	if width <= 0 || height <= 0 {
		return box
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

func (m *model) askConfirm(kind confirmKind, id int, name, prompt string) {
	m.confirm = confirmModel{kind: kind, id: id, name: name, prompt: prompt}
	m.returnState = m.state
	m.state = stateConfirm
}

func (m *model) handleConfirmKey(msg tea.KeyMsg) tea.Cmd {
	switch strings.ToLower(msg.String()) {
	case "y", "enter":
		m.state = m.returnState
		return m.runConfirmed()
	case "n", keyEsc:
		m.state = m.returnState
	}
	return nil
}

func (m *model) runConfirmed() tea.Cmd {
	c := m.confirm
	lib := m.common.lib

	switch c.kind {
	case confirmDeleteArticle:
		a, err := lib.Get(c.id)
		if err != nil {
			return m.showStatusMessage(err.Error(), true)
		}
		if err := lib.Delete(c.id); err != nil {
			return m.showStatusMessage(err.Error(), true)
		}
		if m.reader.article.ID == c.id {
			m.common.ctrl.Stop()
			m.reader.article = library.Article{}
			if m.state == stateShowArticle {
				m.state = stateShowLibrary
			}
		}
		m.library.refresh()
		return m.showStatusMessage("ลบ "+articleLabel(a)+" เรียบร้อยแล้ว", false)

	case confirmDeleteCategory:
		moved, err := lib.DeleteCategory(c.name)
		if err != nil {
			return m.showStatusMessage(formError(err), true)
		}
		m.library.refresh()
		msg := fmt.Sprintf("ลบหมวดหมู่ \"%s\" แล้ว", c.name)
		if moved > 0 {
			msg += fmt.Sprintf(" (ย้าย %d มาตราไปหมวด \"%s\")", moved, library.OtherCategory)
		}
		return m.showStatusMessage(msg, false)
	}
	return nil
}
