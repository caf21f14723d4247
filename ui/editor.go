package ui

import (
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/x/editor"

	"github.com/lawflow/lawflow/internal/library"
)

type editorFinishedMsg struct {
	id   int
	path string
	err  error
}

// openEditor writes a to a temporary file, number on the first line, and
// opens it in $EDITOR.
func openEditor(a library.Article) tea.Cmd {
	f, err := os.CreateTemp("", "lawflow-*.txt")
	if err != nil {
		return func() tea.Msg { return errMsg{fmt.Errorf("unable to create temp file: %w", err)} }
	}
	path := f.Name()
	_, werr := fmt.Fprintf(f, "%s\n\n%s\n", a.Number, a.Content)
	if err := errors.Join(werr, f.Close()); err != nil {
		_ = os.Remove(path)
		return func() tea.Msg { return errMsg{fmt.Errorf("unable to write temp file: %w", err)} }
	}

	cb := func(err error) tea.Msg {
		return editorFinishedMsg{id: a.ID, path: path, err: err}
	}
	cmd, err := editor.Cmd("LawFlow", path)
	if err != nil {
		return func() tea.Msg { return cb(err) }
	}
	return tea.ExecProcess(cmd, cb)
}

// finishEditor saves what the editor left in the temp file and shows the
// result.
func (m *model) finishEditor(msg editorFinishedMsg) tea.Cmd {
	defer os.Remove(msg.path) //nolint:errcheck
	if msg.err != nil {
		log.Error("editor failed", "error", msg.err)
		return m.showStatusMessage("ไม่สามารถเปิดโปรแกรมแก้ไขได้: "+msg.err.Error(), true)
	}

	src, err := os.ReadFile(msg.path)
	if err != nil {
		return m.showStatusMessage(err.Error(), true)
	}
	old, err := m.common.lib.Get(msg.id)
	if err != nil {
		return m.showStatusMessage(err.Error(), true)
	}

	number, content := library.ParseText(src)
	a, err := m.common.lib.Update(msg.id, number, old.Category, content)
	if err != nil {
		return m.showStatusMessage(err.Error(), true)
	}
	m.library.refresh()

	cmds := []tea.Cmd{m.showStatusMessage("แก้ไขมาตราเรียบร้อยแล้ว!", false)}
	if m.state == stateShowArticle && m.reader.article.ID == a.ID {
		cmds = append(cmds, m.reader.open(a))
	}
	return tea.Batch(cmds...)
}
