package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lawflow/lawflow/internal/library"
	"github.com/lawflow/lawflow/internal/store"
	"github.com/lawflow/lawflow/tts"
	"github.com/lawflow/lawflow/tts/sentence"
)

// fakeEngine records utterances and never finishes them on its own.
type fakeEngine struct {
	spoken  []tts.Utterance
	done    []func(error)
	cancels int
}

func (e *fakeEngine) Speak(u tts.Utterance, done func(error)) error {
	e.spoken = append(e.spoken, u)
	e.done = append(e.done, done)
	return nil
}

func (e *fakeEngine) Pause() error                      { return nil }
func (e *fakeEngine) Resume() error                     { return nil }
func (e *fakeEngine) Cancel() error                     { e.cancels++; return nil }
func (e *fakeEngine) Voices() []tts.Voice               { return nil }
func (e *fakeEngine) OnVoicesChanged(func([]tts.Voice)) {}
func (e *fakeEngine) Close() error                      { return nil }

type testApp struct {
	m      model
	lib    *library.Library
	engine *fakeEngine
	d      *teaDispatcher
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	lib, err := library.Open(store.NewMemoryStore())
	if err != nil {
		t.Fatalf("library.Open() error = %v", err)
	}
	engine := &fakeEngine{}
	d := &teaDispatcher{}
	cfg := Config{GlamourStyle: "dark", GlamourEnabled: false}

	app := &testApp{m: newModel(cfg, lib, engine, d), lib: lib, engine: engine, d: d}
	app.send(tea.WindowSizeMsg{Width: 80, Height: 24})
	return app
}

// send runs msg through Update.
func (a *testApp) send(msg tea.Msg) tea.Cmd {
	next, cmd := a.m.Update(msg)
	a.m = next.(model) //nolint:forcetypeassert
	return cmd
}

func (a *testApp) press(keys ...string) {
	for _, k := range keys {
		a.send(keyMsg(k))
	}
}

func (a *testApp) typeText(s string) {
	for _, r := range s {
		a.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

func TestOpenArticleAndPlay(t *testing.T) {
	app := newTestApp(t)
	app.press("enter")

	if app.m.state != stateShowArticle {
		t.Fatalf("state = %v, want %v", app.m.state, stateShowArticle)
	}
	first, _ := app.lib.Get(1)
	if app.m.reader.article.ID != first.ID {
		t.Fatalf("reader shows article %d, want %d", app.m.reader.article.ID, first.ID)
	}

	app.press("space")
	if len(app.engine.spoken) != 1 {
		t.Fatalf("engine spoke %d utterances, want 1", len(app.engine.spoken))
	}
	if got := app.engine.spoken[0].Text; got != first.Content {
		t.Errorf("spoke %q, want %q", got, first.Content)
	}
	if st := app.m.common.ctrl.Snapshot().State; st != tts.StateSpeaking {
		t.Errorf("state = %v, want speaking", st)
	}

	app.press("s")
	if st := app.m.common.ctrl.Snapshot().State; st != tts.StateIdle {
		t.Errorf("after stop state = %v, want idle", st)
	}

	app.press("b")
	if app.m.state != stateShowLibrary {
		t.Errorf("back: state = %v", app.m.state)
	}
}

func TestEngineCompletionFinishesPlayback(t *testing.T) {
	app := newTestApp(t)
	app.press("enter", "space")

	app.engine.done[0](nil)
	events := app.d.takeEarly()
	if len(events) != 1 {
		t.Fatalf("dispatched %d events, want 1", len(events))
	}
	app.send(ttsEventMsg{events[0]})

	snap := app.m.common.ctrl.Snapshot()
	if snap.State != tts.StateIdle || snap.Status != tts.StatusFinished {
		t.Errorf("after last chunk: state %v, status %q", snap.State, snap.Status)
	}
}

func TestParagraphModeReadsCurrentParagraph(t *testing.T) {
	app := newTestApp(t)
	a, err := app.lib.Add("มาตรา 9", "", "ย่อหน้าแรก\n\nย่อหน้าที่สอง")
	if err != nil {
		t.Fatal(err)
	}
	app.send(app.m.openArticle(a)())

	app.press("P")
	nav := app.m.reader.nav
	if !nav.Enabled() || nav.Len() != 2 {
		t.Fatalf("paragraph mode: enabled=%v len=%d", nav.Enabled(), nav.Len())
	}

	app.press("n")
	if nav.Index() != 1 {
		t.Fatalf("Index() = %d, want 1", nav.Index())
	}
	app.press("n")
	if nav.Index() != 1 {
		t.Errorf("next past the end moved to %d", nav.Index())
	}

	app.press("space")
	if len(app.engine.spoken) != 1 || app.engine.spoken[0].Text != "ย่อหน้าที่สอง" {
		t.Errorf("spoken = %+v", app.engine.spoken)
	}

	app.press("P")
	if nav.Enabled() {
		t.Error("paragraph mode still enabled")
	}
	if st := app.m.common.ctrl.Snapshot().State; st != tts.StateIdle {
		t.Errorf("toggling paragraph mode should stop playback, state = %v", st)
	}
}

func TestPlayEmptyArticleShowsError(t *testing.T) {
	app := newTestApp(t)
	app.m.state = stateShowArticle
	app.m.reader.article = library.Article{ID: 99, Number: "ว่าง"}

	app.press("space")
	if len(app.engine.spoken) != 0 {
		t.Errorf("engine spoke %d utterances", len(app.engine.spoken))
	}
	if !app.m.statusIsError || app.m.statusMessage != tts.StatusNoText {
		t.Errorf("status = %q (error %v)", app.m.statusMessage, app.m.statusIsError)
	}
}

func TestAddArticleForm(t *testing.T) {
	app := newTestApp(t)
	app.press("a")
	if app.m.state != stateArticleForm {
		t.Fatalf("state = %v, want article form", app.m.state)
	}

	app.typeText("มาตรา 288")
	app.press("tab", "tab")
	app.typeText("ผู้ใดฆ่าผู้อื่น")
	app.press("ctrl+s")

	if app.m.state != stateShowLibrary {
		t.Fatalf("state after save = %v (form error %q)", app.m.state, app.m.form.err)
	}
	if app.lib.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", app.lib.Len())
	}
	a, err := app.lib.Get(4)
	if err != nil {
		t.Fatal(err)
	}
	if a.Number != "มาตรา 288" || a.Content != "ผู้ใดฆ่าผู้อื่น" || a.Category != library.OtherCategory {
		t.Errorf("added %+v", a)
	}
	if app.m.statusMessage != "เพิ่มมาตราเรียบร้อยแล้ว!" {
		t.Errorf("status = %q", app.m.statusMessage)
	}
}

func TestArticleFormRejectsEmptyFields(t *testing.T) {
	app := newTestApp(t)
	app.press("a", "ctrl+s")

	if app.m.state != stateArticleForm {
		t.Errorf("state = %v, form should stay open", app.m.state)
	}
	if app.m.form.err == "" {
		t.Error("expected a form error")
	}
	if app.lib.Len() != 3 {
		t.Errorf("Len() = %d, want 3", app.lib.Len())
	}

	app.press("esc")
	if app.m.state != stateShowLibrary {
		t.Errorf("esc: state = %v", app.m.state)
	}
}

func TestEditArticleForm(t *testing.T) {
	app := newTestApp(t)
	app.press("e")
	if app.m.form.editingID != 1 || app.m.form.title() != "แก้ไขมาตรา" {
		t.Fatalf("editing %d, title %q", app.m.form.editingID, app.m.form.title())
	}
	app.typeText("/1")
	app.press("ctrl+s")

	a, _ := app.lib.Get(1)
	if a.Number != "มาตรา 1/1" {
		t.Errorf("Number = %q", a.Number)
	}
	if app.m.statusMessage != "แก้ไขมาตราเรียบร้อยแล้ว!" {
		t.Errorf("status = %q", app.m.statusMessage)
	}
}

func TestAddCategory(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{name: "new", input: "ภาษี"},
		{name: "duplicate", input: library.OtherCategory, wantErr: library.ErrDuplicateCategory.Error()},
		{name: "blank", input: "  ", wantErr: "กรุณากรอกชื่อหมวดหมู่"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t)
			app.press("c")
			app.typeText(tt.input)
			app.press("enter")

			if tt.wantErr != "" {
				if app.m.state != stateCategoryForm || app.m.category.err != tt.wantErr {
					t.Errorf("state %v, err %q; want %q", app.m.state, app.m.category.err, tt.wantErr)
				}
				return
			}
			if app.m.state != stateShowLibrary || !app.lib.HasCategory(tt.input) {
				t.Errorf("state %v, categories %v", app.m.state, app.lib.Categories())
			}
			if app.m.statusMessage != "เพิ่มหมวดหมู่เรียบร้อยแล้ว!" {
				t.Errorf("status = %q", app.m.statusMessage)
			}
		})
	}
}

func TestDeleteArticleAsksFirst(t *testing.T) {
	app := newTestApp(t)
	first, _ := app.lib.Get(1)

	app.press("x")
	if app.m.state != stateConfirm {
		t.Fatalf("state = %v, want confirm", app.m.state)
	}
	if app.m.confirm.prompt != library.DeleteArticlePrompt(first) {
		t.Errorf("prompt = %q", app.m.confirm.prompt)
	}
	if !strings.Contains(app.m.View(), first.Number) {
		t.Error("confirm dialog does not name the article")
	}

	app.press("n")
	if app.m.state != stateShowLibrary || app.lib.Len() != 3 {
		t.Fatalf("cancel: state %v, len %d", app.m.state, app.lib.Len())
	}

	app.press("x", "y")
	if app.lib.Len() != 2 {
		t.Errorf("Len() = %d, want 2", app.lib.Len())
	}
	if _, err := app.lib.Get(1); err == nil {
		t.Error("article 1 still present")
	}
}

func TestDeleteCategory(t *testing.T) {
	app := newTestApp(t)

	// "all" can't be deleted
	app.press("C")
	if app.m.state != stateShowLibrary || !app.m.statusIsError {
		t.Fatalf("state %v, status %q", app.m.state, app.m.statusMessage)
	}

	// move to แพ่งและพาณิชย์, which holds articles 1 and 3
	for app.m.library.currentCategory() != "แพ่งและพาณิชย์" {
		app.press("tab")
	}
	app.press("C")
	if app.m.state != stateConfirm {
		t.Fatalf("state = %v, want confirm", app.m.state)
	}
	want := library.DeleteCategoryPrompt("แพ่งและพาณิชย์", 2)
	if app.m.confirm.prompt != want {
		t.Errorf("prompt = %q, want %q", app.m.confirm.prompt, want)
	}

	app.press("y")
	if app.lib.HasCategory("แพ่งและพาณิชย์") {
		t.Error("category still present")
	}
	if n := app.lib.Count(library.OtherCategory); n != 2 {
		t.Errorf("Count(other) = %d, want 2", n)
	}
	if app.m.library.currentCategory() != library.All {
		t.Errorf("filter = %q, want all", app.m.library.currentCategory())
	}
}

func TestLibrarySearchAndFilter(t *testing.T) {
	app := newTestApp(t)

	app.press("/")
	app.typeText("276")
	if n := len(app.m.library.articles); n != 1 || app.m.library.articles[0].ID != 2 {
		t.Fatalf("search results = %+v", app.m.library.articles)
	}
	app.press("esc")
	if len(app.m.library.articles) != 3 {
		t.Errorf("esc should clear the search, got %d articles", len(app.m.library.articles))
	}

	for app.m.library.currentCategory() != "ประมวลกฎหมายอาญา" {
		app.press("tab")
	}
	if n := len(app.m.library.articles); n != 1 {
		t.Errorf("filtered articles = %d, want 1", n)
	}
}

func TestLibraryChangedReloadsOpenArticle(t *testing.T) {
	app := newTestApp(t)
	app.press("enter")

	if _, err := app.lib.Update(1, "มาตรา 1", "แพ่งและพาณิชย์", "เนื้อหาใหม่"); err != nil {
		t.Fatal(err)
	}
	app.send(LibraryChangedMsg{})
	if app.m.reader.article.Content != "เนื้อหาใหม่" {
		t.Errorf("reader content = %q", app.m.reader.article.Content)
	}

	if err := app.lib.Delete(1); err != nil {
		t.Fatal(err)
	}
	app.send(LibraryChangedMsg{})
	if app.m.state != stateShowLibrary {
		t.Errorf("state = %v, deleted article should close the reader", app.m.state)
	}
}

func TestHighlightMarkdown(t *testing.T) {
	text := "ย่อหน้าแรก\n\nผู้ใดฆ่าผู้อื่น ต้องระวางโทษ"
	got := highlightMarkdown(text, sentence.Chunk{Text: "ผู้ใดฆ่าผู้อื่น", ParagraphIndex: 1}, true)
	want := "ย่อหน้าแรก\n\n**ผู้ใดฆ่าผู้อื่น** ต้องระวางโทษ"
	if got != want {
		t.Errorf("highlightMarkdown() = %q, want %q", got, want)
	}
	if got := highlightMarkdown(text, sentence.Chunk{Text: "ผู้ใดฆ่าผู้อื่น", ParagraphIndex: 1}, false); strings.Contains(got, "**") {
		t.Errorf("inactive highlight = %q", got)
	}
	if got := highlightMarkdown(text, sentence.Chunk{Text: "ไม่มี", ParagraphIndex: 5}, true); strings.Contains(got, "**") {
		t.Errorf("out of range highlight = %q", got)
	}
}

func TestHighlightRepeatedSentence(t *testing.T) {
	text := "ซ้ำ. อื่น. ซ้ำ."
	chunks := sentence.Collect(text)
	if len(chunks) != 3 {
		t.Fatalf("chunks = %+v", chunks)
	}
	second := chunks[2]

	tests := []struct {
		name  string
		chunk sentence.Chunk
		want  string
	}{
		{name: "first occurrence", chunk: chunks[0], want: "**ซ้ำ.** อื่น. ซ้ำ."},
		{name: "second occurrence", chunk: second, want: "ซ้ำ. อื่น. **ซ้ำ.**"},
		{
			name:  "offset outside paragraph falls back to search",
			chunk: sentence.Chunk{Text: "อื่น.", Offset: 99},
			want:  "ซ้ำ. **อื่น.** ซ้ำ.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := highlightMarkdown(text, tt.chunk, true); got != tt.want {
				t.Errorf("highlightMarkdown() = %q, want %q", got, tt.want)
			}
		})
	}

	plain := highlightPlain(text, second, true, 0)
	if !strings.HasPrefix(plain, "ซ้ำ. อื่น. ") {
		t.Errorf("highlightPlain() styled the wrong occurrence: %q", plain)
	}
}
