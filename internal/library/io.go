package library

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/muesli/gitcha"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"
)

// ImportExtensions are the file patterns picked up by ImportDir.
var ImportExtensions = []string{
	"*.md", "*.mdown", "*.mkdn", "*.mkd", "*.markdown", "*.txt",
}

// Export is the document written by WriteYAML and read by ReadYAML.
type Export struct {
	Categories []string  `yaml:"categories"`
	Articles   []Article `yaml:"articles"`
}

// WriteYAML writes the whole library to w.
func (l *Library) WriteYAML(w io.Writer) error {
	l.mu.RLock()
	doc := Export{
		Categories: slices.Clone(l.categories),
		Articles:   sortedArticles(l.articles),
	}
	l.mu.RUnlock()

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode library: %w", err)
	}
	return enc.Close()
}

// ReadYAML merges an exported library into l. Unknown categories are
// added and every valid article is appended under a new id. It returns the
// number of articles imported.
func (l *Library) ReadYAML(r io.Reader) (int, error) {
	var doc Export
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return 0, nil
		}
		return 0, fmt.Errorf("decode library: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	prevCats := slices.Clone(l.categories)
	cats := append(slices.Clone(doc.Categories), OtherCategory)
	for _, a := range doc.Articles {
		cats = append(cats, a.Category)
	}
	for _, c := range cleanCategories(cats) {
		if !slices.Contains(l.categories, c) {
			l.categories = append(l.categories, c)
		}
	}

	prev, prevNext := maps.Clone(l.articles), l.nextID
	n := 0
	for _, in := range doc.Articles {
		a, err := l.validate(in.Number, in.Category, in.Content)
		if err != nil {
			log.Warn("skipping imported article", "number", in.Number, "error", err)
			continue
		}
		a.ID = l.nextID
		a.CreatedAt = in.CreatedAt
		if a.CreatedAt.IsZero() {
			a.CreatedAt = l.now()
		}
		a.UpdatedAt = l.now()
		l.articles[a.ID] = a
		l.nextID++
		n++
	}

	if len(l.categories) != len(prevCats) {
		if err := l.saveCategories(); err != nil {
			l.categories = prevCats
			l.articles, l.nextID = prev, prevNext
			return 0, err
		}
	}
	if n > 0 {
		if err := l.commitArticles(prev, prevNext); err != nil {
			return 0, err
		}
	}
	return n, nil
}

// ImportFile adds the article held in a markdown or plain text file. The
// first heading (or first line of a text file) becomes the article number;
// the file name is used when there is none.
func (l *Library) ImportFile(path, category string) (Article, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Article{}, fmt.Errorf("read %s: %w", path, err)
	}

	var number, content string
	if strings.EqualFold(filepath.Ext(path), ".txt") {
		number, content = ParseText(data)
	} else {
		number, content = ParseMarkdown(data)
	}
	if number == "" {
		number = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	a, err := l.Add(number, category, content)
	if err != nil {
		return Article{}, fmt.Errorf("import %s: %w", path, err)
	}
	return a, nil
}

// ImportDir imports every markdown and text file below dir, honoring
// .gitignore files. Files that fail to import are logged and skipped.
func (l *Library) ImportDir(dir, category string) ([]Article, error) {
	ch, err := gitcha.FindFilesExcept(dir, ImportExtensions, nil)
	if err != nil {
		return nil, fmt.Errorf("error finding files in %s: %w", dir, err)
	}

	var added []Article
	for res := range ch {
		a, err := l.ImportFile(res.Path, category)
		if err != nil {
			log.Warn("skipping file", "path", res.Path, "error", err)
			continue
		}
		added = append(added, a)
	}
	return added, nil
}

// ParseMarkdown extracts an article from markdown: the text of the first
// heading is the number and the remaining blocks, one per paragraph, are the
// content.
func ParseMarkdown(src []byte) (number, content string) {
	reader := text.NewReader(src)
	doc := goldmark.New().Parser().Parse(reader)

	var paragraphs []string
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch n := n.(type) {
		case *ast.Heading:
			if number == "" {
				number = strings.TrimSpace(inlineText(n, src))
				continue
			}
			paragraphs = append(paragraphs, strings.TrimSpace(inlineText(n, src)))
		case *ast.Paragraph, *ast.TextBlock:
			paragraphs = append(paragraphs, strings.TrimSpace(inlineText(n, src)))
		case *ast.List:
			for item := n.FirstChild(); item != nil; item = item.NextSibling() {
				paragraphs = append(paragraphs, strings.TrimSpace(inlineText(item, src)))
			}
		case *ast.Blockquote:
			for c := n.FirstChild(); c != nil; c = c.NextSibling() {
				paragraphs = append(paragraphs, strings.TrimSpace(inlineText(c, src)))
			}
		}
	}
	paragraphs = slices.DeleteFunc(paragraphs, func(p string) bool { return p == "" })
	return number, strings.Join(paragraphs, "\n\n")
}

func inlineText(n ast.Node, src []byte) string {
	var buf strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch c := c.(type) {
		case *ast.Text:
			buf.Write(c.Segment.Value(src))
			if c.SoftLineBreak() || c.HardLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(c.Value)
		case *ast.AutoLink:
			buf.Write(c.Label(src))
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}

// ParseText extracts an article from plain text: the first non-blank line
// is the number and the rest is the content.
func ParseText(src []byte) (number, content string) {
	sc := bufio.NewScanner(bytes.NewReader(src))
	// A whole article may sit on one line; size the buffer so no line is
	// too long and Scan only stops at the end of src.
	sc.Buffer(make([]byte, 0, min(len(src)+1, bufio.MaxScanTokenSize)), len(src)+1)
	var rest []string
	for sc.Scan() {
		line := sc.Text()
		if number == "" {
			number = strings.TrimSpace(line)
			continue
		}
		rest = append(rest, line)
	}
	return number, strings.TrimSpace(strings.Join(rest, "\n"))
}
