package ui

import (
	"strings"

	"github.com/muesli/reflow/wordwrap"

	"github.com/lawflow/lawflow/tts/sentence"
)

// highlightMarkdown rebuilds text as markdown paragraphs with the chunk being
// read set in bold, so glamour renders it highlighted. Chunks always end at
// whitespace or at the end of a paragraph, which keeps the emphasis
// delimiters valid.
func highlightMarkdown(text string, chunk sentence.Chunk, active bool) string {
	paragraphs := sentence.Paragraphs(text)
	if !active || chunk.Text == "" || chunk.ParagraphIndex >= len(paragraphs) {
		return strings.Join(paragraphs, "\n\n")
	}

	p := paragraphs[chunk.ParagraphIndex]
	if i := chunkStart(p, chunk); i >= 0 && !strings.Contains(chunk.Text, "*") {
		paragraphs[chunk.ParagraphIndex] = p[:i] + "**" + chunk.Text + "**" + p[i+len(chunk.Text):]
	}
	return strings.Join(paragraphs, "\n\n")
}

// chunkStart returns where chunk begins in paragraph p. The chunk's own
// offset wins, so a sentence repeated within a paragraph is found at the
// occurrence being read. Text search is only a fallback for chunks whose
// offset does not match p.
func chunkStart(p string, chunk sentence.Chunk) int {
	end := chunk.Offset + len(chunk.Text)
	if chunk.Offset >= 0 && end <= len(p) && p[chunk.Offset:end] == chunk.Text {
		return chunk.Offset
	}
	return strings.Index(p, chunk.Text)
}

// highlightKey identifies what highlightMarkdown would emphasize, so the
// reader only re-renders when it changes.
type highlightKey struct {
	active    bool
	paragraph int
	offset    int
	text      string
}

// highlightPlain is highlightMarkdown for when glamour is off: the chunk is
// styled directly and paragraphs are wrapped to width.
func highlightPlain(text string, chunk sentence.Chunk, active bool, width int) string {
	paragraphs := sentence.Paragraphs(text)
	for i, p := range paragraphs {
		if active && i == chunk.ParagraphIndex && chunk.Text != "" {
			if j := chunkStart(p, chunk); j >= 0 {
				p = p[:j] + nowReadingStyle.Render(chunk.Text) + p[j+len(chunk.Text):]
			}
		}
		if width > 0 {
			p = wordwrap.String(p, width)
		}
		paragraphs[i] = p
	}
	return strings.Join(paragraphs, "\n\n")
}
