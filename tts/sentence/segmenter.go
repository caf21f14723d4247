// Package sentence splits article text into paragraph-aware sentence chunks,
// the unit the playback controller hands to the speech engine.
package sentence

import (
	"iter"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	// Two or more newlines separate paragraphs.
	paragraphBreak = regexp.MustCompile(`\n{2,}`)

	// A terminator followed by whitespace ends a sentence. The ideographic
	// full stop is included for mixed-script text. \s is ASCII-only in RE2,
	// so Unicode spaces such as NBSP and U+3000 are listed too.
	sentenceEnd = regexp.MustCompile(`[.!?。][\s\v\p{Z}]+`)
)

// Chunk is one sentence of text plus its paragraph membership.
type Chunk struct {
	Text              string
	IsLastInParagraph bool
	ParagraphIndex    int
	Offset            int // Byte offset of Text in its trimmed paragraph
}

// Segment returns the chunks of text as a lazy sequence. The sequence is
// restartable: ranging over it again re-reads text from the beginning.
// Empty or whitespace-only input yields nothing.
func Segment(text string) iter.Seq[Chunk] {
	return func(yield func(Chunk) bool) {
		ordinal := 0
		for _, p := range paragraphBreak.Split(text, -1) {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}

			sentences := splitSentences(p)
			for i, s := range sentences {
				c := Chunk{
					Text:              s.text,
					IsLastInParagraph: i == len(sentences)-1,
					ParagraphIndex:    ordinal,
					Offset:            s.offset,
				}
				if !yield(c) {
					return
				}
			}
			ordinal++
		}
	}
}

// Collect materializes every chunk of text.
func Collect(text string) []Chunk {
	var chunks []Chunk
	for c := range Segment(text) {
		chunks = append(chunks, c)
	}
	return chunks
}

// Count returns the number of chunks text would produce.
func Count(text string) int {
	n := 0
	for range Segment(text) {
		n++
	}
	return n
}

type span struct {
	text   string
	offset int
}

// splitSentences cuts a trimmed paragraph after every terminator that is
// followed by whitespace. Terminators stay with their sentence.
func splitSentences(paragraph string) []span {
	var out []span
	add := func(start, end int) {
		s := strings.TrimLeftFunc(paragraph[start:end], unicode.IsSpace)
		offset := end - len(s)
		if s = strings.TrimRightFunc(s, unicode.IsSpace); s != "" {
			out = append(out, span{text: s, offset: offset})
		}
	}

	prev := 0
	for _, loc := range sentenceEnd.FindAllStringIndex(paragraph, -1) {
		_, size := utf8.DecodeRuneInString(paragraph[loc[0]:])
		add(prev, loc[0]+size)
		prev = loc[1]
	}
	add(prev, len(paragraph))
	return out
}

// Paragraphs returns the trimmed, non-empty paragraphs of text, split at
// blank-line boundaries.
func Paragraphs(text string) []string {
	var out []string
	for _, p := range paragraphBreak.Split(text, -1) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
