package sentence

import (
	"testing"
)

func TestSegmentEmpty(t *testing.T) {
	for _, input := range []string{"", "   ", "\n\n\n", " \n\n \t "} {
		if n := Count(input); n != 0 {
			t.Errorf("Count(%q) = %d, want 0", input, n)
		}
	}
}

func TestSegment(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []Chunk
	}{
		{
			name:  "two sentences one paragraph",
			input: "A. B.",
			expected: []Chunk{
				{Text: "A.", ParagraphIndex: 0},
				{Text: "B.", ParagraphIndex: 0, IsLastInParagraph: true, Offset: 3},
			},
		},
		{
			name:  "two paragraphs",
			input: "A.\n\nB.",
			expected: []Chunk{
				{Text: "A.", ParagraphIndex: 0, IsLastInParagraph: true},
				{Text: "B.", ParagraphIndex: 1, IsLastInParagraph: true},
			},
		},
		{
			name:  "no terminal punctuation",
			input: "ผู้ใดฆ่าผู้อื่นต้องระวางโทษประหารชีวิต จำคุกตลอดชีวิต",
			expected: []Chunk{
				{Text: "ผู้ใดฆ่าผู้อื่นต้องระวางโทษประหารชีวิต จำคุกตลอดชีวิต", IsLastInParagraph: true},
			},
		},
		{
			name:  "mixed terminators",
			input: "Really? Yes! Of course.  Done",
			expected: []Chunk{
				{Text: "Really?"},
				{Text: "Yes!", Offset: 8},
				{Text: "Of course.", Offset: 13},
				{Text: "Done", IsLastInParagraph: true, Offset: 25},
			},
		},
		{
			name:  "full-width period",
			input: "第一。 第二。",
			expected: []Chunk{
				{Text: "第一。"},
				{Text: "第二。", IsLastInParagraph: true, Offset: 10},
			},
		},
		{
			name:  "no-break space after terminator",
			input: "A.\u00a0B.",
			expected: []Chunk{
				{Text: "A."},
				{Text: "B.", IsLastInParagraph: true, Offset: 4},
			},
		},
		{
			name:  "ideographic space after full-width period",
			input: "ก。\u3000ข。",
			expected: []Chunk{
				{Text: "ก。"},
				{Text: "ข。", IsLastInParagraph: true, Offset: 9},
			},
		},
		{
			name:  "vertical tab after terminator",
			input: "A.\vB.",
			expected: []Chunk{
				{Text: "A."},
				{Text: "B.", IsLastInParagraph: true, Offset: 3},
			},
		},
		{
			name:  "terminator without whitespace does not split",
			input: "Version 1.5 is out. Next",
			expected: []Chunk{
				{Text: "Version 1.5 is out."},
				{Text: "Next", IsLastInParagraph: true, Offset: 20},
			},
		},
		{
			name:  "blank paragraphs are skipped and ordinals stay dense",
			input: "\n\nA.\n\n   \n\n\nB. C.",
			expected: []Chunk{
				{Text: "A.", ParagraphIndex: 0, IsLastInParagraph: true},
				{Text: "B.", ParagraphIndex: 1},
				{Text: "C.", ParagraphIndex: 1, IsLastInParagraph: true, Offset: 3},
			},
		},
		{
			name:  "single newline stays inside paragraph",
			input: "First line.\nSecond line.",
			expected: []Chunk{
				{Text: "First line."},
				{Text: "Second line.", IsLastInParagraph: true, Offset: 12},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Collect(tt.input)
			if len(got) != len(tt.expected) {
				t.Fatalf("got %d chunks %+v, want %d", len(got), got, len(tt.expected))
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("chunk %d = %+v, want %+v", i, got[i], tt.expected[i])
				}
			}
		})
	}
}

func TestOffsetsLocateRepeatedSentences(t *testing.T) {
	text := "  ซ้ำ. อื่น. ซ้ำ.\n\nซ้ำ."
	paragraphs := Paragraphs(text)
	chunks := Collect(text)
	wantOffsets := []int{0, len("ซ้ำ. "), len("ซ้ำ. อื่น. "), 0}
	if len(chunks) != len(wantOffsets) {
		t.Fatalf("chunks = %+v", chunks)
	}
	for i, c := range chunks {
		if c.Offset != wantOffsets[i] {
			t.Errorf("chunk %d offset = %d, want %d", i, c.Offset, wantOffsets[i])
		}
		p := paragraphs[c.ParagraphIndex]
		if got := p[c.Offset : c.Offset+len(c.Text)]; got != c.Text {
			t.Errorf("chunk %d: paragraph slice %q != %q", i, got, c.Text)
		}
	}
}

func TestSegmentRestartable(t *testing.T) {
	seq := Segment("One. Two.\n\nThree.")

	var first, second []Chunk
	for c := range seq {
		first = append(first, c)
	}
	for c := range seq {
		second = append(second, c)
	}

	if len(first) != 3 || len(second) != 3 {
		t.Fatalf("expected 3 chunks on both passes, got %d and %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("pass mismatch at %d: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestSegmentStopsEarly(t *testing.T) {
	n := 0
	for range Segment("A. B. C. D.") {
		n++
		if n == 2 {
			break
		}
	}
	if n != 2 {
		t.Errorf("expected to stop after 2 chunks, got %d", n)
	}
}

func TestParagraphs(t *testing.T) {
	got := Paragraphs("  first\n\n\n second \n\n \n")
	if len(got) != 2 || got[0] != "first" || got[1] != "second" {
		t.Errorf("Paragraphs = %q", got)
	}
	if got := Paragraphs(""); len(got) != 0 {
		t.Errorf("Paragraphs(\"\") = %q, want none", got)
	}
}
