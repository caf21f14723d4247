package paragraph

import "testing"

type countingStopper struct {
	stops int
}

func (s *countingStopper) Stop() { s.stops++ }

func TestEnable(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		want  []string
		first string
	}{
		{
			name:  "no blank lines",
			text:  "วรรคเดียว\nบรรทัดที่สอง",
			want:  []string{"วรรคเดียว\nบรรทัดที่สอง"},
			first: "วรรคเดียว\nบรรทัดที่สอง",
		},
		{
			name:  "two paragraphs",
			text:  "หนึ่ง\n\nสอง",
			want:  []string{"หนึ่ง", "สอง"},
			first: "หนึ่ง",
		},
		{
			name:  "whitespace-only parts dropped",
			text:  "หนึ่ง\n\n   \n\n\nสอง\n\n",
			want:  []string{"หนึ่ง", "สอง"},
			first: "หนึ่ง",
		},
		{
			name:  "blank text kept whole",
			text:  "  ",
			want:  []string{"  "},
			first: "  ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := New(nil)
			if got := n.Enable(tt.text); got != tt.first {
				t.Errorf("Enable() = %q, want %q", got, tt.first)
			}
			s := n.State()
			if len(s.Paragraphs) != len(tt.want) {
				t.Fatalf("got %d paragraphs %q, want %q", len(s.Paragraphs), s.Paragraphs, tt.want)
			}
			for i := range tt.want {
				if s.Paragraphs[i] != tt.want[i] {
					t.Errorf("paragraph %d = %q, want %q", i, s.Paragraphs[i], tt.want[i])
				}
			}
			if s.CurrentIndex != 0 {
				t.Errorf("CurrentIndex = %d, want 0", s.CurrentIndex)
			}
			if !n.Enabled() {
				t.Error("expected enabled")
			}
		})
	}
}

func TestDisableRestoresOriginal(t *testing.T) {
	text := "  มาตรา 1\n\n\nข้อความ \n\n"
	n := New(nil)
	n.Enable(text)
	n.Next()

	if got := n.Disable(); got != text {
		t.Errorf("Disable() = %q, want %q", got, text)
	}
	if n.Enabled() || n.Len() != 0 || n.Index() != 0 {
		t.Errorf("expected cleared navigator, got %+v", n.State())
	}
}

func TestNavigationStaysInRange(t *testing.T) {
	stopper := &countingStopper{}
	n := New(stopper)
	n.Enable("a\n\nb\n\nc")

	if n.CanPrevious() {
		t.Error("CanPrevious at first paragraph")
	}
	if n.Previous() {
		t.Error("Previous moved before the first paragraph")
	}
	if stopper.stops != 0 {
		t.Errorf("failed move stopped playback %d times", stopper.stops)
	}

	for _, want := range []string{"b", "c"} {
		if !n.Next() {
			t.Fatalf("Next failed before %q", want)
		}
		if n.Current() != want {
			t.Errorf("Current() = %q, want %q", n.Current(), want)
		}
	}
	if n.CanNext() || n.Next() {
		t.Error("Next moved past the last paragraph")
	}
	if n.Indicator() != "3/3" {
		t.Errorf("Indicator() = %q, want 3/3", n.Indicator())
	}

	if !n.Previous() || n.Current() != "b" {
		t.Errorf("Previous() landed on %q", n.Current())
	}
	if stopper.stops != 3 {
		t.Errorf("expected a stop per successful move, got %d", stopper.stops)
	}
}

func TestSingleParagraph(t *testing.T) {
	n := New(nil)
	n.Enable("only")
	if n.CanNext() || n.CanPrevious() {
		t.Error("single paragraph should allow no movement")
	}
	if n.Indicator() != "1/1" {
		t.Errorf("Indicator() = %q", n.Indicator())
	}
}

func TestIndicatorWhenDisabled(t *testing.T) {
	if got := New(nil).Indicator(); got != "0/0" {
		t.Errorf("Indicator() = %q, want 0/0", got)
	}
}
