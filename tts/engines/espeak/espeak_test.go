package espeak

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"slices"
	"testing"

	"github.com/lawflow/lawflow/tts"
	"github.com/lawflow/lawflow/tts/engines"
)

const voicesOutput = `Pty Language       Age/Gender VoiceName          File                 Other Languages
 5  af              --/M      Afrikaans          gmw/af
 5  en-us           --/M      English_(America)  gmw/en-US            (en 3)
 5  th              --/M      Thai               sit/th
`

type fakeRun struct {
	input string
	name  string
	args  []string
	out   []byte
	err   error
}

func (f *fakeRun) run(_ context.Context, input string, name string, args ...string) ([]byte, error) {
	f.input, f.name, f.args = input, name, args
	return f.out, f.err
}

func newTestSynth(f *fakeRun) *Synthesizer {
	return &Synthesizer{
		config: Config{Binary: "/usr/bin/espeak-ng", Voice: "th"},
		run:    f.run,
	}
}

func wav(pcm []byte) []byte {
	var b bytes.Buffer
	le := binary.LittleEndian
	b.WriteString("RIFF")
	_ = binary.Write(&b, le, uint32(36+len(pcm)))
	b.WriteString("WAVEfmt ")
	for _, v := range []any{uint32(16), uint16(1), uint16(1), uint32(22050), uint32(44100), uint16(2), uint16(16)} {
		_ = binary.Write(&b, le, v)
	}
	b.WriteString("data")
	_ = binary.Write(&b, le, uint32(len(pcm)))
	b.Write(pcm)
	return b.Bytes()
}

func TestParseVoices(t *testing.T) {
	voices := parseVoices([]byte(voicesOutput))
	if len(voices) != 3 {
		t.Fatalf("got %d voices: %+v", len(voices), voices)
	}
	want := tts.Voice{ID: "en-us", Name: "English (America)", Language: "en-us"}
	if voices[1] != want {
		t.Errorf("voice 1 = %+v, want %+v", voices[1], want)
	}
	if thai := tts.ThaiVoices(voices); len(thai) != 1 || thai[0].ID != "th" {
		t.Errorf("Thai voices = %+v", thai)
	}
}

func TestArgs(t *testing.T) {
	s := newTestSynth(&fakeRun{})
	tests := []struct {
		name string
		u    tts.Utterance
		want []string
	}{
		{
			name: "defaults",
			u:    tts.Utterance{Rate: 1, Pitch: 1},
			want: []string{"-v", "th", "-s", "175", "-p", "50", "--stdout", "--stdin"},
		},
		{
			name: "slow and low",
			u:    tts.Utterance{Voice: "en-us", Rate: 0.8, Pitch: 0.5},
			want: []string{"-v", "en-us", "-s", "140", "-p", "25", "--stdout", "--stdin"},
		},
		{
			name: "pitch clamped",
			u:    tts.Utterance{Rate: 2, Pitch: 2},
			want: []string{"-v", "th", "-s", "350", "-p", "99", "--stdout", "--stdin"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.args(tt.u); !slices.Equal(got, tt.want) {
				t.Errorf("args() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSynthesize(t *testing.T) {
	pcm := []byte{1, 0, 2, 0}
	f := &fakeRun{out: wav(pcm)}
	s := newTestSynth(f)

	clip, err := s.Synthesize(context.Background(), tts.Utterance{Text: "มาตรา 1", Rate: 1, Pitch: 1})
	if err != nil {
		t.Fatal(err)
	}
	if f.input != "มาตรา 1" {
		t.Errorf("stdin = %q", f.input)
	}
	if clip.SampleRate != 22050 || !bytes.Equal(clip.PCM, pcm) {
		t.Errorf("clip = %+v", clip)
	}
}

func TestSynthesizeErrors(t *testing.T) {
	boom := errors.New("exit status 1")
	if _, err := newTestSynth(&fakeRun{err: boom}).Synthesize(context.Background(), tts.Utterance{Text: "x"}); !errors.Is(err, boom) {
		t.Errorf("Synthesize() = %v, want process error", err)
	}
	if _, err := newTestSynth(&fakeRun{out: []byte("garbage")}).Synthesize(context.Background(), tts.Utterance{Text: "x"}); err == nil {
		t.Error("expected error for non-WAV output")
	}

	missing := &Synthesizer{run: (&fakeRun{}).run}
	if err := missing.Available(); !errors.Is(err, engines.ErrUnavailable) {
		t.Errorf("Available() = %v, want ErrUnavailable", err)
	}
}
