// Package audio plays synthesized speech. Audio is mono signed 16-bit
// little-endian PCM throughout.
package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"
)

// Audio format constants.
const (
	// SampleRate is the rate most speech synthesizers produce.
	SampleRate = 22050
	// OutputRate is the rate of the audio device context.
	OutputRate = 44100
	// Channels is the number of audio channels (1 = mono).
	Channels = 1
	// BytesPerSample is the size of one 16-bit sample.
	BytesPerSample = 2
)

var (
	// ErrEmptyAudio is returned when there is nothing to play.
	ErrEmptyAudio = errors.New("audio data is empty")
	// ErrInvalidWAV is returned for WAV data that cannot be parsed.
	ErrInvalidWAV = errors.New("invalid WAV data")
)

// Clip is a piece of mono s16le PCM audio.
type Clip struct {
	PCM        []byte
	SampleRate int
}

// Duration returns how long the clip plays.
func (c Clip) Duration() time.Duration {
	if c.SampleRate <= 0 {
		return 0
	}
	samples := len(c.PCM) / BytesPerSample
	return time.Duration(samples) * time.Second / time.Duration(c.SampleRate)
}

// Validate checks that the clip holds whole samples.
func (c Clip) Validate() error {
	if len(c.PCM) == 0 {
		return ErrEmptyAudio
	}
	if c.SampleRate <= 0 {
		return fmt.Errorf("invalid sample rate %d", c.SampleRate)
	}
	if len(c.PCM)%BytesPerSample != 0 {
		return fmt.Errorf("PCM data length %d is not aligned to %d-byte samples", len(c.PCM), BytesPerSample)
	}
	return nil
}

// Resample converts the clip to rate using linear interpolation.
func Resample(c Clip, rate int) Clip {
	if c.SampleRate == rate || c.SampleRate <= 0 || len(c.PCM) < BytesPerSample {
		return Clip{PCM: c.PCM, SampleRate: rate}
	}

	in := samples(c.PCM)
	ratio := float64(rate) / float64(c.SampleRate)
	n := int(float64(len(in)) * ratio)
	out := make([]byte, n*BytesPerSample)

	for i := 0; i < n; i++ {
		pos := float64(i) / ratio
		idx := int(pos)
		var v int16
		if idx >= len(in)-1 {
			v = in[len(in)-1]
		} else {
			frac := pos - float64(idx)
			v = int16(float64(in[idx])*(1-frac) + float64(in[idx+1])*frac)
		}
		binary.LittleEndian.PutUint16(out[i*BytesPerSample:], uint16(v))
	}
	return Clip{PCM: out, SampleRate: rate}
}

// Silence returns d of silence at rate.
func Silence(d time.Duration, rate int) Clip {
	n := int(math.Round(d.Seconds() * float64(rate)))
	return Clip{PCM: make([]byte, n*BytesPerSample), SampleRate: rate}
}

func samples(pcm []byte) []int16 {
	out := make([]int16, len(pcm)/BytesPerSample)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(pcm[i*BytesPerSample:]))
	}
	return out
}

// ParseWAV extracts the PCM data of a mono 16-bit RIFF/WAVE file, as
// written by espeak-ng --stdout. Streamed WAVs may carry a zero or
// oversized data length; the data then runs to the end of the input.
func ParseWAV(data []byte) (Clip, error) {
	if len(data) < 12 || !bytes.Equal(data[0:4], []byte("RIFF")) || !bytes.Equal(data[8:12], []byte("WAVE")) {
		return Clip{}, fmt.Errorf("%w: missing RIFF header", ErrInvalidWAV)
	}

	var (
		rate      int
		haveFmt   bool
		pos       = 12
		byteOrder = binary.LittleEndian
	)
	for pos+8 <= len(data) {
		id := string(data[pos : pos+4])
		size := int(byteOrder.Uint32(data[pos+4 : pos+8]))
		body := pos + 8

		switch id {
		case "fmt ":
			if body+16 > len(data) {
				return Clip{}, fmt.Errorf("%w: short fmt chunk", ErrInvalidWAV)
			}
			format := byteOrder.Uint16(data[body:])
			channels := byteOrder.Uint16(data[body+2:])
			rate = int(byteOrder.Uint32(data[body+4:]))
			bits := byteOrder.Uint16(data[body+14:])
			if format != 1 || channels != Channels || bits != 16 {
				return Clip{}, fmt.Errorf("%w: unsupported format %d, %d channels, %d bits", ErrInvalidWAV, format, channels, bits)
			}
			haveFmt = true

		case "data":
			if !haveFmt {
				return Clip{}, fmt.Errorf("%w: data before fmt", ErrInvalidWAV)
			}
			end := body + size
			if size == 0 || end > len(data) || end < body {
				end = len(data)
			}
			pcm := data[body:end]
			pcm = pcm[:len(pcm)-len(pcm)%BytesPerSample]
			return Clip{PCM: pcm, SampleRate: rate}, nil
		}

		pos = body + size + size%2
	}
	return Clip{}, fmt.Errorf("%w: no data chunk", ErrInvalidWAV)
}
