// Package audio decodes clips and plays them through a queued output device.
package audio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
)

// ErrUnsupported is returned for files that are neither WAV nor MP3.
var ErrUnsupported = errors.New("unsupported audio format")

// PCM is decoded audio as interleaved signed 16-bit little-endian samples.
type PCM struct {
	SampleRate int
	Channels   int
	Data       []byte
}

// Duration returns the clip length in seconds.
func (p PCM) Duration() float64 {
	frame := p.Channels * 2
	if frame == 0 || p.SampleRate == 0 {
		return 0
	}
	return float64(len(p.Data)/frame) / float64(p.SampleRate)
}

// DecodeFile reads a whole WAV or MP3 file, chosen by extension.
func DecodeFile(path string) (PCM, error) {
	f, err := os.Open(path)
	if err != nil {
		return PCM{}, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return decodeWAV(f)
	case ".mp3":
		return decodeMP3(f)
	default:
		return PCM{}, fmt.Errorf("%s: %w", filepath.Ext(path), ErrUnsupported)
	}
}

func decodeWAV(r io.ReadSeeker) (PCM, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return PCM{}, errors.New("wav: not a valid wav file")
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return PCM{}, fmt.Errorf("wav: %w", err)
	}

	data, err := intToS16(buf, int(dec.BitDepth))
	if err != nil {
		return PCM{}, err
	}

	return PCM{
		SampleRate: int(dec.SampleRate),
		Channels:   int(dec.NumChans),
		Data:       data,
	}, nil
}

// intToS16 narrows or widens decoded samples to 16 bits. 8-bit WAV data is
// unsigned.
func intToS16(buf *audio.IntBuffer, depth int) ([]byte, error) {
	var shift func(int) int
	switch depth {
	case 8:
		shift = func(v int) int { return (v - 128) << 8 }
	case 16:
		shift = func(v int) int { return v }
	case 24:
		shift = func(v int) int { return v >> 8 }
	case 32:
		shift = func(v int) int { return v >> 16 }
	default:
		return nil, fmt.Errorf("wav: %d-bit samples: %w", depth, ErrUnsupported)
	}

	out := make([]byte, len(buf.Data)*2)
	for i, v := range buf.Data {
		s := int16(shift(v))
		out[2*i] = byte(s)
		out[2*i+1] = byte(s >> 8)
	}
	return out, nil
}

// decodeMP3 reads the whole stream. go-mp3 always yields 16-bit stereo.
func decodeMP3(r io.Reader) (PCM, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return PCM{}, fmt.Errorf("mp3: %w", err)
	}

	data, err := io.ReadAll(dec)
	if err != nil {
		return PCM{}, fmt.Errorf("mp3: %w", err)
	}

	return PCM{
		SampleRate: dec.SampleRate(),
		Channels:   2,
		Data:       data,
	}, nil
}
