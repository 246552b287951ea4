package audio

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
	mp3 "github.com/hajimehoshi/go-mp3"
	"go.uber.org/multierr"
)

// LoadFile decodes an audio file into a mono Segment. WAV and MP3 are
// supported. Multi-channel audio is downmixed by averaging channels.
func LoadFile(path string) (Segment, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".wav":
		return loadWAV(path)
	case ".mp3":
		return loadMP3(path)
	default:
		return Segment{}, fmt.Errorf("audio: unsupported file extension %q", ext)
	}
}

func loadWAV(path string) (seg Segment, err error) {
	f, err := os.Open(path)
	if err != nil {
		return Segment{}, fmt.Errorf("audio: opening %s: %w", path, err)
	}
	defer func() {
		err = multierr.Combine(err, f.Close())
	}()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return Segment{}, fmt.Errorf("audio: %s is not a valid WAV file", path)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return Segment{}, fmt.Errorf("audio: decoding %s: %w", path, err)
	}

	bitDepth := int(decoder.BitDepth)
	if bitDepth == 0 {
		bitDepth = 16
	}
	scale := float32(int64(1) << (bitDepth - 1))

	channels := buf.Format.NumChannels
	if channels <= 0 {
		channels = 1
	}

	frames := len(buf.Data) / channels
	samples := make([]float32, frames)
	for i := 0; i < frames; i++ {
		var sum float32
		for c := 0; c < channels; c++ {
			sum += float32(buf.Data[i*channels+c]) / scale
		}
		samples[i] = sum / float32(channels)
	}

	return Segment{Samples: samples, SampleRate: int(decoder.SampleRate)}, nil
}

func loadMP3(path string) (seg Segment, err error) {
	f, err := os.Open(path)
	if err != nil {
		return Segment{}, fmt.Errorf("audio: opening %s: %w", path, err)
	}
	defer func() {
		err = multierr.Combine(err, f.Close())
	}()

	decoder, err := mp3.NewDecoder(f)
	if err != nil {
		return Segment{}, fmt.Errorf("audio: decoding %s: %w", path, err)
	}

	raw, err := io.ReadAll(decoder)
	if err != nil {
		return Segment{}, fmt.Errorf("audio: reading %s: %w", path, err)
	}

	// go-mp3 always outputs interleaved 16-bit stereo.
	frames := len(raw) / 4
	samples := make([]float32, frames)
	for i := 0; i < frames; i++ {
		left := int16(raw[i*4]) | int16(raw[i*4+1])<<8
		right := int16(raw[i*4+2]) | int16(raw[i*4+3])<<8
		samples[i] = (float32(left) + float32(right)) / 2 / 32768.0
	}

	return Segment{Samples: samples, SampleRate: decoder.SampleRate()}, nil
}
