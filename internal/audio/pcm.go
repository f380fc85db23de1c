package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// Format describes raw little-endian signed 16-bit PCM.
type Format struct {
	SampleRateHz int
	Channels     int
}

// DefaultFormat is 16 kHz mono.
var DefaultFormat = Format{SampleRateHz: 16000, Channels: 1}

// MaxAmplitude is the largest absolute value a 16-bit sample can take.
const MaxAmplitude = 1 << 15

var ErrInvalidFormat = errors.New("audio: invalid pcm format")

func (f Format) Validate() error {
	if f.SampleRateHz <= 0 || f.Channels <= 0 {
		return fmt.Errorf("%w: rate=%d channels=%d", ErrInvalidFormat, f.SampleRateHz, f.Channels)
	}
	return nil
}

// BytesPerSecond is the stream rate of f, handy for sizing buffer thresholds.
func (f Format) BytesPerSecond() int { return f.SampleRateHz * f.Channels * 2 }

// Segment is decoded PCM audio with interleaved channels.
type Segment struct {
	Samples []int16
	Format  Format
}

// DecodePCM16 decodes raw PCM bytes. A trailing partial frame is dropped.
func DecodePCM16(data []byte, f Format) (Segment, error) {
	if err := f.Validate(); err != nil {
		return Segment{}, err
	}
	frameBytes := 2 * f.Channels
	usable := len(data) - len(data)%frameBytes

	samples := make([]int16, usable/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(data[2*i:]))
	}
	return Segment{Samples: samples, Format: f}, nil
}

func (s Segment) Frames() int {
	if s.Format.Channels <= 0 {
		return 0
	}
	return len(s.Samples) / s.Format.Channels
}

// DurationMs is the segment length rounded to the nearest millisecond.
func (s Segment) DurationMs() int {
	if s.Format.SampleRateHz <= 0 {
		return 0
	}
	return int(math.Round(1000 * float64(s.Frames()) / float64(s.Format.SampleRateHz)))
}

// sampleIndex maps a millisecond position to an index into Samples.
func (s Segment) sampleIndex(ms int) int {
	frame := ms * s.Format.SampleRateHz / 1000
	if frames := s.Frames(); frame > frames {
		frame = frames
	}
	return frame * s.Format.Channels
}
