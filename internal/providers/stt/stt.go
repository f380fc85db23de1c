// Package stt turns PCM16 segments into text.
package stt

import (
	"context"
	"strings"
)

// Provider transcribes one complete segment of raw audio in one call. Empty
// text with a nil error means nothing was recognised.
type Provider interface {
	Transcribe(ctx context.Context, audio []byte, language string) (text string, confidence float64, err error)
	Close() error
}

// Alternative is the top hypothesis for one consecutive slice of a segment.
type Alternative struct {
	Text       string
	Confidence float64
}

// Join concatenates alternatives in audio order with single spaces, skipping
// blank ones, and averages the confidence of those kept.
func Join(alts []Alternative) (string, float64) {
	var parts []string
	var sum float64
	for _, a := range alts {
		if t := strings.TrimSpace(a.Text); t != "" {
			parts = append(parts, t)
			sum += a.Confidence
		}
	}
	if len(parts) == 0 {
		return "", 0
	}
	return strings.Join(parts, " "), sum / float64(len(parts))
}
