package services

import (
	"context"
	"time"

	"github.com/yoockh/fluentspeak/internal/metrics"
	"github.com/yoockh/fluentspeak/internal/providers/stt"
	"github.com/yoockh/fluentspeak/internal/utils"
)

type TranscriptionService interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

type transcriptionService struct {
	provider stt.Provider
	language string
	timeout  time.Duration
	metrics  *metrics.Metrics
}

func NewTranscriptionService(p stt.Provider, language string, timeout time.Duration, m *metrics.Metrics) TranscriptionService {
	if language == "" {
		language = "en-US"
	}
	if m == nil {
		m = metrics.DefaultMetrics
	}
	return &transcriptionService{provider: p, language: language, timeout: timeout, metrics: m}
}

// Transcribe returns the recognised text of one PCM segment. An empty result
// with a nil error means nothing intelligible was said.
func (s *transcriptionService) Transcribe(ctx context.Context, audio []byte) (string, error) {
	const op = "TranscriptionService.Transcribe"

	if len(audio) == 0 {
		return "", nil
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	text, _, err := s.provider.Transcribe(ctx, audio, s.language)
	s.metrics.RecordExternalCall(metrics.PortTranscribe, err, time.Since(start))
	if err != nil {
		return "", utils.External(op, "speech recognition failed", err)
	}
	return text, nil
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
