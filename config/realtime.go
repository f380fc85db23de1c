package config

import (
	"strings"
	"time"

	"github.com/yoockh/fluentspeak/internal/audio"
	"github.com/yoockh/fluentspeak/internal/realtime"
)

// Realtime holds the tunables of the audio pipeline.
type Realtime struct {
	SilenceThreshDB     float64
	MinSilenceLenMs     int
	BufferThreshold     int
	SampleRateHz        int
	Channels            int
	Language            string
	ExternalCallTimeout time.Duration
	PersistRetries      int
	PersistTimeout      time.Duration
	TurnLogTTL          time.Duration
	MaxUtteranceBytes   int
	OversizeUtterance   realtime.OversizePolicy
}

func LoadRealtime() (Realtime, error) {
	var p envParser
	cfg := Realtime{
		SilenceThreshDB:     p.float("SILENCE_THRESHOLD", -40),
		MinSilenceLenMs:     p.int("MIN_SILENCE_LEN", 300),
		BufferThreshold:     p.int("BUFFER_THRESHOLD_BYTES", audio.DefaultThresholdBytes),
		SampleRateHz:        p.int("AUDIO_SAMPLE_RATE", audio.DefaultFormat.SampleRateHz),
		Channels:            p.int("AUDIO_CHANNELS", audio.DefaultFormat.Channels),
		Language:            getenv("STT_LANGUAGE", "en-US"),
		ExternalCallTimeout: p.duration("EXTERNAL_CALL_TIMEOUT", 30*time.Second),
		PersistRetries:      p.int("PERSIST_RETRIES", 3),
		PersistTimeout:      p.duration("PERSIST_TIMEOUT", 30*time.Second),
		TurnLogTTL:          p.duration("TURN_LOG_TTL", 24*time.Hour),
		OversizeUtterance:   realtime.OversizePolicy(strings.ToLower(getenv("OVERSIZE_UTTERANCE", string(realtime.OversizeFlush)))),
	}
	cfg.MaxUtteranceBytes = p.int("MAX_UTTERANCE_BYTES", realtime.DefaultMaxUtteranceSeconds*cfg.Format().BytesPerSecond())

	p.check(cfg.SilenceThreshDB <= 0, "SILENCE_THRESHOLD must be <= 0 dBFS, got %v", cfg.SilenceThreshDB)
	p.check(cfg.MinSilenceLenMs > 0, "MIN_SILENCE_LEN must be > 0, got %d", cfg.MinSilenceLenMs)
	p.check(cfg.BufferThreshold > 0, "BUFFER_THRESHOLD_BYTES must be > 0, got %d", cfg.BufferThreshold)
	p.check(cfg.PersistRetries > 0, "PERSIST_RETRIES must be > 0, got %d", cfg.PersistRetries)
	p.check(cfg.MaxUtteranceBytes >= 0, "MAX_UTTERANCE_BYTES must be >= 0, got %d", cfg.MaxUtteranceBytes)
	p.check(cfg.OversizeUtterance.Valid(), "OVERSIZE_UTTERANCE must be flush or drop, got %q", cfg.OversizeUtterance)
	if err := cfg.Format().Validate(); err != nil {
		p.check(false, "AUDIO_SAMPLE_RATE/AUDIO_CHANNELS: %v", err)
	}
	return cfg, p.err()
}

func (c Realtime) Format() audio.Format {
	return audio.Format{SampleRateHz: c.SampleRateHz, Channels: c.Channels}
}

func (c Realtime) Suggestion() realtime.SuggestionConfig {
	return realtime.SuggestionConfig{
		ThresholdBytes:  c.BufferThreshold,
		Format:          c.Format(),
		MinSilenceLenMs: c.MinSilenceLenMs,
		SilenceThreshDB: c.SilenceThreshDB,
	}
}

func (c Realtime) Coach() realtime.CoachConfig {
	return realtime.CoachConfig{
		PersistRetries: c.PersistRetries,
		PersistTimeout: c.PersistTimeout,
		PersistBackoff: realtime.DefaultCoachConfig.PersistBackoff,

		MaxUtteranceBytes: c.MaxUtteranceBytes,
		Oversize:          c.OversizeUtterance,
	}
}
