package stt

import (
	"context"

	speech "cloud.google.com/go/speech/apiv1"
	speechpb "cloud.google.com/go/speech/apiv1/speechpb"
)

type GoogleSpeechConfig struct {
	SampleRateHz int32
	Channels     int32
	Model        string // optional, e.g. "latest_short"
}

type GoogleSpeech struct {
	c   *speech.Client
	cfg GoogleSpeechConfig
}

func NewGoogleSpeech(ctx context.Context, cfg GoogleSpeechConfig) (*GoogleSpeech, error) {
	c, err := speech.NewClient(ctx)
	if err != nil {
		return nil, err
	}
	if cfg.SampleRateHz <= 0 {
		cfg.SampleRateHz = 16000
	}
	if cfg.Channels <= 0 {
		cfg.Channels = 1
	}
	return &GoogleSpeech{c: c, cfg: cfg}, nil
}

func (g *GoogleSpeech) Close() error { return g.c.Close() }

// Transcribe sends raw LINEAR16 PCM. Consecutive results cover consecutive
// parts of the audio, so their top alternatives are joined in order.
func (g *GoogleSpeech) Transcribe(ctx context.Context, audio []byte, language string) (string, float64, error) {
	if language == "" {
		language = "en-US"
	}

	resp, err := g.c.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:                   speechpb.RecognitionConfig_LINEAR16,
			SampleRateHertz:            g.cfg.SampleRateHz,
			AudioChannelCount:          g.cfg.Channels,
			LanguageCode:               language,
			Model:                      g.cfg.Model,
			EnableAutomaticPunctuation: true,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audio},
		},
	})
	if err != nil {
		return "", 0, err
	}

	alts := make([]Alternative, 0, len(resp.Results))
	for _, r := range resp.Results {
		if len(r.Alternatives) == 0 {
			continue
		}
		alt := r.Alternatives[0]
		alts = append(alts, Alternative{Text: alt.Transcript, Confidence: float64(alt.Confidence)})
	}
	text, conf := Join(alts)
	return text, conf, nil
}
