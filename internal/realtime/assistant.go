package realtime

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yoockh/fluentspeak/internal/audio"
	"github.com/yoockh/fluentspeak/internal/models"
	"github.com/yoockh/fluentspeak/internal/stutter"
)

type SuggestionConfig struct {
	ThresholdBytes  int
	Format          audio.Format
	MinSilenceLenMs int
	SilenceThreshDB float64
}

// DefaultSuggestionConfig matches one second of 16 kHz mono speech and the
// usual -40 dBFS / 300 ms silence window.
var DefaultSuggestionConfig = SuggestionConfig{
	ThresholdBytes:  audio.DefaultThresholdBytes,
	Format:          audio.DefaultFormat,
	MinSilenceLenMs: 300,
	SilenceThreshDB: -40,
}

type SuggestionDeps struct {
	Transcriber Transcriber
	Suggester   Suggester
	Classifier  *stutter.Classifier
}

// SuggestionSession drives the assistant mode: audio is cut into fixed-size
// segments and each segment that looks disfluent gets next-word suggestions.
// Nothing it does is durable.
type SuggestionSession struct {
	session
	cfg  SuggestionConfig
	deps SuggestionDeps
	acc  *audio.Accumulator
}

func NewSuggestionSession(userID string, cfg SuggestionConfig, deps SuggestionDeps, obs Observers) *SuggestionSession {
	if deps.Classifier == nil {
		deps.Classifier = stutter.Default
	}
	s := &SuggestionSession{
		cfg:  cfg,
		deps: deps,
		acc:  audio.NewAccumulator(cfg.ThresholdBytes),
	}
	s.init(userID, models.ModeAssistant, obs)
	return s
}

// Run processes conn until the peer disconnects or ctx is done. It always
// returns nil; per-segment failures are logged and skipped.
func (s *SuggestionSession) Run(ctx context.Context, conn Conn) error {
	s.open(ctx, conn)
	defer s.release()

	s.setState(StateAccumulating)
	for {
		f, ok := s.next(ctx)
		if !ok {
			break
		}
		if f.Type != BinaryFrame {
			continue
		}
		s.received(f)
		if status, seg := s.acc.Append(f.Data); status == audio.ReachedThreshold {
			s.analyze(ctx, conn, seg)
			s.setState(StateAccumulating)
		}
	}

	s.setState(StateClosed)
	s.finish(ctx, statusEnded, "")
	return nil
}

func (s *SuggestionSession) analyze(ctx context.Context, conn Conn, raw []byte) {
	began := time.Now()
	s.setState(StateAnalyzing)
	s.updateStats(func(st *models.SessionStats) { st.Segments++ })

	tl := s.newTurnLog(len(raw))
	log := s.log.WithFields(logrus.Fields{"seq": tl.Seq, "bytes": len(raw)})
	defer s.record(ctx, tl, began)

	seg, err := audio.DecodePCM16(raw, s.cfg.Format)
	if err != nil {
		log.WithError(err).Error("decode segment")
		return
	}

	transcript, err := s.deps.Transcriber.Transcribe(ctx, raw)
	if err != nil {
		tl.STTStatus = models.StatusFailed
		s.updateStats(func(st *models.SessionStats) { st.ExternalErrors++ })
		log.WithError(err).Warn("transcription failed; segment skipped")
		return
	}
	transcript = strings.TrimSpace(transcript)
	tl.STTStatus = models.StatusDone
	tl.Transcript = transcript

	silences := audio.FindSilences(seg, s.cfg.MinSilenceLenMs, s.cfg.SilenceThreshDB)
	blocked := s.deps.Classifier.IsStutter(silences, transcript)
	tl.Silences = len(silences)
	tl.Stutter = blocked
	s.obs.Metrics.RecordSegment(blocked)
	if !blocked {
		return
	}
	s.updateStats(func(st *models.SessionStats) { st.Stutters++ })

	s.setState(StateSuggesting)
	set, err := s.deps.Suggester.Suggest(ctx, transcript)
	if err != nil {
		tl.LLMStatus = models.StatusFailed
		s.updateStats(func(st *models.SessionStats) { st.ExternalErrors++ })
		log.WithError(err).Warn("suggestion failed; segment skipped")
		return
	}
	tl.LLMStatus = models.StatusDone
	tl.Suggestions = set
	if set.Empty() {
		return
	}

	if err := conn.WriteText(set.String()); err != nil {
		log.WithError(err).Debug("write suggestion")
		return
	}
	s.obs.Metrics.SuggestionsEmitted.Inc()
	s.updateStats(func(st *models.SessionStats) { st.Suggestions++ })
}
