package realtime

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yoockh/fluentspeak/internal/audio"
	"github.com/yoockh/fluentspeak/internal/models"
	"github.com/yoockh/fluentspeak/internal/utils"
)

// OversizePolicy says what happens to an utterance that would grow past
// CoachConfig.MaxUtteranceBytes.
type OversizePolicy string

const (
	// OversizeFlush transcribes the buffered audio as an utterance of its
	// own and keeps accumulating.
	OversizeFlush OversizePolicy = "flush"
	// OversizeDrop discards the utterance up to the next END_AUDIO.
	OversizeDrop OversizePolicy = "drop"
)

func (p OversizePolicy) Valid() bool { return p == OversizeFlush || p == OversizeDrop }

// DefaultMaxUtteranceSeconds keeps an utterance under the one minute a
// synchronous recognize call accepts.
const DefaultMaxUtteranceSeconds = 55

type CoachConfig struct {
	// PersistRetries is the number of attempts per message, at least 1.
	PersistRetries int
	PersistTimeout time.Duration
	PersistBackoff time.Duration

	// MaxUtteranceBytes caps the audio buffered for one utterance; 0 means
	// no cap.
	MaxUtteranceBytes int
	Oversize          OversizePolicy
}

var DefaultCoachConfig = CoachConfig{
	PersistRetries:    3,
	PersistTimeout:    30 * time.Second,
	PersistBackoff:    200 * time.Millisecond,
	MaxUtteranceBytes: DefaultMaxUtteranceSeconds * audio.DefaultFormat.BytesPerSecond(),
	Oversize:          OversizeFlush,
}

type CoachDeps struct {
	Transcriber   Transcriber
	Replier       Replier
	Conversations ConversationStore
	Archive       Archiver // optional
}

// CoachSession drives the coach mode: each utterance closed by END_AUDIO is
// transcribed and answered, and the whole dialogue is written to the
// conversation once the connection ends.
type CoachSession struct {
	session
	cfg  CoachConfig
	deps CoachDeps
	acc  *audio.Accumulator
	// discarding is set while the rest of a dropped utterance streams in.
	discarding bool

	conv    *models.Conversation
	history []models.DialogueTurn

	persistOnce sync.Once
}

func NewCoachSession(userID string, cfg CoachConfig, deps CoachDeps, obs Observers) *CoachSession {
	if cfg.PersistRetries < 1 {
		cfg.PersistRetries = 1
	}
	if !cfg.Oversize.Valid() {
		cfg.Oversize = OversizeFlush
	}
	s := &CoachSession{
		cfg:  cfg,
		deps: deps,
		acc:  audio.NewAccumulator(0),
	}
	s.init(userID, models.ModeCoach, obs)
	return s
}

// History returns a copy of the in-memory dialogue.
func (s *CoachSession) History() []models.DialogueTurn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.DialogueTurn(nil), s.history...)
}

// Run processes conn until the peer disconnects or ctx is done, then
// persists the dialogue. A bad opening frame ends the session at once with
// an error wrapping ErrMalformedControlMessage and nothing is persisted.
func (s *CoachSession) Run(ctx context.Context, conn Conn) error {
	s.open(ctx, conn)
	defer s.release()

	s.setState(StateAwaitConversationID)
	first, ok := s.next(ctx)
	if !ok {
		s.setState(StateClosed)
		s.finish(ctx, statusEnded, "")
		return nil
	}

	conv, err := s.resolveConversation(ctx, first)
	if err != nil {
		if utils.IsCode(err, utils.CodeInvalidArgument) {
			s.obs.Metrics.MalformedSessions.Inc()
		}
		s.log.WithError(err).Warn("session rejected")
		s.setState(StateClosed)
		s.finish(ctx, statusFailed, "")
		return err
	}
	s.conv = conv
	s.log = s.log.WithField("conversation_id", conv.ID)

	s.setState(StateAccumulating)
	for !s.closed() {
		f, ok := s.next(ctx)
		if !ok {
			break
		}
		switch f.Type {
		case BinaryFrame:
			s.received(f)
			s.accept(ctx, conn, f.Data)
		case TextFrame:
			if f.Text() != EndAudio {
				continue
			}
			if s.discarding {
				s.discarding = false
				continue
			}
			s.utterance(ctx, conn)
		}
	}

	s.setState(StateClosed)
	s.persist(ctx)
	s.finish(ctx, statusEnded, conv.ID)
	return nil
}

func (s *CoachSession) resolveConversation(ctx context.Context, f Frame) (*models.Conversation, error) {
	const op = "CoachSession.resolveConversation"

	if f.Type != TextFrame {
		return nil, utils.E(utils.CodeInvalidArgument, op, "first message must be a conversation id", ErrMalformedControlMessage)
	}
	id := f.Text()
	if _, err := uuid.Parse(id); err != nil {
		return nil, utils.E(utils.CodeInvalidArgument, op, "conversation id must be a uuid", ErrMalformedControlMessage)
	}

	conv, err := s.deps.Conversations.Get(ctx, id)
	switch {
	case utils.IsCode(err, utils.CodeNotFound), utils.IsCode(err, utils.CodeInvalidArgument):
		return nil, utils.E(utils.CodeInvalidArgument, op, "conversation does not exist", ErrMalformedControlMessage)
	case err != nil:
		return nil, utils.E(utils.CodeUnavailable, op, "conversation lookup failed", err)
	}
	if s.userID != "" && conv.UserID != s.userID {
		return nil, utils.E(utils.CodeInvalidArgument, op, "conversation belongs to another user", ErrMalformedControlMessage)
	}
	return conv, nil
}

// accept buffers one audio frame, applying the oversize policy when the
// utterance would outgrow MaxUtteranceBytes. A single frame over the cap is
// always dropped.
func (s *CoachSession) accept(ctx context.Context, conn Conn, data []byte) {
	if s.discarding {
		return
	}
	limit := s.cfg.MaxUtteranceBytes
	if limit <= 0 || s.acc.Len()+len(data) <= limit {
		s.acc.Append(data)
		return
	}

	log := s.log.WithFields(logrus.Fields{"buffered": s.acc.Len(), "frame": len(data), "limit": limit})
	if s.cfg.Oversize == OversizeFlush && s.acc.Len() > 0 {
		s.obs.Metrics.OversizeUtterances.WithLabelValues(string(OversizeFlush)).Inc()
		log.Warn("utterance reached size limit; transcribing early")
		s.utterance(ctx, conn)
		if len(data) <= limit {
			s.acc.Append(data)
			return
		}
	}
	s.obs.Metrics.OversizeUtterances.WithLabelValues(string(OversizeDrop)).Inc()
	log.Warn("utterance over size limit; dropped until END_AUDIO")
	s.acc.Flush()
	s.discarding = true
}

// utterance handles one END_AUDIO: transcribe, remember, answer.
func (s *CoachSession) utterance(ctx context.Context, conn Conn) {
	raw := s.acc.Flush()
	if len(raw) == 0 {
		return
	}
	began := time.Now()
	tl := s.newTurnLog(len(raw))
	log := s.log.WithFields(logrus.Fields{"seq": tl.Seq, "bytes": len(raw)})
	defer s.record(ctx, tl, began)
	defer s.setState(StateAccumulating)

	s.setState(StateTranscribing)
	s.updateStats(func(st *models.SessionStats) { st.Segments++ })
	text, err := s.deps.Transcriber.Transcribe(ctx, raw)
	if err != nil {
		tl.STTStatus = models.StatusFailed
		s.updateStats(func(st *models.SessionStats) { st.ExternalErrors++ })
		log.WithError(err).Warn("transcription failed; utterance skipped")
		return
	}
	tl.STTStatus = models.StatusDone
	text = strings.TrimSpace(text)
	tl.Transcript = text
	if text == "" {
		return
	}
	s.remember(models.SourceUser, text)

	if s.closed() {
		log.Info("connection closed during transcription; reply skipped")
		return
	}

	s.setState(StateGeneratingReply)
	reply, err := s.deps.Replier.GenerateReply(ctx, s.conv.Scenario, s.History())
	if err != nil {
		tl.LLMStatus = models.StatusFailed
		s.updateStats(func(st *models.SessionStats) { st.ExternalErrors++ })
		log.WithError(err).Warn("reply generation failed")
		return
	}
	tl.LLMStatus = models.StatusDone
	tl.Reply = reply
	if reply == "" {
		return
	}
	s.remember(models.SourceBot, reply)

	if err := conn.WriteText(reply); err != nil {
		log.WithError(err).Debug("write reply")
		return
	}
	s.obs.Metrics.RepliesEmitted.Inc()
}

func (s *CoachSession) remember(src models.MessageSource, text string) {
	s.mu.Lock()
	s.history = append(s.history, models.DialogueTurn{
		ID:        uuid.NewString(),
		Speaker:   src,
		Text:      text,
		Timestamp: time.Now().UTC(),
	})
	s.stats.Turns++
	s.mu.Unlock()
}

// persist appends every turn to the conversation in order. It runs at most
// once, outlives ctx cancellation and stops at the first turn that cannot be
// written so later turns never land ahead of it.
func (s *CoachSession) persist(ctx context.Context) {
	s.persistOnce.Do(func() {
		defer s.setState(StatePersisted)

		turns := s.History()
		if s.conv == nil || len(turns) == 0 {
			return
		}

		pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.PersistTimeout)
		defer cancel()

		written := 0
		for _, t := range turns {
			if err := s.appendWithRetry(pctx, t); err != nil {
				lost := len(turns) - written
				s.obs.Metrics.PersistFailures.Add(float64(lost))
				s.log.WithError(err).WithFields(logrus.Fields{
					"persisted": written,
					"lost":      lost,
				}).Error("dialogue persistence incomplete")
				break
			}
			written++
			s.obs.Metrics.MessagesPersisted.Inc()
		}

		s.updateStats(func(st *models.SessionStats) {
			st.PersistedTurns = written
			st.FailedTurns = len(turns) - written
		})
		s.log.WithField("persisted", written).Info("dialogue persisted")

		if s.deps.Archive != nil && written > 0 {
			if path, err := s.deps.Archive.Archive(pctx, s.conv.ID, s.id, turns[:written]); err != nil {
				s.log.WithError(err).Warn("transcript archive failed")
			} else if path != "" {
				s.log.WithField("path", path).Debug("transcript archived")
			}
		}
	})
}

func (s *CoachSession) appendWithRetry(ctx context.Context, t models.DialogueTurn) error {
	var err error
	for attempt := 1; attempt <= s.cfg.PersistRetries; attempt++ {
		_, err = s.deps.Conversations.AppendMessage(ctx, s.conv.ID, t.ID, t.Speaker, t.Text, t.Timestamp)
		if err == nil {
			return nil
		}
		if !utils.Retryable(err) || attempt == s.cfg.PersistRetries {
			return err
		}
		select {
		case <-time.After(s.cfg.PersistBackoff * time.Duration(attempt)):
		case <-ctx.Done():
			return err
		}
	}
	return err
}
