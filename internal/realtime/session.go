package realtime

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yoockh/fluentspeak/internal/metrics"
	"github.com/yoockh/fluentspeak/internal/models"
)

const auditTimeout = 5 * time.Second

// Audit statuses written when a session ends.
const (
	statusEnded  = "ended"
	statusFailed = "failed"
)

// Observers are the optional side channels of a session. None of them can
// fail a session.
type Observers struct {
	Audit   SessionAudit
	Turns   TurnRecorder
	Metrics *metrics.Metrics
	Logger  *logrus.Logger
}

// session holds what both modes share: identity, lifecycle state, the
// reader pump and bookkeeping.
type session struct {
	id     string
	userID string
	mode   models.SessionMode
	obs    Observers
	log    *logrus.Entry

	mu    sync.RWMutex
	state State
	stats models.SessionStats

	seq     int64
	started time.Time

	frames       chan Frame
	disconnected chan struct{}
	stop         chan struct{}
	stopOnce     sync.Once
}

func (s *session) init(userID string, mode models.SessionMode, obs Observers) {
	if obs.Metrics == nil {
		obs.Metrics = metrics.DefaultMetrics
	}
	if obs.Logger == nil {
		obs.Logger = logrus.StandardLogger()
	}
	s.id = uuid.NewString()
	s.userID = userID
	s.mode = mode
	s.obs = obs
	s.log = obs.Logger.WithFields(logrus.Fields{
		"session_id": s.id,
		"mode":       mode,
		"user_id":    userID,
	})
	s.state = StateOpen
	s.frames = make(chan Frame)
	s.disconnected = make(chan struct{})
	s.stop = make(chan struct{})
}

func (s *session) ID() string { return s.id }

func (s *session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *session) Stats() models.SessionStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

func (s *session) setState(st State) {
	s.mu.Lock()
	prev := s.state
	s.state = st
	s.mu.Unlock()
	if prev != st {
		s.log.WithFields(logrus.Fields{"from": prev.String(), "to": st.String()}).Debug("session state")
	}
}

func (s *session) updateStats(fn func(*models.SessionStats)) {
	s.mu.Lock()
	fn(&s.stats)
	s.mu.Unlock()
}

// open starts the reader pump and announces the session.
func (s *session) open(ctx context.Context, conn Conn) {
	s.started = time.Now()
	s.obs.Metrics.RecordSessionStart(string(s.mode))
	go pump(conn, s.frames, s.disconnected, s.stop)

	if s.obs.Audit != nil {
		actx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditTimeout)
		defer cancel()
		if _, err := s.obs.Audit.Start(actx, s.id, s.userID, s.mode); err != nil {
			s.log.WithError(err).Warn("session audit start failed")
		}
	}
	s.log.Info("session opened")
}

// next blocks for the next inbound frame. ok is false once the connection
// is gone or ctx is done.
func (s *session) next(ctx context.Context) (Frame, bool) {
	select {
	case f, ok := <-s.frames:
		return f, ok
	case <-ctx.Done():
		return Frame{}, false
	}
}

// closed reports whether the peer has disconnected, without blocking.
func (s *session) closed() bool {
	select {
	case <-s.disconnected:
		return true
	default:
		return false
	}
}

func (s *session) release() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// finish records the end of the session.
func (s *session) finish(ctx context.Context, status, conversationID string) {
	d := time.Since(s.started)
	s.obs.Metrics.RecordSessionEnd(string(s.mode), d)

	if s.obs.Audit != nil {
		actx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditTimeout)
		defer cancel()
		if _, err := s.obs.Audit.End(actx, s.id, status, conversationID, s.Stats()); err != nil {
			s.log.WithError(err).Warn("session audit end failed")
		}
	}

	st := s.Stats()
	s.log.WithFields(logrus.Fields{
		"status":         status,
		"duration_ms":    d.Milliseconds(),
		"bytes_received": st.BytesReceived,
		"turns":          st.Turns,
	}).Info("session closed")
}

func (s *session) received(f Frame) {
	s.obs.Metrics.RecordAudioReceived(len(f.Data))
	s.updateStats(func(st *models.SessionStats) { st.BytesReceived += int64(len(f.Data)) })
}

func (s *session) newTurnLog(audioBytes int) *models.TurnLog {
	s.seq++
	return &models.TurnLog{
		SessionID:  s.id,
		Seq:        s.seq,
		Mode:       s.mode,
		AudioBytes: audioBytes,
		STTStatus:  models.StatusSkipped,
		LLMStatus:  models.StatusSkipped,
		Timestamp:  time.Now().UTC(),
	}
}

func (s *session) record(ctx context.Context, t *models.TurnLog, began time.Time) {
	t.ProcessingTimeMS = time.Since(began).Milliseconds()
	s.log.WithFields(logrus.Fields{
		"seq":        t.Seq,
		"bytes":      t.AudioBytes,
		"stutter":    t.Stutter,
		"stt":        t.STTStatus,
		"llm":        t.LLMStatus,
		"latency_ms": t.ProcessingTimeMS,
	}).Debug("turn processed")

	if s.obs.Turns == nil {
		return
	}
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditTimeout)
	defer cancel()
	if err := s.obs.Turns.Record(rctx, t); err != nil {
		s.log.WithError(err).Warn("turn log write failed")
	}
}
