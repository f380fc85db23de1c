package services

import (
	"context"
	"errors"
	"time"

	"github.com/yoockh/fluentspeak/internal/models"
	mongorepo "github.com/yoockh/fluentspeak/internal/repositories/mongo"
	"github.com/yoockh/fluentspeak/internal/utils"
)

const (
	SessionActive = "active"
	SessionEnded  = "ended"
	SessionFailed = "failed"
)

// SessionService keeps the audit trail of realtime connections.
type SessionService interface {
	Start(ctx context.Context, sessionID, userID string, mode models.SessionMode) (*models.Session, error)
	Get(ctx context.Context, sessionID string) (*models.Session, error)
	End(ctx context.Context, sessionID, status, conversationID string, stats models.SessionStats) (*models.Session, error)
	ListByConversation(ctx context.Context, userID, conversationID string, limit int64) ([]models.Session, error)
}

type sessionService struct {
	sessions mongorepo.SessionRepository
}

func NewSessionService(sessions mongorepo.SessionRepository) SessionService {
	return &sessionService{sessions: sessions}
}

func (s *sessionService) Start(ctx context.Context, sessionID, userID string, mode models.SessionMode) (*models.Session, error) {
	const op = "SessionService.Start"

	if sessionID == "" || mode == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "session_id and mode are required", nil)
	}

	session := &models.Session{
		SessionID: sessionID,
		UserID:    userID,
		Mode:      mode,
		Status:    SessionActive,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create session", err)
	}
	return session, nil
}

func (s *sessionService) Get(ctx context.Context, sessionID string) (*models.Session, error) {
	const op = "SessionService.Get"

	if sessionID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "session_id is required", nil)
	}

	out, err := s.sessions.GetBySessionID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "session not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get session", err)
	}
	return out, nil
}

func (s *sessionService) End(ctx context.Context, sessionID, status, conversationID string, stats models.SessionStats) (*models.Session, error) {
	const op = "SessionService.End"

	if sessionID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "session_id is required", nil)
	}
	if status == "" {
		status = SessionEnded
	}

	ss, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	dur := int64(now.Sub(ss.CreatedAt).Seconds())
	if dur < 0 {
		dur = 0
	}

	if err := s.sessions.End(ctx, sessionID, status, conversationID, now, dur, stats); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to end session", err)
	}

	ss.Status = status
	ss.EndedAt = &now
	ss.DurationSeconds = dur
	ss.Stats = stats
	if conversationID != "" {
		ss.ConversationID = conversationID
	}
	return ss, nil
}

func (s *sessionService) ListByConversation(ctx context.Context, userID, conversationID string, limit int64) ([]models.Session, error) {
	const op = "SessionService.ListByConversation"

	if userID == "" || conversationID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id and conversation_id are required", nil)
	}

	rows, err := s.sessions.ListByConversation(ctx, conversationID, limit)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list sessions", err)
	}

	out := rows[:0]
	for _, r := range rows {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}
