package services

import (
	"context"
	"time"

	"github.com/yoockh/fluentspeak/internal/models"
	mongorepo "github.com/yoockh/fluentspeak/internal/repositories/mongo"
	"github.com/yoockh/fluentspeak/internal/utils"
)

type TurnLogService interface {
	Record(ctx context.Context, t *models.TurnLog) error
	ListBySession(ctx context.Context, sessionID string, limit int64) ([]models.TurnLog, error)
}

type turnLogService struct {
	logs mongorepo.TurnLogRepository
	ttl  time.Duration
}

func NewTurnLogService(logs mongorepo.TurnLogRepository, ttl time.Duration) TurnLogService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &turnLogService{logs: logs, ttl: ttl}
}

func (s *turnLogService) Record(ctx context.Context, t *models.TurnLog) error {
	const op = "TurnLogService.Record"

	if t == nil || t.SessionID == "" || t.Seq <= 0 {
		return utils.E(utils.CodeInvalidArgument, op, "session_id is required and seq must be > 0", nil)
	}
	if t.STTStatus == "" {
		t.STTStatus = models.StatusSkipped
	}
	if t.LLMStatus == "" {
		t.LLMStatus = models.StatusSkipped
	}

	now := time.Now().UTC()
	if t.Timestamp.IsZero() {
		t.Timestamp = now
	}
	t.ExpiresAt = now.Add(s.ttl)

	if err := s.logs.Insert(ctx, t); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to insert turn log", err)
	}
	return nil
}

func (s *turnLogService) ListBySession(ctx context.Context, sessionID string, limit int64) ([]models.TurnLog, error) {
	const op = "TurnLogService.ListBySession"

	if sessionID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "session_id is required", nil)
	}
	out, err := s.logs.ListBySession(ctx, sessionID, limit)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list turn logs", err)
	}
	return out, nil
}
