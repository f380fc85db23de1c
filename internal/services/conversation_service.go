package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/yoockh/fluentspeak/internal/models"
	pgrepo "github.com/yoockh/fluentspeak/internal/repositories/postgres"
	"github.com/yoockh/fluentspeak/internal/utils"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ConversationService interface {
	Create(ctx context.Context, userID string, scenarioID *string, metadataJSON []byte) (*models.Conversation, error)
	Get(ctx context.Context, conversationID string) (*models.Conversation, error)
	AppendMessage(ctx context.Context, conversationID, messageID string, source models.MessageSource, content string, sentAt time.Time) (*models.Message, error)
	ListMessages(ctx context.Context, userID, conversationID string, limit int) ([]models.Message, error)
}

type conversationService struct {
	convos    pgrepo.ConversationRepo
	scenarios pgrepo.ScenarioRepository
}

func NewConversationService(convos pgrepo.ConversationRepo, scenarios pgrepo.ScenarioRepository) ConversationService {
	return &conversationService{convos: convos, scenarios: scenarios}
}

func (s *conversationService) Create(ctx context.Context, userID string, scenarioID *string, metadataJSON []byte) (*models.Conversation, error) {
	const op = "ConversationService.Create"

	if userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}

	if scenarioID != nil && *scenarioID != "" {
		if _, err := uuid.Parse(*scenarioID); err != nil {
			return nil, utils.E(utils.CodeInvalidArgument, op, "scenario_id must be a uuid", err)
		}
		if _, err := s.scenarios.GetByID(ctx, *scenarioID); err != nil {
			if errors.Is(err, utils.ErrNotFound) {
				return nil, utils.E(utils.CodeInvalidArgument, op, "scenario does not exist", err)
			}
			return nil, utils.E(utils.CodeInternal, op, "failed to look up scenario", err)
		}
	} else {
		scenarioID = nil
	}

	now := time.Now().UTC()
	row := &models.Conversation{
		ID:         uuid.NewString(),
		UserID:     userID,
		ScenarioID: scenarioID,
		Metadata:   datatypes.JSON(metadataJSON),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.convos.Create(ctx, row); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create conversation", err)
	}
	return row, nil
}

func (s *conversationService) Get(ctx context.Context, conversationID string) (*models.Conversation, error) {
	const op = "ConversationService.Get"

	conversationID = strings.TrimSpace(conversationID)
	if _, err := uuid.Parse(conversationID); err != nil {
		return nil, utils.E(utils.CodeInvalidArgument, op, "conversation id must be a uuid", err)
	}

	c, err := s.convos.GetByID(ctx, conversationID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "conversation not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get conversation", err)
	}
	return c, nil
}

// AppendMessage stores one dialogue turn. A zero sentAt means now and an
// empty messageID gets a fresh one. Appending an id that is already stored
// does nothing, so a caller may retry after an ambiguous failure.
func (s *conversationService) AppendMessage(ctx context.Context, conversationID, messageID string, source models.MessageSource, content string, sentAt time.Time) (*models.Message, error) {
	const op = "ConversationService.AppendMessage"

	if conversationID == "" || content == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "conversation_id and content are required", nil)
	}
	if !source.Valid() {
		return nil, utils.E(utils.CodeInvalidArgument, op, "source must be USER or BOT", nil)
	}
	if messageID == "" {
		messageID = uuid.NewString()
	} else if _, err := uuid.Parse(messageID); err != nil {
		return nil, utils.E(utils.CodeInvalidArgument, op, "message id must be a uuid", err)
	}
	if sentAt.IsZero() {
		sentAt = time.Now()
	}

	m := &models.Message{
		ID:             messageID,
		ConversationID: conversationID,
		Source:         source,
		Content:        content,
		SentAt:         sentAt.UTC(),
	}
	if err := s.convos.AppendMessage(ctx, m); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "conversation not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to append message", err)
	}
	return m, nil
}

func (s *conversationService) ListMessages(ctx context.Context, userID, conversationID string, limit int) ([]models.Message, error) {
	const op = "ConversationService.ListMessages"

	if userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}

	c, err := s.Get(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if c.UserID != userID {
		return nil, utils.E(utils.CodeForbidden, op, "conversation belongs to another user", nil)
	}

	rows, err := s.convos.ListMessages(ctx, c.ID, limit)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list messages", err)
	}
	return rows, nil
}
