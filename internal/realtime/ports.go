package realtime

import (
	"context"
	"time"

	"github.com/yoockh/fluentspeak/internal/models"
)

type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

type Suggester interface {
	Suggest(ctx context.Context, transcript string) (models.SuggestionSet, error)
}

type Replier interface {
	GenerateReply(ctx context.Context, scenario *models.Scenario, history []models.DialogueTurn) (string, error)
}

// ConversationStore is the durable home of coach dialogue.
type ConversationStore interface {
	Get(ctx context.Context, conversationID string) (*models.Conversation, error)
	// AppendMessage must be idempotent in messageID.
	AppendMessage(ctx context.Context, conversationID, messageID string, source models.MessageSource, content string, sentAt time.Time) (*models.Message, error)
}

// SessionAudit records connection start and end. Optional.
type SessionAudit interface {
	Start(ctx context.Context, sessionID, userID string, mode models.SessionMode) (*models.Session, error)
	End(ctx context.Context, sessionID, status, conversationID string, stats models.SessionStats) (*models.Session, error)
}

// TurnRecorder stores the analysis trace of each turn. Optional.
type TurnRecorder interface {
	Record(ctx context.Context, t *models.TurnLog) error
}

// Archiver exports a persisted coach transcript. Optional.
type Archiver interface {
	Archive(ctx context.Context, conversationID, sessionID string, turns []models.DialogueTurn) (string, error)
}
