package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/yoockh/fluentspeak/internal/models"
	"github.com/yoockh/fluentspeak/internal/storage"
	"github.com/yoockh/fluentspeak/internal/utils"
)

// TranscriptArchive exports a finished coach session as a JSON object.
type TranscriptArchive interface {
	Archive(ctx context.Context, conversationID, sessionID string, turns []models.DialogueTurn) (string, error)
}

type transcriptArchive struct {
	up storage.Uploader
}

func NewTranscriptArchive(up storage.Uploader) TranscriptArchive {
	return &transcriptArchive{up: up}
}

type archivedTranscript struct {
	ConversationID string                `json:"conversation_id"`
	SessionID      string                `json:"session_id"`
	ArchivedAt     time.Time             `json:"archived_at"`
	Turns          []models.DialogueTurn `json:"turns"`
}

func (a *transcriptArchive) Archive(ctx context.Context, conversationID, sessionID string, turns []models.DialogueTurn) (string, error) {
	const op = "TranscriptArchive.Archive"

	if conversationID == "" || sessionID == "" {
		return "", utils.E(utils.CodeInvalidArgument, op, "conversation_id and session_id are required", nil)
	}
	if len(turns) == 0 {
		return "", nil
	}

	b, err := json.Marshal(archivedTranscript{
		ConversationID: conversationID,
		SessionID:      sessionID,
		ArchivedAt:     time.Now().UTC(),
		Turns:          turns,
	})
	if err != nil {
		return "", utils.E(utils.CodeInternal, op, "failed to encode transcript", err)
	}

	path, err := a.up.Upload(ctx, storage.Object{
		Name:        ArchiveObjectName(conversationID, sessionID),
		ContentType: "application/json",
		Metadata: map[string]string{
			"conversation_id": conversationID,
			"session_id":      sessionID,
			"turns":           strconv.Itoa(len(turns)),
		},
	}, bytes.NewReader(b))
	switch {
	case errors.Is(err, storage.ErrExists):
		return "", utils.E(utils.CodeConflict, op, "transcript already archived", err)
	case err != nil:
		return "", utils.E(utils.CodeUnavailable, op, "failed to upload transcript", err)
	}
	return path, nil
}

func ArchiveObjectName(conversationID, sessionID string) string {
	return fmt.Sprintf("conversations/%s/%s.json", conversationID, sessionID)
}
