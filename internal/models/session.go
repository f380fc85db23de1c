package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SessionMode string

const (
	ModeAssistant SessionMode = "assistant"
	ModeCoach     SessionMode = "coach"
)

// Session is the audit record of one realtime websocket connection.
type Session struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SessionID      string             `bson:"session_id" json:"session_id"` // uuid v4
	UserID         string             `bson:"user_id,omitempty" json:"user_id,omitempty"`
	Mode           SessionMode        `bson:"mode" json:"mode"`
	ConversationID string             `bson:"conversation_id,omitempty" json:"conversation_id,omitempty"`
	Status         string             `bson:"status" json:"status"` // active|ended|failed

	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	EndedAt   *time.Time `bson:"ended_at,omitempty" json:"ended_at,omitempty"`

	DurationSeconds int64        `bson:"duration_seconds" json:"duration_seconds"`
	Stats           SessionStats `bson:"stats" json:"stats"`
}

type SessionStats struct {
	BytesReceived  int64 `bson:"bytes_received" json:"bytes_received"`
	Segments       int   `bson:"segments" json:"segments"`
	Stutters       int   `bson:"stutters" json:"stutters"`
	Suggestions    int   `bson:"suggestions" json:"suggestions"`
	Turns          int   `bson:"turns" json:"turns"`
	PersistedTurns int   `bson:"persisted_turns" json:"persisted_turns"`
	FailedTurns    int   `bson:"failed_turns" json:"failed_turns"`
	ExternalErrors int   `bson:"external_errors" json:"external_errors"`
}
