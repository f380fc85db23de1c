package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TurnLog is the analysis trace of one processed segment or utterance.
// It never carries audio.
type TurnLog struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SessionID string             `bson:"session_id" json:"session_id"`
	Seq       int64              `bson:"seq" json:"seq"`
	Mode      SessionMode        `bson:"mode" json:"mode"`

	AudioBytes int    `bson:"audio_bytes" json:"audio_bytes"`
	Transcript string `bson:"transcript,omitempty" json:"transcript,omitempty"`
	STTStatus  string `bson:"stt_status" json:"stt_status"` // skipped|done|failed

	Silences    int      `bson:"silences" json:"silences"`
	Stutter     bool     `bson:"stutter" json:"stutter"`
	Suggestions []string `bson:"suggestions,omitempty" json:"suggestions,omitempty"`
	Reply       string   `bson:"reply,omitempty" json:"reply,omitempty"`
	LLMStatus   string   `bson:"llm_status" json:"llm_status"` // skipped|done|failed

	ProcessingTimeMS int64     `bson:"processing_time_ms,omitempty" json:"processing_time_ms,omitempty"`
	Timestamp        time.Time `bson:"timestamp" json:"timestamp"`

	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"` // for TTL index
}

const (
	StatusSkipped = "skipped"
	StatusDone    = "done"
	StatusFailed  = "failed"
)
