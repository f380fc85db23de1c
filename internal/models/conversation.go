package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// MessageSource tags who produced a persisted message.
type MessageSource string

const (
	SourceUser MessageSource = "USER"
	SourceBot  MessageSource = "BOT"
)

func (s MessageSource) Valid() bool { return s == SourceUser || s == SourceBot }

type Conversation struct {
	ID         string         `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID     string         `gorm:"column:user_id;type:uuid;index" json:"user_id"`
	ScenarioID *string        `gorm:"column:scenario_id;type:uuid" json:"scenario_id,omitempty"`
	Metadata   datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata,omitempty"`
	CreatedAt  time.Time      `gorm:"column:created_at;type:timestamptz" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"column:updated_at;type:timestamptz" json:"updated_at"`

	Scenario *Scenario `gorm:"foreignKey:ScenarioID" json:"scenario,omitempty"`
}

func (Conversation) TableName() string { return "conversations" }

// Message rows are append-only. Seq is assigned by the database and breaks
// ties between messages with the same sent_at.
type Message struct {
	ID             string        `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Seq            int64         `gorm:"column:seq;autoIncrement;not null" json:"seq"`
	ConversationID string        `gorm:"column:conversation_id;type:uuid;index" json:"conversation_id"`
	Source         MessageSource `gorm:"column:source;type:text" json:"source"`
	Content        string        `gorm:"column:content;type:text" json:"content"`
	SentAt         time.Time     `gorm:"column:sent_at;type:timestamptz;index" json:"sent_at"`
}

func (Message) TableName() string { return "messages" }

type Scenario struct {
	ID          string         `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Title       string         `gorm:"column:title;type:text" json:"title"`
	Description string         `gorm:"column:description;type:text" json:"description"`
	Tags        pq.StringArray `gorm:"column:tags;type:text[]" json:"tags"`
}

func (Scenario) TableName() string { return "scenarios" }
