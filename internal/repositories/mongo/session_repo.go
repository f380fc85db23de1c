package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/yoockh/fluentspeak/internal/models"
	"github.com/yoockh/fluentspeak/internal/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type SessionRepository interface {
	Create(ctx context.Context, s *models.Session) error
	GetBySessionID(ctx context.Context, sessionID string) (*models.Session, error)
	End(ctx context.Context, sessionID, status, conversationID string, endedAt time.Time, durationSeconds int64, stats models.SessionStats) error
	ListByConversation(ctx context.Context, conversationID string, limit int64) ([]models.Session, error)
}

type sessionRepo struct {
	col *mongo.Collection
}

func NewSessionRepo(db *mongo.Database) SessionRepository {
	return &sessionRepo{col: db.Collection("sessions")}
}

func (r *sessionRepo) Create(ctx context.Context, s *models.Session) error {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	_, err := r.col.InsertOne(ctx, s)
	return err
}

func (r *sessionRepo) GetBySessionID(ctx context.Context, sessionID string) (*models.Session, error) {
	var s models.Session
	err := r.col.FindOne(ctx, bson.M{"session_id": sessionID}).Decode(&s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	return &s, err
}

func (r *sessionRepo) End(ctx context.Context, sessionID, status, conversationID string, endedAt time.Time, durationSeconds int64, stats models.SessionStats) error {
	set := bson.M{
		"status":           status,
		"ended_at":         endedAt.UTC(),
		"duration_seconds": durationSeconds,
		"stats":            stats,
	}
	if conversationID != "" {
		set["conversation_id"] = conversationID
	}
	_, err := r.col.UpdateOne(ctx, bson.M{"session_id": sessionID}, bson.M{"$set": set})
	return err
}

func (r *sessionRepo) ListByConversation(ctx context.Context, conversationID string, limit int64) ([]models.Session, error) {
	if limit <= 0 {
		limit = 50
	}

	cur, err := r.col.Find(ctx,
		bson.M{"conversation_id": conversationID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Session
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
