package mongo

import (
	"context"
	"time"

	"github.com/yoockh/fluentspeak/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type TurnLogRepository interface {
	Insert(ctx context.Context, t *models.TurnLog) error
	ListBySession(ctx context.Context, sessionID string, limit int64) ([]models.TurnLog, error)
}

type turnLogRepo struct {
	col *mongo.Collection
}

func NewTurnLogRepo(db *mongo.Database) TurnLogRepository {
	return &turnLogRepo{col: db.Collection("turn_logs")}
}

func (r *turnLogRepo) Insert(ctx context.Context, t *models.TurnLog) error {
	if t.Timestamp.IsZero() {
		t.Timestamp = time.Now().UTC()
	}
	_, err := r.col.InsertOne(ctx, t)
	return err
}

func (r *turnLogRepo) ListBySession(ctx context.Context, sessionID string, limit int64) ([]models.TurnLog, error) {
	if limit <= 0 {
		limit = 200
	}

	cur, err := r.col.Find(ctx,
		bson.M{"session_id": sessionID},
		options.Find().SetSort(bson.D{{Key: "seq", Value: 1}}).SetLimit(limit),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.TurnLog
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
