package config

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

var MongoClient *mongo.Client

type MongoOptions struct {
	URI            string
	Database       string
	MaxPoolSize    uint64
	ConnectTimeout time.Duration
}

func loadMongoOptions() (MongoOptions, error) {
	var p envParser
	o := MongoOptions{
		URI:            getenv("MONGO_URI", ""),
		Database:       getenv("MONGO_DB", "fluentspeak"),
		ConnectTimeout: p.duration("MONGO_CONNECT_TIMEOUT", 15*time.Second),
	}
	pool := p.int("MONGO_MAX_POOL_SIZE", 20)
	p.check(pool > 0, "MONGO_MAX_POOL_SIZE must be positive")
	if pool > 0 {
		o.MaxPoolSize = uint64(pool)
	}
	return o, p.err()
}

// InitMongo connects to MongoDB. It returns ErrNotConfigured when MONGO_URI
// is unset; session audit and turn logs are then disabled.
func InitMongo() error {
	o, err := loadMongoOptions()
	if err != nil {
		return err
	}
	if o.URI == "" {
		return fmt.Errorf("MONGO_URI: %w", ErrNotConfigured)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*o.ConnectTimeout)
	defer cancel()

	// audit rows are best-effort; acknowledge on the primary only
	clientOpts := options.Client().ApplyURI(o.URI).
		SetAppName("fluentspeak").
		SetConnectTimeout(o.ConnectTimeout).
		SetServerSelectionTimeout(o.ConnectTimeout).
		SetMaxPoolSize(o.MaxPoolSize).
		SetRetryWrites(true).
		SetWriteConcern(writeconcern.W1())

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return err
	}

	MongoClient = client
	return nil
}

// MongoDatabase returns the application database named by MONGO_DB.
func MongoDatabase() *mongo.Database {
	return MongoClient.Database(getenv("MONGO_DB", "fluentspeak"))
}
