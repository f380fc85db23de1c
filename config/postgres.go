package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yoockh/fluentspeak/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var PostgresDB *gorm.DB

// PostgresPool sizes the connection pool. Coach sessions persist their
// dialogue as they end, so a shutdown drain can burst to one writer per
// open session.
type PostgresPool struct {
	MaxOpen       int
	MaxIdle       int
	MaxLifetime   time.Duration
	MaxIdleTime   time.Duration
	SlowThreshold time.Duration
}

func loadPostgresPool() (PostgresPool, error) {
	var p envParser
	pool := PostgresPool{
		MaxOpen:       p.int("POSTGRES_MAX_OPEN_CONNS", 50),
		MaxIdle:       p.int("POSTGRES_MAX_IDLE_CONNS", 10),
		MaxLifetime:   p.duration("POSTGRES_CONN_MAX_LIFETIME", 30*time.Minute),
		MaxIdleTime:   p.duration("POSTGRES_CONN_MAX_IDLE_TIME", 5*time.Minute),
		SlowThreshold: p.duration("POSTGRES_SLOW_QUERY", 500*time.Millisecond),
	}
	p.check(pool.MaxOpen > 0, "POSTGRES_MAX_OPEN_CONNS must be positive")
	p.check(pool.MaxIdle >= 0 && pool.MaxIdle <= pool.MaxOpen, "POSTGRES_MAX_IDLE_CONNS must be within [0, max open]")
	return pool, p.err()
}

// InitPostgres opens the conversation store. Query logs go through log at
// warn level, so only slow queries and errors show up.
func InitPostgres(log *logrus.Logger) error {
	uri := getenv("POSTGRES_URI", "")
	if uri == "" {
		return fmt.Errorf("POSTGRES_URI: %w", ErrNotConfigured)
	}
	pool, err := loadPostgresPool()
	if err != nil {
		return err
	}

	db, err := gorm.Open(postgres.Open(uri), &gorm.Config{
		TranslateError: true,
		Logger: gormlogger.New(log, gormlogger.Config{
			SlowThreshold:             pool.SlowThreshold,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	sqlDB.SetMaxOpenConns(pool.MaxOpen)
	sqlDB.SetMaxIdleConns(pool.MaxIdle)
	sqlDB.SetConnMaxLifetime(pool.MaxLifetime)
	sqlDB.SetConnMaxIdleTime(pool.MaxIdleTime)

	PostgresDB = db
	return nil
}

// MigratePostgres creates or updates the conversation tables.
func MigratePostgres() error {
	if PostgresDB == nil {
		return errors.New("PostgresDB is nil; call InitPostgres() first")
	}
	return PostgresDB.AutoMigrate(&models.Scenario{}, &models.Conversation{}, &models.Message{})
}
