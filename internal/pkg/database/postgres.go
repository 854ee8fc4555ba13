package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/Pesokrava/coffee_catalog/internal/config"
	"github.com/Pesokrava/coffee_catalog/internal/pkg/logger"
)

// NewPostgresDB creates a new PostgreSQL connection pool and verifies it
func NewPostgresDB(ctx context.Context, cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	return db, nil
}

// WaitForDB retries NewPostgresDB until it succeeds, retries run out or ctx is done
func WaitForDB(ctx context.Context, cfg *config.Config, maxRetries int, retryDelay time.Duration, log *logger.Logger) (*sqlx.DB, error) {
	var err error

	for i := 0; i < maxRetries; i++ {
		var db *sqlx.DB
		db, err = NewPostgresDB(ctx, cfg)
		if err == nil {
			return db, nil
		}

		log.Warnf("Database not ready (attempt %d/%d): %v", i+1, maxRetries, err)

		if i < maxRetries-1 {
			select {
			case <-time.After(retryDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}

	return nil, fmt.Errorf("failed to connect to database after %d retries: %w", maxRetries, err)
}
