// Package archive persists reconciliation by-products the dashboard itself
// never stored: one audit row per successful tick, and optionally the raw
// snapshot JSON for replay. Both sinks are optional and best-effort; a sink
// failure never fails a tick.
package archive

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"golang.org/x/sync/semaphore"

	"github.com/pos-suite/backend-go/internal/config"
)

// DB wraps the archive connection pool with a weighted semaphore so a slow
// archive database cannot soak up unbounded goroutines from the poller.
type DB struct {
	*sqlx.DB
	sem *semaphore.Weighted
}

// NewDB opens the archive database pool.
func NewDB(cfg config.ArchiveConfig) (*DB, error) {
	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	db, err := sqlx.Connect("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("connect archive db: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &DB{
		DB:  db,
		sem: semaphore.NewWeighted(4),
	}, nil
}

// exec runs one statement under the semaphore.
func (db *DB) exec(ctx context.Context, query string, args ...any) error {
	if err := db.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("could not acquire semaphore: %w", err)
	}
	defer db.sem.Release(1)

	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("archive exec failed: %w", err)
	}
	return nil
}
