// Package reportstore persists terminal workflow runs: the generated
// report text, its quality score, and the control-counter trail a caller
// needs to audit or re-display a past run.
package reportstore

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	pool     *pgxpool.Pool
	initOnce sync.Once
)

// InitDB lazily opens the connection pool from DATABASE_URL. Safe to call
// more than once; only the first call dials.
func InitDB(ctx context.Context) error {
	var err error
	initOnce.Do(func() {
		dbURL := os.Getenv("DATABASE_URL")
		if dbURL == "" {
			err = fmt.Errorf("reportstore: DATABASE_URL environment variable not set")
			return
		}
		config, parseErr := pgxpool.ParseConfig(dbURL)
		if parseErr != nil {
			err = fmt.Errorf("reportstore: failed to parse database config: %w", parseErr)
			return
		}
		pool, err = pgxpool.NewWithConfig(ctx, config)
	})
	return err
}

// GetPool returns the process-wide pool, or nil if InitDB hasn't
// succeeded yet.
func GetPool() *pgxpool.Pool {
	return pool
}

// Close releases the pool. Safe to call even if InitDB was never called.
func Close() {
	if pool != nil {
		pool.Close()
	}
}
