package database

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/kbukum/errkit/logger"
	"github.com/kbukum/errkit/observability"
)

// DB wraps a *sql.DB with errkit logging and lifecycle.
type DB struct {
	SQL    *sql.DB
	log    *logger.Logger
	cfg    Config
	closed bool
	mu     sync.Mutex
}

// Open connects with retry logic and connection pooling. The context allows
// cancellation of connection attempts during retries.
func Open(ctx context.Context, cfg Config, log *logger.Logger) (*DB, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("database config: %w", err)
	}
	log = log.WithComponent("database")

	var err error
	for attempt := 1; attempt <= cfg.MaxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("database connection canceled: %w", ctx.Err())
		}

		var sqlDB *sql.DB
		sqlDB, err = sql.Open("sqlite", cfg.dsn())
		if err == nil {
			if err = sqlDB.PingContext(ctx); err == nil {
				sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
				sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
				if lifetime, parseErr := time.ParseDuration(cfg.ConnMaxLifetime); parseErr == nil {
					sqlDB.SetConnMaxLifetime(lifetime)
				}

				log.Info("Database connection established", map[string]interface{}{
					"path":    cfg.Path,
					"attempt": attempt,
				})
				return &DB{SQL: sqlDB, log: log, cfg: cfg}, nil
			}
			_ = sqlDB.Close()
		}

		if attempt < cfg.MaxRetries {
			backoff := time.Duration(attempt) * 200 * time.Millisecond
			log.Warn("Database connection attempt failed, retrying", map[string]interface{}{
				"attempt": attempt,
				"error":   err.Error(),
				"backoff": backoff.String(),
			})
			if waitErr := contextSleep(ctx, backoff); waitErr != nil {
				return nil, fmt.Errorf("database connection canceled during retry: %w", waitErr)
			}
		}
	}

	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", cfg.MaxRetries, err)
}

func contextSleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Name identifies the database as a lifecycle component.
func (d *DB) Name() string { return "database" }

// Start verifies the connection. The pool is opened by Open.
func (d *DB) Start(ctx context.Context) error {
	return d.PingContext(ctx)
}

// Stop closes the pool.
func (d *DB) Stop(context.Context) error {
	return d.Close()
}

// Close closes the underlying sql.DB connection pool. Safe to call multiple times.
func (d *DB) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}
	d.log.Info("Closing database connection")
	d.closed = true
	return d.SQL.Close()
}

// PingContext verifies the database connection is alive.
func (d *DB) PingContext(ctx context.Context) error {
	return d.SQL.PingContext(ctx)
}

// CheckHealth reports the database as down when it cannot be pinged.
func (d *DB) CheckHealth(ctx context.Context) observability.Health {
	h := observability.Health{Name: d.Name(), Status: observability.HealthStatusUp}
	if err := d.PingContext(ctx); err != nil {
		h.Status = observability.HealthStatusDown
		h.Message = err.Error()
	}
	return h
}

// TxFunc runs within a transaction.
type TxFunc func(tx *sql.Tx) error

// WithTransaction executes fn within a transaction with panic recovery.
// The transaction commits when fn returns nil and rolls back otherwise.
func (d *DB) WithTransaction(ctx context.Context, fn TxFunc) error {
	tx, err := d.SQL.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback()
			d.log.Error("Transaction rolled back due to panic", map[string]interface{}{
				"panic": fmt.Sprintf("%v", r),
			})
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction failed: %w, rollback failed: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
