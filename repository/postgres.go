// Package repository persists backtest runs in PostgreSQL.
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is the executor interface satisfied by both *pgxpool.Pool and
// pgx.Tx, so query methods do not care which one they run against.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository provides database access for stored backtest runs.
type Repository struct {
	pool *pgxpool.Pool
	db   DBTX
}

// NewRepository opens a connection pool and verifies it with a ping.
// Runs are written once and read rarely, so the pool is kept small.
func NewRepository(ctx context.Context, connString string) (*Repository, error) {
	poolCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("invalid database url: %w", err)
	}
	poolCfg.MaxConns = 4
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return &Repository{pool: pool, db: pool}, nil
}

// Close closes the connection pool.
func (r *Repository) Close() {
	if r.pool != nil {
		r.pool.Close()
	}
}

// Health reports whether the database is reachable.
func (r *Repository) Health(ctx context.Context) error {
	return r.pool.Ping(ctx)
}
