package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"sentiment-edge/models"
	"sentiment-edge/observability"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const backtestRunsSchema = `
CREATE TABLE IF NOT EXISTS backtest_runs (
	id UUID PRIMARY KEY,
	ticker TEXT NOT NULL,
	start_date DATE NOT NULL,
	end_date DATE NOT NULL,
	params JSONB NOT NULL,
	result JSONB,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_backtest_runs_ticker ON backtest_runs (ticker, created_at DESC);
`

// EnsureSchema creates the backtest_runs table if it does not exist.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, backtestRunsSchema); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// CreateBacktestRun persists a completed run, with parameters and result
// stored as JSONB.
func (r *Repository) CreateBacktestRun(ctx context.Context, run *models.BacktestRun) error {
	timer := observability.GetMetrics().NewTimer()

	params, err := json.Marshal(run.Params)
	if err != nil {
		return fmt.Errorf("failed to marshal params: %w", err)
	}
	result, err := json.Marshal(run.Result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO backtest_runs (id, ticker, start_date, end_date, params, result, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, run.ID, run.Ticker, run.Start, run.End, params, result, run.CreatedAt)

	if err != nil {
		observability.GetMetrics().RecordDBError("insert", "backtest_runs")
		return fmt.Errorf("failed to create backtest run: %w", err)
	}

	timer.ObserveDB("insert", "backtest_runs")
	return nil
}

// GetBacktestRun returns a single run by ID, or nil if not found.
func (r *Repository) GetBacktestRun(ctx context.Context, id uuid.UUID) (*models.BacktestRun, error) {
	timer := observability.GetMetrics().NewTimer()

	var run models.BacktestRun
	var params, result []byte
	err := r.db.QueryRow(ctx, `
		SELECT id, ticker, start_date, end_date, params, result, created_at
		FROM backtest_runs WHERE id = $1
	`, id).Scan(&run.ID, &run.Ticker, &run.Start, &run.End, &params, &result, &run.CreatedAt)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		observability.GetMetrics().RecordDBError("select", "backtest_runs")
		return nil, fmt.Errorf("failed to query backtest run: %w", err)
	}

	if err := json.Unmarshal(params, &run.Params); err != nil {
		return nil, fmt.Errorf("failed to unmarshal params: %w", err)
	}
	if len(result) > 0 {
		run.Result = &models.BacktestResult{}
		if err := json.Unmarshal(result, run.Result); err != nil {
			return nil, fmt.Errorf("failed to unmarshal result: %w", err)
		}
	}

	timer.ObserveDB("select", "backtest_runs")
	return &run, nil
}

// ListBacktestRuns returns recent runs without their result payloads,
// newest first. An empty ticker matches all tickers.
func (r *Repository) ListBacktestRuns(ctx context.Context, ticker string, limit int) ([]models.BacktestRun, error) {
	if limit <= 0 {
		limit = 50
	}
	timer := observability.GetMetrics().NewTimer()

	rows, err := r.db.Query(ctx, `
		SELECT id, ticker, start_date, end_date, params, created_at
		FROM backtest_runs
		WHERE $1 = '' OR ticker = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, ticker, limit)
	if err != nil {
		observability.GetMetrics().RecordDBError("select", "backtest_runs")
		return nil, fmt.Errorf("failed to query backtest runs: %w", err)
	}
	defer rows.Close()

	var runs []models.BacktestRun
	for rows.Next() {
		var run models.BacktestRun
		var params []byte
		if err := rows.Scan(&run.ID, &run.Ticker, &run.Start, &run.End, &params, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan backtest run: %w", err)
		}
		if err := json.Unmarshal(params, &run.Params); err != nil {
			return nil, fmt.Errorf("failed to unmarshal params: %w", err)
		}
		runs = append(runs, run)
	}

	timer.ObserveDB("select", "backtest_runs")
	return runs, nil
}
