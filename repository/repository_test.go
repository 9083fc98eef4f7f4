package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"sentiment-edge/models"

	"github.com/google/uuid"
)

// getTestDB returns a repository connected to the test database.
// If DATABASE_URL is not set, the test is skipped.
func getTestDB(t *testing.T) *Repository {
	t.Helper()

	connString := os.Getenv("DATABASE_URL")
	if connString == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	repo, err := NewRepository(ctx, connString)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}
	if err := repo.EnsureSchema(ctx); err != nil {
		t.Fatalf("failed to ensure schema: %v", err)
	}

	return repo
}

func cleanupRuns(t *testing.T, repo *Repository) {
	t.Helper()
	repo.pool.Exec(context.Background(), "DELETE FROM backtest_runs WHERE ticker LIKE 'TEST%'")
}

func testRun() *models.BacktestRun {
	sharpe := 1.3
	return &models.BacktestRun{
		ID:     uuid.New(),
		Ticker: "TESTACME",
		Start:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:    time.Date(2024, 6, 28, 0, 0, 0, 0, time.UTC),
		Params: models.RunParams{
			EntryExtThr:         -0.07,
			NegThr:              -0.05,
			ExitExtThr:          0.12,
			PosThr:              0.05,
			MinHeadlines:        3,
			MovingAverageWindow: 21,
			BenchmarkTicker:     "SPY",
		},
		Result: &models.BacktestResult{
			Weeks:           []time.Time{time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)},
			Positions:       []models.Position{models.Flat},
			StrategyReturns: []float64{0},
			EquityCurve:     []float64{1.0, 1.0},
			BenchmarkCurve:  []float64{1.0, 1.01},
			Metrics:         models.SummaryMetrics{Sharpe: &sharpe},
		},
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
}

func TestCreateAndGetBacktestRun(t *testing.T) {
	repo := getTestDB(t)
	defer repo.Close()
	defer cleanupRuns(t, repo)

	ctx := context.Background()
	run := testRun()

	if err := repo.CreateBacktestRun(ctx, run); err != nil {
		t.Fatalf("failed to create run: %v", err)
	}

	got, err := repo.GetBacktestRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("failed to get run: %v", err)
	}
	if got == nil {
		t.Fatal("run not found after create")
	}
	if got.Ticker != run.Ticker {
		t.Errorf("Ticker = %v, want %v", got.Ticker, run.Ticker)
	}
	if got.Params != run.Params {
		t.Errorf("Params = %+v, want %+v", got.Params, run.Params)
	}
	if got.Result == nil || len(got.Result.EquityCurve) != 2 {
		t.Errorf("Result not round-tripped: %+v", got.Result)
	}
	if got.Result.Metrics.Sharpe == nil || *got.Result.Metrics.Sharpe != 1.3 {
		t.Errorf("Sharpe not round-tripped: %+v", got.Result.Metrics)
	}
}

func TestGetBacktestRun_NotFound(t *testing.T) {
	repo := getTestDB(t)
	defer repo.Close()

	got, err := repo.GetBacktestRun(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for unknown id, got %+v", got)
	}
}

func TestListBacktestRuns(t *testing.T) {
	repo := getTestDB(t)
	defer repo.Close()
	defer cleanupRuns(t, repo)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		run := testRun()
		run.ID = uuid.New()
		if i == 2 {
			run.Ticker = "TESTOTHER"
		}
		if err := repo.CreateBacktestRun(ctx, run); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}
	}

	runs, err := repo.ListBacktestRuns(ctx, "TESTACME", 10)
	if err != nil {
		t.Fatalf("failed to list runs: %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("got %d runs for TESTACME, want 2", len(runs))
	}
	for _, run := range runs {
		if run.Result != nil {
			t.Error("list should not include result payloads")
		}
	}

	limited, err := repo.ListBacktestRuns(ctx, "", 1)
	if err != nil {
		t.Fatalf("failed to list runs: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("got %d runs with limit 1, want 1", len(limited))
	}
}
