package models

import (
	"time"

	"github.com/google/uuid"
)

// RunParams are the strategy and cost parameters for a single backtest
// run. They are passed explicitly into each pipeline stage; there is no
// ambient/global configuration.
type RunParams struct {
	EntryExtThr         float64 `json:"entry_ext_thr"`
	NegThr              float64 `json:"neg_thr"`
	ExitExtThr          float64 `json:"exit_ext_thr"`
	PosThr              float64 `json:"pos_thr"`
	MinHeadlines        int     `json:"min_headlines"`
	MovingAverageWindow int     `json:"moving_average_window"`
	CostBps             float64 `json:"cost_bps"`
	BenchmarkTicker     string  `json:"benchmark_ticker"`
}

// SummaryMetrics are the risk/return metrics for an equity curve.
// Sharpe is nil (not NaN, not zero) when the weekly return stdev is zero
// or there are fewer than two return observations.
type SummaryMetrics struct {
	TotalReturn float64  `json:"total_return"`
	CAGR        float64  `json:"cagr"`
	Sharpe      *float64 `json:"sharpe,omitempty"`
	MaxDrawdown float64  `json:"max_drawdown"`
}

// BacktestResult is the output of the backtest engine. The curves carry
// one point per week plus a leading 1.0 base point, so len(curve) ==
// len(Weeks)+1 and curve[0] is always exactly 1.0.
type BacktestResult struct {
	Weeks            []time.Time    `json:"weeks"`
	Positions        []Position     `json:"positions"`
	StrategyReturns  []float64      `json:"strategy_returns"`
	EquityCurve      []float64      `json:"equity_curve"`
	BenchmarkCurve   []float64      `json:"benchmark_curve"`
	Metrics          SummaryMetrics `json:"metrics"`
	BenchmarkMetrics SummaryMetrics `json:"benchmark_metrics"`
}

// BacktestRun is a persisted backtest invocation: the request, the
// parameters it ran with, and its result.
type BacktestRun struct {
	ID        uuid.UUID       `json:"id"`
	Ticker    string          `json:"ticker"`
	Start     time.Time       `json:"start"`
	End       time.Time       `json:"end"`
	Params    RunParams       `json:"params"`
	Result    *BacktestResult `json:"result,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}
