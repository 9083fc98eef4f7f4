// Package backtest turns a position series and weekly returns into an
// equity curve with transaction costs, plus summary metrics.
package backtest

import (
	"fmt"
	"time"

	"sentiment-edge/models"
)

// Run applies the position series to the asset's weekly returns and
// produces the strategy and benchmark equity curves. All three input
// series must share the same week-ending date grid; any mismatch is an
// error rather than a silent partial result.
//
// The return earned in week t is the position held coming into week t
// times the asset return over week t. A position change costs
// costBps/10000 against that week's return, charged once per flip.
func Run(positions []models.PositionPoint, assetReturns, benchReturns []models.WeeklyReturn, costBps float64) (*models.BacktestResult, error) {
	n := len(positions)
	if len(assetReturns) != n || len(benchReturns) != n {
		return nil, fmt.Errorf("%w: %d positions, %d asset returns, %d benchmark returns",
			models.ErrMisalignedSeries, n, len(assetReturns), len(benchReturns))
	}
	for i := 0; i < n; i++ {
		if !positions[i].WeekEnd.Equal(assetReturns[i].WeekEnd) {
			return nil, fmt.Errorf("%w: week %d: position %s vs asset return %s",
				models.ErrMisalignedSeries, i,
				positions[i].WeekEnd.Format("2006-01-02"), assetReturns[i].WeekEnd.Format("2006-01-02"))
		}
		if !positions[i].WeekEnd.Equal(benchReturns[i].WeekEnd) {
			return nil, fmt.Errorf("%w: week %d: position %s vs benchmark return %s",
				models.ErrMisalignedSeries, i,
				positions[i].WeekEnd.Format("2006-01-02"), benchReturns[i].WeekEnd.Format("2006-01-02"))
		}
	}

	costRate := costBps / 1e4

	result := &models.BacktestResult{
		Weeks:           make([]time.Time, 0, n),
		Positions:       make([]models.Position, n),
		StrategyReturns: make([]float64, n),
		EquityCurve:     make([]float64, n+1),
		BenchmarkCurve:  make([]float64, n+1),
	}

	result.EquityCurve[0] = 1.0
	result.BenchmarkCurve[0] = 1.0

	prev := models.Flat
	for i := 0; i < n; i++ {
		result.Weeks = append(result.Weeks, positions[i].WeekEnd)
		result.Positions[i] = positions[i].Position

		ret := float64(prev) * assetReturns[i].Return
		if positions[i].Position != prev {
			ret -= costRate
		}
		result.StrategyReturns[i] = ret
		result.EquityCurve[i+1] = result.EquityCurve[i] * (1 + ret)
		result.BenchmarkCurve[i+1] = result.BenchmarkCurve[i] * (1 + benchReturns[i].Return)

		prev = positions[i].Position
	}

	benchRets := make([]float64, n)
	for i, r := range benchReturns {
		benchRets[i] = r.Return
	}
	result.Metrics = Summarize(result.EquityCurve, result.StrategyReturns)
	result.BenchmarkMetrics = Summarize(result.BenchmarkCurve, benchRets)

	return result, nil
}
