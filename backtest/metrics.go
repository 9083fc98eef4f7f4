package backtest

import (
	"math"

	"sentiment-edge/models"
)

const weeksPerYear = 52.0

// Summarize computes risk/return metrics for an equity curve and its
// weekly return series. The curve includes the leading 1.0 base point,
// so len(curve) == len(returns)+1.
func Summarize(curve []float64, returns []float64) models.SummaryMetrics {
	var m models.SummaryMetrics
	if len(curve) == 0 {
		return m
	}

	final := curve[len(curve)-1]
	m.TotalReturn = final - 1

	if numWeeks := len(returns); numWeeks > 0 && final > 0 {
		m.CAGR = math.Pow(final, weeksPerYear/float64(numWeeks)) - 1
	}

	if len(returns) >= 2 {
		mu := mean(returns)
		sigma := stddev(returns, mu)
		if sigma > 0 {
			s := mu / sigma * math.Sqrt(weeksPerYear)
			m.Sharpe = &s
		}
	}

	m.MaxDrawdown = maxDrawdown(curve)
	return m
}

func mean(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// stddev is the sample standard deviation (n-1 denominator).
func stddev(xs []float64, mu float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	var ss float64
	for _, x := range xs {
		d := x - mu
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)-1))
}

// maxDrawdown is the largest peak-to-trough decline, reported as a
// non-positive fraction (0 for a curve that never falls below a peak).
func maxDrawdown(curve []float64) float64 {
	peak := math.Inf(-1)
	worst := 0.0
	for _, v := range curve {
		if v > peak {
			peak = v
		}
		if peak > 0 {
			dd := v/peak - 1
			if dd < worst {
				worst = dd
			}
		}
	}
	return worst
}
