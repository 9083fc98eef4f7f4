// Package pricing resamples daily price bars into the weekly series the
// signal engine consumes: week-ending-Friday closes, a trailing moving
// average, and the extension of price above or below it.
package pricing

import (
	"fmt"
	"sort"
	"time"

	"sentiment-edge/models"
)

// DefaultWindow is the moving average lookback in resampled weeks.
const DefaultWindow = 21

// WeekEndFriday returns the Friday ending the week that contains d,
// normalized to midnight UTC. Saturday and Sunday roll forward to the
// next week's Friday, matching a week-ending-Friday resample.
func WeekEndFriday(d time.Time) time.Time {
	u := d.UTC()
	days := (int(time.Friday) - int(u.Weekday()) + 7) % 7
	f := u.AddDate(0, 0, days)
	return time.Date(f.Year(), f.Month(), f.Day(), 0, 0, 0, 0, time.UTC)
}

// BuildWeeklySeries resamples daily bars to weekly closes and computes the
// trailing simple moving average and extension. The weekly close is the
// last trading day's close at or before each week-ending Friday; weeks
// with no trading day are omitted rather than fabricated. MovingAverage
// and Extension are nil for the first window-1 weeks.
//
// Returns ErrInsufficientData (wrapped) when no weekly point can be
// produced. Fewer than window points is not an error; the early points
// simply carry nil indicator fields.
func BuildWeeklySeries(bars []models.PriceBar, window int) ([]models.WeeklyPricePoint, error) {
	if window <= 0 {
		window = DefaultWindow
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("no price bars: %w", models.ErrInsufficientData)
	}

	sorted := make([]models.PriceBar, len(bars))
	copy(sorted, bars)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	// Last close at or before each Friday wins; bars are date-ordered so a
	// plain overwrite per bucket does it.
	points := make([]models.WeeklyPricePoint, 0, len(sorted)/5+1)
	for _, bar := range sorted {
		weekEnd := WeekEndFriday(bar.Date)
		close := bar.Close.InexactFloat64()
		if n := len(points); n > 0 && points[n-1].WeekEnd.Equal(weekEnd) {
			points[n-1].Close = close
			continue
		}
		points = append(points, models.WeeklyPricePoint{WeekEnd: weekEnd, Close: close})
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("no weekly points: %w", models.ErrInsufficientData)
	}

	var sum float64
	for i := range points {
		sum += points[i].Close
		if i >= window {
			sum -= points[i-window].Close
		}
		if i >= window-1 {
			ma := sum / float64(window)
			ext := points[i].Close/ma - 1
			points[i].MovingAverage = &ma
			points[i].Extension = &ext
		}
	}

	return points, nil
}

// WeeklyReturns computes close-to-close returns for the series. The first
// week has no prior close and carries a zero return.
func WeeklyReturns(series []models.WeeklyPricePoint) []models.WeeklyReturn {
	rets := make([]models.WeeklyReturn, len(series))
	for i, p := range series {
		rets[i] = models.WeeklyReturn{WeekEnd: p.WeekEnd}
		if i > 0 && series[i-1].Close != 0 {
			rets[i].Return = p.Close/series[i-1].Close - 1
		}
	}
	return rets
}

// TrimBefore drops weekly points ending before start. Callers fetch extra
// history ahead of the requested range so the moving average is already
// defined at the first kept week, then trim the warm-up here.
func TrimBefore(series []models.WeeklyPricePoint, start time.Time) []models.WeeklyPricePoint {
	cut := start.UTC()
	i := sort.Search(len(series), func(i int) bool {
		return !series[i].WeekEnd.Before(cut)
	})
	return series[i:]
}
