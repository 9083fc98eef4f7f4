package sentiment

import (
	"sort"
	"time"

	"sentiment-edge/models"
)

// Cutover is the Friday after-hours rule for attributing headlines to
// sentiment weeks: news published on a Friday at or after the cutover in
// the exchange's local time cannot move markets until the next session,
// so it belongs to the following week.
type Cutover struct {
	Hour     int
	Minute   int
	Location *time.Location
}

// DefaultCutover returns Friday 15:45 America/New_York.
func DefaultCutover() Cutover {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		loc = time.UTC
	}
	return Cutover{Hour: 15, Minute: 45, Location: loc}
}

// WeekEnd returns the week-ending Friday (midnight UTC) that a headline
// published at t is attributed to. Monday through Thursday map to the
// coming Friday; Friday maps to itself before the cutover and to the next
// Friday at or after it; Saturday and Sunday map to the next Friday.
func WeekEnd(t time.Time, c Cutover) time.Time {
	loc := c.Location
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)

	days := (int(time.Friday) - int(local.Weekday()) + 7) % 7
	if days == 0 {
		cutover := time.Date(local.Year(), local.Month(), local.Day(), c.Hour, c.Minute, 0, 0, loc)
		if !local.Before(cutover) {
			days = 7
		}
	}

	f := local.AddDate(0, 0, days)
	return time.Date(f.Year(), f.Month(), f.Day(), 0, 0, 0, 0, time.UTC)
}

// AggregateWeekly groups scored headlines into sentiment weeks and
// reduces each group to a median score, a count, and a sufficiency flag.
// The median is used instead of the mean for outlier robustness; an even
// group averages the two central values. Fridays with zero headlines
// inside the observed span are still emitted (SWk nil, N 0) so the
// downstream join sees every week.
func AggregateWeekly(scored []models.ScoredHeadline, minHeadlines int, c Cutover) []models.WeeklySentiment {
	if len(scored) == 0 {
		return nil
	}

	groups := make(map[time.Time][]float64)
	var first, last time.Time
	for _, s := range scored {
		week := WeekEnd(s.PublishedAt, c)
		groups[week] = append(groups[week], s.Score)
		if first.IsZero() || week.Before(first) {
			first = week
		}
		if last.IsZero() || week.After(last) {
			last = week
		}
	}

	var out []models.WeeklySentiment
	for week := first; !week.After(last); week = week.AddDate(0, 0, 7) {
		scores := groups[week]
		ws := models.WeeklySentiment{
			WeekEnd:    week,
			N:          len(scores),
			Sufficient: len(scores) >= minHeadlines && len(scores) > 0,
		}
		if len(scores) > 0 {
			m := median(scores)
			ws.SWk = &m
		}
		out = append(out, ws)
	}
	return out
}

// median mutates its argument's order.
func median(xs []float64) float64 {
	sort.Float64s(xs)
	n := len(xs)
	if n%2 == 0 {
		return (xs[n/2-1] + xs[n/2]) / 2
	}
	return xs[n/2]
}
