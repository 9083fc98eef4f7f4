package sentiment

import (
	"testing"
	"time"

	"sentiment-edge/models"
)

func nyLoc(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("LoadLocation: %v", err)
	}
	return loc
}

func utcDate(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestWeekEnd(t *testing.T) {
	loc := nyLoc(t)
	cut := Cutover{Hour: 15, Minute: 45, Location: loc}

	// 2024-03-08 is a Friday, 2024-03-15 the next.
	tests := []struct {
		name string
		at   time.Time
		want time.Time
	}{
		{
			"monday morning",
			time.Date(2024, time.March, 4, 9, 0, 0, 0, loc),
			utcDate(2024, time.March, 8),
		},
		{
			"friday before cutover",
			time.Date(2024, time.March, 8, 15, 44, 59, 0, loc),
			utcDate(2024, time.March, 8),
		},
		{
			"friday exactly at cutover rolls forward",
			time.Date(2024, time.March, 8, 15, 45, 0, 0, loc),
			utcDate(2024, time.March, 15),
		},
		{
			"friday evening rolls forward",
			time.Date(2024, time.March, 8, 20, 0, 0, 0, loc),
			utcDate(2024, time.March, 15),
		},
		{
			"saturday rolls forward",
			time.Date(2024, time.March, 9, 10, 0, 0, 0, loc),
			utcDate(2024, time.March, 15),
		},
		{
			"sunday rolls forward",
			time.Date(2024, time.March, 10, 10, 0, 0, 0, loc),
			utcDate(2024, time.March, 15),
		},
		{
			"utc timestamp converted to exchange time",
			// 19:00 UTC on the Friday is 15:00 in New York, before cutover.
			time.Date(2024, time.March, 8, 19, 0, 0, 0, time.UTC),
			utcDate(2024, time.March, 8),
		},
		{
			"utc timestamp after cutover in exchange time",
			// 21:00 UTC on the Friday is 16:00 in New York.
			time.Date(2024, time.March, 8, 21, 0, 0, 0, time.UTC),
			utcDate(2024, time.March, 15),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WeekEnd(tt.at, cut); !got.Equal(tt.want) {
				t.Errorf("WeekEnd(%v) = %v, want %v", tt.at, got, tt.want)
			}
		})
	}
}

func scoredAt(t time.Time, score float64) models.ScoredHeadline {
	return models.ScoredHeadline{
		Headline: models.Headline{Title: "h", URL: "u", PublishedAt: t},
		Score:    score,
	}
}

func TestAggregateWeekly_Median(t *testing.T) {
	loc := nyLoc(t)
	cut := Cutover{Hour: 15, Minute: 45, Location: loc}
	mon := time.Date(2024, time.March, 4, 9, 0, 0, 0, loc)

	scored := []models.ScoredHeadline{
		scoredAt(mon, -0.2),
		scoredAt(mon.Add(time.Hour), 0.1),
		scoredAt(mon.Add(2*time.Hour), 0.3),
	}

	weeks := AggregateWeekly(scored, 3, cut)
	if len(weeks) != 1 {
		t.Fatalf("got %d weeks, want 1", len(weeks))
	}
	wk := weeks[0]
	if wk.SWk == nil || *wk.SWk != 0.1 {
		t.Errorf("SWk = %v, want 0.1", wk.SWk)
	}
	if wk.N != 3 || !wk.Sufficient {
		t.Errorf("N = %d, Sufficient = %v, want 3 and true", wk.N, wk.Sufficient)
	}
}

func TestAggregateWeekly_EvenMedianAveragesCentral(t *testing.T) {
	loc := nyLoc(t)
	cut := Cutover{Hour: 15, Minute: 45, Location: loc}
	mon := time.Date(2024, time.March, 4, 9, 0, 0, 0, loc)

	scored := []models.ScoredHeadline{
		scoredAt(mon, -0.4),
		scoredAt(mon, 0.0),
		scoredAt(mon, 0.2),
		scoredAt(mon, 0.6),
	}

	weeks := AggregateWeekly(scored, 3, cut)
	if weeks[0].SWk == nil || *weeks[0].SWk != 0.1 {
		t.Errorf("SWk = %v, want 0.1 (mean of 0.0 and 0.2)", weeks[0].SWk)
	}
}

func TestAggregateWeekly_EmptyWeeksEmitted(t *testing.T) {
	loc := nyLoc(t)
	cut := Cutover{Hour: 15, Minute: 45, Location: loc}

	scored := []models.ScoredHeadline{
		scoredAt(time.Date(2024, time.March, 4, 9, 0, 0, 0, loc), 0.5),  // week of Mar 8
		scoredAt(time.Date(2024, time.March, 18, 9, 0, 0, 0, loc), 0.2), // week of Mar 22
	}

	weeks := AggregateWeekly(scored, 1, cut)
	if len(weeks) != 3 {
		t.Fatalf("got %d weeks, want 3 (gap week included)", len(weeks))
	}

	gap := weeks[1]
	if !gap.WeekEnd.Equal(utcDate(2024, time.March, 15)) {
		t.Errorf("gap week end = %v, want Mar 15", gap.WeekEnd)
	}
	if gap.SWk != nil || gap.N != 0 || gap.Sufficient {
		t.Errorf("gap week = %+v, want SWk nil, N 0, insufficient", gap)
	}
}

func TestAggregateWeekly_InsufficientBelowThreshold(t *testing.T) {
	loc := nyLoc(t)
	cut := Cutover{Hour: 15, Minute: 45, Location: loc}
	mon := time.Date(2024, time.March, 4, 9, 0, 0, 0, loc)

	weeks := AggregateWeekly([]models.ScoredHeadline{
		scoredAt(mon, 0.5),
		scoredAt(mon, 0.1),
	}, 3, cut)

	if weeks[0].Sufficient {
		t.Errorf("N=2 with min_headlines=3 should be insufficient")
	}
	if weeks[0].SWk == nil {
		t.Errorf("insufficient weeks still carry their median")
	}
}

func TestAggregateWeekly_Empty(t *testing.T) {
	if got := AggregateWeekly(nil, 3, DefaultCutover()); got != nil {
		t.Errorf("AggregateWeekly(nil) = %v, want nil", got)
	}
}
