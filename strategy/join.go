// Package strategy joins the weekly price and sentiment series and turns
// them into entry/exit signals and a causally-lagged position series.
package strategy

import (
	"time"

	"sentiment-edge/models"
)

// JoinWeekly left-joins weekly sentiment onto the weekly price series.
// Every price week is present in the output; weeks with no sentiment data
// carry nil SWk, zero N, and an insufficient flag, which is a
// non-signaling state rather than an error.
func JoinWeekly(prices []models.WeeklyPricePoint, sents []models.WeeklySentiment) []models.JoinedWeek {
	byWeek := make(map[time.Time]models.WeeklySentiment, len(sents))
	for _, s := range sents {
		byWeek[s.WeekEnd] = s
	}

	joined := make([]models.JoinedWeek, len(prices))
	for i, p := range prices {
		jw := models.JoinedWeek{
			WeekEnd:       p.WeekEnd,
			Close:         p.Close,
			MovingAverage: p.MovingAverage,
			Extension:     p.Extension,
		}
		if s, ok := byWeek[p.WeekEnd]; ok {
			jw.SWk = s.SWk
			jw.N = s.N
			jw.Sufficient = s.Sufficient
		}
		joined[i] = jw
	}
	return joined
}
