package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceBar represents one daily price observation for a ticker.
// Bars are immutable once fetched.
type PriceBar struct {
	Date  time.Time       `json:"date"`
	Close decimal.Decimal `json:"close"`
}

// WeeklyPricePoint is one week of the resampled price series. WeekEnd is
// always a Friday, normalized to midnight UTC. MovingAverage and Extension
// are nil until a full lookback window of weekly closes exists.
type WeeklyPricePoint struct {
	WeekEnd       time.Time `json:"week_end"`
	Close         float64   `json:"close"`
	MovingAverage *float64  `json:"moving_average,omitempty"`
	Extension     *float64  `json:"extension,omitempty"`
}

// WeeklyReturn is a close-to-close weekly return aligned to a week-ending
// Friday.
type WeeklyReturn struct {
	WeekEnd time.Time `json:"week_end"`
	Return  float64   `json:"return"`
}
