package models

import "time"

// JoinedWeek is the join of the weekly price and sentiment series for a
// single week-ending Friday. One exists for every week present in the
// price series; sentiment fields are zero-valued/insufficient where no
// headline data exists for that week.
type JoinedWeek struct {
	WeekEnd       time.Time `json:"week_end"`
	Close         float64   `json:"close"`
	MovingAverage *float64  `json:"moving_average,omitempty"`
	Extension     *float64  `json:"extension,omitempty"`
	SWk           *float64  `json:"s_wk,omitempty"`
	N             int       `json:"n"`
	Sufficient    bool      `json:"sufficient"`
}

// Signal is the entry/exit decision computed from week t's JoinedWeek
// data only. It is a decision, not an execution: transitions apply at
// week t+1.
type Signal struct {
	WeekEnd time.Time `json:"week_end"`
	Entry   bool      `json:"entry"`
	Exit    bool      `json:"exit"`
}

// Position is the buy-only position state.
type Position int

const (
	Flat Position = 0
	Long Position = 1
)

func (p Position) String() string {
	if p == Long {
		return "long"
	}
	return "flat"
}

// PositionPoint is the executed position for one week.
type PositionPoint struct {
	WeekEnd  time.Time `json:"week_end"`
	Position Position  `json:"position"`
}
