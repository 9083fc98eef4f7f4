package strategy

import "sentiment-edge/models"

// Params are the signal engine thresholds.
type Params struct {
	EntryExtThr  float64
	NegThr       float64
	ExitExtThr   float64
	PosThr       float64
	MinHeadlines int
}

// DefaultParams returns the standard thresholds.
func DefaultParams() Params {
	return Params{
		EntryExtThr:  -0.07,
		NegThr:       -0.05,
		ExitExtThr:   0.12,
		PosThr:       0.05,
		MinHeadlines: 3,
	}
}

// ComputeSignals evaluates the entry and exit predicates for each week
// using only that week's data. Weeks where the extension or weekly
// sentiment is nil never signal. Entry fires when price is stretched
// below trend while sentiment is pessimistic; exit fires on the mirror
// condition. Both require the headline count minimum.
func ComputeSignals(joined []models.JoinedWeek, p Params) []models.Signal {
	signals := make([]models.Signal, len(joined))
	for i, w := range joined {
		signals[i] = models.Signal{WeekEnd: w.WeekEnd}
		if w.Extension == nil || w.SWk == nil {
			continue
		}
		if w.N < p.MinHeadlines {
			continue
		}
		signals[i].Entry = *w.Extension <= p.EntryExtThr && *w.SWk <= p.NegThr
		signals[i].Exit = *w.Extension >= p.ExitExtThr && *w.SWk >= p.PosThr
	}
	return signals
}

// BuildPositions runs the FLAT/LONG state machine over the signal series.
// A decision at week t takes effect at week t+1, one full period of lag,
// since week t's close and sentiment are unknowable until after week t
// closes. Redundant signals are no-ops, and when entry and exit fire in
// the same week exit wins (capital preservation dominates). The final
// week's signal has no following week and is decision-only.
func BuildPositions(signals []models.Signal) []models.PositionPoint {
	positions := make([]models.PositionPoint, len(signals))
	for i, s := range signals {
		positions[i] = models.PositionPoint{WeekEnd: s.WeekEnd, Position: models.Flat}
	}

	for i := 0; i < len(signals)-1; i++ {
		next := positions[i].Position
		switch {
		case signals[i].Exit && positions[i].Position == models.Long:
			next = models.Flat
		case signals[i].Entry && !signals[i].Exit && positions[i].Position == models.Flat:
			next = models.Long
		}
		positions[i+1].Position = next
	}
	return positions
}
