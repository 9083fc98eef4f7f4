package models

import (
	"fmt"
	"time"
)

// Headline is one raw news headline as returned by a provider. The raw set
// may contain duplicates; see the news package for normalization and
// deduplication.
type Headline struct {
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"published_at"`
}

// ProbSumTolerance is the maximum allowed deviation of the class
// probability sum from 1.
const ProbSumTolerance = 0.01

// ClassProbs holds the class probabilities returned by a sentiment
// classifier for one piece of text.
type ClassProbs struct {
	Positive float64 `json:"positive"`
	Negative float64 `json:"negative"`
	Neutral  float64 `json:"neutral"`
}

// Validate checks that each probability lies in [0,1] and that the three
// sum to 1 within ProbSumTolerance.
func (p ClassProbs) Validate() error {
	for _, v := range []float64{p.Positive, p.Negative, p.Neutral} {
		if v < 0 || v > 1 {
			return fmt.Errorf("class probability %v outside [0,1]", v)
		}
	}
	sum := p.Positive + p.Negative + p.Neutral
	if sum < 1-ProbSumTolerance || sum > 1+ProbSumTolerance {
		return fmt.Errorf("class probabilities sum to %v, want 1", sum)
	}
	return nil
}

// ScoredHeadline is a headline with its classifier output attached.
// Score = P(positive) - P(negative), in [-1, 1].
type ScoredHeadline struct {
	Headline
	Probs ClassProbs `json:"probs"`
	Score float64    `json:"score"`
}

// WeeklySentiment aggregates headline scores for one sentiment week.
// SWk is the median score, nil when the week has no headlines. Sufficient
// reports whether N reached the configured minimum headline count.
type WeeklySentiment struct {
	WeekEnd    time.Time `json:"week_end"`
	SWk        *float64  `json:"s_wk,omitempty"`
	N          int       `json:"n"`
	Sufficient bool      `json:"sufficient"`
}
