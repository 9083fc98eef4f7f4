// Package sentiment turns headlines into scored records and aggregates
// them into one sentiment value per week.
package sentiment

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"sentiment-edge/models"
	"sentiment-edge/observability"
	"sentiment-edge/services"
)

// Classifier is the external sentiment model capability. See
// services.SentimentClassifier for the concrete adapters.
type Classifier = services.SentimentClassifier

// Score invokes the classifier for one headline and converts class
// probabilities to a scalar score = P(positive) - P(negative). Malformed
// probabilities are models.ErrScoring. No caching or batching happens
// here; both are caller concerns.
func Score(ctx context.Context, clf Classifier, h models.Headline) (models.ScoredHeadline, error) {
	probs, err := clf.Classify(ctx, h.Title)
	if err != nil {
		return models.ScoredHeadline{}, err
	}
	if err := probs.Validate(); err != nil {
		return models.ScoredHeadline{}, fmt.Errorf("%v: %w", err, models.ErrScoring)
	}

	return models.ScoredHeadline{
		Headline: h,
		Probs:    probs,
		Score:    probs.Positive - probs.Negative,
	}, nil
}

// ScoreAll scores headlines with at most concurrency classifier calls in
// flight. Scoring of independent headlines is a pure performance
// optimization: each score is attributed to its own headline regardless of
// completion order, and the output preserves input order.
//
// A headline that fails to score is excluded, logged, and counted; one
// bad headline must not abort a multi-year backtest. Only context
// cancellation fails the whole call.
func ScoreAll(ctx context.Context, clf Classifier, headlines []models.Headline, concurrency int) ([]models.ScoredHeadline, error) {
	if concurrency <= 0 {
		concurrency = 1
	}

	metrics := observability.GetMetrics()
	scored := make([]*models.ScoredHeadline, len(headlines))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, h := range headlines {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			s, err := Score(gctx, clf, h)
			if err != nil {
				metrics.RecordScoringError(clf.Name())
				observability.Warn("headline excluded from aggregation",
					"classifier", clf.Name(),
					"url", h.URL,
					"error", err)
				return nil
			}
			metrics.RecordHeadlineScored(clf.Name())
			scored[i] = &s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("scoring interrupted: %w", err)
	}

	out := make([]models.ScoredHeadline, 0, len(headlines))
	for _, s := range scored {
		if s != nil {
			out = append(out, *s)
		}
	}
	return out, nil
}
