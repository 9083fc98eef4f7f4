package services

import (
	"context"
	"time"

	"sentiment-edge/models"
)

// PriceSource fetches ordered daily price bars for a ticker. Empty data or
// provider failure surfaces as models.ErrDataUnavailable.
type PriceSource interface {
	GetDailyBars(ctx context.Context, ticker string, start, end time.Time) ([]models.PriceBar, error)
}

// HeadlineSource fetches raw headlines for a ticker. The result may be
// empty and may contain duplicates; provider failure surfaces as
// models.ErrDataUnavailable.
type HeadlineSource interface {
	GetHeadlines(ctx context.Context, ticker string, start, end time.Time) ([]models.Headline, error)
	Name() string
}

// SentimentClassifier scores one piece of text into class probabilities.
// It is a pure capability: any equivalent model can be substituted without
// touching aggregation or signal logic.
type SentimentClassifier interface {
	Classify(ctx context.Context, text string) (models.ClassProbs, error)
	Name() string
}
