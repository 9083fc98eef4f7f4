package runner

import (
	"context"
	"time"

	"sentiment-edge/models"

	"github.com/shopspring/decimal"
)

type mockPriceSource struct {
	bars map[string][]models.PriceBar
	err  error
}

func (m *mockPriceSource) GetDailyBars(ctx context.Context, ticker string, start, end time.Time) ([]models.PriceBar, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []models.PriceBar
	for _, b := range m.bars[ticker] {
		if !b.Date.Before(start) && !b.Date.After(end) {
			out = append(out, b)
		}
	}
	return out, nil
}

type mockHeadlineSource struct {
	headlines []models.Headline
	err       error
}

func (m *mockHeadlineSource) GetHeadlines(ctx context.Context, ticker string, start, end time.Time) ([]models.Headline, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.headlines, nil
}

func (m *mockHeadlineSource) Name() string { return "mock" }

type mockClassifier struct {
	probs models.ClassProbs
	err   error
}

func (m *mockClassifier) Classify(ctx context.Context, text string) (models.ClassProbs, error) {
	if m.err != nil {
		return models.ClassProbs{}, m.err
	}
	return m.probs, nil
}

func (m *mockClassifier) Name() string { return "mock" }

type mockStore struct {
	created []*models.BacktestRun
	err     error
}

func (m *mockStore) CreateBacktestRun(ctx context.Context, run *models.BacktestRun) error {
	if m.err != nil {
		return m.err
	}
	m.created = append(m.created, run)
	return nil
}

func decimalFromFloat(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

// weekdayBars generates one flat-priced daily bar per weekday across the
// given range.
func weekdayBars(start, end time.Time, close float64) []models.PriceBar {
	var bars []models.PriceBar
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		bars = append(bars, models.PriceBar{Date: d, Close: decimal.NewFromFloat(close)})
	}
	return bars
}
