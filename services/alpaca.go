package services

import (
	"context"
	"fmt"
	"time"

	"sentiment-edge/models"
	"sentiment-edge/observability"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/shopspring/decimal"
)

// AlpacaService fetches daily price bars from the Alpaca market data API
type AlpacaService struct {
	dataClient *marketdata.Client
}

// NewAlpacaService creates a new AlpacaService instance
func NewAlpacaService(apiKey, apiSecret string) *AlpacaService {
	dataClient := marketdata.NewClient(marketdata.ClientOpts{
		APIKey:    apiKey,
		APISecret: apiSecret,
	})

	return &AlpacaService{dataClient: dataClient}
}

// GetDailyBars returns split- and dividend-adjusted daily bars for a ticker.
// An empty result or a provider failure is models.ErrDataUnavailable.
func (s *AlpacaService) GetDailyBars(ctx context.Context, ticker string, start, end time.Time) ([]models.PriceBar, error) {
	metrics := observability.GetMetrics()
	metrics.RecordExternalAPIRequest(BreakerAlpaca, "get_bars")
	timer := metrics.NewTimer()
	defer timer.ObserveExternalAPI(BreakerAlpaca, "get_bars")

	bars, err := WithCircuitBreaker(ctx, BreakerAlpaca, func() ([]marketdata.Bar, error) {
		return s.dataClient.GetBars(ticker, marketdata.GetBarsRequest{
			TimeFrame:  marketdata.OneDay,
			Adjustment: marketdata.All,
			Start:      start,
			End:        end,
		})
	})
	if err != nil {
		metrics.RecordExternalAPIError(BreakerAlpaca, "get_bars", "request_failed")
		return nil, fmt.Errorf("alpaca bars for %s: %v: %w", ticker, err, models.ErrDataUnavailable)
	}
	if len(bars) == 0 {
		metrics.RecordExternalAPIError(BreakerAlpaca, "get_bars", "empty")
		return nil, fmt.Errorf("no daily bars for %s between %s and %s: %w",
			ticker, start.Format("2006-01-02"), end.Format("2006-01-02"), models.ErrDataUnavailable)
	}

	result := make([]models.PriceBar, 0, len(bars))
	for _, bar := range bars {
		result = append(result, models.PriceBar{
			Date:  bar.Timestamp,
			Close: decimal.NewFromFloat(bar.Close),
		})
	}

	return result, nil
}
