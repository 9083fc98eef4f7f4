package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"sentiment-edge/models"
	"sentiment-edge/observability"
)

// FinnhubService fetches company news headlines from the Finnhub API.
// Finnhub caps results per request, so date ranges are chunked into
// calendar-month windows.
type FinnhubService struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
}

// NewFinnhubService creates a new FinnhubService instance
func NewFinnhubService(apiKey string) *FinnhubService {
	return &FinnhubService{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    "https://finnhub.io/api/v1",
	}
}

type finnhubNewsItem struct {
	Datetime int64  `json:"datetime"` // unix seconds
	Headline string `json:"headline"`
	Summary  string `json:"summary"`
	URL      string `json:"url"`
	Source   string `json:"source"`
}

// monthWindow is a [start, end] date pair within one calendar month.
type monthWindow struct {
	start time.Time
	end   time.Time
}

// monthWindows splits [start, end] into calendar-month-aligned windows.
func monthWindows(start, end time.Time) []monthWindow {
	var windows []monthWindow
	cur := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	endDay := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	startDay := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)

	for !cur.After(endDay) {
		monthEnd := cur.AddDate(0, 1, -1)
		winStart := cur
		if winStart.Before(startDay) {
			winStart = startDay
		}
		winEnd := monthEnd
		if winEnd.After(endDay) {
			winEnd = endDay
		}
		windows = append(windows, monthWindow{start: winStart, end: winEnd})
		cur = cur.AddDate(0, 1, 0)
	}
	return windows
}

// Name returns the headline source name
func (s *FinnhubService) Name() string { return BreakerFinnhub }

// GetHeadlines returns raw company news headlines for a ticker in the
// date range. The result may contain duplicates; deduplication is the
// caller's concern. Provider errors surface as models.ErrDataUnavailable.
func (s *FinnhubService) GetHeadlines(ctx context.Context, ticker string, start, end time.Time) ([]models.Headline, error) {
	metrics := observability.GetMetrics()

	var all []models.Headline
	for _, win := range monthWindows(start, end) {
		metrics.RecordExternalAPIRequest(BreakerFinnhub, "company_news")
		timer := metrics.NewTimer()

		items, err := WithCircuitBreaker(ctx, BreakerFinnhub, func() ([]finnhubNewsItem, error) {
			var chunk []finnhubNewsItem
			err := WithRetry(ctx, DefaultRetryConfig, func() error {
				return s.fetchWindow(ctx, ticker, win, &chunk)
			})
			return chunk, err
		})
		timer.ObserveExternalAPI(BreakerFinnhub, "company_news")
		if err != nil {
			metrics.RecordExternalAPIError(BreakerFinnhub, "company_news", "request_failed")
			return nil, fmt.Errorf("finnhub company news for %s: %v: %w", ticker, err, models.ErrDataUnavailable)
		}

		for _, item := range items {
			if item.Headline == "" {
				continue
			}
			all = append(all, models.Headline{
				Title:       item.Headline,
				URL:         item.URL,
				PublishedAt: time.Unix(item.Datetime, 0).UTC(),
			})
		}
	}

	metrics.RecordHeadlinesFetched(BreakerFinnhub, len(all))
	return all, nil
}

func (s *FinnhubService) fetchWindow(ctx context.Context, ticker string, win monthWindow, out *[]finnhubNewsItem) error {
	params := url.Values{}
	params.Set("symbol", ticker)
	params.Set("from", win.start.Format("2006-01-02"))
	params.Set("to", win.end.Format("2006-01-02"))
	params.Set("token", s.apiKey)

	req, err := http.NewRequestWithContext(ctx, "GET", s.baseURL+"/company-news?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch company news: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("finnhub returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
