package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"sentiment-edge/models"
	"sentiment-edge/observability"
)

// FinBERTService calls a FinBERT inference server over HTTP. The server
// exposes POST /classify taking {"text": ...} and returning class
// probabilities.
type FinBERTService struct {
	baseURL    string
	httpClient *http.Client
}

// NewFinBERTService creates a new FinBERTService instance
func NewFinBERTService(baseURL string) *FinBERTService {
	return &FinBERTService{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type classifyRequest struct {
	Text string `json:"text"`
}

type classifyResponse struct {
	Positive float64 `json:"positive"`
	Negative float64 `json:"negative"`
	Neutral  float64 `json:"neutral"`
}

// Name returns the classifier name
func (s *FinBERTService) Name() string { return BreakerFinBERT }

// Classify returns class probabilities for one headline text
func (s *FinBERTService) Classify(ctx context.Context, text string) (models.ClassProbs, error) {
	metrics := observability.GetMetrics()
	metrics.RecordExternalAPIRequest(BreakerFinBERT, "classify")
	timer := metrics.NewTimer()
	defer timer.ObserveExternalAPI(BreakerFinBERT, "classify")

	var probs models.ClassProbs
	err := WithRetry(ctx, DefaultRetryConfig, func() error {
		body, err := json.Marshal(classifyRequest{Text: text})
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, "POST", s.baseURL+"/classify", bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := s.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("failed to call classifier: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("classifier returned status %d", resp.StatusCode)
		}

		var out classifyResponse
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}

		probs = models.ClassProbs{
			Positive: out.Positive,
			Negative: out.Negative,
			Neutral:  out.Neutral,
		}
		return nil
	})

	if err != nil {
		metrics.RecordExternalAPIError(BreakerFinBERT, "classify", "request_failed")
		return models.ClassProbs{}, fmt.Errorf("finbert classify: %v: %w", err, models.ErrScoring)
	}

	return probs, nil
}
