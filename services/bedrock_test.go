package services

import (
	"errors"
	"testing"

	"sentiment-edge/models"
)

func TestParseClassProbs(t *testing.T) {
	body := `{
		"content": [
			{"type": "text", "text": "{\"positive\": 0.7, \"negative\": 0.1, \"neutral\": 0.2}"}
		],
		"stop_reason": "end_turn"
	}`

	probs, err := parseClassProbs([]byte(body))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if probs.Positive != 0.7 || probs.Negative != 0.1 || probs.Neutral != 0.2 {
		t.Errorf("probs = %+v", probs)
	}
}

func TestParseClassProbs_Malformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", "not json at all"},
		{"empty content", `{"content": [], "stop_reason": "end_turn"}`},
		{"prose instead of probabilities", `{"content": [{"type": "text", "text": "The sentiment is positive."}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseClassProbs([]byte(tt.body))
			if !errors.Is(err, models.ErrScoring) {
				t.Errorf("got %v, want ErrScoring", err)
			}
		})
	}
}
