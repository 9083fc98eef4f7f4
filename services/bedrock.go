package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"sentiment-edge/models"
	"sentiment-edge/observability"
)

const classifierSystemPrompt = `You are a financial news sentiment classifier.
Given one headline, respond with ONLY a JSON object of class probabilities:
{"positive": <0..1>, "negative": <0..1>, "neutral": <0..1>}
The three values must sum to 1. No other text.`

// BedrockClassifier scores headline sentiment with a Claude model on AWS
// Bedrock, prompted to emit FinBERT-style class probabilities.
type BedrockClassifier struct {
	client *bedrockruntime.Client
	model  string
}

// claudeRequest is the request format for Claude models via Bedrock
type claudeRequest struct {
	AnthropicVersion string          `json:"anthropic_version"`
	MaxTokens        int             `json:"max_tokens"`
	System           string          `json:"system,omitempty"`
	Messages         []claudeMessage `json:"messages"`
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// claudeResponse is the response format from Claude models
type claudeResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

// NewBedrockClassifier creates a new BedrockClassifier instance
func NewBedrockClassifier(ctx context.Context, region, modelID string) (*BedrockClassifier, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS SDK config: %w", err)
	}

	return &BedrockClassifier{
		client: bedrockruntime.NewFromConfig(cfg),
		model:  modelID,
	}, nil
}

// Name returns the classifier name
func (s *BedrockClassifier) Name() string { return BreakerBedrock }

// Classify returns class probabilities for one headline text. Transport
// and malformed-output failures are both models.ErrScoring: the caller
// excludes the headline and continues.
func (s *BedrockClassifier) Classify(ctx context.Context, text string) (models.ClassProbs, error) {
	metrics := observability.GetMetrics()
	metrics.RecordExternalAPIRequest(BreakerBedrock, "invoke_model")
	timer := metrics.NewTimer()
	defer timer.ObserveExternalAPI(BreakerBedrock, "invoke_model")

	request := claudeRequest{
		AnthropicVersion: "bedrock-2023-05-31",
		MaxTokens:        128,
		System:           classifierSystemPrompt,
		Messages: []claudeMessage{
			{Role: "user", Content: text},
		},
	}

	reqBody, err := json.Marshal(request)
	if err != nil {
		return models.ClassProbs{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	output, err := WithCircuitBreaker(ctx, BreakerBedrock, func() (*bedrockruntime.InvokeModelOutput, error) {
		return s.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
			ModelId:     aws.String(s.model),
			Body:        reqBody,
			ContentType: aws.String("application/json"),
		})
	})
	if err != nil {
		metrics.RecordExternalAPIError(BreakerBedrock, "invoke_model", "request_failed")
		return models.ClassProbs{}, fmt.Errorf("bedrock invoke: %v: %w", err, models.ErrScoring)
	}

	return parseClassProbs(output.Body)
}

// parseClassProbs extracts class probabilities from a raw Claude response
// body.
func parseClassProbs(body []byte) (models.ClassProbs, error) {
	var response claudeResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return models.ClassProbs{}, fmt.Errorf("failed to unmarshal response: %v: %w", err, models.ErrScoring)
	}
	if len(response.Content) == 0 {
		return models.ClassProbs{}, fmt.Errorf("empty response from model: %w", models.ErrScoring)
	}

	var probs models.ClassProbs
	if err := json.Unmarshal([]byte(response.Content[0].Text), &probs); err != nil {
		return models.ClassProbs{}, fmt.Errorf("model output is not class probabilities: %v: %w", err, models.ErrScoring)
	}

	return probs, nil
}
