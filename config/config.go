package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"sentiment-edge/models"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	Database DatabaseConfig

	// External service configurations
	Alpaca  AlpacaConfig
	Finnhub FinnhubConfig
	Bedrock BedrockConfig
	FinBERT FinBERTConfig

	// Strategy configuration
	Strategy StrategyConfig

	// Backtest configuration
	Backtest BacktestConfig

	// Sentiment scoring configuration
	Scoring ScoringConfig

	// HTTP configuration
	HTTP HTTPConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL string
}

// AlpacaConfig holds Alpaca market data API configuration
type AlpacaConfig struct {
	APIKey    string
	APISecret string
}

// FinnhubConfig holds Finnhub company-news API configuration
type FinnhubConfig struct {
	APIKey string
}

// BedrockConfig holds AWS Bedrock classifier configuration
type BedrockConfig struct {
	Region string
	Model  string
}

// FinBERTConfig holds the FinBERT inference server configuration
type FinBERTConfig struct {
	BaseURL string
}

// StrategyConfig holds the signal engine thresholds
type StrategyConfig struct {
	EntryExtThr         float64 // extension at or below this is an entry condition
	NegThr              float64 // weekly sentiment at or below this is an entry condition
	ExitExtThr          float64 // extension at or above this is an exit condition
	PosThr              float64 // weekly sentiment at or above this is an exit condition
	MinHeadlines        int     // minimum headlines for a sentiment week to signal
	MovingAverageWindow int     // trailing window in resampled weeks
}

// BacktestConfig holds backtest execution configuration
type BacktestConfig struct {
	CostBps         float64 // transaction cost in basis points per flip
	BenchmarkTicker string  // buy-and-hold reference instrument
	BufferWeeks     int     // extra history fetched before the range for MA warm-up
}

// ScoringConfig holds sentiment scoring and week-bucketing configuration
type ScoringConfig struct {
	Concurrency    int    // max concurrent classifier calls
	CutoverHour    int    // Friday cutover hour in exchange local time
	CutoverMinute  int    // Friday cutover minute
	Timezone       string // exchange time zone name
	TimeoutSeconds int    // per-classifier-call timeout
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	Addr               string
	CORSAllowedOrigins string
	TimeoutSeconds     int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Alpaca: AlpacaConfig{
			APIKey:    os.Getenv("ALPACA_API_KEY"),
			APISecret: os.Getenv("ALPACA_API_SECRET"),
		},
		Finnhub: FinnhubConfig{
			APIKey: os.Getenv("FINNHUB_API_KEY"),
		},
		Bedrock: BedrockConfig{
			Region: getEnvString("BEDROCK_REGION", "us-east-1"),
			Model:  getEnvString("BEDROCK_MODEL", "anthropic.claude-3-haiku-20240307-v1:0"),
		},
		FinBERT: FinBERTConfig{
			BaseURL: os.Getenv("FINBERT_BASE_URL"),
		},
		Strategy: StrategyConfig{
			EntryExtThr:         getEnvFloat("STRATEGY_ENTRY_EXT_THRESHOLD", -0.07),
			NegThr:              getEnvFloat("STRATEGY_NEG_THRESHOLD", -0.05),
			ExitExtThr:          getEnvFloat("STRATEGY_EXIT_EXT_THRESHOLD", 0.12),
			PosThr:              getEnvFloat("STRATEGY_POS_THRESHOLD", 0.05),
			MinHeadlines:        getEnvInt("STRATEGY_MIN_HEADLINES", 3),
			MovingAverageWindow: getEnvInt("STRATEGY_MA_WINDOW", 21),
		},
		Backtest: BacktestConfig{
			CostBps:         getEnvFloat("BACKTEST_COST_BPS", 0),
			BenchmarkTicker: getEnvString("BACKTEST_BENCHMARK_TICKER", "SPY"),
			BufferWeeks:     getEnvInt("BACKTEST_BUFFER_WEEKS", 30),
		},
		Scoring: ScoringConfig{
			Concurrency:    getEnvInt("SCORING_CONCURRENCY", 4),
			CutoverHour:    getEnvInt("SENTIMENT_CUTOVER_HOUR", 15),
			CutoverMinute:  getEnvIntAllowZero("SENTIMENT_CUTOVER_MINUTE", 45),
			Timezone:       getEnvString("SENTIMENT_TIMEZONE", "America/New_York"),
			TimeoutSeconds: getEnvInt("SCORING_TIMEOUT_SECONDS", 30),
		},
		HTTP: HTTPConfig{
			Addr:               getEnvString("HTTP_ADDR", ":8080"),
			CORSAllowedOrigins: getEnvString("CORS_ALLOWED_ORIGINS", "*"),
			TimeoutSeconds:     getEnvInt("HTTP_TIMEOUT_SECONDS", 120),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Strategy.MovingAverageWindow <= 0 {
		return fmt.Errorf("STRATEGY_MA_WINDOW must be positive, got %d", c.Strategy.MovingAverageWindow)
	}
	if c.Strategy.MinHeadlines < 0 {
		return fmt.Errorf("STRATEGY_MIN_HEADLINES must be non-negative, got %d", c.Strategy.MinHeadlines)
	}
	if c.Strategy.EntryExtThr >= c.Strategy.ExitExtThr {
		return fmt.Errorf("entry extension threshold %.4f must be below exit threshold %.4f",
			c.Strategy.EntryExtThr, c.Strategy.ExitExtThr)
	}
	if c.Backtest.CostBps < 0 {
		return fmt.Errorf("BACKTEST_COST_BPS must be non-negative, got %.2f", c.Backtest.CostBps)
	}
	if c.Backtest.BenchmarkTicker == "" {
		return fmt.Errorf("BACKTEST_BENCHMARK_TICKER must not be empty")
	}
	if c.Scoring.Concurrency <= 0 {
		return fmt.Errorf("SCORING_CONCURRENCY must be positive, got %d", c.Scoring.Concurrency)
	}
	if c.Scoring.CutoverHour < 0 || c.Scoring.CutoverHour > 23 {
		return fmt.Errorf("SENTIMENT_CUTOVER_HOUR must be in [0,23], got %d", c.Scoring.CutoverHour)
	}
	if c.Scoring.CutoverMinute < 0 || c.Scoring.CutoverMinute > 59 {
		return fmt.Errorf("SENTIMENT_CUTOVER_MINUTE must be in [0,59], got %d", c.Scoring.CutoverMinute)
	}
	if _, err := time.LoadLocation(c.Scoring.Timezone); err != nil {
		return fmt.Errorf("SENTIMENT_TIMEZONE %q is not a valid time zone: %w", c.Scoring.Timezone, err)
	}
	return nil
}

// RunParams returns the default per-run parameters derived from config.
func (c *Config) RunParams() models.RunParams {
	return models.RunParams{
		EntryExtThr:         c.Strategy.EntryExtThr,
		NegThr:              c.Strategy.NegThr,
		ExitExtThr:          c.Strategy.ExitExtThr,
		PosThr:              c.Strategy.PosThr,
		MinHeadlines:        c.Strategy.MinHeadlines,
		MovingAverageWindow: c.Strategy.MovingAverageWindow,
		CostBps:             c.Backtest.CostBps,
		BenchmarkTicker:     c.Backtest.BenchmarkTicker,
	}
}

// HasDatabase returns true if database configuration is available
func (c *Config) HasDatabase() bool {
	return c.Database.URL != ""
}

// HasAlpaca returns true if Alpaca configuration is available
func (c *Config) HasAlpaca() bool {
	return c.Alpaca.APIKey != "" && c.Alpaca.APISecret != ""
}

// HasFinnhub returns true if Finnhub configuration is available
func (c *Config) HasFinnhub() bool {
	return c.Finnhub.APIKey != ""
}

// HasFinBERT returns true if a FinBERT inference server is configured
func (c *Config) HasFinBERT() bool {
	return c.FinBERT.BaseURL != ""
}

func getEnvString(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}

func getEnvIntAllowZero(key string, defaultValue int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed >= 0 {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// NewTestConfig creates a Config with default values for testing
func NewTestConfig() *Config {
	return &Config{
		Database: DatabaseConfig{URL: ""},
		Alpaca:   AlpacaConfig{},
		Finnhub:  FinnhubConfig{},
		Bedrock: BedrockConfig{
			Region: "us-east-1",
			Model:  "anthropic.claude-3-haiku-20240307-v1:0",
		},
		FinBERT: FinBERTConfig{},
		Strategy: StrategyConfig{
			EntryExtThr:         -0.07,
			NegThr:              -0.05,
			ExitExtThr:          0.12,
			PosThr:              0.05,
			MinHeadlines:        3,
			MovingAverageWindow: 21,
		},
		Backtest: BacktestConfig{
			CostBps:         0,
			BenchmarkTicker: "SPY",
			BufferWeeks:     30,
		},
		Scoring: ScoringConfig{
			Concurrency:    4,
			CutoverHour:    15,
			CutoverMinute:  45,
			Timezone:       "America/New_York",
			TimeoutSeconds: 30,
		},
		HTTP: HTTPConfig{
			Addr:               ":8080",
			CORSAllowedOrigins: "*",
			TimeoutSeconds:     120,
		},
	}
}
