// Command sentiment-edge runs equity backtests that combine weekly price
// trend extension with news-headline sentiment.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sentiment-edge/config"
	"sentiment-edge/internal/api"
	"sentiment-edge/models"
	"sentiment-edge/observability"
	"sentiment-edge/repository"
	"sentiment-edge/runner"
	"sentiment-edge/services"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
)

// Global config
var cfg *config.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "sentiment-edge",
	Short: "Buy-only equity backtester driven by trend extension and news sentiment",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env is optional; real deployments set the environment directly
		_ = godotenv.Load()

		production, _ := cmd.Flags().GetBool("production")
		observability.InitLogger(production)
		observability.InitMetrics()

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().Bool("production", false, "JSON log output")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(backtestCmd)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("sentiment-edge %s (%s)\n", version, commit)
	},
}

// --- Serve Command ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		r, repo, err := buildRunner(ctx)
		if err != nil {
			return err
		}
		if repo != nil {
			defer repo.Close()
		}

		var store api.RunStore
		if repo != nil {
			store = repo
		}
		handler := api.NewHandler(r, store, cfg)
		router := api.NewRouter(handler, cfg)

		server := &http.Server{
			Addr:         cfg.HTTP.Addr,
			Handler:      router,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second,
		}

		go func() {
			observability.Info("starting server", "addr", cfg.HTTP.Addr)
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				observability.Fatal("server error", "error", err)
			}
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		observability.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		observability.Info("server stopped")
		return nil
	},
}

// --- Backtest Command ---

var backtestCmd = &cobra.Command{
	Use:   "backtest [ticker]",
	Short: "Run a single backtest and print the summary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		startStr, _ := cmd.Flags().GetString("start")
		endStr, _ := cmd.Flags().GetString("end")
		asJSON, _ := cmd.Flags().GetBool("json")

		start, err := time.Parse("2006-01-02", startStr)
		if err != nil {
			return fmt.Errorf("--start must be YYYY-MM-DD: %w", err)
		}
		end, err := time.Parse("2006-01-02", endStr)
		if err != nil {
			return fmt.Errorf("--end must be YYYY-MM-DD: %w", err)
		}

		r, repo, err := buildRunner(ctx)
		if err != nil {
			return err
		}
		if repo != nil {
			defer repo.Close()
		}

		run, err := r.Run(ctx, runner.Request{Ticker: args[0], Start: start, End: end})
		if err != nil {
			return err
		}

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(run)
		}

		printSummary(run)
		return nil
	},
}

func init() {
	backtestCmd.Flags().String("start", "", "backtest start date (YYYY-MM-DD)")
	backtestCmd.Flags().String("end", "", "backtest end date (YYYY-MM-DD)")
	backtestCmd.Flags().Bool("json", false, "print the full run as JSON")
	backtestCmd.MarkFlagRequired("start")
	backtestCmd.MarkFlagRequired("end")
}

func printSummary(run *models.BacktestRun) {
	res := run.Result
	fmt.Printf("%s  %s → %s  (%d weeks)\n", run.Ticker,
		run.Start.Format("2006-01-02"), run.End.Format("2006-01-02"), len(res.Weeks))
	fmt.Printf("  run id:        %s\n", run.ID)
	printMetrics("strategy", res.Metrics)
	printMetrics(run.Params.BenchmarkTicker, res.BenchmarkMetrics)
}

func printMetrics(label string, m models.SummaryMetrics) {
	sharpe := "n/a"
	if m.Sharpe != nil {
		sharpe = fmt.Sprintf("%.2f", *m.Sharpe)
	}
	fmt.Printf("  %-12s total %+.2f%%  cagr %+.2f%%  sharpe %s  maxdd %.2f%%\n",
		label, m.TotalReturn*100, m.CAGR*100, sharpe, m.MaxDrawdown*100)
}

// buildRunner assembles the pipeline from whatever providers are
// configured. Alpaca is mandatory; headline sources and persistence are
// optional, and the classifier falls back from Bedrock to FinBERT.
func buildRunner(ctx context.Context) (*runner.Runner, *repository.Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	if !cfg.HasAlpaca() {
		return nil, nil, fmt.Errorf("ALPACA_API_KEY and ALPACA_API_SECRET are required")
	}

	prices := services.NewAlpacaService(cfg.Alpaca.APIKey, cfg.Alpaca.APISecret)

	var headlines []services.HeadlineSource
	if cfg.HasFinnhub() {
		headlines = append(headlines, services.NewFinnhubService(cfg.Finnhub.APIKey))
	}
	headlines = append(headlines, services.NewRSSService())

	classifier, err := buildClassifier(ctx)
	if err != nil {
		return nil, nil, err
	}

	var repo *repository.Repository
	if cfg.HasDatabase() {
		repo, err = repository.NewRepository(ctx, cfg.Database.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := repo.EnsureSchema(ctx); err != nil {
			repo.Close()
			return nil, nil, err
		}
		observability.Info("connected to database")
	} else {
		observability.Warn("DATABASE_URL not set, runs will not be persisted")
	}

	var store runner.Store
	if repo != nil {
		store = repo
	}
	return runner.New(prices, headlines, classifier, store, cfg), repo, nil
}

func buildClassifier(ctx context.Context) (services.SentimentClassifier, error) {
	if cfg.HasFinBERT() {
		observability.Info("using FinBERT classifier", "url", cfg.FinBERT.BaseURL)
		return services.NewFinBERTService(cfg.FinBERT.BaseURL), nil
	}

	observability.Info("using Bedrock classifier", "model", cfg.Bedrock.Model)
	classifier, err := services.NewBedrockClassifier(ctx, cfg.Bedrock.Region, cfg.Bedrock.Model)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Bedrock classifier: %w", err)
	}
	return classifier, nil
}
