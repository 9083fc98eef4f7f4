// Package runner wires the data sources, scoring, signal engine and
// backtest engine into a single end-to-end run.
package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sentiment-edge/backtest"
	"sentiment-edge/config"
	"sentiment-edge/models"
	"sentiment-edge/news"
	"sentiment-edge/observability"
	"sentiment-edge/pricing"
	"sentiment-edge/sentiment"
	"sentiment-edge/services"
	"sentiment-edge/strategy"

	"github.com/google/uuid"
)

// Store persists completed runs. *repository.Repository satisfies it.
type Store interface {
	CreateBacktestRun(ctx context.Context, run *models.BacktestRun) error
}

// Request describes one backtest invocation. Params is optional; nil
// falls back to the configured defaults.
type Request struct {
	Ticker string
	Start  time.Time
	End    time.Time
	Params *models.RunParams
}

// Runner executes backtest requests against live data sources.
type Runner struct {
	prices     services.PriceSource
	headlines  []services.HeadlineSource
	classifier services.SentimentClassifier
	store      Store
	cfg        *config.Config
}

// New creates a Runner. store may be nil, in which case runs are not
// persisted.
func New(prices services.PriceSource, headlines []services.HeadlineSource, classifier services.SentimentClassifier, store Store, cfg *config.Config) *Runner {
	return &Runner{
		prices:     prices,
		headlines:  headlines,
		classifier: classifier,
		store:      store,
		cfg:        cfg,
	}
}

// Run executes the full pipeline: buffered price fetch, weekly resample,
// headline scoring, weekly aggregation, signal generation and the
// backtest itself, plus the benchmark leg.
func (r *Runner) Run(ctx context.Context, req Request) (*models.BacktestRun, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	params := r.cfg.RunParams()
	if req.Params != nil {
		params = *req.Params
	}

	metrics := observability.GetMetrics()
	metrics.RecordBacktestRequest(req.Ticker)
	timer := metrics.NewTimer()

	run, err := r.run(ctx, req, params)
	if err != nil {
		timer.ObserveBacktest(req.Ticker, "error")
		metrics.RecordBacktestError(req.Ticker, errorType(err))
		return nil, err
	}

	timer.ObserveBacktest(req.Ticker, "success")
	metrics.RecordBacktestWeeks(req.Ticker, len(run.Result.Weeks))
	return run, nil
}

func (r *Runner) run(ctx context.Context, req Request, params models.RunParams) (*models.BacktestRun, error) {
	log := observability.WithTicker(req.Ticker)

	weekly, err := r.weeklyPrices(ctx, req.Ticker, req.Start, req.End, params.MovingAverageWindow)
	if err != nil {
		return nil, err
	}
	log.Info("weekly price series built", "weeks", len(weekly))

	sents, err := r.weeklySentiment(ctx, req.Ticker, req.Start, req.End, params.MinHeadlines)
	if err != nil {
		return nil, err
	}

	joined := strategy.JoinWeekly(weekly, sents)
	signals := strategy.ComputeSignals(joined, strategy.Params{
		EntryExtThr:  params.EntryExtThr,
		NegThr:       params.NegThr,
		ExitExtThr:   params.ExitExtThr,
		PosThr:       params.PosThr,
		MinHeadlines: params.MinHeadlines,
	})
	positions := strategy.BuildPositions(signals)

	assetReturns := pricing.WeeklyReturns(weekly)
	benchReturns, err := r.benchmarkReturns(ctx, params, weekly)
	if err != nil {
		return nil, err
	}

	result, err := backtest.Run(positions, assetReturns, benchReturns, params.CostBps)
	if err != nil {
		return nil, err
	}

	run := &models.BacktestRun{
		ID:        uuid.New(),
		Ticker:    req.Ticker,
		Start:     req.Start,
		End:       req.End,
		Params:    params,
		Result:    result,
		CreatedAt: time.Now().UTC(),
	}

	if r.store != nil {
		if err := r.store.CreateBacktestRun(ctx, run); err != nil {
			// A completed run is still useful when persistence fails.
			observability.WithError(err).Warn("failed to persist backtest run", "run_id", run.ID)
		}
	}

	return run, nil
}

// weeklyPrices fetches daily bars with extra history before the range so
// the moving average is warm by the requested start, builds the weekly
// series and trims the warm-up weeks off.
func (r *Runner) weeklyPrices(ctx context.Context, ticker string, start, end time.Time, window int) ([]models.WeeklyPricePoint, error) {
	bufferedStart := start.AddDate(0, 0, -7*(window+r.cfg.Backtest.BufferWeeks))

	bars, err := r.prices.GetDailyBars(ctx, ticker, bufferedStart, end)
	if err != nil {
		return nil, fmt.Errorf("fetching daily bars for %s: %w", ticker, err)
	}

	weekly, err := pricing.BuildWeeklySeries(bars, window)
	if err != nil {
		return nil, fmt.Errorf("building weekly series for %s: %w", ticker, err)
	}

	weekly = pricing.TrimBefore(weekly, start)
	if len(weekly) == 0 {
		return nil, fmt.Errorf("%w: no weekly bars for %s in requested range", models.ErrInsufficientData, ticker)
	}
	return weekly, nil
}

// weeklySentiment fetches from every configured headline source, dedupes,
// scores and aggregates. A failing source is skipped; headline coverage
// is best-effort because weeks without enough headlines simply never
// signal.
func (r *Runner) weeklySentiment(ctx context.Context, ticker string, start, end time.Time, minHeadlines int) ([]models.WeeklySentiment, error) {
	var all []models.Headline
	for _, src := range r.headlines {
		hs, err := src.GetHeadlines(ctx, ticker, start, end)
		if err != nil {
			observability.WithError(err).Warn("headline source failed", "source", src.Name(), "ticker", ticker)
			continue
		}
		all = append(all, hs...)
	}

	deduped := news.Dedupe(all)
	scored, err := sentiment.ScoreAll(ctx, r.classifier, deduped, r.cfg.Scoring.Concurrency)
	if err != nil {
		return nil, fmt.Errorf("scoring headlines for %s: %w", ticker, err)
	}

	return sentiment.AggregateWeekly(scored, minHeadlines, r.cutover()), nil
}

// benchmarkReturns builds the benchmark's weekly returns on the same
// date grid as the asset series. Every asset week must exist in the
// benchmark series.
func (r *Runner) benchmarkReturns(ctx context.Context, params models.RunParams, assetWeeks []models.WeeklyPricePoint) ([]models.WeeklyReturn, error) {
	start := assetWeeks[0].WeekEnd
	end := assetWeeks[len(assetWeeks)-1].WeekEnd

	// One extra week of history so the first week has a prior close and
	// a real return instead of the leading zero.
	bars, err := r.prices.GetDailyBars(ctx, params.BenchmarkTicker, start.AddDate(0, 0, -14), end)
	if err != nil {
		return nil, fmt.Errorf("fetching benchmark bars for %s: %w", params.BenchmarkTicker, err)
	}

	weekly, err := pricing.BuildWeeklySeries(bars, 1)
	if err != nil {
		return nil, fmt.Errorf("building benchmark series for %s: %w", params.BenchmarkTicker, err)
	}

	byWeek := make(map[time.Time]float64, len(weekly))
	for _, ret := range pricing.WeeklyReturns(weekly) {
		byWeek[ret.WeekEnd] = ret.Return
	}

	aligned := make([]models.WeeklyReturn, len(assetWeeks))
	for i, w := range assetWeeks {
		ret, ok := byWeek[w.WeekEnd]
		if !ok {
			return nil, fmt.Errorf("%w: benchmark %s missing week %s",
				models.ErrMisalignedSeries, params.BenchmarkTicker, w.WeekEnd.Format("2006-01-02"))
		}
		aligned[i] = models.WeeklyReturn{WeekEnd: w.WeekEnd, Return: ret}
	}
	return aligned, nil
}

func (r *Runner) cutover() sentiment.Cutover {
	loc, err := time.LoadLocation(r.cfg.Scoring.Timezone)
	if err != nil {
		loc = time.UTC
	}
	return sentiment.Cutover{
		Hour:     r.cfg.Scoring.CutoverHour,
		Minute:   r.cfg.Scoring.CutoverMinute,
		Location: loc,
	}
}

func validate(req Request) error {
	if req.Ticker == "" {
		return fmt.Errorf("%w: ticker is required", models.ErrInvalidRequest)
	}
	if req.Start.IsZero() || req.End.IsZero() {
		return fmt.Errorf("%w: start and end are required", models.ErrInvalidRequest)
	}
	if !req.Start.Before(req.End) {
		return fmt.Errorf("%w: start %s must be before end %s", models.ErrInvalidRequest,
			req.Start.Format("2006-01-02"), req.End.Format("2006-01-02"))
	}
	return nil
}

func errorType(err error) string {
	switch {
	case errors.Is(err, models.ErrDataUnavailable):
		return "data_unavailable"
	case errors.Is(err, models.ErrInsufficientData):
		return "insufficient_data"
	case errors.Is(err, models.ErrScoring):
		return "scoring"
	case errors.Is(err, models.ErrMisalignedSeries):
		return "misaligned_series"
	case errors.Is(err, models.ErrInvalidRequest):
		return "invalid_request"
	default:
		return "internal"
	}
}
