package models

import "errors"

// Pipeline error taxonomy. Callers classify with errors.Is; stages wrap
// these with fmt.Errorf("...: %w", ...) to add context.
var (
	// ErrDataUnavailable indicates an upstream fetch failed or returned
	// empty where data is mandatory. Not retried internally.
	ErrDataUnavailable = errors.New("data unavailable")

	// ErrInsufficientData indicates too few price points to compute any
	// weekly point. Fatal for the run.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrScoring indicates malformed classifier output for one headline.
	// The headline is excluded from aggregation; the run continues.
	ErrScoring = errors.New("scoring failed")

	// ErrMisalignedSeries indicates a date-grid mismatch between series
	// that must share an identical ordered set of week-ending dates.
	// Fatal: it signals a pipeline bug and is never patched by reindexing.
	ErrMisalignedSeries = errors.New("misaligned series")

	// ErrInvalidRequest indicates a malformed backtest request, rejected
	// before any data is fetched.
	ErrInvalidRequest = errors.New("invalid request")
)
