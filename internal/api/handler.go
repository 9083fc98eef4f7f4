package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"sentiment-edge/config"
	"sentiment-edge/models"
	"sentiment-edge/runner"
	"sentiment-edge/services"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// BacktestRunner executes backtest requests. *runner.Runner satisfies it.
type BacktestRunner interface {
	Run(ctx context.Context, req runner.Request) (*models.BacktestRun, error)
}

// RunStore reads persisted runs. *repository.Repository satisfies it.
type RunStore interface {
	GetBacktestRun(ctx context.Context, id uuid.UUID) (*models.BacktestRun, error)
	ListBacktestRuns(ctx context.Context, ticker string, limit int) ([]models.BacktestRun, error)
	Health(ctx context.Context) error
}

// Handler handles HTTP API requests
type Handler struct {
	runner BacktestRunner
	store  RunStore
	cfg    *config.Config
}

// NewHandler creates a new Handler. store may be nil when no database is
// configured.
func NewHandler(r BacktestRunner, store RunStore, cfg *config.Config) *Handler {
	return &Handler{runner: r, store: store, cfg: cfg}
}

// backtestRequest is the POST /api/backtest payload. Dates use
// YYYY-MM-DD. Params is optional; omitted fields fall back to configured
// defaults only when the whole object is absent.
type backtestRequest struct {
	Ticker string            `json:"ticker"`
	Start  string            `json:"start"`
	End    string            `json:"end"`
	Params *models.RunParams `json:"params,omitempty"`
}

// HandleRunBacktest executes a backtest synchronously and returns the
// full run including the result payload.
func (h *Handler) HandleRunBacktest(w http.ResponseWriter, r *http.Request) {
	var req backtestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.jsonError(w, "Invalid JSON request", http.StatusBadRequest)
		return
	}

	start, err := time.Parse("2006-01-02", req.Start)
	if err != nil {
		h.jsonError(w, "start must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	end, err := time.Parse("2006-01-02", req.End)
	if err != nil {
		h.jsonError(w, "end must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	run, err := h.runner.Run(r.Context(), runner.Request{
		Ticker: req.Ticker,
		Start:  start,
		End:    end,
		Params: req.Params,
	})
	if err != nil {
		h.jsonError(w, err.Error(), backtestErrorStatus(err))
		return
	}

	h.jsonResponse(w, run)
}

// HandleGetBacktests returns recent runs without result payloads
func (h *Handler) HandleGetBacktests(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		h.jsonError(w, "Persistence not configured", http.StatusServiceUnavailable)
		return
	}

	limit := h.ParseLimitParam(r, 50)
	ticker := r.URL.Query().Get("ticker")

	runs, err := h.store.ListBacktestRuns(r.Context(), ticker, limit)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.jsonResponse(w, map[string]interface{}{
		"runs":  runs,
		"count": len(runs),
	})
}

// HandleGetBacktest returns a single run by ID including its result
func (h *Handler) HandleGetBacktest(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		h.jsonError(w, "Persistence not configured", http.StatusServiceUnavailable)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.jsonError(w, "Invalid run ID", http.StatusBadRequest)
		return
	}

	run, err := h.store.GetBacktestRun(r.Context(), id)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if run == nil {
		h.jsonError(w, "Run not found", http.StatusNotFound)
		return
	}

	h.jsonResponse(w, run)
}

// HandleHealth returns the health status of the application
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status": "ok",
		"services": map[string]string{
			"database": "unknown",
		},
	}

	if h.store != nil {
		if err := h.store.Health(r.Context()); err == nil {
			status["services"].(map[string]string)["database"] = "connected"
		} else {
			status["services"].(map[string]string)["database"] = "disconnected"
			status["status"] = "degraded"
		}
	} else {
		status["services"].(map[string]string)["database"] = "not_configured"
	}

	// Add circuit breaker status
	cbStatus := services.GetGlobalRegistry().Status()
	status["circuit_breakers"] = cbStatus

	// Check if any breakers are open (degraded state)
	for _, cb := range cbStatus {
		if cb.State == "open" {
			status["status"] = "degraded"
			break
		}
	}

	h.jsonResponse(w, status)
}

// backtestErrorStatus maps pipeline errors to HTTP status codes. Upstream
// data problems are the client's input problem, not a server fault.
func backtestErrorStatus(err error) int {
	switch {
	case errors.Is(err, models.ErrDataUnavailable),
		errors.Is(err, models.ErrInsufficientData):
		return http.StatusUnprocessableEntity
	case errors.Is(err, models.ErrScoring),
		errors.Is(err, models.ErrMisalignedSeries):
		return http.StatusBadGateway
	case errors.Is(err, models.ErrInvalidRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// ParseLimitParam parses the limit query parameter with a default
func (h *Handler) ParseLimitParam(r *http.Request, defaultLimit int) int {
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			return l
		}
	}
	return defaultLimit
}

func (h *Handler) jsonResponse(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) jsonError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
