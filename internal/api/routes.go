package api

import (
	"net/http"
	"time"

	"sentiment-edge/config"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter builds the chi router with the full middleware stack and
// all API routes.
func NewRouter(h *Handler, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	// The request timeout must cover a full backtest run, which can take
	// minutes when headline scoring goes through a remote model.
	r.Use(middleware.Timeout(time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second))
	r.Use(CORSMiddleware(cfg.HTTP.CORSAllowedOrigins))
	r.Use(MetricsMiddleware)

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.HandleHealth)

		r.Post("/backtest", h.HandleRunBacktest)
		r.Route("/backtests", func(r chi.Router) {
			r.Get("/", h.HandleGetBacktests)
			r.Get("/{id}", h.HandleGetBacktest)
		})
	})

	return r
}

// CORSMiddleware sets the CORS headers and short-circuits preflight
// requests.
func CORSMiddleware(allowedOrigins string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", allowedOrigins)
			h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
