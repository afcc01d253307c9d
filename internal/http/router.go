// Package http assembles the service's HTTP surface: middleware chain,
// domain routes under /api/v1, and the operational endpoints.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"locadora/internal/audit"
	"locadora/internal/http/shared"
	"locadora/internal/platform/metrics"
	"locadora/internal/platform/middleware"
)

// Registrar is implemented by the per-area handlers.
type Registrar interface {
	Register(r chi.Router)
}

type RouterConfig struct {
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
	Audit    *audit.Publisher
	Timeout  time.Duration
	Handlers []Registrar
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Latency(cfg.Metrics))
	if cfg.Timeout > 0 {
		r.Use(middleware.Timeout(cfg.Timeout))
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		shared.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(middleware.ContentTypeJSON)
		for _, h := range cfg.Handlers {
			h.Register(api)
		}
		api.Get("/audit/events", auditEventsHandler(cfg.Audit))
	})

	return r
}

const auditListLimit = 100

func auditEventsHandler(pub *audit.Publisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		events, err := pub.List(r.Context(), auditListLimit)
		if err != nil {
			shared.WriteError(w, err)
			return
		}
		out := make([]auditEventResponse, 0, len(events))
		for _, ev := range events {
			resp := auditEventResponse{
				Timestamp: ev.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
				Action:    string(ev.Action),
				RequestID: ev.RequestID,
			}
			if !ev.UserID.IsNil() {
				resp.UserID = ev.UserID.String()
			}
			if !ev.ItemID.IsNil() {
				resp.ItemID = ev.ItemID.String()
			}
			if !ev.LoanID.IsNil() {
				resp.LoanID = ev.LoanID.String()
			}
			if ev.Amount.IsPositive() {
				resp.Amount = ev.Amount.StringFixed(2)
			}
			out = append(out, resp)
		}
		shared.WriteJSON(w, http.StatusOK, out)
	}
}

type auditEventResponse struct {
	Timestamp string `json:"timestamp"`
	Action    string `json:"action"`
	UserID    string `json:"user_id,omitempty"`
	ItemID    string `json:"item_id,omitempty"`
	LoanID    string `json:"loan_id,omitempty"`
	Amount    string `json:"amount,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}
