package handler

import (
	"log/slog"
	"net/http"

	"github.com/pokerledger/tracker/internal/analytics"
	"github.com/pokerledger/tracker/internal/service"
)

// StatsHandler serves the analytics report.
type StatsHandler struct {
	svc    *service.SessionService
	logger *slog.Logger
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(svc *service.SessionService, logger *slog.Logger) *StatsHandler {
	return &StatsHandler{svc: svc, logger: logger}
}

// Report handles GET /stats?from=&to=&type=&venue=&mental=&event=.
// Empty or ALL values leave a predicate off.
func (h *StatsHandler) Report(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := analytics.Filter{
		From:        q.Get("from"),
		To:          q.Get("to"),
		SessionType: q.Get("type"),
		Venue:       q.Get("venue"),
		MentalState: q.Get("mental"),
		EventKey:    q.Get("event"),
	}

	report, err := h.svc.Report(r.Context(), f)
	if err != nil {
		h.logger.Warn("compute report", "error", err, "request_id", GetRequestID(r.Context()))
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, report)
}
