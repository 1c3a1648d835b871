package api

import (
	"net/http"
	"strings"

	"github.com/garnizeh/jobpulse/internal/analytics"
)

type AnalyticsHandler struct {
	engine *analytics.Engine
}

func NewAnalyticsHandler(engine *analytics.Engine) *AnalyticsHandler {
	return &AnalyticsHandler{engine: engine}
}

// MarketReport recomputes the full report on every call; there is no cache
// to invalidate after a refresh.
func (h *AnalyticsHandler) MarketReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.engine.Report(r.Context())
	if err != nil {
		logger.Error("market report failed", "error", err)
		http.Error(w, "report failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, report, http.StatusOK)
}

func (h *AnalyticsHandler) CompareRoles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	roleA := strings.TrimSpace(q.Get("a"))
	roleB := strings.TrimSpace(q.Get("b"))
	if roleA == "" || roleB == "" {
		http.Error(w, "a and b are required", http.StatusBadRequest)
		return
	}

	cmp, err := h.engine.RoleComparison(r.Context(), roleA, roleB)
	if err != nil {
		http.Error(w, "comparison failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, cmp, http.StatusOK)
}
