package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/garnizeh/jobpulse/internal/advisor"
)

// AdvisorHandler fronts the retrieval-augmented advisor. adv may be nil when
// no chat model is configured; every endpoint then answers 503.
type AdvisorHandler struct {
	adv *advisor.Advisor
}

func NewAdvisorHandler(adv *advisor.Advisor) *AdvisorHandler {
	return &AdvisorHandler{adv: adv}
}

type askRequest struct {
	Question string `json:"question"`
}

type recommendRequest struct {
	CurrentSkills []string `json:"current_skills"`
	TargetRole    string   `json:"target_role"`
}

type advisorResponse struct {
	Answer string `json:"answer"`
}

func (h *AdvisorHandler) Ask(w http.ResponseWriter, r *http.Request) {
	if h.adv == nil {
		http.Error(w, "advisor is not configured", http.StatusServiceUnavailable)
		return
	}

	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	req.Question = strings.TrimSpace(req.Question)
	if req.Question == "" {
		http.Error(w, "question is required", http.StatusBadRequest)
		return
	}

	writeJSON(w, advisorResponse{Answer: h.adv.Ask(r.Context(), req.Question)}, http.StatusOK)
}

func (h *AdvisorHandler) RecommendSkills(w http.ResponseWriter, r *http.Request) {
	if h.adv == nil {
		http.Error(w, "advisor is not configured", http.StatusServiceUnavailable)
		return
	}

	var req recommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if len(req.CurrentSkills) == 0 || strings.TrimSpace(req.TargetRole) == "" {
		http.Error(w, "current_skills and target_role are required", http.StatusBadRequest)
		return
	}

	answer := h.adv.SkillRecommendations(r.Context(), req.CurrentSkills, req.TargetRole)
	writeJSON(w, advisorResponse{Answer: answer}, http.StatusOK)
}
