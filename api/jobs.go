package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/garnizeh/jobpulse/pkg/models"
	"github.com/garnizeh/jobpulse/pkg/repository"
)

type JobsHandler struct {
	store repository.JobStore
	index repository.VectorIndex
}

func NewJobsHandler(store repository.JobStore, index repository.VectorIndex) *JobsHandler {
	return &JobsHandler{store: store, index: index}
}

type jobListResponse struct {
	Jobs  []*models.JobRecord `json:"jobs"`
	Count int                 `json:"count"`
}

// ListJobs handles filtered keyword search over the relational store.
// All filters are optional and combine conjunctively.
func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filters := models.SearchFilters{
		Query:           q.Get("q"),
		Company:         q.Get("company"),
		Location:        q.Get("location"),
		ExperienceLevel: q.Get("experience_level"),
		RemoteOnly:      q.Get("remote_only") == "true",
	}
	if skills := q.Get("skills"); skills != "" {
		for _, s := range strings.Split(skills, ",") {
			if s = strings.TrimSpace(s); s != "" {
				filters.Skills = append(filters.Skills, s)
			}
		}
	}
	if raw := q.Get("min_salary"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 {
			http.Error(w, "invalid min_salary", http.StatusBadRequest)
			return
		}
		filters.MinSalary = v
	}
	if raw := q.Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 && v <= 500 {
			filters.Limit = v
		}
	}

	jobs, err := h.store.Search(r.Context(), filters)
	if err != nil {
		http.Error(w, "search failed", http.StatusInternalServerError)
		return
	}
	if jobs == nil {
		jobs = []*models.JobRecord{}
	}
	writeJSON(w, jobListResponse{Jobs: jobs, Count: len(jobs)}, http.StatusOK)
}

func (h *JobsHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	job, err := h.store.Get(r.Context(), id)
	if err != nil {
		http.Error(w, "lookup failed", http.StatusInternalServerError)
		return
	}
	if job == nil {
		http.Error(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, job, http.StatusOK)
}

type semanticResponse struct {
	Results []models.SearchResult `json:"results"`
	Count   int                   `json:"count"`
}

// SemanticSearch handles nearest-neighbor search over the vector index with
// optional metadata filters.
func (h *JobsHandler) SemanticSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	query := strings.TrimSpace(q.Get("q"))
	if query == "" {
		http.Error(w, "q is required", http.StatusBadRequest)
		return
	}

	n := 10
	if raw := q.Get("n"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 && v <= 100 {
			n = v
		}
	}

	filters := models.SemanticFilters{
		ExperienceLevel: q.Get("experience_level"),
		RemoteOnly:      q.Get("remote_only") == "true",
	}
	if raw := q.Get("min_salary"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 {
			http.Error(w, "invalid min_salary", http.StatusBadRequest)
			return
		}
		filters.MinSalary = v
	}

	results, err := h.index.Search(r.Context(), query, n, filters)
	if err != nil {
		logger.Error("semantic search failed", "error", err)
		http.Error(w, "semantic search failed", http.StatusInternalServerError)
		return
	}
	if results == nil {
		results = []models.SearchResult{}
	}
	writeJSON(w, semanticResponse{Results: results, Count: len(results)}, http.StatusOK)
}

// SimilarJobs returns postings whose documents are nearest to the given job.
func (h *JobsHandler) SimilarJobs(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	n := 5
	if raw := r.URL.Query().Get("n"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 && v <= 50 {
			n = v
		}
	}

	results, err := h.index.FindSimilar(r.Context(), id, n)
	if err != nil {
		http.Error(w, "similar lookup failed", http.StatusInternalServerError)
		return
	}
	if results == nil {
		results = []models.SearchResult{}
	}
	writeJSON(w, semanticResponse{Results: results, Count: len(results)}, http.StatusOK)
}

func (h *JobsHandler) StoreStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.Stats(r.Context())
	if err != nil {
		http.Error(w, "stats failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, stats, http.StatusOK)
}

func (h *JobsHandler) IndexStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.index.Stats(r.Context())
	if err != nil {
		http.Error(w, "stats failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, stats, http.StatusOK)
}
