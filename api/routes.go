package api

import (
	"github.com/gorilla/mux"

	"github.com/garnizeh/jobpulse/internal/advisor"
	"github.com/garnizeh/jobpulse/internal/analytics"
	"github.com/garnizeh/jobpulse/internal/collectors"
	"github.com/garnizeh/jobpulse/internal/config"
	"github.com/garnizeh/jobpulse/pkg/repository"
)

// Deps carries the long-lived components the handlers close over. They are
// constructed once at process start and injected here; handlers never build
// their own stores.
type Deps struct {
	Store   repository.JobStore
	Index   repository.VectorIndex
	Users   repository.UserStore
	Engine  *analytics.Engine
	Advisor *advisor.Advisor    // nil when no chat model is configured
	Manager *collectors.Manager // nil when no collectors are configured
}

func SetupRoutes(cfg *config.Config, version, buildTime string, deps Deps) *mux.Router {
	r := mux.NewRouter()

	// Middleware chain
	r.Use(LoggingMiddleware)
	r.Use(CORSMiddleware)
	r.Use(RecoveryMiddleware)

	// Create handlers
	systemHandler := &SystemHandler{}
	authHandler := NewAuthHandler(deps.Users, cfg.JWTSecret, cfg.TokenDuration)
	jobsHandler := NewJobsHandler(deps.Store, deps.Index)
	analyticsHandler := NewAnalyticsHandler(deps.Engine)
	advisorHandler := NewAdvisorHandler(deps.Advisor)
	adminHandler := NewAdminHandler(deps.Store, deps.Index, deps.Manager)

	// Open endpoints
	r.HandleFunc("/version", systemHandler.VersionHandler(version, buildTime)).Methods("GET")
	r.HandleFunc("/health", systemHandler.HealthHandler).Methods("GET")
	r.HandleFunc("/v1/auth/signup", authHandler.Signup).Methods("POST")
	r.HandleFunc("/v1/auth/signin", authHandler.Signin).Methods("POST")

	// Read endpoints
	r.HandleFunc("/v1/jobs", jobsHandler.ListJobs).Methods("GET")
	r.HandleFunc("/v1/jobs/{id}", jobsHandler.GetJob).Methods("GET")
	r.HandleFunc("/v1/jobs/{id}/similar", jobsHandler.SimilarJobs).Methods("GET")
	r.HandleFunc("/v1/search/semantic", jobsHandler.SemanticSearch).Methods("GET")
	r.HandleFunc("/v1/stats", jobsHandler.StoreStats).Methods("GET")
	r.HandleFunc("/v1/stats/vector", jobsHandler.IndexStats).Methods("GET")
	r.HandleFunc("/v1/analytics/report", analyticsHandler.MarketReport).Methods("GET")
	r.HandleFunc("/v1/analytics/roles/compare", analyticsHandler.CompareRoles).Methods("GET")
	r.HandleFunc("/v1/advisor/ask", advisorHandler.Ask).Methods("POST")
	r.HandleFunc("/v1/advisor/skills", advisorHandler.RecommendSkills).Methods("POST")

	// Protected routes
	protected := r.PathPrefix("/v1").Subrouter()
	protected.Use(JWTAuthMiddlewareWithSecret(cfg.JWTSecret))
	protected.HandleFunc("/auth/signout", authHandler.Signout).Methods("POST")
	protected.HandleFunc("/admin/refresh", adminHandler.Refresh).Methods("POST")
	protected.HandleFunc("/admin/clear", adminHandler.Clear).Methods("POST")

	return r
}
