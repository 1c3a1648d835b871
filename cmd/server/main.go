package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/garnizeh/jobpulse/api"
	"github.com/garnizeh/jobpulse/db"
	"github.com/garnizeh/jobpulse/internal/advisor"
	"github.com/garnizeh/jobpulse/internal/analytics"
	"github.com/garnizeh/jobpulse/internal/collectors"
	"github.com/garnizeh/jobpulse/internal/config"
	idb "github.com/garnizeh/jobpulse/internal/db"
	"github.com/garnizeh/jobpulse/internal/repository/sqlite"
	"github.com/garnizeh/jobpulse/internal/scheduler"
	"github.com/garnizeh/jobpulse/internal/vectorstore"
	"github.com/garnizeh/jobpulse/pkg/ollama"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	var configPath = flag.String("config", "", "Path to config YAML file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)
	ollama.SetLogger(logger)
	api.SetLogger(logger)

	log.Printf("Starting jobpulse server version %s (built at %s)", version, buildTime)

	ctx := context.Background()

	// Open database connection
	conn, err := idb.New(ctx, cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}

	if err := idb.Migrate(ctx, conn, db.Migrations); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	llm, err := ollama.NewDefaultClient(cfg.Ollama)
	if err != nil {
		log.Fatalf("Failed to create Ollama client: %v", err)
	}

	store := sqlite.New(conn, logger)
	embedder := ollama.NewTextEmbedder(llm, cfg.Ollama.EmbedModel)
	index := vectorstore.NewIndex(conn, embedder, logger)
	engine := analytics.NewEngine(store, logger)

	// The advisor needs a chat model; with none configured the server
	// still serves storage, search and analytics.
	var adv *advisor.Advisor
	if cfg.Ollama.ChatModel != "" {
		adv, err = advisor.New(llm, cfg.Ollama.ChatModel, index, store, logger)
		if err != nil {
			log.Fatalf("Failed to create advisor: %v", err)
		}
	} else {
		logger.Warn("no chat model configured, advisor endpoints disabled")
	}

	manager := collectors.NewManager(store, index, logger)
	for _, source := range cfg.Collectors.Sources {
		switch source {
		case "sample":
			manager.Add(collectors.NewSampleCollector(cfg.Collectors.SampleCount))
		case "remotive":
			manager.Add(collectors.NewRemotiveCollector(nil, 50, logger))
		case "arbeitnow":
			manager.Add(collectors.NewArbeitnowCollector(5, logger))
		default:
			logger.Warn("unknown collector source", "source", source)
		}
	}

	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		sched = scheduler.New(manager, cfg.Scheduler.IntervalHours, logger)
		if err := sched.Start(ctx); err != nil {
			log.Fatalf("Failed to start scheduler: %v", err)
		}
	}

	handler := api.SetupRoutes(cfg, version, buildTime, api.Deps{
		Store:   store,
		Index:   index,
		Users:   store,
		Engine:  engine,
		Advisor: adv,
		Manager: manager,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.APITimeout,
		WriteTimeout: cfg.APITimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on %s", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	if sched != nil {
		sched.Stop()
	}

	// Give outstanding requests 30 seconds to complete
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	if err := llm.Close(); err != nil {
		log.Printf("Error closing Ollama client: %v", err)
	}

	// Close database connection
	if err := conn.Close(); err != nil {
		log.Printf("Error closing DB: %v", err)
	}

	log.Println("Server exited")
}
