package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/garnizeh/jobpulse/db"
	"github.com/garnizeh/jobpulse/internal/collectors"
	"github.com/garnizeh/jobpulse/internal/config"
	idb "github.com/garnizeh/jobpulse/internal/db"
	"github.com/garnizeh/jobpulse/internal/repository/sqlite"
	"github.com/garnizeh/jobpulse/internal/vectorstore"
	"github.com/garnizeh/jobpulse/pkg/ollama"
)

// One-shot collection run. Useful for seeding a fresh database or for
// cron-driven refreshes outside the server's own scheduler.
func main() {
	var (
		configPath = flag.String("config", "", "Path to config YAML file")
		sampleOnly = flag.Bool("sample", false, "Use only the sample generator")
		clear      = flag.Bool("clear", false, "Clear store and index before collecting")
		num        = flag.Int("num", 0, "Override the number of sample jobs")
	)
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}
	if *num > 0 {
		cfg.Collectors.SampleCount = *num
	}
	if *sampleOnly {
		cfg.Collectors.Sources = []string{"sample"}
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	ollama.SetLogger(logger)

	ctx := context.Background()

	conn, err := idb.New(ctx, cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	defer conn.Close()

	if err := idb.Migrate(ctx, conn, db.Migrations); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	llm, err := ollama.NewDefaultClient(cfg.Ollama)
	if err != nil {
		log.Fatalf("Failed to create Ollama client: %v", err)
	}
	defer llm.Close()

	store := sqlite.New(conn, logger)
	embedder := ollama.NewTextEmbedder(llm, cfg.Ollama.EmbedModel)
	index := vectorstore.NewIndex(conn, embedder, logger)

	if *clear {
		if err := store.Clear(ctx); err != nil {
			log.Fatalf("Failed to clear store: %v", err)
		}
		if err := index.Clear(ctx); err != nil {
			log.Fatalf("Failed to clear index: %v", err)
		}
		log.Println("Cleared existing jobs and vectors")
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
			log.Printf("Unknown collector source %q, skipping", source)
		}
	}

	stats, err := manager.Refresh(ctx)
	if err != nil {
		log.Fatalf("Refresh failed: %v", err)
	}

	log.Printf("Collected %d jobs: %d inserted, %d skipped, %d indexed (%d sources failed)",
		stats.Collected, stats.Inserted, stats.Skipped, stats.Indexed, stats.FailedSources)
}
