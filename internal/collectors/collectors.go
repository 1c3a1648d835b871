package collectors

import (
	"context"
	"log/slog"

	"github.com/garnizeh/jobpulse/pkg/models"
	"github.com/garnizeh/jobpulse/pkg/repository"
)

// Collector produces a finite batch of job records from one source.
type Collector interface {
	Collect(ctx context.Context) ([]*models.JobRecord, error)
	SourceName() string
}

// RefreshStats reports the outcome of one collection run.
type RefreshStats struct {
	Collected     int `json:"collected"`
	Inserted      int `json:"inserted"`
	Skipped       int `json:"skipped"`
	Indexed       int `json:"indexed"`
	IndexSkipped  int `json:"index_skipped"`
	FailedSources int `json:"failed_sources"`
}

// Manager coordinates collectors and writes their output to both stores.
type Manager struct {
	collectors []Collector
	store      repository.JobStore
	index      repository.VectorIndex
	logger     *slog.Logger
}

func NewManager(store repository.JobStore, index repository.VectorIndex, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{store: store, index: index, logger: logger}
}

func (m *Manager) Add(c Collector) {
	m.collectors = append(m.collectors, c)
	m.logger.Info("collectors: added", "source", c.SourceName())
}

// CollectAll runs every collector. A failing source contributes zero records
// and the run continues with the remaining sources.
func (m *Manager) CollectAll(ctx context.Context) ([]*models.JobRecord, int) {
	var all []*models.JobRecord
	failed := 0
	for _, c := range m.collectors {
		jobs, err := c.Collect(ctx)
		if err != nil {
			m.logger.Warn("collectors: source failed", "source", c.SourceName(), "error", err)
			failed++
			continue
		}
		m.logger.Info("collectors: collected", "source", c.SourceName(), "count", len(jobs))
		all = append(all, jobs...)
	}
	return all, failed
}

// Refresh collects from all sources and dual-writes the results: relational
// store first, then the semantic index. Salary bounds are normalized before
// any write so downstream aggregates can assume min <= max.
func (m *Manager) Refresh(ctx context.Context) (RefreshStats, error) {
	jobs, failed := m.CollectAll(ctx)
	stats := RefreshStats{Collected: len(jobs), FailedSources: failed}

	for _, j := range jobs {
		j.NormalizeSalary()
	}

	stats.Inserted, stats.Skipped = m.store.InsertMany(ctx, jobs)

	added, skippedIdx, err := m.index.AddMany(ctx, jobs)
	if err != nil {
		return stats, err
	}
	stats.Indexed, stats.IndexSkipped = added, skippedIdx

	m.logger.Info("collectors: refresh complete",
		"collected", stats.Collected,
		"inserted", stats.Inserted,
		"indexed", stats.Indexed,
		"failed_sources", stats.FailedSources)
	return stats, nil
}
