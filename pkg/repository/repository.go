package repository

import (
	"context"

	"github.com/garnizeh/jobpulse/pkg/models"
)

// Repository interfaces for the job stores. These are the public contracts
// consumers should depend on; concrete implementations live under internal/.

// JobStore is the durable relational store for job records.
type JobStore interface {
	// Insert stores the record unless its id is already present. Storage
	// failures are absorbed and reported as "not inserted"; callers cannot
	// distinguish a duplicate from a write failure from the return value.
	Insert(ctx context.Context, j *models.JobRecord) bool
	// InsertMany applies Insert per record. Not atomic as a whole; a failure
	// partway leaves prior records committed.
	InsertMany(ctx context.Context, jobs []*models.JobRecord) (inserted, skipped int)
	Get(ctx context.Context, id string) (*models.JobRecord, error)
	Search(ctx context.Context, f models.SearchFilters) ([]*models.JobRecord, error)
	All(ctx context.Context, limit int) ([]*models.JobRecord, error)
	Stats(ctx context.Context) (*models.StoredStats, error)
	// Clear irreversibly deletes all records and skill rows.
	Clear(ctx context.Context) error
}

// VectorIndex is the semantic search index over job records.
type VectorIndex interface {
	AddMany(ctx context.Context, jobs []*models.JobRecord) (added, skipped int, err error)
	Search(ctx context.Context, query string, n int, f models.SemanticFilters) ([]models.SearchResult, error)
	FindSimilar(ctx context.Context, id string, n int) ([]models.SearchResult, error)
	Stats(ctx context.Context) (*models.IndexStats, error)
	Clear(ctx context.Context) error
}

// UserStore persists API accounts.
type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) (int64, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}
