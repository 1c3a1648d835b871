package sqlite

import (
	"log/slog"
	"time"

	"github.com/garnizeh/jobpulse/internal/db"
	"github.com/garnizeh/jobpulse/pkg/repository"
)

// Store implements the job and user repositories on SQLite using the
// internal DB wrapper.
type Store struct {
	conn   *db.DB
	logger *slog.Logger
}

// Ensure Store implements the public interfaces.
var _ repository.JobStore = (*Store)(nil)
var _ repository.UserStore = (*Store)(nil)

func New(conn *db.DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{conn: conn, logger: logger}
}

func now() int64 {
	return time.Now().UTC().UnixMilli()
}
