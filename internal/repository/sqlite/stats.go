package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	"github.com/garnizeh/jobpulse/pkg/models"
)

// Stats computes the aggregate snapshot of the store: total count, ranked
// group counts, remote split and mean salary bounds per experience level.
func (s *Store) Stats(ctx context.Context) (*models.StoredStats, error) {
	stats := &models.StoredStats{
		SalaryByExperience: make(map[string]models.SalaryBounds),
	}

	if err := s.conn.QueryRow(ctx, `SELECT COUNT(*) FROM jobs`).Scan(&stats.TotalJobs); err != nil {
		return nil, fmt.Errorf("count jobs: %w", err)
	}

	var err error
	stats.ByExperience, err = s.countGroup(ctx, `SELECT experience_level, COUNT(*) as count FROM jobs GROUP BY experience_level ORDER BY count DESC`)
	if err != nil {
		return nil, fmt.Errorf("count by experience: %w", err)
	}

	stats.TopCompanies, err = s.countGroup(ctx, `SELECT company, COUNT(*) as count FROM jobs GROUP BY company ORDER BY count DESC LIMIT 10`)
	if err != nil {
		return nil, fmt.Errorf("top companies: %w", err)
	}

	stats.TopSkills, err = s.countGroup(ctx, `SELECT skill, COUNT(*) as count FROM job_skills GROUP BY skill ORDER BY count DESC LIMIT 20`)
	if err != nil {
		return nil, fmt.Errorf("top skills: %w", err)
	}

	var remote, onsite sql.NullInt64
	err = s.conn.QueryRow(ctx, `SELECT
		SUM(CASE WHEN remote = 1 THEN 1 ELSE 0 END),
		SUM(CASE WHEN remote = 0 THEN 1 ELSE 0 END)
		FROM jobs`).Scan(&remote, &onsite)
	if err != nil {
		return nil, fmt.Errorf("remote split: %w", err)
	}
	stats.RemoteCount = int(remote.Int64)
	stats.OnSiteCount = int(onsite.Int64)

	rows, err := s.conn.QueryRows(ctx, `SELECT experience_level, AVG(salary_min), AVG(salary_max)
		FROM jobs WHERE salary_min IS NOT NULL GROUP BY experience_level`)
	if err != nil {
		return nil, fmt.Errorf("salary by experience: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var level sql.NullString
		var avgMin, avgMax sql.NullFloat64
		if err := rows.Scan(&level, &avgMin, &avgMax); err != nil {
			return nil, err
		}
		stats.SalaryByExperience[level.String] = models.SalaryBounds{
			Min: math.Round(avgMin.Float64),
			Max: math.Round(avgMax.Float64),
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}

func (s *Store) countGroup(ctx context.Context, query string) ([]models.CountEntry, error) {
	rows, err := s.conn.QueryRows(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.CountEntry
	for rows.Next() {
		var key sql.NullString
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return nil, err
		}
		out = append(out, models.CountEntry{Key: key.String, Count: count})
	}
	return out, rows.Err()
}
