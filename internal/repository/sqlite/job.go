package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/garnizeh/jobpulse/pkg/models"
)

// Insert stores the record with insert-or-ignore semantics and writes one
// (job_id, skill) row per skill when the main row actually landed. Storage
// errors are logged and reported as "not inserted" rather than propagated.
func (s *Store) Insert(ctx context.Context, j *models.JobRecord) bool {
	if j == nil {
		return false
	}

	skillsJSON, err := json.Marshal(j.Skills)
	if err != nil {
		s.logger.Error("marshal skills", "id", j.ID, "err", err)
		return false
	}

	var postedDate any
	if j.PostedDate != nil {
		postedDate = j.PostedDate.UTC().Format(time.RFC3339)
	}

	res, err := s.conn.Exec(ctx, `INSERT OR IGNORE INTO jobs
		(id, title, company, location, description, salary_min, salary_max,
		 salary_currency, job_type, experience_level, remote, skills,
		 source, url, posted_date, scraped_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		j.ID, j.Title, j.Company, j.Location, j.Description,
		j.SalaryMin, j.SalaryMax, j.SalaryCurrency, j.JobType,
		j.ExperienceLevel, boolToInt(j.Remote), string(skillsJSON),
		j.Source, nullableString(j.URL), postedDate,
		j.ScrapedAt.UTC().Format(time.RFC3339))
	if err != nil {
		s.logger.Error("insert job", "id", j.ID, "err", err)
		return false
	}

	n, err := res.RowsAffected()
	if err != nil {
		s.logger.Error("insert job rows affected", "id", j.ID, "err", err)
		return false
	}
	if n == 0 {
		// duplicate id, nothing written
		return false
	}

	for _, skill := range j.Skills {
		if _, err := s.conn.Exec(ctx, `INSERT INTO job_skills (job_id, skill) VALUES (?, ?)`, j.ID, strings.ToLower(skill)); err != nil {
			s.logger.Error("insert job skill", "id", j.ID, "skill", skill, "err", err)
		}
	}

	return true
}

// InsertMany applies Insert per record and reports (inserted, skipped).
// Not atomic as a whole: a failure partway leaves prior records committed.
func (s *Store) InsertMany(ctx context.Context, jobs []*models.JobRecord) (int, int) {
	inserted, skipped := 0, 0
	for _, j := range jobs {
		if s.Insert(ctx, j) {
			inserted++
		} else {
			skipped++
		}
	}
	s.logger.Info("bulk insert finished", "inserted", inserted, "skipped", skipped)
	return inserted, skipped
}

// Get returns a single record by id, or nil when absent.
func (s *Store) Get(ctx context.Context, id string) (*models.JobRecord, error) {
	row := s.conn.QueryRow(ctx, selectJobColumns+` FROM jobs WHERE id = ?`, id)
	j, err := scanJob(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return j, nil
}

const selectJobColumns = `SELECT id, title, company, location, description,
	salary_min, salary_max, salary_currency, job_type, experience_level,
	remote, skills, source, url, posted_date, scraped_at`

// Search returns records matching all set filters, most recently scraped
// first. The limit is applied before the skills post-filter, so the
// effective returned count may be smaller than the limit when a skill
// filter is present.
func (s *Store) Search(ctx context.Context, f models.SearchFilters) ([]*models.JobRecord, error) {
	conditions := []string{}
	params := []any{}

	if f.Query != "" {
		conditions = append(conditions, "(title LIKE ? OR description LIKE ? OR company LIKE ?)")
		like := "%" + f.Query + "%"
		params = append(params, like, like, like)
	}
	if f.Company != "" {
		conditions = append(conditions, "company LIKE ?")
		params = append(params, "%"+f.Company+"%")
	}
	if f.Location != "" {
		conditions = append(conditions, "location LIKE ?")
		params = append(params, "%"+f.Location+"%")
	}
	if f.ExperienceLevel != "" {
		conditions = append(conditions, "experience_level = ?")
		params = append(params, f.ExperienceLevel)
	}
	if f.RemoteOnly {
		conditions = append(conditions, "remote = 1")
	}
	if f.MinSalary > 0 {
		conditions = append(conditions, "salary_min >= ?")
		params = append(params, f.MinSalary)
	}

	query := selectJobColumns + " FROM jobs"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	query += " ORDER BY scraped_at DESC LIMIT ?"
	params = append(params, limit)

	rows, err := s.conn.QueryRows(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("search jobs: %w", err)
	}
	defer rows.Close()

	var out []*models.JobRecord
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// skill membership is a post-filter over the JSON skill set: a record
	// matches when it has at least one of the requested skills
	if len(f.Skills) > 0 {
		filtered := out[:0]
		for _, j := range out {
			for _, want := range f.Skills {
				if j.HasSkill(want) {
					filtered = append(filtered, j)
					break
				}
			}
		}
		out = filtered
	}

	return out, nil
}

// All returns up to limit records, most recently scraped first.
func (s *Store) All(ctx context.Context, limit int) ([]*models.JobRecord, error) {
	if limit <= 0 {
		limit = 1000
	}
	return s.Search(ctx, models.SearchFilters{Limit: limit})
}

// Clear irreversibly deletes all records and skill rows.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.conn.Exec(ctx, `DELETE FROM job_skills`); err != nil {
		return fmt.Errorf("clear job_skills: %w", err)
	}
	if _, err := s.conn.Exec(ctx, `DELETE FROM jobs`); err != nil {
		return fmt.Errorf("clear jobs: %w", err)
	}
	s.logger.Info("all job data cleared")
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*models.JobRecord, error) {
	var (
		j          models.JobRecord
		salaryMin  sql.NullFloat64
		salaryMax  sql.NullFloat64
		location   sql.NullString
		desc       sql.NullString
		currency   sql.NullString
		jobType    sql.NullString
		expLevel   sql.NullString
		remote     sql.NullInt64
		skillsJSON sql.NullString
		source     sql.NullString
		url        sql.NullString
		postedDate sql.NullString
		scrapedAt  sql.NullString
	)

	if err := row.Scan(&j.ID, &j.Title, &j.Company, &location, &desc,
		&salaryMin, &salaryMax, &currency, &jobType, &expLevel,
		&remote, &skillsJSON, &source, &url, &postedDate, &scrapedAt); err != nil {
		return nil, err
	}

	j.Location = location.String
	j.Description = desc.String
	j.SalaryCurrency = currency.String
	j.JobType = jobType.String
	j.ExperienceLevel = expLevel.String
	j.Remote = remote.Int64 == 1
	j.Source = source.String
	j.URL = url.String

	if salaryMin.Valid {
		v := salaryMin.Float64
		j.SalaryMin = &v
	}
	if salaryMax.Valid {
		v := salaryMax.Float64
		j.SalaryMax = &v
	}
	if skillsJSON.Valid && skillsJSON.String != "" {
		if err := json.Unmarshal([]byte(skillsJSON.String), &j.Skills); err != nil {
			return nil, fmt.Errorf("unmarshal skills for %s: %w", j.ID, err)
		}
	}
	if postedDate.Valid && postedDate.String != "" {
		t, err := time.Parse(time.RFC3339, postedDate.String)
		if err == nil {
			j.PostedDate = &t
		}
	}
	if scrapedAt.Valid && scrapedAt.String != "" {
		if t, err := time.Parse(time.RFC3339, scrapedAt.String); err == nil {
			j.ScrapedAt = t
		}
	}

	return &j, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
