package models

import (
	"crypto/md5"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
)

// Experience levels recognized across the system.
const (
	LevelEntry     = "Entry"
	LevelMid       = "Mid"
	LevelSenior    = "Senior"
	LevelLead      = "Lead"
	LevelPrincipal = "Principal"
)

// ExperienceLevels lists the valid values for JobRecord.ExperienceLevel.
var ExperienceLevels = []string{LevelEntry, LevelMid, LevelSenior, LevelLead, LevelPrincipal}

// JobRecord is the canonical representation of one job posting. Records are
// created by a collector, persisted by the relational store and the vector
// index independently, and read-only afterwards.
type JobRecord struct {
	ID              string     `json:"id" db:"id"`
	Title           string     `json:"title" db:"title"`
	Company         string     `json:"company" db:"company"`
	Location        string     `json:"location" db:"location"`
	Description     string     `json:"description" db:"description"`
	SalaryMin       *float64   `json:"salary_min,omitempty" db:"salary_min"`
	SalaryMax       *float64   `json:"salary_max,omitempty" db:"salary_max"`
	SalaryCurrency  string     `json:"salary_currency" db:"salary_currency"`
	JobType         string     `json:"job_type" db:"job_type"`
	ExperienceLevel string     `json:"experience_level" db:"experience_level"`
	Remote          bool       `json:"remote" db:"remote"`
	Skills          []string   `json:"skills" db:"skills"`
	Source          string     `json:"source" db:"source"`
	URL             string     `json:"url,omitempty" db:"url"`
	PostedDate      *time.Time `json:"posted_date,omitempty" db:"posted_date"`
	ScrapedAt       time.Time  `json:"scraped_at" db:"scraped_at"`
}

// NewJobRecord creates a record with defaults applied and its id assigned.
// The id mixes the core fields with a random component, so it is unique per
// creation and never derived from content alone.
func NewJobRecord(title, company, location, description string) *JobRecord {
	sum := md5.Sum([]byte(title + company + location + uuid.NewString()))
	return &JobRecord{
		ID:              hex.EncodeToString(sum[:])[:16],
		Title:           title,
		Company:         company,
		Location:        location,
		Description:     description,
		SalaryCurrency:  "USD",
		JobType:         "Full-time",
		ExperienceLevel: LevelMid,
		Source:          "unknown",
		ScrapedAt:       time.Now().UTC(),
	}
}

// MeanSalary returns (min+max)/2 and whether both bounds are present.
func (j *JobRecord) MeanSalary() (float64, bool) {
	if j.SalaryMin == nil || j.SalaryMax == nil {
		return 0, false
	}
	return (*j.SalaryMin + *j.SalaryMax) / 2, true
}

// NormalizeSalary swaps inverted salary bounds so min <= max holds. The
// model does not enforce the ordering on its own; ingestion calls this
// before handing records to the stores.
func (j *JobRecord) NormalizeSalary() {
	if j.SalaryMin != nil && j.SalaryMax != nil && *j.SalaryMin > *j.SalaryMax {
		j.SalaryMin, j.SalaryMax = j.SalaryMax, j.SalaryMin
	}
}

// SearchFilters are the optional, conjunctive predicates accepted by the
// relational store's search. Zero values mean "no filter".
type SearchFilters struct {
	Query           string   `json:"query,omitempty"`
	Company         string   `json:"company,omitempty"`
	Location        string   `json:"location,omitempty"`
	Skills          []string `json:"skills,omitempty"`
	ExperienceLevel string   `json:"experience_level,omitempty"`
	RemoteOnly      bool     `json:"remote_only,omitempty"`
	MinSalary       float64  `json:"min_salary,omitempty"`
	Limit           int      `json:"limit,omitempty"`
}

// CountEntry is one bucket of a ranked group-by, ordered descending by count.
type CountEntry struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// SalaryBounds holds mean salary_min/salary_max for a group.
type SalaryBounds struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// StoredStats is a derived snapshot of the relational store. It is recomputed
// on demand and never persisted.
type StoredStats struct {
	TotalJobs          int                     `json:"total_jobs"`
	ByExperience       []CountEntry            `json:"by_experience"`
	TopCompanies       []CountEntry            `json:"top_companies"`
	TopSkills          []CountEntry            `json:"top_skills"`
	RemoteCount        int                     `json:"remote_count"`
	OnSiteCount        int                     `json:"onsite_count"`
	SalaryByExperience map[string]SalaryBounds `json:"salary_by_experience"`
}

// SearchResult is one semantic search hit: the stored document, its metadata
// bag and a similarity score in [0, 1]. Produced per query, never persisted.
type SearchResult struct {
	ID         string         `json:"id"`
	Document   string         `json:"document"`
	Metadata   map[string]any `json:"metadata"`
	Similarity float64        `json:"similarity_score"`
}
