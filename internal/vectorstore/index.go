package vectorstore

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/garnizeh/jobpulse/internal/db"
	"github.com/garnizeh/jobpulse/pkg/models"
	"github.com/garnizeh/jobpulse/pkg/repository"
)

const (
	collectionName = "job_postings"
	addBatchSize   = 100
)

// Index is the semantic search index over job records.
type Index struct {
	col    *Collection
	logger *slog.Logger
}

var _ repository.VectorIndex = (*Index)(nil)

func NewIndex(conn *db.DB, embedder Embedder, logger *slog.Logger) *Index {
	if logger == nil {
		logger = slog.Default()
	}
	return &Index{
		col:    NewCollection(conn, embedder, collectionName, logger),
		logger: logger,
	}
}

// AddMany indexes a batch of records, skipping ids that are already indexed
// or repeated within the call. The duplicate check happens before embedding,
// so already-indexed records never cost an embedding round trip.
func (x *Index) AddMany(ctx context.Context, jobs []*models.JobRecord) (int, int, error) {
	existing, err := x.col.IDs(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("load indexed ids: %w", err)
	}
	seen := make(map[string]struct{})

	added, skipped := 0, 0
	for start := 0; start < len(jobs); start += addBatchSize {
		end := min(start+addBatchSize, len(jobs))

		var ids, documents []string
		var metadatas []map[string]any
		for _, j := range jobs[start:end] {
			if _, dup := existing[j.ID]; dup {
				skipped++
				continue
			}
			if _, dup := seen[j.ID]; dup {
				skipped++
				continue
			}
			seen[j.ID] = struct{}{}

			ids = append(ids, j.ID)
			documents = append(documents, jobDocument(j))
			metadatas = append(metadatas, jobMetadata(j))
		}

		if len(ids) > 0 {
			if err := x.col.Add(ctx, ids, documents, metadatas); err != nil {
				return added, skipped, err
			}
			added += len(ids)
		}
	}

	x.logger.Info("index add finished", "added", added, "skipped", skipped)
	return added, skipped, nil
}

// Search runs a similarity query with conjunctive filters. Experience level
// and remote are pushed down to the collection's equality filter; the salary
// floor cannot be expressed there, so the query over-fetches 2n candidates
// and filters by salary here before truncating to n.
func (x *Index) Search(ctx context.Context, query string, n int, f models.SemanticFilters) ([]models.SearchResult, error) {
	if n <= 0 {
		n = 10
	}

	var filters []Where
	if f.ExperienceLevel != "" {
		filters = append(filters, Eq("experience_level", f.ExperienceLevel))
	}
	if f.RemoteOnly {
		filters = append(filters, Eq("remote", "True"))
	}
	where := And(filters...)

	candidates, err := x.col.Query(ctx, query, n*2, where)
	if err != nil {
		return nil, err
	}

	results := make([]models.SearchResult, 0, len(candidates))
	for _, c := range candidates {
		if f.MinSalary > 0 && metadataFloat(c.Metadata, "salary_min") < f.MinSalary {
			continue
		}

		// distance is not bounded to [0,1] for every metric, hence the clamp
		similarity := math.Max(0, 1-c.Distance)
		results = append(results, models.SearchResult{
			ID:         c.ID,
			Document:   c.Document,
			Metadata:   c.Metadata,
			Similarity: math.Round(similarity*1000) / 1000,
		})
	}

	if len(results) > n {
		results = results[:n]
	}
	return results, nil
}

// SearchBySkills phrases a skill list as a query.
func (x *Index) SearchBySkills(ctx context.Context, skills []string, n int) ([]models.SearchResult, error) {
	query := "Jobs requiring skills: " + strings.Join(skills, ", ")
	return x.Search(ctx, query, n, models.SemanticFilters{})
}

// FindSimilar returns up to n records similar to the stored record. It
// re-runs the record's own document as the query, requests n+1 hits and
// drops the first, assuming the index returns the exact self-match first.
func (x *Index) FindSimilar(ctx context.Context, id string, n int) ([]models.SearchResult, error) {
	doc, ok, err := x.col.GetDocument(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load document %s: %w", id, err)
	}
	if !ok {
		return nil, nil
	}

	results, err := x.Search(ctx, doc, n+1, models.SemanticFilters{})
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[1:], nil
}

// Stats scans all stored metadata and tallies companies, experience levels
// and remote documents. Diagnostic only.
func (x *Index) Stats(ctx context.Context) (*models.IndexStats, error) {
	total, err := x.col.Count(ctx)
	if err != nil {
		return nil, err
	}

	metas, err := x.col.AllMetadata(ctx)
	if err != nil {
		return nil, err
	}

	companies := make(map[string]int)
	levels := make(map[string]int)
	remote := 0
	for _, meta := range metas {
		companies[metadataString(meta, "company", "Unknown")]++
		levels[metadataString(meta, "experience_level", "Unknown")]++
		if metadataString(meta, "remote", "") == "True" {
			remote++
		}
	}

	return &models.IndexStats{
		TotalDocuments:   total,
		TopCompanies:     topCounts(companies, 10),
		ExperienceLevels: topCounts(levels, len(levels)),
		RemoteCount:      remote,
	}, nil
}

// Clear drops and recreates the collection empty.
func (x *Index) Clear(ctx context.Context) error {
	return x.col.DeleteAll(ctx)
}

// jobDocument builds the composite text that gets embedded for one record.
func jobDocument(j *models.JobRecord) string {
	parts := []string{
		"Job Title: " + j.Title,
		"Company: " + j.Company,
		"Location: " + j.Location,
		"Experience Level: " + j.ExperienceLevel,
		"Remote: " + yesNo(j.Remote),
	}
	if j.SalaryMin != nil && j.SalaryMax != nil {
		parts = append(parts, fmt.Sprintf("Salary: $%s - $%s", formatMoney(*j.SalaryMin), formatMoney(*j.SalaryMax)))
	}
	parts = append(parts,
		"Skills: "+strings.Join(j.Skills, ", "),
		"Description: "+j.Description,
	)
	return strings.Join(parts, "\n")
}

// jobMetadata builds the flat key/value bag stored next to the document.
// Booleans are encoded as the literal strings "True"/"False" to stay
// filterable by the equality language.
func jobMetadata(j *models.JobRecord) map[string]any {
	skills := j.Skills
	if len(skills) > 10 {
		skills = skills[:10]
	}

	var salaryMin, salaryMax float64
	if j.SalaryMin != nil {
		salaryMin = *j.SalaryMin
	}
	if j.SalaryMax != nil {
		salaryMax = *j.SalaryMax
	}

	remote := "False"
	if j.Remote {
		remote = "True"
	}

	return map[string]any{
		"company":          j.Company,
		"location":         j.Location,
		"experience_level": j.ExperienceLevel,
		"remote":           remote,
		"salary_min":       salaryMin,
		"salary_max":       salaryMax,
		"skills":           strings.Join(skills, ", "),
		"source":           j.Source,
	}
}

func metadataFloat(meta map[string]any, key string) float64 {
	switch v := meta[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case string:
		f, _ := strconv.ParseFloat(v, 64)
		return f
	default:
		return 0
	}
}

func metadataString(meta map[string]any, key, fallback string) string {
	if v, ok := meta[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

func topCounts(counts map[string]int, n int) []models.CountEntry {
	entries := make([]models.CountEntry, 0, len(counts))
	for k, v := range counts {
		entries = append(entries, models.CountEntry{Key: k, Count: v})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Key < entries[j].Key
	})
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func formatMoney(v float64) string {
	s := strconv.FormatFloat(v, 'f', 0, 64)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
