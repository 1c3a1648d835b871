package collectors

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/qri-io/jsonschema"

	"github.com/garnizeh/jobpulse/pkg/models"
)

const fetchTimeout = 30 * time.Second

// remotiveSchema validates the envelope of the Remotive response before any
// field access; a payload that fails here fails the whole category fetch.
// Per-record problems are not validated here: a record missing its title is
// skipped during normalization so the rest of the batch survives.
var remotiveSchema = mustSchema(`{
	"type": "object",
	"required": ["jobs"],
	"properties": {
		"jobs": {
			"type": "array",
			"items": {"type": "object"}
		}
	}
}`)

var arbeitnowSchema = mustSchema(`{
	"type": "object",
	"required": ["data"],
	"properties": {
		"data": {
			"type": "array",
			"items": {"type": "object"}
		}
	}
}`)

func mustSchema(raw string) *jsonschema.Schema {
	rs := &jsonschema.Schema{}
	if err := json.Unmarshal([]byte(raw), rs); err != nil {
		panic(fmt.Sprintf("collectors: bad schema: %v", err))
	}
	return rs
}

// RemotiveCollector pulls remote tech postings from the Remotive job board.
// Every Remotive posting is remote by definition.
type RemotiveCollector struct {
	baseURL          string
	categories       []string
	limitPerCategory int
	client           *http.Client
	logger           *slog.Logger
}

func NewRemotiveCollector(categories []string, limitPerCategory int, logger *slog.Logger) *RemotiveCollector {
	if len(categories) == 0 {
		categories = []string{"software-dev", "data", "devops"}
	}
	if limitPerCategory <= 0 {
		limitPerCategory = 50
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RemotiveCollector{
		baseURL:          "https://remotive.com/api/remote-jobs",
		categories:       categories,
		limitPerCategory: limitPerCategory,
		client:           &http.Client{Timeout: fetchTimeout},
		logger:           logger,
	}
}

func (c *RemotiveCollector) SourceName() string { return "remotive" }

// Collect fetches each configured category. A failed or invalid category is
// logged and skipped; the error return fires only when every category failed.
func (c *RemotiveCollector) Collect(ctx context.Context) ([]*models.JobRecord, error) {
	var jobs []*models.JobRecord
	failed := 0
	for _, category := range c.categories {
		batch, err := c.fetchCategory(ctx, category)
		if err != nil {
			c.logger.Warn("remotive: category fetch failed", "category", category, "error", err)
			failed++
			continue
		}
		jobs = append(jobs, batch...)
	}
	if failed == len(c.categories) {
		return nil, fmt.Errorf("remotive: all %d categories failed", failed)
	}
	return jobs, nil
}

type remotivePayload struct {
	Jobs []struct {
		Title            string `json:"title"`
		CompanyName      string `json:"company_name"`
		RequiredLocation string `json:"candidate_required_location"`
		Description      string `json:"description"`
		Salary           string `json:"salary"`
		JobType          string `json:"job_type"`
		URL              string `json:"url"`
		PublicationDate  string `json:"publication_date"`
	} `json:"jobs"`
}

func (c *RemotiveCollector) fetchCategory(ctx context.Context, category string) ([]*models.JobRecord, error) {
	params := url.Values{}
	params.Set("category", category)
	params.Set("limit", strconv.Itoa(c.limitPerCategory))

	body, err := fetchJSON(ctx, c.client, c.baseURL+"?"+params.Encode(), remotiveSchema)
	if err != nil {
		return nil, err
	}

	var payload remotivePayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}

	jobs := make([]*models.JobRecord, 0, len(payload.Jobs))
	for _, raw := range payload.Jobs {
		if strings.TrimSpace(raw.Title) == "" {
			c.logger.Warn("remotive: skipping record without title", "category", category)
			continue
		}
		location := raw.RequiredLocation
		if location == "" {
			location = "Remote"
		}
		company := raw.CompanyName
		if company == "" {
			company = "Unknown"
		}

		j := models.NewJobRecord(raw.Title, company, location, raw.Description)
		j.SalaryMin, j.SalaryMax = parseSalaryText(raw.Salary)
		j.ExperienceLevel = guessExperienceLevel(raw.Title)
		j.Remote = true
		if raw.JobType != "" {
			j.JobType = titleCase(strings.ReplaceAll(raw.JobType, "_", "-"))
		}
		j.Source = c.SourceName()
		j.URL = raw.URL
		if raw.PublicationDate != "" {
			if ts, err := time.Parse(time.RFC3339, raw.PublicationDate); err == nil {
				j.PostedDate = &ts
			} else if ts, err := time.Parse("2006-01-02T15:04:05", raw.PublicationDate); err == nil {
				j.PostedDate = &ts
			}
		}
		j.ExtractSkills()
		jobs = append(jobs, j)
	}
	return jobs, nil
}

// ArbeitnowCollector pulls postings from the Arbeitnow job board, keeping
// only tech-related titles and tags.
type ArbeitnowCollector struct {
	baseURL  string
	maxPages int
	client   *http.Client
	logger   *slog.Logger
}

func NewArbeitnowCollector(maxPages int, logger *slog.Logger) *ArbeitnowCollector {
	if maxPages <= 0 {
		maxPages = 5
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ArbeitnowCollector{
		baseURL:  "https://www.arbeitnow.com/api/job-board-api",
		maxPages: maxPages,
		client:   &http.Client{Timeout: fetchTimeout},
		logger:   logger,
	}
}

func (c *ArbeitnowCollector) SourceName() string { return "arbeitnow" }

var techKeywords = []string{
	"developer", "engineer", "programmer", "software", "data",
	"devops", "cloud", "python", "java", "javascript", "backend",
	"frontend", "fullstack", "machine learning", "ai ", "ml ",
	"analyst", "architect", "security", "database", "api",
}

type arbeitnowPayload struct {
	Data []struct {
		Title       string   `json:"title"`
		CompanyName string   `json:"company_name"`
		Location    string   `json:"location"`
		Description string   `json:"description"`
		Remote      bool     `json:"remote"`
		URL         string   `json:"url"`
		Tags        []string `json:"tags"`
	} `json:"data"`
}

func (c *ArbeitnowCollector) Collect(ctx context.Context) ([]*models.JobRecord, error) {
	var jobs []*models.JobRecord
	failed := 0
	for page := 1; page <= c.maxPages; page++ {
		body, err := fetchJSON(ctx, c.client, fmt.Sprintf("%s?page=%d", c.baseURL, page), arbeitnowSchema)
		if err != nil {
			c.logger.Warn("arbeitnow: page fetch failed", "page", page, "error", err)
			failed++
			continue
		}

		var payload arbeitnowPayload
		if err := json.Unmarshal(body, &payload); err != nil {
			c.logger.Warn("arbeitnow: decode failed", "page", page, "error", err)
			failed++
			continue
		}
		if len(payload.Data) == 0 {
			break
		}

		for _, raw := range payload.Data {
			if strings.TrimSpace(raw.Title) == "" {
				c.logger.Warn("arbeitnow: skipping record without title", "page", page)
				continue
			}
			if !isTechJob(raw.Title, raw.Tags) {
				continue
			}
			company := raw.CompanyName
			if company == "" {
				company = "Unknown"
			}
			location := raw.Location
			if location == "" {
				location = "Unknown"
			}

			j := models.NewJobRecord(raw.Title, company, location, raw.Description)
			j.Remote = raw.Remote
			j.ExperienceLevel = guessExperienceLevel(raw.Title)
			j.Source = c.SourceName()
			j.URL = raw.URL
			now := time.Now()
			j.PostedDate = &now
			for _, tag := range raw.Tags {
				j.Skills = append(j.Skills, strings.ToLower(tag))
			}
			j.ExtractSkills()
			jobs = append(jobs, j)
		}
	}
	if failed == c.maxPages {
		return nil, fmt.Errorf("arbeitnow: all %d pages failed", failed)
	}
	return jobs, nil
}

func isTechJob(title string, tags []string) bool {
	haystack := strings.ToLower(title) + " " + strings.ToLower(strings.Join(tags, " "))
	for _, kw := range techKeywords {
		if strings.Contains(haystack, kw) {
			return true
		}
	}
	return false
}

// fetchJSON does a single GET with the collector timeout and no retry, and
// validates the body against the source schema before returning it.
func fetchJSON(ctx context.Context, client *http.Client, rawURL string, schema *jsonschema.Schema) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	verrs, err := schema.ValidateBytes(ctx, body)
	if err != nil {
		return nil, fmt.Errorf("validate payload: %w", err)
	}
	if len(verrs) > 0 {
		return nil, fmt.Errorf("payload failed validation: %s", verrs[0].Error())
	}
	return body, nil
}

var salaryNumberRe = regexp.MustCompile(`[\d,]+k?`)

// parseSalaryText extracts a salary range from free text like
// "$100,000 - $150,000" or "100k-150k". A single figure is widened by 20%
// to estimate the ceiling.
func parseSalaryText(text string) (*float64, *float64) {
	if text == "" {
		return nil, nil
	}

	var parsed []float64
	for _, tok := range salaryNumberRe.FindAllString(strings.ToLower(text), -1) {
		tok = strings.ReplaceAll(tok, ",", "")
		thousands := strings.HasSuffix(tok, "k")
		tok = strings.TrimSuffix(tok, "k")
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			continue
		}
		if thousands || v < 1000 {
			v *= 1000
		}
		parsed = append(parsed, v)
	}

	switch {
	case len(parsed) >= 2:
		lo, hi := parsed[0], parsed[0]
		for _, v := range parsed[1:] {
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
		return &lo, &hi
	case len(parsed) == 1:
		lo := parsed[0]
		hi := math.Round(lo * 1.2)
		return &lo, &hi
	default:
		return nil, nil
	}
}

// guessExperienceLevel infers a level from title keywords, defaulting to Mid.
func guessExperienceLevel(title string) string {
	lower := strings.ToLower(title)

	senior := []string{"senior", "sr.", "sr ", "lead", "principal", "staff"}
	for _, kw := range senior {
		if strings.Contains(lower, kw) {
			switch {
			case strings.Contains(lower, "principal") || strings.Contains(lower, "staff"):
				return models.LevelPrincipal
			case strings.Contains(lower, "lead"):
				return models.LevelLead
			default:
				return models.LevelSenior
			}
		}
	}

	entry := []string{"junior", "jr.", "jr ", "entry", "associate", "intern"}
	for _, kw := range entry {
		if strings.Contains(lower, kw) {
			return models.LevelEntry
		}
	}
	return models.LevelMid
}

func titleCase(s string) string {
	parts := strings.Split(s, "-")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, "-")
}
