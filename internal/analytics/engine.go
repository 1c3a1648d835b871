package analytics

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/garnizeh/jobpulse/pkg/models"
	"github.com/garnizeh/jobpulse/pkg/repository"
)

// scanLimit caps full-corpus scans so a runaway dataset cannot pin memory.
const scanLimit = 10000

// Engine derives market-level insights by combining stored aggregates with
// record-level scans. Every method recomputes from current store state; there
// is no caching.
type Engine struct {
	store  repository.JobStore
	logger *slog.Logger
}

func NewEngine(store repository.JobStore, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{store: store, logger: logger}
}

// SkillSalary pairs a skill with the mean salary of postings that require it.
type SkillSalary struct {
	Skill      string  `json:"skill"`
	MeanSalary float64 `json:"mean_salary"`
}

type RemoteStats struct {
	RemoteCount      int     `json:"remote_count"`
	OnsiteCount      int     `json:"onsite_count"`
	RemotePercentage float64 `json:"remote_percentage"`
	OnsitePercentage float64 `json:"onsite_percentage"`
}

// RoleStats summarizes postings whose title matches one role query.
type RoleStats struct {
	Role             string              `json:"role"`
	Count            int                 `json:"count"`
	AvgSalaryMin     float64             `json:"avg_salary_min,omitempty"`
	AvgSalaryMax     float64             `json:"avg_salary_max,omitempty"`
	RemotePercentage float64             `json:"remote_percentage,omitempty"`
	TopSkills        []models.CountEntry `json:"top_skills,omitempty"`
}

type RoleComparison struct {
	RoleA RoleStats `json:"role_a"`
	RoleB RoleStats `json:"role_b"`
}

// MarketReport is a full snapshot of the current market picture.
type MarketReport struct {
	TotalJobs              int                            `json:"total_jobs"`
	TopSkills              []models.CountEntry            `json:"top_skills"`
	SalaryByExperience     map[string]models.SalaryBounds `json:"salary_by_experience"`
	SalaryByRole           map[string]models.SalaryBounds `json:"salary_by_role"`
	TopCompanies           []models.CountEntry            `json:"top_companies"`
	LocationDistribution   []models.CountEntry            `json:"location_distribution"`
	RemoteStats            RemoteStats                    `json:"remote_stats"`
	ExperienceDistribution []models.CountEntry            `json:"experience_distribution"`
	HighestPayingSkills    []SkillSalary                  `json:"highest_paying_skills"`
	TrendingSkills         []models.CountEntry            `json:"trending_skills"`
}

// SkillDemand returns the most in-demand skills, most frequent first.
func (e *Engine) SkillDemand(ctx context.Context, topN int) ([]models.CountEntry, error) {
	stats, err := e.store.Stats(ctx)
	if err != nil {
		return nil, err
	}
	skills := stats.TopSkills
	if topN > 0 && len(skills) > topN {
		skills = skills[:topN]
	}
	return skills, nil
}

// SalaryByExperience returns mean salary bounds grouped by experience level.
func (e *Engine) SalaryByExperience(ctx context.Context) (map[string]models.SalaryBounds, error) {
	stats, err := e.store.Stats(ctx)
	if err != nil {
		return nil, err
	}
	return stats.SalaryByExperience, nil
}

// roleRules is the canonical title classifier. Rules are checked in order
// and the first match wins, so a title mentioning several roles lands in
// the highest-priority bucket.
var roleRules = []struct {
	role     string
	keywords []string
}{
	{"Data Engineer", []string{"data engineer"}},
	{"ML Engineer", []string{"machine learning", "ml engineer"}},
	{"AI Engineer", []string{"ai engineer"}},
	{"Data Scientist", []string{"data scientist"}},
	{"Backend Engineer", []string{"backend"}},
	{"Full Stack Engineer", []string{"full stack", "fullstack"}},
	{"DevOps Engineer", []string{"devops", "sre"}},
	{"Analytics Engineer", []string{"analytics"}},
}

// CanonicalRole maps a job title onto a fixed set of roles.
func CanonicalRole(title string) string {
	lower := strings.ToLower(title)
	for _, rule := range roleRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.role
			}
		}
	}
	return "Other"
}

// SalaryByRole classifies every record's title into a canonical role and
// computes mean salary bounds per role. Records missing a bound are left out
// of that bound's mean.
func (e *Engine) SalaryByRole(ctx context.Context) (map[string]models.SalaryBounds, error) {
	jobs, err := e.store.All(ctx, scanLimit)
	if err != nil {
		return nil, err
	}

	type acc struct {
		minSum, maxSum     float64
		minCount, maxCount int
	}
	byRole := make(map[string]*acc)
	for _, j := range jobs {
		role := CanonicalRole(j.Title)
		a := byRole[role]
		if a == nil {
			a = &acc{}
			byRole[role] = a
		}
		if j.SalaryMin != nil {
			a.minSum += *j.SalaryMin
			a.minCount++
		}
		if j.SalaryMax != nil {
			a.maxSum += *j.SalaryMax
			a.maxCount++
		}
	}

	out := make(map[string]models.SalaryBounds, len(byRole))
	for role, a := range byRole {
		var b models.SalaryBounds
		if a.minCount > 0 {
			b.Min = math.Round(a.minSum / float64(a.minCount))
		}
		if a.maxCount > 0 {
			b.Max = math.Round(a.maxSum / float64(a.maxCount))
		}
		out[role] = b
	}
	return out, nil
}

func (e *Engine) TopCompanies(ctx context.Context, topN int) ([]models.CountEntry, error) {
	stats, err := e.store.Stats(ctx)
	if err != nil {
		return nil, err
	}
	companies := stats.TopCompanies
	if topN > 0 && len(companies) > topN {
		companies = companies[:topN]
	}
	return companies, nil
}

// hubRules canonicalize free-text locations into known hubs. Bare "la" and
// similar short abbreviations are left out on purpose: they match inside too
// many city names.
var hubRules = []struct {
	hub      string
	keywords []string
}{
	{"Remote", []string{"remote"}},
	{"San Francisco", []string{"san francisco", "sf,", "sf "}},
	{"New York", []string{"new york", "nyc"}},
	{"Seattle", []string{"seattle"}},
	{"Austin", []string{"austin"}},
	{"Los Angeles", []string{"los angeles"}},
}

func simplifyLocation(loc string) string {
	if loc == "" {
		return "Unknown"
	}
	lower := strings.ToLower(loc)
	for _, rule := range hubRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.hub
			}
		}
	}
	// fall back to the city part before the first comma
	if i := strings.Index(loc, ","); i >= 0 {
		return strings.TrimSpace(loc[:i])
	}
	return loc
}

// LocationDistribution returns the top 10 locations after canonicalizing
// free-text values into known hubs.
func (e *Engine) LocationDistribution(ctx context.Context) ([]models.CountEntry, error) {
	jobs, err := e.store.All(ctx, scanLimit)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, j := range jobs {
		counts[simplifyLocation(j.Location)]++
	}

	entries := sortedEntries(counts)
	if len(entries) > 10 {
		entries = entries[:10]
	}
	return entries, nil
}

// RemoteStats reports the remote/on-site split. With no records both
// percentages are 0.
func (e *Engine) RemoteStats(ctx context.Context) (RemoteStats, error) {
	stats, err := e.store.Stats(ctx)
	if err != nil {
		return RemoteStats{}, err
	}

	rs := RemoteStats{RemoteCount: stats.RemoteCount, OnsiteCount: stats.OnSiteCount}
	total := rs.RemoteCount + rs.OnsiteCount
	if total > 0 {
		rs.RemotePercentage = round1(float64(rs.RemoteCount) / float64(total) * 100)
		rs.OnsitePercentage = round1(float64(rs.OnsiteCount) / float64(total) * 100)
	}
	return rs, nil
}

func (e *Engine) ExperienceDistribution(ctx context.Context) ([]models.CountEntry, error) {
	stats, err := e.store.Stats(ctx)
	if err != nil {
		return nil, err
	}
	return stats.ByExperience, nil
}

// SkillSalaryCorrelation reports which skills pay best. Only skills present
// in at least 5 salaried postings count, to keep rare skills from dominating.
func (e *Engine) SkillSalaryCorrelation(ctx context.Context) ([]SkillSalary, error) {
	jobs, err := e.store.All(ctx, scanLimit)
	if err != nil {
		return nil, err
	}

	type acc struct {
		sum   float64
		count int
	}
	bySkill := make(map[string]*acc)
	for _, j := range jobs {
		mean, ok := j.MeanSalary()
		if !ok || len(j.Skills) == 0 {
			continue
		}
		for _, skill := range j.Skills {
			a := bySkill[skill]
			if a == nil {
				a = &acc{}
				bySkill[skill] = a
			}
			a.sum += mean
			a.count++
		}
	}

	out := make([]SkillSalary, 0, len(bySkill))
	for skill, a := range bySkill {
		if a.count < 5 {
			continue
		}
		out = append(out, SkillSalary{Skill: skill, MeanSalary: math.Round(a.sum / float64(a.count))})
	}

	sort.Slice(out, func(i, k int) bool {
		if out[i].MeanSalary != out[k].MeanSalary {
			return out[i].MeanSalary > out[k].MeanSalary
		}
		return out[i].Skill < out[k].Skill
	})
	if len(out) > 15 {
		out = out[:15]
	}
	return out, nil
}

// TrendingSkills tallies skill frequency over the most recently posted half
// of the corpus. It approximates a trend by comparing recent against all
// rather than recent against older data.
func (e *Engine) TrendingSkills(ctx context.Context) ([]models.CountEntry, error) {
	jobs, err := e.store.All(ctx, scanLimit)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(jobs, func(i, k int) bool {
		a, b := jobs[i].PostedDate, jobs[k].PostedDate
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})

	recent := jobs[:len(jobs)/2]
	counts := make(map[string]int)
	for _, j := range recent {
		for _, skill := range j.Skills {
			counts[skill]++
		}
	}

	entries := sortedEntries(counts)
	if len(entries) > 10 {
		entries = entries[:10]
	}
	return entries, nil
}

// RoleComparison puts two roles side by side. Matching here is a plain
// case-insensitive substring over titles so callers can compare arbitrary
// phrases, not just canonical roles.
func (e *Engine) RoleComparison(ctx context.Context, roleA, roleB string) (RoleComparison, error) {
	jobs, err := e.store.All(ctx, scanLimit)
	if err != nil {
		return RoleComparison{}, err
	}

	return RoleComparison{
		RoleA: roleStats(jobs, roleA),
		RoleB: roleStats(jobs, roleB),
	}, nil
}

func roleStats(jobs []*models.JobRecord, role string) RoleStats {
	needle := strings.ToLower(role)
	var matched []*models.JobRecord
	for _, j := range jobs {
		if strings.Contains(strings.ToLower(j.Title), needle) {
			matched = append(matched, j)
		}
	}

	rs := RoleStats{Role: role, Count: len(matched)}
	if len(matched) == 0 {
		return rs
	}

	var minSum, maxSum float64
	var minCount, maxCount, remote int
	counts := make(map[string]int)
	for _, j := range matched {
		if j.SalaryMin != nil {
			minSum += *j.SalaryMin
			minCount++
		}
		if j.SalaryMax != nil {
			maxSum += *j.SalaryMax
			maxCount++
		}
		if j.Remote {
			remote++
		}
		for _, skill := range j.Skills {
			counts[skill]++
		}
	}

	if minCount > 0 {
		rs.AvgSalaryMin = math.Round(minSum / float64(minCount))
	}
	if maxCount > 0 {
		rs.AvgSalaryMax = math.Round(maxSum / float64(maxCount))
	}
	rs.RemotePercentage = round1(float64(remote) / float64(len(matched)) * 100)

	skills := sortedEntries(counts)
	if len(skills) > 5 {
		skills = skills[:5]
	}
	rs.TopSkills = skills
	return rs
}

// Report assembles the full market report from current store state.
func (e *Engine) Report(ctx context.Context) (MarketReport, error) {
	stats, err := e.store.Stats(ctx)
	if err != nil {
		return MarketReport{}, err
	}

	report := MarketReport{
		TotalJobs:              stats.TotalJobs,
		SalaryByExperience:     stats.SalaryByExperience,
		ExperienceDistribution: stats.ByExperience,
	}

	if report.TopSkills, err = e.SkillDemand(ctx, 10); err != nil {
		return MarketReport{}, err
	}
	if report.SalaryByRole, err = e.SalaryByRole(ctx); err != nil {
		return MarketReport{}, err
	}
	if report.TopCompanies, err = e.TopCompanies(ctx, 10); err != nil {
		return MarketReport{}, err
	}
	if report.LocationDistribution, err = e.LocationDistribution(ctx); err != nil {
		return MarketReport{}, err
	}
	if report.RemoteStats, err = e.RemoteStats(ctx); err != nil {
		return MarketReport{}, err
	}
	if report.HighestPayingSkills, err = e.SkillSalaryCorrelation(ctx); err != nil {
		return MarketReport{}, err
	}
	if report.TrendingSkills, err = e.TrendingSkills(ctx); err != nil {
		return MarketReport{}, err
	}

	return report, nil
}

func sortedEntries(counts map[string]int) []models.CountEntry {
	entries := make([]models.CountEntry, 0, len(counts))
	for key, count := range counts {
		entries = append(entries, models.CountEntry{Key: key, Count: count})
	}
	sort.Slice(entries, func(i, k int) bool {
		if entries[i].Count != entries[k].Count {
			return entries[i].Count > entries[k].Count
		}
		return entries[i].Key < entries[k].Key
	})
	return entries
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
