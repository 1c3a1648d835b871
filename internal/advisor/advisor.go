package advisor

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/garnizeh/jobpulse/pkg/models"
	"github.com/garnizeh/jobpulse/pkg/ollama"
	"github.com/garnizeh/jobpulse/pkg/repository"
)

// Generator produces a text reply for a prompt. *ollama.Client satisfies it.
type Generator interface {
	Generate(ctx context.Context, model string, prompt string) (ollama.GenerateResult, error)
}

const systemPrompt = `You are an expert career advisor with deep knowledge of the tech job market.

Your role is to help job seekers by:
1. Analyzing job market trends and data
2. Providing personalized career advice
3. Recommending skills to learn
4. Suggesting job opportunities that match their profile

You have access to a database of real job postings and can provide data-driven insights.

When responding:
- Be encouraging but realistic
- Provide specific, actionable advice
- Use data to back up your recommendations
- Format responses clearly with bullet points when listing items
- If you don't have enough data, be honest about it`

const askTemplate = `{{.system}}

Based on the following job market data, please answer this question:

**Question:** {{.question}}

---

**Available Data:**

{{.context}}

---

Please provide helpful, data-driven career advice based on the above information.`

// Advisor answers career questions with retrieval-augmented generation:
// semantic hits and market statistics are bundled into the prompt context.
type Advisor struct {
	llm    Generator
	model  string
	index  repository.VectorIndex
	store  repository.JobStore
	logger *slog.Logger
}

// New fails fast when no chat model is configured; the advisor is the one
// component that cannot degrade gracefully without its provider.
func New(llm Generator, model string, index repository.VectorIndex, store repository.JobStore, logger *slog.Logger) (*Advisor, error) {
	if llm == nil {
		return nil, fmt.Errorf("advisor: text generator is required")
	}
	if model == "" {
		return nil, fmt.Errorf("advisor: chat model is not configured")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Advisor{llm: llm, model: model, index: index, store: store, logger: logger}, nil
}

// Ask answers a free-form question. Retrieval or generation failures never
// propagate; the caller always gets a text reply.
func (a *Advisor) Ask(ctx context.Context, question string) string {
	return a.ask(ctx, question, true, true)
}

func (a *Advisor) ask(ctx context.Context, question string, includeJobs, includeStats bool) string {
	var parts []string

	if includeJobs {
		parts = append(parts, a.jobsContext(ctx, question, 5))
	}
	if includeStats {
		parts = append(parts, a.statsContext(ctx))
	}

	prompt, err := ollama.RenderTemplate(askTemplate, map[string]any{
		"system":   systemPrompt,
		"question": question,
		"context":  strings.Join(parts, "\n\n---\n\n"),
	})
	if err != nil {
		a.logger.Error("advisor: render prompt", "error", err)
		return "Sorry, I encountered an error preparing your question."
	}

	res, err := a.llm.Generate(ctx, a.model, prompt)
	if err != nil {
		a.logger.Error("advisor: generate", "error", err)
		return fmt.Sprintf("Sorry, I encountered an error: %v", err)
	}
	return res.Text
}

// SkillRecommendations suggests what to learn next for a target role.
func (a *Advisor) SkillRecommendations(ctx context.Context, currentSkills []string, targetRole string) string {
	question := fmt.Sprintf(`I currently have these skills: %s

I want to become a %s.

What additional skills should I learn? Please prioritize them by importance.`, strings.Join(currentSkills, ", "), targetRole)
	return a.Ask(ctx, question)
}

// AnalyzeMarket produces a market analysis for one role.
func (a *Advisor) AnalyzeMarket(ctx context.Context, role string) string {
	question := fmt.Sprintf(`Please provide a comprehensive job market analysis for %s positions:

1. Current demand and trends
2. Required skills (must-have vs nice-to-have)
3. Salary ranges by experience level
4. Top hiring companies
5. Remote work opportunities
6. Career growth path`, role)
	return a.Ask(ctx, question)
}

// CompareRoles retrieves postings for both roles and asks for a side-by-side
// comparison. The per-role postings replace the usual question-based hits.
func (a *Advisor) CompareRoles(ctx context.Context, roleA, roleB string) string {
	question := fmt.Sprintf(`Compare these two career paths:

**Option 1: %s**
%s

**Option 2: %s**
%s

Compare on: salary, job availability, skills, growth, remote options.`,
		roleA, a.jobsContext(ctx, roleA, 10),
		roleB, a.jobsContext(ctx, roleB, 10))
	return a.ask(ctx, question, false, true)
}

// jobsContext retrieves semantic hits for the query and formats them for the
// prompt. A failed or empty retrieval reads as "no relevant jobs".
func (a *Advisor) jobsContext(ctx context.Context, query string, n int) string {
	hits, err := a.index.Search(ctx, query, n, models.SemanticFilters{})
	if err != nil {
		a.logger.Warn("advisor: semantic retrieval failed", "error", err)
		hits = nil
	}
	if len(hits) == 0 {
		return "No relevant jobs found in the database."
	}

	var b strings.Builder
	b.WriteString("Here are relevant job postings from our database:\n")
	for i, hit := range hits {
		meta := hit.Metadata
		fmt.Fprintf(&b, "\n%d. **%s** - %s position\n", i+1, metaString(meta, "company", "Unknown"), metaString(meta, "experience_level", ""))
		fmt.Fprintf(&b, "   Location: %s\n", metaString(meta, "location", "Not specified"))
		fmt.Fprintf(&b, "   Skills: %s\n", metaString(meta, "skills", "Not specified"))
		if salMin, salMax := metaNumber(meta, "salary_min"), metaNumber(meta, "salary_max"); salMin > 0 && salMax > 0 {
			fmt.Fprintf(&b, "   Salary: $%s - $%s\n", commas(salMin), commas(salMax))
		}
		fmt.Fprintf(&b, "   Match Score: %.1f%%\n", hit.Similarity*100)
	}
	return b.String()
}

// statsContext formats the aggregate market picture for the prompt. A failed
// stats read degrades to an empty section.
func (a *Advisor) statsContext(ctx context.Context) string {
	stats, err := a.store.Stats(ctx)
	if err != nil {
		a.logger.Warn("advisor: stats read failed", "error", err)
		return "Current market statistics are unavailable."
	}

	var b strings.Builder
	b.WriteString("Current Job Market Statistics:\n\n")
	fmt.Fprintf(&b, "Total Jobs in Database: %d\n", stats.TotalJobs)

	if len(stats.TopSkills) > 0 {
		b.WriteString("Top Skills in Demand: " + entryList(stats.TopSkills, 5, "jobs") + "\n")
	}
	if len(stats.TopCompanies) > 0 {
		b.WriteString("Top Hiring Companies: " + entryList(stats.TopCompanies, 5, "openings") + "\n")
	}
	if len(stats.SalaryByExperience) > 0 {
		b.WriteString("\nAverage Salaries by Experience:\n")
		for _, level := range models.ExperienceLevels {
			if bounds, ok := stats.SalaryByExperience[level]; ok {
				fmt.Fprintf(&b, "  - %s: $%s - $%s\n", level, commas(bounds.Min), commas(bounds.Max))
			}
		}
	}
	if total := stats.RemoteCount + stats.OnSiteCount; total > 0 {
		pct := float64(stats.RemoteCount) / float64(total) * 100
		fmt.Fprintf(&b, "\nRemote Jobs: %.1f%% of all positions\n", pct)
	}
	return b.String()
}

func entryList(entries []models.CountEntry, n int, unit string) string {
	if len(entries) > n {
		entries = entries[:n]
	}
	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		parts = append(parts, fmt.Sprintf("%s (%d %s)", e.Key, e.Count, unit))
	}
	return strings.Join(parts, ", ")
}

func metaString(meta map[string]any, key, fallback string) string {
	if v, ok := meta[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

func metaNumber(meta map[string]any, key string) float64 {
	switch v := meta[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return 0
	}
}

// commas renders a salary with thousands separators, no decimals.
func commas(v float64) string {
	s := strconv.FormatFloat(v, 'f', 0, 64)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	if neg {
		s = "-" + s
	}
	return s
}
