package models

import (
	"sort"
	"strings"
)

// skillVocabulary is the fixed set of technology terms recognized when
// deriving skills from free-text descriptions. All entries are lowercase.
var skillVocabulary = []string{
	"python", "javascript", "java", "c++", "sql", "aws", "azure",
	"docker", "kubernetes", "react", "node.js", "typescript",
	"machine learning", "deep learning", "nlp", "computer vision",
	"tensorflow", "pytorch", "pandas", "numpy", "scikit-learn",
	"git", "linux", "agile", "scrum", "api", "rest", "graphql",
	"postgresql", "mongodb", "redis", "elasticsearch", "spark",
	"airflow", "kafka", "ci/cd", "jenkins", "terraform",
	"langchain", "llm", "rag", "openai", "anthropic", "gpt",
	"data engineering", "data science", "analytics", "etl",
	"power bi", "tableau", "excel", "statistics", "a/b testing",
}

// ExtractSkills scans the description for known technology terms
// (case-insensitive substring match) and merges them into Skills,
// lowercased and deduplicated. Returns the resulting skill set.
func (j *JobRecord) ExtractSkills() []string {
	seen := make(map[string]struct{}, len(j.Skills))
	out := make([]string, 0, len(j.Skills))
	for _, s := range j.Skills {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	desc := strings.ToLower(j.Description)
	for _, term := range skillVocabulary {
		if !strings.Contains(desc, term) {
			continue
		}
		if _, ok := seen[term]; ok {
			continue
		}
		seen[term] = struct{}{}
		out = append(out, term)
	}

	sort.Strings(out)
	j.Skills = out
	return out
}

// HasSkill reports whether the record lists the skill, case-insensitive.
func (j *JobRecord) HasSkill(skill string) bool {
	skill = strings.ToLower(skill)
	for _, s := range j.Skills {
		if strings.ToLower(s) == skill {
			return true
		}
	}
	return false
}
