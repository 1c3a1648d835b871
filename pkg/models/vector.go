package models

// SemanticFilters are the conjunctive predicates the vector index can apply
// to a similarity search. Experience level and remote are pushed down to the
// index's equality filter language; the salary floor is applied by the
// caller after over-fetching, because the filter language cannot express it.
type SemanticFilters struct {
	ExperienceLevel string  `json:"experience_level,omitempty"`
	RemoteOnly      bool    `json:"remote_only,omitempty"`
	MinSalary       float64 `json:"min_salary,omitempty"`
}

// IndexStats is a diagnostic snapshot of the vector index, computed by
// scanning all stored metadata. Not a hot path.
type IndexStats struct {
	TotalDocuments   int          `json:"total_documents"`
	TopCompanies     []CountEntry `json:"top_companies"`
	ExperienceLevels []CountEntry `json:"experience_levels"`
	RemoteCount      int          `json:"remote_count"`
}
