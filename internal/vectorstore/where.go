package vectorstore

import "fmt"

// Where is the collection's filter language: single equality conditions,
// optionally combined with And. Nothing richer is expressible; callers that
// need range predicates (salary floors) must post-filter results themselves.
type Where struct {
	conds []cond
}

type cond struct {
	key   string
	value any
}

// Eq builds a single key == value condition.
func Eq(key string, value any) Where {
	return Where{conds: []cond{{key: key, value: value}}}
}

// And combines multiple conditions; all must hold.
func And(filters ...Where) Where {
	var out Where
	for _, f := range filters {
		out.conds = append(out.conds, f.conds...)
	}
	return out
}

func (w Where) empty() bool {
	return len(w.conds) == 0
}

// matches evaluates the conjunction against a metadata bag. Values are
// compared by their string form; the metadata schema keeps all filterable
// keys as strings, so this survives the JSON round trip.
func (w Where) matches(meta map[string]any) bool {
	for _, c := range w.conds {
		v, ok := meta[c.key]
		if !ok {
			return false
		}
		if fmt.Sprint(v) != fmt.Sprint(c.value) {
			return false
		}
	}
	return true
}
