package domain

import (
	"strconv"
	"strings"
)

// Filters narrows the catalog. Every active predicate must hold (AND).
// Zero values and nil pointers mean the predicate is not applied.
type Filters struct {
	Query      string      // case-insensitive substring of title, description or any tag
	Cuisine    string      // exact match
	Difficulty *Difficulty // exact match
	MaxTime    *int        // inclusive upper bound on TimeMinutes
	Tags       []string    // every tag must be present
}

// Active reports whether any predicate is set.
func (f Filters) Active() bool {
	return f.Query != "" || f.Cuisine != "" || f.Difficulty != nil || f.MaxTime != nil || len(f.Tags) > 0
}

// Match reports whether r satisfies every active predicate.
func (f Filters) Match(r Recipe) bool {
	if f.Query != "" && !matchesQuery(r, strings.ToLower(f.Query)) {
		return false
	}
	if f.Cuisine != "" && r.Cuisine != f.Cuisine {
		return false
	}
	if f.Difficulty != nil && r.Difficulty != *f.Difficulty {
		return false
	}
	if f.MaxTime != nil && r.TimeMinutes > *f.MaxTime {
		return false
	}
	for _, tag := range f.Tags {
		if !r.HasTag(tag) {
			return false
		}
	}
	return true
}

// Clone returns a copy that shares no pointers or slices with f.
func (f Filters) Clone() Filters {
	out := Filters{Query: f.Query, Cuisine: f.Cuisine}
	if f.Difficulty != nil {
		d := *f.Difficulty
		out.Difficulty = &d
	}
	if f.MaxTime != nil {
		m := *f.MaxTime
		out.MaxTime = &m
	}
	if len(f.Tags) > 0 {
		out.Tags = append([]string(nil), f.Tags...)
	}
	return out
}

// String renders the active predicates for status lines.
func (f Filters) String() string {
	if !f.Active() {
		return "none"
	}
	var parts []string
	if f.Query != "" {
		parts = append(parts, "query="+f.Query)
	}
	if f.Cuisine != "" {
		parts = append(parts, "cuisine="+f.Cuisine)
	}
	if f.Difficulty != nil {
		parts = append(parts, "difficulty="+string(*f.Difficulty))
	}
	if f.MaxTime != nil {
		parts = append(parts, "maxtime="+strconv.Itoa(*f.MaxTime))
	}
	if len(f.Tags) > 0 {
		parts = append(parts, "tags="+strings.Join(f.Tags, ","))
	}
	return strings.Join(parts, " ")
}

func matchesQuery(r Recipe, q string) bool {
	if strings.Contains(strings.ToLower(r.Title), q) {
		return true
	}
	if strings.Contains(strings.ToLower(r.Description), q) {
		return true
	}
	for _, tag := range r.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}
