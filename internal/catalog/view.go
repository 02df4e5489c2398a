package catalog

import (
	"slices"

	"github.com/hammamikhairi/recipebook/internal/domain"
)

// State is a consistent snapshot of the store: the cache, the user's
// filters and pagination, and every view derived from them.
type State struct {
	Items      []domain.Recipe
	Filtered   []domain.Recipe
	Paged      []domain.Recipe
	Total      int
	TotalPages int
	Page       int
	PageSize   int
	Filters    domain.Filters
	Loading    bool
	Err        string
	MockMode   bool
}

// FilterRecipes returns the recipes matching every active predicate of f,
// in their original order.
func FilterRecipes(items []domain.Recipe, f domain.Filters) []domain.Recipe {
	out := make([]domain.Recipe, 0, len(items))
	for _, r := range items {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

// TotalPages is ceil(total/pageSize), never less than 1.
func TotalPages(total, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 1
	}
	return (total + pageSize - 1) / pageSize
}

// PageWindow slices list to the 1-based page. Out-of-range pages yield an
// empty slice.
func PageWindow(list []domain.Recipe, page, pageSize int) []domain.Recipe {
	if page < 1 || pageSize <= 0 {
		return []domain.Recipe{}
	}
	start := (page - 1) * pageSize
	if start >= len(list) {
		return []domain.Recipe{}
	}
	end := min(start+pageSize, len(list))
	return list[start:end]
}

func cloneAll(list []domain.Recipe) []domain.Recipe {
	out := make([]domain.Recipe, len(list))
	for i, r := range list {
		out[i] = r.Clone()
	}
	return out
}

// distinct collects the unique values produced by pick, sorted.
func distinct(items []domain.Recipe, pick func(domain.Recipe) []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range items {
		for _, v := range pick(r) {
			if v != "" && !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	slices.Sort(out)
	return out
}
