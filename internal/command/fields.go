package command

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hammamikhairi/recipebook/internal/domain"
)

// Fields are the key=value pairs given to create and edit, keyed by the
// canonical field name.
type Fields map[string]string

var fieldAliases = map[string]string{
	"title":       "title",
	"name":        "title",
	"description": "description",
	"desc":        "description",
	"cuisine":     "cuisine",
	"difficulty":  "difficulty",
	"diff":        "difficulty",
	"time":        "time",
	"minutes":     "time",
	"tags":        "tags",
	"tag":         "tags",
	"image":       "image",
	"ingredients": "ingredients",
	"steps":       "steps",
}

// ParseFields splits a line like `title="Lemon tart" time=40 tags=baked,sweet`
// into fields. Values may be wrapped in double quotes to include spaces.
func ParseFields(s string) (Fields, error) {
	tokens, err := splitQuoted(s)
	if err != nil {
		return nil, err
	}

	out := make(Fields, len(tokens))
	for _, tok := range tokens {
		key, value, ok := strings.Cut(tok, "=")
		if !ok {
			return nil, fmt.Errorf("%w: expected key=value, got %q", domain.ErrInvalidInput, tok)
		}
		canonical, known := fieldAliases[strings.ToLower(strings.TrimSpace(key))]
		if !known {
			return nil, fmt.Errorf("%w: unknown field %q", domain.ErrInvalidInput, key)
		}
		out[canonical] = value
	}
	return out, nil
}

// Input builds a create payload. Difficulty defaults to Easy, list fields
// to empty and everything else to its zero value.
func (f Fields) Input() (domain.RecipeInput, error) {
	in := domain.RecipeInput{
		Title:       f["title"],
		Description: f["description"],
		Cuisine:     f["cuisine"],
		Image:       f["image"],
		Tags:        splitList(f["tags"], ","),
		Ingredients: splitList(f["ingredients"], ";"),
		Steps:       splitList(f["steps"], ";"),
		Difficulty:  domain.DifficultyEasy,
	}
	if v, ok := f["difficulty"]; ok {
		d, err := domain.ParseDifficulty(v)
		if err != nil {
			return domain.RecipeInput{}, err
		}
		in.Difficulty = d
	}
	if v, ok := f["time"]; ok {
		n, err := parseMinutes(v)
		if err != nil {
			return domain.RecipeInput{}, err
		}
		in.TimeMinutes = n
	}
	return in, in.Validate()
}

// Patch builds an update payload holding only the given fields.
func (f Fields) Patch() (domain.RecipePatch, error) {
	var p domain.RecipePatch
	for key, v := range f {
		switch key {
		case "title":
			p.Title = ptr(v)
		case "description":
			p.Description = ptr(v)
		case "cuisine":
			p.Cuisine = ptr(v)
		case "image":
			p.Image = ptr(v)
		case "difficulty":
			d, err := domain.ParseDifficulty(v)
			if err != nil {
				return domain.RecipePatch{}, err
			}
			p.Difficulty = &d
		case "time":
			n, err := parseMinutes(v)
			if err != nil {
				return domain.RecipePatch{}, err
			}
			p.TimeMinutes = &n
		case "tags":
			p.Tags = ptr(splitList(v, ","))
		case "ingredients":
			p.Ingredients = ptr(splitList(v, ";"))
		case "steps":
			p.Steps = ptr(splitList(v, ";"))
		}
	}
	if p.Empty() {
		return p, fmt.Errorf("%w: nothing to update", domain.ErrInvalidInput)
	}
	return p, p.Validate()
}

// ParseMinutes reads a non-negative whole number of minutes.
func ParseMinutes(s string) (int, error) { return parseMinutes(s) }

func parseMinutes(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(s), "m"))
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: time must be a non-negative number of minutes, got %q", domain.ErrInvalidInput, s)
	}
	return n, nil
}

// SplitTags splits a comma-separated tag list, dropping blanks.
func SplitTags(s string) []string { return splitList(s, ",") }

func splitList(s, sep string) []string {
	out := []string{}
	for _, part := range strings.Split(s, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func splitQuoted(s string) ([]string, error) {
	var (
		tokens  []string
		cur     strings.Builder
		inQuote bool
		started bool
	)
	for _, r := range s {
		switch {
		case r == '"':
			inQuote = !inQuote
			started = true
		case (r == ' ' || r == '\t') && !inQuote:
			if started {
				tokens = append(tokens, cur.String())
				cur.Reset()
				started = false
			}
		default:
			cur.WriteRune(r)
			started = true
		}
	}
	if inQuote {
		return nil, fmt.Errorf("%w: unterminated quote", domain.ErrInvalidInput)
	}
	if started {
		tokens = append(tokens, cur.String())
	}
	return tokens, nil
}

func ptr[T any](v T) *T { return &v }
