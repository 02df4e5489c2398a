// Package domain defines the core types and interfaces for the recipe catalog.
// All other packages depend on domain; domain depends on nothing.
package domain

import (
	"fmt"
	"slices"
	"strings"
)

// Difficulty grades how demanding a recipe is.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// Difficulties lists every valid difficulty in ascending order.
func Difficulties() []Difficulty {
	return []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}
}

// Valid reports whether d is one of the known difficulties.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// ParseDifficulty matches s case-insensitively against the known difficulties.
func ParseDifficulty(s string) (Difficulty, error) {
	for _, d := range Difficulties() {
		if strings.EqualFold(strings.TrimSpace(s), string(d)) {
			return d, nil
		}
	}
	return "", fmt.Errorf("%w: unknown difficulty %q", ErrInvalidInput, s)
}

// Recipe is a single catalog entry. ID is assigned by the storage layer and
// never changes once set.
type Recipe struct {
	ID          string     `json:"id" yaml:"id"`
	Title       string     `json:"title" yaml:"title"`
	Description string     `json:"description" yaml:"description"`
	Cuisine     string     `json:"cuisine" yaml:"cuisine"`
	Difficulty  Difficulty `json:"difficulty" yaml:"difficulty"`
	TimeMinutes int        `json:"timeMinutes" yaml:"timeMinutes"`
	Tags        []string   `json:"tags" yaml:"tags"`
	Image       string     `json:"image,omitempty" yaml:"image,omitempty"`
	Ingredients []string   `json:"ingredients,omitempty" yaml:"ingredients,omitempty"`
	Steps       []string   `json:"steps,omitempty" yaml:"steps,omitempty"`
}

// Clone returns a copy that shares no slices with r.
func (r Recipe) Clone() Recipe {
	r.Tags = slices.Clone(r.Tags)
	r.Ingredients = slices.Clone(r.Ingredients)
	r.Steps = slices.Clone(r.Steps)
	return r
}

// HasTag reports whether the recipe carries tag exactly.
func (r Recipe) HasTag(tag string) bool {
	return slices.Contains(r.Tags, tag)
}

// RecipeInput is the create payload: a recipe without an identifier.
type RecipeInput struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Cuisine     string     `json:"cuisine"`
	Difficulty  Difficulty `json:"difficulty"`
	TimeMinutes int        `json:"timeMinutes"`
	Tags        []string   `json:"tags"`
	Image       string     `json:"image,omitempty"`
	Ingredients []string   `json:"ingredients,omitempty"`
	Steps       []string   `json:"steps,omitempty"`
}

// Validate rejects payloads that could never form a valid recipe.
func (in RecipeInput) Validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if !in.Difficulty.Valid() {
		return fmt.Errorf("%w: unknown difficulty %q", ErrInvalidInput, in.Difficulty)
	}
	if in.TimeMinutes < 0 {
		return fmt.Errorf("%w: time must be non-negative, got %d", ErrInvalidInput, in.TimeMinutes)
	}
	return nil
}

// WithID builds the stored recipe for this payload.
func (in RecipeInput) WithID(id string) Recipe {
	return Recipe{
		ID:          id,
		Title:       in.Title,
		Description: in.Description,
		Cuisine:     in.Cuisine,
		Difficulty:  in.Difficulty,
		TimeMinutes: in.TimeMinutes,
		Tags:        slices.Clone(in.Tags),
		Image:       in.Image,
		Ingredients: slices.Clone(in.Ingredients),
		Steps:       slices.Clone(in.Steps),
	}
}

// RecipePatch is a partial update. A nil field means "leave unchanged"; a
// non-nil slice pointer to an empty slice clears the field.
type RecipePatch struct {
	Title       *string     `json:"title,omitempty"`
	Description *string     `json:"description,omitempty"`
	Cuisine     *string     `json:"cuisine,omitempty"`
	Difficulty  *Difficulty `json:"difficulty,omitempty"`
	TimeMinutes *int        `json:"timeMinutes,omitempty"`
	Tags        *[]string   `json:"tags,omitempty"`
	Image       *string     `json:"image,omitempty"`
	Ingredients *[]string   `json:"ingredients,omitempty"`
	Steps       *[]string   `json:"steps,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p RecipePatch) Empty() bool {
	return p == RecipePatch{}
}

// Validate checks the fields that are set.
func (p RecipePatch) Validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return fmt.Errorf("%w: title cannot be blank", ErrInvalidInput)
	}
	if p.Difficulty != nil && !p.Difficulty.Valid() {
		return fmt.Errorf("%w: unknown difficulty %q", ErrInvalidInput, *p.Difficulty)
	}
	if p.TimeMinutes != nil && *p.TimeMinutes < 0 {
		return fmt.Errorf("%w: time must be non-negative, got %d", ErrInvalidInput, *p.TimeMinutes)
	}
	return nil
}

// Apply returns r with every set field of p replaced. The identifier is
// never touched. Replacement is shallow: a set slice replaces the whole slice.
func (p RecipePatch) Apply(r Recipe) Recipe {
	out := r.Clone()
	if p.Title != nil {
		out.Title = *p.Title
	}
	if p.Description != nil {
		out.Description = *p.Description
	}
	if p.Cuisine != nil {
		out.Cuisine = *p.Cuisine
	}
	if p.Difficulty != nil {
		out.Difficulty = *p.Difficulty
	}
	if p.TimeMinutes != nil {
		out.TimeMinutes = *p.TimeMinutes
	}
	if p.Tags != nil {
		out.Tags = slices.Clone(*p.Tags)
	}
	if p.Image != nil {
		out.Image = *p.Image
	}
	if p.Ingredients != nil {
		out.Ingredients = slices.Clone(*p.Ingredients)
	}
	if p.Steps != nil {
		out.Steps = slices.Clone(*p.Steps)
	}
	return out
}

// RecipeUpdate is what an update returns. Only ID is guaranteed: a backend
// may echo just the fields it changed, so the rest merges like a patch.
type RecipeUpdate struct {
	ID string `json:"id"`
	RecipePatch
}

// FullUpdate reports every field of r as set.
func FullUpdate(r Recipe) RecipeUpdate {
	r = r.Clone()
	return RecipeUpdate{
		ID: r.ID,
		RecipePatch: RecipePatch{
			Title:       &r.Title,
			Description: &r.Description,
			Cuisine:     &r.Cuisine,
			Difficulty:  &r.Difficulty,
			TimeMinutes: &r.TimeMinutes,
			Tags:        &r.Tags,
			Image:       &r.Image,
			Ingredients: &r.Ingredients,
			Steps:       &r.Steps,
		},
	}
}
