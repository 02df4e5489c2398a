package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hammamikhairi/recipebook/internal/domain"
)

// seedFile is the on-disk layout of a mock dataset seed:
//
//	recipes:
//	  - id: "1"
//	    title: Lemon Herb Grilled Salmon
//	    difficulty: Medium
//	    ...
type seedFile struct {
	Recipes []domain.Recipe `yaml:"recipes"`
}

// LoadSeed reads recipes for the mock dataset from a YAML file.
func LoadSeed(path string) ([]domain.Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed: %w", err)
	}
	return ParseSeed(data)
}

// ParseSeed decodes and validates a YAML seed document. Every recipe needs a
// unique id, a title and a known difficulty.
func ParseSeed(data []byte) ([]domain.Recipe, error) {
	var file seedFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: decode seed: %v", domain.ErrInvalidInput, err)
	}

	seen := make(map[string]bool, len(file.Recipes))
	for i, r := range file.Recipes {
		if strings.TrimSpace(r.ID) == "" {
			return nil, fmt.Errorf("%w: seed entry %d missing id", domain.ErrInvalidInput, i)
		}
		if seen[r.ID] {
			return nil, fmt.Errorf("%w: duplicate seed id %q", domain.ErrInvalidInput, r.ID)
		}
		seen[r.ID] = true

		in := domain.RecipeInput{Title: r.Title, Difficulty: r.Difficulty, TimeMinutes: r.TimeMinutes}
		if err := in.Validate(); err != nil {
			return nil, fmt.Errorf("seed entry %q: %w", r.ID, err)
		}
		if r.Tags == nil {
			file.Recipes[i].Tags = []string{}
		}
	}
	return file.Recipes, nil
}
