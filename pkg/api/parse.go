package api

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadRecipe reads a *.recipe.yaml file, sets Dir/FilePath, and validates it.
func LoadRecipe(filename string) (*Recipe, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading recipe file: %w", err)
	}

	var r Recipe
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parsing recipe file: %w", err)
	}

	absPath, err := filepath.Abs(filename)
	if err != nil {
		return nil, fmt.Errorf("resolving absolute path: %w", err)
	}
	r.FilePath = absPath
	r.Dir = filepath.Dir(absPath)

	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("validating recipe %s: %w", filename, err)
	}

	return &r, nil
}
