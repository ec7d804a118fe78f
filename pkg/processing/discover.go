package processing

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	"github.com/homebysix/discentem-recipes/pkg/api"
)

const recipeSuffix = ".recipe.yaml"

// DiscoverRecipes walks root looking for *.recipe.yaml files up to
// maxDepth. A maxDepth of -1 means unlimited. 0 means only root itself.
// Results are sorted by path depth (parents before children).
func DiscoverRecipes(root string, maxDepth int) ([]*api.Recipe, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving root path: %w", err)
	}

	paths, err := collectRecipePaths(absRoot, maxDepth)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(paths, func(a, b string) int {
		if d := pathDepth(a) - pathDepth(b); d != 0 {
			return d
		}
		return strings.Compare(a, b)
	})

	recipes := make([]*api.Recipe, 0, len(paths))
	for _, p := range paths {
		recipe, err := api.LoadRecipe(p)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", p, err)
		}
		recipes = append(recipes, recipe)
	}
	return recipes, nil
}

func collectRecipePaths(absRoot string, maxDepth int) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("walk error at %s: %w", path, err)
		}

		if d.IsDir() && maxDepth >= 0 {
			rel, relErr := filepath.Rel(absRoot, path)
			if relErr != nil {
				return fmt.Errorf("computing relative path for %s: %w", path, relErr)
			}
			if pathDepth(rel) > maxDepth {
				return filepath.SkipDir
			}
		}

		if !d.IsDir() && strings.HasSuffix(d.Name(), recipeSuffix) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking directory tree: %w", err)
	}
	return paths, nil
}

func pathDepth(p string) int {
	if p == "." {
		return 0
	}
	return strings.Count(filepath.ToSlash(p), "/") + 1
}

// RunAll discovers recipes under root and executes each with the shared
// seed context. A checkpoint halt counts as success. The returned error
// summarizes failed recipes; individual results carry the detail.
func (e *Engine) RunAll(ctx context.Context, root string, maxDepth int, seed map[string]string) ([]*RunResult, error) {
	recipes, err := DiscoverRecipes(root, maxDepth)
	if err != nil {
		return nil, fmt.Errorf("discovering recipes: %w", err)
	}

	if len(recipes) == 0 {
		slog.Warn("no recipe files found", "dir", root)
		return nil, nil
	}

	slog.Info("discovered recipes", "count", len(recipes))

	results := make([]*RunResult, 0, len(recipes))
	var failed []string
	for _, r := range recipes {
		slog.Info("executing recipe", "path", r.FilePath)
		result := e.Run(ctx, r, seed)
		results = append(results, result)

		switch result.Outcome {
		case OutcomeHaltedError:
			slog.Error("recipe failed", "path", r.FilePath, "step", result.FailedStep, "kind", result.FailedKind, "error", result.Err)
			failed = append(failed, r.FilePath)
		case OutcomeHaltedOk:
			slog.Info("recipe halted at checkpoint", "path", r.FilePath)
		default:
			slog.Info("recipe succeeded", "path", r.FilePath)
		}
	}

	if len(failed) > 0 {
		return results, fmt.Errorf("%d recipe(s) failed: %v", len(failed), failed)
	}
	return results, nil
}
