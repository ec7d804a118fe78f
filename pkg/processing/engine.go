package processing

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"slices"

	"github.com/expr-lang/expr"
	"github.com/homebysix/discentem-recipes/pkg/api"
	"github.com/homebysix/discentem-recipes/pkg/providers"
	"github.com/homebysix/discentem-recipes/pkg/steps"
)

// Outcome is the terminal state of one pipeline run.
type Outcome string

const (
	// OutcomeCompleted means every step ran.
	OutcomeCompleted Outcome = "completed"
	// OutcomeHaltedOk means a checkpoint stopped the run successfully
	// before the last step.
	OutcomeHaltedOk Outcome = "halted-ok"
	// OutcomeHaltedError means a step failed; no later step ran.
	OutcomeHaltedError Outcome = "halted-error"
)

// RunResult reports one run: its outcome, the final context, and for
// failures the step that halted it.
type RunResult struct {
	RecipePath string
	Outcome    Outcome
	Context    *Context
	FailedStep string
	FailedKind string
	Err        error
}

// Engine executes recipes sequentially against a provider set. One engine
// may run many recipes; each run owns its own Context.
type Engine struct {
	Providers *providers.Set
	CacheDir  string
}

// Run executes recipe with seed pre-loaded into a fresh context. Recipe
// input values override seed values. Rerunning with identical provider
// responses yields an identical final context.
func (e *Engine) Run(ctx context.Context, recipe *api.Recipe, seed map[string]string) *RunResult {
	c := NewContext()
	// Path variables are available to step 0's argument templates.
	if e.CacheDir != "" {
		c.Set("CACHE_DIR", e.CacheDir)
	}
	if recipe.Dir != "" {
		c.Set("RECIPE_DIR", recipe.Dir)
	}
	c.Seed(MergeSeeds(seed, recipe.Input))

	result := &RunResult{RecipePath: recipe.FilePath, Context: c}

	var cleanup []string
	defer func() { removeTempResources(cleanup) }()

	for i, cfg := range recipe.Process {
		// Caller aborts take effect between steps, never mid-step.
		if err := ctx.Err(); err != nil {
			return result.halt(cfg, fmt.Errorf("aborted before step %q: %w", cfg.Name, err))
		}

		step, err := steps.NewStep(cfg)
		if err != nil {
			return result.halt(cfg, err)
		}

		slog.Info("running step", "recipe", recipe.FilePath, "step", cfg.Name, "kind", cfg.Kind, "index", i)

		if cfg.Kind == api.StepKindCheckpoint {
			done, err := checkpointTriggered(cfg.Checkpoint, c)
			if err != nil {
				return result.halt(cfg, err)
			}
			if done {
				slog.Info("checkpoint reached, nothing new to process", "recipe", recipe.FilePath, "step", cfg.Name)
				result.Outcome = OutcomeHaltedOk
				return result
			}
			continue
		}

		resolved, err := SubstituteArgs(step.Args(), c)
		if err != nil {
			return result.halt(cfg, err)
		}

		sr, err := step.Run(ctx, steps.StepContext{
			WorkDir:   recipe.Dir,
			CacheDir:  e.CacheDir,
			Args:      resolved,
			Providers: e.Providers,
		})
		if err != nil {
			return result.halt(cfg, err)
		}

		if sr != nil {
			cleanup = append(cleanup, sr.Cleanup...)
			if err := mergeOutputs(c, step.Outputs(), sr.Vars); err != nil {
				return result.halt(cfg, err)
			}
		}
	}

	result.Outcome = OutcomeCompleted
	return result
}

func (r *RunResult) halt(cfg api.StepConfig, err error) *RunResult {
	r.Outcome = OutcomeHaltedError
	r.FailedStep = cfg.Name
	r.FailedKind = cfg.Kind
	r.Err = fmt.Errorf("step %q (%s): %w", cfg.Name, cfg.Kind, err)
	return r
}

// mergeOutputs writes produced variables into the context in declared
// order. A step producing an undeclared key is a defect in the step
// variant and halts the run.
func mergeOutputs(c *Context, declared []string, vars map[string]string) error {
	for k := range vars {
		if !slices.Contains(declared, k) {
			return fmt.Errorf("step wrote undeclared output %q", k)
		}
	}
	for _, k := range declared {
		if v, ok := vars[k]; ok {
			c.Set(k, v)
		}
	}
	return nil
}

// checkpointTriggered decides whether a checkpoint halts the run. An
// explicit when expression is evaluated against the context; otherwise
// the checkpoint halts when the last download reported an unchanged
// artifact.
func checkpointTriggered(cfg *api.CheckpointConfig, c *Context) (bool, error) {
	if cfg != nil && cfg.When != "" {
		env := make(map[string]any)
		for k, v := range c.Snapshot() {
			env[k] = v
		}
		program, err := expr.Compile(cfg.When, expr.Env(env), expr.AsBool(), expr.AllowUndefinedVariables())
		if err != nil {
			return false, fmt.Errorf("compiling checkpoint condition: %w", err)
		}
		out, err := expr.Run(program, env)
		if err != nil {
			return false, fmt.Errorf("evaluating checkpoint condition: %w", err)
		}
		return out.(bool), nil
	}

	changed, err := c.Get(steps.VarDownloadChanged)
	if err != nil {
		// Nothing downloaded yet: keep going.
		return false, nil
	}
	return changed == "false", nil
}

func removeTempResources(paths []string) {
	for _, p := range paths {
		slog.Debug("removing temporary resource", "path", p)
		if err := os.RemoveAll(p); err != nil {
			slog.Warn("failed to remove temporary resource", "path", p, "error", err)
		}
	}
}
