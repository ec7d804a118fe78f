// Package steps implements the closed set of recipe step kinds. Each
// variant exposes its raw templated arguments, the variables it is allowed
// to write, and a Run that delegates to exactly one capability provider.
package steps

import (
	"context"

	"github.com/homebysix/discentem-recipes/pkg/providers"
)

// StepContext provides the runtime context for a step. Args holds the
// step's arguments after placeholder substitution.
type StepContext struct {
	WorkDir   string
	CacheDir  string
	Args      map[string]string
	Providers *providers.Set
}

// StepResult holds the output of a step.
type StepResult struct {
	// Vars are produced variables; the engine only merges keys the step
	// declared in Outputs.
	Vars map[string]string
	// Cleanup lists temporary paths to remove when the run ends, on every
	// exit path.
	Cleanup []string
}

// Step is the interface all recipe steps implement.
type Step interface {
	Name() string
	Kind() string
	// Args returns the raw, possibly templated arguments the engine must
	// substitute before Run.
	Args() map[string]string
	// Outputs returns the variables this step is permitted to write.
	Outputs() []string
	Run(ctx context.Context, sc StepContext) (*StepResult, error)
}
