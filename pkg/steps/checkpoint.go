package steps

import (
	"context"

	"github.com/homebysix/discentem-recipes/pkg/api"
)

// checkpointStep is pure: it never calls a provider and writes nothing.
// The engine evaluates its condition and may halt the run successfully
// instead of invoking Run.
type checkpointStep struct {
	name string
	cfg  *api.CheckpointConfig
}

func (s *checkpointStep) Name() string { return s.name }
func (s *checkpointStep) Kind() string { return api.StepKindCheckpoint }

func (s *checkpointStep) Args() map[string]string { return nil }

func (s *checkpointStep) Outputs() []string { return nil }

func (s *checkpointStep) Run(context.Context, StepContext) (*StepResult, error) {
	return &StepResult{}, nil
}
