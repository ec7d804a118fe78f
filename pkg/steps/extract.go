package steps

import (
	"context"

	"github.com/homebysix/discentem-recipes/pkg/api"
)

// VarVersion is the default output of extract steps.
const VarVersion = "version"

type extractStep struct {
	name string
	cfg  *api.ExtractConfig
}

func (s *extractStep) Name() string { return s.name }
func (s *extractStep) Kind() string { return api.StepKindExtract }

func (s *extractStep) Args() map[string]string {
	return map[string]string{"path": s.cfg.Path, "key": s.cfg.Key}
}

func (s *extractStep) output() string {
	if s.cfg.Output != "" {
		return s.cfg.Output
	}
	return VarVersion
}

func (s *extractStep) Outputs() []string { return []string{s.output()} }

func (s *extractStep) Run(_ context.Context, sc StepContext) (*StepResult, error) {
	value, err := sc.Providers.Metadata.ReadField(sc.Args["path"], sc.Args["key"])
	if err != nil {
		return nil, err
	}
	return &StepResult{Vars: map[string]string{s.output(): value}}, nil
}
