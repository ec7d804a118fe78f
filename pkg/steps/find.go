package steps

import (
	"context"

	"github.com/homebysix/discentem-recipes/pkg/api"
)

// VarFoundFilename is written by find steps.
const VarFoundFilename = "found_filename"

type findStep struct {
	name string
	cfg  *api.FindConfig
}

func (s *findStep) Name() string { return s.name }
func (s *findStep) Kind() string { return api.StepKindFind }

func (s *findStep) Args() map[string]string {
	return map[string]string{"pattern": s.cfg.Pattern}
}

func (s *findStep) Outputs() []string { return []string{VarFoundFilename} }

func (s *findStep) Run(_ context.Context, sc StepContext) (*StepResult, error) {
	found, err := sc.Providers.Finder.FindOne(sc.CacheDir, sc.Args["pattern"])
	if err != nil {
		return nil, err
	}
	return &StepResult{Vars: map[string]string{VarFoundFilename: found}}, nil
}
