package steps

import (
	"context"
	"log/slog"

	"github.com/homebysix/discentem-recipes/pkg/api"
)

// VarMatch is written by search steps.
const VarMatch = "match"

type searchStep struct {
	name string
	cfg  *api.SearchConfig
}

func (s *searchStep) Name() string { return s.name }
func (s *searchStep) Kind() string { return api.StepKindSearch }

func (s *searchStep) Args() map[string]string {
	return map[string]string{"url": s.cfg.URL, "pattern": s.cfg.Pattern}
}

func (s *searchStep) Outputs() []string { return []string{VarMatch} }

func (s *searchStep) Run(ctx context.Context, sc StepContext) (*StepResult, error) {
	match, err := sc.Providers.Fetcher.Search(ctx, sc.Args["url"], sc.Args["pattern"])
	if err != nil {
		return nil, err
	}
	slog.Debug("search matched", "step", s.name, "match", match)
	return &StepResult{Vars: map[string]string{VarMatch: match}}, nil
}
