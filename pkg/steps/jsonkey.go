package steps

import (
	"context"

	"github.com/homebysix/discentem-recipes/pkg/api"
	"github.com/homebysix/discentem-recipes/pkg/providers"
)

type jsonKeyStep struct {
	name string
	cfg  *api.JSONKeyConfig
}

func (s *jsonKeyStep) Name() string { return s.name }
func (s *jsonKeyStep) Kind() string { return api.StepKindJSONKey }

func (s *jsonKeyStep) Args() map[string]string {
	return map[string]string{"url": s.cfg.URL, "key": s.cfg.Key}
}

func (s *jsonKeyStep) Outputs() []string { return []string{s.cfg.Output} }

func (s *jsonKeyStep) Run(ctx context.Context, sc StepContext) (*StepResult, error) {
	body, err := sc.Providers.Fetcher.Fetch(ctx, sc.Args["url"])
	if err != nil {
		return nil, err
	}
	value, err := providers.JSONKey(body, sc.Args["key"])
	if err != nil {
		return nil, err
	}
	return &StepResult{Vars: map[string]string{s.cfg.Output: value}}, nil
}
