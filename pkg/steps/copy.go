package steps

import (
	"context"
	"log/slog"

	"github.com/homebysix/discentem-recipes/pkg/api"
)

// VarCopiedPath is written by copy steps.
const VarCopiedPath = "copied_path"

type copyStep struct {
	name string
	cfg  *api.CopyConfig
}

func (s *copyStep) Name() string { return s.name }
func (s *copyStep) Kind() string { return api.StepKindCopy }

func (s *copyStep) Args() map[string]string {
	return map[string]string{"source": s.cfg.Source, "destination": s.cfg.Destination}
}

func (s *copyStep) Outputs() []string { return []string{VarCopiedPath} }

func (s *copyStep) Run(_ context.Context, sc StepContext) (*StepResult, error) {
	src, dst := sc.Args["source"], sc.Args["destination"]
	if err := sc.Providers.Copier.Copy(src, dst); err != nil {
		return nil, err
	}
	slog.Info("staged artifact", "step", s.name, "destination", dst)
	return &StepResult{Vars: map[string]string{VarCopiedPath: dst}}, nil
}
