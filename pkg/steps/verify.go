package steps

import (
	"context"
	"log/slog"

	"github.com/homebysix/discentem-recipes/pkg/api"
)

type verifyStep struct {
	name string
	cfg  *api.VerifyConfig
}

func (s *verifyStep) Name() string { return s.name }
func (s *verifyStep) Kind() string { return api.StepKindVerify }

func (s *verifyStep) Args() map[string]string {
	return map[string]string{"path": s.cfg.Path, "requirement": s.cfg.Requirement}
}

func (s *verifyStep) Outputs() []string { return nil }

func (s *verifyStep) Run(ctx context.Context, sc StepContext) (*StepResult, error) {
	if err := sc.Providers.Verifier.Verify(ctx, sc.Args["path"], sc.Args["requirement"]); err != nil {
		return nil, err
	}
	slog.Info("signature verified", "step", s.name, "path", sc.Args["path"])
	return &StepResult{}, nil
}
