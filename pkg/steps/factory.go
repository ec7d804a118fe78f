package steps

import (
	"fmt"

	"github.com/homebysix/discentem-recipes/pkg/api"
)

// NewStep creates a Step implementation from a StepConfig.
func NewStep(cfg api.StepConfig) (Step, error) {
	switch cfg.Kind {
	case api.StepKindSearch:
		return &searchStep{name: cfg.Name, cfg: cfg.Search}, nil
	case api.StepKindDownload:
		return &downloadStep{name: cfg.Name, cfg: cfg.Download}, nil
	case api.StepKindFind:
		return &findStep{name: cfg.Name, cfg: cfg.Find}, nil
	case api.StepKindVerify:
		return &verifyStep{name: cfg.Name, cfg: cfg.Verify}, nil
	case api.StepKindExtract:
		return &extractStep{name: cfg.Name, cfg: cfg.Extract}, nil
	case api.StepKindCopy:
		return &copyStep{name: cfg.Name, cfg: cfg.Copy}, nil
	case api.StepKindCheckpoint:
		return &checkpointStep{name: cfg.Name, cfg: cfg.Checkpoint}, nil
	case api.StepKindShell:
		return &shellStep{name: cfg.Name, cfg: cfg.Shell}, nil
	case api.StepKindJSONKey:
		return &jsonKeyStep{name: cfg.Name, cfg: cfg.JSONKey}, nil
	case api.StepKindVendor:
		return &vendorStep{name: cfg.Name, cfg: cfg.Vendor}, nil
	default:
		return nil, fmt.Errorf("unknown step kind: %s", cfg.Kind)
	}
}
