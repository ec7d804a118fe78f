package api

import "fmt"

var validStepKinds = map[string]bool{
	StepKindSearch:     true,
	StepKindDownload:   true,
	StepKindFind:       true,
	StepKindVerify:     true,
	StepKindExtract:    true,
	StepKindCopy:       true,
	StepKindCheckpoint: true,
	StepKindShell:      true,
	StepKindJSONKey:    true,
	StepKindVendor:     true,
}

// Validate checks the recipe configuration for errors.
func (r *Recipe) Validate() error {
	if len(r.Process) == 0 {
		return fmt.Errorf("recipe has no steps")
	}

	names := make(map[string]int)

	for i, step := range r.Process {
		if step.Name == "" {
			return fmt.Errorf("step %d: name is required", i)
		}
		if prev, exists := names[step.Name]; exists {
			return fmt.Errorf("step %d: duplicate step name %q (first defined at step %d)", i, step.Name, prev)
		}
		names[step.Name] = i

		if !validStepKinds[step.Kind] {
			return fmt.Errorf("step %q: unknown kind %q", step.Name, step.Kind)
		}

		for _, block := range configuredBlocks(step) {
			if block != step.Kind {
				return fmt.Errorf("step %q: %s config does not belong to kind %q", step.Name, block, step.Kind)
			}
		}

		if err := validateStepConfig(step); err != nil {
			return fmt.Errorf("step %q: %w", step.Name, err)
		}
	}

	return nil
}

// configuredBlocks lists the kind-specific config blocks a step carries.
// Each must match the step's declared kind.
func configuredBlocks(step StepConfig) []string {
	var blocks []string
	if step.Search != nil {
		blocks = append(blocks, StepKindSearch)
	}
	if step.Download != nil {
		blocks = append(blocks, StepKindDownload)
	}
	if step.Find != nil {
		blocks = append(blocks, StepKindFind)
	}
	if step.Verify != nil {
		blocks = append(blocks, StepKindVerify)
	}
	if step.Extract != nil {
		blocks = append(blocks, StepKindExtract)
	}
	if step.Copy != nil {
		blocks = append(blocks, StepKindCopy)
	}
	if step.Checkpoint != nil {
		blocks = append(blocks, StepKindCheckpoint)
	}
	if step.Shell != nil {
		blocks = append(blocks, StepKindShell)
	}
	if step.JSONKey != nil {
		blocks = append(blocks, StepKindJSONKey)
	}
	if step.Vendor != nil {
		blocks = append(blocks, StepKindVendor)
	}
	return blocks
}

func validateStepConfig(step StepConfig) error {
	switch step.Kind {
	case StepKindSearch:
		if step.Search == nil {
			return fmt.Errorf("search config is required")
		}
		if step.Search.URL == "" {
			return fmt.Errorf("search.url is required")
		}
		if step.Search.Pattern == "" {
			return fmt.Errorf("search.pattern is required")
		}
	case StepKindDownload:
		if step.Download == nil {
			return fmt.Errorf("download config is required")
		}
		if step.Download.URL == "" {
			return fmt.Errorf("download.url is required")
		}
	case StepKindFind:
		if step.Find == nil {
			return fmt.Errorf("find config is required")
		}
		if step.Find.Pattern == "" {
			return fmt.Errorf("find.pattern is required")
		}
	case StepKindVerify:
		if step.Verify == nil {
			return fmt.Errorf("verify config is required")
		}
		if step.Verify.Path == "" {
			return fmt.Errorf("verify.path is required")
		}
	case StepKindExtract:
		if step.Extract == nil {
			return fmt.Errorf("extract config is required")
		}
		if step.Extract.Path == "" {
			return fmt.Errorf("extract.path is required")
		}
		if step.Extract.Key == "" {
			return fmt.Errorf("extract.key is required")
		}
	case StepKindCopy:
		if step.Copy == nil {
			return fmt.Errorf("copy config is required")
		}
		if step.Copy.Source == "" {
			return fmt.Errorf("copy.source is required")
		}
		if step.Copy.Destination == "" {
			return fmt.Errorf("copy.destination is required")
		}
	case StepKindCheckpoint:
		// Checkpoint takes no required config; when is optional.
	case StepKindShell:
		if step.Shell == nil {
			return fmt.Errorf("shell config is required")
		}
		if step.Shell.Command == "" {
			return fmt.Errorf("shell.command is required")
		}
	case StepKindJSONKey:
		if step.JSONKey == nil {
			return fmt.Errorf("json-key config is required")
		}
		if step.JSONKey.URL == "" {
			return fmt.Errorf("json-key.url is required")
		}
		if step.JSONKey.Key == "" {
			return fmt.Errorf("json-key.key is required")
		}
		if step.JSONKey.Output == "" {
			return fmt.Errorf("json-key.output is required")
		}
	case StepKindVendor:
		if step.Vendor == nil {
			return fmt.Errorf("vendor config is required")
		}
		if step.Vendor.Repo == "" {
			return fmt.Errorf("vendor.repo is required")
		}
		if step.Vendor.Folder == "" {
			return fmt.Errorf("vendor.folder is required")
		}
		if step.Vendor.Commit == "" {
			return fmt.Errorf("vendor.commit is required")
		}
	}
	return nil
}
