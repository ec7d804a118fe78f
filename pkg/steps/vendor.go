package steps

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/homebysix/discentem-recipes/pkg/api"
	"github.com/homebysix/discentem-recipes/pkg/providers"
)

// VarDownloadedFolder is written by vendor steps.
const VarDownloadedFolder = "downloaded_folder_path"

type vendorStep struct {
	name string
	cfg  *api.VendorConfig
}

func (s *vendorStep) Name() string { return s.name }
func (s *vendorStep) Kind() string { return api.StepKindVendor }

func (s *vendorStep) Args() map[string]string {
	return map[string]string{
		"repo":        s.cfg.Repo,
		"folder":      s.cfg.Folder,
		"commit":      s.cfg.Commit,
		"destination": s.cfg.Destination,
	}
}

func (s *vendorStep) Outputs() []string { return []string{VarDownloadedFolder} }

func (s *vendorStep) Run(ctx context.Context, sc StepContext) (*StepResult, error) {
	var cleanup []string
	dest := sc.Args["destination"]
	if dest == "" {
		scratch, err := os.MkdirTemp(sc.CacheDir, "vendor-")
		if err != nil {
			return nil, fmt.Errorf("%w: creating scratch directory: %v", providers.ErrIOFailure, err)
		}
		dest = scratch
		cleanup = append(cleanup, scratch)
	}

	convert := true
	if s.cfg.Convert != nil {
		convert = *s.cfg.Convert
	}

	err := sc.Providers.Vendorer.Vendor(ctx, providers.VendorSpec{
		Repo:          sc.Args["repo"],
		Folder:        sc.Args["folder"],
		Commit:        sc.Args["commit"],
		Destination:   dest,
		ConvertPlists: convert,
	})
	if err != nil {
		for _, p := range cleanup {
			os.RemoveAll(p)
		}
		return nil, err
	}
	slog.Info("vendored folder", "step", s.name, "repo", sc.Args["repo"], "commit", sc.Args["commit"], "destination", dest)
	return &StepResult{
		Vars:    map[string]string{VarDownloadedFolder: dest},
		Cleanup: cleanup,
	}, nil
}
