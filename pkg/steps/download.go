package steps

import (
	"context"
	"log/slog"
	"path"
	"path/filepath"
	"strconv"

	"github.com/homebysix/discentem-recipes/pkg/api"
)

// Variables written by download steps.
const (
	VarPathname        = "pathname"
	VarDownloadChanged = "download_changed"
)

type downloadStep struct {
	name string
	cfg  *api.DownloadConfig
}

func (s *downloadStep) Name() string { return s.name }
func (s *downloadStep) Kind() string { return api.StepKindDownload }

func (s *downloadStep) Args() map[string]string {
	return map[string]string{"url": s.cfg.URL, "filename": s.cfg.Filename}
}

func (s *downloadStep) Outputs() []string {
	return []string{VarPathname, VarDownloadChanged}
}

func (s *downloadStep) Run(ctx context.Context, sc StepContext) (*StepResult, error) {
	url := sc.Args["url"]

	dest := sc.Args["filename"]
	if dest == "" {
		dest = path.Base(url)
	}
	if !filepath.IsAbs(dest) {
		dest = filepath.Join(sc.CacheDir, "downloads", dest)
	}

	res, err := sc.Providers.Fetcher.Download(ctx, url, dest)
	if err != nil {
		return nil, err
	}
	slog.Info("downloaded artifact", "step", s.name, "path", res.Path, "changed", res.Changed, "size", res.Size)
	return &StepResult{Vars: map[string]string{
		VarPathname:        res.Path,
		VarDownloadChanged: strconv.FormatBool(res.Changed),
	}}, nil
}
