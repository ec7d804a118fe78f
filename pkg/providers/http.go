package providers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

// HTTPFetcher is the real Fetcher, backed by net/http. Downloads keep a
// sidecar file with the validators from the last transfer so reruns can
// issue conditional requests.
type HTTPFetcher struct {
	Client *http.Client
}

type downloadMeta struct {
	ETag         string `yaml:"etag,omitempty"`
	LastModified string `yaml:"last_modified,omitempty"`
}

const metaSuffix = ".meta.yaml"

func (f *HTTPFetcher) client() *http.Client {
	if f.Client != nil {
		return f.Client
	}
	return http.DefaultClient
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	resp, err := f.client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned %s", ErrFetchFailed, url, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrFetchFailed, url, err)
	}
	return body, nil
}

func (f *HTTPFetcher) Search(ctx context.Context, url, pattern string) (string, error) {
	body, err := f.Fetch(ctx, url)
	if err != nil {
		return "", err
	}
	return FirstMatch(string(body), pattern)
}

// FirstMatch returns the first occurrence of pattern in body, in document
// order. When the pattern has a capturing group the first group wins,
// otherwise the whole match is returned.
func FirstMatch(body, pattern string) (string, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return "", fmt.Errorf("compiling pattern %q: %w", pattern, err)
	}
	m := re.FindStringSubmatch(body)
	if m == nil {
		return "", fmt.Errorf("%w: pattern %q", ErrNoMatch, pattern)
	}
	if len(m) > 1 && m[1] != "" {
		return m[1], nil
	}
	return m[0], nil
}

func (f *HTTPFetcher) Download(ctx context.Context, url, dest string) (*DownloadResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	meta := readMeta(dest)
	if _, statErr := os.Stat(dest); statErr == nil && meta != nil {
		if meta.ETag != "" {
			req.Header.Set("If-None-Match", meta.ETag)
		}
		if meta.LastModified != "" {
			req.Header.Set("If-Modified-Since", meta.LastModified)
		}
	}

	resp, err := f.client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNotModified:
		info, err := os.Stat(dest)
		if err != nil {
			return nil, fmt.Errorf("%w: cached copy missing for %s: %v", ErrFetchFailed, url, err)
		}
		res := &DownloadResult{Path: dest, Changed: false, Size: info.Size()}
		if meta != nil {
			res.ETag = meta.ETag
			res.LastModified = meta.LastModified
		}
		return res, nil
	case http.StatusOK:
		// fall through to the transfer
	default:
		return nil, fmt.Errorf("%w: %s returned %s", ErrFetchFailed, url, resp.Status)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o750); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	// Write to a scratch file first so an interrupted transfer never
	// replaces a good cached artifact.
	tmp, err := os.CreateTemp(filepath.Dir(dest), filepath.Base(dest)+".partial-*")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	size, copyErr := io.Copy(tmp, resp.Body)
	closeErr := tmp.Close()
	if copyErr != nil || closeErr != nil {
		os.Remove(tmp.Name())
		if copyErr == nil {
			copyErr = closeErr
		}
		return nil, fmt.Errorf("%w: writing %s: %v", ErrFetchFailed, dest, copyErr)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	res := &DownloadResult{
		Path:         dest,
		Changed:      true,
		ETag:         resp.Header.Get("ETag"),
		LastModified: resp.Header.Get("Last-Modified"),
		Size:         size,
	}
	writeMeta(dest, &downloadMeta{ETag: res.ETag, LastModified: res.LastModified})
	return res, nil
}

func readMeta(dest string) *downloadMeta {
	data, err := os.ReadFile(dest + metaSuffix)
	if err != nil {
		return nil
	}
	var m downloadMeta
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil
	}
	return &m
}

func writeMeta(dest string, m *downloadMeta) {
	if m.ETag == "" && m.LastModified == "" {
		return
	}
	data, err := yaml.Marshal(m)
	if err != nil {
		return
	}
	// Validators are an optimization; failure to record them only costs a
	// re-download next run.
	_ = os.WriteFile(dest+metaSuffix, data, 0o600)
}
