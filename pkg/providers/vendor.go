package providers

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
	"howett.net/plist"
)

// GitHubVendorer vendors folders through the GitHub contents API. Every
// file is fetched at the pinned commit and written with a comment header
// recording where it came from. Base URLs are overridable for tests.
type GitHubVendorer struct {
	Client *http.Client
	// Token is sent as a bearer token when set (private repos, rate limits).
	Token   string
	APIBase string
	RawBase string

	now func() time.Time
}

func (v *GitHubVendorer) client() *http.Client {
	if v.Client != nil {
		return v.Client
	}
	return http.DefaultClient
}

func (v *GitHubVendorer) apiBase() string {
	if v.APIBase != "" {
		return v.APIBase
	}
	return "https://api.github.com"
}

func (v *GitHubVendorer) rawBase() string {
	if v.RawBase != "" {
		return v.RawBase
	}
	return "https://raw.githubusercontent.com"
}

func (v *GitHubVendorer) timestamp() string {
	now := time.Now
	if v.now != nil {
		now = v.now
	}
	return now().UTC().Format("2006-01-02 15:04:05 UTC")
}

func (v *GitHubVendorer) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	if v.Token != "" {
		req.Header.Set("Authorization", "Bearer "+v.Token)
	}
	resp, err := v.client().Do(req)
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

func (v *GitHubVendorer) Vendor(ctx context.Context, spec VendorSpec) error {
	return v.vendorFolder(ctx, spec, spec.Folder, spec.Destination)
}

func (v *GitHubVendorer) vendorFolder(ctx context.Context, spec VendorSpec, folder, destDir string) error {
	listing, err := v.get(ctx, fmt.Sprintf("%s/repos/%s/contents/%s?ref=%s", v.apiBase(), spec.Repo, folder, spec.Commit))
	if err != nil {
		return err
	}
	entries := gjson.ParseBytes(listing)
	if !entries.IsArray() {
		return fmt.Errorf("%w: contents listing for %q is not a folder", ErrFetchFailed, folder)
	}

	var walkErr error
	entries.ForEach(func(_, item gjson.Result) bool {
		name := item.Get("name").String()
		itemPath := item.Get("path").String()

		switch item.Get("type").String() {
		case "dir":
			walkErr = v.vendorFolder(ctx, spec, itemPath, filepath.Join(destDir, name))
		case "file":
			walkErr = v.vendorFile(ctx, spec, itemPath, filepath.Join(destDir, name))
		default:
			slog.Debug("skipping unknown entry type", "path", itemPath, "type", item.Get("type").String())
		}
		return walkErr == nil
	})
	return walkErr
}

func (v *GitHubVendorer) vendorFile(ctx context.Context, spec VendorSpec, itemPath, destPath string) error {
	raw, err := v.get(ctx, fmt.Sprintf("%s/%s/%s/%s", v.rawBase(), spec.Repo, spec.Commit, itemPath))
	if err != nil {
		return err
	}

	sourceURL := fmt.Sprintf("https://github.com/%s/blob/%s/%s", spec.Repo, spec.Commit, itemPath)

	var contents string
	if spec.ConvertPlists && isPlistEncoded(itemPath) {
		body, err := plistToYAML(raw)
		if err != nil {
			return fmt.Errorf("converting %s: %w", itemPath, err)
		}
		contents = yamlHeader(sourceURL, spec.Commit, v.timestamp()) + body
		if strings.HasSuffix(destPath, ".recipe") {
			destPath += ".yaml"
		}
	} else {
		contents = insertAfterThirdLine(string(raw), xmlHeader(sourceURL, spec.Commit, v.timestamp()))
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0o750); err != nil {
		return fmt.Errorf("%w: creating %s: %v", ErrIOFailure, filepath.Dir(destPath), err)
	}
	if err := os.WriteFile(destPath, []byte(contents), 0o640); err != nil {
		return fmt.Errorf("%w: writing %s: %v", ErrIOFailure, destPath, err)
	}
	slog.Debug("vendored file", "source", itemPath, "destination", destPath)
	return nil
}

func isPlistEncoded(path string) bool {
	return strings.HasSuffix(path, ".plist") || strings.HasSuffix(path, ".recipe")
}

func plistToYAML(data []byte) (string, error) {
	var dict map[string]any
	if _, err := plist.Unmarshal(data, &dict); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadableMetadata, err)
	}
	out, err := yaml.Marshal(dict)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadableMetadata, err)
	}
	return string(out), nil
}

func yamlHeader(sourceURL, commit, timestamp string) string {
	return fmt.Sprintf("# Downloaded from %s\n# Commit: %s\n# Downloaded at: %s\n\n", sourceURL, commit, timestamp)
}

func xmlHeader(sourceURL, commit, timestamp string) string {
	return fmt.Sprintf("<!--\nDownloaded from %s\nCommit: %s\nDownloaded at: %s\n-->\n\n", sourceURL, commit, timestamp)
}

// insertAfterThirdLine places the header after the first three lines, so
// shebangs and XML declarations stay where their parsers expect them.
// Shorter files get the header prepended.
func insertAfterThirdLine(content, header string) string {
	idx := 0
	for i := 0; i < 3; i++ {
		n := strings.IndexByte(content[idx:], '\n')
		if n < 0 {
			return header + content
		}
		idx += n + 1
	}
	return content[:idx] + header + content[idx:]
}
