package providers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// In-memory fakes for engine and step tests. Each records the calls it
// receives so tests can assert that halted pipelines stopped reaching out.

// FakeFetcher serves scripted page bodies and download payloads.
type FakeFetcher struct {
	// Pages maps url -> body for Fetch/Search.
	Pages map[string]string
	// Files maps url -> payload for Download.
	Files map[string][]byte
	// Unchanged marks urls whose download should report Changed=false.
	Unchanged map[string]bool

	Fetched    []string
	Downloaded []string
}

func (f *FakeFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	f.Fetched = append(f.Fetched, url)
	body, ok := f.Pages[url]
	if !ok {
		return nil, fmt.Errorf("%w: no page for %s", ErrFetchFailed, url)
	}
	return []byte(body), nil
}

func (f *FakeFetcher) Search(ctx context.Context, url, pattern string) (string, error) {
	body, err := f.Fetch(ctx, url)
	if err != nil {
		return "", err
	}
	return FirstMatch(string(body), pattern)
}

func (f *FakeFetcher) Download(_ context.Context, url, dest string) (*DownloadResult, error) {
	f.Downloaded = append(f.Downloaded, url)
	payload, ok := f.Files[url]
	if !ok {
		return nil, fmt.Errorf("%w: no file for %s", ErrFetchFailed, url)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o750); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	if err := os.WriteFile(dest, payload, 0o600); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	return &DownloadResult{
		Path:    dest,
		Changed: !f.Unchanged[url],
		Size:    int64(len(payload)),
	}, nil
}

// FakeFinder returns a fixed path or error.
type FakeFinder struct {
	Path     string
	Err      error
	Patterns []string
}

func (f *FakeFinder) FindOne(_, pattern string) (string, error) {
	f.Patterns = append(f.Patterns, pattern)
	if f.Err != nil {
		return "", f.Err
	}
	return f.Path, nil
}

// FakeVerifier succeeds or fails uniformly.
type FakeVerifier struct {
	Err      error
	Verified []string
}

func (f *FakeVerifier) Verify(_ context.Context, path, _ string) error {
	f.Verified = append(f.Verified, path)
	return f.Err
}

// FakeMetadata serves fields from a path -> key -> value table.
type FakeMetadata struct {
	Fields map[string]map[string]string
}

func (f *FakeMetadata) ReadField(path, key string) (string, error) {
	fields, ok := f.Fields[path]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnreadableMetadata, path)
	}
	value, ok := fields[key]
	if !ok {
		return "", fmt.Errorf("%w: %q in %s", ErrFieldMissing, key, path)
	}
	return value, nil
}

// FakeCopier records copies without touching the filesystem.
type FakeCopier struct {
	Err    error
	Copies [][2]string
}

func (f *FakeCopier) Copy(src, dst string) error {
	if f.Err != nil {
		return f.Err
	}
	f.Copies = append(f.Copies, [2]string{src, dst})
	return nil
}

// FakeExecutor returns a scripted result for every command.
type FakeExecutor struct {
	Result   *ExecResult
	Err      error
	Commands [][]string
}

func (f *FakeExecutor) Execute(_ context.Context, name string, args []string, _ time.Duration) (*ExecResult, error) {
	f.Commands = append(f.Commands, append([]string{name}, args...))
	if f.Err != nil {
		return nil, f.Err
	}
	if f.Result != nil {
		return f.Result, nil
	}
	return &ExecResult{}, nil
}

// FakeVendorer writes one placeholder file per configured name under the
// spec's destination and records the specs it saw.
type FakeVendorer struct {
	Files []string
	Err   error
	Specs []VendorSpec
}

func (f *FakeVendorer) Vendor(_ context.Context, spec VendorSpec) error {
	f.Specs = append(f.Specs, spec)
	if f.Err != nil {
		return f.Err
	}
	for _, name := range f.Files {
		path := filepath.Join(spec.Destination, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return fmt.Errorf("%w: %v", ErrIOFailure, err)
		}
		if err := os.WriteFile(path, []byte("vendored"), 0o600); err != nil {
			return fmt.Errorf("%w: %v", ErrIOFailure, err)
		}
	}
	return nil
}

// FakeSet returns a Set wired entirely with zero-value fakes, for tests
// that only care about a subset.
func FakeSet() *Set {
	return &Set{
		Fetcher:  &FakeFetcher{},
		Finder:   &FakeFinder{},
		Verifier: &FakeVerifier{},
		Metadata: &FakeMetadata{},
		Copier:   &FakeCopier{},
		Executor: &FakeExecutor{},
		Vendorer: &FakeVendorer{},
	}
}
