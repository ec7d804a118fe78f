// Package providers defines the narrow capability interfaces recipe steps
// run against, plus their real implementations and in-memory fakes. The
// engine never performs an external effect itself; everything goes through
// one of these.
package providers

import (
	"context"
	"time"
)

// DownloadResult describes the outcome of a single artifact download.
type DownloadResult struct {
	// Path is the local file the artifact was written to (or already lived at).
	Path string
	// Changed is false when the remote copy matched the cached one and no
	// bytes were transferred.
	Changed      bool
	ETag         string
	LastModified string
	Size         int64
}

// ExecResult holds the output of a single command execution.
type ExecResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Fetcher performs HTTP retrieval: page bodies, pattern searches, and
// artifact downloads.
type Fetcher interface {
	// Fetch returns the body at url.
	Fetch(ctx context.Context, url string) ([]byte, error)
	// Search fetches url and returns the first occurrence of pattern in
	// document order.
	Search(ctx context.Context, url, pattern string) (string, error)
	// Download retrieves url into dest, skipping the transfer when the
	// cached copy is still current.
	Download(ctx context.Context, url, dest string) (*DownloadResult, error)
}

// Finder resolves a glob pattern to exactly one file.
type Finder interface {
	FindOne(root, pattern string) (string, error)
}

// Verifier checks a file's code signature against a requirement expression.
type Verifier interface {
	Verify(ctx context.Context, path, requirement string) error
}

// Metadata reads a single field from a structured metadata file.
type Metadata interface {
	ReadField(path, key string) (string, error)
}

// Copier copies a file to a destination path.
type Copier interface {
	Copy(src, dst string) error
}

// Executor runs an external command. Implementations must return an
// ExecResult for non-zero exits; an error means the command could not run
// or was cut off.
type Executor interface {
	Execute(ctx context.Context, name string, args []string, timeout time.Duration) (*ExecResult, error)
}

// VendorSpec pins one repository folder to a commit.
type VendorSpec struct {
	Repo        string
	Folder      string
	Commit      string
	Destination string
	// ConvertPlists rewrites plist-encoded files as YAML.
	ConvertPlists bool
}

// Vendorer mirrors a repository folder at a pinned commit into a local
// directory, stamping every file with its provenance.
type Vendorer interface {
	Vendor(ctx context.Context, spec VendorSpec) error
}

// Set bundles the providers a pipeline run executes against.
type Set struct {
	Fetcher  Fetcher
	Finder   Finder
	Verifier Verifier
	Metadata Metadata
	Copier   Copier
	Executor Executor
	Vendorer Vendorer
}
