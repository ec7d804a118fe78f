package providers

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// GlobFinder resolves doublestar glob patterns relative to a root
// directory. A pattern must match exactly one file; zero or several
// matches is always an error, never a best-guess pick.
type GlobFinder struct{}

func (GlobFinder) FindOne(root, pattern string) (string, error) {
	matches, err := doublestar.Glob(os.DirFS(root), pattern)
	if err != nil {
		return "", fmt.Errorf("glob %q: %w", pattern, err)
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: no file matches %q under %s", ErrNotFound, pattern, root)
	case 1:
		return filepath.Join(root, matches[0]), nil
	default:
		return "", fmt.Errorf("%w: %d files match %q under %s", ErrAmbiguousMatch, len(matches), pattern, root)
	}
}
