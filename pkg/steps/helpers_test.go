package steps

import (
	"testing"

	"github.com/homebysix/discentem-recipes/pkg/providers"
)

// fakeContext builds a StepContext over zero-value fakes with the given
// pre-resolved arguments.
func fakeContext(t *testing.T, args map[string]string) StepContext {
	t.Helper()
	return StepContext{
		WorkDir:   t.TempDir(),
		CacheDir:  t.TempDir(),
		Args:      args,
		Providers: providers.FakeSet(),
	}
}
