package steps

import (
	"context"
	"errors"
	"testing"

	"github.com/homebysix/discentem-recipes/pkg/api"
	"github.com/homebysix/discentem-recipes/pkg/providers"
)

func TestSearchStep_FirstMatch(t *testing.T) {
	step, err := NewStep(api.StepConfig{
		Name:   "find-release",
		Kind:   api.StepKindSearch,
		Search: &api.SearchConfig{URL: "https://example.com/releases", Pattern: `href="([^"]+\.dmg)"`},
	})
	if err != nil {
		t.Fatal(err)
	}

	sc := fakeContext(t, map[string]string{
		"url":     "https://example.com/releases",
		"pattern": `href="([^"]+\.dmg)"`,
	})
	sc.Providers.Fetcher = &providers.FakeFetcher{
		Pages: map[string]string{
			"https://example.com/releases": `<a href="/dl/App-1.0.dmg">1.0</a> <a href="/dl/App-0.9.dmg">0.9</a>`,
		},
	}

	result, err := step.Run(context.Background(), sc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Vars[VarMatch] != "/dl/App-1.0.dmg" {
		t.Errorf("match = %q, want first match in document order", result.Vars[VarMatch])
	}
}

func TestSearchStep_NoMatch(t *testing.T) {
	step, err := NewStep(api.StepConfig{
		Name:   "find-release",
		Kind:   api.StepKindSearch,
		Search: &api.SearchConfig{URL: "u", Pattern: `\.dmg`},
	})
	if err != nil {
		t.Fatal(err)
	}

	sc := fakeContext(t, map[string]string{"url": "u", "pattern": `\.dmg`})
	sc.Providers.Fetcher = &providers.FakeFetcher{Pages: map[string]string{"u": "nothing here"}}

	_, err = step.Run(context.Background(), sc)
	if !errors.Is(err, providers.ErrNoMatch) {
		t.Fatalf("expected ErrNoMatch, got %v", err)
	}
}
