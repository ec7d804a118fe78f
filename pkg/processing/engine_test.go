package processing

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/homebysix/discentem-recipes/pkg/api"
	"github.com/homebysix/discentem-recipes/pkg/providers"
)

const (
	ghosttyPage = `<html><a href="https://release.files.ghostty.org/2.1.0/Ghostty.dmg">Download</a></html>`
	ghosttyURL  = "https://release.files.ghostty.org/2.1.0/Ghostty.dmg"
	ghosttyPat  = `https:\/\/release\.files\.ghostty\.org\/\d+\.\d+\.\d+\/Ghostty\.dmg`
)

func ghosttyRecipe() *api.Recipe {
	return &api.Recipe{
		Input: map[string]string{
			"NAME":       "Ghostty",
			"SEARCH_URL": "https://ghostty.org/download",
		},
		Process: []api.StepConfig{
			{
				Name:   "find-url",
				Kind:   api.StepKindSearch,
				Search: &api.SearchConfig{URL: "%SEARCH_URL%", Pattern: ghosttyPat},
			},
			{
				Name:     "fetch",
				Kind:     api.StepKindDownload,
				Download: &api.DownloadConfig{URL: "%match%"},
			},
			{
				Name: "got-it-already",
				Kind: api.StepKindCheckpoint,
			},
			{
				Name: "locate",
				Kind: api.StepKindFind,
				Find: &api.FindConfig{Pattern: "downloads/*.dmg"},
			},
			{
				Name:   "check-signature",
				Kind:   api.StepKindVerify,
				Verify: &api.VerifyConfig{Path: "%found_filename%", Requirement: `anchor apple generic`},
			},
			{
				Name:    "read-version",
				Kind:    api.StepKindExtract,
				Extract: &api.ExtractConfig{Path: "%found_filename%", Key: "CFBundleShortVersionString"},
			},
			{
				Name: "stage",
				Kind: api.StepKindCopy,
				Copy: &api.CopyConfig{Source: "%pathname%", Destination: "%CACHE_DIR%/%NAME%-%version%.dmg"},
			},
		},
		Dir:      "/recipes",
		FilePath: "/recipes/ghostty.recipe.yaml",
	}
}

func ghosttyProviders(cacheDir string) *providers.Set {
	dmgPath := filepath.Join(cacheDir, "downloads", "Ghostty.dmg")
	return &providers.Set{
		Fetcher: &providers.FakeFetcher{
			Pages: map[string]string{"https://ghostty.org/download": ghosttyPage},
			Files: map[string][]byte{ghosttyURL: []byte("dmg bytes")},
		},
		Finder:   &providers.FakeFinder{Path: dmgPath},
		Verifier: &providers.FakeVerifier{},
		Metadata: &providers.FakeMetadata{
			Fields: map[string]map[string]string{
				dmgPath: {"CFBundleShortVersionString": "2.1.0"},
			},
		},
		Copier:   &providers.FakeCopier{},
		Executor: &providers.FakeExecutor{},
	}
}

func TestEngine_GhosttyScenario(t *testing.T) {
	cacheDir := t.TempDir()
	provs := ghosttyProviders(cacheDir)
	engine := &Engine{Providers: provs, CacheDir: cacheDir}

	result := engine.Run(context.Background(), ghosttyRecipe(), nil)
	if result.Outcome != OutcomeCompleted {
		t.Fatalf("outcome = %s, err = %v", result.Outcome, result.Err)
	}

	dmgPath := filepath.Join(cacheDir, "downloads", "Ghostty.dmg")
	expect := map[string]string{
		"match":            ghosttyURL,
		"pathname":         dmgPath,
		"download_changed": "true",
		"found_filename":   dmgPath,
		"version":          "2.1.0",
		"copied_path":      filepath.Join(cacheDir, "Ghostty-2.1.0.dmg"),
	}
	for key, want := range expect {
		got, err := result.Context.Get(key)
		if err != nil {
			t.Errorf("missing %s: %v", key, err)
			continue
		}
		if got != want {
			t.Errorf("%s = %q, want %q", key, got, want)
		}
	}

	copier := provs.Copier.(*providers.FakeCopier)
	if len(copier.Copies) != 1 {
		t.Fatalf("expected one copy, got %v", copier.Copies)
	}
	if copier.Copies[0] != [2]string{dmgPath, filepath.Join(cacheDir, "Ghostty-2.1.0.dmg")} {
		t.Errorf("unexpected copy: %v", copier.Copies[0])
	}
}

func TestEngine_NoMatchHaltsBeforeDownload(t *testing.T) {
	cacheDir := t.TempDir()
	provs := ghosttyProviders(cacheDir)
	fetcher := provs.Fetcher.(*providers.FakeFetcher)
	fetcher.Pages["https://ghostty.org/download"] = "<html>nothing to see</html>"

	engine := &Engine{Providers: provs, CacheDir: cacheDir}
	result := engine.Run(context.Background(), ghosttyRecipe(), nil)

	if result.Outcome != OutcomeHaltedError {
		t.Fatalf("outcome = %s", result.Outcome)
	}
	if !errors.Is(result.Err, providers.ErrNoMatch) {
		t.Fatalf("expected ErrNoMatch, got %v", result.Err)
	}
	if result.FailedStep != "find-url" || result.FailedKind != api.StepKindSearch {
		t.Errorf("failure attribution = %q (%s)", result.FailedStep, result.FailedKind)
	}
	if !strings.Contains(result.Err.Error(), "find-url") {
		t.Errorf("error should name the failing step: %v", result.Err)
	}
	if len(fetcher.Downloaded) != 0 {
		t.Errorf("no download should be attempted after a halt, got %v", fetcher.Downloaded)
	}
	// The halted context holds nothing beyond the seeds.
	if result.Context.Has("match") {
		t.Error("failed step must not leave outputs in the context")
	}
}

func TestEngine_CheckpointHaltsOnUnchangedDownload(t *testing.T) {
	cacheDir := t.TempDir()
	provs := ghosttyProviders(cacheDir)
	fetcher := provs.Fetcher.(*providers.FakeFetcher)
	fetcher.Unchanged = map[string]bool{ghosttyURL: true}
	// Later steps would fail loudly if reached.
	provs.Finder.(*providers.FakeFinder).Err = errors.New("must not run")

	engine := &Engine{Providers: provs, CacheDir: cacheDir}
	result := engine.Run(context.Background(), ghosttyRecipe(), nil)

	if result.Outcome != OutcomeHaltedOk {
		t.Fatalf("outcome = %s, err = %v", result.Outcome, result.Err)
	}
	if len(provs.Finder.(*providers.FakeFinder).Patterns) != 0 {
		t.Error("steps after the checkpoint must not run")
	}
	if changed, _ := result.Context.Get("download_changed"); changed != "false" {
		t.Errorf("download_changed = %q", changed)
	}
}

func TestEngine_CheckpointWhenExpression(t *testing.T) {
	recipe := &api.Recipe{
		Input: map[string]string{
			"version":        "2.1.0",
			"cached_version": "2.1.0",
		},
		Process: []api.StepConfig{
			{
				Name:       "skip-if-cached",
				Kind:       api.StepKindCheckpoint,
				Checkpoint: &api.CheckpointConfig{When: "version == cached_version"},
			},
			{
				Name: "locate",
				Kind: api.StepKindFind,
				Find: &api.FindConfig{Pattern: "*.dmg"},
			},
		},
	}

	provs := providers.FakeSet()
	provs.Finder.(*providers.FakeFinder).Err = errors.New("must not run")
	engine := &Engine{Providers: provs, CacheDir: t.TempDir()}

	result := engine.Run(context.Background(), recipe, nil)
	if result.Outcome != OutcomeHaltedOk {
		t.Fatalf("outcome = %s, err = %v", result.Outcome, result.Err)
	}

	// A false condition lets the run continue past the checkpoint.
	recipe.Input["cached_version"] = "2.0.0"
	provs2 := providers.FakeSet()
	provs2.Finder.(*providers.FakeFinder).Path = "/cache/a.dmg"
	engine2 := &Engine{Providers: provs2, CacheDir: t.TempDir()}

	result = engine2.Run(context.Background(), recipe, nil)
	if result.Outcome != OutcomeCompleted {
		t.Fatalf("outcome = %s, err = %v", result.Outcome, result.Err)
	}
}

func TestEngine_CheckpointBeforeAnyDownloadContinues(t *testing.T) {
	recipe := &api.Recipe{
		Process: []api.StepConfig{
			{Name: "early-stop", Kind: api.StepKindCheckpoint},
			{Name: "locate", Kind: api.StepKindFind, Find: &api.FindConfig{Pattern: "*.dmg"}},
		},
	}

	provs := providers.FakeSet()
	provs.Finder.(*providers.FakeFinder).Path = "/cache/a.dmg"
	engine := &Engine{Providers: provs, CacheDir: t.TempDir()}

	result := engine.Run(context.Background(), recipe, nil)
	if result.Outcome != OutcomeCompleted {
		t.Fatalf("outcome = %s, err = %v", result.Outcome, result.Err)
	}
}

func TestEngine_SubstitutionFailureHaltsStep(t *testing.T) {
	recipe := &api.Recipe{
		Process: []api.StepConfig{
			{
				Name:     "fetch",
				Kind:     api.StepKindDownload,
				Download: &api.DownloadConfig{URL: "%match%"},
			},
		},
	}

	engine := &Engine{Providers: providers.FakeSet(), CacheDir: t.TempDir()}
	result := engine.Run(context.Background(), recipe, nil)

	if result.Outcome != OutcomeHaltedError {
		t.Fatalf("outcome = %s", result.Outcome)
	}
	if !errors.Is(result.Err, providers.ErrMissingVariable) {
		t.Fatalf("expected ErrMissingVariable, got %v", result.Err)
	}
	if result.FailedStep != "fetch" {
		t.Errorf("failed step = %q", result.FailedStep)
	}
}

func TestEngine_Idempotence(t *testing.T) {
	cacheDir := t.TempDir()
	engine := &Engine{Providers: ghosttyProviders(cacheDir), CacheDir: cacheDir}

	first := engine.Run(context.Background(), ghosttyRecipe(), nil)
	second := engine.Run(context.Background(), ghosttyRecipe(), nil)

	if first.Outcome != OutcomeCompleted || second.Outcome != OutcomeCompleted {
		t.Fatalf("outcomes = %s, %s", first.Outcome, second.Outcome)
	}
	if !reflect.DeepEqual(first.Context.Snapshot(), second.Context.Snapshot()) {
		t.Errorf("reruns diverged:\n%v\n%v", first.Context.Snapshot(), second.Context.Snapshot())
	}
	if !reflect.DeepEqual(first.Context.Keys(), second.Context.Keys()) {
		t.Errorf("rerun key order diverged: %v vs %v", first.Context.Keys(), second.Context.Keys())
	}
}

func TestEngine_SeedAndInputPrecedence(t *testing.T) {
	recipe := &api.Recipe{
		Input: map[string]string{"NAME": "FromRecipe"},
		Process: []api.StepConfig{
			{Name: "noop", Kind: api.StepKindCheckpoint},
		},
	}

	engine := &Engine{Providers: providers.FakeSet(), CacheDir: t.TempDir()}
	result := engine.Run(context.Background(), recipe, map[string]string{
		"NAME":  "FromSeed",
		"EXTRA": "kept",
	})

	if v, _ := result.Context.Get("NAME"); v != "FromRecipe" {
		t.Errorf("recipe input should override seed, got %q", v)
	}
	if v, _ := result.Context.Get("EXTRA"); v != "kept" {
		t.Errorf("seed-only value lost, got %q", v)
	}
	if v, _ := result.Context.Get("CACHE_DIR"); v != engine.CacheDir {
		t.Errorf("CACHE_DIR = %q", v)
	}
}

func TestEngine_AbortBetweenSteps(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	engine := &Engine{Providers: providers.FakeSet(), CacheDir: t.TempDir()}
	result := engine.Run(ctx, ghosttyRecipe(), nil)

	if result.Outcome != OutcomeHaltedError {
		t.Fatalf("outcome = %s", result.Outcome)
	}
	if !errors.Is(result.Err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", result.Err)
	}
}

func TestEngine_VendorScratchRemovedAfterRun(t *testing.T) {
	cacheDir := t.TempDir()
	recipe := &api.Recipe{
		Process: []api.StepConfig{
			{
				Name:   "vendor-processors",
				Kind:   api.StepKindVendor,
				Vendor: &api.VendorConfig{Repo: "acme/tools", Folder: "Scripts", Commit: "abc123"},
			},
		},
		Dir:      "/recipes",
		FilePath: "/recipes/vendor.recipe.yaml",
	}

	provs := providers.FakeSet()
	provs.Vendorer = &providers.FakeVendorer{Files: []string{"install.sh"}}
	engine := &Engine{Providers: provs, CacheDir: cacheDir}

	result := engine.Run(context.Background(), recipe, nil)
	if result.Outcome != OutcomeCompleted {
		t.Fatalf("outcome = %s, err = %v", result.Outcome, result.Err)
	}

	scratch, err := result.Context.Get("downloaded_folder_path")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(scratch, cacheDir) {
		t.Errorf("scratch %q not under cache dir %q", scratch, cacheDir)
	}
	if _, err := os.Stat(scratch); !os.IsNotExist(err) {
		t.Errorf("scratch dir should be removed when the run ends, stat err = %v", err)
	}
}

func TestMergeOutputs_RejectsUndeclaredKey(t *testing.T) {
	c := NewContext()
	err := mergeOutputs(c, []string{"match"}, map[string]string{
		"match":  "ok",
		"sneaky": "nope",
	})
	if err == nil {
		t.Fatal("expected error for undeclared output")
	}
	if !strings.Contains(err.Error(), "sneaky") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRemoveTempResources(t *testing.T) {
	dir := t.TempDir()
	scratch := filepath.Join(dir, "scratch")
	if err := os.MkdirAll(filepath.Join(scratch, "sub"), 0o750); err != nil {
		t.Fatal(err)
	}

	removeTempResources([]string{scratch})

	if _, err := os.Stat(scratch); !os.IsNotExist(err) {
		t.Errorf("scratch dir should be gone, stat err = %v", err)
	}
}
