package api

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadRecipe_Valid(t *testing.T) {
	content := `
description: Downloads the latest Ghostty dmg
input:
  NAME: Ghostty
  SEARCH_URL: https://ghostty.org/download
process:
  - name: find-url
    kind: search
    search:
      url: "%SEARCH_URL%"
      pattern: 'https:\/\/release\.files\.ghostty\.org\/\d+\.\d+\.\d+\/Ghostty\.dmg'
  - name: fetch
    kind: download
    download:
      url: "%match%"
  - name: locate
    kind: find
    find:
      pattern: "downloads/*.dmg"
`
	dir := t.TempDir()
	f := filepath.Join(dir, "ghostty.recipe.yaml")
	if err := os.WriteFile(f, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	r, err := LoadRecipe(f)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if r.Input["NAME"] != "Ghostty" {
		t.Errorf("expected input NAME=Ghostty, got %q", r.Input["NAME"])
	}
	if len(r.Process) != 3 {
		t.Fatalf("expected 3 steps, got %d", len(r.Process))
	}
	if r.Process[0].Kind != StepKindSearch {
		t.Errorf("expected first step kind search, got %q", r.Process[0].Kind)
	}
	if r.Process[0].Search.URL != "%SEARCH_URL%" {
		t.Errorf("unexpected search url: %q", r.Process[0].Search.URL)
	}
	if !filepath.IsAbs(r.FilePath) {
		t.Errorf("expected absolute FilePath, got %q", r.FilePath)
	}
	if r.Dir != filepath.Dir(r.FilePath) {
		t.Errorf("Dir %q does not match FilePath %q", r.Dir, r.FilePath)
	}
}

func TestLoadRecipe_MissingFile(t *testing.T) {
	_, err := LoadRecipe(filepath.Join(t.TempDir(), "nope.recipe.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !strings.Contains(err.Error(), "reading recipe file") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadRecipe_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, "broken.recipe.yaml")
	if err := os.WriteFile(f, []byte("process: [unclosed"), 0600); err != nil {
		t.Fatal(err)
	}

	_, err := LoadRecipe(f)
	if err == nil {
		t.Fatal("expected error for invalid yaml")
	}
	if !strings.Contains(err.Error(), "parsing recipe file") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadRecipe_InvalidRecipe(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, "empty.recipe.yaml")
	if err := os.WriteFile(f, []byte("description: nothing here\n"), 0600); err != nil {
		t.Fatal(err)
	}

	_, err := LoadRecipe(f)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "no steps") {
		t.Fatalf("unexpected error: %v", err)
	}
}
