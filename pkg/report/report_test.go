package report

import (
	"context"
	"errors"
	"strings"
	"testing"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/memblob"
	"gopkg.in/yaml.v3"

	"github.com/homebysix/discentem-recipes/pkg/processing"
)

func TestWriter_WriteAndReadBack(t *testing.T) {
	ctx := context.Background()
	bucket, err := blob.OpenBucket(ctx, "mem://")
	if err != nil {
		t.Fatal(err)
	}
	defer bucket.Close()

	w, err := NewWriter(bucket, "receipts")
	if err != nil {
		t.Fatal(err)
	}

	receipt := &Receipt{
		Recipe:  "/recipes/Ghostty.recipe.yaml",
		Outcome: "completed",
		Values:  map[string]string{"version": "1.2.0", "copied_path": "/staged/Ghostty.dmg"},
	}
	if err := w.Write(ctx, receipt); err != nil {
		t.Fatalf("Write: %v", err)
	}

	data, err := bucket.ReadAll(ctx, "receipts/Ghostty.receipt.yaml")
	if err != nil {
		t.Fatalf("reading receipt back: %v", err)
	}
	var got Receipt
	if err := yaml.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if got.Outcome != "completed" || got.Values["version"] != "1.2.0" {
		t.Errorf("round-tripped receipt = %+v", got)
	}
}

func TestWriter_NoPrefix(t *testing.T) {
	ctx := context.Background()
	bucket, err := blob.OpenBucket(ctx, "mem://")
	if err != nil {
		t.Fatal(err)
	}
	defer bucket.Close()

	w, err := NewWriter(bucket, "")
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Write(ctx, &Receipt{Recipe: "App.recipe.yaml", Outcome: "halted-ok"}); err != nil {
		t.Fatal(err)
	}
	if _, err := bucket.ReadAll(ctx, "App.receipt.yaml"); err != nil {
		t.Errorf("expected unprefixed key: %v", err)
	}
}

func TestNewWriter_NilBucket(t *testing.T) {
	if _, err := NewWriter(nil, "receipts"); !errors.Is(err, ErrBucketRequired) {
		t.Fatalf("expected ErrBucketRequired, got %v", err)
	}
}

func TestFromResult(t *testing.T) {
	vars := processing.NewContext()
	vars.Set("version", "2.0")

	r := &processing.RunResult{
		RecipePath: "/recipes/App.recipe.yaml",
		Outcome:    processing.OutcomeHaltedError,
		Context:    vars,
		FailedStep: "verify-signature",
		FailedKind: "verify",
		Err:        errors.New("signature invalid"),
	}

	receipt := FromResult(r)
	if receipt.Outcome != "halted-error" {
		t.Errorf("outcome = %q", receipt.Outcome)
	}
	if receipt.FailedStep != "verify-signature" || receipt.FailedKind != "verify" {
		t.Errorf("failed step = %q/%q", receipt.FailedStep, receipt.FailedKind)
	}
	if receipt.Error != "signature invalid" {
		t.Errorf("error = %q", receipt.Error)
	}
	if receipt.Values["version"] != "2.0" {
		t.Errorf("values = %v", receipt.Values)
	}
}

func TestRenderSummary(t *testing.T) {
	receipts := []*Receipt{
		{Recipe: "a.recipe.yaml", Outcome: "completed"},
		{Recipe: "b.recipe.yaml", Outcome: "halted-ok"},
	}

	out, err := RenderSummary(`{{ range .Receipts }}{{ .Recipe }}: {{ .Outcome | upper }}
{{ end }}`, receipts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "a.recipe.yaml: COMPLETED") || !strings.Contains(out, "b.recipe.yaml: HALTED-OK") {
		t.Errorf("summary = %q", out)
	}
}

func TestRenderSummary_BadTemplate(t *testing.T) {
	if _, err := RenderSummary(`{{ range`, nil); err == nil {
		t.Fatal("expected parse error")
	}
}
