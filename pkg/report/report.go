// Package report turns run results into receipts: YAML documents recording
// what a recipe produced, optionally published to a blob bucket and
// summarized through a caller-supplied template.
package report

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"gocloud.dev/blob"
	"gopkg.in/yaml.v3"

	"github.com/homebysix/discentem-recipes/pkg/processing"
)

// Receipt is the durable record of one recipe run.
type Receipt struct {
	Recipe     string            `yaml:"recipe"`
	Outcome    string            `yaml:"outcome"`
	FailedStep string            `yaml:"failed_step,omitempty"`
	FailedKind string            `yaml:"failed_kind,omitempty"`
	Error      string            `yaml:"error,omitempty"`
	Values     map[string]string `yaml:"values,omitempty"`
}

// FromResult builds a receipt from a finished run. Values are the final
// context variables.
func FromResult(r *processing.RunResult) *Receipt {
	receipt := &Receipt{
		Recipe:     r.RecipePath,
		Outcome:    string(r.Outcome),
		FailedStep: r.FailedStep,
		FailedKind: r.FailedKind,
	}
	if r.Err != nil {
		receipt.Error = r.Err.Error()
	}
	if r.Context != nil {
		receipt.Values = r.Context.Snapshot()
	}
	return receipt
}

// BucketWriter is the narrow slice of gocloud's bucket API the writer
// needs; *blob.Bucket satisfies it.
type BucketWriter interface {
	WriteAll(ctx context.Context, key string, p []byte, opts *blob.WriterOptions) error
}

var ErrBucketRequired = errors.New("bucket is required")

// Writer publishes receipts under a key prefix in a bucket.
type Writer struct {
	bucket BucketWriter
	prefix string
}

func NewWriter(bucket BucketWriter, prefix string) (*Writer, error) {
	if bucket == nil {
		return nil, ErrBucketRequired
	}
	return &Writer{bucket: bucket, prefix: prefix}, nil
}

// Write stores the receipt keyed by the recipe's base name, so reruns of
// the same recipe overwrite their previous receipt.
func (w *Writer) Write(ctx context.Context, receipt *Receipt) error {
	data, err := yaml.Marshal(receipt)
	if err != nil {
		return fmt.Errorf("encoding receipt: %w", err)
	}
	return w.bucket.WriteAll(ctx, w.key(receipt), data, nil)
}

func (w *Writer) key(receipt *Receipt) string {
	base := filepath.Base(receipt.Recipe)
	base = strings.TrimSuffix(base, ".recipe.yaml")
	key := base + ".receipt.yaml"
	if w.prefix == "" {
		return key
	}
	prefix := w.prefix
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return prefix + key
}
