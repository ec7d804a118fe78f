package processing

import (
	"fmt"
	"maps"
	"os"
	"slices"

	"github.com/homebysix/discentem-recipes/pkg/providers"
	"gopkg.in/yaml.v3"
)

// Context is the mutable variable bag threaded through one pipeline run.
// It preserves first-set insertion order and is owned exclusively by its
// run; no locking, no sharing.
type Context struct {
	keys   []string
	values map[string]string
}

func NewContext() *Context {
	return &Context{values: make(map[string]string)}
}

// Get returns the value of key, or a missing-variable error naming it.
func (c *Context) Get(key string) (string, error) {
	value, ok := c.values[key]
	if !ok {
		return "", fmt.Errorf("%w: %q", providers.ErrMissingVariable, key)
	}
	return value, nil
}

// Set writes key, overwriting any prior value. The insertion position of
// an overwritten key does not move.
func (c *Context) Set(key, value string) {
	if _, ok := c.values[key]; !ok {
		c.keys = append(c.keys, key)
	}
	c.values[key] = value
}

func (c *Context) Has(key string) bool {
	_, ok := c.values[key]
	return ok
}

// Keys returns variable names in first-set order.
func (c *Context) Keys() []string {
	return slices.Clone(c.keys)
}

// Snapshot returns a plain map copy for reporting and expression
// evaluation.
func (c *Context) Snapshot() map[string]string {
	out := make(map[string]string, len(c.values))
	for k, v := range c.values {
		out[k] = v
	}
	return out
}

// Seed sets every value from the map in sorted key order, so reruns see
// the same insertion order regardless of map iteration.
func (c *Context) Seed(values map[string]string) {
	for _, k := range slices.Sorted(maps.Keys(values)) {
		c.Set(k, values[k])
	}
}

// LoadContextFile reads a YAML file of seed variables. Scalar values are
// rendered to strings; nested structures are rejected.
func LoadContextFile(filename string) (map[string]string, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading context file: %w", err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing context file: %w", err)
	}

	ctx := make(map[string]string, len(raw))
	for k, v := range raw {
		switch v.(type) {
		case map[string]any, []any:
			return nil, fmt.Errorf("context file key %q: value must be a scalar", k)
		case nil:
			ctx[k] = ""
		default:
			ctx[k] = fmt.Sprint(v)
		}
	}
	return ctx, nil
}

// MergeSeeds performs a shallow merge of local seed values over global
// ones. Local keys override global keys.
func MergeSeeds(global, local map[string]string) map[string]string {
	merged := make(map[string]string, len(global)+len(local))
	for k, v := range global {
		merged[k] = v
	}
	for k, v := range local {
		merged[k] = v
	}
	return merged
}
