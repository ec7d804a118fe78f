package processing

import (
	"regexp"
	"slices"
	"strings"
)

// Placeholders are %name% tokens; %% is a literal percent. Substitution is
// single-pass and left-to-right: a substituted value is never rescanned,
// so a value containing %other% stays exactly as written.
var placeholderRe = regexp.MustCompile(`%%|%[A-Za-z_][A-Za-z0-9_]*%`)

// Substitute expands every placeholder in s against ctx. An unresolved
// name is an error, never a silent empty string.
func Substitute(s string, ctx *Context) (string, error) {
	locs := placeholderRe.FindAllStringIndex(s, -1)
	if locs == nil {
		return s, nil
	}

	var b strings.Builder
	last := 0
	for _, loc := range locs {
		b.WriteString(s[last:loc[0]])
		token := s[loc[0]:loc[1]]
		if token == "%%" {
			b.WriteByte('%')
		} else {
			value, err := ctx.Get(token[1 : len(token)-1])
			if err != nil {
				return "", err
			}
			b.WriteString(value)
		}
		last = loc[1]
	}
	b.WriteString(s[last:])
	return b.String(), nil
}

// SubstituteArgs expands every argument of a step, in sorted key order so
// a run always reports the same first failure.
func SubstituteArgs(args map[string]string, ctx *Context) (map[string]string, error) {
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	resolved := make(map[string]string, len(args))
	for _, k := range keys {
		value, err := Substitute(args[k], ctx)
		if err != nil {
			return nil, err
		}
		resolved[k] = value
	}
	return resolved, nil
}
