package report

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// RenderSummary renders receipts through a Go template with sprig
// functions available. The template receives .Receipts.
func RenderSummary(tmplText string, receipts []*Receipt) (string, error) {
	tmpl, err := template.New("summary").Funcs(sprig.FuncMap()).Parse(tmplText)
	if err != nil {
		return "", fmt.Errorf("parsing summary template: %w", err)
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, map[string]any{"Receipts": receipts}); err != nil {
		return "", fmt.Errorf("executing summary template: %w", err)
	}
	return b.String(), nil
}
