package ct

import (
	"fmt"
	"strings"

	"github.com/shiplint/shiplint/internal/rules"
	"github.com/shiplint/shiplint/internal/template"
)

// UndefinedValues implements CT002: every .Values path referenced by a
// template should exist in the chart's values tree.
type UndefinedValues struct{}

func (r *UndefinedValues) Metadata() rules.RuleMetadata {
	return rules.RuleMetadata{
		Code:             "CT002",
		Name:             "Undefined values reference",
		Description:      "A template referencing a values path that the values file never defines usually renders an empty string silently.",
		DefaultSeverity:  rules.SeverityWarning,
		Category:         rules.Category("CT002"),
		EnabledByDefault: true,
	}
}

func (r *UndefinedValues) Check(ctx *rules.Context) []rules.Failure {
	if ctx.Values == nil {
		return nil
	}

	var failures []rules.Failure
	seen := make(map[string]bool) // (file, path) pairs already reported

	for _, tpl := range ctx.Templates {
		for _, token := range tpl.Tokens {
			if token.Kind != template.TokenAction {
				continue
			}
			// Actions guarded by existence checks are exempt: the template
			// author is clearly handling the absent case.
			if strings.HasPrefix(token.Content, "if ") || strings.HasPrefix(token.Content, "with ") {
				continue
			}
			for _, variable := range template.VariablesIn(token.Content) {
				path, ok := strings.CutPrefix(variable, ".Values.")
				if !ok || path == "" {
					continue
				}
				key := tpl.Name + "\x00" + path
				if seen[key] || ctx.Values.HasPath(path) {
					continue
				}
				seen[key] = true
				failures = append(failures, rules.NewFailure(
					tpl.Name, token.Line,
					"CT002",
					fmt.Sprintf("values path %q is referenced but never defined in values.yaml", path),
					rules.SeverityWarning,
				))
			}
		}
	}
	return failures
}

func init() {
	rules.Register(&UndefinedValues{})
}
