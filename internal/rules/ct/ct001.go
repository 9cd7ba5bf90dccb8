// Package ct implements the chart rule set. Chart rules are context rules:
// they run once per document with read access to metadata, values, and
// every parsed template.
package ct

import (
	"fmt"

	"github.com/shiplint/shiplint/internal/rules"
)

// RequiredMetadata implements CT001: Chart.yaml must declare apiVersion,
// name, and version.
type RequiredMetadata struct{}

func (r *RequiredMetadata) Metadata() rules.RuleMetadata {
	return rules.RuleMetadata{
		Code:             "CT001",
		Name:             "Required chart metadata",
		Description:      "A chart without apiVersion, name, and version cannot be packaged or installed.",
		DefaultSeverity:  rules.SeverityError,
		Category:         rules.Category("CT001"),
		EnabledByDefault: true,
	}
}

func (r *RequiredMetadata) Check(ctx *rules.Context) []rules.Failure {
	if ctx.Chart == nil {
		return []rules.Failure{rules.NewFailure(
			"Chart.yaml", 0,
			"CT001",
			"chart metadata is missing",
			rules.SeverityError,
		)}
	}

	var failures []rules.Failure
	for field, value := range map[string]string{
		"apiVersion": ctx.Chart.APIVersion,
		"name":       ctx.Chart.Name,
		"version":    ctx.Chart.Version,
	} {
		if value == "" {
			failures = append(failures, rules.NewFailure(
				"Chart.yaml", 0,
				"CT001",
				fmt.Sprintf("chart metadata is missing required field %q", field),
				rules.SeverityError,
			))
		}
	}
	return failures
}

func init() {
	rules.Register(&RequiredMetadata{})
}
