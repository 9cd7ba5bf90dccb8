package ct

import (
	"fmt"
	"strings"

	"github.com/shiplint/shiplint/internal/rules"
	"github.com/shiplint/shiplint/internal/template"
)

// UndefinedTemplate implements CT003: every template name referenced by a
// template or include action must be defined somewhere in the chart. This
// needs random access across files (a name defined in _helpers.tpl may be
// referenced anywhere), which a streaming pass cannot express.
type UndefinedTemplate struct{}

func (r *UndefinedTemplate) Metadata() rules.RuleMetadata {
	return rules.RuleMetadata{
		Code:             "CT003",
		Name:             "Undefined template reference",
		Description:      "Referencing a template name that no define or block declares fails at render time.",
		DefaultSeverity:  rules.SeverityError,
		Category:         rules.Category("CT003"),
		EnabledByDefault: true,
	}
}

func (r *UndefinedTemplate) Check(ctx *rules.Context) []rules.Failure {
	defined := ctx.DefinedTemplateNames()

	var failures []rules.Failure
	for _, tpl := range ctx.Templates {
		failures = append(failures, checkReferences(tpl, defined)...)
	}
	if ctx.Helpers != nil {
		failures = append(failures, checkReferences(ctx.Helpers, defined)...)
	}
	return failures
}

func checkReferences(tpl *template.ParsedTemplate, defined map[string]bool) []rules.Failure {
	var failures []rules.Failure
	for _, token := range tpl.Tokens {
		if token.Kind != template.TokenAction {
			continue
		}
		name, ok := referencedName(token.Content)
		if !ok || defined[name] {
			continue
		}
		failures = append(failures, rules.NewFailure(
			tpl.Name, token.Line,
			"CT003",
			fmt.Sprintf("template %q is referenced but never defined", name),
			rules.SeverityError,
		))
	}
	return failures
}

// referencedName extracts the quoted template name of a template or
// include action. Dynamic names (expressions) are skipped.
func referencedName(action string) (string, bool) {
	fields := strings.Fields(action)
	for i, f := range fields {
		if (f == "template" || f == "include") && i+1 < len(fields) {
			name := fields[i+1]
			if len(name) >= 2 && name[0] == '"' && name[len(name)-1] == '"' {
				return name[1 : len(name)-1], true
			}
			if len(name) >= 3 && name[0] == '(' && name[1] == '"' && strings.HasSuffix(name, `"`) {
				return name[2 : len(name)-1], true
			}
		}
	}
	return "", false
}

func init() {
	rules.Register(&UndefinedTemplate{})
}
