package rules

import "strings"

// Rule code prefixes group codes by the document family they apply to.
const (
	BuildRulePrefix    = "DL"  // container build scripts
	ShellRulePrefix    = "SC"  // shell fragments inside build scripts
	ChartRulePrefix    = "CT"  // package-template charts
	TemplateRulePrefix = "TPL" // template files inside charts
	ManifestRulePrefix = "KM"  // cluster manifests
	ComposeRulePrefix  = "CF"  // multi-service compose files
)

// Category derives the rule category from a code's letter prefix.
// Unknown prefixes map to "general"; the derivation is pure and codes
// stay opaque strings everywhere else.
func Category(code string) string {
	i := 0
	for i < len(code) && (code[i] < '0' || code[i] > '9') {
		i++
	}
	switch strings.ToUpper(code[:i]) {
	case BuildRulePrefix:
		return "buildfile"
	case ShellRulePrefix:
		return "shell"
	case ChartRulePrefix:
		return "chart"
	case TemplateRulePrefix:
		return "template"
	case ManifestRulePrefix:
		return "manifest"
	case ComposeRulePrefix:
		return "compose"
	default:
		return "general"
	}
}
