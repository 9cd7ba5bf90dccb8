package rules

import (
	"github.com/shiplint/shiplint/internal/chart"
	"github.com/shiplint/shiplint/internal/template"
)

// Context bundles everything a context rule may inspect for one document.
//
// Context is read-only and scoped to a single orchestration run; rules must
// not mutate any field. All file contents are read before parsing begins, so
// rules never trigger I/O.
type Context struct {
	// Chart is the parsed package metadata (nil when unavailable).
	Chart *chart.Metadata

	// Values is the parsed values tree supporting path-existence queries
	// (nil when the document has no values file).
	Values *chart.Values

	// Templates are the parsed template files of the document.
	Templates []*template.ParsedTemplate

	// Helpers is the parse of the shared helpers file, if present.
	Helpers *template.ParsedTemplate

	// Files maps relative paths to raw contents for every file of the
	// document, including those represented in parsed form above.
	Files map[string][]byte
}

// DefinedTemplateNames collects template names defined anywhere in the
// document, including the helpers file.
func (c *Context) DefinedTemplateNames() map[string]bool {
	defined := make(map[string]bool)
	if c.Helpers != nil {
		for _, name := range c.Helpers.DefinedTemplates {
			defined[name] = true
		}
	}
	for _, tpl := range c.Templates {
		for _, name := range tpl.DefinedTemplates {
			defined[name] = true
		}
	}
	return defined
}
