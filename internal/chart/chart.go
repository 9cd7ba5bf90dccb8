// Package chart loads package-template chart documents: metadata, values
// tree, and template files. All file reads happen before any parsing so a
// read failure surfaces as one clearly attributed error instead of a
// partial parse.
package chart

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Metadata is the chart's Chart.yaml contents.
type Metadata struct {
	APIVersion  string `yaml:"apiVersion"`
	Name        string `yaml:"name"`
	Version     string `yaml:"version"`
	AppVersion  string `yaml:"appVersion"`
	Description string `yaml:"description"`
	Type        string `yaml:"type"`
	KubeVersion string `yaml:"kubeVersion"`
}

// ParseMetadata decodes Chart.yaml content.
func ParseMetadata(content []byte) (*Metadata, error) {
	var md Metadata
	if err := yaml.Unmarshal(content, &md); err != nil {
		return nil, fmt.Errorf("chart metadata: %w", err)
	}
	return &md, nil
}

// Values is a parsed values tree supporting dotted-path queries.
type Values struct {
	root map[string]any
}

// ParseValues decodes a values file. An empty file yields an empty tree.
func ParseValues(content []byte) (*Values, error) {
	var root map[string]any
	if err := yaml.Unmarshal(content, &root); err != nil {
		return nil, fmt.Errorf("values: %w", err)
	}
	return &Values{root: root}, nil
}

// Lookup resolves a dotted path ("image.tag") against the tree.
func (v *Values) Lookup(path string) (any, bool) {
	if v == nil || v.root == nil {
		return nil, false
	}
	var cur any = v.root
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// HasPath reports whether the dotted path exists in the tree.
func (v *Values) HasPath(path string) bool {
	_, ok := v.Lookup(path)
	return ok
}

// Chart is one loaded chart document: raw files plus parsed metadata and
// values. Template parsing happens in the orchestrator.
type Chart struct {
	// Dir is the chart root directory.
	Dir string
	// Metadata is the parsed Chart.yaml (nil if absent).
	Metadata *Metadata
	// Values is the parsed values tree (nil if absent).
	Values *Values
	// Templates maps template paths (relative to Dir) to raw contents,
	// sorted iteration via TemplatePaths.
	Templates map[string][]byte
	// Files maps every contributing file path (relative to Dir) to its raw
	// contents, including Chart.yaml and the values file.
	Files map[string][]byte
}

// HelpersPath is the conventional shared-helpers template file.
const HelpersPath = "templates/_helpers.tpl"

// TemplatePaths returns the template file paths in sorted order.
func (c *Chart) TemplatePaths() []string {
	paths := make([]string, 0, len(c.Templates))
	for p := range c.Templates {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Load reads a chart directory. Chart.yaml must exist; values.yaml and
// templates are optional. Every file is read before any parsing begins.
func Load(dir string) (*Chart, error) {
	c := &Chart{
		Dir:       dir,
		Templates: make(map[string][]byte),
		Files:     make(map[string][]byte),
	}

	metaRaw, err := os.ReadFile(filepath.Join(dir, "Chart.yaml"))
	if err != nil {
		return nil, fmt.Errorf("chart %s: %w", dir, err)
	}
	c.Files["Chart.yaml"] = metaRaw

	valuesRaw, err := os.ReadFile(filepath.Join(dir, "values.yaml"))
	if err == nil {
		c.Files["values.yaml"] = valuesRaw
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("chart %s: %w", dir, err)
	}

	templatesDir := filepath.Join(dir, "templates")
	entries, err := os.ReadDir(templatesDir)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("chart %s: %w", dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !isTemplateFile(entry.Name()) {
			continue
		}
		rel := "templates/" + entry.Name()
		content, err := os.ReadFile(filepath.Join(templatesDir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("chart %s: %w", dir, err)
		}
		c.Files[rel] = content
		c.Templates[rel] = content
	}

	// All reads done; parse.
	if c.Metadata, err = ParseMetadata(metaRaw); err != nil {
		return nil, err
	}
	if valuesRaw != nil {
		if c.Values, err = ParseValues(valuesRaw); err != nil {
			return nil, err
		}
	}

	return c, nil
}

func isTemplateFile(name string) bool {
	switch filepath.Ext(name) {
	case ".yaml", ".yml", ".tpl", ".txt":
		return true
	default:
		return false
	}
}
