// Package config resolves the linter configuration cascade: defaults,
// config file discovery, and environment overrides, producing effective
// per-rule decisions and global settings.
//
// Malformed configuration is handled permissively: unparseable rule entries
// are skipped so the rule falls back to its declared default. A linter that
// refuses to run because of one bad config line is a worse experience than
// one that ignores the bad line.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/gkampitakis/ciinfo"
	toml "github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/shiplint/shiplint/internal/rules"
)

// Config file names probed during discovery, in priority order.
var configFileNames = []string{".shiplint.yaml", ".shiplint.yml", ".shiplint.toml"}

// envPrefix is the prefix for environment overrides (SHIPLINT_QUIET=true).
const envPrefix = "SHIPLINT_"

// RuleSetting is the effective configuration of one rule.
type RuleSetting struct {
	// Off disables the rule entirely.
	Off bool
	// Level overrides the rule's default severity when HasLevel is set.
	Level    rules.Severity
	HasLevel bool
	// Options is the rule-specific option map.
	Options map[string]any
}

// Config is the resolved linter configuration.
type Config struct {
	// Rules holds the normalized per-rule settings, keyed by code.
	Rules map[string]RuleSetting `koanf:"-"`

	// Quiet suppresses non-failure output.
	Quiet bool `koanf:"quiet"`
	// Debug enables debug logging.
	Debug bool `koanf:"debug"`
	// Exclude are glob patterns of files to skip entirely, evaluated
	// before any parse or rule work.
	Exclude []string `koanf:"exclude"`
	// DisableIgnorePragma turns off inline pragma processing globally.
	DisableIgnorePragma bool `koanf:"disableIgnorePragma"`
	// Threshold is the minimum severity included in the report.
	Threshold string `koanf:"threshold"`
	// NoFail forces a zero exit status regardless of failures.
	NoFail bool `koanf:"noFail"`
	// FixableOnly keeps only failures with a known automatic fix.
	FixableOnly bool `koanf:"fixableOnly"`
	// NoColor disables colored output; defaults to true under CI.
	NoColor bool `koanf:"noColor"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Rules:     map[string]RuleSetting{},
		Threshold: "style",
		NoColor:   ciinfo.IsCI,
	}
}

// Load discovers and loads configuration for the given lint target, walking
// up from the target's directory. A missing config file yields Default.
func Load(target string) (*Config, error) {
	dir := target
	if info, err := os.Stat(target); err != nil || !info.IsDir() {
		dir = filepath.Dir(target)
	}
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}

	for {
		for _, name := range configFileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return LoadFile(candidate)
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return Default(), nil
		}
		dir = parent
	}
}

// LoadFile loads configuration from an explicit path, then applies
// SHIPLINT_ environment overrides.
func LoadFile(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}

	parser := configParser(path)
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	if err := k.Load(env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(key, value string) (string, any) {
			key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
			return strings.ReplaceAll(key, "_", "."), value
		},
	}), nil); err != nil {
		return nil, fmt.Errorf("config env: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	cfg.Rules = normalizeRules(k.Get("rules"))
	return cfg, nil
}

func configParser(path string) koanf.Parser {
	if filepath.Ext(path) == ".toml" {
		return toml.Parser()
	}
	return yaml.Parser()
}

// normalizeRules converts the raw rules mapping into RuleSettings. Each
// entry is either a plain level string or a [level, {options}] pair.
// Entries that fit neither shape, and unknown levels, are skipped (the rule
// keeps its declared default).
func normalizeRules(raw any) map[string]RuleSetting {
	settings := make(map[string]RuleSetting)
	mapping, ok := raw.(map[string]any)
	if !ok {
		return settings
	}

	for code, entry := range mapping {
		var level string
		var options map[string]any

		switch v := entry.(type) {
		case string:
			level = v
		case []any:
			if len(v) == 0 {
				continue
			}
			if s, ok := v[0].(string); ok {
				level = s
			} else {
				continue
			}
			if len(v) > 1 {
				if opts, ok := v[1].(map[string]any); ok {
					options = opts
				}
			}
		default:
			continue
		}

		setting := RuleSetting{Options: options}
		if strings.EqualFold(level, "off") {
			setting.Off = true
		} else {
			severity, ok := rules.ParseSeverity(level)
			if !ok {
				continue
			}
			setting.Level = severity
			setting.HasLevel = true
		}
		settings[code] = setting
	}

	return settings
}

// RuleFor returns the setting configured for code, if any.
func (c *Config) RuleFor(code string) (RuleSetting, bool) {
	s, ok := c.Rules[code]
	return s, ok
}

// RuleEnabled reports whether a rule should be invoked at all. A rule
// configured off is skipped before invocation, not invoked and discarded.
func (c *Config) RuleEnabled(code string, enabledByDefault bool) bool {
	if s, ok := c.Rules[code]; ok {
		return !s.Off
	}
	return enabledByDefault
}

// EffectiveSeverity resolves the severity applied to failures of a rule:
// the configured level if present, else the rule's declared default.
func (c *Config) EffectiveSeverity(code string, def rules.Severity) rules.Severity {
	if s, ok := c.Rules[code]; ok && s.HasLevel {
		return s.Level
	}
	return def
}

// OptionsFor returns the configured option map for a rule (nil when unset).
func (c *Config) OptionsFor(code string) map[string]any {
	if s, ok := c.Rules[code]; ok {
		return s.Options
	}
	return nil
}

// ThresholdSeverity parses the configured threshold; unknown values fall
// back to including everything above ignore.
func (c *Config) ThresholdSeverity() rules.Severity {
	if s, ok := rules.ParseSeverity(c.Threshold); ok {
		return s
	}
	return rules.SeverityStyle
}

// Excluded reports whether a file path matches any exclude glob. Evaluated
// before any parse or rule work so excluded files cost nothing.
func (c *Config) Excluded(path string) bool {
	normalized := filepath.ToSlash(path)
	for _, pattern := range c.Exclude {
		if ok, err := doublestar.Match(pattern, normalized); err == nil && ok {
			return true
		}
		if ok, err := doublestar.Match(pattern, filepath.Base(normalized)); err == nil && ok {
			return true
		}
	}
	return false
}
