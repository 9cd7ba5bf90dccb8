// Package lint sequences the pipeline: parse → pragma extraction → rule
// execution → config/pragma filtering → sort → aggregate.
//
// Each document's lint is pure given its inputs: no shared mutable state
// survives between documents, so callers may fan out across documents
// freely even though this implementation runs them sequentially.
package lint

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/shiplint/shiplint/internal/buildfile"
	"github.com/shiplint/shiplint/internal/chart"
	"github.com/shiplint/shiplint/internal/config"
	"github.com/shiplint/shiplint/internal/pragma"
	"github.com/shiplint/shiplint/internal/rules"
	"github.com/shiplint/shiplint/internal/template"
)

// Linter runs the pipeline against one catalogue and one configuration.
type Linter struct {
	catalogue *rules.Catalogue
	cfg       *config.Config
	log       *logrus.Logger
}

// New creates a linter. A nil config means defaults.
func New(catalogue *rules.Catalogue, cfg *config.Config) *Linter {
	if cfg == nil {
		cfg = config.Default()
	}
	log := logrus.New()
	log.SetOutput(os.Stderr)
	if cfg.Debug {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.WarnLevel)
	}
	return &Linter{catalogue: catalogue, cfg: cfg, log: log}
}

// LintFile lints one build script. If content is nil the file is read from
// disk before parsing begins.
func (l *Linter) LintFile(path string, content []byte) *Result {
	result := &Result{}

	if l.cfg.Excluded(path) {
		l.log.WithField("file", path).Debug("skipping excluded file")
		return result
	}

	if content == nil {
		var err error
		content, err = os.ReadFile(path)
		if err != nil {
			result.ParseErrors = append(result.ParseErrors, err.Error())
			return result
		}
	}

	parsed, err := buildfile.Parse(content, path)
	if err != nil {
		// Fail-fast per file: no partial instruction stream, no rules.
		result.ParseErrors = append(result.ParseErrors, err.Error())
		return result
	}

	prag := l.pragmaState(content)
	failures := l.runStreamingRules(parsed)
	for i := range failures {
		if failures[i].File == "" {
			failures[i].File = path
		}
	}

	result.Failures = l.filter(failures, prag)
	rules.SortFailures(result.Failures)
	return result
}

// LintChart lints one chart directory as a single document. Template
// tokenization is best-effort: tokenizer errors become parse errors on the
// result, but the tokens gathered so far still feed the context rules.
func (l *Linter) LintChart(dir string) *Result {
	result := &Result{}

	if l.cfg.Excluded(dir) {
		l.log.WithField("chart", dir).Debug("skipping excluded chart")
		return result
	}

	loaded, err := chart.Load(dir)
	if err != nil {
		result.ParseErrors = append(result.ParseErrors, err.Error())
		return result
	}

	prag := pragma.NewState()
	if !l.cfg.DisableIgnorePragma {
		for _, content := range loaded.Files {
			prag.Merge(pragma.Scan(content))
		}
	}

	ctx := &rules.Context{
		Chart:  loaded.Metadata,
		Values: loaded.Values,
		Files:  loaded.Files,
	}
	for _, path := range loaded.TemplatePaths() {
		if l.cfg.Excluded(path) || l.cfg.Excluded(filepath.Join(dir, path)) {
			l.log.WithField("template", path).Debug("skipping excluded template")
			continue
		}
		tpl := template.Parse(path, string(loaded.Templates[path]))
		for _, perr := range tpl.Errors {
			result.ParseErrors = append(result.ParseErrors,
				fmt.Sprintf("%s:%d: %s", path, perr.Line, perr.Message))
		}
		if path == chart.HelpersPath {
			ctx.Helpers = tpl
			continue
		}
		ctx.Templates = append(ctx.Templates, tpl)
	}

	// Rules attribute failures to paths relative to the chart root;
	// re-anchor them to the caller's directory.
	failures := l.runContextRules(ctx)
	for i := range failures {
		if failures[i].File == "" {
			failures[i].File = "Chart.yaml"
		}
		failures[i].File = filepath.Join(dir, failures[i].File)
	}

	result.Failures = l.filter(failures, prag)
	rules.SortFailures(result.Failures)
	return result
}

// LintFiles lints a batch of independent build scripts. One file's parse
// failure never affects its siblings.
func (l *Linter) LintFiles(paths []string) *Result {
	combined := &Result{}
	for _, path := range paths {
		combined.Merge(l.LintFile(path, nil))
	}
	return combined
}

// pragmaState scans raw text unless pragma processing is globally disabled,
// in which case it short-circuits to an empty state without scanning.
func (l *Linter) pragmaState(content []byte) *pragma.State {
	if l.cfg.DisableIgnorePragma {
		return pragma.NewState()
	}
	return pragma.Scan(content)
}

// runStreamingRules executes every enabled streaming rule over the
// instruction stream. Wrapper instructions additionally feed their
// unwrapped inner instruction so nested directives get the same scrutiny.
func (l *Linter) runStreamingRules(parsed *buildfile.ParseResult) []rules.Failure {
	var failures []rules.Failure

	for _, rule := range l.catalogue.All() {
		streaming, ok := l.enabledRule(rule).(rules.StreamingRule)
		if !ok {
			continue
		}

		state := streaming.NewState()
		for _, inst := range parsed.Instructions {
			failures = append(failures, streaming.Check(state, inst)...)
			if wrapper, ok := inst.Inst.(*buildfile.Onbuild); ok {
				inner := buildfile.PositionedInstruction{
					Inst:   wrapper.Inner,
					Line:   inst.Line,
					Source: inst.Source,
				}
				failures = append(failures, streaming.Check(state, inner)...)
			}
		}
		failures = append(failures, streaming.Finalize(state)...)
	}

	return failures
}

// runContextRules executes every enabled context rule once.
func (l *Linter) runContextRules(ctx *rules.Context) []rules.Failure {
	var failures []rules.Failure
	for _, rule := range l.catalogue.All() {
		contextRule, ok := l.enabledRule(rule).(rules.ContextRule)
		if !ok {
			continue
		}
		failures = append(failures, contextRule.Check(ctx)...)
	}
	return failures
}

// enabledRule returns the rule instance to invoke: the configured copy for
// configurable rules, or a sentinel that implements neither check shape when
// configuration turns the rule off.
func (l *Linter) enabledRule(rule rules.Rule) rules.Rule {
	md := rule.Metadata()
	if !l.cfg.RuleEnabled(md.Code, md.EnabledByDefault) {
		l.log.WithField("rule", md.Code).Debug("rule disabled by configuration")
		return disabledRule{}
	}
	if configurable, ok := rule.(rules.ConfigurableRule); ok {
		if opts := l.cfg.OptionsFor(md.Code); len(opts) > 0 {
			return configurable.Configure(opts)
		}
	}
	return rule
}

// disabledRule implements neither check shape, so type assertions in the
// run loops skip it.
type disabledRule struct{}

func (disabledRule) Metadata() rules.RuleMetadata { return rules.RuleMetadata{} }

// filter applies effective severity, threshold, pragma, and fixable-only
// decisions to raw failures.
func (l *Linter) filter(failures []rules.Failure, prag *pragma.State) []rules.Failure {
	threshold := l.cfg.ThresholdSeverity()
	kept := make([]rules.Failure, 0, len(failures))

	for _, f := range failures {
		if !l.cfg.RuleEnabled(f.Code, true) {
			continue
		}
		f.Severity = l.cfg.EffectiveSeverity(f.Code, f.Severity)
		if !f.Severity.AtLeast(threshold) || f.Severity == rules.SeverityIgnore {
			continue
		}
		if prag.Suppressed(f.Code, f.Line) {
			continue
		}
		if l.cfg.FixableOnly && !f.Fixable {
			continue
		}
		kept = append(kept, f)
	}
	return kept
}
