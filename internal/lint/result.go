package lint

import (
	"github.com/shiplint/shiplint/internal/config"
	"github.com/shiplint/shiplint/internal/rules"
)

// Result is the sole artifact downstream consumers (CLI, reporters) see.
//
// Failures are sorted by (file, line, severity) ascending. All boolean and
// severity queries are derived from the failure collection on demand; there
// are no cached fields that could desynchronize.
type Result struct {
	// Failures are the surviving rule violations, sorted.
	Failures []rules.Failure `json:"failures"`
	// ParseErrors are per-file structural errors, as opaque strings.
	ParseErrors []string `json:"parseErrors,omitempty"`
}

// Merge appends another result, keeping the sort contract.
func (r *Result) Merge(other *Result) {
	r.Failures = append(r.Failures, other.Failures...)
	r.ParseErrors = append(r.ParseErrors, other.ParseErrors...)
	rules.SortFailures(r.Failures)
}

// HasErrors reports whether any failure has error severity.
func (r *Result) HasErrors() bool {
	for _, f := range r.Failures {
		if f.Severity == rules.SeverityError {
			return true
		}
	}
	return false
}

// HasWarnings reports whether any failure has warning severity.
func (r *Result) HasWarnings() bool {
	for _, f := range r.Failures {
		if f.Severity == rules.SeverityWarning {
			return true
		}
	}
	return false
}

// ErrorCount counts failures with error severity.
func (r *Result) ErrorCount() int {
	return r.countAt(rules.SeverityError)
}

// WarningCount counts failures with warning severity.
func (r *Result) WarningCount() int {
	return r.countAt(rules.SeverityWarning)
}

func (r *Result) countAt(severity rules.Severity) int {
	n := 0
	for _, f := range r.Failures {
		if f.Severity == severity {
			n++
		}
	}
	return n
}

// MaxSeverity returns the most severe failure present, or SeverityIgnore
// when there are none.
func (r *Result) MaxSeverity() rules.Severity {
	max := rules.SeverityIgnore
	for _, f := range r.Failures {
		if f.Severity.AtLeast(max) {
			max = f.Severity
		}
	}
	return max
}

// ShouldFail reports whether the run should produce a failing exit status:
// true iff a failure meets the configured threshold and the never-fail
// override is unset. Parse errors always fail.
func (r *Result) ShouldFail(cfg *config.Config) bool {
	if cfg.NoFail {
		return false
	}
	if len(r.ParseErrors) > 0 {
		return true
	}
	threshold := cfg.ThresholdSeverity()
	for _, f := range r.Failures {
		if f.Severity.AtLeast(threshold) {
			return true
		}
	}
	return false
}
