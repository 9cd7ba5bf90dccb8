package rules

import (
	"fmt"
	"sort"
)

// Failure is a single rule violation found in a document.
//
// Failures are immutable once created; consumers sort them with
// SortFailures, whose (file, line, severity) ascending order is a contract
// relied on by golden tests downstream.
type Failure struct {
	// Code is the rule code that produced the failure (e.g., "DL3006").
	Code string `json:"code"`
	// Severity is the effective severity after configuration overrides.
	Severity Severity `json:"severity"`
	// Message is the human-readable description.
	Message string `json:"message"`
	// File is the path of the offending document.
	File string `json:"file"`
	// Line is the 1-based line number (0 for file-level failures).
	Line int `json:"line"`
	// Column is the 1-based column (0 means unknown).
	Column int `json:"column,omitempty"`
	// Fixable marks failures with a known automatic fix.
	Fixable bool `json:"fixable,omitempty"`
	// Category groups the failure (derived from the code prefix).
	Category string `json:"category"`
}

// NewFailure creates a failure for the given location and rule code.
// The category is derived from the code prefix.
func NewFailure(file string, line int, code, message string, severity Severity) Failure {
	return Failure{
		Code:     code,
		Severity: severity,
		Message:  message,
		File:     file,
		Line:     line,
		Category: Category(code),
	}
}

// WithColumn returns a copy of the failure with the column set.
func (f Failure) WithColumn(col int) Failure {
	f.Column = col
	return f
}

// WithFixable returns a copy of the failure marked as auto-fixable.
func (f Failure) WithFixable() Failure {
	f.Fixable = true
	return f
}

// String renders the failure in "file:line: CODE message" form.
func (f Failure) String() string {
	return fmt.Sprintf("%s:%d: %s %s", f.File, f.Line, f.Code, f.Message)
}

// Less orders failures by (file, line, severity) ascending.
func (f Failure) Less(other Failure) bool {
	if f.File != other.File {
		return f.File < other.File
	}
	if f.Line != other.Line {
		return f.Line < other.Line
	}
	return f.Severity < other.Severity
}

// SortFailures sorts failures in place by (file, line, severity) ascending.
// The sort is stable so re-sorting a sorted slice is a no-op.
func SortFailures(failures []Failure) {
	sort.SliceStable(failures, func(i, j int) bool {
		return failures[i].Less(failures[j])
	})
}
