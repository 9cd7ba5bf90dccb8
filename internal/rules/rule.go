package rules

import (
	"github.com/shiplint/shiplint/internal/buildfile"
)

// RuleMetadata contains static information about a rule.
type RuleMetadata struct {
	// Code is the unique identifier (e.g., "DL3006", "CT001").
	Code string

	// Name is the human-readable rule name.
	Name string

	// Description explains what the rule checks.
	Description string

	// DocURL links to detailed documentation.
	DocURL string

	// DefaultSeverity is the severity when not overridden by configuration.
	DefaultSeverity Severity

	// Category groups related rules; usually Category(Code).
	Category string

	// EnabledByDefault indicates if the rule runs without explicit opt-in.
	EnabledByDefault bool

	// IsExperimental marks rules that may change or be removed.
	IsExperimental bool
}

// Rule is the common interface of all linting rules. Every rule also
// implements exactly one of the two check shapes below; the engine branches
// on the shape rather than on a class hierarchy.
type Rule interface {
	// Metadata returns static information about the rule.
	Metadata() RuleMetadata
}

// StreamingRule is a rule invoked once per positioned instruction with a
// rule-owned accumulator that persists across the whole document.
//
// The engine calls NewState once per document, Check for every top-level
// instruction (and additionally for the unwrapped inner instruction of a
// wrapper), and Finalize after the last instruction. This shape exists for
// violations only detectable in aggregate.
type StreamingRule interface {
	Rule

	// NewState returns a fresh accumulator for one document.
	NewState() any

	// Check inspects one instruction and may return failures immediately.
	Check(state any, inst buildfile.PositionedInstruction) []Failure

	// Finalize converts accumulated state into failures after the last
	// instruction. It may return nil.
	Finalize(state any) []Failure
}

// ConfigurableRule is an optional interface for rules that accept options
// from the configuration's rules table. Configure returns a new rule
// instance bound to the options; the original is never mutated, so shared
// catalogue instances stay safe for concurrent documents.
type ConfigurableRule interface {
	Rule

	// Configure binds the option map to a copy of the rule. Invalid or
	// unknown options are ignored (configuration is fail-open).
	Configure(opts map[string]any) Rule
}

// ContextRule is a rule invoked exactly once per document with read access
// to all parsed artifacts. This shape exists for checks that need random
// access across files, which a single streaming pass cannot express.
type ContextRule interface {
	Rule

	// Check inspects the whole document context. The context is read-only
	// and scoped to one orchestration run.
	Check(ctx *Context) []Failure
}
