package dl

import (
	"github.com/shiplint/shiplint/internal/buildfile"
	"github.com/shiplint/shiplint/internal/rules"
)

// MultipleCmd implements DL4003: at most one CMD instruction per stage.
// Only the last CMD of a stage takes effect, so every earlier one is dead
// weight; the aggregate is reported once the full document has been seen.
type MultipleCmd struct{}

func (r *MultipleCmd) Metadata() rules.RuleMetadata {
	return rules.RuleMetadata{
		Code:             "DL4003",
		Name:             "Multiple CMD instructions",
		Description:      "If you list more than one CMD, only the last one takes effect.",
		DocURL:           "https://github.com/hadolint/hadolint/wiki/DL4003",
		DefaultSeverity:  rules.SeverityWarning,
		Category:         rules.Category("DL4003"),
		EnabledByDefault: true,
	}
}

type cmdState struct {
	lines    []int
	failures []rules.Failure
}

// flushStage converts all but the last CMD of the finished stage into
// failures and starts a fresh per-stage budget.
func (s *cmdState) flushStage() {
	if len(s.lines) > 1 {
		for _, line := range s.lines[:len(s.lines)-1] {
			s.failures = append(s.failures, rules.NewFailure(
				"", line,
				"DL4003",
				"multiple CMD instructions found; only the last one takes effect",
				rules.SeverityWarning,
			))
		}
	}
	s.lines = nil
}

func (r *MultipleCmd) NewState() any { return &cmdState{} }

func (r *MultipleCmd) Check(state any, inst buildfile.PositionedInstruction) []rules.Failure {
	s := state.(*cmdState)
	switch inst.Inst.(type) {
	case *buildfile.Cmd:
		s.lines = append(s.lines, inst.Line)
	case *buildfile.From:
		s.flushStage()
	}
	return nil
}

func (r *MultipleCmd) Finalize(state any) []rules.Failure {
	s := state.(*cmdState)
	s.flushStage()
	return s.failures
}

func init() {
	rules.Register(&MultipleCmd{})
}
