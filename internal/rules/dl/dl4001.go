package dl

import (
	"github.com/shiplint/shiplint/internal/buildfile"
	"github.com/shiplint/shiplint/internal/rules"
	"github.com/shiplint/shiplint/internal/shell"
)

// WgetOrCurl implements DL4001: use either wget or curl, not both. The
// violation is only detectable in aggregate, so the rule accumulates usage
// lines across the whole document and reports in Finalize.
type WgetOrCurl struct{}

func (r *WgetOrCurl) Metadata() rules.RuleMetadata {
	return rules.RuleMetadata{
		Code:             "DL4001",
		Name:             "Either wget or curl, not both",
		Description:      "Standardize on one HTTP client to reduce image size and duplicated tooling.",
		DocURL:           "https://github.com/hadolint/hadolint/wiki/DL4001",
		DefaultSeverity:  rules.SeverityWarning,
		Category:         rules.Category("DL4001"),
		EnabledByDefault: true,
	}
}

type httpToolState struct {
	wgetLines []int
	curlLines []int
}

func (r *WgetOrCurl) NewState() any { return &httpToolState{} }

func (r *WgetOrCurl) Check(state any, inst buildfile.PositionedInstruction) []rules.Failure {
	run, ok := inst.Inst.(*buildfile.Run)
	if !ok {
		return nil
	}
	s := state.(*httpToolState)
	for _, name := range shell.Commands(run.Cmd) {
		switch name {
		case "wget":
			s.wgetLines = append(s.wgetLines, inst.Line)
		case "curl":
			s.curlLines = append(s.curlLines, inst.Line)
		}
	}
	return nil
}

func (r *WgetOrCurl) Finalize(state any) []rules.Failure {
	s := state.(*httpToolState)
	if len(s.wgetLines) == 0 || len(s.curlLines) == 0 {
		return nil
	}
	var failures []rules.Failure
	for _, line := range append(s.wgetLines, s.curlLines...) {
		failures = append(failures, rules.NewFailure(
			"", line,
			"DL4001",
			"either use wget or curl, but not both",
			rules.SeverityWarning,
		))
	}
	return failures
}

func init() {
	rules.Register(&WgetOrCurl{})
}
