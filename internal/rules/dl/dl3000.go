// Package dl implements the build-script rule set. Each rule registers
// itself with the default catalogue; importing rules/all pulls them in.
package dl

import (
	"fmt"
	"strings"

	"github.com/shiplint/shiplint/internal/buildfile"
	"github.com/shiplint/shiplint/internal/rules"
)

// WorkdirAbsolute implements DL3000: WORKDIR paths must be absolute.
type WorkdirAbsolute struct{}

func (r *WorkdirAbsolute) Metadata() rules.RuleMetadata {
	return rules.RuleMetadata{
		Code:             "DL3000",
		Name:             "Use absolute WORKDIR",
		Description:      "Relative WORKDIR paths depend on the previous working directory and break silently when instructions are reordered.",
		DocURL:           "https://github.com/hadolint/hadolint/wiki/DL3000",
		DefaultSeverity:  rules.SeverityError,
		Category:         rules.Category("DL3000"),
		EnabledByDefault: true,
	}
}

func (r *WorkdirAbsolute) NewState() any { return nil }

func (r *WorkdirAbsolute) Check(_ any, inst buildfile.PositionedInstruction) []rules.Failure {
	wd, ok := inst.Inst.(*buildfile.Workdir)
	if !ok {
		return nil
	}
	path := strings.Trim(wd.Path, `"'`)
	// Variable-based and Windows-style paths are out of reach for a
	// purely lexical check.
	if strings.HasPrefix(path, "/") || strings.HasPrefix(path, "$") || strings.Contains(path, ":\\") {
		return nil
	}
	return []rules.Failure{rules.NewFailure(
		"", inst.Line,
		"DL3000",
		fmt.Sprintf("use absolute WORKDIR; %q is relative", wd.Path),
		rules.SeverityError,
	)}
}

func (r *WorkdirAbsolute) Finalize(any) []rules.Failure { return nil }

func init() {
	rules.Register(&WorkdirAbsolute{})
}
