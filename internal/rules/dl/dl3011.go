package dl

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shiplint/shiplint/internal/buildfile"
	"github.com/shiplint/shiplint/internal/rules"
)

// ValidPorts implements DL3011: exposed ports must be within 0-65535.
type ValidPorts struct{}

func (r *ValidPorts) Metadata() rules.RuleMetadata {
	return rules.RuleMetadata{
		Code:             "DL3011",
		Name:             "Valid UNIX ports",
		Description:      "Exposed ports outside 0-65535 are invalid and rejected at runtime.",
		DocURL:           "https://github.com/hadolint/hadolint/wiki/DL3011",
		DefaultSeverity:  rules.SeverityError,
		Category:         rules.Category("DL3011"),
		EnabledByDefault: true,
	}
}

func (r *ValidPorts) NewState() any { return nil }

func (r *ValidPorts) Check(_ any, inst buildfile.PositionedInstruction) []rules.Failure {
	expose, ok := inst.Inst.(*buildfile.Expose)
	if !ok {
		return nil
	}

	var failures []rules.Failure
	for _, port := range expose.Ports {
		if strings.Contains(port.Port, "$") {
			continue
		}
		// A port entry may be a single number or a low-high range.
		for _, part := range strings.SplitN(port.Port, "-", 2) {
			n, err := strconv.Atoi(part)
			if err != nil || n < 0 || n > 65535 {
				failures = append(failures, rules.NewFailure(
					"", inst.Line,
					"DL3011",
					fmt.Sprintf("valid UNIX ports range from 0 to 65535; got %q", port.Port),
					rules.SeverityError,
				))
				break
			}
		}
	}
	return failures
}

func (r *ValidPorts) Finalize(any) []rules.Failure { return nil }

func init() {
	rules.Register(&ValidPorts{})
}
