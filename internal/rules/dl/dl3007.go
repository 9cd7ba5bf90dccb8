package dl

import (
	"fmt"

	"github.com/distribution/reference"

	"github.com/shiplint/shiplint/internal/buildfile"
	"github.com/shiplint/shiplint/internal/rules"
)

// LatestTag implements DL3007: avoid the :latest tag.
type LatestTag struct{}

func (r *LatestTag) Metadata() rules.RuleMetadata {
	return rules.RuleMetadata{
		Code:             "DL3007",
		Name:             "Avoid using :latest tag",
		Description:      "The :latest tag can change at any time, breaking builds or introducing unexpected behavior. Pin a release tag.",
		DocURL:           "https://github.com/hadolint/hadolint/wiki/DL3007",
		DefaultSeverity:  rules.SeverityWarning,
		Category:         rules.Category("DL3007"),
		EnabledByDefault: true,
	}
}

func (r *LatestTag) NewState() any { return newStageState() }

func (r *LatestTag) Check(state any, inst buildfile.PositionedInstruction) []rules.Failure {
	from, ok := inst.Inst.(*buildfile.From)
	if !ok {
		return nil
	}
	if state.(*stageState).note(from) {
		return nil
	}
	if !usesLatestTag(from) {
		return nil
	}
	return []rules.Failure{rules.NewFailure(
		"", inst.Line,
		"DL3007",
		fmt.Sprintf("using :latest tag for image %q is prone to errors; pin a specific version instead", from.Image),
		rules.SeverityWarning,
	).WithFixable()}
}

func (r *LatestTag) Finalize(any) []rules.Failure { return nil }

func usesLatestTag(from *buildfile.From) bool {
	if from.Digest != "" {
		return false
	}
	named, err := reference.ParseNormalizedNamed(from.BaseRaw)
	if err != nil {
		return from.Tag == "latest"
	}
	tagged, ok := named.(reference.NamedTagged)
	return ok && tagged.Tag() == "latest"
}

func init() {
	rules.Register(&LatestTag{})
}
