package dl

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/distribution/reference"

	"github.com/shiplint/shiplint/internal/buildfile"
	"github.com/shiplint/shiplint/internal/rules"
)

// UntaggedImage implements DL3006: always tag the version of a base image
// explicitly. Stage aliases and digest-pinned references are exempt.
type UntaggedImage struct{}

func (r *UntaggedImage) Metadata() rules.RuleMetadata {
	return rules.RuleMetadata{
		Code:             "DL3006",
		Name:             "Always tag the image version",
		Description:      "An untagged base image floats with the registry's default tag and makes builds non-reproducible.",
		DocURL:           "https://github.com/hadolint/hadolint/wiki/DL3006",
		DefaultSeverity:  rules.SeverityWarning,
		Category:         rules.Category("DL3006"),
		EnabledByDefault: true,
	}
}

// stageState tracks the stage aliases declared so far, so later FROM lines
// referencing a previous stage are not mistaken for registry images.
type stageState struct {
	aliases map[string]bool
	count   int
}

func newStageState() *stageState {
	return &stageState{aliases: make(map[string]bool)}
}

// note records a FROM instruction and reports whether its base refers to a
// previously declared stage (by alias or numeric index).
func (s *stageState) note(from *buildfile.From) bool {
	isStage := s.aliases[strings.ToLower(from.BaseRaw)]
	if !isStage {
		if idx, err := strconv.Atoi(from.BaseRaw); err == nil && idx < s.count {
			isStage = true
		}
	}
	s.count++
	if from.Alias != "" {
		s.aliases[strings.ToLower(from.Alias)] = true
	}
	return isStage
}

func (r *UntaggedImage) NewState() any { return newStageState() }

func (r *UntaggedImage) Check(state any, inst buildfile.PositionedInstruction) []rules.Failure {
	from, ok := inst.Inst.(*buildfile.From)
	if !ok {
		return nil
	}
	if state.(*stageState).note(from) {
		return nil
	}
	if from.Image == "scratch" || from.Tag != "" || from.Digest != "" {
		return nil
	}
	if strings.Contains(from.BaseRaw, "$") {
		return nil // ARG-based reference, can't judge lexically
	}

	named, err := reference.ParseNormalizedNamed(from.Image)
	if err != nil || !reference.IsNameOnly(named) {
		return nil
	}

	return []rules.Failure{rules.NewFailure(
		"", inst.Line,
		"DL3006",
		fmt.Sprintf("always tag the version of image %q explicitly", from.Image),
		rules.SeverityWarning,
	)}
}

func (r *UntaggedImage) Finalize(any) []rules.Failure { return nil }

func init() {
	rules.Register(&UntaggedImage{})
}
