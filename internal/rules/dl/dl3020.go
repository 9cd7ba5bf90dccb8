package dl

import (
	"fmt"
	"strings"

	"github.com/shiplint/shiplint/internal/buildfile"
	"github.com/shiplint/shiplint/internal/rules"
)

// UseCopy implements DL3020: use COPY instead of ADD for plain files and
// directories. ADD stays legitimate for URLs and local archive unpacking.
type UseCopy struct{}

func (r *UseCopy) Metadata() rules.RuleMetadata {
	return rules.RuleMetadata{
		Code:             "DL3020",
		Name:             "Use COPY instead of ADD",
		Description:      "ADD implicitly unpacks archives and fetches URLs; for plain files COPY is explicit and safer.",
		DocURL:           "https://github.com/hadolint/hadolint/wiki/DL3020",
		DefaultSeverity:  rules.SeverityError,
		Category:         rules.Category("DL3020"),
		EnabledByDefault: true,
	}
}

var archiveSuffixes = []string{
	".tar", ".tar.gz", ".tgz", ".tar.bz2", ".tbz2", ".tar.xz", ".txz",
	".gz", ".bz2", ".xz", ".zip", ".zst",
}

func (r *UseCopy) NewState() any { return nil }

func (r *UseCopy) Check(_ any, inst buildfile.PositionedInstruction) []rules.Failure {
	add, ok := inst.Inst.(*buildfile.Add)
	if !ok {
		return nil
	}

	for _, src := range add.Sources {
		if isURL(src) || isArchive(src) || strings.Contains(src, "$") {
			return nil
		}
	}

	return []rules.Failure{rules.NewFailure(
		"", inst.Line,
		"DL3020",
		fmt.Sprintf("use COPY instead of ADD for %s", strings.Join(add.Sources, ", ")),
		rules.SeverityError,
	).WithFixable()}
}

func (r *UseCopy) Finalize(any) []rules.Failure { return nil }

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") ||
		strings.HasPrefix(s, "git://") || strings.HasPrefix(s, "git@")
}

func isArchive(s string) bool {
	lower := strings.ToLower(s)
	for _, suffix := range archiveSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}

func init() {
	rules.Register(&UseCopy{})
}
