package dl

import (
	"fmt"
	"regexp"
	"strings"

	imagespec "github.com/opencontainers/image-spec/specs-go/v1"

	"github.com/shiplint/shiplint/internal/buildfile"
	"github.com/shiplint/shiplint/internal/rules"
	"github.com/shiplint/shiplint/internal/rules/configutil"
)

// LabelKeys implements DL3048: label keys should be valid reverse-DNS style
// identifiers, and keys under the org.opencontainers.image namespace must
// be annotation keys the image spec actually defines.
type LabelKeys struct {
	config LabelKeysConfig
}

// LabelKeysConfig is the rule's option surface.
type LabelKeysConfig struct {
	// Allow lists additional key prefixes accepted verbatim.
	Allow []string `koanf:"allow"`
}

func (r *LabelKeys) Metadata() rules.RuleMetadata {
	return rules.RuleMetadata{
		Code:             "DL3048",
		Name:             "Invalid label key",
		Description:      "Label keys should be lowercase reverse-DNS identifiers; reserved namespaces only accept their defined keys.",
		DocURL:           "https://github.com/hadolint/hadolint/wiki/DL3048",
		DefaultSeverity:  rules.SeverityStyle,
		Category:         rules.Category("DL3048"),
		EnabledByDefault: true,
	}
}

// Configure binds the allow-list options to a copy of the rule.
func (r *LabelKeys) Configure(opts map[string]any) rules.Rule {
	return &LabelKeys{config: configutil.Resolve(opts, r.config)}
}

// ociAnnotations are the keys defined by the image spec's pre-defined
// annotation set; anything else under its namespace is a typo.
var ociAnnotations = map[string]bool{
	imagespec.AnnotationCreated:       true,
	imagespec.AnnotationAuthors:       true,
	imagespec.AnnotationURL:           true,
	imagespec.AnnotationDocumentation: true,
	imagespec.AnnotationSource:        true,
	imagespec.AnnotationVersion:       true,
	imagespec.AnnotationRevision:      true,
	imagespec.AnnotationVendor:        true,
	imagespec.AnnotationLicenses:      true,
	imagespec.AnnotationRefName:       true,
	imagespec.AnnotationTitle:         true,
	imagespec.AnnotationDescription:   true,
	imagespec.AnnotationBaseImageDigest: true,
	imagespec.AnnotationBaseImageName:   true,
}

const ociNamespace = "org.opencontainers.image."

var validLabelKey = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]*$`)

func (r *LabelKeys) NewState() any { return nil }

func (r *LabelKeys) Check(_ any, inst buildfile.PositionedInstruction) []rules.Failure {
	label, ok := inst.Inst.(*buildfile.Label)
	if !ok {
		return nil
	}

	var failures []rules.Failure
	for _, pair := range label.Pairs {
		if r.allowed(pair.Key) || strings.Contains(pair.Key, "$") {
			continue
		}
		switch {
		case strings.HasPrefix(pair.Key, ociNamespace) && !ociAnnotations[pair.Key]:
			failures = append(failures, rules.NewFailure(
				"", inst.Line,
				"DL3048",
				fmt.Sprintf("label key %q is not a pre-defined %s annotation", pair.Key, strings.TrimSuffix(ociNamespace, ".")),
				rules.SeverityStyle,
			))
		case !validLabelKey.MatchString(pair.Key):
			failures = append(failures, rules.NewFailure(
				"", inst.Line,
				"DL3048",
				fmt.Sprintf("invalid label key %q", pair.Key),
				rules.SeverityStyle,
			))
		}
	}
	return failures
}

func (r *LabelKeys) allowed(key string) bool {
	for _, prefix := range r.config.Allow {
		if strings.HasPrefix(key, prefix) {
			return true
		}
	}
	return false
}

func (r *LabelKeys) Finalize(any) []rules.Failure { return nil }

func init() {
	rules.Register(&LabelKeys{})
}
