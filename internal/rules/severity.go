package rules

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Severity is the importance of a rule failure.
//
// The numeric encoding follows the reference order (Error < Warning < Info <
// Style < Ignore), so the mandated ascending (file, line, severity) sort puts
// errors first within a line and threshold checks are integer compares.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
	SeverityStyle
	SeverityIgnore
)

// AtLeast reports whether s meets or exceeds the given threshold.
// Error exceeds Warning exceeds Info exceeds Style exceeds Ignore.
func (s Severity) AtLeast(threshold Severity) bool {
	return s <= threshold
}

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	case SeverityStyle:
		return "style"
	case SeverityIgnore:
		return "ignore"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// ParseSeverity converts a configuration level string to a Severity.
// It accepts the common aliases used by lint configs ("off", "warn").
func ParseSeverity(level string) (Severity, bool) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "error", "err":
		return SeverityError, true
	case "warning", "warn":
		return SeverityWarning, true
	case "info":
		return SeverityInfo, true
	case "style":
		return SeverityStyle, true
	case "ignore", "off", "none":
		return SeverityIgnore, true
	default:
		return SeverityIgnore, false
	}
}

// MarshalJSON encodes the severity as its string name.
func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a severity from its string name.
func (s *Severity) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, ok := ParseSeverity(name)
	if !ok {
		return fmt.Errorf("unknown severity %q", name)
	}
	*s = parsed
	return nil
}
