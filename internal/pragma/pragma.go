// Package pragma resolves inline comment directives that suppress rule
// codes for a line or a whole file.
//
// Syntax, keyed on the tool name:
//
//	# shiplint ignore=DL3006,DL3007     (own line → next non-comment line,
//	                                     trailing → that line)
//	# shiplint ignore-file=DL3006       (whole file)
//	# shiplint disable                  (suppress the entire file)
package pragma

import (
	"strings"
)

// Marker is the keyword that introduces a suppression directive.
const Marker = "shiplint"

// State is the resolved suppression lookup for one logical document.
type State struct {
	// FileDisabled suppresses every failure for the document.
	FileDisabled bool
	// FileIgnores are codes suppressed on every line.
	FileIgnores map[string]bool
	// LineIgnores maps line numbers to the codes suppressed there.
	LineIgnores map[int]map[string]bool
}

// NewState returns an empty state that suppresses nothing.
func NewState() *State {
	return &State{
		FileIgnores: make(map[string]bool),
		LineIgnores: make(map[int]map[string]bool),
	}
}

// Suppressed reports whether a failure with the given code at the given
// line is suppressed by this state.
func (s *State) Suppressed(code string, line int) bool {
	if s.FileDisabled {
		return true
	}
	if s.FileIgnores[code] {
		return true
	}
	return s.LineIgnores[line][code]
}

// Merge unions other into s. Used when several source files contribute to
// one logical document: a disable found in any contributing file disables
// analysis for the whole document.
func (s *State) Merge(other *State) {
	if other == nil {
		return
	}
	s.FileDisabled = s.FileDisabled || other.FileDisabled
	for code := range other.FileIgnores {
		s.FileIgnores[code] = true
	}
	for line, codes := range other.LineIgnores {
		for code := range codes {
			s.addLine(line, code)
		}
	}
}

func (s *State) addLine(line int, code string) {
	if s.LineIgnores[line] == nil {
		s.LineIgnores[line] = make(map[string]bool)
	}
	s.LineIgnores[line][code] = true
}

// Scan extracts suppression directives from raw document text. It works on
// the comment layer directly so one code path serves every document format.
//
// An own-line pragma applies to the next non-comment, non-blank line; a
// trailing pragma applies to its own line.
func Scan(content []byte) *State {
	state := NewState()
	lines := strings.Split(string(content), "\n")

	pending := make(map[string]bool) // codes from own-line pragmas awaiting a target

	for i, raw := range lines {
		lineNo := i + 1
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			continue
		}

		if strings.HasPrefix(trimmed, "#") {
			applyDirective(state, strings.TrimPrefix(trimmed, "#"), pending, 0)
			continue
		}

		// Trailing comment on a content line.
		if _, comment, ok := strings.Cut(raw, " #"); ok {
			applyDirective(state, comment, nil, lineNo)
		}

		for code := range pending {
			state.addLine(lineNo, code)
			delete(pending, code)
		}
	}

	return state
}

// applyDirective parses one comment body. For own-line pragmas (line == 0)
// the ignore codes go into pending; trailing pragmas bind to line directly.
func applyDirective(state *State, comment string, pending map[string]bool, line int) {
	fields := strings.Fields(comment)
	if len(fields) < 2 || fields[0] != Marker {
		return
	}

	for _, clause := range fields[1:] {
		switch {
		case clause == "disable":
			state.FileDisabled = true
		case strings.HasPrefix(clause, "ignore-file="):
			for _, code := range splitCodes(strings.TrimPrefix(clause, "ignore-file=")) {
				state.FileIgnores[code] = true
			}
		case strings.HasPrefix(clause, "ignore="):
			for _, code := range splitCodes(strings.TrimPrefix(clause, "ignore=")) {
				if line > 0 {
					state.addLine(line, code)
				} else if pending != nil {
					pending[code] = true
				}
			}
		}
	}
}

func splitCodes(s string) []string {
	var codes []string
	for _, code := range strings.Split(s, ",") {
		if code = strings.TrimSpace(code); code != "" {
			codes = append(codes, code)
		}
	}
	return codes
}
