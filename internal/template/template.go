// Package template tokenizes template files into positioned text, action,
// and comment tokens, with variable, function, and template-name extraction
// as a side channel.
//
// Parsing is best-effort: malformed input is reported through
// ParsedTemplate.Errors while the tokens captured up to that point are still
// returned. Templates are commonly embedded in much larger documents, so one
// broken block must not blind analysis of the rest.
package template

import (
	"fmt"
	"sort"
	"strings"
)

// TokenKind distinguishes the three token variants.
type TokenKind int

const (
	TokenText TokenKind = iota
	TokenAction
	TokenComment
)

func (k TokenKind) String() string {
	switch k {
	case TokenText:
		return "text"
	case TokenAction:
		return "action"
	case TokenComment:
		return "comment"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Token is one positioned token of a template file.
type Token struct {
	Kind TokenKind
	// Content is the literal text, the trimmed action expression, or the
	// comment body depending on Kind.
	Content string
	// Line is the 1-based line where the token starts.
	Line int
	// TrimLeft and TrimRight record the "{{-" / "-}}" whitespace trim
	// markers (actions and comments only).
	TrimLeft  bool
	TrimRight bool
}

// ParseError is one problem found while tokenizing.
type ParseError struct {
	Line    int
	Message string
}

func (e ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// ParsedTemplate is the result of tokenizing one template file. All fields
// are owned by the parse result and never mutated afterwards.
//
// Variables and Functions are heuristic extractions: variables are dotted
// paths found anywhere in action text (including inside string literals) and
// functions are words matching a fixed catalogue. Callers must not assume
// exhaustiveness or upgrade the precision; rule behavior depends on matching
// the same false positives and negatives as the reference tool.
type ParsedTemplate struct {
	// Name identifies the file; used for error attribution only.
	Name string
	// Tokens is the ordered token sequence.
	Tokens []Token
	// Errors are the problems found; the token stream is still usable.
	Errors []ParseError
	// Variables are the dotted paths referenced in actions, sorted, unique.
	Variables []string
	// Functions are the known function names called in actions, sorted,
	// unique.
	Functions []string
	// DefinedTemplates are names defined by define/block actions.
	DefinedTemplates []string
	// ReferencedTemplates are names referenced by template actions.
	ReferencedTemplates []string
}

// openBlock tracks one unresolved control structure on the block stack.
type openBlock struct {
	keyword string
	line    int
}

// Parse tokenizes template text. It never fails outright; see the package
// comment for the best-effort contract.
func Parse(name, content string) *ParsedTemplate {
	t := &ParsedTemplate{Name: name}

	var stack []openBlock
	line := 1
	rest := content

	for len(rest) > 0 {
		open := strings.Index(rest, "{{")
		if open < 0 {
			t.flushText(rest, line)
			break
		}
		if open > 0 {
			t.flushText(rest[:open], line)
			line += strings.Count(rest[:open], "\n")
			rest = rest[open:]
		}

		tokenLine := line
		body := rest[2:]
		trimLeft := false
		if strings.HasPrefix(body, "-") && len(body) > 1 && isSpace(body[1]) {
			trimLeft = true
			body = body[1:]
		}

		if strings.HasPrefix(strings.TrimLeft(body, " \t"), "/*") {
			consumed, ok := t.scanComment(body, tokenLine, trimLeft)
			if !ok {
				return t.finish(stack)
			}
			line += strings.Count(rest[:len(rest)-len(consumed)], "\n")
			rest = consumed
			continue
		}

		end, trimRight := findClose(body)
		if end < 0 {
			t.Errors = append(t.Errors, ParseError{
				Line:    tokenLine,
				Message: "action opened but never closed",
			})
			return t.finish(stack)
		}

		action := body[:end]
		if trimRight {
			// the "-" marker sits inside body[:end]; drop it
			action = strings.TrimSuffix(strings.TrimRight(action, " \t"), "-")
		}
		content := strings.TrimSpace(action)

		t.Tokens = append(t.Tokens, Token{
			Kind:      TokenAction,
			Content:   content,
			Line:      tokenLine,
			TrimLeft:  trimLeft,
			TrimRight: trimRight,
		})

		stack = t.classify(content, tokenLine, stack)
		t.extractVariables(content)
		t.extractFunctions(content)

		consumedLen := len(rest) - len(body) + end + 2
		line += strings.Count(rest[:consumedLen], "\n")
		rest = rest[consumedLen:]
	}

	return t.finish(stack)
}

// flushText appends pending literal text as a Text token.
func (t *ParsedTemplate) flushText(text string, line int) {
	if text == "" {
		return
	}
	t.Tokens = append(t.Tokens, Token{Kind: TokenText, Content: text, Line: line})
}

// scanComment consumes a "{{/* ... */}}" comment starting at body (the text
// after the open delimiter and optional trim marker). It returns the
// remaining input and false when the comment is unterminated.
func (t *ParsedTemplate) scanComment(body string, line int, trimLeft bool) (string, bool) {
	inner := strings.TrimLeft(body, " \t")
	inner = inner[2:] // consume "/*"

	end := strings.Index(inner, "*/")
	if end < 0 {
		t.Errors = append(t.Errors, ParseError{Line: line, Message: "comment opened but never closed"})
		return "", false
	}
	content := inner[:end]
	after := inner[end+2:]

	trimRight := false
	rest := strings.TrimLeft(after, " \t")
	if strings.HasPrefix(rest, "-}}") {
		trimRight = true
		rest = rest[3:]
	} else if strings.HasPrefix(rest, "}}") {
		rest = rest[2:]
	} else {
		t.Errors = append(t.Errors, ParseError{Line: line, Message: "comment opened but never closed"})
		return "", false
	}

	t.Tokens = append(t.Tokens, Token{
		Kind:      TokenComment,
		Content:   content,
		Line:      line,
		TrimLeft:  trimLeft,
		TrimRight: trimRight,
	})
	return rest, true
}

// findClose locates the matching close delimiter in body and reports whether
// a trim-right marker precedes it.
func findClose(body string) (end int, trimRight bool) {
	end = strings.Index(body, "}}")
	if end < 0 {
		return -1, false
	}
	if end >= 1 && body[end-1] == '-' && (end == 1 || isSpace(body[end-2])) {
		return end, true
	}
	return end, false
}

// classify pushes and pops the block stack for control-structure keywords
// and records defined/referenced template names.
func (t *ParsedTemplate) classify(action string, line int, stack []openBlock) []openBlock {
	fields := strings.Fields(action)
	if len(fields) == 0 {
		return stack
	}

	switch fields[0] {
	case "if", "range", "with":
		return append(stack, openBlock{keyword: fields[0], line: line})
	case "define", "block":
		if len(fields) > 1 {
			if name, ok := unquote(fields[1]); ok {
				t.DefinedTemplates = appendUnique(t.DefinedTemplates, name)
			}
		}
		return append(stack, openBlock{keyword: fields[0], line: line})
	case "template":
		if len(fields) > 1 {
			if name, ok := unquote(fields[1]); ok {
				t.ReferencedTemplates = appendUnique(t.ReferencedTemplates, name)
			}
		}
		return stack
	case "else":
		// "else" and "else if" stay within the enclosing block
		if len(stack) == 0 {
			t.Errors = append(t.Errors, ParseError{Line: line, Message: "unexpected {{else}} outside a block"})
		}
		return stack
	case "end":
		if len(stack) == 0 {
			t.Errors = append(t.Errors, ParseError{Line: line, Message: "unexpected {{end}} with no open block"})
			return stack
		}
		return stack[:len(stack)-1]
	default:
		return stack
	}
}

// finish reports unclosed blocks, one error per stack entry carrying the
// line where the block was opened, then seals the derived sets.
func (t *ParsedTemplate) finish(stack []openBlock) *ParsedTemplate {
	for _, b := range stack {
		t.Errors = append(t.Errors, ParseError{
			Line:    b.line,
			Message: fmt.Sprintf("unclosed {{%s}} block", b.keyword),
		})
	}
	sort.Strings(t.Variables)
	sort.Strings(t.Functions)
	return t
}

func (t *ParsedTemplate) extractVariables(action string) {
	for _, v := range VariablesIn(action) {
		t.Variables = appendUnique(t.Variables, v)
	}
}

// VariablesIn scans action text for paths beginning with a '.' and
// continuing through alphanumeric/underscore/'.' runs. This is a documented
// approximation, not an expression parse: a path inside a string literal is
// reported like a real reference.
func VariablesIn(action string) []string {
	var vars []string
	for i := 0; i < len(action); i++ {
		if action[i] != '.' {
			continue
		}
		if i > 0 && (isPathChar(action[i-1]) || action[i-1] == '.') {
			continue
		}
		j := i + 1
		for j < len(action) && (isPathChar(action[j]) || action[j] == '.') {
			j++
		}
		if j == i+1 {
			continue // bare "." (the current context)
		}
		vars = append(vars, action[i:j])
		i = j - 1
	}
	return vars
}

// extractFunctions matches action words against the known-function
// catalogue. Membership test only; no call-site parsing.
func (t *ParsedTemplate) extractFunctions(action string) {
	word := strings.FieldsFunc(action, func(r rune) bool {
		return !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9')
	})
	for _, w := range word {
		if IsKnownFunction(w) {
			t.Functions = appendUnique(t.Functions, w)
		}
	}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isPathChar(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

func unquote(s string) (string, bool) {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1], true
	}
	return "", false
}

func appendUnique(list []string, s string) []string {
	for _, existing := range list {
		if existing == s {
			return list
		}
	}
	return append(list, s)
}
