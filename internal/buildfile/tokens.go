package buildfile

import (
	"fmt"
	"io"
	"strings"
)

func readAll(r io.Reader) ([]byte, error) {
	return io.ReadAll(r)
}

// splitTokens splits a logical line on whitespace while keeping quoted
// sections together. Quotes are stripped from the resulting tokens.
func splitTokens(s string) []string {
	var tokens []string
	var cur strings.Builder
	inToken := false
	var quote byte

	flush := func() {
		if inToken {
			tokens = append(tokens, cur.String())
			cur.Reset()
			inToken = false
		}
	}

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			} else if c == '\\' && quote == '"' && i+1 < len(s) {
				i++
				cur.WriteByte(s[i])
			} else {
				cur.WriteByte(c)
			}
		case c == '"' || c == '\'':
			quote = c
			inToken = true
		case c == ' ' || c == '\t':
			flush()
		default:
			cur.WriteByte(c)
			inToken = true
		}
	}
	flush()
	return tokens
}

// scanKeyValues parses ENV/LABEL arguments. The modern form is a list of
// KEY=value pairs with optional quoting; the legacy form ("ENV key some
// value") has no '=' in the first token and yields a single pair whose
// value is the remainder of the line.
func scanKeyValues(s string) ([]KeyValue, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	first, remainder, _ := strings.Cut(s, " ")
	if !strings.Contains(first, "=") {
		return []KeyValue{{Key: first, Value: strings.TrimSpace(remainder)}}, nil
	}

	var pairs []KeyValue
	i := 0
	for i < len(s) {
		for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
			i++
		}
		if i >= len(s) {
			break
		}

		start := i
		for i < len(s) && s[i] != '=' && s[i] != ' ' && s[i] != '\t' {
			i++
		}
		if i >= len(s) || s[i] != '=' {
			return nil, fmt.Errorf("expected key=value pair, got %q", s[start:i])
		}
		key := s[start:i]
		if len(key) >= 2 && (key[0] == '"' || key[0] == '\'') && key[len(key)-1] == key[0] {
			key = key[1 : len(key)-1]
		}
		if key == "" {
			return nil, fmt.Errorf("empty key in key=value pair")
		}
		i++ // consume '='

		var value strings.Builder
		var quote byte
		for i < len(s) {
			c := s[i]
			if quote != 0 {
				if c == quote {
					quote = 0
				} else if c == '\\' && quote == '"' && i+1 < len(s) {
					i++
					value.WriteByte(s[i])
				} else {
					value.WriteByte(c)
				}
				i++
				continue
			}
			if c == '"' || c == '\'' {
				quote = c
				i++
				continue
			}
			if c == ' ' || c == '\t' {
				break
			}
			if c == '\\' && i+1 < len(s) && s[i+1] == ' ' {
				value.WriteByte(' ')
				i += 2
				continue
			}
			value.WriteByte(c)
			i++
		}
		if quote != 0 {
			return nil, fmt.Errorf("unterminated quote in value for key %q", key)
		}
		pairs = append(pairs, KeyValue{Key: key, Value: value.String()})
	}

	return pairs, nil
}
