package parser

import "strings"

// quoteState tracks which quote context the scanner is currently inside.
type quoteState int

const (
	stateNormal quoteState = iota
	stateSingleQuote
	stateDoubleQuote
	stateBacktick
)

// scanner walks SQL text one byte at a time, tracking quote context and
// parenthesis depth so callers can recognize top-level delimiters. A quote
// character toggles its own state only when the scanner is not inside a
// different quote and the previous character is not an escaping backslash.
// Parenthesis depth changes only outside quotes.
type scanner struct {
	state quoteState
	depth int
	prev  byte
}

func (s *scanner) step(c byte) {
	escaped := s.prev == '\\'
	switch s.state {
	case stateNormal:
		switch c {
		case '\'':
			if !escaped {
				s.state = stateSingleQuote
			}
		case '"':
			if !escaped {
				s.state = stateDoubleQuote
			}
		case '`':
			if !escaped {
				s.state = stateBacktick
			}
		case '(':
			s.depth++
		case ')':
			if s.depth > 0 {
				s.depth--
			}
		}
	case stateSingleQuote:
		if c == '\'' && !escaped {
			s.state = stateNormal
		}
	case stateDoubleQuote:
		if c == '"' && !escaped {
			s.state = stateNormal
		}
	case stateBacktick:
		if c == '`' && !escaped {
			s.state = stateNormal
		}
	}
	s.prev = c
}

// topLevel reports whether the scanner sits outside all quotes and
// parentheses, i.e. where a comma separates field definitions.
func (s *scanner) topLevel() bool {
	return s.state == stateNormal && s.depth == 0
}

// inQuotes reports whether the scanner is inside any quoted region.
func (s *scanner) inQuotes() bool {
	return s.state != stateNormal
}

// dequote strips one level of surrounding backticks, double quotes, or
// single quotes from an identifier.
func dequote(name string) string {
	name = strings.TrimSpace(name)
	if len(name) < 2 {
		return name
	}
	first, last := name[0], name[len(name)-1]
	if first == last && (first == '`' || first == '"' || first == '\'') {
		return name[1 : len(name)-1]
	}
	return name
}

// splitIdentifierList splits a comma-separated column list, trimming and
// de-quoting each entry and dropping empties.
func splitIdentifierList(list string) []string {
	parts := strings.Split(list, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = dequote(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
