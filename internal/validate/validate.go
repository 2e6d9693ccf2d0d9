// Package validate is the pre-parse gate. It turns raw input into a
// sanitized UTF-8 string or rejects it before the parser ever sees it:
// oversized input, stacked-statement injection patterns, and structurally
// unbalanced quotes or parentheses all fail here with an InputError.
package validate

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"sql2ts/internal/core"
)

// Limits are the configurable ceilings the gate enforces.
type Limits struct {
	// MaxInputBytes caps the raw input size. Zero disables the check.
	MaxInputBytes int
	// MaxTables caps the number of CREATE TABLE statements counted in the
	// text. Zero disables the check.
	MaxTables int
}

// DefaultLimits returns the gate defaults: 1 MiB of SQL and 100 tables.
func DefaultLimits() Limits {
	return Limits{
		MaxInputBytes: 1 << 20,
		MaxTables:     100,
	}
}

var (
	createTableCountRe = regexp.MustCompile(`(?i)\bCREATE\s+TABLE\b`)

	// stackedStatementRe catches a destructive statement chained after a
	// semicolon, the classic injection shape for schema uploads.
	stackedStatementRe = regexp.MustCompile(
		`(?i);\s*(?:DROP|DELETE|TRUNCATE|UPDATE|INSERT|GRANT|REVOKE|ALTER)\b`)
)

// Sanitize validates raw bytes and returns the input as a string.
func Sanitize(input []byte, limits Limits) (string, error) {
	if !utf8.Valid(input) {
		return "", &core.InputError{Msg: "input is not valid UTF-8"}
	}
	return SanitizeString(string(input), limits)
}

// SanitizeString validates SQL text against the gate's rules.
func SanitizeString(sql string, limits Limits) (string, error) {
	if strings.TrimSpace(sql) == "" {
		return "", &core.InputError{Msg: "input is empty"}
	}
	if limits.MaxInputBytes > 0 && len(sql) > limits.MaxInputBytes {
		return "", &core.InputError{
			Msg: fmt.Sprintf("input of %d bytes exceeds the %d byte limit", len(sql), limits.MaxInputBytes),
		}
	}
	if limits.MaxTables > 0 {
		if n := len(createTableCountRe.FindAllStringIndex(sql, -1)); n > limits.MaxTables {
			return "", &core.InputError{
				Msg: fmt.Sprintf("%d CREATE TABLE statements exceed the limit of %d", n, limits.MaxTables),
			}
		}
	}
	if m := stackedStatementRe.FindString(sql); m != "" {
		return "", &core.InputError{
			Msg: fmt.Sprintf("stacked statement detected: %q", strings.TrimSpace(m)),
		}
	}
	if err := checkBalance(sql); err != nil {
		return "", err
	}
	return sql, nil
}

// checkBalance walks the text tracking quote state and paren depth; input
// that ends inside a quote or with open parentheses is rejected.
func checkBalance(sql string) error {
	depth := 0
	var quote byte
	var prev byte
	for i := 0; i < len(sql); i++ {
		c := sql[i]
		escaped := prev == '\\'
		if quote != 0 {
			if c == quote && !escaped {
				quote = 0
			}
			prev = c
			continue
		}
		switch c {
		case '\'', '"', '`':
			if !escaped {
				quote = c
			}
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return &core.InputError{Msg: "unbalanced parentheses: unexpected ')'"}
			}
		}
		prev = c
	}
	if quote != 0 {
		return &core.InputError{Msg: fmt.Sprintf("unterminated %q quote", string(quote))}
	}
	if depth != 0 {
		return &core.InputError{Msg: fmt.Sprintf("unbalanced parentheses: %d unclosed", depth)}
	}
	return nil
}
