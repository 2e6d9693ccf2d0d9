// Package parser extracts CREATE TABLE statements from raw SQL text and
// decomposes them into the core schema model. It deliberately avoids a full
// SQL grammar: statements are located with anchoring patterns and their
// contents are walked with small delimiter-aware scanners that track quote
// state and parenthesis depth.
package parser

import (
	"regexp"
	"strings"

	"sql2ts/internal/core"
)

// RawTable is one CREATE TABLE statement lifted out of the input text
// before any field parsing happens.
type RawTable struct {
	// Name is the de-quoted table name.
	Name string
	// FieldsText is the text between the statement's outer parentheses.
	FieldsText string
	// Line is the 1-based line on which the table name occurs.
	Line int
	// Match is the statement text from CREATE through the closing paren.
	Match string
}

// createTableRe anchors a CREATE TABLE statement up to and including its
// opening parenthesis. The field list itself is captured by balancing
// parentheses from there; a non-greedy regex would truncate at the first
// ')' inside DECIMAL(10,2) or ENUM(...).
var createTableRe = regexp.MustCompile(
	"(?is)CREATE\\s+TABLE\\s+(?:IF\\s+NOT\\s+EXISTS\\s+)?" +
		"(?:`([^`]+)`|\"([^\"]+)\"|([A-Za-z_][\\w$]*))\\s*\\(")

// ParseStatements scans sql for CREATE TABLE statements and returns one
// RawTable per statement. Trailing dialect options after the closing
// parenthesis (ENGINE=, DEFAULT CHARSET=, WITHOUT ROWID, ...) are ignored.
func ParseStatements(sql string) ([]RawTable, error) {
	if strings.TrimSpace(sql) == "" {
		return nil, &core.ParseError{Msg: "SQL input is empty"}
	}

	matches := createTableRe.FindAllStringSubmatchIndex(sql, -1)
	if len(matches) == 0 {
		return nil, &core.ParseError{Msg: "no CREATE TABLE statements found"}
	}

	tables := make([]RawTable, 0, len(matches))
	for _, m := range matches {
		name, nameStart := captureName(sql, m)
		open := m[1] - 1 // m ends right after '('

		body, closeIdx, ok := balanceParens(sql, open)
		if !ok {
			return nil, &core.ParseError{
				Msg:   "unbalanced parentheses in field list",
				Table: name,
				Line:  lineAt(sql, nameStart),
			}
		}

		tables = append(tables, RawTable{
			Name:       name,
			FieldsText: body,
			Line:       lineAt(sql, nameStart),
			Match:      sql[m[0] : closeIdx+1],
		})
	}

	return tables, nil
}

// HasCreateTableStatements reports whether sql contains at least one
// CREATE TABLE statement. It never returns an error.
func HasCreateTableStatements(sql string) bool {
	if strings.TrimSpace(sql) == "" {
		return false
	}
	return createTableRe.MatchString(sql)
}

// captureName picks the first non-empty name capture group (backtick,
// double-quoted, or bare) from a createTableRe match.
func captureName(sql string, m []int) (string, int) {
	for g := 1; g <= 3; g++ {
		start, end := m[2*g], m[2*g+1]
		if start >= 0 {
			return sql[start:end], start
		}
	}
	return "", m[0]
}

// balanceParens returns the text between the paren at open and its
// balancing close, walking quote state so parens inside string literals
// do not count.
func balanceParens(sql string, open int) (body string, closeIdx int, ok bool) {
	var sc scanner
	sc.step('(')
	for i := open + 1; i < len(sql); i++ {
		sc.step(sql[i])
		if sc.depth == 0 && !sc.inQuotes() {
			return sql[open+1 : i], i, true
		}
	}
	return "", -1, false
}

// lineAt returns the 1-based line number of byte offset pos.
func lineAt(sql string, pos int) int {
	if pos > len(sql) {
		pos = len(sql)
	}
	return 1 + strings.Count(sql[:pos], "\n")
}
