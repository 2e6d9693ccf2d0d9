package parser

import (
	"fmt"
	"regexp"
	"strings"

	"sql2ts/internal/core"
)

// tableConstraintRe classifies a split definition as a table-level clause
// by its leading keyword.
var tableConstraintRe = regexp.MustCompile(
	`(?i)^\s*(?:PRIMARY\s+KEY|FOREIGN\s+KEY|UNIQUE|INDEX|KEY|CONSTRAINT|CHECK)\b`)

// fieldDefRe decomposes a single definition into name, type, and the
// remaining constraint text. The type group greedily takes the base word,
// an optional second word for compound types (DOUBLE PRECISION, CHARACTER
// VARYING), optional size arguments, an array suffix, and trailing
// UNSIGNED/SIGNED/ZEROFILL modifiers.
var fieldDefRe = regexp.MustCompile(
	"(?is)^\\s*(?:`([^`]+)`|\"([^\"]+)\"|([A-Za-z_][\\w$]*))" +
		"\\s+([A-Za-z]\\w*(?:\\s+(?:PRECISION|VARYING))?(?:\\s*\\([^)]*\\))?(?:\\[\\])?" +
		"(?:\\s+(?:UNSIGNED|SIGNED|ZEROFILL))*)" +
		"(?:\\s+(.*))?\\s*$")

var (
	notNullRe       = regexp.MustCompile(`(?i)\bNOT\s+NULL\b`)
	primaryKeyRe    = regexp.MustCompile(`(?i)\bPRIMARY\s+KEY\b`)
	uniqueRe        = regexp.MustCompile(`(?i)\bUNIQUE\b`)
	autoIncrementRe = regexp.MustCompile(`(?i)\bAUTO_?INCREMENT\b`)
	referencesRe    = regexp.MustCompile(
		"(?i)\\bREFERENCES\\s+(?:`([^`]+)`|\"([^\"]+)\"|([A-Za-z_][\\w$]*))\\s*\\(([^)]*)\\)")
	checkRe   = regexp.MustCompile(`(?i)\bCHECK\s*\(`)
	commentRe = regexp.MustCompile(
		`(?i)\bCOMMENT\s+(?:'((?:[^'\\]|\\.)*)'|"((?:[^"\\]|\\.)*)")`)
	defaultKwRe = regexp.MustCompile(`(?i)\bDEFAULT\b`)

	// defaultStopRe matches the keywords that end a DEFAULT value when they
	// occur at the top level (outside quotes and parentheses).
	defaultStopRe = regexp.MustCompile(
		`(?i)^(?:COMMENT\b|NOT\s+NULL\b|NULL\b|PRIMARY\s+KEY\b|UNIQUE\b|AUTO_?INCREMENT\b)`)
)

// ParseFields splits a field-list substring into definitions at top-level
// commas and parses each one. Table-level constraint clauses are skipped
// silently; empty segments from stray commas are ignored.
func ParseFields(fieldsText string) ([]*core.Field, error) {
	defs := splitDefinitions(fieldsText)
	fields := make([]*core.Field, 0, len(defs))
	for i, def := range defs {
		if tableConstraintRe.MatchString(def) {
			continue
		}
		f, err := ParseField(def)
		if err != nil {
			return nil, fmt.Errorf("parser: field definition %d: %w", i+1, err)
		}
		fields = append(fields, f)
	}
	return fields, nil
}

// splitDefinitions cuts fieldsText at commas that sit outside quotes and
// parentheses. Blank segments are dropped.
func splitDefinitions(fieldsText string) []string {
	var defs []string
	var sc scanner
	start := 0
	for i := 0; i < len(fieldsText); i++ {
		c := fieldsText[i]
		if c == ',' && sc.topLevel() {
			if def := strings.TrimSpace(fieldsText[start:i]); def != "" {
				defs = append(defs, def)
			}
			start = i + 1
			sc.prev = c
			continue
		}
		sc.step(c)
	}
	if def := strings.TrimSpace(fieldsText[start:]); def != "" {
		defs = append(defs, def)
	}
	return defs
}

// ParseField parses a single field definition. Calling it with a
// table-level constraint clause is an error; ParseFields filters those out
// before delegating here.
func ParseField(def string) (*core.Field, error) {
	if strings.TrimSpace(def) == "" {
		return nil, &core.ParseError{Msg: "empty field definition"}
	}
	if tableConstraintRe.MatchString(def) {
		return nil, &core.ParseError{Msg: "table-level constraint where field definition expected"}
	}

	m := fieldDefRe.FindStringSubmatch(def)
	if m == nil {
		return nil, &core.ParseError{Msg: fmt.Sprintf("unrecognized field definition %q", strings.TrimSpace(def))}
	}
	name := dequote(firstNonEmpty(m[1], m[2], m[3]))
	typ := strings.TrimSpace(m[4])
	rest := m[5]
	if name == "" || typ == "" {
		return nil, &core.ParseError{Msg: fmt.Sprintf("missing name or type in field definition %q", strings.TrimSpace(def))}
	}

	f := &core.Field{Name: name, Type: typ, Nullable: true}

	// Each attribute is extracted with its own scan over the remainder so
	// any order and any subset of clauses is tolerated.
	if notNullRe.MatchString(rest) {
		f.Nullable = false
	}
	if primaryKeyRe.MatchString(rest) {
		f.Nullable = false
		f.Constraints = append(f.Constraints, core.FieldConstraint{Type: core.FieldPrimaryKey})
	}
	if uniqueRe.MatchString(rest) {
		f.Constraints = append(f.Constraints, core.FieldConstraint{Type: core.FieldUnique})
	}
	if autoIncrementRe.MatchString(rest) {
		f.Constraints = append(f.Constraints, core.FieldConstraint{Type: core.FieldAutoIncrement})
	}
	if rm := referencesRe.FindStringSubmatch(rest); rm != nil {
		table := dequote(firstNonEmpty(rm[1], rm[2], rm[3]))
		cols := strings.TrimSpace(rm[4])
		f.Constraints = append(f.Constraints, core.FieldConstraint{
			Type:  core.FieldForeignKey,
			Value: table + "(" + cols + ")",
		})
	}
	if loc := checkRe.FindStringIndex(rest); loc != nil {
		if pred, _, ok := balanceParens(rest, loc[1]-1); ok {
			f.Constraints = append(f.Constraints, core.FieldConstraint{
				Type:  core.FieldCheck,
				Value: strings.TrimSpace(pred),
			})
		}
	}

	f.DefaultValue = parseDefault(rest)

	if cm := commentRe.FindStringSubmatchIndex(rest); cm != nil {
		var raw string
		if cm[2] >= 0 {
			raw = rest[cm[2]:cm[3]]
		} else {
			raw = rest[cm[4]:cm[5]]
		}
		f.Comment = unescapeQuotes(raw)
	}

	return f, nil
}

// parseDefault extracts the DEFAULT value from the remainder text. A regex
// is not enough here: quoted literals may contain spaces and commas,
// parenthesized expressions like (UUID()) or (RAND() * 100) must stay
// atomic, and a trailing ON UPDATE clause belongs to the value. Scanning
// stops at the next top-level stop keyword, comma, or end of text.
// DEFAULT NULL yields the literal string "NULL".
func parseDefault(rest string) *string {
	var loc []int
	for _, l := range defaultKwRe.FindAllStringIndex(rest, -1) {
		if topLevelAt(rest, l[0]) {
			loc = l
			break
		}
	}
	if loc == nil {
		return nil
	}

	i := loc[1]
	for i < len(rest) && isSpace(rest[i]) {
		i++
	}

	var b strings.Builder
	depth := 0
	var quote byte

scan:
	for i < len(rest) {
		c := rest[i]
		if quote != 0 {
			b.WriteByte(c)
			if c == quote && rest[i-1] != '\\' {
				quote = 0
			}
			i++
			continue
		}
		switch c {
		case '\'', '"':
			quote = c
			b.WriteByte(c)
			i++
		case '(':
			depth++
			b.WriteByte(c)
			i++
		case ')':
			if depth > 0 {
				depth--
			}
			b.WriteByte(c)
			i++
		case ',':
			if depth == 0 {
				break scan
			}
			b.WriteByte(c)
			i++
		default:
			if depth == 0 && atWordBoundary(rest, i) {
				if kw := defaultStopRe.FindString(rest[i:]); kw != "" {
					if strings.EqualFold(kw, "NULL") && strings.TrimSpace(b.String()) == "" {
						b.WriteString(kw)
					}
					break scan
				}
			}
			b.WriteByte(c)
			i++
		}
	}

	val := strings.TrimSpace(b.String())
	if val == "" {
		return nil
	}
	val = stripSimpleQuotes(val)
	return &val
}

// stripSimpleQuotes removes surrounding quotes from simple single-word
// quoted values ('active', "inactive", ''). Compound values keep their
// original punctuation.
func stripSimpleQuotes(val string) string {
	if len(val) < 2 {
		return val
	}
	first, last := val[0], val[len(val)-1]
	if first != last || (first != '\'' && first != '"') {
		return val
	}
	inner := val[1 : len(val)-1]
	if strings.ContainsAny(inner, " \t\r\n") || strings.IndexByte(inner, first) >= 0 {
		return val
	}
	return inner
}

func unescapeQuotes(s string) string {
	s = strings.ReplaceAll(s, `\'`, `'`)
	s = strings.ReplaceAll(s, `\"`, `"`)
	return s
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

// topLevelAt reports whether byte offset pos sits outside all quoted
// regions, so a DEFAULT keyword inside a COMMENT literal is not mistaken
// for the clause.
func topLevelAt(s string, pos int) bool {
	var sc scanner
	for i := 0; i < pos && i < len(s); i++ {
		sc.step(s[i])
	}
	return !sc.inQuotes()
}

// atWordBoundary reports whether position i starts a fresh word, so stop
// keywords are not recognized in the middle of an identifier.
func atWordBoundary(s string, i int) bool {
	if i == 0 {
		return true
	}
	p := s[i-1]
	return !(p == '_' || ('0' <= p && p <= '9') || ('a' <= p && p <= 'z') || ('A' <= p && p <= 'Z'))
}
