package core

import "fmt"

// ParseError reports malformed or unrecognized SQL structure: zero CREATE
// TABLE statements, an unmatched field definition, or a table/field count
// over the configured ceiling. Table and Line are filled in by the
// extractor when the failing statement is known.
type ParseError struct {
	Msg   string
	Table string
	Line  int
}

func (e *ParseError) Error() string {
	switch {
	case e.Table != "" && e.Line > 0:
		return fmt.Sprintf("parse error in table %q (line %d): %s", e.Table, e.Line, e.Msg)
	case e.Table != "":
		return fmt.Sprintf("parse error in table %q: %s", e.Table, e.Msg)
	default:
		return "parse error: " + e.Msg
	}
}

// TypeMappingError reports an SQL type that could not be resolved for a
// dialect. It is only raised in strict mapping mode; lenient mode degrades
// to a fallback type with a diagnostic instead.
type TypeMappingError struct {
	SQLType string
	Dialect Dialect
}

func (e *TypeMappingError) Error() string {
	return fmt.Sprintf("no %s type mapping for SQL type %q", e.Dialect, e.SQLType)
}

// ConfigurationError reports an invalid option value, detected before any
// parsing begins.
type ConfigurationError struct {
	Option string
	Value  string
	Valid  []string
}

func (e *ConfigurationError) Error() string {
	if len(e.Valid) > 0 {
		return fmt.Sprintf("invalid %s %q; valid values: %v", e.Option, e.Value, e.Valid)
	}
	return fmt.Sprintf("invalid %s %q", e.Option, e.Value)
}

// InputError reports input rejected before parsing: empty or non-UTF-8
// text, oversized input, or content the validation gate refuses.
type InputError struct {
	Msg string
}

func (e *InputError) Error() string {
	return "invalid input: " + e.Msg
}
