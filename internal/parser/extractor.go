package parser

import (
	"fmt"
	"regexp"
	"strings"

	"sql2ts/internal/core"
)

// Options configures table extraction.
type Options struct {
	// Dialect is carried through to consumers of the schema; extraction
	// itself tolerates all supported dialects.
	Dialect core.Dialect
	// IncludeComments keeps field comments in the schema. When false they
	// are dropped after parsing.
	IncludeComments bool
	// CaseSensitive makes duplicate-table detection compare names exactly
	// instead of case-insensitively.
	CaseSensitive bool

	MaxTables         int
	MaxFieldsPerTable int
}

// DefaultOptions returns the extraction defaults used when no configuration
// is supplied.
func DefaultOptions() Options {
	return Options{
		Dialect:           core.DialectAuto,
		IncludeComments:   true,
		MaxTables:         100,
		MaxFieldsPerTable: 300,
	}
}

func (o Options) validate() error {
	if !core.IsValidDialect(string(o.Dialect)) {
		valid := make([]string, 0, len(core.SupportedDialects()))
		for _, d := range core.SupportedDialects() {
			valid = append(valid, string(d))
		}
		return &core.ConfigurationError{Option: "dialect", Value: string(o.Dialect), Valid: valid}
	}
	return nil
}

// Table-level constraint clause patterns. Each scan is independent and
// iterated over all matches, since multiple clauses of the same kind may
// co-occur in one field list.
var (
	tablePKRe = regexp.MustCompile(`(?i)\bPRIMARY\s+KEY\s*\(([^)]+)\)`)
	tableFKRe = regexp.MustCompile(
		"(?i)\\bFOREIGN\\s+KEY\\s*\\(([^)]+)\\)\\s*REFERENCES\\s+" +
			"(?:`([^`]+)`|\"([^\"]+)\"|([A-Za-z_][\\w$]*))\\s*\\(([^)]+)\\)")
	tableUniqueRe = regexp.MustCompile(
		"(?i)\\bUNIQUE(?:\\s+(?:KEY|INDEX))?(?:\\s+(`[^`]+`|\"[^\"]+\"|[A-Za-z_][\\w$]*))?\\s*\\(([^)]+)\\)")
	tableIndexRe = regexp.MustCompile(
		"(?i)\\b(?:INDEX|KEY)\\s+(`[^`]+`|\"[^\"]+\"|[A-Za-z_][\\w$]*)\\s*\\(([^)]+)\\)")

	// uniqueBeforeRe recognizes an INDEX/KEY match that is really the tail
	// of a UNIQUE KEY clause, which the unique scan already counted.
	uniqueBeforeRe = regexp.MustCompile(`(?i)\bUNIQUE\s+$`)
)

// constraintKeywords are words the optional-name group of the unique scan
// must not swallow; "UNIQUE CHECK (...)" is not a named unique clause.
var constraintKeywords = map[string]bool{
	"CHECK":      true,
	"CONSTRAINT": true,
	"REFERENCES": true,
	"USING":      true,
}

// ExtractTables parses every CREATE TABLE statement in sql into a Table.
// Fields keep declaration order; table constraints keep discovery order.
func ExtractTables(sql string, opts Options) ([]*core.Table, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	raws, err := ParseStatements(sql)
	if err != nil {
		return nil, err
	}
	if opts.MaxTables > 0 && len(raws) > opts.MaxTables {
		return nil, &core.ParseError{
			Msg: fmt.Sprintf("%d tables exceed the configured maximum of %d", len(raws), opts.MaxTables),
		}
	}

	tables := make([]*core.Table, 0, len(raws))
	seen := make(map[string]bool, len(raws))
	for _, raw := range raws {
		key := raw.Name
		if !opts.CaseSensitive {
			key = strings.ToLower(key)
		}
		if seen[key] {
			return nil, &core.ParseError{Msg: "duplicate table definition", Table: raw.Name, Line: raw.Line}
		}
		seen[key] = true

		table, err := buildTable(raw, opts)
		if err != nil {
			return nil, err
		}
		tables = append(tables, table)
	}

	return tables, nil
}

// ExtractSingleTable expects sql to contain exactly one CREATE TABLE
// statement and returns its schema.
func ExtractSingleTable(sql string, opts Options) (*core.Table, error) {
	tables, err := ExtractTables(sql, opts)
	if err != nil {
		return nil, err
	}
	if len(tables) != 1 {
		return nil, &core.ParseError{
			Msg: fmt.Sprintf("expected exactly one CREATE TABLE statement, found %d", len(tables)),
		}
	}
	return tables[0], nil
}

// HasValidTables reports whether sql parses into at least one table under
// the default options. It never returns an error.
func HasValidTables(sql string) bool {
	tables, err := ExtractTables(sql, DefaultOptions())
	return err == nil && len(tables) > 0
}

func buildTable(raw RawTable, opts Options) (*core.Table, error) {
	fields, err := ParseFields(raw.FieldsText)
	if err != nil {
		return nil, fmt.Errorf("parser: table %q (line %d): %w", raw.Name, raw.Line, err)
	}
	if len(fields) == 0 {
		return nil, &core.ParseError{Msg: "table has no field definitions", Table: raw.Name, Line: raw.Line}
	}
	if opts.MaxFieldsPerTable > 0 && len(fields) > opts.MaxFieldsPerTable {
		return nil, &core.ParseError{
			Msg:   fmt.Sprintf("%d fields exceed the configured maximum of %d", len(fields), opts.MaxFieldsPerTable),
			Table: raw.Name,
			Line:  raw.Line,
		}
	}

	if !opts.IncludeComments {
		for _, f := range fields {
			f.Comment = ""
		}
	}

	return &core.Table{
		Name:        dequote(raw.Name),
		Fields:      fields,
		Constraints: parseTableConstraints(raw.FieldsText),
	}, nil
}

// parseTableConstraints re-scans the raw field-list text for table-level
// constraint clauses. The scans run independently of field parsing: the
// same text that produced the fields is searched again, clause kind by
// clause kind, with a fresh match iteration per pattern.
func parseTableConstraints(fieldsText string) []*core.TableConstraint {
	var constraints []*core.TableConstraint

	for _, m := range tablePKRe.FindAllStringSubmatch(fieldsText, -1) {
		cols := splitIdentifierList(m[1])
		if len(cols) == 0 {
			continue
		}
		constraints = append(constraints, &core.TableConstraint{
			Type:   core.TablePrimaryKey,
			Fields: cols,
		})
	}

	for _, m := range tableFKRe.FindAllStringSubmatch(fieldsText, -1) {
		cols := splitIdentifierList(m[1])
		refCols := splitIdentifierList(m[5])
		if len(cols) == 0 {
			continue
		}
		constraints = append(constraints, &core.TableConstraint{
			Type:   core.TableForeignKey,
			Fields: cols,
			Reference: &core.Reference{
				Table:  dequote(firstNonEmpty(m[2], m[3], m[4])),
				Fields: refCols,
			},
		})
	}

	for _, m := range tableUniqueRe.FindAllStringSubmatch(fieldsText, -1) {
		if constraintKeywords[strings.ToUpper(dequote(m[1]))] {
			continue
		}
		cols := splitIdentifierList(m[2])
		if len(cols) == 0 {
			continue
		}
		constraints = append(constraints, &core.TableConstraint{
			Type:   core.TableUnique,
			Fields: cols,
		})
	}

	for _, m := range tableIndexRe.FindAllStringSubmatchIndex(fieldsText, -1) {
		if uniqueBeforeRe.MatchString(fieldsText[:m[0]]) {
			continue
		}
		cols := splitIdentifierList(fieldsText[m[4]:m[5]])
		if len(cols) == 0 {
			continue
		}
		constraints = append(constraints, &core.TableConstraint{
			Type:   core.TableIndex,
			Fields: cols,
		})
	}

	return constraints
}
