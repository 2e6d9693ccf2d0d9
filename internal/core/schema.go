// Package core contains the single source of truth for the parsed schema.
// It provides a structured representation of tables, fields, and constraints
// that the parser produces and the type mapper and output formatters consume.
package core

import (
	"fmt"
	"strings"
)

// Dialect identifies a supported SQL dialect.
type Dialect string

const (
	DialectMySQL      Dialect = "mysql"
	DialectPostgreSQL Dialect = "postgresql"
	DialectSQLite     Dialect = "sqlite"

	// DialectAuto asks the extractor to detect the dialect from the SQL
	// text itself. Type mapping treats it as an alias for MySQL.
	DialectAuto Dialect = "auto"
)

// SupportedDialects returns a slice of all supported dialect values.
func SupportedDialects() []Dialect {
	return []Dialect{
		DialectMySQL,
		DialectPostgreSQL,
		DialectSQLite,
		DialectAuto,
	}
}

// IsValidDialect reports whether d is a recognized dialect string.
func IsValidDialect(d string) bool {
	for _, supported := range SupportedDialects() {
		if strings.EqualFold(string(supported), d) {
			return true
		}
	}
	return false
}

// Table represents one parsed CREATE TABLE statement.
// Fields keep declaration order; Constraints keep discovery order.
type Table struct {
	Name        string             `json:"name"`
	Fields      []*Field           `json:"fields"`
	Constraints []*TableConstraint `json:"constraints,omitempty"`
}

// Field represents a single column definition.
type Field struct {
	Name string `json:"name"`
	// Type holds the raw SQL type text verbatim, including size and
	// modifiers, e.g. "DECIMAL(10,2) UNSIGNED".
	Type     string `json:"type"`
	Nullable bool   `json:"nullable"`
	// DefaultValue is nil when no DEFAULT clause was given. DEFAULT NULL
	// yields the literal string "NULL"; DEFAULT '' yields the empty string.
	DefaultValue *string           `json:"defaultValue,omitempty"`
	Constraints  []FieldConstraint `json:"constraints,omitempty"`
	Comment      string            `json:"comment,omitempty"`
}

// FieldConstraintType enumerates constraints that attach to a single field.
type FieldConstraintType string

const (
	FieldPrimaryKey    FieldConstraintType = "PRIMARY KEY"
	FieldUnique        FieldConstraintType = "UNIQUE"
	FieldForeignKey    FieldConstraintType = "FOREIGN KEY"
	FieldCheck         FieldConstraintType = "CHECK"
	FieldAutoIncrement FieldConstraintType = "AUTO_INCREMENT"
)

// FieldConstraint is an inline constraint on one field. Value holds
// "table(cols)" for foreign keys and the predicate text for checks.
type FieldConstraint struct {
	Type  FieldConstraintType `json:"type"`
	Value string              `json:"value,omitempty"`
}

// TableConstraintType enumerates table-level constraint clauses.
type TableConstraintType string

const (
	TablePrimaryKey TableConstraintType = "PRIMARY KEY"
	TableForeignKey TableConstraintType = "FOREIGN KEY"
	TableUnique     TableConstraintType = "UNIQUE"
	TableIndex      TableConstraintType = "INDEX"
)

// TableConstraint is a constraint clause that stands on its own inside the
// field list, e.g. a composite primary key or a FOREIGN KEY ... REFERENCES.
type TableConstraint struct {
	Type      TableConstraintType `json:"type"`
	Fields    []string            `json:"fields"`
	Reference *Reference          `json:"reference,omitempty"`
}

// Reference is the target of a foreign key table constraint.
type Reference struct {
	Table  string   `json:"table"`
	Fields []string `json:"fields"`
}

// FindField returns the field with the given name, or nil.
func (t *Table) FindField(name string) *Field {
	for _, f := range t.Fields {
		if strings.EqualFold(f.Name, name) {
			return f
		}
	}
	return nil
}

// PrimaryKey returns the table-level primary key constraint, or nil.
func (t *Table) PrimaryKey() *TableConstraint {
	for _, c := range t.Constraints {
		if c.Type == TablePrimaryKey {
			return c
		}
	}
	return nil
}

// HasConstraint reports whether the field carries a constraint of the
// given type.
func (f *Field) HasConstraint(ct FieldConstraintType) bool {
	for _, c := range f.Constraints {
		if c.Type == ct {
			return true
		}
	}
	return false
}

// IsPrimaryKey reports whether the field has an inline PRIMARY KEY.
func (f *Field) IsPrimaryKey() bool {
	return f.HasConstraint(FieldPrimaryKey)
}

func (t *Table) String() string {
	return fmt.Sprintf("Table: %s (%d fields, %d constraints)",
		t.Name, len(t.Fields), len(t.Constraints))
}
