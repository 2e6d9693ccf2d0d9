// Package dialect maps raw SQL type text to TypeScript type names and
// detects which SQL dialect a piece of schema text was written for.
package dialect

import (
	"fmt"
	"regexp"
	"strings"

	"sql2ts/internal/core"
)

// TypeScript target type names.
const (
	TSNumber  = "number"
	TSString  = "string"
	TSBoolean = "boolean"
	TSDate    = "Date"
	TSBuffer  = "Buffer"
	TSObject  = "object"
	TSAny     = "any"
)

// baseMappings holds the built-in dialect tables, keyed by lowercase base
// SQL type name. The tables are never mutated; per-instance custom
// mappings are layered on top at lookup time.
var baseMappings = map[core.Dialect]map[string]string{
	core.DialectMySQL: {
		"tinyint": TSNumber, "smallint": TSNumber, "mediumint": TSNumber,
		"int": TSNumber, "integer": TSNumber, "bigint": TSNumber,
		"float": TSNumber, "double": TSNumber, "double precision": TSNumber,
		"decimal": TSNumber, "dec": TSNumber, "numeric": TSNumber, "year": TSNumber,

		"char": TSString, "varchar": TSString,
		"tinytext": TSString, "text": TSString, "mediumtext": TSString, "longtext": TSString,
		"enum": TSString, "set": TSString, "time": TSString,

		"date": TSDate, "datetime": TSDate, "timestamp": TSDate,

		"bit": TSBoolean, "bool": TSBoolean, "boolean": TSBoolean,

		"binary": TSBuffer, "varbinary": TSBuffer,
		"tinyblob": TSBuffer, "blob": TSBuffer, "mediumblob": TSBuffer, "longblob": TSBuffer,

		"json": TSObject,
	},
	core.DialectPostgreSQL: {
		"smallint": TSNumber, "int2": TSNumber, "integer": TSNumber, "int": TSNumber,
		"int4": TSNumber, "bigint": TSNumber, "int8": TSNumber,
		"decimal": TSNumber, "numeric": TSNumber, "real": TSNumber, "float4": TSNumber,
		"double precision": TSNumber, "float8": TSNumber, "float": TSNumber,
		"smallserial": TSNumber, "serial": TSNumber, "bigserial": TSNumber, "money": TSNumber,

		"char": TSString, "character": TSString, "varchar": TSString,
		"character varying": TSString, "text": TSString, "uuid": TSString,
		"time": TSString, "timetz": TSString, "interval": TSString, "citext": TSString,

		"date": TSDate, "timestamp": TSDate, "timestamptz": TSDate,
		"timestamp with time zone": TSDate, "timestamp without time zone": TSDate,

		"boolean": TSBoolean, "bool": TSBoolean,

		"bytea": TSBuffer,

		"json": TSObject, "jsonb": TSObject,
	},
	core.DialectSQLite: {
		"integer": TSNumber, "int": TSNumber, "tinyint": TSNumber, "smallint": TSNumber,
		"mediumint": TSNumber, "bigint": TSNumber, "int2": TSNumber, "int8": TSNumber,
		"unsigned big int": TSNumber, "real": TSNumber, "double": TSNumber,
		"double precision": TSNumber, "float": TSNumber, "numeric": TSNumber, "decimal": TSNumber,

		"character": TSString, "varchar": TSString, "varying character": TSString,
		"nchar": TSString, "native character": TSString, "nvarchar": TSString,
		"text": TSString, "clob": TSString, "char": TSString,

		"date": TSDate, "datetime": TSDate, "timestamp": TSDate,

		"boolean": TSBoolean, "bool": TSBoolean,

		"blob": TSBuffer,
	},
}

var (
	typeArgsRe  = regexp.MustCompile(`\([^)]*\)`)
	typeSignRe  = regexp.MustCompile(`(?i)\s+(?:UNSIGNED|SIGNED)\s*$`)
	wsRe        = regexp.MustCompile(`\s+`)
	mysqlBoolRe = regexp.MustCompile(`(?i)^tinyint\s*\(\s*1\s*\)$`)
	enumOrSetRe = regexp.MustCompile(`(?i)^(?:enum|set)\s*\(`)
)

// TypeMapper resolves SQL types to TypeScript types. An instance carries
// its own custom mapping table and diagnostics buffer and must be owned by
// a single goroutine; the built-in tables it layers over are immutable.
type TypeMapper struct {
	strict bool
	custom map[core.Dialect]map[string]string
	diags  []string
}

// NewTypeMapper creates a mapper. In strict mode an unresolved type fails
// with a TypeMappingError; otherwise it degrades to "any" and records a
// diagnostic.
func NewTypeMapper(strict bool) *TypeMapper {
	return &TypeMapper{
		strict: strict,
		custom: make(map[core.Dialect]map[string]string),
	}
}

// AddMapping registers a custom SQL-type-to-TypeScript mapping for the
// given dialect. It wins over the built-in table on key collision.
func (m *TypeMapper) AddMapping(d core.Dialect, sqlType, tsType string) {
	d = resolveAlias(d)
	key := normalizeType(sqlType)
	if m.custom[d] == nil {
		m.custom[d] = make(map[string]string)
	}
	m.custom[d][key] = tsType
}

// RemoveMapping deletes a previously registered custom mapping.
func (m *TypeMapper) RemoveMapping(d core.Dialect, sqlType string) {
	d = resolveAlias(d)
	delete(m.custom[d], normalizeType(sqlType))
}

// Diagnostics returns the non-fatal messages recorded in lenient mode.
func (m *TypeMapper) Diagnostics() []string {
	return m.diags
}

// MapType resolves a raw SQL type string to a TypeScript type name for the
// given dialect. AUTO is an alias for MySQL; an unknown dialect falls back
// to MySQL with a diagnostic (lenient) or fails (strict).
func (m *TypeMapper) MapType(sqlType string, d core.Dialect) (string, error) {
	raw := strings.TrimSpace(sqlType)
	if raw == "" {
		return m.unresolved(raw, d)
	}

	if _, ok := baseMappings[resolveAlias(d)]; !ok {
		if m.strict {
			return "", &core.ConfigurationError{
				Option: "dialect",
				Value:  string(d),
				Valid:  dialectNames(),
			}
		}
		m.diags = append(m.diags, fmt.Sprintf("unknown dialect %q; falling back to mysql mappings", d))
		d = core.DialectMySQL
	}
	d = resolveAlias(d)
	lower := strings.ToLower(raw)

	// Dialect-specific special cases run before normalization strips the
	// details they depend on.
	switch d {
	case core.DialectMySQL:
		if mysqlBoolRe.MatchString(lower) {
			return TSBoolean, nil
		}
		if enumOrSetRe.MatchString(lower) {
			return TSString, nil
		}
	case core.DialectPostgreSQL:
		if strings.HasSuffix(lower, "[]") {
			elem, err := m.MapType(strings.TrimSuffix(raw, "[]"), d)
			if err != nil {
				return "", err
			}
			return elem + "[]", nil
		}
		if strings.HasPrefix(lower, "enum(") {
			return TSString, nil
		}
	case core.DialectSQLite:
		// SQLite type affinity: anything mentioning "int" stores integers,
		// except spatial names like "point".
		if strings.Contains(lower, "int") && !strings.Contains(lower, "point") {
			return TSNumber, nil
		}
	}

	key := normalizeType(raw)

	if custom, ok := m.custom[d]; ok {
		if ts, ok := custom[key]; ok {
			return ts, nil
		}
	}

	base := baseMappings[d]
	// Compound types like "double precision" must hit the literal key
	// before falling back to the first token, which would reduce them to
	// a different lookup ("double").
	if ts, ok := base[key]; ok {
		return ts, nil
	}
	if first, _, found := strings.Cut(key, " "); found {
		if ts, ok := base[first]; ok {
			return ts, nil
		}
	}

	return m.unresolved(raw, d)
}

func (m *TypeMapper) unresolved(raw string, d core.Dialect) (string, error) {
	if m.strict {
		return "", &core.TypeMappingError{SQLType: raw, Dialect: d}
	}
	m.diags = append(m.diags, fmt.Sprintf("no %s mapping for SQL type %q; using %s", resolveAlias(d), raw, TSAny))
	return TSAny, nil
}

// normalizeType lowercases the raw type, strips size/precision arguments
// and a trailing UNSIGNED/SIGNED modifier, and collapses whitespace.
func normalizeType(raw string) string {
	s := typeArgsRe.ReplaceAllString(strings.TrimSpace(raw), "")
	s = typeSignRe.ReplaceAllString(s, "")
	s = wsRe.ReplaceAllString(s, " ")
	return strings.ToLower(strings.TrimSpace(s))
}

// resolveAlias folds AUTO into MySQL; type mapping has no separate AUTO
// table.
func resolveAlias(d core.Dialect) core.Dialect {
	if d == core.DialectAuto {
		return core.DialectMySQL
	}
	return d
}

func dialectNames() []string {
	names := make([]string, 0, len(core.SupportedDialects()))
	for _, d := range core.SupportedDialects() {
		names = append(names, string(d))
	}
	return names
}
