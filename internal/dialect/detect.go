package dialect

import (
	"strings"

	"sql2ts/internal/core"
)

// Signature substrings per dialect, checked in precedence order.
// PostgreSQL is checked first: its signatures are the most distinctive,
// and a statement can carry both MySQL- and PostgreSQL-flavored tokens at
// once (a SERIAL column inside an ENGINE=InnoDB table). PostgreSQL wins
// that conflict.
var (
	postgresSignatures = []string{
		"serial", "jsonb", "uuid", "bytea", "timestamptz",
		"double precision", "character varying",
	}
	mysqlSignatures = []string{
		"auto_increment", "tinyint", "mediumint",
		"longtext", "mediumtext", "tinytext",
		"longblob", "mediumblob", "tinyblob",
		"engine=", "charset=", "collate=",
	}
	sqliteSignatures = []string{
		"autoincrement", "without rowid", "pragma",
	}
)

// DetectDialect inspects SQL text for dialect-signature substrings and
// returns the best guess. MySQL is the default when nothing matches.
func DetectDialect(sql string) core.Dialect {
	lower := strings.ToLower(sql)

	for _, sig := range postgresSignatures {
		if strings.Contains(lower, sig) {
			return core.DialectPostgreSQL
		}
	}
	for _, sig := range mysqlSignatures {
		if strings.Contains(lower, sig) {
			return core.DialectMySQL
		}
	}
	for _, sig := range sqliteSignatures {
		if strings.Contains(lower, sig) {
			return core.DialectSQLite
		}
	}
	return core.DialectMySQL
}

// ResolveDialect turns an extractor-level dialect option into the concrete
// dialect to map types with, running detection for AUTO.
func ResolveDialect(d core.Dialect, sql string) core.Dialect {
	if d == core.DialectAuto || d == "" {
		return DetectDialect(sql)
	}
	return d
}
