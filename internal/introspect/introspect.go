// Package introspect reads the schema of a live database and returns the
// same core.Table model the SQL parser produces, so TypeScript types can
// be generated without a dump file. One introspecter exists per supported
// dialect; Connect picks the right one for a DSN.
package introspect

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5"
	_ "github.com/mattn/go-sqlite3"

	"sql2ts/internal/core"
)

// Introspecter extracts table schemas from a live database. When tables is
// empty, every base table in the target schema is extracted.
type Introspecter interface {
	Introspect(ctx context.Context, tables []string) ([]*core.Table, error)
	Close(ctx context.Context) error
}

// Connect opens a connection for the given dialect and returns the
// matching introspecter. The caller owns the returned value and must
// close it.
func Connect(ctx context.Context, d core.Dialect, dsn string) (Introspecter, error) {
	switch d {
	case core.DialectMySQL, core.DialectAuto:
		db, err := openAndPing(ctx, "mysql", dsn)
		if err != nil {
			return nil, err
		}
		return &mysqlIntrospecter{db: db}, nil
	case core.DialectSQLite:
		db, err := openAndPing(ctx, "sqlite3", dsn)
		if err != nil {
			return nil, err
		}
		return &sqliteIntrospecter{db: db}, nil
	case core.DialectPostgreSQL:
		conn, err := pgx.Connect(ctx, dsn)
		if err != nil {
			return nil, fmt.Errorf("introspect: connect to postgres: %w", err)
		}
		if err := conn.Ping(ctx); err != nil {
			_ = conn.Close(ctx)
			return nil, fmt.Errorf("introspect: ping postgres: %w", err)
		}
		return &postgresIntrospecter{conn: conn, schema: "public"}, nil
	default:
		valid := make([]string, 0, len(core.SupportedDialects()))
		for _, s := range core.SupportedDialects() {
			valid = append(valid, string(s))
		}
		return nil, &core.ConfigurationError{Option: "dialect", Value: string(d), Valid: valid}
	}
}

func openAndPing(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("introspect: open %s database: %w", driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("introspect: ping %s database: %w", driver, err)
	}
	return db, nil
}
