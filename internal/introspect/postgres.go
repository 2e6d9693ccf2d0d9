package introspect

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"sql2ts/internal/core"
)

type postgresIntrospecter struct {
	conn   *pgx.Conn
	schema string
}

func (p *postgresIntrospecter) Close(ctx context.Context) error {
	return p.conn.Close(ctx)
}

func (p *postgresIntrospecter) Introspect(ctx context.Context, tables []string) ([]*core.Table, error) {
	names, err := p.tableNames(ctx, tables)
	if err != nil {
		return nil, fmt.Errorf("introspect: list tables: %w", err)
	}

	out := make([]*core.Table, 0, len(names))
	for _, name := range names {
		t, err := p.table(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("introspect: table %q: %w", name, err)
		}
		out = append(out, t)
	}
	return out, nil
}

func (p *postgresIntrospecter) tableNames(ctx context.Context, requested []string) ([]string, error) {
	if len(requested) > 0 {
		return requested, nil
	}

	rows, err := p.conn.Query(ctx, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = $1 AND table_type = 'BASE TABLE'
		ORDER BY table_name`, p.schema)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (p *postgresIntrospecter) table(ctx context.Context, name string) (*core.Table, error) {
	fields, err := p.fields(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("table not found or has no columns")
	}

	constraints, err := p.constraints(ctx, name)
	if err != nil {
		return nil, err
	}

	// Mark single-column primary keys on the field itself, matching what
	// the SQL parser produces for inline PRIMARY KEY.
	for _, c := range constraints {
		if c.Type != core.TablePrimaryKey || len(c.Fields) != 1 {
			continue
		}
		for _, f := range fields {
			if f.Name == c.Fields[0] {
				f.Nullable = false
			}
		}
	}

	return &core.Table{Name: name, Fields: fields, Constraints: constraints}, nil
}

func (p *postgresIntrospecter) fields(ctx context.Context, table string) ([]*core.Field, error) {
	rows, err := p.conn.Query(ctx, `
		SELECT column_name, data_type, udt_name, is_nullable, column_default
		FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2
		ORDER BY ordinal_position`, p.schema, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fields []*core.Field
	for rows.Next() {
		var (
			f          core.Field
			dataType   string
			udtName    string
			nullable   string
			defaultVal *string
		)
		if err := rows.Scan(&f.Name, &dataType, &udtName, &nullable, &defaultVal); err != nil {
			return nil, err
		}
		f.Type = rawPostgresType(dataType, udtName)
		f.Nullable = nullable == "YES"
		f.DefaultValue = defaultVal
		if defaultVal != nil && strings.HasPrefix(*defaultVal, "nextval(") {
			f.Constraints = append(f.Constraints, core.FieldConstraint{Type: core.FieldAutoIncrement})
		}
		fields = append(fields, &f)
	}
	return fields, rows.Err()
}

// rawPostgresType rebuilds a type string usable by the type mapper.
// information_schema reports arrays as "ARRAY" with the element type in
// udt_name prefixed by an underscore, and enums as "USER-DEFINED".
func rawPostgresType(dataType, udtName string) string {
	switch dataType {
	case "ARRAY":
		return strings.TrimPrefix(udtName, "_") + "[]"
	case "USER-DEFINED":
		return udtName
	default:
		return dataType
	}
}

func (p *postgresIntrospecter) constraints(ctx context.Context, table string) ([]*core.TableConstraint, error) {
	var constraints []*core.TableConstraint

	for _, kind := range []struct {
		constraintType string
		tableType      core.TableConstraintType
	}{
		{"PRIMARY KEY", core.TablePrimaryKey},
		{"UNIQUE", core.TableUnique},
	} {
		grouped, err := p.keyConstraints(ctx, table, kind.constraintType)
		if err != nil {
			return nil, err
		}
		for _, cols := range grouped {
			constraints = append(constraints, &core.TableConstraint{Type: kind.tableType, Fields: cols})
		}
	}

	fks, err := p.foreignKeys(ctx, table)
	if err != nil {
		return nil, err
	}
	return append(constraints, fks...), nil
}

// keyConstraints returns the column lists of all constraints of the given
// type, in constraint order.
func (p *postgresIntrospecter) keyConstraints(ctx context.Context, table, constraintType string) ([][]string, error) {
	rows, err := p.conn.Query(ctx, `
		SELECT tc.constraint_name, kcu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON tc.constraint_name = kcu.constraint_name
			AND tc.table_schema = kcu.table_schema
		WHERE tc.table_schema = $1 AND tc.table_name = $2 AND tc.constraint_type = $3
		ORDER BY tc.constraint_name, kcu.ordinal_position`, p.schema, table, constraintType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var (
		out     [][]string
		lastKey string
	)
	for rows.Next() {
		var name, col string
		if err := rows.Scan(&name, &col); err != nil {
			return nil, err
		}
		if len(out) == 0 || name != lastKey {
			out = append(out, nil)
			lastKey = name
		}
		out[len(out)-1] = append(out[len(out)-1], col)
	}
	return out, rows.Err()
}

func (p *postgresIntrospecter) foreignKeys(ctx context.Context, table string) ([]*core.TableConstraint, error) {
	rows, err := p.conn.Query(ctx, `
		SELECT tc.constraint_name, kcu.column_name, ccu.table_name, ccu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON tc.constraint_name = kcu.constraint_name
			AND tc.table_schema = kcu.table_schema
		JOIN information_schema.constraint_column_usage ccu
			ON tc.constraint_name = ccu.constraint_name
			AND tc.table_schema = ccu.table_schema
		WHERE tc.table_schema = $1 AND tc.table_name = $2 AND tc.constraint_type = 'FOREIGN KEY'
		ORDER BY tc.constraint_name, kcu.ordinal_position`, p.schema, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var (
		out     []*core.TableConstraint
		current *core.TableConstraint
		lastKey string
	)
	for rows.Next() {
		var constraint, col, refTable, refCol string
		if err := rows.Scan(&constraint, &col, &refTable, &refCol); err != nil {
			return nil, err
		}
		if current == nil || constraint != lastKey {
			current = &core.TableConstraint{
				Type:      core.TableForeignKey,
				Reference: &core.Reference{Table: refTable},
			}
			out = append(out, current)
			lastKey = constraint
		}
		current.Fields = append(current.Fields, col)
		current.Reference.Fields = append(current.Reference.Fields, refCol)
	}
	return out, rows.Err()
}
