package introspect

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"sql2ts/internal/core"
)

type mysqlIntrospecter struct {
	db *sql.DB
}

func (m *mysqlIntrospecter) Close(context.Context) error {
	return m.db.Close()
}

func (m *mysqlIntrospecter) Introspect(ctx context.Context, tables []string) ([]*core.Table, error) {
	names, err := m.tableNames(ctx, tables)
	if err != nil {
		return nil, fmt.Errorf("introspect: list tables: %w", err)
	}

	out := make([]*core.Table, 0, len(names))
	for _, name := range names {
		t, err := m.table(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("introspect: table %q: %w", name, err)
		}
		out = append(out, t)
	}
	return out, nil
}

func (m *mysqlIntrospecter) tableNames(ctx context.Context, requested []string) ([]string, error) {
	if len(requested) > 0 {
		return requested, nil
	}

	rows, err := m.db.QueryContext(ctx, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = DATABASE() AND table_type = 'BASE TABLE'
		ORDER BY table_name`)
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

func (m *mysqlIntrospecter) table(ctx context.Context, name string) (*core.Table, error) {
	fields, err := m.fields(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("table not found or has no columns")
	}

	constraints, err := m.constraints(ctx, name)
	if err != nil {
		return nil, err
	}

	return &core.Table{Name: name, Fields: fields, Constraints: constraints}, nil
}

func (m *mysqlIntrospecter) fields(ctx context.Context, table string) ([]*core.Field, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT column_name, column_type, is_nullable, column_default, column_comment, column_key, extra
		FROM information_schema.columns
		WHERE table_schema = DATABASE() AND table_name = ?
		ORDER BY ordinal_position`, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fields []*core.Field
	for rows.Next() {
		var (
			f          core.Field
			nullable   string
			defaultVal sql.NullString
			key        string
			extra      string
		)
		if err := rows.Scan(&f.Name, &f.Type, &nullable, &defaultVal, &f.Comment, &key, &extra); err != nil {
			return nil, err
		}
		f.Nullable = nullable == "YES"
		if defaultVal.Valid {
			v := defaultVal.String
			f.DefaultValue = &v
		}
		switch key {
		case "PRI":
			f.Nullable = false
			f.Constraints = append(f.Constraints, core.FieldConstraint{Type: core.FieldPrimaryKey})
		case "UNI":
			f.Constraints = append(f.Constraints, core.FieldConstraint{Type: core.FieldUnique})
		}
		if strings.Contains(strings.ToLower(extra), "auto_increment") {
			f.Constraints = append(f.Constraints, core.FieldConstraint{Type: core.FieldAutoIncrement})
		}
		fields = append(fields, &f)
	}
	return fields, rows.Err()
}

func (m *mysqlIntrospecter) constraints(ctx context.Context, table string) ([]*core.TableConstraint, error) {
	var constraints []*core.TableConstraint

	pk, err := m.primaryKey(ctx, table)
	if err != nil {
		return nil, err
	}
	if len(pk) > 0 {
		constraints = append(constraints, &core.TableConstraint{Type: core.TablePrimaryKey, Fields: pk})
	}

	fks, err := m.foreignKeys(ctx, table)
	if err != nil {
		return nil, err
	}
	constraints = append(constraints, fks...)

	idx, err := m.indexes(ctx, table)
	if err != nil {
		return nil, err
	}
	return append(constraints, idx...), nil
}

func (m *mysqlIntrospecter) primaryKey(ctx context.Context, table string) ([]string, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT column_name
		FROM information_schema.key_column_usage
		WHERE table_schema = DATABASE() AND table_name = ? AND constraint_name = 'PRIMARY'
		ORDER BY ordinal_position`, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var col string
		if err := rows.Scan(&col); err != nil {
			return nil, err
		}
		cols = append(cols, col)
	}
	return cols, rows.Err()
}

func (m *mysqlIntrospecter) foreignKeys(ctx context.Context, table string) ([]*core.TableConstraint, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT constraint_name, column_name, referenced_table_name, referenced_column_name
		FROM information_schema.key_column_usage
		WHERE table_schema = DATABASE() AND table_name = ? AND referenced_table_name IS NOT NULL
		ORDER BY constraint_name, ordinal_position`, table)
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

func (m *mysqlIntrospecter) indexes(ctx context.Context, table string) ([]*core.TableConstraint, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT index_name, non_unique, column_name
		FROM information_schema.statistics
		WHERE table_schema = DATABASE() AND table_name = ? AND index_name != 'PRIMARY'
		ORDER BY index_name, seq_in_index`, table)
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
		var name, col string
		var nonUnique int
		if err := rows.Scan(&name, &nonUnique, &col); err != nil {
			return nil, err
		}
		if current == nil || name != lastKey {
			ct := core.TableIndex
			if nonUnique == 0 {
				ct = core.TableUnique
			}
			current = &core.TableConstraint{Type: ct}
			out = append(out, current)
			lastKey = name
		}
		current.Fields = append(current.Fields, col)
	}
	return out, rows.Err()
}
