package introspect

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"sql2ts/internal/core"
)

type sqliteIntrospecter struct {
	db *sql.DB
}

func (s *sqliteIntrospecter) Close(context.Context) error {
	return s.db.Close()
}

func (s *sqliteIntrospecter) Introspect(ctx context.Context, tables []string) ([]*core.Table, error) {
	names, err := s.tableNames(ctx, tables)
	if err != nil {
		return nil, fmt.Errorf("introspect: list tables: %w", err)
	}

	out := make([]*core.Table, 0, len(names))
	for _, name := range names {
		t, err := s.table(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("introspect: table %q: %w", name, err)
		}
		out = append(out, t)
	}
	return out, nil
}

func (s *sqliteIntrospecter) tableNames(ctx context.Context, requested []string) ([]string, error) {
	if len(requested) > 0 {
		return requested, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name`)
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

func (s *sqliteIntrospecter) table(ctx context.Context, name string) (*core.Table, error) {
	fields, pk, err := s.fields(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("table not found or has no columns")
	}

	var constraints []*core.TableConstraint
	if len(pk) > 0 {
		constraints = append(constraints, &core.TableConstraint{Type: core.TablePrimaryKey, Fields: pk})
	}

	fks, err := s.foreignKeys(ctx, name)
	if err != nil {
		return nil, err
	}
	constraints = append(constraints, fks...)

	idx, err := s.indexes(ctx, name)
	if err != nil {
		return nil, err
	}
	constraints = append(constraints, idx...)

	return &core.Table{Name: name, Fields: fields, Constraints: constraints}, nil
}

// fields reads PRAGMA table_info. The pk column holds the 1-based position
// of the column inside the primary key, or 0.
func (s *sqliteIntrospecter) fields(ctx context.Context, table string) ([]*core.Field, []string, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%q)", table))
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	type pkCol struct {
		pos  int
		name string
	}

	var fields []*core.Field
	var pkCols []pkCol
	for rows.Next() {
		var (
			cid        int
			f          core.Field
			notNull    int
			defaultVal sql.NullString
			pk         int
		)
		if err := rows.Scan(&cid, &f.Name, &f.Type, &notNull, &defaultVal, &pk); err != nil {
			return nil, nil, err
		}
		f.Nullable = notNull == 0
		if defaultVal.Valid {
			v := defaultVal.String
			f.DefaultValue = &v
		}
		if pk > 0 {
			f.Nullable = false
			f.Constraints = append(f.Constraints, core.FieldConstraint{Type: core.FieldPrimaryKey})
			pkCols = append(pkCols, pkCol{pos: pk, name: f.Name})
		}
		fields = append(fields, &f)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	sort.Slice(pkCols, func(i, j int) bool { return pkCols[i].pos < pkCols[j].pos })
	pk := make([]string, 0, len(pkCols))
	for _, c := range pkCols {
		pk = append(pk, c.name)
	}
	return fields, pk, nil
}

func (s *sqliteIntrospecter) foreignKeys(ctx context.Context, table string) ([]*core.TableConstraint, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("PRAGMA foreign_key_list(%q)", table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := make(map[int]*core.TableConstraint)
	var order []int
	for rows.Next() {
		var (
			id, seq                    int
			refTable, from, to         string
			onUpdate, onDelete, match_ string
		)
		if err := rows.Scan(&id, &seq, &refTable, &from, &to, &onUpdate, &onDelete, &match_); err != nil {
			return nil, err
		}
		c, ok := byID[id]
		if !ok {
			c = &core.TableConstraint{
				Type:      core.TableForeignKey,
				Reference: &core.Reference{Table: refTable},
			}
			byID[id] = c
			order = append(order, id)
		}
		c.Fields = append(c.Fields, from)
		c.Reference.Fields = append(c.Reference.Fields, to)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]*core.TableConstraint, 0, len(order))
	for _, id := range order {
		out = append(out, byID[id])
	}
	return out, nil
}

func (s *sqliteIntrospecter) indexes(ctx context.Context, table string) ([]*core.TableConstraint, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("PRAGMA index_list(%q)", table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	type indexMeta struct {
		name   string
		unique bool
	}
	var metas []indexMeta
	for rows.Next() {
		var (
			seq     int
			name    string
			unique  int
			origin  string
			partial int
		)
		if err := rows.Scan(&seq, &name, &unique, &origin, &partial); err != nil {
			return nil, err
		}
		// Skip the implicit index backing the primary key.
		if origin == "pk" {
			continue
		}
		metas = append(metas, indexMeta{name: name, unique: unique == 1})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var out []*core.TableConstraint
	for _, meta := range metas {
		cols, err := s.indexColumns(ctx, meta.name)
		if err != nil {
			return nil, err
		}
		if len(cols) == 0 {
			continue
		}
		ct := core.TableIndex
		if meta.unique {
			ct = core.TableUnique
		}
		out = append(out, &core.TableConstraint{Type: ct, Fields: cols})
	}
	return out, nil
}

func (s *sqliteIntrospecter) indexColumns(ctx context.Context, index string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("PRAGMA index_info(%q)", index))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var seqno, cid int
		var name sql.NullString
		if err := rows.Scan(&seqno, &cid, &name); err != nil {
			return nil, err
		}
		if name.Valid && name.String != "" {
			cols = append(cols, name.String)
		}
	}
	return cols, rows.Err()
}
