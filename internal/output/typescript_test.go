package output

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sql2ts/internal/core"
	"sql2ts/internal/dialect"
)

func strptr(s string) *string { return &s }

func render(t *testing.T, tables []*core.Table, opts Options) string {
	t.Helper()
	opts.Dialect = core.DialectMySQL
	f, err := NewFormatter("typescript", dialect.NewTypeMapper(true), opts)
	require.NoError(t, err)
	out, err := f.FormatTables(tables)
	require.NoError(t, err)
	return out
}

func usersTable() *core.Table {
	return &core.Table{
		Name: "users",
		Fields: []*core.Field{
			{Name: "id", Type: "INT", Nullable: false},
			{Name: "email", Type: "VARCHAR(255)", Nullable: false},
			{Name: "bio", Type: "TEXT", Nullable: true},
			{Name: "created_at", Type: "TIMESTAMP", Nullable: true, DefaultValue: strptr("CURRENT_TIMESTAMP")},
		},
	}
}

func TestFormatTablesInterface(t *testing.T) {
	out := render(t, []*core.Table{usersTable()}, DefaultOptions())

	assert.Equal(t, `export interface Users {
  id: number;
  email: string;
  bio: string | null;
  created_at?: Date;
}
`, out)
}

func TestFormatTablesTypeAlias(t *testing.T) {
	opts := DefaultOptions()
	opts.Export = ExportType
	out := render(t, []*core.Table{usersTable()}, opts)

	assert.Contains(t, out, "export type Users = {")
	assert.Contains(t, out, "};\n")
}

func TestFormatTablesOptionalFields(t *testing.T) {
	opts := DefaultOptions()
	opts.OptionalFields = true
	out := render(t, []*core.Table{usersTable()}, opts)

	// Every property is optional, so no " | null" union remains.
	assert.Contains(t, out, "bio?: string;")
	assert.NotContains(t, out, "| null")
}

func TestFormatTablesPrefixSuffixNaming(t *testing.T) {
	opts := DefaultOptions()
	opts.Prefix = "Db"
	opts.Suffix = "Row"
	opts.Naming = NamingPascalCase
	out := render(t, []*core.Table{{
		Name:   "user_accounts",
		Fields: []*core.Field{{Name: "id", Type: "INT"}},
	}}, opts)

	assert.Contains(t, out, "export interface DbUserAccountsRow {")
}

func TestFormatTablesComments(t *testing.T) {
	table := &core.Table{
		Name: "t",
		Fields: []*core.Field{
			{Name: "id", Type: "INT", Comment: "row id"},
		},
	}

	out := render(t, []*core.Table{table}, DefaultOptions())
	assert.Contains(t, out, "  /** row id */\n  id: number | null;")

	opts := DefaultOptions()
	opts.IncludeComments = false
	out = render(t, []*core.Table{table}, opts)
	assert.NotContains(t, out, "/**")
}

func TestFormatTablesQuotesInvalidPropertyNames(t *testing.T) {
	table := &core.Table{
		Name: "t",
		Fields: []*core.Field{
			{Name: "user name", Type: "TEXT"},
			{Name: "2fa", Type: "TINYINT(1)"},
		},
	}

	out := render(t, []*core.Table{table}, DefaultOptions())
	assert.Contains(t, out, "'user name': string | null;")
	assert.Contains(t, out, "'2fa': boolean | null;")
}

func TestFormatTablesBlankLineBetweenDeclarations(t *testing.T) {
	tables := []*core.Table{
		{Name: "a", Fields: []*core.Field{{Name: "id", Type: "INT"}}},
		{Name: "b", Fields: []*core.Field{{Name: "id", Type: "INT"}}},
	}

	out := render(t, tables, DefaultOptions())
	assert.Contains(t, out, "}\n\nexport interface B {")
}

func TestFormatTablesStrictMappingFailure(t *testing.T) {
	f, err := NewFormatter("ts", dialect.NewTypeMapper(true), Options{Dialect: core.DialectMySQL})
	require.NoError(t, err)

	_, err = f.FormatTables([]*core.Table{{
		Name:   "t",
		Fields: []*core.Field{{Name: "shape", Type: "GEOMETRY"}},
	}})
	require.Error(t, err)
	var terr *core.TypeMappingError
	assert.ErrorAs(t, err, &terr)
	assert.Contains(t, err.Error(), `field "shape" of table "t"`)
}

func TestNewFormatterValidation(t *testing.T) {
	mapper := dialect.NewTypeMapper(false)

	_, err := NewFormatter("yaml", mapper, DefaultOptions())
	assert.Error(t, err)

	opts := DefaultOptions()
	opts.Naming = "SCREAMING_SNAKE"
	_, err = NewFormatter("typescript", mapper, opts)
	var cerr *core.ConfigurationError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "naming", cerr.Option)

	opts = DefaultOptions()
	opts.Export = "class"
	_, err = NewFormatter("", mapper, opts)
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "export", cerr.Option)
}
