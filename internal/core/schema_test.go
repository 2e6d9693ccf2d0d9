package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidDialect(t *testing.T) {
	assert.True(t, IsValidDialect("mysql"))
	assert.True(t, IsValidDialect("PostgreSQL"))
	assert.True(t, IsValidDialect("AUTO"))
	assert.False(t, IsValidDialect("oracle"))
	assert.False(t, IsValidDialect(""))
}

func TestTableHelpers(t *testing.T) {
	table := &Table{
		Name: "users",
		Fields: []*Field{
			{Name: "id", Type: "INT", Constraints: []FieldConstraint{{Type: FieldPrimaryKey}}},
			{Name: "email", Type: "VARCHAR(255)"},
		},
		Constraints: []*TableConstraint{
			{Type: TableUnique, Fields: []string{"email"}},
			{Type: TablePrimaryKey, Fields: []string{"id"}},
		},
	}

	require.NotNil(t, table.FindField("EMAIL"), "lookup is case-insensitive")
	assert.Nil(t, table.FindField("missing"))

	pk := table.PrimaryKey()
	require.NotNil(t, pk)
	assert.Equal(t, []string{"id"}, pk.Fields)

	assert.True(t, table.Fields[0].IsPrimaryKey())
	assert.False(t, table.Fields[1].IsPrimaryKey())
	assert.False(t, table.Fields[1].HasConstraint(FieldUnique))

	assert.Equal(t, "Table: users (2 fields, 2 constraints)", table.String())
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "parse error: no CREATE TABLE statements found",
		(&ParseError{Msg: "no CREATE TABLE statements found"}).Error())
	assert.Equal(t, `parse error in table "users" (line 3): bad field`,
		(&ParseError{Msg: "bad field", Table: "users", Line: 3}).Error())
	assert.Equal(t, `parse error in table "users": bad field`,
		(&ParseError{Msg: "bad field", Table: "users"}).Error())

	assert.Equal(t, `no mysql type mapping for SQL type "GEOMETRY"`,
		(&TypeMappingError{SQLType: "GEOMETRY", Dialect: DialectMySQL}).Error())

	assert.Equal(t, `invalid naming "kebab"; valid values: [camelCase]`,
		(&ConfigurationError{Option: "naming", Value: "kebab", Valid: []string{"camelCase"}}).Error())
	assert.Equal(t, `invalid naming "kebab"`,
		(&ConfigurationError{Option: "naming", Value: "kebab"}).Error())

	assert.Equal(t, "invalid input: input is empty",
		(&InputError{Msg: "input is empty"}).Error())
}
