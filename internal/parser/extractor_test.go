package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sql2ts/internal/core"
)

const usersPostsSQL = `
CREATE TABLE users (
	id INT PRIMARY KEY AUTO_INCREMENT,
	email VARCHAR(255) UNIQUE NOT NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE posts (
	id INT PRIMARY KEY AUTO_INCREMENT,
	user_id INT NOT NULL,
	title VARCHAR(200) NOT NULL,
	body TEXT,
	FOREIGN KEY (user_id) REFERENCES users(id)
);`

func TestExtractTablesTwoTables(t *testing.T) {
	tables, err := ExtractTables(usersPostsSQL, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, tables, 2)

	users := tables[0]
	assert.Equal(t, "users", users.Name)
	require.Len(t, users.Fields, 3)

	id := users.FindField("id")
	require.NotNil(t, id)
	assert.True(t, id.IsPrimaryKey())
	assert.True(t, id.HasConstraint(core.FieldAutoIncrement))
	assert.False(t, id.Nullable)

	email := users.FindField("email")
	require.NotNil(t, email)
	assert.True(t, email.HasConstraint(core.FieldUnique))
	assert.False(t, email.Nullable)

	createdAt := users.FindField("created_at")
	require.NotNil(t, createdAt)
	require.NotNil(t, createdAt.DefaultValue)
	assert.Equal(t, "CURRENT_TIMESTAMP", *createdAt.DefaultValue)

	posts := tables[1]
	assert.Equal(t, "posts", posts.Name)
	require.Len(t, posts.Fields, 4)

	var fk *core.TableConstraint
	for _, c := range posts.Constraints {
		if c.Type == core.TableForeignKey {
			fk = c
		}
	}
	require.NotNil(t, fk)
	assert.Equal(t, []string{"user_id"}, fk.Fields)
	require.NotNil(t, fk.Reference)
	assert.Equal(t, "users", fk.Reference.Table)
	assert.Equal(t, []string{"id"}, fk.Reference.Fields)
}

func TestExtractTablesDeterministic(t *testing.T) {
	first, err := ExtractTables(usersPostsSQL, DefaultOptions())
	require.NoError(t, err)
	second, err := ExtractTables(usersPostsSQL, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestExtractTablesCompositeConstraints(t *testing.T) {
	sql := `CREATE TABLE memberships (
		user_id INT NOT NULL,
		team_id INT NOT NULL,
		role VARCHAR(30),
		joined_at DATE,
		PRIMARY KEY (user_id, team_id),
		FOREIGN KEY (user_id) REFERENCES users(id),
		FOREIGN KEY (team_id) REFERENCES teams(id),
		UNIQUE KEY uq_user_role (user_id, role),
		INDEX idx_joined (joined_at)
	)`

	table, err := ExtractSingleTable(sql, DefaultOptions())
	require.NoError(t, err)

	pk := table.PrimaryKey()
	require.NotNil(t, pk)
	assert.Equal(t, []string{"user_id", "team_id"}, pk.Fields)

	byType := map[core.TableConstraintType]int{}
	for _, c := range table.Constraints {
		byType[c.Type]++
	}
	assert.Equal(t, 1, byType[core.TablePrimaryKey])
	assert.Equal(t, 2, byType[core.TableForeignKey])
	assert.Equal(t, 1, byType[core.TableUnique])
	assert.Equal(t, 1, byType[core.TableIndex])
}

func TestExtractTablesUniqueKeyNotCountedAsIndex(t *testing.T) {
	sql := `CREATE TABLE t (
		a INT,
		b INT,
		UNIQUE KEY uq_a (a),
		UNIQUE INDEX uq_b (b)
	)`

	table, err := ExtractSingleTable(sql, DefaultOptions())
	require.NoError(t, err)

	for _, c := range table.Constraints {
		assert.NotEqual(t, core.TableIndex, c.Type,
			"UNIQUE KEY must not be double-counted by the index scan")
	}
	count := 0
	for _, c := range table.Constraints {
		if c.Type == core.TableUnique {
			count++
		}
	}
	assert.Equal(t, 2, count)
}

func TestExtractTablesInlineUniqueBeforeCheck(t *testing.T) {
	sql := "CREATE TABLE t (flags INT UNIQUE CHECK (flags > 0))"

	table, err := ExtractSingleTable(sql, DefaultOptions())
	require.NoError(t, err)

	// The field-level UNIQUE must not surface as a table constraint just
	// because a parenthesized CHECK follows it.
	for _, c := range table.Constraints {
		assert.NotEqual(t, core.TableUnique, c.Type)
	}
	f := table.FindField("flags")
	require.NotNil(t, f)
	assert.True(t, f.HasConstraint(core.FieldUnique))
	assert.True(t, f.HasConstraint(core.FieldCheck))
}

func TestExtractTablesDuplicateNames(t *testing.T) {
	sql := "CREATE TABLE users (id INT); CREATE TABLE Users (id INT);"

	_, err := ExtractTables(sql, DefaultOptions())
	var perr *core.ParseError
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, perr.Msg, "duplicate")

	opts := DefaultOptions()
	opts.CaseSensitive = true
	tables, err := ExtractTables(sql, opts)
	require.NoError(t, err)
	assert.Len(t, tables, 2)
}

func TestExtractTablesLimits(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxTables = 1
	_, err := ExtractTables("CREATE TABLE a (id INT); CREATE TABLE b (id INT);", opts)
	var perr *core.ParseError
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, perr.Msg, "maximum")

	opts = DefaultOptions()
	opts.MaxFieldsPerTable = 2
	_, err = ExtractTables("CREATE TABLE a (x INT, y INT, z INT)", opts)
	require.ErrorAs(t, err, &perr)
}

func TestExtractTablesInvalidDialect(t *testing.T) {
	opts := DefaultOptions()
	opts.Dialect = "oracle"
	_, err := ExtractTables("CREATE TABLE t (id INT)", opts)
	var cerr *core.ConfigurationError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "dialect", cerr.Option)
}

func TestExtractTablesEmptyFieldList(t *testing.T) {
	_, err := ExtractTables("CREATE TABLE empty ()", DefaultOptions())
	var perr *core.ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "empty", perr.Table)
}

func TestExtractTablesCommentToggle(t *testing.T) {
	sql := "CREATE TABLE t (id INT COMMENT 'row id')"

	table, err := ExtractSingleTable(sql, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "row id", table.Fields[0].Comment)

	opts := DefaultOptions()
	opts.IncludeComments = false
	table, err = ExtractSingleTable(sql, opts)
	require.NoError(t, err)
	assert.Empty(t, table.Fields[0].Comment)
}

func TestExtractSingleTableRejectsMultiple(t *testing.T) {
	_, err := ExtractSingleTable("CREATE TABLE a (id INT); CREATE TABLE b (id INT);", DefaultOptions())
	var perr *core.ParseError
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, perr.Msg, "exactly one")
}

func TestHasValidTables(t *testing.T) {
	assert.True(t, HasValidTables("CREATE TABLE t (id INT)"))
	assert.False(t, HasValidTables("SELECT 1"))
	assert.False(t, HasValidTables(""))
	assert.False(t, HasValidTables("CREATE TABLE t (id INT"))
}
