package introspect

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mysql"

	"sql2ts/internal/core"
)

const mysqlTestSchema = `
CREATE TABLE users (
	id INT AUTO_INCREMENT PRIMARY KEY,
	email VARCHAR(255) NOT NULL UNIQUE,
	active TINYINT(1) DEFAULT 1,
	bio TEXT COMMENT 'profile text'
);
CREATE TABLE posts (
	id INT AUTO_INCREMENT PRIMARY KEY,
	user_id INT NOT NULL,
	title VARCHAR(200) NOT NULL,
	CONSTRAINT fk_posts_user FOREIGN KEY (user_id) REFERENCES users(id),
	INDEX idx_posts_title (title)
);`

func TestMySQLIntrospectIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	dsn := setupMySQL(t)

	in, err := Connect(ctx, core.DialectMySQL, dsn)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := in.Close(context.Background()); err != nil {
			t.Errorf("failed to close database connection: %v", err)
		}
	})

	t.Run("all tables", func(t *testing.T) {
		tables, err := in.Introspect(ctx, nil)
		require.NoError(t, err)
		require.Len(t, tables, 2)
		assert.Equal(t, "posts", tables[0].Name)
		assert.Equal(t, "users", tables[1].Name)
	})

	t.Run("users fields", func(t *testing.T) {
		tables, err := in.Introspect(ctx, []string{"users"})
		require.NoError(t, err)
		require.Len(t, tables, 1)

		users := tables[0]
		id := users.FindField("id")
		require.NotNil(t, id)
		assert.True(t, id.IsPrimaryKey())
		assert.True(t, id.HasConstraint(core.FieldAutoIncrement))
		assert.False(t, id.Nullable)

		email := users.FindField("email")
		require.NotNil(t, email)
		assert.True(t, email.HasConstraint(core.FieldUnique))
		assert.False(t, email.Nullable)

		active := users.FindField("active")
		require.NotNil(t, active)
		assert.Equal(t, "tinyint(1)", active.Type)
		require.NotNil(t, active.DefaultValue)
		assert.Equal(t, "1", *active.DefaultValue)

		bio := users.FindField("bio")
		require.NotNil(t, bio)
		assert.Equal(t, "profile text", bio.Comment)
	})

	t.Run("posts constraints", func(t *testing.T) {
		tables, err := in.Introspect(ctx, []string{"posts"})
		require.NoError(t, err)
		require.Len(t, tables, 1)

		posts := tables[0]
		pk := posts.PrimaryKey()
		require.NotNil(t, pk)
		assert.Equal(t, []string{"id"}, pk.Fields)

		var fk, idx *core.TableConstraint
		for _, c := range posts.Constraints {
			switch c.Type {
			case core.TableForeignKey:
				fk = c
			case core.TableIndex:
				idx = c
			}
		}
		require.NotNil(t, fk)
		assert.Equal(t, []string{"user_id"}, fk.Fields)
		assert.Equal(t, "users", fk.Reference.Table)
		assert.Equal(t, []string{"id"}, fk.Reference.Fields)

		require.NotNil(t, idx)
		assert.Equal(t, []string{"title"}, idx.Fields)
	})

	t.Run("missing table fails", func(t *testing.T) {
		_, err := in.Introspect(ctx, []string{"nope"})
		assert.Error(t, err)
	})
}

func TestMySQLConnectInvalidDSN(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	_, err := Connect(context.Background(), core.DialectMySQL, "invalid:user@tcp(127.0.0.1:1)/nope")
	assert.Error(t, err)
}

func setupMySQL(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	mysqlContainer, err := mysql.Run(ctx, "mysql:8.0",
		mysql.WithDatabase("testdb"),
		mysql.WithUsername("root"),
		mysql.WithPassword("testpass"),
	)
	require.NoError(t, err, "failed to start MySQL container")

	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(mysqlContainer); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	dsn, err := mysqlContainer.ConnectionString(ctx, "parseTime=true", "multiStatements=true")
	require.NoError(t, err, "failed to get connection string")

	db, err := sql.Open("mysql", dsn)
	require.NoError(t, err, "failed to open direct DB connection")
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("failed to close DB connection: %v", err)
		}
	})

	_, err = db.ExecContext(ctx, mysqlTestSchema)
	require.NoError(t, err, "failed to apply test schema")

	return dsn
}
