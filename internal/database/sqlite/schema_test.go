package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const blogDDL = `
CREATE TABLE users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	bio TEXT DEFAULT ''
);
CREATE TABLE course (
	code TEXT NOT NULL,
	year INTEGER NOT NULL,
	PRIMARY KEY (code, year)
);
CREATE TABLE enrollment (
	id INTEGER PRIMARY KEY,
	user_id INTEGER NOT NULL REFERENCES users ON DELETE CASCADE,
	course_code TEXT,
	course_year INTEGER,
	FOREIGN KEY (course_code, course_year) REFERENCES course(code, year)
);`

func TestGetCurrentSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blog.db")
	ctx := context.Background()

	raw, err := sql.Open(DriverPure, path)
	require.NoError(t, err)
	_, err = raw.Exec(blogDDL)
	require.NoError(t, err)
	require.NoError(t, raw.Close())

	adapter := NewWithDriver(DriverPure)
	require.NoError(t, adapter.Connect(ctx, "sqlite://"+path))
	defer adapter.Close()
	require.NoError(t, adapter.Ping(ctx))

	names, err := adapter.GetAllTableNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"course", "enrollment", "users"}, names)

	tables, err := adapter.GetCurrentSchema(ctx)
	require.NoError(t, err)
	require.Len(t, tables, 3)

	course, enrollment, users := tables[0], tables[1], tables[2]

	assert.True(t, course.Columns[0].IsPrimary)
	assert.True(t, course.Columns[1].IsPrimary)
	assert.False(t, course.Columns[1].IsAutoIncrement)

	assert.True(t, users.Columns[0].IsAutoIncrement, "AUTOINCREMENT key")
	assert.False(t, users.Columns[1].Nullable)
	assert.Equal(t, "''", users.Columns[2].Default)

	assert.False(t, enrollment.Columns[0].IsAutoIncrement, "rowid alias without AUTOINCREMENT")
	require.Len(t, enrollment.ForeignKeys, 2)

	byTable := map[string]int{}
	for i, fk := range enrollment.ForeignKeys {
		byTable[fk.RefTable] = i
	}
	userFK := enrollment.ForeignKeys[byTable["users"]]
	assert.Equal(t, []string{"user_id"}, userFK.Columns)
	assert.Empty(t, userFK.RefColumns, "implicit primary key reference")
	assert.Equal(t, "CASCADE", userFK.OnDelete)

	courseFK := enrollment.ForeignKeys[byTable["course"]]
	assert.Equal(t, []string{"course_code", "course_year"}, courseFK.Columns)
	assert.Equal(t, []string{"code", "year"}, courseFK.RefColumns)
}

func TestDSN(t *testing.T) {
	assert.Equal(t, "./data.db?cache=shared&_journal_mode=WAL&_foreign_keys=1", DSN("sqlite://./data.db", DriverCGO))
	assert.Equal(t, "./data.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)", DSN("./data.db", DriverPure))
	assert.Equal(t, "./data.db?mode=ro", DSN("sqlite://./data.db?mode=ro", DriverPure))
}
