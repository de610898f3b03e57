package fixture_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lumos-Labs-HQ/itrunner/pkg/fixture"
	"github.com/Lumos-Labs-HQ/itrunner/pkg/fixture/fixturetest"
)

func TestWithJSONNull(t *testing.T) {
	in := []fixture.Record{
		{"id": 1, "meta": nil},
		{"id": 2},
		{"id": 3, "meta": map[string]any{"a": 1}},
	}

	out := fixture.WithJSONNull(in, "meta")

	assert.Equal(t, fixture.JSONNull, out[0]["meta"])
	_, present := out[1]["meta"]
	assert.False(t, present, "absent JSON field must stay absent")
	assert.Equal(t, map[string]any{"a": 1}, out[2]["meta"])
	assert.Nil(t, in[0]["meta"], "input must not be modified")
}

func TestHasMatch(t *testing.T) {
	users := []fixture.Record{{"id": int64(5)}, {"id": nil}}

	assert.True(t, fixture.HasMatch(users, "id", 5))
	assert.False(t, fixture.HasMatch(users, "id", 6))
	assert.False(t, fixture.HasMatch(nil, "id", 5))
}

func TestSeedOverridesField(t *testing.T) {
	base := fixture.Record{"id": 0, "name": "x"}
	factory := func() fixture.Record { return base }

	got := fixture.Seed(factory, "id", 5)

	assert.Equal(t, fixture.Record{"id": 5, "name": "x"}, got)
	assert.Equal(t, 0, base["id"], "factory result must not be mutated")
}

func TestIsNull(t *testing.T) {
	var ptr *string
	assert.True(t, fixture.IsNull(nil))
	assert.True(t, fixture.IsNull(ptr))
	assert.True(t, fixture.IsNull(fixture.JSONNull))
	assert.False(t, fixture.IsNull(0))
	assert.False(t, fixture.IsNull(""))
}

func TestParseDialect(t *testing.T) {
	tests := map[string]fixture.Dialect{
		"postgresql": fixture.Postgres,
		"postgres":   fixture.Postgres,
		"mysql":      fixture.MySQL,
		"sqlite3":    fixture.SQLite,
	}
	for provider, want := range tests {
		got, err := fixture.ParseDialect(provider)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := fixture.ParseDialect("oracle")
	assert.Error(t, err)
}

func TestDeleteAllStatements(t *testing.T) {
	tests := []struct {
		dialect fixture.Dialect
		want    string
	}{
		{fixture.Postgres, `DELETE FROM "User"`},
		{fixture.MySQL, "DELETE FROM `User`"},
		{fixture.SQLite, `DELETE FROM "User"`},
	}

	for _, tt := range tests {
		t.Run(string(tt.dialect), func(t *testing.T) {
			db := fixturetest.New(tt.dialect)
			require.NoError(t, fixture.DeleteAll(context.Background(), db, "User"))

			ops := db.Ops()
			require.Len(t, ops, 1)
			assert.Equal(t, tt.want, ops[0].Stmt)
			assert.Equal(t, "User", ops[0].Table)
		})
	}
}

func TestResetSequenceStatements(t *testing.T) {
	tests := []struct {
		dialect fixture.Dialect
		want    []string
		args    [][]any
	}{
		{
			fixture.Postgres,
			[]string{`SELECT setval(pg_get_serial_sequence($1, $2), $3, false)`},
			[][]any{{`"users"`, "id", int64(10)}},
		},
		{
			fixture.MySQL,
			[]string{"ALTER TABLE `users` AUTO_INCREMENT = 10"},
			[][]any{nil},
		},
		{
			fixture.SQLite,
			[]string{
				"DELETE FROM sqlite_sequence WHERE name = ?",
				"INSERT INTO sqlite_sequence (name,seq) VALUES (?,?)",
			},
			[][]any{{"users"}, {"users", int64(9)}},
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.dialect), func(t *testing.T) {
			db := fixturetest.New(tt.dialect)
			require.NoError(t, fixture.ResetSequence(context.Background(), db, "users", "id", 10))

			ops := db.Ops()
			require.Len(t, ops, len(tt.want))
			for i, op := range ops {
				assert.Equal(t, tt.want[i], op.Stmt)
				if tt.args[i] == nil {
					assert.Empty(t, op.Args)
				} else {
					assert.Equal(t, tt.args[i], op.Args)
				}
			}
		})
	}
}
