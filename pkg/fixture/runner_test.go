package fixture_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lumos-Labs-HQ/itrunner/pkg/fixture"
	"github.com/Lumos-Labs-HQ/itrunner/pkg/fixture/fixturetest"
)

type userSet struct {
	Users []fixture.Record
}

type userKeys struct {
	Users []string
}

var errDuplicate = errors.New("duplicate key")

type constraintError struct{ Table string }

func (e *constraintError) Error() string { return "constraint violated on " + e.Table }

func userEngine(autoCompleted *bool) fixture.Engine[userSet, userSet, userKeys] {
	return fixture.Engine[userSet, userSet, userKeys]{
		AutoComplete: func(rs *userSet) error {
			*autoCompleted = true
			return nil
		},
		Apply: func(ctx context.Context, db fixture.DB, rs *userSet) error {
			if rs.Users == nil {
				return nil
			}
			if err := fixture.DeleteAll(ctx, db, "users"); err != nil {
				return err
			}
			return db.InsertMany(ctx, "users", rs.Users)
		},
		Assert: func(ctx context.Context, db fixture.DB, want *userSet, assertFunc fixture.AssertFunc, keys userKeys) error {
			if want.Users == nil {
				return nil
			}
			rows, err := db.FindAll(ctx, "users")
			if err != nil {
				return err
			}
			if err := assertFunc(want.Users, rows, keys.Users); err != nil {
				return fmt.Errorf("users: %w", err)
			}
			return nil
		},
	}
}

func insertUser(rec fixture.Record) func(context.Context, fixture.DB) (fixture.Record, error) {
	return func(ctx context.Context, db fixture.DB) (fixture.Record, error) {
		rows, err := db.FindAll(ctx, "users")
		if err != nil {
			return nil, err
		}
		for _, r := range rows {
			if fixture.HasMatch([]fixture.Record{r}, "id", rec["id"]) {
				return nil, fmt.Errorf("insert user: %w", &constraintError{Table: "users"})
			}
		}
		if err := db.InsertMany(ctx, "users", []fixture.Record{rec}); err != nil {
			return nil, err
		}
		return rec, nil
	}
}

func TestRunSuccessPath(t *testing.T) {
	db := fixturetest.New(fixture.SQLite)
	db.Put("users", fixture.Record{"id": 99, "name": "stale"})
	var autoCompleted, returnsAsserted bool

	t.Run("insert", fixture.Run(db, fixture.Options{TestMode: true}, userEngine(&autoCompleted),
		fixture.TestCase[userSet, userSet, userKeys, fixture.Record]{
			RecordSet: userSet{Users: []fixture.Record{{"id": 1, "name": "naruto"}}},
			Method:    insertUser(fixture.Record{"id": 2, "name": "sasuke"}),
			Returns:   map[string]any{"name": "sasuke"},
			ReturnsAssert: func(t *testing.T, ret fixture.Record) {
				returnsAsserted = true
				assert.Equal(t, 2, ret["id"])
			},
			Mutates: &userSet{Users: []fixture.Record{
				{"id": 2, "name": "sasuke"},
				{"id": 1, "name": "naruto"},
			}},
			MutatesSortKey: userKeys{Users: []string{"name"}},
		}))

	assert.True(t, autoCompleted, "auto-complete must run before apply")
	assert.True(t, returnsAsserted)
	require.True(t, db.Closed(), "database handle must be released")
	assert.Len(t, db.Rows("users"), 2)
}

func TestRunExpectedError(t *testing.T) {
	tests := []struct {
		name     string
		throws   error
		throwsAs any
	}{
		{"any error", fixture.ErrAny, nil},
		{"errors.As target", nil, new(*constraintError)},
		{"both", fixture.ErrAny, new(*constraintError)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := fixturetest.New(fixture.SQLite)
			var autoCompleted bool

			t.Run("duplicate", fixture.Run(db, fixture.Options{TestMode: true}, userEngine(&autoCompleted),
				fixture.TestCase[userSet, userSet, userKeys, fixture.Record]{
					RecordSet: userSet{Users: []fixture.Record{{"id": 1, "name": "naruto"}}},
					Method:    insertUser(fixture.Record{"id": 1, "name": "sasuke"}),
					Throws:    tt.throws,
					ThrowsAs:  tt.throwsAs,
					Mutates:   &userSet{Users: []fixture.Record{{"id": 1, "name": "naruto"}}},
				}))

			assert.True(t, db.Closed())
		})
	}
}

func TestRunSentinelError(t *testing.T) {
	db := fixturetest.New(fixture.Postgres)
	var autoCompleted, asserted bool

	t.Run("sentinel", fixture.Run(db, fixture.Options{TestMode: true}, userEngine(&autoCompleted),
		fixture.TestCase[userSet, userSet, userKeys, *fixture.Record]{
			Method: func(ctx context.Context, db fixture.DB) (*fixture.Record, error) {
				return nil, fmt.Errorf("wrapped: %w", errDuplicate)
			},
			Throws: errDuplicate,
			Asserts: func(t *testing.T, db fixture.DB) {
				asserted = true
			},
		}))

	assert.True(t, asserted, "asserts run after an expected error")
	assert.True(t, db.Closed())
}

func TestRunReturnsNilAndPrehook(t *testing.T) {
	db := fixturetest.New(fixture.MySQL)
	var autoCompleted bool

	t.Run("nil", fixture.Run(db, fixture.Options{TestMode: true}, userEngine(&autoCompleted),
		fixture.TestCase[userSet, userSet, userKeys, *fixture.Record]{
			Method: func(ctx context.Context, db fixture.DB) (*fixture.Record, error) {
				return &fixture.Record{"id": 1}, nil
			},
			ReturnsPrehook: func(r *fixture.Record) (*fixture.Record, error) {
				assert.NotNil(t, r)
				return nil, nil
			},
			ReturnsNil: true,
		}))

	assert.True(t, db.Closed())
	assert.Empty(t, db.Tables("insert"), "nothing to apply for an empty record set")
}
