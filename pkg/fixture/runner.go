package fixture

import (
	"context"
	"errors"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/stretchr/testify/require"
)

// Options is threaded into Run by the test harness.
type Options struct {
	// TestMode must be true; Run refuses to touch the database otherwise.
	TestMode bool
}

// Engine binds the generated operations of one schema. RS is the record set
// type, A the assertion record set and K the sort-key set.
type Engine[RS, A, K any] struct {
	AutoComplete func(rs *RS) error
	Apply        func(ctx context.Context, db DB, rs *RS) error
	Assert       func(ctx context.Context, db DB, want *A, assertFunc AssertFunc, keys K) error
}

// TestCase describes one integration test: initial state, the method under
// test and its expected outcome.
type TestCase[RS, A, K, R any] struct {
	// State of the database before the method runs.
	RecordSet RS

	Method func(ctx context.Context, db DB) (R, error)

	// Returns is matched against the result as a partial JSON document.
	Returns any
	// ReturnsNil requires a nil result.
	ReturnsNil bool
	// ReturnsPrehook transforms the result before any comparison.
	ReturnsPrehook func(R) (R, error)
	Snapshot       bool
	ReturnsAssert  func(t *testing.T, ret R)

	// Throws is matched with errors.Is. Use ErrAny to accept any error.
	Throws error
	// ThrowsAs is a pointer target for errors.As.
	ThrowsAs any

	Asserts func(t *testing.T, db DB)

	// Mutates is the expected state after the method ran.
	Mutates        *A
	MutatesSortKey K
}

// Run returns a test function executing tc against db. The handle is closed
// when the test function returns, whether it passed or not.
func Run[RS, A, K, R any](db DB, opts Options, engine Engine[RS, A, K], tc TestCase[RS, A, K, R]) func(*testing.T) {
	return func(t *testing.T) {
		defer func() {
			if err := db.Close(); err != nil {
				t.Errorf("failed to close database handle: %v", err)
			}
		}()

		if !opts.TestMode {
			t.Fatal(ErrNotTestMode)
		}

		ctx := t.Context()
		rs := tc.RecordSet
		if engine.AutoComplete != nil {
			require.NoError(t, engine.AutoComplete(&rs), "auto-complete record set")
		}
		require.NoError(t, engine.Apply(ctx, db, &rs), "apply record set")

		if tc.Throws != nil || tc.ThrowsAs != nil {
			_, err := tc.Method(ctx, db)
			require.Error(t, err, "method was expected to fail")
			if tc.Throws != nil && !errors.Is(tc.Throws, ErrAny) {
				require.ErrorIs(t, err, tc.Throws)
			}
			if tc.ThrowsAs != nil {
				require.ErrorAs(t, err, tc.ThrowsAs)
			}
			checkState(ctx, t, db, engine, tc)
			return
		}

		ret, err := tc.Method(ctx, db)
		require.NoError(t, err)
		if tc.ReturnsPrehook != nil {
			ret, err = tc.ReturnsPrehook(ret)
			require.NoError(t, err, "returns prehook")
		}

		if tc.ReturnsNil {
			require.Nil(t, ret)
		}
		if tc.Returns != nil {
			require.NoError(t, MatchJSON(tc.Returns, ret), "returned value")
		}
		if tc.Snapshot {
			snaps.MatchSnapshot(t, ret)
		}
		if tc.ReturnsAssert != nil {
			tc.ReturnsAssert(t, ret)
		}
		checkState(ctx, t, db, engine, tc)
	}
}

func checkState[RS, A, K, R any](ctx context.Context, t *testing.T, db DB, engine Engine[RS, A, K], tc TestCase[RS, A, K, R]) {
	t.Helper()
	if tc.Asserts != nil {
		tc.Asserts(t, db)
	}
	if tc.Mutates != nil {
		require.NoError(t, engine.Assert(ctx, db, tc.Mutates, CompareRecords, tc.MutatesSortKey), "mutated state")
	}
}
