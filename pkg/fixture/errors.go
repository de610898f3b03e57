package fixture

import (
	"errors"
	"fmt"
)

var (
	ErrMissingSeeder  = errors.New("seeder is not defined")
	ErrNotTestMode    = errors.New("integration test runner should only be used in test mode")
	ErrLengthMismatch = errors.New("record count mismatch")
	ErrFieldMismatch  = errors.New("field mismatch")

	// ErrAny can be used as TestCase.Throws to accept any error.
	ErrAny = errors.New("any error")
)

// MissingSeederError is returned by auto-completion when a parent record has
// to be synthesized for a model that has no seeder.
type MissingSeederError struct {
	Model string
}

func (e *MissingSeederError) Error() string {
	return fmt.Sprintf("seeder for %s is not defined", e.Model)
}

func (e *MissingSeederError) Unwrap() error { return ErrMissingSeeder }

// MismatchError describes the first differing field of a record comparison.
// Index is -1 when the comparison was not positional.
type MismatchError struct {
	Index    int
	Field    string
	Expected any
	Actual   any
	Missing  bool
}

func (e *MismatchError) Error() string {
	prefix := ""
	if e.Index >= 0 {
		prefix = fmt.Sprintf("record %d: ", e.Index)
	}
	if e.Missing {
		return fmt.Sprintf("%sfield %q: expected %v, field is missing", prefix, e.Field, e.Expected)
	}
	return fmt.Sprintf("%sfield %q: expected %v (%T), got %v (%T)", prefix, e.Field, e.Expected, e.Expected, e.Actual, e.Actual)
}

func (e *MismatchError) Unwrap() error { return ErrFieldMismatch }
