package graph

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnresolvedRelation = errors.New("unresolved relation target")
	ErrDuplicateModel     = errors.New("duplicate model name")
	ErrMalformedRelation  = errors.New("malformed relation")
	ErrCycle              = errors.New("circular dependency detected")
)

// UnresolvedRelationError reports a relation whose target model is not part
// of the model set.
type UnresolvedRelationError struct {
	Model  string
	Field  string
	Target string
}

func (e *UnresolvedRelationError) Error() string {
	return fmt.Sprintf("%s: %s.%s references unknown model %q", ErrUnresolvedRelation, e.Model, e.Field, e.Target)
}

func (e *UnresolvedRelationError) Unwrap() error { return ErrUnresolvedRelation }

// CycleError lists every model that could not be placed in a rank group.
type CycleError struct {
	Models []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%s involving models: %s", ErrCycle, strings.Join(e.Models, ", "))
}

func (e *CycleError) Unwrap() error { return ErrCycle }
