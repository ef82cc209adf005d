/*
errors.go - Centralized error taxonomy for the placement core

PURPOSE:
  Three categories cover every failure the core can report:

  1. Validation - missing/invalid input (missing salary on join, no vacancy)
  2. Not found  - referenced entity missing or inactive
  3. Conflict   - a mutual-exclusion rule already holds (duplicate join,
                  already employed, unique email/mobile, overpayment)

  Nothing is retried and nothing is swallowed: every failure aborts the
  enclosing transaction and surfaces to the caller. The store translates
  raw unique-constraint violations into Conflict before they escape.

USAGE:
  if placement.IsConflict(err) { ... }      // 409 at the API layer
  errors.Is(err, placement.ErrNotFound)     // also works

SEE ALSO:
  - engine.go: producer of most of these
  - store/sqlite: constraint-violation translation
*/
package placement

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrValidation is the root of all bad-input failures.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when a referenced entity is missing or inactive.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when state already satisfies a mutual-exclusion
	// rule: duplicate join, already-employed, unique-key violation, overpayment.
	ErrConflict = errors.New("conflict")
)

// =============================================================================
// STRUCTURED ERRORS - Carry context, unwrap to the sentinels
// =============================================================================

// ValidationError reports a bad or missing input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NotFoundError reports a missing or inactive entity.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// ConflictError reports a violated mutual-exclusion rule.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string { return e.Reason }

func (e *ConflictError) Unwrap() error { return ErrConflict }

// =============================================================================
// CLASSIFIERS
// =============================================================================

// IsValidation reports whether err is a bad-input failure.
func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }

// IsNotFound reports whether err is a missing/inactive-entity failure.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsConflict reports whether err is a mutual-exclusion failure.
func IsConflict(err error) bool { return errors.Is(err, ErrConflict) }
