package storage

import "fmt"

// NotFoundError reports that a lookup matched nothing.
type NotFoundError struct {
	// Entity names what was looked up ("subscriber", "bill", ...).
	Entity string
	Key    string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Entity)
	}
	return fmt.Sprintf("%s not found: %s", e.Entity, e.Key)
}

// ConflictError reports a uniqueness or concurrent-modification violation.
// Callers seeding data idempotently may treat it as "already exists".
type ConflictError struct {
	Entity string
	Field  string
	Value  string
}

func (e *ConflictError) Error() string {
	if e.Field == "version" {
		return fmt.Sprintf("%s %s was modified concurrently", e.Entity, e.Value)
	}
	return fmt.Sprintf("%s with %s %q already exists", e.Entity, e.Field, e.Value)
}

// ReferenceError reports that a referenced row does not exist.
type ReferenceError struct {
	Entity string
	ID     int64
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("referenced %s %d does not exist", e.Entity, e.ID)
}

// ValidationError reports a value rejected before it reached the database.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NewStaleBillError is returned by SaveBill when the stored version no
// longer matches the one the caller read.
func NewStaleBillError(billID, version int64) *ConflictError {
	return &ConflictError{Entity: "bill", Field: "version", Value: fmt.Sprintf("%d@%d", billID, version)}
}
