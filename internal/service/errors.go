package service

import "fmt"

// UnsupportedOperationError marks an operation the applier refuses outright:
// delete ops and unrecognized entity kinds.
type UnsupportedOperationError struct {
	Entity string
	OpType string
}

func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("unsupported operation %q for entity %q", e.OpType, e.Entity)
}

// ValidationError marks a payload that failed its entity schema before any
// store write was attempted.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}
