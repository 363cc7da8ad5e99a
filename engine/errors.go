package engine

import (
	"errors"
	"fmt"
)

// ErrMissingOracle is returned when no similarity oracle is configured.
//
// This is an engine-layer sentinel used internally; the dedupe package may
// translate it into its public error contract.
var ErrMissingOracle = errors.New("similarity oracle is required")

// ErrRecordCountMismatch indicates that the configured record count does
// not match the number of records actually supplied.
type ErrRecordCountMismatch struct {
	Expected int
	Actual   int
}

func (e *ErrRecordCountMismatch) Error() string {
	return fmt.Sprintf("record count mismatch: expected %d, got %d", e.Expected, e.Actual)
}
