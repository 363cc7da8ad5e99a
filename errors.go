package dedupe

import (
	"errors"
	"fmt"

	"github.com/hupe1980/dedupe/engine"
	"github.com/hupe1980/dedupe/partition"
)

var (
	// ErrMissingOracle is returned when no similarity oracle is provided.
	ErrMissingOracle = errors.New("similarity oracle is required")

	// ErrInvalidNodeCount is returned when the node count is not positive.
	ErrInvalidNodeCount = errors.New("node count must be positive")
)

// ErrRecordCountMismatch indicates that the declared record count does not
// match the actual record set length.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrRecordCountMismatch struct {
	Expected int
	Actual   int
	cause    error
}

func (e *ErrRecordCountMismatch) Error() string {
	return fmt.Sprintf("record count mismatch: expected %d, got %d", e.Expected, e.Actual)
}

func (e *ErrRecordCountMismatch) Unwrap() error { return e.cause }

// ErrInvalidPartitioning indicates a supplied partitioning that does not
// assign every record index exactly once.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrInvalidPartitioning struct {
	Index  int
	Reason string
	cause  error
}

func (e *ErrInvalidPartitioning) Error() string {
	return fmt.Sprintf("invalid partitioning: index %d %s", e.Index, e.Reason)
}

func (e *ErrInvalidPartitioning) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	// Configuration normalization.
	if errors.Is(err, engine.ErrMissingOracle) {
		return fmt.Errorf("%w: %w", ErrMissingOracle, err)
	}
	if errors.Is(err, partition.ErrInvalidNodeCount) {
		return fmt.Errorf("%w: %w", ErrInvalidNodeCount, err)
	}

	var rcm *engine.ErrRecordCountMismatch
	if errors.As(err, &rcm) {
		return &ErrRecordCountMismatch{Expected: rcm.Expected, Actual: rcm.Actual, cause: err}
	}
	var ip *partition.ErrInvalidPartitioning
	if errors.As(err, &ip) {
		return &ErrInvalidPartitioning{Index: ip.Index, Reason: ip.Reason, cause: err}
	}

	return err
}
