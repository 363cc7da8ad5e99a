package cli

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExitError(t *testing.T) {
	plain := NewExitError(ExitCommandError, "bad flags")
	assert.Equal(t, "bad flags", plain.Error())
	assert.Nil(t, plain.Unwrap())

	cause := errors.New("boom")
	wrapped := WrapExitError(ExitFailure, "run failed", cause)
	assert.Equal(t, "run failed: boom", wrapped.Error())
	assert.Equal(t, cause, wrapped.Unwrap())
	assert.ErrorIs(t, wrapped, cause)
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "x")))
	assert.Equal(t, ExitFailure, GetExitCode(NewExitError(ExitFailure, "x")))

	// Wrapped ExitErrors still carry their code.
	inner := WrapExitError(ExitCommandError, "x", errors.New("boom"))
	require.Equal(t, ExitCommandError, GetExitCode(fmt.Errorf("outer: %w", inner)))

	// Plain errors default to failure.
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("boom")))
}
