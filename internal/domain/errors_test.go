package domain

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFailureMessage(t *testing.T) {
	t.Parallel()

	modelErr := errors.New("model unavailable")

	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "empty input", err: fmt.Errorf("run: %w", ErrEmptyInput), want: EmptyInputMessage},
		{name: "timeout", err: &TimeoutError{After: 2 * time.Second}, want: "task timed out after 2s"},
		{
			name: "collaborator message kept verbatim",
			err:  fmt.Errorf("classify item 3: %w", NewCollaboratorError("classifier", modelErr)),
			want: "model unavailable",
		},
		{name: "other", err: errors.New("boom"), want: "boom"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, FailureMessage(tc.err))
		})
	}
}

func TestCollaboratorError(t *testing.T) {
	t.Parallel()

	assert.Nil(t, NewCollaboratorError("source", nil))

	inner := errors.New("connection refused")
	err := NewCollaboratorError("source", inner)
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, "connection refused", err.Error())

	// Already wrapped errors are not wrapped twice.
	assert.Same(t, err, NewCollaboratorError("classifier", err))
}

func TestTimeoutErrorUnwrap(t *testing.T) {
	t.Parallel()

	err := &TimeoutError{After: time.Minute}
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestValidationErrorMessage(t *testing.T) {
	t.Parallel()

	err := NewValidationError("pairs", "at least one classification pair is required")
	assert.Equal(t, "validation failed: pairs: at least one classification pair is required", err.Error())
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "validation failed", (&ValidationError{}).Error())
}
