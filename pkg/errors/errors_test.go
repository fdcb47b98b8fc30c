package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypeOf_WrappedAppError(t *testing.T) {
	base := NewValidationError("Maximum 6 days can be selected")
	wrapped := fmt.Errorf("toggle: %w", base)

	assert.Equal(t, ErrorTypeValidation, TypeOf(wrapped))
	assert.True(t, Is(wrapped, ErrorTypeValidation))
	assert.False(t, Is(wrapped, ErrorTypeNetwork))
}

func TestTypeOf_PlainError(t *testing.T) {
	assert.Equal(t, ErrorTypeInternal, TypeOf(stderrors.New("boom")))
	assert.False(t, Is(nil, ErrorTypeInternal))
}

func TestMessageOf(t *testing.T) {
	t.Run("network error keeps the remote message", func(t *testing.T) {
		err := NewNetworkError("Error loading calendar data", stderrors.New("connection refused"))
		assert.Equal(t, "Error loading calendar data: connection refused", MessageOf(err))
	})

	t.Run("validation error has no kind prefix", func(t *testing.T) {
		err := NewFieldValidationError("invalid form", map[string]string{"email": "Email is required"})
		assert.Equal(t, "invalid form", MessageOf(err))
		assert.Equal(t, "Email is required", err.Fields["email"])
	})

	t.Run("nil", func(t *testing.T) {
		assert.Empty(t, MessageOf(nil))
	})
}

func TestAppError_Unwrap(t *testing.T) {
	cause := stderrors.New("pq: relation does not exist")
	err := NewInternalError("failed to list dates", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "INTERNAL: failed to list dates")
}
