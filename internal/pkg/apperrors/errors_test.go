package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCustomErrorUnwrapsToSentinel(t *testing.T) {
	err := fmt.Errorf("service layer: %w", NewForbiddenError("only the owning college can edit this event"))

	assert.True(t, errors.Is(err, ErrPermissionDenied))
	assert.Equal(t, "only the owning college can edit this event", Message(err))
}

func TestMessageFallsBackToErrorText(t *testing.T) {
	assert.Equal(t, "resource not found", Message(ErrResourceNotFound))
	assert.Equal(t, "", Message(nil))
}

func TestIsMatchesAnyOfList(t *testing.T) {
	err := fmt.Errorf("wrap: %w", ErrTokenRevoked)

	assert.True(t, Is(err, ErrTokenExpired, ErrTokenInvalid, ErrTokenRevoked))
	assert.False(t, Is(err, ErrTokenExpired, ErrTokenInvalid))
}

func TestNewValidationErrorCarriesField(t *testing.T) {
	err := NewValidationError("price", "price is required for paid events")

	var ce *CustomError
	assert.True(t, errors.As(err, &ce))
	assert.Equal(t, "price", ce.Details["field"])
	assert.True(t, errors.Is(err, ErrValidationFailed))
}
