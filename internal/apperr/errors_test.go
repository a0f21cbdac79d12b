package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindsSurviveWrapping(t *testing.T) {
	wrapped := fmt.Errorf("submit: %w", Validation("rating", "must be between 1 and 5"))
	assert.True(t, IsValidation(wrapped))
	assert.False(t, IsNotFound(wrapped))
	assert.Equal(t, "submit: validation: rating: must be between 1 and 5", wrapped.Error())

	assert.True(t, IsNotFound(NotFound("session", "abc")))
	assert.Equal(t, "session abc not found", NotFound("session", "abc").Error())
	assert.True(t, IsAuth(Unauthorized("")))
	assert.Equal(t, "unauthorized", Unauthorized("").Error())
}

func TestTransientUnwraps(t *testing.T) {
	cause := errors.New("connection refused")
	err := Transient("list sessions", cause)
	assert.True(t, IsTransient(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "list sessions: connection refused", err.Error())
}
