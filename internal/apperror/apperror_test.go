package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorUnwrapsToSentinel(t *testing.T) {
	cases := []struct {
		err      *AppError
		sentinel error
		kind     string
	}{
		{Validation(ReasonEmptyIngredients, "ingredients", "empty"), ErrValidation, "validation_error"},
		{NotFound("recipe", "42"), ErrNotFound, "not_found"},
		{Conflict(ReasonAlreadyExists, "exists"), ErrConflict, "conflict"},
		{Forbidden("not yours"), ErrForbidden, "permission_denied"},
		{Unauthorized("bad credentials"), ErrUnauthorized, "unauthorized"},
	}

	for _, tc := range cases {
		wrapped := fmt.Errorf("service: %w", tc.err)
		assert.True(t, errors.Is(wrapped, tc.sentinel))
		assert.Equal(t, tc.kind, tc.err.Kind())
	}
}

func TestReasonOf(t *testing.T) {
	err := fmt.Errorf("follow: %w", Conflict(ReasonSelfFollow, "cannot follow yourself"))
	assert.Equal(t, ReasonSelfFollow, ReasonOf(err))
	assert.Equal(t, "", ReasonOf(errors.New("plain")))
}

func TestNotFoundMessage(t *testing.T) {
	err := NotFound("recipe", "abc")
	assert.Equal(t, "recipe not found with id abc", err.Error())
	assert.Equal(t, ReasonNotFound, err.Reason)
}
