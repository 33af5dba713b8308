package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrValidation   = errors.New("validation error")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
)

// Machine-readable reasons carried by AppError.
const (
	ReasonEmptyIngredients    = "empty_ingredients"
	ReasonDuplicateIngredient = "duplicate_ingredient"
	ReasonInvalidCookingTime  = "invalid_cooking_time"
	ReasonInvalidAmount       = "invalid_amount"
	ReasonInvalidField        = "invalid_field"
	ReasonUnknownReference    = "unknown_reference"
	ReasonInvalidPassword     = "invalid_password"
	ReasonInvalidImage        = "invalid_image"

	ReasonNotFound     = "not_found"
	ReasonNotFollowing = "not_following"

	ReasonAlreadyExists    = "already_exists"
	ReasonAlreadyFollowing = "already_following"
	ReasonSelfFollow       = "self_follow_not_allowed"
	ReasonDuplicateUser    = "duplicate_user"

	ReasonNotOwner           = "not_owner"
	ReasonInvalidCredentials = "invalid_credentials"
)

type AppError struct {
	Err     error  // one of the sentinels above
	Reason  string // machine-readable reason
	Field   string // optional: field causing the error
	Message string // human-readable message
}

func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Err.Error()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Kind names the error class for API responses.
func (e *AppError) Kind() string {
	switch {
	case errors.Is(e.Err, ErrValidation):
		return "validation_error"
	case errors.Is(e.Err, ErrNotFound):
		return "not_found"
	case errors.Is(e.Err, ErrConflict):
		return "conflict"
	case errors.Is(e.Err, ErrForbidden):
		return "permission_denied"
	case errors.Is(e.Err, ErrUnauthorized):
		return "unauthorized"
	}
	return "error"
}

func Validation(reason, field, message string) *AppError {
	return &AppError{Err: ErrValidation, Reason: reason, Field: field, Message: message}
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Reason:  ReasonNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

// NotFoundReason is NotFound with a custom reason, e.g. not_following.
func NotFoundReason(reason, message string) *AppError {
	return &AppError{Err: ErrNotFound, Reason: reason, Message: message}
}

func Conflict(reason, message string) *AppError {
	return &AppError{Err: ErrConflict, Reason: reason, Message: message}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{Err: ErrForbidden, Reason: ReasonNotOwner, Message: message}
}

func Unauthorized(message string) *AppError {
	return &AppError{Err: ErrUnauthorized, Reason: ReasonInvalidCredentials, Message: message}
}

// ReasonOf returns the reason of the first AppError in err's chain.
func ReasonOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Reason
	}
	return ""
}
