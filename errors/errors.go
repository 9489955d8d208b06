package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// Authentication failures stay generic: a wrong password and an unknown
	// username must be indistinguishable to the caller.
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrInvalidPassword    = fmt.Errorf("password does not meet complexity requirements")
	ErrValidation         = fmt.Errorf("invalid request")
	ErrTokenGeneration    = fmt.Errorf("token generation failed")
	ErrInvalidToken       = fmt.Errorf("invalid token")
	ErrTokenExpired       = fmt.Errorf("token expired")

	ErrUsernameTaken = fmt.Errorf("username already taken")
	ErrEmailTaken    = fmt.Errorf("email already taken")
	ErrUserNotFound  = fmt.Errorf("user not found")

	ErrChannelNameTaken = fmt.Errorf("channel name already taken")
	ErrChannelNotFound  = fmt.Errorf("channel not found")

	ErrMessageNotFound = fmt.Errorf("message not found")
	ErrNotAMember      = fmt.Errorf("user is not a member of the channel")
	ErrNotOwner        = fmt.Errorf("user is not the owner of the message")
)

// Is re-exports the standard library matcher so packages that import this
// one under the errors name do not need a second aliased import.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// MapToStatus converts a domain error into the HTTP status the boundary
// layer answers with. "Not found" and "forbidden" are kept distinct on
// purpose. Errors matching no sentinel are reported as 500 without leaking
// their message to the client.
func MapToStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrInvalidToken),
		errors.Is(err, ErrTokenExpired):
		return http.StatusUnauthorized
	case errors.Is(err, ErrUsernameTaken),
		errors.Is(err, ErrEmailTaken),
		errors.Is(err, ErrChannelNameTaken):
		return http.StatusConflict
	case errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrChannelNotFound),
		errors.Is(err, ErrMessageNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrNotAMember),
		errors.Is(err, ErrNotOwner):
		return http.StatusForbidden
	case errors.Is(err, ErrInvalidPassword),
		errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
