package identity

import "errors"

var (
	ErrInvalidEmail      = errors.New("invalid email")
	ErrWeakPassword      = errors.New("weak password")
	ErrUserNotFound      = errors.New("user not found")
	ErrWrongPassword     = errors.New("wrong password")
	ErrEmailAlreadyInUse = errors.New("email already in use")
	ErrNoCurrentUser     = errors.New("no current user")
)

// APIError is an auth backend failure that maps to none of the sentinels.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Code != "" {
		return e.Code
	}
	return "auth request failed"
}
