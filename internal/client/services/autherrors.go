package services

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/dreamteller/internal/client/identity"
)

type AuthErrorKind int

const (
	KindUnknown AuthErrorKind = iota
	KindInvalidEmail
	KindWeakPassword
	KindInvalidName
	KindUserNotFound
	KindWrongPassword
	KindEmailAlreadyInUse
	KindNoCurrentUser
)

// AuthError is the closed set of failures an auth operation reports.
// Detail carries the message of an Unknown error.
type AuthError struct {
	Kind   AuthErrorKind
	Detail string
}

var (
	ErrInvalidEmail      = &AuthError{Kind: KindInvalidEmail}
	ErrWeakPassword      = &AuthError{Kind: KindWeakPassword}
	ErrInvalidName       = &AuthError{Kind: KindInvalidName}
	ErrUserNotFound      = &AuthError{Kind: KindUserNotFound}
	ErrWrongPassword     = &AuthError{Kind: KindWrongPassword}
	ErrEmailAlreadyInUse = &AuthError{Kind: KindEmailAlreadyInUse}
	ErrNoCurrentUser     = &AuthError{Kind: KindNoCurrentUser}
	ErrPasswordMismatch  = &AuthError{Kind: KindUnknown, Detail: "Passwords do not match."}
)

func (e *AuthError) Error() string {
	switch e.Kind {
	case KindInvalidEmail:
		return "Please enter a valid email."
	case KindWeakPassword:
		return "Password must be at least 6 characters."
	case KindInvalidName:
		return "Please enter your name."
	case KindUserNotFound:
		return "User not found."
	case KindWrongPassword:
		return "Incorrect password."
	case KindEmailAlreadyInUse:
		return "Email already in use."
	case KindNoCurrentUser:
		return "No authenticated user."
	}
	if e.Detail == "" {
		return MsgUnknown
	}
	return e.Detail
}

// Is matches on kind; Unknown errors also need the same detail.
func (e *AuthError) Is(target error) bool {
	t, ok := target.(*AuthError)
	if !ok || t.Kind != e.Kind {
		return false
	}
	return e.Kind != KindUnknown || t.Detail == e.Detail
}

// MapAuthError folds any provider failure into an AuthError.
func MapAuthError(err error) *AuthError {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae
	}
	switch {
	case errors.Is(err, identity.ErrInvalidEmail):
		return ErrInvalidEmail
	case errors.Is(err, identity.ErrWeakPassword):
		return ErrWeakPassword
	case errors.Is(err, identity.ErrUserNotFound):
		return ErrUserNotFound
	case errors.Is(err, identity.ErrWrongPassword):
		return ErrWrongPassword
	case errors.Is(err, identity.ErrEmailAlreadyInUse):
		return ErrEmailAlreadyInUse
	case errors.Is(err, identity.ErrNoCurrentUser):
		return ErrNoCurrentUser
	}
	return &AuthError{Kind: KindUnknown, Detail: err.Error()}
}

const minPasswordLen = 6

func validateEmail(email string) error {
	if !strings.Contains(strings.TrimSpace(email), "@") {
		return ErrInvalidEmail
	}
	return nil
}

func validateCredentials(email, password string) error {
	if err := validateEmail(email); err != nil {
		return err
	}
	if utf8.RuneCountInString(password) < minPasswordLen {
		return ErrWeakPassword
	}
	return nil
}

func validateRegistration(name, email, password, repeat string) error {
	if strings.TrimSpace(name) == "" {
		return ErrInvalidName
	}
	if err := validateCredentials(email, password); err != nil {
		return err
	}
	if password != repeat {
		return ErrPasswordMismatch
	}
	return nil
}
