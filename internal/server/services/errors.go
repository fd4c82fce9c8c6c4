package services

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/dreamteller/internal/common"
)

var (
	ErrInvalidEmail         = fmt.Errorf("%w: invalid email address", common.ErrorValidation)
	ErrWeakPassword         = fmt.Errorf("%w: password should be at least %d characters", common.ErrorValidation, minPasswordLength)
	ErrInvalidDateKey       = fmt.Errorf("%w: date key must be YYYYMMDD", common.ErrorValidation)
	ErrInvalidMonth         = fmt.Errorf("%w: invalid year or month", common.ErrorValidation)
	ErrEmptyInput           = fmt.Errorf("%w: dream text is empty", common.ErrorValidation)
	ErrEmptyFCMToken        = fmt.Errorf("%w: push token is empty", common.ErrorValidation)
	ErrEmailExists          = errors.New("email already registered")
	ErrUserNotFound         = errors.New("user not found")
	ErrInvalidCredentials   = errors.New("invalid login credentials")
	ErrRefreshTokenNotFound = errors.New("refresh token not found")
)
