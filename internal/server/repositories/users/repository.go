// Package users stores identity accounts.
package users

import (
	"context"

	"github.com/dmitrijs2005/dreamteller/internal/server/models"
)

// Repository persists accounts. Lookups of unknown users return
// common.ErrorNotFound; a duplicate email on Create returns
// common.ErrorAlreadyExists.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	SetEmailVerified(ctx context.Context, id string) error
	SetPassword(ctx context.Context, id string, hash []byte) error
}
