// Package notifications keeps push preferences and device tokens.
package notifications

import (
	"context"

	"github.com/dmitrijs2005/dreamteller/internal/server/models"
)

type Repository interface {
	// GetSubscription returns the zero Subscription for users that never
	// saved one.
	GetSubscription(ctx context.Context, userID string) (models.Subscription, error)
	SetSubscription(ctx context.Context, userID string, sub models.Subscription) error
	// SaveFCMToken is idempotent per (user, token).
	SaveFCMToken(ctx context.Context, userID, token string) error
	FCMTokens(ctx context.Context, userID string) ([]string, error)
}
