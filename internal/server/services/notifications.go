package services

import (
	"context"
	"database/sql"
	"strings"

	"github.com/dmitrijs2005/dreamteller/internal/server/models"
	"github.com/dmitrijs2005/dreamteller/internal/server/repositories/repomanager"
)

type NotificationService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewNotificationService(db *sql.DB, m repomanager.RepositoryManager) *NotificationService {
	return &NotificationService{db: db, repomanager: m}
}

func (s *NotificationService) Subscription(ctx context.Context, userID string) (models.Subscription, error) {
	return s.repomanager.Notifications(handle(s.db)).GetSubscription(ctx, userID)
}

func (s *NotificationService) SetSubscription(ctx context.Context, userID string, sub models.Subscription) error {
	return s.repomanager.Notifications(handle(s.db)).SetSubscription(ctx, userID, sub)
}

func (s *NotificationService) RegisterFCMToken(ctx context.Context, userID, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrEmptyFCMToken
	}
	return s.repomanager.Notifications(handle(s.db)).SaveFCMToken(ctx, userID, token)
}
