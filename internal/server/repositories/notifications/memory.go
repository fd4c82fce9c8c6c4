package notifications

import (
	"context"
	"slices"
	"sync"

	"github.com/dmitrijs2005/dreamteller/internal/server/models"
)

type MemoryRepository struct {
	mu     sync.RWMutex
	subs   map[string]models.Subscription
	tokens map[string][]string
}

var _ Repository = (*MemoryRepository)(nil)

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		subs:   make(map[string]models.Subscription),
		tokens: make(map[string][]string),
	}
}

func (r *MemoryRepository) GetSubscription(ctx context.Context, userID string) (models.Subscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.subs[userID], nil
}

func (r *MemoryRepository) SetSubscription(ctx context.Context, userID string, sub models.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs[userID] = sub
	return nil
}

func (r *MemoryRepository) SaveFCMToken(ctx context.Context, userID, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !slices.Contains(r.tokens[userID], token) {
		r.tokens[userID] = append(r.tokens[userID], token)
	}
	return nil
}

func (r *MemoryRepository) FCMTokens(ctx context.Context, userID string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string{}, r.tokens[userID]...), nil
}
