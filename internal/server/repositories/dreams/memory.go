package dreams

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/dreamteller/internal/common"
	"github.com/dmitrijs2005/dreamteller/internal/server/models"
)

type MemoryRepository struct {
	mu     sync.RWMutex
	dreams []*models.Dream
}

var _ Repository = (*MemoryRepository)(nil)

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func copyDream(d *models.Dream) models.Dream {
	c := *d
	c.Title = cloneString(d.Title)
	c.Interpretation = cloneString(d.Interpretation)
	c.ImageName = cloneString(d.ImageName)
	return c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func (r *MemoryRepository) Create(ctx context.Context, d *models.Dream) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.dreams {
		if existing.ID == d.ID {
			return common.ErrorAlreadyExists
		}
	}
	d.CreatedAt = time.Now()
	stored := copyDream(d)
	r.dreams = append(r.dreams, &stored)
	return nil
}

func (r *MemoryRepository) Get(ctx context.Context, userID, id string) (*models.Dream, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, d := range r.dreams {
		if d.ID == id && d.UserID == userID {
			c := copyDream(d)
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *MemoryRepository) ListByDay(ctx context.Context, userID, dateKey string) ([]models.Dream, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := []models.Dream{}
	for _, d := range r.dreams {
		if d.UserID == userID && d.DateKey == dateKey {
			list = append(list, copyDream(d))
		}
	}
	return list, nil
}

func (r *MemoryRepository) DaysWithDreams(ctx context.Context, userID, monthPrefix string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	days := []string{}
	for _, d := range r.dreams {
		if d.UserID == userID && strings.HasPrefix(d.DateKey, monthPrefix) && !slices.Contains(days, d.DateKey) {
			days = append(days, d.DateKey)
		}
	}
	slices.Sort(days)
	return days, nil
}

func (r *MemoryRepository) SetInterpretation(ctx context.Context, id string, in models.Interpretation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, d := range r.dreams {
		if d.ID == id {
			d.Title = &in.Title
			d.Interpretation = &in.Interpretation
			d.ImageName = &in.ImageName
			return nil
		}
	}
	return common.ErrorNotFound
}
