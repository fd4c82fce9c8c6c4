package services

import (
	"context"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/dreamteller/internal/common"
	"github.com/dmitrijs2005/dreamteller/internal/logging"
	"github.com/dmitrijs2005/dreamteller/internal/server/images"
	"github.com/dmitrijs2005/dreamteller/internal/server/interpret"
	"github.com/dmitrijs2005/dreamteller/internal/server/models"
	"github.com/dmitrijs2005/dreamteller/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

const dateKeyLayout = "20060102"

// JobQueue accepts interpretation work.
type JobQueue interface {
	Submit(job interpret.Job) error
}

type DreamService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	images      images.Store
	queue       JobQueue
	logger      logging.Logger
}

func NewDreamService(db *sql.DB, m repomanager.RepositoryManager, store images.Store, queue JobQueue, logger logging.Logger) *DreamService {
	return &DreamService{
		db:          db,
		repomanager: m,
		images:      store,
		queue:       queue,
		logger:      logger.With("module", "dreams"),
	}
}

func validDateKey(key string) bool {
	if len(key) != len(dateKeyLayout) {
		return false
	}
	_, err := time.Parse(dateKeyLayout, key)
	return err == nil
}

// Interpret stores the dream and queues it. The returned dream has no
// interpretation yet; it shows up in ListDay once a worker is done.
func (s *DreamService) Interpret(ctx context.Context, userID, dateKey, input string) (*models.Dream, error) {
	if !validDateKey(dateKey) {
		return nil, ErrInvalidDateKey
	}
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, ErrEmptyInput
	}

	dream := &models.Dream{
		ID:      uuid.NewString(),
		UserID:  userID,
		DateKey: dateKey,
		Input:   input,
	}
	if err := s.repomanager.Dreams(handle(s.db)).Create(ctx, dream); err != nil {
		return nil, fmt.Errorf("store dream: %w", err)
	}

	if err := s.queue.Submit(interpret.Job{DreamID: dream.ID, UserID: userID, Input: input}); err != nil {
		// The dream is saved; it just stays uninterpreted.
		s.logger.Warn(ctx, "dream not queued", "dream_id", dream.ID, "error", err)
	}
	return dream, nil
}

func (s *DreamService) ListDay(ctx context.Context, userID, dateKey string) ([]models.Dream, error) {
	if !validDateKey(dateKey) {
		return nil, ErrInvalidDateKey
	}
	return s.repomanager.Dreams(handle(s.db)).ListByDay(ctx, userID, dateKey)
}

// MonthEntries flags every day of the month that has at least one dream.
func (s *DreamService) MonthEntries(ctx context.Context, userID string, year, month int) ([]models.DreamEntry, error) {
	if year < 1 || year > 9999 || month < 1 || month > 12 {
		return nil, ErrInvalidMonth
	}
	days, err := s.repomanager.Dreams(handle(s.db)).DaysWithDreams(ctx, userID, fmt.Sprintf("%04d%02d", year, month))
	if err != nil {
		return nil, err
	}

	entries := make([]models.DreamEntry, 0, len(days))
	for _, d := range days {
		entries = append(entries, models.DreamEntry{DateKey: d, HasEntry: true})
	}
	return entries, nil
}

// Image returns the base64 preview of a dream the user owns.
// common.ErrorNotFound covers unknown dreams and dreams without a preview.
func (s *DreamService) Image(ctx context.Context, userID, dreamID string) (string, error) {
	dream, err := s.repomanager.Dreams(handle(s.db)).Get(ctx, userID, dreamID)
	if err != nil {
		return "", err
	}
	if dream.ImageName == nil || *dream.ImageName == "" {
		return "", common.ErrorNotFound
	}

	data, err := s.images.Get(ctx, *dream.ImageName)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			s.logger.Error(ctx, "image load failed", "dream_id", dreamID, "error", err)
		}
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}
