package services

import (
	"context"
	"encoding/base64"
	"sync"
	"testing"

	"github.com/dmitrijs2005/dreamteller/internal/common"
	"github.com/dmitrijs2005/dreamteller/internal/logging"
	"github.com/dmitrijs2005/dreamteller/internal/server/images"
	"github.com/dmitrijs2005/dreamteller/internal/server/interpret"
	"github.com/dmitrijs2005/dreamteller/internal/server/models"
	"github.com/dmitrijs2005/dreamteller/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeQueue struct {
	mu   sync.Mutex
	jobs []interpret.Job
	err  error
}

func (q *fakeQueue) Submit(job interpret.Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

func newDreamService(t *testing.T) (*DreamService, *fakeQueue, *repomanager.MemoryRepositoryManager, *images.MemoryStore) {
	t.Helper()
	rm := repomanager.NewMemoryRepositoryManager()
	q := &fakeQueue{}
	store := images.NewMemoryStore()
	return NewDreamService(nil, rm, store, q, logging.NewNopLogger()), q, rm, store
}

func TestDreamService_Interpret(t *testing.T) {
	s, q, _, _ := newDreamService(t)
	ctx := context.Background()

	d, err := s.Interpret(ctx, "u-1", "20251118", "  flying high \n")
	require.NoError(t, err)
	assert.NotEmpty(t, d.ID)
	assert.Equal(t, "flying high", d.Input)
	assert.Nil(t, d.Interpretation)

	require.Len(t, q.jobs, 1)
	assert.Equal(t, interpret.Job{DreamID: d.ID, UserID: "u-1", Input: "flying high"}, q.jobs[0])

	list, err := s.ListDay(ctx, "u-1", "20251118")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, d.ID, list[0].ID)
}

func TestDreamService_InterpretValidation(t *testing.T) {
	s, q, _, _ := newDreamService(t)
	ctx := context.Background()

	for _, key := range []string{"", "2025111", "20251332", "2025-11-1", "abcdefgh"} {
		_, err := s.Interpret(ctx, "u-1", key, "x")
		require.ErrorIs(t, err, ErrInvalidDateKey, key)
	}
	_, err := s.Interpret(ctx, "u-1", "20251118", " \t ")
	require.ErrorIs(t, err, ErrEmptyInput)
	assert.Empty(t, q.jobs)
}

func TestDreamService_InterpretKeepsDreamWhenQueueFull(t *testing.T) {
	s, q, _, _ := newDreamService(t)
	q.err = interpret.ErrQueueFull

	d, err := s.Interpret(context.Background(), "u-1", "20251118", "snow")
	require.NoError(t, err)

	list, err := s.ListDay(context.Background(), "u-1", "20251118")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, d.ID, list[0].ID)
}

func TestDreamService_ListDayIsEmptyNotNil(t *testing.T) {
	s, _, _, _ := newDreamService(t)

	list, err := s.ListDay(context.Background(), "u-1", "20250101")
	require.NoError(t, err)
	assert.NotNil(t, list)

	_, err = s.ListDay(context.Background(), "u-1", "bad")
	require.ErrorIs(t, err, ErrInvalidDateKey)
}

func TestDreamService_MonthEntries(t *testing.T) {
	s, _, _, _ := newDreamService(t)
	ctx := context.Background()
	for _, key := range []string{"20251102", "20251118", "20251118", "20251201"} {
		_, err := s.Interpret(ctx, "u-1", key, "dream")
		require.NoError(t, err)
	}
	_, err := s.Interpret(ctx, "u-2", "20251105", "other user")
	require.NoError(t, err)

	entries, err := s.MonthEntries(ctx, "u-1", 2025, 11)
	require.NoError(t, err)
	assert.Equal(t, []models.DreamEntry{
		{DateKey: "20251102", HasEntry: true},
		{DateKey: "20251118", HasEntry: true},
	}, entries)

	empty, err := s.MonthEntries(ctx, "u-1", 2024, 1)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	_, err = s.MonthEntries(ctx, "u-1", 2025, 13)
	require.ErrorIs(t, err, ErrInvalidMonth)
}

func TestDreamService_Image(t *testing.T) {
	s, _, rm, store := newDreamService(t)
	ctx := context.Background()

	d, err := s.Interpret(ctx, "u-1", "20251118", "dream")
	require.NoError(t, err)

	_, err = s.Image(ctx, "u-1", d.ID)
	require.ErrorIs(t, err, common.ErrorNotFound, "not interpreted yet")

	require.NoError(t, store.Put(ctx, d.ID, []byte("png"), "image/png"))
	require.NoError(t, rm.Dreams(nil).SetInterpretation(ctx, d.ID,
		models.Interpretation{Title: "t", Interpretation: "i", ImageName: d.ID}))

	img, err := s.Image(ctx, "u-1", d.ID)
	require.NoError(t, err)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("png")), img)

	_, err = s.Image(ctx, "u-2", d.ID)
	require.ErrorIs(t, err, common.ErrorNotFound, "other users cannot read it")
}
