// Package services holds the client-side state holders the presentation
// layer talks to: the dream store, the auth session and local preferences.
package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/dreamteller/internal/client/client"
	"github.com/dmitrijs2005/dreamteller/internal/client/models"
	"github.com/dmitrijs2005/dreamteller/internal/logging"
	"github.com/dmitrijs2005/dreamteller/internal/notify"
	"golang.org/x/sync/singleflight"
)

// User-facing texts produced by MapError.
const (
	MsgUnauthorized = "Unauthorized"
	MsgNoData       = "No data"
	MsgDecodeError  = "Decode error"
	MsgInvalidURL   = "Invalid URL"
	MsgUnknown      = "Unknown error"
)

// DreamState is a snapshot of everything the dream store publishes.
type DreamState struct {
	SelectedDate   time.Time
	Dreams         []models.Dream
	MonthlyEntries []models.DreamEntry
	Subscriptions  models.NotificationSubscription
	FetchedImage   image.Image
	IsLoading      bool
	ErrorMessage   string
}

func (s DreamState) clone() DreamState {
	s.Dreams = slices.Clone(s.Dreams)
	s.MonthlyEntries = slices.Clone(s.MonthlyEntries)
	return s
}

// DreamStore owns the journal collections and keeps them in step with the
// API.
//
// Public operations never return errors. A failure is translated by
// MapError into ErrorMessage; callers read it from a snapshot once the
// operation returns. Identical concurrent calls share one request.
type DreamStore struct {
	client  client.Client
	session *client.Session
	logger  logging.Logger
	group   singleflight.Group

	// flightTimeout bounds a shared request once it is detached from its
	// first caller.
	flightTimeout time.Duration
	// onFlight, when set, runs after a caller has started or joined a flight.
	onFlight func(key string)

	mu       sync.Mutex
	state    DreamState
	inflight int
	hub      notify.Hub[DreamState]
}

func NewDreamStore(c client.Client, session *client.Session, logger logging.Logger) *DreamStore {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &DreamStore{
		client:  c,
		session: session,
		logger:  logger.With("module", "dreams"),
		state:   DreamState{SelectedDate: time.Now()},

		flightTimeout: client.DefaultTimeout,
	}
}

// MapError is the only translation from transport errors to user text.
func MapError(err error) string {
	var se *client.ServerError
	switch {
	case errors.Is(err, client.ErrUnauthorized):
		return MsgUnauthorized
	case errors.Is(err, client.ErrNoData):
		return MsgNoData
	case errors.Is(err, client.ErrDecodingFailed):
		return MsgDecodeError
	case errors.Is(err, client.ErrInvalidURL):
		return MsgInvalidURL
	case errors.As(err, &se):
		return se.Message
	default:
		return MsgUnknown
	}
}

func (s *DreamStore) Snapshot() DreamState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Subscribe streams state snapshots, starting with the current one.
func (s *DreamStore) Subscribe() (<-chan DreamState, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hub.Subscribe(s.state.clone())
}

// Session is the token gate the auth layer writes into.
func (s *DreamStore) Session() *client.Session {
	return s.session
}

func (s *DreamStore) SelectedDate() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.SelectedDate
}

// SelectDate changes the journal day. It does not load anything.
func (s *DreamStore) SelectDate(t time.Time) {
	s.update(func(st *DreamState) { st.SelectedDate = t })
}

// update applies fn under the lock and publishes the result.
func (s *DreamStore) update(fn func(st *DreamState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.state)
	s.hub.Publish(s.state.clone())
}

func (s *DreamStore) begin() {
	s.update(func(st *DreamState) {
		s.inflight++
		st.IsLoading = true
	})
}

func (s *DreamStore) end() {
	s.update(func(st *DreamState) {
		s.inflight--
		st.IsLoading = s.inflight > 0
	})
}

func (s *DreamStore) fail(ctx context.Context, op string, err error) {
	msg := MapError(err)
	s.logger.Warn(ctx, "operation failed", "op", op, "error", err)
	s.update(func(st *DreamState) { st.ErrorMessage = msg })
}

// call runs one gated API call under single-flight key. The token check
// happens inside the flight, so a missing token never reaches the network.
//
// The shared request is detached from the caller that started it and is
// bounded by flightTimeout instead; every caller stops waiting when its own
// ctx is done.
func call[T any](ctx context.Context, s *DreamStore, key string, ep client.Endpoint) (T, error) {
	var zero T

	ch := s.group.DoChan(key, func() (any, error) {
		token, err := s.session.RequireToken()
		if err != nil {
			return nil, err
		}
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.flightTimeout)
		defer cancel()

		var out T
		if err := s.client.Do(fctx, ep, token, &out); err != nil {
			return nil, err
		}
		return out, nil
	})
	if s.onFlight != nil {
		s.onFlight(key)
	}

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Shared {
			s.logger.Debug(ctx, "joined in-flight call", "key", key)
		}
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	}
}

// LoadDreamsForSelectedDate replaces Dreams with the selected day's list.
// Dreams is cleared up front, so a failure leaves it empty rather than
// stale. A result that arrives after the selection moved to another day is
// dropped.
func (s *DreamStore) LoadDreamsForSelectedDate(ctx context.Context) {
	s.begin()
	defer s.end()

	var key string
	s.update(func(st *DreamState) {
		st.Dreams = nil
		key = models.DateKey(st.SelectedDate)
	})

	list, err := call[models.DreamList](ctx, s, "dreams:"+key, client.ListDreams(key))

	s.mu.Lock()
	stale := models.DateKey(s.state.SelectedDate) != key
	s.mu.Unlock()
	if stale {
		s.logger.Debug(ctx, "dropping result for unselected day", "date_key", key)
		return
	}
	if err != nil {
		s.fail(ctx, "load dreams", err)
		return
	}
	s.update(func(st *DreamState) {
		st.Dreams = slices.Clone(list)
		st.ErrorMessage = ""
	})
	s.logger.Debug(ctx, "dreams loaded", "date_key", key, "count", len(list))
}

// LoadMonthlyEntries replaces MonthlyEntries with the flags for one month.
func (s *DreamStore) LoadMonthlyEntries(ctx context.Context, year, month int) {
	s.begin()
	defer s.end()

	if month < 1 || month > 12 {
		s.fail(ctx, "load monthly entries", fmt.Errorf("month %d: %w", month, client.ErrInvalidURL))
		return
	}

	key := fmt.Sprintf("monthly:%d/%02d", year, month)
	entries, err := call[models.DreamEntryList](ctx, s, key, client.MonthlyEntries(year, month))
	if err != nil {
		s.fail(ctx, "load monthly entries", err)
		return
	}
	s.update(func(st *DreamState) {
		st.MonthlyEntries = slices.Clone(entries)
		st.ErrorMessage = ""
	})
}

// SubmitDreamForInterpretation posts input for the selected day and then
// reloads that day. Blank input is ignored without touching any state. The
// interpretation itself is produced later by the server and shows up on a
// subsequent reload.
func (s *DreamStore) SubmitDreamForInterpretation(ctx context.Context, input string) {
	text := strings.TrimSpace(input)
	if text == "" {
		return
	}

	s.begin()
	defer s.end()

	dateKey := models.DateKey(s.SelectedDate())
	req := models.DreamRequest{DateKey: dateKey, Input: text}
	_, err := call[models.Empty](ctx, s, "interpret:"+dateKey+":"+text, client.Interpret(req))
	if err != nil {
		s.fail(ctx, "submit dream", err)
		return
	}
	s.logger.Info(ctx, "dream submitted", "date_key", dateKey)

	// A list request started before the POST must not satisfy the reload.
	s.group.Forget("dreams:" + dateKey)
	s.LoadDreamsForSelectedDate(ctx)
}

// FetchDreamImage loads and decodes the preview image of a dream. A payload
// that is not a decodable image leaves FetchedImage nil without an error.
func (s *DreamStore) FetchDreamImage(ctx context.Context, dreamID string) {
	s.begin()
	defer s.end()

	s.update(func(st *DreamState) { st.FetchedImage = nil })

	if strings.TrimSpace(dreamID) == "" {
		s.fail(ctx, "fetch image", client.ErrInvalidURL)
		return
	}

	payload, err := call[models.DreamImage](ctx, s, "image:"+dreamID, client.DreamImage(dreamID))
	if err != nil {
		s.fail(ctx, "fetch image", err)
		return
	}

	img, err := decodeImage(payload.Image)
	if err != nil {
		s.logger.Debug(ctx, "image payload not decodable", "dream_id", dreamID, "error", err)
	}
	s.update(func(st *DreamState) {
		st.FetchedImage = img
		st.ErrorMessage = ""
	})
}

func decodeImage(payload string) (image.Image, error) {
	if _, data, ok := strings.Cut(payload, ";base64,"); ok {
		payload = data
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		raw, err = base64.RawStdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("base64: %w", err)
		}
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	return img, nil
}

func (s *DreamStore) LoadSubscriptions(ctx context.Context) {
	s.begin()
	defer s.end()

	sub, err := call[models.NotificationSubscription](ctx, s, "subs:get", client.GetSubscriptions())
	if err != nil {
		s.fail(ctx, "load subscriptions", err)
		return
	}
	s.update(func(st *DreamState) {
		st.Subscriptions = sub
		st.ErrorMessage = ""
	})
}

// UpdateSubscriptions writes both flags. Local state changes only once the
// server has accepted them.
func (s *DreamStore) UpdateSubscriptions(ctx context.Context, daily, interpretation bool) {
	s.begin()
	defer s.end()

	sub := models.NotificationSubscription{Daily: daily, Interpretation: interpretation}
	key := fmt.Sprintf("subs:set:%t:%t", daily, interpretation)
	if _, err := call[models.Empty](ctx, s, key, client.SetSubscriptions(sub)); err != nil {
		s.fail(ctx, "update subscriptions", err)
		return
	}
	s.update(func(st *DreamState) {
		st.Subscriptions = sub
		st.ErrorMessage = ""
	})
}

// UpdateFCMToken registers a push token. An empty token is ignored. Success
// only clears ErrorMessage.
func (s *DreamStore) UpdateFCMToken(ctx context.Context, fcmToken string) {
	if fcmToken == "" {
		return
	}

	s.begin()
	defer s.end()

	req := models.FCMRequest{FCMToken: fcmToken}
	if _, err := call[models.Empty](ctx, s, "fcm:"+fcmToken, client.RegisterFCM(req)); err != nil {
		s.fail(ctx, "register fcm token", err)
		return
	}
	s.update(func(st *DreamState) { st.ErrorMessage = "" })
}
