package cli

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/dreamteller/internal/client/client"
	"github.com/dmitrijs2005/dreamteller/internal/client/config"
	"github.com/dmitrijs2005/dreamteller/internal/client/identity"
	"github.com/dmitrijs2005/dreamteller/internal/client/models"
	"github.com/dmitrijs2005/dreamteller/internal/logging"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// journal is an in-memory dream API that accepts tokens signed with key.
type journal struct {
	key []byte

	mu     sync.Mutex
	dreams []models.Dream
	subs   models.NotificationSubscription
	fcm    []string
}

func (j *journal) authorized(r *http.Request) bool {
	_, err := jwt.Parse(r.Header.Get("Authorization"), func(*jwt.Token) (any, error) { return j.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	return err == nil
}

func (j *journal) handler(t *testing.T) http.Handler {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/dream/history/{dateKey}", func(w http.ResponseWriter, r *http.Request) {
		j.mu.Lock()
		defer j.mu.Unlock()
		out := models.DreamList{}
		for _, d := range j.dreams {
			if d.DateKey == r.PathValue("dateKey") {
				out = append(out, d)
			}
		}
		_ = json.NewEncoder(w).Encode(out)
	})
	mux.HandleFunc("GET /api/dream/history/entryList/{year}/{month}", func(w http.ResponseWriter, r *http.Request) {
		j.mu.Lock()
		defer j.mu.Unlock()
		prefix := r.PathValue("year") + r.PathValue("month")
		out := models.DreamEntryList{}
		for _, d := range j.dreams {
			if strings.HasPrefix(d.DateKey, prefix) {
				out = append(out, models.DreamEntry{DateKey: d.DateKey, HasEntry: true})
			}
		}
		_ = json.NewEncoder(w).Encode(out)
	})
	mux.HandleFunc("POST /api/dream/interpret", func(w http.ResponseWriter, r *http.Request) {
		var req models.DreamRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		j.mu.Lock()
		defer j.mu.Unlock()
		j.dreams = append(j.dreams, models.Dream{ID: "d1", DateKey: req.DateKey, Input: req.Input})
	})
	mux.HandleFunc("GET /api/dream/image/{id}", func(w http.ResponseWriter, r *http.Request) {
		img := image.NewGray(image.Rect(0, 0, 8, 8))
		for x := 0; x < 8; x++ {
			img.SetGray(x, 0, color.Gray{Y: 255})
		}
		var buf bytes.Buffer
		require.NoError(t, png.Encode(&buf, img))
		_ = json.NewEncoder(w).Encode(models.DreamImage{Image: base64.StdEncoding.EncodeToString(buf.Bytes())})
	})
	mux.HandleFunc("GET /api/notification/subscriptions", func(w http.ResponseWriter, r *http.Request) {
		j.mu.Lock()
		defer j.mu.Unlock()
		_ = json.NewEncoder(w).Encode(j.subs)
	})
	mux.HandleFunc("POST /api/notification/subscriptions", func(w http.ResponseWriter, r *http.Request) {
		j.mu.Lock()
		defer j.mu.Unlock()
		_ = json.NewDecoder(r.Body).Decode(&j.subs)
	})
	mux.HandleFunc("POST /api/notification/fcm", func(w http.ResponseWriter, r *http.Request) {
		var req models.FCMRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		j.mu.Lock()
		defer j.mu.Unlock()
		j.fcm = append(j.fcm, req.FCMToken)
	})

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !j.authorized(r) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		mux.ServeHTTP(w, r)
	})
}

type appFixture struct {
	app     *App
	out     *bytes.Buffer
	journal *journal
}

func newTestApp(t *testing.T, input string) *appFixture {
	t.Helper()
	stubTerminal(t, false)
	capturePrints(t)

	ctx := context.Background()
	key := []byte("cli-test-key")

	provider := identity.NewMemoryProvider(identity.WithSigningKey(key))
	_, err := provider.SignUp(ctx, "Ann", "ann@example.com", "secret1")
	require.NoError(t, err)
	require.NoError(t, provider.SignOut(ctx))

	j := &journal{key: key}
	srv := httptest.NewServer(j.handler(t))
	t.Cleanup(srv.Close)

	db, err := client.InitDatabase(ctx, filepath.Join(t.TempDir(), "client.db"))
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.ServerBaseURL = srv.URL

	api := client.NewHTTPClient(client.HTTPClientConfig{BaseURL: srv.URL, Timeout: 5 * time.Second})
	out := &bytes.Buffer{}
	app := newApp(cfg, logging.NewNopLogger(), db, provider, api, strings.NewReader(input), out)
	app.dreams.SelectDate(time.Date(2025, 11, 18, 9, 0, 0, 0, time.UTC))

	return &appFixture{app: app, out: out, journal: j}
}

func TestApp_Run_FullSession(t *testing.T) {
	input := strings.Join([]string{
		"", "", "", // onboarding
		"login", "ann@example.com", "secret1",
		"add", "I was flying over rooftops", "",
		"month 2025-11",
		"image d1",
		"setsubs daily on",
		"subs",
		"fcm device-token",
		"whoami",
		"date +1",
		"logout",
		"exit",
	}, "\n") + "\n"

	f := newTestApp(t, input)
	require.NoError(t, f.app.Run(context.Background()))

	out := f.out.String()
	assert.Contains(t, out, "Welcome to your dream journal")
	assert.Contains(t, out, "[Get Started]")
	assert.Contains(t, out, "Welcome back, Ann!")
	assert.Contains(t, out, noDreamsText)
	assert.Contains(t, out, "Dream submitted.")
	assert.Contains(t, out, "[d1] Dream (nodream)")
	assert.Contains(t, out, "I was flying over rooftops")
	assert.Contains(t, out, "Interpretation pending.")
	assert.Contains(t, out, "November 2025")
	assert.Contains(t, out, "[18]*")
	assert.Contains(t, out, "Daily reminder:         on")
	assert.Contains(t, out, "Push token registered.")
	assert.Contains(t, out, "Email:    ann@example.com")
	assert.Contains(t, out, "Dreams for Wednesday, 19 November 2025")
	assert.Contains(t, out, "Logged out.")
	assert.NotContains(t, out, "Error:")

	f.journal.mu.Lock()
	defer f.journal.mu.Unlock()
	assert.True(t, f.journal.subs.Daily)
	assert.False(t, f.journal.subs.Interpretation)
	assert.Equal(t, []string{"device-token"}, f.journal.fcm)
}

func TestApp_LoginErrorsAreReported(t *testing.T) {
	f := newTestApp(t, "ann@example.com\nwrong-password\nnot-an-email\nsecret1\n")
	f.app.auth.Start(context.Background())
	t.Cleanup(f.app.Close)

	ctx := context.Background()
	require.Error(t, f.app.Login(ctx))
	assert.Contains(t, f.out.String(), "Error: Incorrect password.")

	require.Error(t, f.app.Login(ctx))
	assert.Contains(t, f.out.String(), "Error: Please enter a valid email.")
	assert.False(t, f.app.isLoggedIn())
}

func TestApp_ResetPasswordPrintsInfo(t *testing.T) {
	f := newTestApp(t, "ann@example.com\n")
	t.Cleanup(f.app.Close)

	require.NoError(t, f.app.ResetPassword(context.Background()))
	assert.Contains(t, f.out.String(), resetPasswordPrompt)
	assert.Contains(t, f.out.String(), "Password reset email sent.")
}

func TestApp_OnboardingShownOnce(t *testing.T) {
	f := newTestApp(t, "\n\n\n")
	t.Cleanup(f.app.Close)
	ctx := context.Background()

	require.NoError(t, f.app.showOnboarding(ctx, false))
	require.Equal(t, 3, strings.Count(f.out.String(), "> "))

	f.out.Reset()
	require.NoError(t, f.app.showOnboarding(ctx, false))
	require.Empty(t, f.out.String())

	seen, err := f.app.prefs.HasSeenOnboarding(ctx)
	require.NoError(t, err)
	require.True(t, seen)
}

func TestApp_CommandsWithoutTokenReportUnauthorized(t *testing.T) {
	f := newTestApp(t, "")
	t.Cleanup(f.app.Close)

	require.Error(t, f.app.Dreams(context.Background()))
	assert.Contains(t, f.out.String(), "Error: Unauthorized")
}

func TestApp_ArgumentValidation(t *testing.T) {
	f := newTestApp(t, "")
	t.Cleanup(f.app.Close)
	ctx := context.Background()

	require.ErrorIs(t, f.app.Image(ctx, ""), errBadArgs)
	require.ErrorIs(t, f.app.SetSubscriptions(ctx, []string{"daily"}), errBadArgs)
	require.ErrorIs(t, f.app.SetSubscriptions(ctx, []string{"weekly", "on"}), errBadArgs)
	require.Error(t, f.app.SetSubscriptions(ctx, []string{"daily", "maybe"}))
	require.ErrorIs(t, f.app.RegisterPushToken(ctx, ""), errBadArgs)
	require.ErrorIs(t, f.app.Month(ctx, "november"), errBadArgs)
	require.Error(t, f.app.SelectDate(ctx, "someday"))
}
