package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKey = []byte("test-signing-key")

// fakeAuthAPI mimics the auth/v1 endpoints for one known account.
type fakeAuthAPI struct {
	mu sync.Mutex

	ttl       time.Duration
	issued    int
	verified  bool
	passwords map[string]string

	tokenCalls      int
	lastRefresh     string
	lastLogoutAuth  string
	lastResendEmail string
	lastRecover     string
}

func newFakeAuthAPI() *fakeAuthAPI {
	return &fakeAuthAPI{
		ttl:       time.Hour,
		passwords: map[string]string{"user@example.com": "secret1"},
	}
}

func (f *fakeAuthAPI) session(email string) map[string]any {
	f.issued++
	claims := jwt.MapClaims{
		"sub":            "u-" + email,
		"email":          email,
		"name":           "Ann",
		"email_verified": f.verified,
		"exp":            time.Now().Add(f.ttl).Unix(),
		"n":              f.issued,
	}
	tok, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testKey)
	return map[string]any{
		"access_token":  tok,
		"token_type":    "bearer",
		"expires_in":    int(f.ttl.Seconds()),
		"refresh_token": fmt.Sprintf("r%d", f.issued),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (f *fakeAuthAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var body map[string]any
	_ = json.NewDecoder(r.Body).Decode(&body)
	str := func(k string) string { s, _ := body[k].(string); return s }

	switch r.URL.Path {
	case "/auth/v1/token":
		f.tokenCalls++
		if r.URL.Query().Get("grant_type") == "refresh_token" {
			f.lastRefresh = str("refresh_token")
			writeJSON(w, http.StatusOK, f.session("user@example.com"))
			return
		}
		pw, ok := f.passwords[str("email")]
		switch {
		case !ok:
			writeJSON(w, http.StatusBadRequest, map[string]any{"error_code": "user_not_found", "msg": "User not found"})
		case pw != str("password"):
			writeJSON(w, http.StatusBadRequest, map[string]any{"code": 400, "error_code": "invalid_credentials", "msg": "Invalid login credentials"})
		default:
			writeJSON(w, http.StatusOK, f.session(str("email")))
		}
	case "/auth/v1/signup":
		if _, ok := f.passwords[str("email")]; ok {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"error_code": "email_exists", "msg": "already registered"})
			return
		}
		f.passwords[str("email")] = str("password")
		writeJSON(w, http.StatusOK, f.session(str("email")))
	case "/auth/v1/logout":
		f.lastLogoutAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	case "/auth/v1/user":
		writeJSON(w, http.StatusOK, map[string]any{
			"id":                 "u-user@example.com",
			"email":              "user@example.com",
			"email_confirmed_at": "2025-11-18T10:00:00Z",
			"user_metadata":      map[string]any{"name": "Ann B"},
		})
	case "/auth/v1/resend":
		f.lastResendEmail = str("email")
		writeJSON(w, http.StatusOK, map[string]any{})
	case "/auth/v1/recover":
		f.lastRecover = str("email")
		writeJSON(w, http.StatusOK, map[string]any{})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "server_error", "error_description": "boom"})
	}
}

type apiSeen struct {
	tokenCalls      int
	lastRefresh     string
	lastLogoutAuth  string
	lastResendEmail string
	lastRecover     string
}

func (f *fakeAuthAPI) seen() apiSeen {
	f.mu.Lock()
	defer f.mu.Unlock()
	return apiSeen{
		tokenCalls:      f.tokenCalls,
		lastRefresh:     f.lastRefresh,
		lastLogoutAuth:  f.lastLogoutAuth,
		lastResendEmail: f.lastResendEmail,
		lastRecover:     f.lastRecover,
	}
}

func newTestProvider(t *testing.T) (*HTTPProvider, *fakeAuthAPI) {
	t.Helper()
	api := newFakeAuthAPI()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	return NewHTTPProvider(HTTPProviderConfig{BaseURL: srv.URL}), api
}

func TestHTTPProvider_SignInReadsClaimsAndCachesToken(t *testing.T) {
	t.Parallel()
	p, api := newTestProvider(t)
	ctx := context.Background()

	u, err := p.SignIn(ctx, "user@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "u-user@example.com", u.ID)
	assert.Equal(t, "Ann", u.DisplayName)
	assert.False(t, u.EmailVerified)
	assert.Equal(t, u, p.CurrentUser())

	t1, err := p.IDToken(ctx, false)
	require.NoError(t, err)
	t2, err := p.IDToken(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, t1, t2)
	assert.Equal(t, 1, api.seen().tokenCalls, "cached token must not hit the API")
}

func TestHTTPProvider_ForceRefreshRotatesRefreshToken(t *testing.T) {
	t.Parallel()
	p, api := newTestProvider(t)
	ctx := context.Background()

	_, err := p.SignIn(ctx, "user@example.com", "secret1")
	require.NoError(t, err)
	first, _ := p.IDToken(ctx, false)

	second, err := p.IDToken(ctx, true)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
	assert.Equal(t, "r1", api.seen().lastRefresh)

	third, err := p.IDToken(ctx, true)
	require.NoError(t, err)
	assert.NotEqual(t, second, third)
	assert.Equal(t, "r2", api.seen().lastRefresh)

	cached, err := p.IDToken(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, third, cached)
}

func TestHTTPProvider_ExpiredTokenRefreshesTransparently(t *testing.T) {
	t.Parallel()
	p, api := newTestProvider(t)
	api.mu.Lock()
	api.ttl = time.Second // inside the oauth2 expiry window
	api.mu.Unlock()
	ctx := context.Background()

	_, err := p.SignIn(ctx, "user@example.com", "secret1")
	require.NoError(t, err)

	_, err = p.IDToken(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, "r1", api.seen().lastRefresh)
}

func TestHTTPProvider_SignInErrors(t *testing.T) {
	t.Parallel()
	p, _ := newTestProvider(t)
	ctx := context.Background()

	_, err := p.SignIn(ctx, "nobody@example.com", "secret1")
	require.ErrorIs(t, err, ErrUserNotFound)

	_, err = p.SignIn(ctx, "user@example.com", "nope!!")
	require.ErrorIs(t, err, ErrWrongPassword)

	_, err = p.SignUp(ctx, "Ann", "user@example.com", "secret1")
	require.ErrorIs(t, err, ErrEmailAlreadyInUse)

	assert.Nil(t, p.CurrentUser())
}

func TestHTTPProvider_SignUpStartsSession(t *testing.T) {
	t.Parallel()
	p, _ := newTestProvider(t)

	u, err := p.SignUp(context.Background(), "Ann", "new@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", u.Email)
	assert.NotNil(t, p.CurrentUser())
}

func TestHTTPProvider_SignOut(t *testing.T) {
	t.Parallel()
	p, api := newTestProvider(t)
	ctx := context.Background()

	_, err := p.SignIn(ctx, "user@example.com", "secret1")
	require.NoError(t, err)
	tok, _ := p.IDToken(ctx, false)

	require.NoError(t, p.SignOut(ctx))
	assert.Equal(t, "Bearer "+tok, api.seen().lastLogoutAuth)
	assert.Nil(t, p.CurrentUser())

	_, err = p.IDToken(ctx, false)
	require.ErrorIs(t, err, ErrNoCurrentUser)
}

func TestHTTPProvider_WatchAuthState(t *testing.T) {
	t.Parallel()
	p, _ := newTestProvider(t)
	ctx, cancel := context.WithCancel(context.Background())

	ch := p.WatchAuthState(ctx)
	require.Nil(t, <-ch, "initial state is signed out")

	_, err := p.SignIn(ctx, "user@example.com", "secret1")
	require.NoError(t, err)
	u := <-ch
	require.NotNil(t, u)
	assert.Equal(t, "u-user@example.com", u.ID)

	require.NoError(t, p.SignOut(ctx))
	assert.Nil(t, <-ch)

	cancel()
	assert.Eventually(t, func() bool {
		select {
		case _, open := <-ch:
			return !open
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)
}

func TestHTTPProvider_ReloadUserAndMail(t *testing.T) {
	t.Parallel()
	p, api := newTestProvider(t)
	ctx := context.Background()

	require.ErrorIs(t, p.SendEmailVerification(ctx), ErrNoCurrentUser)

	_, err := p.SignIn(ctx, "user@example.com", "secret1")
	require.NoError(t, err)

	u, err := p.ReloadUser(ctx)
	require.NoError(t, err)
	assert.True(t, u.EmailVerified)
	assert.Equal(t, "Ann B", u.DisplayName)
	assert.True(t, p.CurrentUser().EmailVerified)

	require.NoError(t, p.SendEmailVerification(ctx))
	assert.Equal(t, "user@example.com", api.seen().lastResendEmail)

	require.NoError(t, p.SendPasswordReset(ctx, "user@example.com"))
	assert.Equal(t, "user@example.com", api.seen().lastRecover)
}

func TestParseError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		want error
		msg  string
	}{
		{"user not found", `{"error_code":"user_not_found"}`, ErrUserNotFound, ""},
		{"invalid credentials", `{"code":400,"error_code":"invalid_credentials","msg":"x"}`, ErrWrongPassword, ""},
		{"legacy code key", `{"code":"email_exists","message":"taken"}`, ErrEmailAlreadyInUse, ""},
		{"weak password", `{"error_code":"weak_password"}`, ErrWeakPassword, ""},
		{"invalid email", `{"error_code":"email_address_invalid"}`, ErrInvalidEmail, ""},
		{"oauth style", `{"error":"server_error","error_description":"boom"}`, nil, "boom"},
		{"plain text", `gateway down`, nil, "gateway down"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := parseError(http.StatusBadRequest, []byte(tt.body))
			if tt.want != nil {
				require.ErrorIs(t, err, tt.want)
				return
			}
			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.msg, apiErr.Error())
		})
	}
}
