package services

import (
	"context"
	"strings"
	"sync"

	"github.com/dmitrijs2005/dreamteller/internal/client/identity"
	"github.com/dmitrijs2005/dreamteller/internal/logging"
	"github.com/dmitrijs2005/dreamteller/internal/notify"
)

const (
	InfoPasswordReset    = "Password reset email sent."
	InfoVerificationSent = "Verification email sent."
)

type AuthPhase int

const (
	PhaseSignedOut AuthPhase = iota
	PhaseAuthenticating
	PhaseAuthenticated
	PhaseSigningOut
)

func (p AuthPhase) String() string {
	switch p {
	case PhaseAuthenticating:
		return "authenticating"
	case PhaseAuthenticated:
		return "authenticated"
	case PhaseSigningOut:
		return "signing out"
	default:
		return "signed out"
	}
}

// AuthState is a snapshot of the signed-in identity.
type AuthState struct {
	Phase           AuthPhase
	IsLoading       bool
	IsAuthenticated bool
	UserID          string
	DisplayName     string
	Email           string
	EmailVerified   bool
	IDToken         string
	ErrorMessage    string
	InfoMessage     string
}

// TokenSink receives every ID token the session obtains; "" clears it.
// *client.Session implements it.
type TokenSink interface {
	SetToken(token string)
}

// AuthSession drives sign-in, sign-up and sign-out against an identity
// provider and pushes each fresh ID token into a TokenSink. It is the only
// writer of that token.
//
// Like DreamStore, operations report failures through ErrorMessage only.
type AuthSession struct {
	provider identity.Provider
	sink     TokenSink
	logger   logging.Logger

	mu       sync.Mutex
	state    AuthState
	inflight int
	hub      notify.Hub[AuthState]

	stop context.CancelFunc
	done chan struct{}
}

func NewAuthSession(p identity.Provider, sink TokenSink, logger logging.Logger) *AuthSession {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &AuthSession{
		provider: p,
		sink:     sink,
		logger:   logger.With("module", "auth"),
	}
}

// Start follows the provider's auth-state stream until ctx ends or Close is
// called. Calling it twice is a no-op.
func (a *AuthSession) Start(ctx context.Context) {
	a.mu.Lock()
	if a.stop != nil {
		a.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	a.stop, a.done = cancel, done
	a.mu.Unlock()

	events := a.provider.WatchAuthState(ctx)
	go func() {
		defer close(done)
		for u := range events {
			a.onAuthStateChanged(ctx, u)
		}
	}()
}

// Close cancels the auth-state subscription and waits for the listener.
func (a *AuthSession) Close() {
	a.mu.Lock()
	stop, done := a.stop, a.done
	a.mu.Unlock()
	if stop == nil {
		return
	}
	stop()
	<-done
}

func (a *AuthSession) Snapshot() AuthState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

func (a *AuthSession) Subscribe() (<-chan AuthState, func()) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.hub.Subscribe(a.state)
}

func (a *AuthSession) update(fn func(st *AuthState)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	fn(&a.state)
	a.hub.Publish(a.state)
}

func (a *AuthSession) begin(phase AuthPhase) {
	a.update(func(st *AuthState) {
		a.inflight++
		st.IsLoading = true
		st.ErrorMessage = ""
		st.InfoMessage = ""
		st.Phase = phase
	})
}

func (a *AuthSession) end() {
	a.update(func(st *AuthState) {
		a.inflight--
		st.IsLoading = a.inflight > 0
		if st.Phase == PhaseAuthenticating || st.Phase == PhaseSigningOut {
			st.Phase = settledPhase(st)
		}
	})
}

func settledPhase(st *AuthState) AuthPhase {
	if st.IsAuthenticated {
		return PhaseAuthenticated
	}
	return PhaseSignedOut
}

func (a *AuthSession) fail(ctx context.Context, op string, err error) {
	ae := MapAuthError(err)
	a.logger.Warn(ctx, "auth operation failed", "op", op, "error", err)
	a.update(func(st *AuthState) { st.ErrorMessage = ae.Error() })
}

func sameIdentity(st *AuthState, u *identity.User) bool {
	if u == nil {
		return !st.IsAuthenticated
	}
	return st.IsAuthenticated &&
		st.UserID == u.ID &&
		st.DisplayName == u.DisplayName &&
		st.Email == u.Email &&
		st.EmailVerified == u.EmailVerified
}

// applyIdentity records u as the current identity. A real change drops the
// held ID token; a later FetchIDToken obtains a fresh one.
func (a *AuthSession) applyIdentity(u *identity.User) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if sameIdentity(&a.state, u) {
		return false
	}
	st := &a.state
	if u == nil {
		st.IsAuthenticated = false
		st.UserID, st.DisplayName, st.Email, st.EmailVerified = "", "", "", false
	} else {
		st.IsAuthenticated = true
		st.UserID, st.DisplayName, st.Email, st.EmailVerified = u.ID, u.DisplayName, u.Email, u.EmailVerified
	}
	if st.Phase != PhaseAuthenticating && st.Phase != PhaseSigningOut {
		st.Phase = settledPhase(st)
	}
	st.IDToken = ""
	a.sink.SetToken("")
	a.hub.Publish(a.state)
	return true
}

func (a *AuthSession) onAuthStateChanged(ctx context.Context, u *identity.User) {
	if a.applyIdentity(u) {
		a.logger.Debug(ctx, "auth state changed", "authenticated", u != nil)
	}
}

// SignIn validates the credentials locally, then signs in and fetches an ID
// token.
func (a *AuthSession) SignIn(ctx context.Context, email, password string) {
	if err := validateCredentials(email, password); err != nil {
		a.fail(ctx, "sign in", err)
		return
	}

	a.begin(PhaseAuthenticating)
	defer a.end()

	u, err := a.provider.SignIn(ctx, strings.TrimSpace(email), password)
	if err != nil {
		a.fail(ctx, "sign in", err)
		return
	}
	a.applyIdentity(u)
	a.logger.Info(ctx, "signed in", "user_id", u.ID)
	a.FetchIDToken(ctx, false)
}

// SignUp validates the registration form locally, then creates the account
// and fetches an ID token.
func (a *AuthSession) SignUp(ctx context.Context, name, email, password, repeatPassword string) {
	if err := validateRegistration(name, email, password, repeatPassword); err != nil {
		a.fail(ctx, "sign up", err)
		return
	}

	a.begin(PhaseAuthenticating)
	defer a.end()

	u, err := a.provider.SignUp(ctx, strings.TrimSpace(name), strings.TrimSpace(email), password)
	if err != nil {
		a.fail(ctx, "sign up", err)
		return
	}
	a.applyIdentity(u)
	a.logger.Info(ctx, "account created", "user_id", u.ID)
	a.FetchIDToken(ctx, false)
}

func (a *AuthSession) SignOut(ctx context.Context) {
	a.begin(PhaseSigningOut)
	defer a.end()

	if err := a.provider.SignOut(ctx); err != nil {
		a.fail(ctx, "sign out", err)
		return
	}
	a.applyIdentity(nil)
	a.logger.Info(ctx, "signed out")
}

// FetchIDToken obtains a token for the current user and pushes it into the
// sink. Without a current user it does nothing.
func (a *AuthSession) FetchIDToken(ctx context.Context, forceRefresh bool) {
	u := a.provider.CurrentUser()
	if u == nil {
		return
	}

	a.begin(a.Snapshot().Phase)
	defer a.end()

	token, err := a.provider.IDToken(ctx, forceRefresh)
	if err != nil {
		a.fail(ctx, "fetch id token", err)
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	// the user may have changed while the token was in flight
	if !a.state.IsAuthenticated || a.state.UserID != u.ID {
		return
	}
	a.state.IDToken = token
	a.sink.SetToken(token)
	a.hub.Publish(a.state)
}

func (a *AuthSession) SendPasswordReset(ctx context.Context, email string) {
	if err := validateEmail(email); err != nil {
		a.fail(ctx, "password reset", err)
		return
	}

	a.begin(a.Snapshot().Phase)
	defer a.end()

	if err := a.provider.SendPasswordReset(ctx, strings.TrimSpace(email)); err != nil {
		a.fail(ctx, "password reset", err)
		return
	}
	a.update(func(st *AuthState) { st.InfoMessage = InfoPasswordReset })
}

func (a *AuthSession) SendEmailVerification(ctx context.Context) {
	if a.provider.CurrentUser() == nil {
		a.fail(ctx, "email verification", ErrNoCurrentUser)
		return
	}

	a.begin(a.Snapshot().Phase)
	defer a.end()

	if err := a.provider.SendEmailVerification(ctx); err != nil {
		a.fail(ctx, "email verification", err)
		return
	}
	a.update(func(st *AuthState) { st.InfoMessage = InfoVerificationSent })
}

// ReloadUser refreshes the profile, e.g. to pick up a confirmed email, and
// then force-refreshes the ID token so its claims match.
func (a *AuthSession) ReloadUser(ctx context.Context) {
	if a.provider.CurrentUser() == nil {
		a.fail(ctx, "reload user", ErrNoCurrentUser)
		return
	}

	a.begin(a.Snapshot().Phase)
	defer a.end()

	u, err := a.provider.ReloadUser(ctx)
	if err != nil {
		a.fail(ctx, "reload user", err)
		return
	}
	a.update(func(st *AuthState) {
		if !st.IsAuthenticated || st.UserID != u.ID {
			return
		}
		st.DisplayName = u.DisplayName
		st.Email = u.Email
		st.EmailVerified = u.EmailVerified
	})
	a.FetchIDToken(ctx, true)
}
