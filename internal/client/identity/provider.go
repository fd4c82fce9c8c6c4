// Package identity talks to the account backend: password sign-in and
// sign-up, ID tokens, and a push stream of auth-state changes.
//
// Two providers are available. HTTPProvider speaks the REST auth API served
// under auth/v1. MemoryProvider keeps accounts in process and is meant for
// tests and offline demos.
package identity

import "context"

// User is the identity snapshot a provider reports.
type User struct {
	ID            string
	DisplayName   string
	Email         string
	EmailVerified bool
}

// Provider is the external identity collaborator. All methods are safe for
// concurrent use.
type Provider interface {
	SignIn(ctx context.Context, email, password string) (*User, error)
	SignUp(ctx context.Context, name, email, password string) (*User, error)
	SignOut(ctx context.Context) error

	// CurrentUser returns nil when nobody is signed in.
	CurrentUser() *User

	// IDToken returns a bearer token for the current user. A cached token is
	// reused until it expires unless forceRefresh is set.
	IDToken(ctx context.Context, forceRefresh bool) (string, error)

	// WatchAuthState emits the current user immediately and then every
	// change; nil means signed out. The channel is closed when ctx ends.
	// Slow readers only see the latest value.
	WatchAuthState(ctx context.Context) <-chan *User

	SendPasswordReset(ctx context.Context, email string) error
	SendEmailVerification(ctx context.Context) error

	// ReloadUser refreshes the profile of the current user from the backend.
	ReloadUser(ctx context.Context) (*User, error)
}

func cloneUser(u *User) *User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
