package identity

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/dreamteller/internal/notify"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	defaultTokenTTL  = time.Hour
	minPasswordChars = 6
)

type memAccount struct {
	user     User
	password string
}

// MemoryProvider keeps accounts in process and mints HS256 ID tokens with
// the same claims the auth backend issues.
type MemoryProvider struct {
	mu       sync.Mutex
	accounts map[string]*memAccount
	current  *memAccount
	token    string
	expires  time.Time

	key []byte
	ttl time.Duration
	now func() time.Time

	watchers notify.Hub[*User]

	// outbox of verification and reset requests, by email
	verifications []string
	resets        []string
}

var _ Provider = (*MemoryProvider)(nil)

type MemoryOption func(*MemoryProvider)

// WithSigningKey sets the HMAC key for minted tokens, so a backend sharing
// the key accepts them.
func WithSigningKey(key []byte) MemoryOption {
	return func(p *MemoryProvider) { p.key = key }
}

func WithTokenTTL(ttl time.Duration) MemoryOption {
	return func(p *MemoryProvider) { p.ttl = ttl }
}

func WithClock(now func() time.Time) MemoryOption {
	return func(p *MemoryProvider) { p.now = now }
}

func NewMemoryProvider(opts ...MemoryOption) *MemoryProvider {
	p := &MemoryProvider{
		accounts: make(map[string]*memAccount),
		key:      []byte("dreamteller-memory-provider"),
		ttl:      defaultTokenTTL,
		now:      time.Now,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (p *MemoryProvider) SignIn(ctx context.Context, email, password string) (*User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	acc, ok := p.accounts[normalizeEmail(email)]
	if !ok {
		p.mu.Unlock()
		return nil, ErrUserNotFound
	}
	if acc.password != password {
		p.mu.Unlock()
		return nil, ErrWrongPassword
	}
	u := p.switchTo(acc)
	p.mu.Unlock()

	p.watchers.Publish(u)
	return cloneUser(u), nil
}

func (p *MemoryProvider) SignUp(ctx context.Context, name, email, password string) (*User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key := normalizeEmail(email)
	if !strings.Contains(key, "@") {
		return nil, ErrInvalidEmail
	}
	if len(password) < minPasswordChars {
		return nil, ErrWeakPassword
	}

	p.mu.Lock()
	if _, exists := p.accounts[key]; exists {
		p.mu.Unlock()
		return nil, ErrEmailAlreadyInUse
	}
	acc := &memAccount{
		user: User{
			ID:          uuid.NewString(),
			DisplayName: strings.TrimSpace(name),
			Email:       key,
		},
		password: password,
	}
	p.accounts[key] = acc
	u := p.switchTo(acc)
	p.mu.Unlock()

	p.watchers.Publish(u)
	return cloneUser(u), nil
}

// switchTo makes acc the signed-in account and drops any cached token.
// Caller holds p.mu.
func (p *MemoryProvider) switchTo(acc *memAccount) *User {
	p.current = acc
	p.token = ""
	p.expires = time.Time{}
	return cloneUser(&acc.user)
}

func (p *MemoryProvider) SignOut(ctx context.Context) error {
	p.mu.Lock()
	wasSignedIn := p.current != nil
	p.current = nil
	p.token = ""
	p.mu.Unlock()

	if wasSignedIn {
		p.watchers.Publish(nil)
	}
	return nil
}

func (p *MemoryProvider) CurrentUser() *User {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return nil
	}
	return cloneUser(&p.current.user)
}

func (p *MemoryProvider) IDToken(ctx context.Context, forceRefresh bool) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current == nil {
		return "", ErrNoCurrentUser
	}
	now := p.now()
	if !forceRefresh && p.token != "" && now.Before(p.expires) {
		return p.token, nil
	}

	u := p.current.user
	exp := now.Add(p.ttl)
	claims := jwt.MapClaims{
		"sub":            u.ID,
		"email":          u.Email,
		"name":           u.DisplayName,
		"email_verified": u.EmailVerified,
		"iat":            now.Unix(),
		"exp":            exp.Unix(),
		"jti":            uuid.NewString(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.key)
	if err != nil {
		return "", err
	}
	p.token = signed
	p.expires = exp
	return signed, nil
}

func (p *MemoryProvider) WatchAuthState(ctx context.Context) <-chan *User {
	return p.watchers.SubscribeContext(ctx, p.CurrentUser())
}

func (p *MemoryProvider) SendPasswordReset(ctx context.Context, email string) error {
	key := normalizeEmail(email)
	if !strings.Contains(key, "@") {
		return ErrInvalidEmail
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.accounts[key]; !ok {
		return ErrUserNotFound
	}
	p.resets = append(p.resets, key)
	return nil
}

func (p *MemoryProvider) SendEmailVerification(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return ErrNoCurrentUser
	}
	p.verifications = append(p.verifications, p.current.user.Email)
	return nil
}

// ConfirmEmail marks the account verified, as following the emailed link
// would.
func (p *MemoryProvider) ConfirmEmail(email string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	acc, ok := p.accounts[normalizeEmail(email)]
	if ok {
		acc.user.EmailVerified = true
	}
	return ok
}

func (p *MemoryProvider) ReloadUser(ctx context.Context) (*User, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return nil, ErrNoCurrentUser
	}
	return cloneUser(&p.current.user), nil
}

// SentVerifications lists the addresses verification mail was requested for.
func (p *MemoryProvider) SentVerifications() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.verifications...)
}

func (p *MemoryProvider) SentResets() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.resets...)
}
