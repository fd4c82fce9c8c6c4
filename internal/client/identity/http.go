package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/dreamteller/internal/common"
	"github.com/dmitrijs2005/dreamteller/internal/logging"
	"github.com/dmitrijs2005/dreamteller/internal/notify"
	"github.com/golang-jwt/jwt/v5"
	"github.com/tidwall/gjson"
	"golang.org/x/oauth2"
)

const (
	pathSignUp  = "auth/v1/signup"
	pathToken   = "auth/v1/token?grant_type=password"
	pathRefresh = "auth/v1/token?grant_type=refresh_token"
	pathLogout  = "auth/v1/logout"
	pathRecover = "auth/v1/recover"
	pathResend  = "auth/v1/resend"
	pathUser    = "auth/v1/user"

	defaultTimeout = 30 * time.Second
)

type HTTPProviderConfig struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     logging.Logger
}

// HTTPProvider is a password-grant client for the auth/v1 REST API.
// Access tokens are cached and refreshed through an oauth2.TokenSource; the
// signed-in identity is read from the access token claims.
type HTTPProvider struct {
	baseURL    string
	httpClient *http.Client
	logger     logging.Logger

	mu      sync.Mutex
	user    *User
	last    *oauth2.Token
	refresh *refreshSource
	source  oauth2.TokenSource

	watchers notify.Hub[*User]
}

var _ Provider = (*HTTPProvider)(nil)

type sessionResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
}

type idClaims struct {
	Email         string `json:"email"`
	Name          string `json:"name"`
	EmailVerified bool   `json:"email_verified"`
	jwt.RegisteredClaims
}

func NewHTTPProvider(cfg HTTPProviderConfig) *HTTPProvider {
	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}
	var logger logging.Logger = logging.NewNopLogger()
	if cfg.Logger != nil {
		logger = cfg.Logger
	}
	return &HTTPProvider{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: hc,
		logger:     logger,
	}
}

// userFromToken reads identity and expiry from an access token. The
// signature is checked by the API, not here.
func userFromToken(access string) (*User, time.Time, error) {
	var c idClaims
	if _, _, err := jwt.NewParser().ParseUnverified(access, &c); err != nil {
		return nil, time.Time{}, fmt.Errorf("parse access token: %w", err)
	}
	if c.Subject == "" {
		return nil, time.Time{}, fmt.Errorf("access token has no subject")
	}
	var exp time.Time
	if c.ExpiresAt != nil {
		exp = c.ExpiresAt.Time
	}
	return &User{
		ID:            c.Subject,
		DisplayName:   c.Name,
		Email:         c.Email,
		EmailVerified: c.EmailVerified,
	}, exp, nil
}

func (s *sessionResponse) oauthToken() (*oauth2.Token, *User, error) {
	if s.AccessToken == "" {
		return nil, nil, fmt.Errorf("auth response has no access token")
	}
	u, exp, err := userFromToken(s.AccessToken)
	if err != nil {
		return nil, nil, err
	}
	if exp.IsZero() && s.ExpiresIn > 0 {
		exp = time.Now().Add(time.Duration(s.ExpiresIn) * time.Second)
	}
	return &oauth2.Token{
		AccessToken:  s.AccessToken,
		TokenType:    s.TokenType,
		RefreshToken: s.RefreshToken,
		Expiry:       exp,
	}, u, nil
}

func (p *HTTPProvider) SignIn(ctx context.Context, email, password string) (*User, error) {
	var sess sessionResponse
	err := p.call(ctx, http.MethodPost, pathToken, "", map[string]string{
		"email":    email,
		"password": password,
	}, &sess)
	if err != nil {
		return nil, err
	}
	return p.startSession(ctx, &sess)
}

func (p *HTTPProvider) SignUp(ctx context.Context, name, email, password string) (*User, error) {
	var sess sessionResponse
	err := p.call(ctx, http.MethodPost, pathSignUp, "", map[string]any{
		"email":    email,
		"password": password,
		"data":     map[string]string{"name": name},
	}, &sess)
	if err != nil {
		return nil, err
	}
	// Backends that hold new accounts until confirmation answer without a
	// session.
	if sess.AccessToken == "" {
		return p.SignIn(ctx, email, password)
	}
	return p.startSession(ctx, &sess)
}

func (p *HTTPProvider) startSession(ctx context.Context, sess *sessionResponse) (*User, error) {
	tok, u, err := sess.oauthToken()
	if err != nil {
		return nil, err
	}

	rs := &refreshSource{
		p:            p,
		ctx:          context.WithoutCancel(ctx),
		refreshToken: tok.RefreshToken,
	}

	p.mu.Lock()
	p.user = u
	p.last = tok
	p.refresh = rs
	p.source = oauth2.ReuseTokenSource(tok, rs)
	p.mu.Unlock()

	p.logger.Info(ctx, "signed in", "user_id", u.ID)
	p.watchers.Publish(cloneUser(u))
	return cloneUser(u), nil
}

func (p *HTTPProvider) SignOut(ctx context.Context) error {
	p.mu.Lock()
	last := p.last
	wasSignedIn := p.user != nil
	p.user, p.last, p.refresh, p.source = nil, nil, nil, nil
	p.mu.Unlock()

	if !wasSignedIn {
		return nil
	}
	if last != nil {
		if err := p.call(ctx, http.MethodPost, pathLogout, last.AccessToken, nil, nil); err != nil {
			p.logger.Warn(ctx, "remote logout failed", "error", err)
		}
	}
	p.watchers.Publish(nil)
	return nil
}

func (p *HTTPProvider) CurrentUser() *User {
	p.mu.Lock()
	defer p.mu.Unlock()
	return cloneUser(p.user)
}

func (p *HTTPProvider) IDToken(ctx context.Context, forceRefresh bool) (string, error) {
	p.mu.Lock()
	src, rs := p.source, p.refresh
	p.mu.Unlock()
	if src == nil {
		return "", ErrNoCurrentUser
	}

	if !forceRefresh {
		tok, err := src.Token()
		if err != nil {
			return "", err
		}
		return tok.AccessToken, nil
	}

	tok, err := rs.refreshWith(ctx)
	if err != nil {
		return "", err
	}
	p.mu.Lock()
	if p.refresh == rs {
		p.source = oauth2.ReuseTokenSource(tok, rs)
	}
	p.mu.Unlock()
	return tok.AccessToken, nil
}

// adopt records a refreshed token and the identity it carries, unless the
// session it belongs to has ended. Refreshes never emit an auth-state change.
func (p *HTTPProvider) adopt(rs *refreshSource, tok *oauth2.Token, u *User) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.refresh != rs {
		return
	}
	p.last = tok
	p.user = u
}

func (p *HTTPProvider) WatchAuthState(ctx context.Context) <-chan *User {
	return p.watchers.SubscribeContext(ctx, p.CurrentUser())
}

func (p *HTTPProvider) SendPasswordReset(ctx context.Context, email string) error {
	return p.call(ctx, http.MethodPost, pathRecover, "", map[string]string{"email": email}, nil)
}

func (p *HTTPProvider) SendEmailVerification(ctx context.Context) error {
	u := p.CurrentUser()
	if u == nil {
		return ErrNoCurrentUser
	}
	access, err := p.IDToken(ctx, false)
	if err != nil {
		return err
	}
	return p.call(ctx, http.MethodPost, pathResend, access, map[string]string{
		"type":  "signup",
		"email": u.Email,
	}, nil)
}

func (p *HTTPProvider) ReloadUser(ctx context.Context) (*User, error) {
	access, err := p.IDToken(ctx, false)
	if err != nil {
		return nil, err
	}
	var raw json.RawMessage
	if err := p.call(ctx, http.MethodGet, pathUser, access, nil, &raw); err != nil {
		return nil, err
	}

	name := gjson.GetBytes(raw, "user_metadata.name").String()
	if name == "" {
		name = gjson.GetBytes(raw, "name").String()
	}
	verified := gjson.GetBytes(raw, "email_verified").Bool() ||
		gjson.GetBytes(raw, "email_confirmed_at").String() != ""
	u := &User{
		ID:            gjson.GetBytes(raw, "id").String(),
		DisplayName:   name,
		Email:         gjson.GetBytes(raw, "email").String(),
		EmailVerified: verified,
	}
	if u.ID == "" {
		return nil, fmt.Errorf("user response has no id")
	}

	p.mu.Lock()
	if p.user == nil {
		p.mu.Unlock()
		return nil, ErrNoCurrentUser
	}
	p.user = u
	p.mu.Unlock()
	return cloneUser(u), nil
}

// call issues one JSON request. out may be nil when the body is ignored.
func (p *HTTPProvider) call(ctx context.Context, method, path, bearer string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+"/"+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+bearer)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("auth request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	p.logger.Debug(ctx, "auth call", "method", method, "path", path, "status", resp.StatusCode)

	if resp.StatusCode >= 400 {
		return parseError(resp.StatusCode, respBody)
	}
	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

func firstString(body []byte, paths ...string) string {
	for _, path := range paths {
		if r := gjson.GetBytes(body, path); r.Type == gjson.String && r.Str != "" {
			return r.Str
		}
	}
	return ""
}

// parseError maps an auth error payload onto the provider sentinels. The
// API has used several payload shapes over time, so both code and message
// are looked up under every known key.
func parseError(status int, body []byte) error {
	code := firstString(body, "error_code", "code", "error")
	msg := firstString(body, "msg", "message", "error_description", "error")

	switch code {
	case "user_not_found":
		return ErrUserNotFound
	case "invalid_credentials", "wrong_password":
		return ErrWrongPassword
	case "email_exists", "user_already_exists":
		return ErrEmailAlreadyInUse
	case "weak_password":
		return ErrWeakPassword
	case "email_address_invalid", "validation_failed":
		return ErrInvalidEmail
	case "session_not_found", "refresh_token_not_found", "no_authorization":
		return ErrNoCurrentUser
	}
	if msg == "" && !gjson.ValidBytes(body) {
		msg = strings.TrimSpace(string(body))
	}
	return &APIError{StatusCode: status, Code: code, Message: msg}
}

// refreshSource trades the refresh token for a new access token. It backs
// the oauth2.ReuseTokenSource of one signed-in session.
type refreshSource struct {
	p   *HTTPProvider
	ctx context.Context

	mu           sync.Mutex
	refreshToken string
}

func (s *refreshSource) Token() (*oauth2.Token, error) {
	return s.refreshWith(s.ctx)
}

func (s *refreshSource) refreshWith(ctx context.Context) (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.refreshToken == "" {
		return nil, ErrNoCurrentUser
	}

	var sess sessionResponse
	err := s.p.call(ctx, http.MethodPost, pathRefresh, "", map[string]string{
		"refresh_token": s.refreshToken,
	}, &sess)
	if err != nil {
		return nil, err
	}
	tok, u, err := sess.oauthToken()
	if err != nil {
		return nil, err
	}
	if tok.RefreshToken != "" {
		s.refreshToken = tok.RefreshToken
	}
	s.p.adopt(s, tok, u)
	return tok, nil
}
