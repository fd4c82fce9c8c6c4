package client

import "sync"

// Session holds the current bearer token. The auth layer writes it; the
// dream store only reads it through RequireToken.
type Session struct {
	mu    sync.RWMutex
	token string
}

func NewSession() *Session {
	return &Session{}
}

// SetToken replaces the held token. An empty string clears it.
func (s *Session) SetToken(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

// RequireToken returns the token, or ErrUnauthorized when none is held.
func (s *Session) RequireToken() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == "" {
		return "", ErrUnauthorized
	}
	return s.token, nil
}
