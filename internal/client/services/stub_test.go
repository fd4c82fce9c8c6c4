package services

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/dmitrijs2005/dreamteller/internal/client/client"
)

type stubResponse struct {
	status int
	body   string
}

// apiStub is a scripted dream API. Routes are keyed by "METHOD /path".
// When gate is set every request blocks on it after announcing itself on
// entered.
type apiStub struct {
	mu       sync.Mutex
	routes   map[string]stubResponse
	hits     map[string]int
	total    int
	lastBody map[string][]byte
	lastAuth string

	gate    chan struct{}
	entered chan string

	// held gates only the next request to a route.
	held map[string]*heldRequest
}

type heldRequest struct {
	entered chan struct{}
	gate    chan struct{}
}

func newAPIStub() *apiStub {
	return &apiStub{
		routes:   make(map[string]stubResponse),
		hits:     make(map[string]int),
		lastBody: make(map[string][]byte),
		held:     make(map[string]*heldRequest),
	}
}

func (s *apiStub) route(key string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes[key] = stubResponse{status: status, body: body}
}

func (s *apiStub) hold() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gate = make(chan struct{})
	s.entered = make(chan string, 16)
}

// holdNext blocks the next request to key until release is called. Later
// requests to the same route are served immediately.
func (s *apiStub) holdNext(key string) (entered <-chan struct{}, release func()) {
	h := &heldRequest{entered: make(chan struct{}), gate: make(chan struct{})}
	s.mu.Lock()
	s.held[key] = h
	s.mu.Unlock()
	var once sync.Once
	return h.entered, func() { once.Do(func() { close(h.gate) }) }
}

func (s *apiStub) release() {
	s.mu.Lock()
	gate := s.gate
	s.mu.Unlock()
	close(gate)
}

func (s *apiStub) hitCount(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[key]
}

func (s *apiStub) totalHits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

func (s *apiStub) bodyOf(key string) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastBody[key]
}

func (s *apiStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := r.Method + " " + r.URL.Path
	body, _ := io.ReadAll(r.Body)

	s.mu.Lock()
	s.hits[key]++
	s.total++
	s.lastBody[key] = body
	s.lastAuth = r.Header.Get("Authorization")
	resp, ok := s.routes[key]
	gate, entered := s.gate, s.entered
	held := s.held[key]
	delete(s.held, key)
	s.mu.Unlock()

	if held != nil {
		close(held.entered)
		<-held.gate
	}
	if gate != nil {
		entered <- key
		<-gate
	}
	if !ok {
		resp = stubResponse{status: http.StatusNotFound, body: "no route " + key}
	}
	w.WriteHeader(resp.status)
	_, _ = io.WriteString(w, resp.body)
}

// newStoreWithStub wires a DreamStore to a fresh stub. The session starts
// without a token.
func newStoreWithStub(t *testing.T) (*DreamStore, *apiStub) {
	t.Helper()
	stub := newAPIStub()
	srv := httptest.NewServer(stub)
	t.Cleanup(srv.Close)

	c := client.NewHTTPClient(client.HTTPClientConfig{BaseURL: srv.URL})
	return NewDreamStore(c, client.NewSession(), nil), stub
}

func (s *apiStub) auth() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAuth
}
