// Package httpapi serves the identity (auth/v1) and dream (api) endpoints
// over HTTP.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/dreamteller/internal/logging"
	"github.com/dmitrijs2005/dreamteller/internal/server/services"
	"github.com/gorilla/mux"
)

const (
	shutdownTimeout = 5 * time.Second
	maxBodyBytes    = 1 << 20
)

type HTTPServer struct {
	address       string
	users         *services.UserService
	dreams        *services.DreamService
	notifications *services.NotificationService
	logger        logging.Logger
	jwtSecret     []byte
}

func NewHTTPServer(a string, l logging.Logger, us *services.UserService, ds *services.DreamService,
	ns *services.NotificationService, secretKey string) *HTTPServer {
	return &HTTPServer{
		address:       a,
		logger:        l.With("module", "http_server"),
		users:         us,
		dreams:        ds,
		notifications: ns,
		jwtSecret:     []byte(secretKey),
	}
}

// Handler returns the routed handler with request logging applied.
func (s *HTTPServer) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(s.logRequests)

	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)

	id := r.PathPrefix("/auth/v1").Subrouter()
	id.HandleFunc("/signup", s.handleSignUp).Methods(http.MethodPost)
	id.HandleFunc("/token", s.handleToken).Methods(http.MethodPost)
	id.HandleFunc("/recover", s.handleRecover).Methods(http.MethodPost)
	id.HandleFunc("/verify", s.handleVerify).Methods(http.MethodGet)
	id.Handle("/logout", s.requireIdentity(s.handleLogout)).Methods(http.MethodPost)
	id.Handle("/resend", s.requireIdentity(s.handleResend)).Methods(http.MethodPost)
	id.Handle("/user", s.requireIdentity(s.handleGetUser)).Methods(http.MethodGet)
	id.Handle("/user", s.requireIdentity(s.handleUpdateUser)).Methods(http.MethodPut)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(s.requireToken)
	api.HandleFunc("/dream/history/entryList/{year:[0-9]{4}}/{month:[0-9]{1,2}}", s.handleMonthEntries).Methods(http.MethodGet)
	api.HandleFunc("/dream/history/{dateKey}", s.handleListDay).Methods(http.MethodGet)
	api.HandleFunc("/dream/interpret", s.handleInterpret).Methods(http.MethodPost)
	api.HandleFunc("/dream/image/{id}", s.handleImage).Methods(http.MethodGet)
	api.HandleFunc("/notification/subscriptions", s.handleGetSubscriptions).Methods(http.MethodGet)
	api.HandleFunc("/notification/subscriptions", s.handleSetSubscriptions).Methods(http.MethodPost)
	api.HandleFunc("/notification/fcm", s.handleFCM).Methods(http.MethodPost)

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
