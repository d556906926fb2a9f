// Package httpapi exposes the authentication service over HTTP JSON:
// register, login, refresh, and revoke endpoints.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/cors"

	"github.com/msavelyev/authkeeper/internal/logging"
	"github.com/msavelyev/authkeeper/internal/server/services"
)

// IdentityService is the slice of the service layer the handlers need.
type IdentityService interface {
	Register(ctx context.Context, email, password string) (*services.AuthResult, error)
	Login(ctx context.Context, email, password string) (*services.AuthResult, error)
	Refresh(ctx context.Context, accessToken, refreshToken string) (*services.AuthResult, error)
	RevokeAll(ctx context.Context, accessToken string) error
}

// Server serves the public HTTP endpoint.
type Server struct {
	address  string
	logger   logging.Logger
	identity IdentityService
}

// NewServer constructs a Server listening on address.
func NewServer(address string, l logging.Logger, identity IdentityService) *Server {
	return &Server{
		address:  address,
		logger:   l.With("module", "http_server"),
		identity: identity,
	}
}

// Handler builds the routed handler with CORS applied. Split from Run so
// tests can drive it through httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/register", s.handleRegister)
	mux.HandleFunc("POST /v1/login", s.handleLogin)
	mux.HandleFunc("POST /v1/refresh", s.handleRefresh)
	mux.HandleFunc("POST /v1/revoke", s.handleRevoke)

	return cors.Default().Handler(mux)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
