// Package httpapi exposes the JSON API over HTTP: account lifecycle,
// cookie sessions with CSRF protection, and credential storage.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/srolel/passkeep/internal/logging"
	"github.com/srolel/passkeep/internal/server/models"
	"github.com/srolel/passkeep/internal/server/services"
)

// SessionManager is the session lifecycle the handlers depend on.
type SessionManager interface {
	Login(ctx context.Context, username, password, ip string) (*services.Session, error)
	Refresh(ctx context.Context, authToken string) (*services.Session, error)
	Logout(ctx context.Context, authToken string) error
	Resolve(ctx context.Context, authToken string) (*models.User, error)
}

// AccountLifecycle is the account lifecycle the handlers depend on.
type AccountLifecycle interface {
	Register(ctx context.Context, username, email, password string) error
	Activate(ctx context.Context, token string) error
	ForgotPassword(ctx context.Context, email string) error
	ChangePassword(ctx context.Context, token, newPassword string) error
}

// CredentialStore stores and searches credential entries for a user.
type CredentialStore interface {
	Add(ctx context.Context, userID int64, site, siteUsername, sitePassword string) error
	Search(ctx context.Context, userID int64, site string) ([]*models.CredentialEntry, error)
}

type Server struct {
	addr        string
	logger      logging.Logger
	cookies     *CookieSettings
	sessions    SessionManager
	accounts    AccountLifecycle
	credentials CredentialStore
}

func NewServer(addr string, logger logging.Logger, cookies *CookieSettings,
	sessions SessionManager, accounts AccountLifecycle, credentials CredentialStore) *Server {
	return &Server{
		addr:        addr,
		logger:      logger,
		cookies:     cookies,
		sessions:    sessions,
		accounts:    accounts,
		credentials: credentials,
	}
}

// Router assembles the route table. Every endpoint is a POST: even reads
// carry secrets in the body, which keeps them out of access logs and
// browser history.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Route("/api", func(r chi.Router) {
		r.Post("/register", s.handleRegister)
		r.Post("/confirm", s.handleConfirm)
		r.Post("/login", s.handleLogin)
		r.Post("/refresh", s.handleRefresh)
		r.Post("/logout", s.handleLogout)
		r.Post("/forgot-password", s.handleForgotPassword)
		r.Post("/change-password", s.handleChangePassword)
		r.Post("/passwords", s.handleAddCredential)
		r.Post("/passwords/search", s.handleSearchCredentials)
	})

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {

	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	s.logger.Info(ctx, "http server listening", "addr", s.addr)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.logger.Info(ctx, "http server shutting down")
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		s.logger.Info(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start).String(),
		)
	})
}
