// Package httpapi exposes the account, session, ledger and conversion
// operations as a JSON API for the browser view layer.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/statementkit/statementkit/internal/logging"
	"github.com/statementkit/statementkit/internal/server/accounts"
	"github.com/statementkit/statementkit/internal/server/convert"
	"github.com/statementkit/statementkit/internal/server/guests"
	"github.com/statementkit/statementkit/internal/server/ledger"
	"github.com/statementkit/statementkit/internal/server/sessions"
)

type Server struct {
	address   string
	logger    logging.Logger
	store     accounts.Store
	sessions  *sessions.Manager
	engine    *ledger.Engine
	simulator *convert.Simulator
	guests    *guests.Service
}

func NewServer(address string, l logging.Logger, store accounts.Store, sm *sessions.Manager, e *ledger.Engine, sim *convert.Simulator, g *guests.Service) *Server {
	return &Server{
		address:   address,
		logger:    l.With("module", "http_server"),
		store:     store,
		sessions:  sm,
		engine:    e,
		simulator: sim,
		guests:    g,
	}
}

// Router builds the mux router with all API routes and middleware.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(metricsMiddleware)
	r.Use(s.loggingMiddleware)

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/signup", s.handleSignup).Methods(http.MethodPost)
	api.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)
	api.HandleFunc("/refresh", s.handleRefresh).Methods(http.MethodPost)
	api.HandleFunc("/logout", s.handleLogout).Methods(http.MethodPost)
	api.HandleFunc("/guest/convert", s.handleGuestConvert).Methods(http.MethodPost)

	api.HandleFunc("/me", s.withAuth(s.handleMe)).Methods(http.MethodGet)
	api.HandleFunc("/convert", s.withAuth(s.handleConvert)).Methods(http.MethodPost)
	api.HandleFunc("/history", s.withAuth(s.handleHistory)).Methods(http.MethodGet)
	api.HandleFunc("/credits", s.withAuth(s.handleCredits)).Methods(http.MethodGet)
	api.HandleFunc("/conversions/{id}/download", s.withAuth(s.handleDownload)).Methods(http.MethodGet)

	return r
}

// Run serves the API until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {

	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.Router(),
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

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
