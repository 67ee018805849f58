// Package server initializes and runs the application server: it wires the
// storage backend, the ledger engine, the session manager and the conversion
// simulator, and serves the HTTP API until shut down.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/statementkit/statementkit/internal/logging"
	"github.com/statementkit/statementkit/internal/server/config"
	"github.com/statementkit/statementkit/internal/server/convert"
	"github.com/statementkit/statementkit/internal/server/guests"
	"github.com/statementkit/statementkit/internal/server/httpapi"
	"github.com/statementkit/statementkit/internal/server/ledger"
	"github.com/statementkit/statementkit/internal/server/sessions"
	"github.com/statementkit/statementkit/internal/server/storage"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	storage storage.Manager
	server  *httpapi.Server
}

func NewApp(cfg *config.Config) (*App, error) {

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	sm, err := storage.NewManager(cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	engine := ledger.NewEngine(sm.Accounts(), cfg)
	manager := sessions.NewManager(sm.Accounts(), sm.Sessions(), engine, cfg)
	simulator := convert.NewSimulator(cfg.ConversionDelay, cfg.MaxPagesPerFile)
	guestService := guests.NewService(sm.Guests(), cfg.GuestMonthlyLimit, cfg.GuestPageLimit)

	srv := httpapi.NewServer(cfg.EndpointAddrHTTP, logger, sm.Accounts(), manager, engine, simulator, guestService)

	return &App{config: cfg, logger: logger, storage: sm, server: srv}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.storage.Close(); err != nil {
		app.logger.Error(ctx, err.Error())
	}
}
