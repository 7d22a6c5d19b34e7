package app

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/lobby-server/internal/auth"
	"github.com/vovakirdan/lobby-server/internal/config"
	"github.com/vovakirdan/lobby-server/internal/lobby"
	"github.com/vovakirdan/lobby-server/internal/store"
	"github.com/vovakirdan/lobby-server/internal/store/sqlite"
	transporthttp "github.com/vovakirdan/lobby-server/internal/transport/http"
)

// App wires together the lobby and transport layers.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	manager         *lobby.Manager
	journal         store.Journal
	recorder        *Recorder
	log             *zerolog.Logger

	unsubscribe []func()
}

// New constructs the application with provided configuration.
func New(cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	manager := lobby.NewManager()

	a := &App{
		shutdownTimeout: cfg.ShutdownTimeout,
		manager:         manager,
		log:             logger,
	}

	if cfg.DatabasePath != "" {
		st, err := sqlite.New(cfg.DatabasePath)
		if err != nil {
			return nil, fmt.Errorf("init journal: %w", err)
		}
		logger.Info().Str("db_path", cfg.DatabasePath).Msg("journal initialized")

		a.journal = st
		a.recorder = NewRecorder(st, cfg.EventBuffer, logger)
		a.unsubscribe = append(a.unsubscribe, manager.Subscribe(a.recorder.Listen))
	} else {
		logger.Info().Msg("journal disabled")
	}

	a.unsubscribe = append(a.unsubscribe, manager.Subscribe(EventLogger(logger)))

	authService := auth.NewService(&auth.JWTConfig{
		Secret:   []byte(cfg.JWTSecret),
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
		TTL:      cfg.JWTTTL,
	})

	a.server = transporthttp.NewServer(manager, authService, a.journal, cfg, logger)
	return a, nil
}

// Manager returns the room registry served by the app.
func (a *App) Manager() *lobby.Manager {
	return a.manager
}

// Run starts the HTTP server and blocks until context cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	recorderCtx, stopRecorder := context.WithCancel(context.Background())
	recorderDone := make(chan struct{})
	go func() {
		defer close(recorderDone)
		if a.recorder != nil {
			a.recorder.Run(recorderCtx)
		}
	}()
	defer func() {
		stopRecorder()
		<-recorderDone
		a.cleanup()
	}()

	go func() {
		a.log.Info().Str("addr", a.server.Addr).Msg("http server listening")
		if err := a.server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return <-serverErr
	}
}

// cleanup detaches listeners and closes the journal.
func (a *App) cleanup() {
	for _, unsubscribe := range a.unsubscribe {
		unsubscribe()
	}
	a.unsubscribe = nil

	if a.journal != nil {
		if err := a.journal.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close journal")
		} else {
			a.log.Info().Msg("journal closed")
		}
		a.journal = nil
	}
}
