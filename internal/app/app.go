// Package app wires the team-analyzer runtime: config, logging, database,
// migrations and the token services, plus the operational HTTP listener.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fabsGitHub/team-analyzer/internal/auth"
	"github.com/fabsGitHub/team-analyzer/internal/auth/session"
	"github.com/fabsGitHub/team-analyzer/internal/clock"
	"github.com/fabsGitHub/team-analyzer/internal/download"
	"github.com/fabsGitHub/team-analyzer/internal/identity"
	"github.com/fabsGitHub/team-analyzer/internal/survey"
	"github.com/fabsGitHub/team-analyzer/internal/surveytoken"
)

// App owns the process runtime and the wired service graph. External
// transports (the product API) consume the exported services.
type App struct {
	cfg Config
	log Logger

	pool *pgxpool.Pool

	Auth    *auth.Flows
	Users   *identity.Service
	Surveys *survey.Service
	Tokens  *surveytoken.Manager
}

// New constructs a fully wired App: database pool, migrations applied, all
// token services ready.
func New(ctx context.Context, cfg Config, log Logger) (*App, error) {
	if log == nil {
		log = NewLogger(cfg.LogLevel)
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("TEAMANALYZER_DATABASE_URL is required")
	}

	if err := RunMigrations(ctx, cfg.DatabaseURL); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	pool, err := NewDBPool(ctx, cfg)
	if err != nil {
		return nil, err
	}

	sessCfg, err := session.LoadConfigFromEnv()
	if err != nil {
		pool.Close()
		return nil, err
	}
	access, err := session.NewAccessTokenManager(sessCfg)
	if err != nil {
		pool.Close()
		return nil, err
	}
	sessions := session.NewService(sessCfg, pool, session.NewPostgresStore(pool))

	downloadSecret := cfg.DownloadSecret
	if len(downloadSecret) == 0 {
		downloadSecret = sessCfg.AccessSecret
	}
	downloads := download.NewIssuer(downloadSecret, cfg.DownloadTTL)

	userStore := identity.NewPostgresStore(pool)
	verifier := identity.NewVerifyTokenIssuer(sessCfg.Issuer, sessCfg.AccessSecret, cfg.VerifyTTL)
	users := identity.NewService(userStore, verifier, cfg.ResetTTL, log)

	tokens := surveytoken.NewManager(surveytoken.NewPostgresStore(pool), log)
	surveys := survey.NewService(pool, survey.NewPostgresStore(pool), tokens, downloads, log)

	return &App{
		cfg:     cfg,
		log:     log,
		pool:    pool,
		Auth:    auth.NewFlows(users, userStore, access, sessions, clock.System{}, log),
		Users:   users,
		Surveys: surveys,
		Tokens:  tokens,
	}, nil
}

// Run starts the operational HTTP server and blocks until context
// cancellation or a fatal server error.
func (a *App) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	registerHTTP(mux, a.log, a.pool)

	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           WithRequestLogging(mux, a.log),
		ReadHeaderTimeout: a.cfg.ReadHeaderTimeout,
		ReadTimeout:       a.cfg.ReadTimeout,
		WriteTimeout:      a.cfg.WriteTimeout,
		IdleTimeout:       a.cfg.IdleTimeout,
		MaxHeaderBytes:    a.cfg.MaxHeaderBytes,
	}

	a.log.Info("server.start", "addr", a.cfg.HTTPAddr)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.log.Info("server.stop", "reason", "context_done")
	case err := <-errCh:
		a.log.Error("server.fail", "err", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error("server.shutdown.fail", "err", err)
		return err
	}

	a.pool.Close()
	a.log.Info("server.stopped")
	return nil
}
