// Package app wires configuration, storage, services, and transport into
// a runnable HTTP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mkovalev/mybooks-backend/internal/adapter/postgres"
	authorrepo "github.com/mkovalev/mybooks-backend/internal/adapter/postgres/author"
	editionrepo "github.com/mkovalev/mybooks-backend/internal/adapter/postgres/edition"
	entryrepo "github.com/mkovalev/mybooks-backend/internal/adapter/postgres/libraryentry"
	cacherepo "github.com/mkovalev/mybooks-backend/internal/adapter/postgres/resolutioncache"
	workrepo "github.com/mkovalev/mybooks-backend/internal/adapter/postgres/work"
	workauthorrepo "github.com/mkovalev/mybooks-backend/internal/adapter/postgres/workauthor"
	"github.com/mkovalev/mybooks-backend/internal/auth"
	"github.com/mkovalev/mybooks-backend/internal/config"
	"github.com/mkovalev/mybooks-backend/internal/resolver"
	"github.com/mkovalev/mybooks-backend/internal/service/importer"
	"github.com/mkovalev/mybooks-backend/internal/service/library"
	"github.com/mkovalev/mybooks-backend/internal/transport/middleware"
	"github.com/mkovalev/mybooks-backend/internal/transport/rest"
)

// importRateLimit caps CSV uploads per IP per minute. Imports are heavy
// and a client has no reason to fire more than a handful.
const importRateLimit = 10

// Run is the application entry point. It loads configuration, connects to
// the database, wires repositories, resolvers, and services, and serves
// HTTP until ctx is cancelled.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	txm := postgres.NewTxManager(pool)

	// Repositories.
	works := workrepo.New(pool)
	editions := editionrepo.New(pool)
	authors := authorrepo.New(pool)
	workAuthors := workauthorrepo.New(pool)
	entries := entryrepo.New(pool)
	cache := cacherepo.New(pool)

	// Resolvers, one per entity kind, all sharing the durable cache.
	workResolver := resolver.Works(logger, works, cache)
	editionResolver := resolver.Editions(logger, editions, cache)
	authorResolver := resolver.Authors(logger, authors, cache)

	// Services.
	importService := importer.NewService(
		logger, workResolver, editionResolver, authorResolver,
		editions, authors, workAuthors, cfg.Import.MaxRows,
	)
	libraryService := library.NewService(
		logger, entries, works, editions, authors, workAuthors, txm,
	)

	// Auth.
	jwtMgr := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.AccessTokenTTL)
	adminVerifier := auth.NewAdminKeyVerifier(cfg.Auth.AdminKeyHash)
	if !adminVerifier.Enabled() {
		logger.Warn("admin key not configured, admin endpoints disabled")
	}

	// Handlers.
	healthHandler := rest.NewHealthHandler(pool, BuildVersion())
	importHandler := rest.NewImportHandler(importService, logger, cfg.Import.MaxUploadBytes)
	libraryHandler := rest.NewLibraryHandler(libraryService, logger)
	adminHandler := rest.NewAdminHandler(libraryService, []rest.CacheMaintainer{
		workResolver, editionResolver, authorResolver,
	}, logger)

	rl := middleware.NewRateLimiter(time.Minute)
	defer rl.Stop()

	mux := newMux(muxDeps{
		cfg:      cfg,
		logger:   logger,
		jwt:      jwtMgr,
		admin:    adminVerifier,
		limiter:  rl,
		health:   healthHandler,
		importer: importHandler,
		library:  libraryHandler,
		adminH:   adminHandler,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	return nil
}

type muxDeps struct {
	cfg      *config.Config
	logger   *slog.Logger
	jwt      *auth.JWTManager
	admin    *auth.AdminKeyVerifier
	limiter  *middleware.RateLimiter
	health   *rest.HealthHandler
	importer *rest.ImportHandler
	library  *rest.LibraryHandler
	adminH   *rest.AdminHandler
}

func newMux(d muxDeps) http.Handler {
	base := middleware.Chain(
		middleware.Recovery(d.logger),
		middleware.RequestID(),
		middleware.CORS(d.cfg.CORS),
		middleware.Logger(d.logger),
	)
	authed := middleware.Auth(d.jwt)
	admin := middleware.AdminKey(d.admin)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /live", d.health.Live)
	mux.HandleFunc("GET /ready", d.health.Ready)
	mux.HandleFunc("GET /health", d.health.Health)

	mux.Handle("POST /api/import",
		authed(d.limiter.Limit(importRateLimit)(http.HandlerFunc(d.importer.Upload))))

	mux.Handle("POST /api/library/entries", authed(http.HandlerFunc(d.library.AddEntry)))
	mux.Handle("GET /api/library/entries", authed(http.HandlerFunc(d.library.ListEntries)))
	mux.Handle("PATCH /api/library/entries/{id}/owned", authed(http.HandlerFunc(d.library.SetOwned)))
	mux.Handle("GET /api/works/{id}/primary-edition", authed(http.HandlerFunc(d.library.PrimaryEdition)))
	mux.Handle("PATCH /api/works/{id}", authed(http.HandlerFunc(d.library.OverrideWorkField)))

	mux.Handle("POST /admin/library/reset", admin(http.HandlerFunc(d.adminH.ResetLibrary)))
	mux.Handle("POST /admin/cache/clear", admin(http.HandlerFunc(d.adminH.ClearCache)))
	mux.Handle("POST /admin/cache/prune", admin(http.HandlerFunc(d.adminH.PruneCache)))

	return base(mux)
}
