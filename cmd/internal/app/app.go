// Package app wires the quill server runtime: config, logging, stores, the
// GraphQL endpoint and the websocket feed.
//
// It is intentionally small and deterministic to keep behavior predictable.
package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"quill/cmd/identity"
	"quill/cmd/internal/auth"
	"quill/cmd/internal/content"
	"quill/cmd/internal/feed"
	"quill/cmd/internal/graph"
	"quill/cmd/security/password"

	"github.com/jackc/pgx/v5/pgxpool"
)

// App owns the HTTP server wiring and the lifecycle of the DB pool.
type App struct {
	cfg Config
	log Logger

	dbPool    *pgxpool.Pool
	dbEnabled bool

	gql  *graph.Handler
	feed *feed.Gateway
}

// New constructs a fully wired App instance from config and logger.
func New(cfg Config, log Logger) (*App, error) {
	if log == nil {
		log = NewLogger(cfg.LogLevel)
	}

	users, posts, dbPool, dbEnabled, err := newStores(context.Background(), cfg, log)
	if err != nil {
		return nil, err
	}

	codec, err := password.FromEnv()
	if err != nil {
		return nil, err
	}

	strategy, err := auth.FromConfig(cfg.AuthStrategy, cfg.IdentityHeader)
	if err != nil {
		return nil, err
	}

	hub := feed.NewHub(log)
	contentSvc := content.NewService(log, posts, hub, cfg.OwnerOnly)

	resolver := graph.NewResolver(log, users, contentSvc, codec, strategy)
	gql, err := graph.NewHandler(log, resolver)
	if err != nil {
		return nil, err
	}

	return &App{
		cfg:       cfg,
		log:       log,
		dbPool:    dbPool,
		dbEnabled: dbEnabled,
		gql:       gql,
		feed:      feed.NewGateway(log, hub, cfg.WSAllowedOrigins),
	}, nil
}

// Run starts the HTTP server and blocks until context cancellation or fatal
// server error.
func (a *App) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	registerHTTP(mux, a.log, a.cfg, a.dbPool, a.dbEnabled, a.gql, a.feed)

	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           WithRequestLogging(mux, a.log),
		ReadHeaderTimeout: nonZeroDuration(a.cfg.ReadHeaderTimeout, 5*time.Second),
		ReadTimeout:       nonZeroDuration(a.cfg.ReadTimeout, 15*time.Second),
		WriteTimeout:      nonZeroDuration(a.cfg.WriteTimeout, 15*time.Second),
		IdleTimeout:       nonZeroDuration(a.cfg.IdleTimeout, 60*time.Second),
		MaxHeaderBytes:    nonZeroInt(a.cfg.MaxHeaderBytes, 1<<20),
	}

	a.log.Info("server.start",
		"addr", a.cfg.HTTPAddr,
		"db_enabled", a.dbEnabled,
		"auth_strategy", a.cfg.AuthStrategy,
		"owner_only", a.cfg.OwnerOnly,
	)

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

	if a.dbPool != nil {
		a.dbPool.Close()
	}

	a.log.Info("server.stopped")
	return nil
}

func nonZeroDuration(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}

func nonZeroInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// newStores decides between Postgres-backed persistence and the in-memory
// dev stores.
func newStores(ctx context.Context, cfg Config, log Logger) (identity.Store, content.Store, *pgxpool.Pool, bool, error) {
	if cfg.DatabaseURL == "" {
		log.Info("db.disabled.inmemory_store")
		users := identity.NewMemoryStore()
		return users, content.NewMemoryStore(users), nil, false, nil
	}

	pool, err := NewDBPool(ctx, cfg)
	if err != nil {
		return nil, nil, nil, false, err
	}

	users, err := identity.NewPostgresStore(pool, identity.WithSchema(cfg.DBSchema))
	if err != nil {
		pool.Close()
		return nil, nil, nil, false, err
	}
	posts, err := content.NewPostgresStore(pool, content.WithSchema(cfg.DBSchema))
	if err != nil {
		pool.Close()
		return nil, nil, nil, false, err
	}

	log.Info("db.enabled.postgres_store")
	return users, posts, pool, true, nil
}
