// Package server initializes and runs the matchmaking server: storage
// selection, the mock co-processor, the engine and the HTTP endpoint, with
// graceful shutdown on OS signals.
package server

import (
	"context"
	"database/sql"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/LondonVandervort/PrivacyDating/internal/dbx"
	"github.com/LondonVandervort/PrivacyDating/internal/fhe"
	"github.com/LondonVandervort/PrivacyDating/internal/logging"
	"github.com/LondonVandervort/PrivacyDating/internal/server/acl"
	"github.com/LondonVandervort/PrivacyDating/internal/server/chat"
	"github.com/LondonVandervort/PrivacyDating/internal/server/config"
	"github.com/LondonVandervort/PrivacyDating/internal/server/engine"
	"github.com/LondonVandervort/PrivacyDating/internal/server/events"
	"github.com/LondonVandervort/PrivacyDating/internal/server/httpapi"
	"github.com/LondonVandervort/PrivacyDating/internal/server/matching"
	"github.com/LondonVandervort/PrivacyDating/internal/server/profiles"
	"github.com/LondonVandervort/PrivacyDating/internal/server/repomanager"
	"github.com/LondonVandervort/PrivacyDating/internal/server/reveal"
	"github.com/redis/go-redis/v9"
)

type App struct {
	config *config.Config
	logger logging.Logger
	engine *engine.Engine
	cop    *fhe.MockCoprocessor
	pub    events.Publisher
	db     *sql.DB
}

func NewApp(cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	ctx := context.Background()

	key, err := hex.DecodeString(cfg.CoprocessorKey)
	if err != nil {
		return nil, fmt.Errorf("decoding co-processor key: %w", err)
	}

	grants := acl.NewList()
	cop, err := fhe.NewMockCoprocessor(key, grants)
	if err != nil {
		return nil, fmt.Errorf("co-processor init error: %w", err)
	}

	var (
		rm repomanager.RepositoryManager
		db *sql.DB
		tx dbx.Transactor = &dbx.PassthroughTransactor{}
	)
	if cfg.DatabaseDSN != "" {
		db, err = sql.Open("pgx", cfg.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		rm = repomanager.NewPostgresRepositoryManager()
		if err := rm.RunMigrations(ctx, db); err != nil {
			return nil, fmt.Errorf("migration error: %w", err)
		}
		tx = &dbx.SQLTransactor{DB: db}
	} else {
		rm = repomanager.NewMemoryRepositoryManager()
	}

	var pub events.Publisher
	if cfg.RedisAddr != "" {
		pub, err = events.NewRedisPublisher(&redis.Options{Addr: cfg.RedisAddr}, cfg.RedisStream, logger)
		if err != nil {
			return nil, fmt.Errorf("redis init error: %w", err)
		}
	} else {
		pub = events.NewMemoryPublisher()
	}

	profileSvc := profiles.NewService(db, rm, cop, pub)
	chatSvc := chat.NewService(db, rm, pub)
	coordinator := reveal.NewCoordinator(cop, rm.Matches(db), pub)
	matchSvc := matching.NewService(db, tx, rm, cop, chatSvc, coordinator, pub)

	e := engine.New(profileSvc, matchSvc, chatSvc, coordinator, tx)

	return &App{config: cfg, logger: logger, engine: e, cop: cop, pub: pub, db: db}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// consumeReveals drains the mock co-processor's result channel into the
// engine until ctx is cancelled.
func (app *App) consumeReveals(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case r := <-app.cop.Results():
			if err := app.engine.OnRevealed(ctx, r.CorrelationID, r.Value, r.Proof); err != nil {
				app.logger.Error(ctx, "reveal callback rejected",
					"match_id", r.CorrelationID, "error", err)
			}
		}
	}
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	handler := httpapi.NewHandler(app.engine, app.logger,
		[]byte(app.config.SecretKey), app.config.TokenValidityDuration)

	srv := &http.Server{
		Addr:    app.config.EndpointAddr,
		Handler: httpapi.NewRouter(handler),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(shutdownCtx, "server shutdown error", "error", err)
		}
	}()

	app.logger.Info(ctx, "listening", "addr", app.config.EndpointAddr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.consumeReveals(ctx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if closer, ok := app.pub.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			app.logger.Error(ctx, "closing publisher", "error", err)
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error(ctx, "closing db", "error", err)
		}
	}
}
