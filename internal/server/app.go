// Package server initializes and runs the passkeep server: it connects
// the database, applies migrations, wires the services, and serves the
// HTTP API until a shutdown signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/srolel/passkeep/internal/logging"
	"github.com/srolel/passkeep/internal/server/auth"
	"github.com/srolel/passkeep/internal/server/config"
	"github.com/srolel/passkeep/internal/server/httpapi"
	"github.com/srolel/passkeep/internal/server/mail"
	"github.com/srolel/passkeep/internal/server/ratelimit"
	"github.com/srolel/passkeep/internal/server/repositories/repomanager"
	"github.com/srolel/passkeep/internal/server/services"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server *httpapi.Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	manager := repomanager.NewPostgresRepositoryManager()
	if err := manager.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	mailer, err := mail.NewSMTPMailer(mail.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
	})
	if err != nil {
		return nil, fmt.Errorf("mailer init error: %w", err)
	}

	var limiter ratelimit.Limiter = ratelimit.Noop{}
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		limiter = ratelimit.NewRedisLimiter(client, cfg.LoginMaxAttempts, cfg.LoginAttemptWindow, logger)
	}

	hasher := auth.NewPasswordHasher()
	tokens := auth.NewTokenService(cfg.SecretPepper)

	srv := httpapi.NewServer(cfg.EndpointAddr, logger,
		httpapi.NewCookieSettings(cfg.SessionMaxAge, cfg.SecureCookies),
		services.NewSessionService(db, manager, hasher, tokens, limiter),
		services.NewAccountService(db, manager, hasher, tokens, mailer, logger, cfg),
		services.NewCredentialService(db, manager),
	)

	return &App{config: cfg, logger: logger, db: db, server: srv}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting app")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.server.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, err.Error())
	}

	app.logger.Info(ctx, "app stopped")
}
