package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/hrflowhq/hrflow/internal/auth/http"
	"github.com/hrflowhq/hrflow/internal/auth/service"
	"github.com/hrflowhq/hrflow/internal/auth/store"
	"github.com/hrflowhq/hrflow/internal/auth/store/drivers/sqlite"
	"github.com/hrflowhq/hrflow/pkg/jwtx"
	"github.com/hrflowhq/hrflow/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the auth service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db store.Store

	// Services
	tokenService     *service.TokenService
	sessionService   *service.SessionService
	twoFactorService *service.TwoFactorService
	passwordService  *service.PasswordService
	userService      *service.UserService
	directoryService *service.DirectoryService
	auditRecorder    *service.AuditRecorder
	housekeeping     *service.Housekeeping

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "hrflow-auth",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.auditRecorder.Start()
	app.housekeeping.Start()

	app.logger.Info("auth service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	// Stop background workers after the server so late requests still get
	// their audit entries enqueued.
	app.housekeeping.Stop()
	app.auditRecorder.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

// initDatabase initializes the database and applies migrations.
func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initServices initializes all business logic services.
func (app *Application) initServices() {
	app.tokenService = &service.TokenService{
		Store:   app.db,
		Access:  jwtx.NewSigner(jwtx.DomainAccess, []byte(app.cfg.AccessSecret), app.cfg.Issuer, app.cfg.AccessTTL),
		Refresh: jwtx.NewSigner(jwtx.DomainRefresh, []byte(app.cfg.RefreshSecret), app.cfg.Issuer, app.cfg.RefreshTTL),
		Reset:   jwtx.NewSigner(jwtx.DomainReset, []byte(app.cfg.ResetSecret), app.cfg.Issuer, app.cfg.ResetTTL),
	}

	app.twoFactorService = &service.TwoFactorService{
		Store:  app.db,
		Issuer: app.cfg.Issuer,
	}

	app.sessionService = &service.SessionService{
		Store:        app.db,
		Tokens:       app.tokenService,
		TwoFactor:    app.twoFactorService,
		ChallengeTTL: app.cfg.ChallengeTTL,
	}

	app.passwordService = &service.PasswordService{
		Store:       app.db,
		Tokens:      app.tokenService,
		Notifier:    &service.LogNotifier{Logger: app.logger},
		FrontendURL: app.cfg.FrontendURL,
	}

	app.userService = &service.UserService{
		Store:  app.db,
		Tokens: app.tokenService,
	}

	app.directoryService = &service.DirectoryService{Store: app.db}

	app.auditRecorder = service.NewAuditRecorder(app.db, app.logger, app.cfg.AuditQueueSize)
	app.housekeeping = service.NewHousekeeping(app.db, app.logger, app.cfg.HousekeepingInterval)
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.tokenService,
		BuildVersion,
		app.db,
		app.logger,
	)

	router.SessionService = app.sessionService
	router.TwoFactorService = app.twoFactorService
	router.PasswordService = app.passwordService
	router.UserService = app.userService
	router.AuditRecorder = app.auditRecorder
	router.Directory = app.directoryService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
