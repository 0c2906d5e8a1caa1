package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpapi "github.com/cynit/hub/internal/hub/http"
	"github.com/cynit/hub/internal/hub/service"
	"github.com/cynit/hub/internal/hub/store"
	"github.com/cynit/hub/internal/hub/store/drivers/sqlite"
	"github.com/cynit/hub/pkg/cryptox"
	"github.com/cynit/hub/pkg/slogx"
	"github.com/cynit/hub/pkg/tlsx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the hub with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db        store.Store
	certPaths tlsx.Paths

	exchangeService *service.ExchangeService
	vaultService    *service.VaultService
	resultService   *service.ResultService
	sessions        *service.SessionStore

	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "cynit-hub",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	// Vault entries are encrypted with the master key
	if cfg.MasterKeyPath != "" {
		cryptox.SetMasterKeyPath(cfg.MasterKeyPath)
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initTLS(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.logger.Info("hub starting",
		"port", app.cfg.Port, "version", BuildVersion, "tls", app.cfg.TLSEnabled)

	serverErrors := make(chan error, 1)
	go func() {
		if app.cfg.TLSEnabled {
			serverErrors <- app.server.ListenAndServeTLS(app.certPaths.CertFile, app.certPaths.KeyFile)
		} else {
			serverErrors <- app.server.ListenAndServe()
		}
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
	app.logger.Info("shutting down hub...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("hub stopped")
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

// initTLS provisions the localhost certificate and, where the platform
// supports it, imports it into the current user's trust store. Trust import
// failure is logged and ignored; a missing certificate is fatal when TLS is
// on, since the listener cannot start without it.
func (app *Application) initTLS() error {
	paths, err := tlsx.EnsureLocalCertificate(app.logger, app.cfg.CertDir, app.cfg.Product)
	if err != nil {
		if app.cfg.TLSEnabled {
			return fmt.Errorf("failed to provision TLS certificate: %w", err)
		}
		app.logger.Warn("failed to provision TLS certificate, continuing without TLS", "error", err)
		return nil
	}
	app.certPaths = paths

	if app.cfg.TrustLocalCert {
		trust := tlsx.NewPlatformTrustStore()
		if err := trust.TrustCurrentUser(context.Background(), paths.DERFile); err != nil {
			app.logger.Warn("trust store import failed, continuing", "error", err)
		}
	}

	return nil
}

// initServices initializes all business logic services.
func (app *Application) initServices() {
	app.sessions = service.NewSessionStore(app.cfg.DataDir)

	app.vaultService = &service.VaultService{Store: app.db}
	app.resultService = service.NewResultService()
	app.exchangeService = &service.ExchangeService{
		Sessions:       app.sessions,
		Vault:          app.vaultService,
		Logger:         app.logger,
		AllowedOPBases: app.cfg.AllowedOPBases,
	}
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(BuildVersion, app.db, app.logger)
	router.ExchangeService = app.exchangeService
	router.VaultService = app.vaultService
	router.ResultService = app.resultService
	router.ApplyRoutes()
	app.router = router

	app.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", app.cfg.Port),
		Handler: router,
	}
}
