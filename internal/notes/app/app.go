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

	httpapi "github.com/inkwell-app/inkwell/internal/notes/http"
	"github.com/inkwell-app/inkwell/internal/notes/service"
	"github.com/inkwell-app/inkwell/internal/notes/store"
	"github.com/inkwell-app/inkwell/internal/notes/store/drivers/sqlite"
	"github.com/inkwell-app/inkwell/pkg/cachex"
	"github.com/inkwell-app/inkwell/pkg/cryptox"
	"github.com/inkwell-app/inkwell/pkg/jwtx"
	"github.com/inkwell-app/inkwell/pkg/revoke"
	"github.com/inkwell-app/inkwell/pkg/slogx"

	"github.com/redis/go-redis/v9"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the notes service with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db      store.Store
	revoked revoke.Store
	cache   *cachex.Cache

	// Services
	userService    *service.UserService
	notesService   *service.NotesService
	sessionService *service.SessionService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "inkwell",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	// Set pepper path for password hashing
	cryptox.SetPepperPath(app.cfg.PepperFile)

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initRevocation(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.cache = cachex.New(app.cfg.CacheTTL)

	if err := app.initServices(); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.cache.StartSweeper(app.cfg.CacheSweepInterval)

	app.logger.Info("notes service starting", "port", app.cfg.Port, "version", BuildVersion)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a shutdown signal or server error
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

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down notes service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.cache.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("notes service stopped")
	return nil
}

// initDatabase initializes the database and applies migrations
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

// initRevocation selects the revocation backend. Memory suits a single
// instance; redis is required once more than one replica serves traffic.
func (app *Application) initRevocation() error {
	switch app.cfg.RevokeBackend {
	case "", "memory":
		app.revoked = revoke.NewMemory()
		app.logger.Info("token revocation backend: memory")
		return nil
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: app.cfg.RedisAddr})
		if err := client.Ping(context.Background()).Err(); err != nil {
			return fmt.Errorf("failed to connect to redis at %s: %w", app.cfg.RedisAddr, err)
		}
		// Entries only need to outlive the longest-lived token
		app.revoked = revoke.NewRedis(client, app.cfg.RefreshTTL)
		app.logger.Info("token revocation backend: redis", "addr", app.cfg.RedisAddr)
		return nil
	default:
		return fmt.Errorf("unknown revocation backend %q", app.cfg.RevokeBackend)
	}
}

// initServices initializes all business logic services
func (app *Application) initServices() error {
	accessSecret, refreshSecret, err := app.resolveSecrets()
	if err != nil {
		return err
	}

	access, err := jwtx.NewCodec(accessSecret, app.cfg.Algorithm, app.cfg.Issuer, app.cfg.Audience)
	if err != nil {
		return fmt.Errorf("failed to build access token codec: %w", err)
	}
	refresh, err := jwtx.NewCodec(refreshSecret, app.cfg.Algorithm, app.cfg.Issuer, app.cfg.Audience)
	if err != nil {
		return fmt.Errorf("failed to build refresh token codec: %w", err)
	}

	app.sessionService = &service.SessionService{
		Access:         access,
		RefreshCodec:   refresh,
		Store:          app.db,
		Revoked:        app.revoked,
		AccessTTL:      app.cfg.AccessTTL,
		RefreshTTL:     app.cfg.RefreshTTL,
		RenewThreshold: app.cfg.RenewThreshold,
	}
	app.userService = &service.UserService{Store: app.db}
	app.notesService = &service.NotesService{Store: app.db}

	return nil
}

// resolveSecrets returns the HMAC secrets, generating ephemeral ones in dev.
// Generated secrets mean every restart invalidates all outstanding tokens,
// which is acceptable for local development only.
func (app *Application) resolveSecrets() (access, refresh string, err error) {
	access = app.cfg.AccessSecret
	refresh = app.cfg.RefreshSecret

	if access == "" {
		if !app.cfg.DevMode() {
			return "", "", fmt.Errorf("AUTH_ACCESS_SECRET is required when ENV=%s", app.cfg.Env)
		}
		access = cryptox.MustGenerateToken(cryptox.TokenSize256)
		app.logger.Warn("AUTH_ACCESS_SECRET not set, generated an ephemeral secret")
	}
	if refresh == "" {
		if !app.cfg.DevMode() {
			return "", "", fmt.Errorf("AUTH_REFRESH_SECRET is required when ENV=%s", app.cfg.Env)
		}
		refresh = cryptox.MustGenerateToken(cryptox.TokenSize256)
		app.logger.Warn("AUTH_REFRESH_SECRET not set, generated an ephemeral secret")
	}

	if access == refresh {
		return "", "", fmt.Errorf("access and refresh secrets must differ")
	}

	return access, refresh, nil
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		BuildVersion,
		app.cfg.DevMode(),
		app.db,
		app.cache,
		app.logger,
	)

	// Wire services to router
	router.UserService = app.userService
	router.NotesService = app.notesService
	router.SessionService = app.sessionService
	router.ApplyRoutes()

	app.router = router

	// Initialize HTTP server
	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
