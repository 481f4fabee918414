package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	httpapi "github.com/aussiebroadwan/keyward/internal/keyward/http"
	"github.com/aussiebroadwan/keyward/internal/keyward/service"
	"github.com/aussiebroadwan/keyward/internal/keyward/store/drivers/sqlite"
	"github.com/aussiebroadwan/keyward/pkg/guard"
	"github.com/aussiebroadwan/keyward/pkg/httpx"
	"github.com/aussiebroadwan/keyward/pkg/metrics"
	"github.com/aussiebroadwan/keyward/pkg/slogx"
	"github.com/aussiebroadwan/keyward/pkg/timeoracle"
)

// BuildVersion is overridden at build time via -ldflags "-X ...".
var BuildVersion = "v0.1.0"

// Application encapsulates the keyward service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db      *sqlite.Store
	keys    *KeyMaterial
	owner   *OwnerKeys
	oracle  *timeoracle.Oracle
	metrics *metrics.Metrics
	redis   *redis.Client
	guard   *guard.Guard

	// Services
	auditService        *service.AuditService
	licenseService      *service.LicenseService
	validator           *service.Validator
	apiKeyService       *service.APIKeyService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "keyward",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
		metrics: metrics.New(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	ctx := context.Background()

	keys, err := InitKeyMaterial(cfg, app.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize key material: %w", err)
	}
	app.keys = keys

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	app.initOracle()
	app.initServices()

	if err := app.initGuard(ctx); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	if err := app.seedAPIKeys(ctx); err != nil {
		_ = app.closeAll()
		return nil, err
	}

	app.owner = InitOwnerKeys(ctx, cfg, app.logger)
	app.initHTTP()
	app.initHousekeeping()

	return app, nil
}

// Handler exposes the router, mainly for tests.
func (app *Application) Handler() http.Handler {
	return app.router
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	if err := app.housekeepingService.Start(); err != nil {
		return fmt.Errorf("failed to start housekeeping: %w", err)
	}

	app.logger.Info("keyward starting", "port", app.cfg.Port, "version", BuildVersion)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.housekeepingService.Stop()
			_ = app.closeAll()
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
	app.logger.Info("shutting down keyward...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.closeAll(); err != nil {
		return err
	}

	app.logger.Info("keyward stopped")
	return nil
}

func (app *Application) closeAll() error {
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis", "error", err)
		}
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}
	return nil
}

// initDatabase initializes the database and applies migrations.
func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "file", app.cfg.DatabaseFile)
	return nil
}

func (app *Application) initOracle() {
	sources := timeoracle.ParseSources(app.cfg.TimeSources, timeoracle.NewHTTPClient())

	oracleCfg := timeoracle.DefaultConfig()
	oracleCfg.SourceTimeout = app.cfg.TimeSourceTimeout

	app.oracle = timeoracle.New(sources,
		timeoracle.WithConfig(oracleCfg),
		timeoracle.WithLogger(app.logger),
		timeoracle.WithObserver(app.metrics),
	)

	names := make([]string, 0, len(sources))
	for _, s := range sources {
		names = append(names, s.Name())
	}
	app.logger.Info("time oracle configured", "sources", names, "source_timeout", oracleCfg.SourceTimeout)
}

// initServices initializes all business logic services.
func (app *Application) initServices() {
	app.auditService = &service.AuditService{
		Store: app.db,
		Clock: app.oracle,
	}
	locks := &service.KeyLock{}
	app.licenseService = &service.LicenseService{
		Store:  app.db,
		Clock:  app.oracle,
		Format: app.keys.Format,
		Audit:  app.auditService,
		Locks:  locks,
	}
	app.validator = &service.Validator{
		Store:    app.db,
		Clock:    app.oracle,
		Format:   app.keys.Format,
		Audit:    app.auditService,
		Observer: app.metrics,
		Locks:    locks,
	}
	app.apiKeyService = &service.APIKeyService{
		Store:  app.db,
		Sealer: app.keys.Sealer,
		Clock:  app.oracle,
		Audit:  app.auditService,
	}
}

// initGuard builds the request guard over the stored api keys. Nonces live
// in Redis when KEYWARD_REDIS_URL is set so several instances reject each
// other's replays.
func (app *Application) initGuard(ctx context.Context) error {
	var nonces guard.NonceStore
	if app.cfg.RedisURL != "" {
		client, err := guard.ConnectRedis(ctx, app.cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("failed to connect nonce store: %w", err)
		}
		app.redis = client
		nonces = guard.NewRedisNonceStore(client)
		app.logger.Info("using redis nonce store")
	} else {
		nonces = guard.NewMemoryNonceStore(time.Now)
		app.logger.Info("using in-memory nonce store")
	}

	cache := guard.NewKeyCache(app.apiKeyService.GuardSource())
	if err := cache.Reload(ctx); err != nil {
		return fmt.Errorf("failed to load api keys: %w", err)
	}
	app.apiKeyService.Cache = cache

	app.guard = guard.New(cache, nonces,
		guard.WithSkew(app.cfg.SigningSkew),
		guard.WithAllowlist("/livez", "/readyz", "/metrics", "/swagger/", "/v1/admin/"),
		guard.WithObserver(app.metrics),
	)
	app.logger.Info("request guard ready", "api_keys", cache.Len(), "skew", app.cfg.SigningSkew)
	return nil
}

func (app *Application) seedAPIKeys(ctx context.Context) error {
	if app.cfg.APIKeysFile == "" {
		return nil
	}

	f, err := service.LoadSeedFile(app.cfg.APIKeysFile)
	if err != nil {
		return err
	}
	if _, err := app.apiKeyService.Seed(slogx.WithContext(ctx, app.logger), f); err != nil {
		return fmt.Errorf("failed to seed api keys: %w", err)
	}
	return nil
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() {
	admin := httpx.AdminConfig{
		Secret:     app.cfg.AdminSecret,
		TOTPSecret: app.cfg.AdminTOTPSecret,
	}
	if admin.Secret == "" {
		app.logger.Warn("admin API disabled, no KEYWARD_ADMIN_SECRET configured")
	}

	router := httpapi.NewRouter(app.guard, admin, BuildVersion, app.db, app.logger)

	// Wire services to router
	router.Clock = app.oracle
	router.Validator = app.validator
	router.LicenseService = app.licenseService
	router.AuditService = app.auditService
	router.APIKeyService = app.apiKeyService
	router.Metrics = app.metrics.Handler()
	if app.owner != nil {
		router.Verifier = app.owner.Verifier
		router.OwnerKeys = app.owner.KeySet
	}
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}

func (app *Application) initHousekeeping() {
	hk := service.NewHousekeepingService(app.logger, app.cfg.HousekeepingInterval)
	hk.Guard = app.guard
	hk.RateLimiters = app.router.RateLimiters
	hk.Keys = app.guard.Keys()
	hk.Licenses = app.licenseService
	hk.Audit = app.auditService
	hk.Observer = app.metrics
	hk.PurgeSchedule = app.cfg.PurgeSchedule
	if app.owner != nil {
		hk.RefreshOwnerKeys = app.owner.Refresh
	}
	app.housekeepingService = hk
}
