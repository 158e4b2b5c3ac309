package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/gomesrodrigo528/app-form/internal/config"
	"github.com/gomesrodrigo528/app-form/internal/handler"
	"github.com/gomesrodrigo528/app-form/internal/handler/middleware"
	"github.com/gomesrodrigo528/app-form/internal/repository/datastore"
	"github.com/gomesrodrigo528/app-form/internal/service"
	"github.com/gomesrodrigo528/app-form/internal/storage"
	"github.com/gomesrodrigo528/app-form/internal/storage/memory"
	"github.com/gomesrodrigo528/app-form/internal/storage/postgrest"
	"github.com/gomesrodrigo528/app-form/internal/storage/sqlstore"
	"github.com/gomesrodrigo528/app-form/pkg/blacklist"
	"github.com/gomesrodrigo528/app-form/pkg/email"
	"github.com/gomesrodrigo528/app-form/pkg/hash"
	"github.com/gomesrodrigo528/app-form/pkg/jwt"
	"github.com/gomesrodrigo528/app-form/pkg/logger"
	"github.com/gomesrodrigo528/app-form/pkg/metrics"
	"github.com/gomesrodrigo528/app-form/pkg/validator"
)

const serviceName = "app-form"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logg, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Environment: cfg.Server.Environment,
		ServiceName: serviceName,
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logg.Sync() }()
	zap.ReplaceGlobals(logg)

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	db, closeDB, err := initStorage(ctx, cfg, logg)
	if err != nil {
		logg.Fatal("failed to initialize storage", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
	}
	defer func() {
		if err := closeDB(); err != nil {
			logg.Error("error closing storage", zap.Error(err))
		}
	}()
	logg.Info("storage ready", zap.String("driver", cfg.Storage.Driver))

	checks := map[string]handler.Check{
		"storage": func(ctx context.Context) error {
			_, err := db.Count(ctx, "tenants", nil)
			return err
		},
	}

	// Token revocation: Redis when enabled so every instance shares it
	var revoked blacklist.Store
	if cfg.Redis.Enabled {
		redisClient, err := initRedis(ctx, cfg)
		if err != nil {
			logg.Fatal("failed to initialize redis", zap.String("addr", cfg.Redis.Addr()), zap.Error(err))
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error("error closing redis connection", zap.Error(err))
			}
		}()
		revoked = blacklist.NewRedisBlacklist(redisClient)
		checks["cache"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
		logg.Info("redis connection established", zap.String("addr", cfg.Redis.Addr()))
	} else {
		revoked = blacklist.NewMemoryBlacklist()
		logg.Info("token revocations kept in memory (set REDIS_ENABLED=true to share them)")
	}

	var notifier email.Notifier = email.NopNotifier{}
	if cfg.Email.Enabled {
		resendNotifier, err := email.NewResendNotifier(email.Config{
			APIKey:    cfg.Email.APIKey,
			FromEmail: cfg.Email.FromEmail,
			FromName:  cfg.Email.FromName,
		}, logg)
		if err != nil {
			logg.Warn("email notifications disabled", zap.Error(err))
		} else {
			notifier = resendNotifier
			logg.Info("email notifications enabled", zap.String("from", cfg.Email.FromEmail))
		}
	}

	if cfg.Metrics.Enabled {
		metrics.Init()
	}

	tokenService, err := jwt.NewTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)
	if err != nil {
		logg.Fatal("failed to initialize token service", zap.Error(err))
	}

	// Initialize repositories
	tenantRepo := datastore.NewTenantRepository(db)
	settingsRepo := datastore.NewSettingsRepository(db)
	userRepo := datastore.NewUserRepository(db)
	formRepo := datastore.NewFormRepository(db)
	fieldRepo := datastore.NewFieldRepository(db)
	leadRepo := datastore.NewLeadRepository(db)
	submissionRepo := datastore.NewSubmissionRepository(db)
	responseRepo := datastore.NewResponseRepository(db)

	// Initialize services
	hasher := hash.NewHasher(cfg.Auth.BcryptCost)
	userService := service.NewUserService(userRepo, tenantRepo, hasher, revoked, cfg.JWT.Expiry, logg)
	tenantService := service.NewTenantService(tenantRepo, settingsRepo, userRepo, userService, logg)
	authService := service.NewAuthService(userRepo, tenantRepo, hasher, tokenService, revoked, logg)
	formService := service.NewFormService(formRepo, fieldRepo, tenantService, cfg.Server.BaseURL, logg)
	leadService := service.NewLeadService(leadRepo)
	submissionService := service.NewSubmissionService(submissionRepo, responseRepo, leadRepo, formRepo, fieldRepo)
	intakeService := service.NewIntakeService(formService, leadService, submissionService, notifier, cfg.Server.Location(), logg)

	// Initialize handlers
	validate := validator.NewValidator()
	app := handler.NewApp(handler.AppConfig{
		AppName:      cfg.Server.AppName,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		AllowOrigins: cfg.Server.AllowOrigins,
	}, logg)

	handler.SetupRoutes(app, handler.Handlers{
		Auth:        handler.NewAuthHandler(authService, tenantService, userService, validate),
		Setup:       handler.NewSetupHandler(userService, validate),
		Form:        handler.NewFormHandler(formService, validate),
		Submission:  handler.NewSubmissionHandler(submissionService, leadService),
		Tenant:      handler.NewTenantHandler(tenantService, userService, validate),
		User:        handler.NewUserHandler(userService, validate),
		Public:      handler.NewPublicHandler(formService, intakeService, validate),
		Health:      handler.NewHealthHandler(serviceName, checks),
		ExposeStats: cfg.Metrics.Enabled,
	}, middleware.AuthMiddleware(authService))

	// Start server in goroutine
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logg.Info("server starting",
			zap.String("addr", addr),
			zap.String("environment", cfg.Server.Environment),
			zap.String("base_url", cfg.Server.BaseURL),
		)
		if err := app.Listen(addr); err != nil {
			logg.Error("server failed to start", zap.Error(err))
			stop()
		}
	}()

	// Wait for interrupt signal
	<-ctx.Done()
	logg.Info("shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logg.Error("server forced to shutdown", zap.Error(err))
	}

	logg.Info("server stopped")
}

// initStorage opens the configured backend and wraps it with logging and metrics.
func initStorage(ctx context.Context, cfg *config.Config, logg *zap.Logger) (storage.Client, func() error, error) {
	noClose := func() error { return nil }

	switch cfg.Storage.Driver {
	case config.DriverPostgREST:
		client, err := postgrest.New(postgrest.Config{
			BaseURL: cfg.Storage.PostgRESTURL,
			APIKey:  cfg.Storage.PostgRESTKey,
			Timeout: cfg.Storage.Timeout,
		})
		if err != nil {
			return nil, nil, err
		}
		return storage.Observe(client, logg), noClose, nil

	case config.DriverPostgres, config.DriverSQLite:
		dsn := cfg.Storage.Database.DSN()
		if cfg.Storage.Driver == config.DriverSQLite {
			dsn = cfg.Storage.SQLitePath
			if dsn != ":memory:" {
				if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
					return nil, nil, fmt.Errorf("failed to create sqlite directory: %w", err)
				}
			}
		}

		store, err := openSQL(ctx, cfg.Storage.Driver, dsn, logg)
		if err != nil {
			return nil, nil, err
		}
		if cfg.Storage.AutoMigrate {
			if err := store.Migrate(ctx); err != nil {
				_ = store.Close()
				return nil, nil, fmt.Errorf("failed to migrate schema: %w", err)
			}
			logg.Info("schema migrated")
		}
		return storage.Observe(store, logg), store.Close, nil

	default:
		logg.Warn("using in-memory storage, data is lost on restart")
		return storage.Observe(memory.NewWithSchema(), logg), noClose, nil
	}
}

// openSQL connects to a SQL database with retry logic
func openSQL(ctx context.Context, driver, dsn string, logg *zap.Logger) (*sqlstore.Store, error) {
	const (
		maxRetries    = 5
		retryInterval = 2 * time.Second
	)

	var err error
	for i := 0; i < maxRetries; i++ {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		var store *sqlstore.Store
		store, err = sqlstore.Open(pingCtx, driver, dsn)
		cancel()
		if err == nil {
			return store, nil
		}

		logg.Warn("failed to connect to database",
			zap.Int("attempt", i+1),
			zap.Int("max_attempts", maxRetries),
			zap.Error(err),
		)
		if i < maxRetries-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryInterval):
			}
		}
	}
	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxRetries, err)
}

// initRedis initializes Redis client and verifies connection
func initRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Redis.Addr(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return client, nil
}
