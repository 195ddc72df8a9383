package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/almaleek/wallet/internal/api"
	"github.com/almaleek/wallet/internal/bootstrap"
	"github.com/almaleek/wallet/internal/cli"
	"github.com/almaleek/wallet/internal/config"
	"github.com/almaleek/wallet/internal/credstore"
	"github.com/almaleek/wallet/internal/purchase"
	"github.com/almaleek/wallet/internal/security"
	"github.com/almaleek/wallet/internal/session"
	"github.com/almaleek/wallet/internal/telemetry"
)

func main() {
	var root *cobra.Command

	app := fx.New(
		fx.NopLogger,
		fx.Provide(
			newConfig,
			newLogger,
			newTelemetry,
			newStore,
			newHTTPClient,
			newSessionManager,
			newIdentifiers,
			api.NewAuth,
			api.NewVTU,
			api.NewBillers,
			api.NewTransactions,
			security.NewLock,
			newValidator,
			newDeps,
			cli.NewRoot,
		),
		fx.Invoke(bootstrap.EnsureFirstRun),
		fx.Populate(&root),
	)

	ctx := context.Background()
	startCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	runErr := root.ExecuteContext(ctx)

	stopCtx, cancelStop := context.WithTimeout(ctx, 5*time.Second)
	defer cancelStop()
	_ = app.Stop(stopCtx)

	if runErr != nil {
		fmt.Fprintln(os.Stderr, "Error:", runErr)
		os.Exit(1)
	}
}

func newConfig() (config.Config, error) {
	return config.Load()
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if cfg.Environment == "development" {
		logger, err = zap.NewDevelopment()
	} else {
		// Keep command output clean; only warnings and worse reach stderr.
		zcfg := zap.NewProductionConfig()
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		logger, err = zcfg.Build()
	}
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(logger)
	return logger, nil
}

func newTelemetry(lc fx.Lifecycle, cfg config.Config, logger *zap.Logger) (*telemetry.Provider, error) {
	provider, err := telemetry.New(context.Background(), cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("telemetry init: %w", err)
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			return provider.Shutdown(stopCtx)
		},
	})

	return provider, nil
}

func newStore(lc fx.Lifecycle, cfg config.Config) (credstore.Store, error) {
	switch cfg.StoreBackend {
	case config.StoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		lc.Append(fx.Hook{
			OnStop: func(context.Context) error {
				return client.Close()
			},
		})
		return credstore.NewRedisStore(client), nil
	case config.StoreFile:
		return credstore.NewFileStore(cfg.StorePath)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

func newHTTPClient(cfg config.Config, logger *zap.Logger) *http.Client {
	return session.NewHTTPClient(cfg.HTTPTimeout, cfg.RateLimitRPS, logger)
}

func newSessionManager(cfg config.Config, client *http.Client, store credstore.Store, logger *zap.Logger) *session.Manager {
	manager := session.NewManager(cfg.APIBaseURL, client, store, logger)
	manager.SetLogoutHandler(func(reason error) {
		// The session is gone; drop the stored tokens so the next command
		// asks for a fresh login instead of looping on a dead token.
		if err := credstore.ClearSession(context.Background(), store); err != nil {
			logger.Warn("clear session after logout", zap.Error(err))
		}
		fmt.Fprintln(os.Stderr, "Your session has ended. Run `wallet login` to sign in again.")
	})
	return manager
}

func newIdentifiers() (*api.Identifiers, error) {
	return api.NewIdentifiers()
}

func newValidator() *validator.Validate {
	return purchase.NewValidator()
}

func newDeps(
	cfg config.Config,
	logger *zap.Logger,
	manager *session.Manager,
	store credstore.Store,
	auth *api.Auth,
	vtu *api.VTU,
	billers *api.Billers,
	transactions *api.Transactions,
	identifiers *api.Identifiers,
	lock *security.Lock,
	validate *validator.Validate,
) *cli.Deps {
	return &cli.Deps{
		Config:       cfg,
		Logger:       logger,
		Session:      manager,
		Store:        store,
		Auth:         auth,
		VTU:          vtu,
		Billers:      billers,
		Transactions: transactions,
		Identifiers:  identifiers,
		Lock:         lock,
		Validator:    validate,
	}
}
