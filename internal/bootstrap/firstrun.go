package bootstrap

import (
	"context"
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/almaleek/wallet/internal/credstore"
)

// EnsureFirstRun records the first launch and prints the one-time welcome.
// Subsequent starts are silent.
func EnsureFirstRun(lc fx.Lifecycle, store credstore.Store, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return ensureFirstRun(ctx, store, logger)
		},
	})
}

func ensureFirstRun(ctx context.Context, store credstore.Store, logger *zap.Logger) error {
	seen, err := store.Get(ctx, credstore.KeyHasSeenOnboarding)
	if err != nil {
		return fmt.Errorf("read onboarding flag: %w", err)
	}
	if seen != "" {
		return nil
	}

	if err := store.Set(ctx, credstore.KeyHasSeenOnboarding, "true"); err != nil {
		return fmt.Errorf("persist onboarding flag: %w", err)
	}
	logger.Info("first run recorded")
	fmt.Println("Welcome to the wallet. Run `wallet signup` to create an account or `wallet login` to sign in.")
	return nil
}
