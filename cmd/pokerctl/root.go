package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/pokerledger/tracker/internal/app"
	"github.com/pokerledger/tracker/internal/infra"
	"github.com/pokerledger/tracker/internal/service"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pokerctl",
		Short: "Record poker sessions and report on them",
		Long: `pokerctl works directly against the configured session store as the
trusted local operator. It reads the same environment (and .env.local / .env)
as the API server.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newMigrateCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newAddCmd())
	rootCmd.AddCommand(newDeleteCmd())
	rootCmd.AddCommand(newReportCmd())
	return rootCmd
}

// env is what every store-backed command needs.
type env struct {
	cfg    *infra.Config
	logger *slog.Logger
	svc    *service.SessionService
	close  func()
}

// openEnv loads config and opens the session store. Logs go to stderr so
// stdout carries only command output.
func openEnv(ctx context.Context) (*env, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))

	store, closeStore, err := app.OpenStore(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return &env{
		cfg:    cfg,
		logger: logger,
		svc:    service.NewSessionService(store, logger),
		close:  closeStore,
	}, nil
}

func loadConfig() (*infra.Config, error) {
	cfg, err := infra.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
