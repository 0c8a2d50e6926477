package main

import (
	"log/slog"
	"os"

	"github.com/pokerledger/tracker/internal/infra"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Long: `Applies db/migrations to the Postgres store. The SQLite store migrates
its own schema when opened, so there is nothing to do for it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.StoreDriver == infra.DriverSQLite {
				pterm.Info.Println("sqlite store migrates on open; nothing to do")
				return nil
			}

			logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
			if err := infra.RunMigrations(cfg.DSN(), logger); err != nil {
				return err
			}
			pterm.Success.Println("migrations applied")
			return nil
		},
	}
}
