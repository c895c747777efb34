package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"

	"chargeapi/internal/config"
	"chargeapi/internal/database"
	"chargeapi/internal/logging"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:           "chargectl",
		Short:         "chargectl - operate the charge reconciliation database",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(replayCmd())
	rootCmd.AddCommand(summaryCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// env is what every subcommand needs: configuration, a logger and the database.
type env struct {
	cfg *config.AppConfig
	log *slog.Logger
	db  *sql.DB
}

func openEnv(ctx context.Context) (*env, error) {
	cfg := config.Load()
	log := logging.NewWithWriter(os.Stderr, cfg.Logging)

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, log: log, db: db}, nil
}
