package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sirdesai22/hackollab/internal/config"
	"github.com/sirdesai22/hackollab/internal/db"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

const serviceName = "hackollab-api"

var rootCmd = &cobra.Command{
	Use:           "hackollab",
	Short:         "H@ckollab API server and maintenance commands",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		_ = godotenv.Load()
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
		if os.Getenv("APP_ENV") != "production" {
			log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		}
	},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("hackollab")
	}
}

// openDatabase loads the config and connects to Postgres.
func openDatabase(ctx context.Context) (config.Config, *gorm.DB, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return config.Config{}, nil, err
	}
	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, database, nil
}

func closeDatabase(database *gorm.DB) {
	if err := db.Close(database); err != nil {
		log.Error().Err(err).Msg("close database")
	}
}

func shutdownTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 10*time.Second)
}
