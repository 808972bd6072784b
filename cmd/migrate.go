package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/cppla/blog/config"
	"github.com/cppla/blog/models"
	"github.com/cppla/blog/services"
	"github.com/cppla/blog/utils"
)

var purgeOrphans bool

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Long: `Create or update the database schema for users, posts, comments and ratings.

Examples:
  blog migrate                  # Apply the schema
  blog migrate --purge-orphans  # Also drop comments and ratings whose post or author is gone`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigrate(cmd.Context())
	},
}

func init() {
	migrateCmd.Flags().BoolVar(&purgeOrphans, "purge-orphans", false, "Delete comments and ratings that reference missing rows")
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(ctx context.Context) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := utils.InitLogger(cfg); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = utils.Logger.Sync() }()

	db, err := config.InitDatabase(cfg, models.All()...)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	utils.Sugar.Infow("schema migrated", "driver", cfg.DBDriver)

	if !purgeOrphans {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	report, err := services.PurgeOrphans(ctx, db)
	if err != nil {
		return err
	}
	utils.Sugar.Infow("orphans purged", "comments", report.Comments, "ratings", report.Ratings)
	return nil
}
