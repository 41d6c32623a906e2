package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/tradebridge/tradebridge/app/repositories"
	"github.com/tradebridge/tradebridge/config"
	"github.com/tradebridge/tradebridge/database/seeders"
	"github.com/tradebridge/tradebridge/pkg/database"
	"github.com/tradebridge/tradebridge/pkg/logger"
	"github.com/tradebridge/tradebridge/pkg/migration"
)

// withDB loads config, connects to MongoDB, runs fn and disconnects.
func withDB(ctx context.Context, fn func(*config.Config, *mongo.Database) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger.Setup(logger.Options{JSON: cfg.IsProduction(), Level: cfg.Log.Level})

	db, err := database.Connect(ctx, cfg.Mongo)
	if err != nil {
		return err
	}
	defer database.Disconnect(context.Background(), db) //nolint:errcheck

	return fn(cfg, db)
}

// tradebridge migrate
func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run all pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd.Context(), func(_ *config.Config, db *mongo.Database) error {
				fmt.Fprintln(cmd.OutOrStdout(), "Running migrations…")
				return migration.New(db, cmd.OutOrStdout()).Run(cmd.Context())
			})
		},
	}
}

// tradebridge migrate:rollback
func newMigrateRollbackCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate:rollback",
		Short: "Rollback the last batch of migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd.Context(), func(_ *config.Config, db *mongo.Database) error {
				fmt.Fprintln(cmd.OutOrStdout(), "Rolling back last batch…")
				return migration.New(db, cmd.OutOrStdout()).Rollback(cmd.Context())
			})
		},
	}
}

// tradebridge migrate:status
func newMigrateStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate:status",
		Short: "Show the status of each migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd.Context(), func(_ *config.Config, db *mongo.Database) error {
				return migration.New(db, cmd.OutOrStdout()).Status(cmd.Context())
			})
		},
	}
}

// tradebridge seed
func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Run all database seeders",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd.Context(), func(cfg *config.Config, db *mongo.Database) error {
				fmt.Fprintln(cmd.OutOrStdout(), "Running seeders…")
				env := seeders.Env{Users: repositories.NewMongoUsers(db), Seed: cfg.Seed}
				return seeders.RunAll(cmd.Context(), env, cmd.OutOrStdout())
			})
		},
	}
}
