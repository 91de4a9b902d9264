package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/reparvservices/reparv-server-sub002/internal/db"
)

var migrateCommand = &cli.Command{
	Name:  "migrate",
	Usage: "Apply the database schema",
	Action: func(c *cli.Context) error {
		config, err := loadConfig(c)
		if err != nil {
			return err
		}
		if err := requireDatabase(config); err != nil {
			return err
		}

		logger := newLogger(config)
		ctx := context.Background()

		pool, err := db.Connect(ctx, config)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		if err := db.Migrate(ctx, pool, config.DatabaseSchema, logger); err != nil {
			return err
		}

		logger.Info("schema applied")
		return nil
	},
}
