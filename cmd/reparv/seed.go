package main

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/reparvservices/reparv-server-sub002/internal/db"
	"github.com/reparvservices/reparv-server-sub002/internal/seed"
	"github.com/reparvservices/reparv-server-sub002/internal/store"
)

var seedCommand = &cli.Command{
	Name:  "seed",
	Usage: "Seed the database with the starter subscription plans",
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

		logger.Info("connected to database")

		if err := seed.SeedPlans(ctx, store.NewPlanRepository(pool), logger, time.Now()); err != nil {
			return fmt.Errorf("failed to seed plans: %w", err)
		}

		return nil
	},
}
