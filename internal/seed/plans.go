package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/reparvservices/reparv-server-sub002/internal/store"
	"github.com/reparvservices/reparv-server-sub002/pkg/types"
)

// PlanRepository is the subset of plan storage the seeder writes through.
type PlanRepository interface {
	Get(ctx context.Context, id string) (*types.SubscriptionPlan, error)
	Insert(ctx context.Context, row *types.SubscriptionPlan) error
	Update(ctx context.Context, id string, cols *store.Columns) error
}

// Plans is the starter catalogue. Ids are fixed so re-running the seed
// updates rows in place.
//
// To generate new IDs: `go run ./cmd/reparv nanoid`
var Plans = []types.SubscriptionPlan{
	{
		ID:           "Vq3mN8xTz1LkP0aRbW7cYdE2",
		PlanName:     "Starter",
		PlanDuration: "1 Month",
		PlanFor:      "Territory Partner",
		TotalPrice:   999,
		Features:     "Lead access, Marketing kit",
		Highlight:    types.FlagFalse,
		Status:       types.StatusActive,
	},
	{
		ID:           "hS6uJ4pGk9QwXe2ZrTn5VbMa",
		PlanName:     "Growth",
		PlanDuration: "6 Months",
		PlanFor:      "Territory Partner",
		TotalPrice:   4999,
		Features:     "Lead access, Marketing kit, Priority support",
		Highlight:    types.FlagTrue,
		Status:       types.StatusActive,
	},
	{
		ID:           "C8dLr2YfNq7TsHp4KxGm1WuE",
		PlanName:     "Builder",
		PlanDuration: "12 Months",
		PlanFor:      "Project Partner",
		TotalPrice:   24999,
		Features:     "Unlimited listings, Employee seats, Enquiry import",
		Highlight:    types.FlagFalse,
		Status:       types.StatusActive,
	},
}

// SeedPlans inserts missing plans and rewrites the catalogue fields of the
// ones already present. Banner images and admin-added plans are untouched.
func SeedPlans(ctx context.Context, repo PlanRepository, logger *logrus.Logger, now time.Time) error {
	inserted, updated := 0, 0

	for i := range Plans {
		plan := Plans[i]

		_, err := repo.Get(ctx, plan.ID)
		switch {
		case errors.Is(err, types.ErrPlanNotFound):
			plan.Touch(now)
			if err := repo.Insert(ctx, &plan); err != nil {
				return fmt.Errorf("failed to insert plan %s: %w", plan.PlanName, err)
			}
			inserted++
		case err != nil:
			return fmt.Errorf("failed to fetch plan %s: %w", plan.ID, err)
		default:
			cols := store.NewColumns().
				Set("plan_name", plan.PlanName).
				Set("plan_duration", plan.PlanDuration).
				Set("plan_for", plan.PlanFor).
				Set("total_price", plan.TotalPrice).
				Set("features", plan.Features)
			if err := repo.Update(ctx, plan.ID, cols); err != nil {
				return fmt.Errorf("failed to update plan %s: %w", plan.PlanName, err)
			}
			updated++
		}

		logger.WithField("plan", plan.PlanName).Debug("plan synced")
	}

	logger.WithFields(logrus.Fields{
		"inserted": inserted,
		"updated":  updated,
	}).Info("plans seeded")

	return nil
}
