package service

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/reparvservices/reparv-server-sub002/internal/pipeline"
	"github.com/reparvservices/reparv-server-sub002/internal/store"
	"github.com/reparvservices/reparv-server-sub002/pkg/types"
)

type PlanInput struct {
	PlanName     string `form:"planName" json:"planName" validate:"required"`
	PlanDuration string `form:"planDuration" json:"planDuration" validate:"required"`
	PlanFor      string `form:"planFor" json:"planFor" validate:"required"`
	TotalPrice   int64  `form:"totalPrice" json:"totalPrice" validate:"gte=0"`
	Features     string `form:"features" json:"features"`
}

type PlanPatch struct {
	PlanName     *string `form:"planName" json:"planName"`
	PlanDuration *string `form:"planDuration" json:"planDuration"`
	PlanFor      *string `form:"planFor" json:"planFor"`
	TotalPrice   *int64  `form:"totalPrice" json:"totalPrice" validate:"omitempty,gte=0"`
	Features     *string `form:"features" json:"features"`
}

func (s *Service) AddPlan(ctx context.Context, in *PlanInput, files Files) (*types.SubscriptionPlan, error) {
	plan := &types.SubscriptionPlan{
		ID:           newID(),
		PlanName:     trimmed(in.PlanName),
		PlanDuration: trimmed(in.PlanDuration),
		PlanFor:      trimmed(in.PlanFor),
		TotalPrice:   in.TotalPrice,
		Features:     trimmed(in.Features),
		Highlight:    types.FlagFalse,
		Status:       types.StatusActive,
	}

	_, err := s.Runner.Run(ctx, &pipeline.Write{
		Entity:   "subscription_plan",
		Op:       pipeline.OpCreate,
		Validate: func() error { return s.check(in) },
		CheckDuplicate: func(ctx context.Context) error {
			where := sq.Eq{"plan_name": plan.PlanName, "plan_duration": plan.PlanDuration}
			return conflictIf(s.Plans.Exists(ctx, where))("Plan already exists with this name and duration")
		},
		Uploads: files.uploads(bannerImageSlot),
		Persist: func(ctx context.Context, assets pipeline.Assets) error {
			plan.BannerImage = asset(assets, bannerImageSlot.Column)
			plan.Touch(s.now())
			return s.Plans.Insert(ctx, plan)
		},
	})
	if err != nil {
		return nil, err
	}
	return format(s.Location, plan), nil
}

func (s *Service) EditPlan(ctx context.Context, id string, patch *PlanPatch, files Files) (*types.SubscriptionPlan, error) {
	current, err := s.Plans.Get(ctx, id)
	if err != nil {
		return nil, notFound(err, "Plan not found")
	}

	cols := store.NewColumns()
	if patch.PlanName != nil {
		cols.SetString("plan_name", *patch.PlanName)
	}
	if patch.PlanDuration != nil {
		cols.SetString("plan_duration", *patch.PlanDuration)
	}
	if patch.PlanFor != nil {
		cols.SetString("plan_for", *patch.PlanFor)
	}
	if patch.TotalPrice != nil {
		cols.Set("total_price", *patch.TotalPrice)
	}
	if patch.Features != nil {
		cols.Set("features", trimmed(*patch.Features))
	}

	_, err = s.Runner.Run(ctx, &pipeline.Write{
		Entity:   "subscription_plan",
		Op:       pipeline.OpEdit,
		Validate: func() error { return s.check(patch) },
		Uploads:  files.uploads(bannerImageSlot),
		Previous: map[string]*string{bannerImageSlot.Column: current.BannerImage},
		Persist: func(ctx context.Context, assets pipeline.Assets) error {
			err := s.Plans.Update(ctx, id, cols.Merge(assets))
			if isDuplicate(err) {
				return pipeline.Conflict("Plan already exists with this name and duration")
			}
			return err
		},
	})
	if err != nil {
		return nil, err
	}
	return s.GetPlan(ctx, id)
}

func (s *Service) GetPlan(ctx context.Context, id string) (*types.SubscriptionPlan, error) {
	plan, err := s.Plans.Get(ctx, id)
	if err != nil {
		return nil, notFound(err, "Plan not found")
	}
	return format(s.Location, plan), nil
}

// ListPlans returns plans with the redeem code currently usable on each.
func (s *Service) ListPlans(ctx context.Context, activeOnly bool) ([]*types.PlanListing, error) {
	rows, err := s.Plans.Listing(ctx, statusFilter(activeOnly), s.now())
	if err != nil {
		return nil, upstream(err, "Database error")
	}
	return formatAll(s.Location, rows), nil
}

func (s *Service) TogglePlanStatus(ctx context.Context, id string) (types.Status, error) {
	v, err := toggle[types.SubscriptionPlan](ctx, s.Plans, id, store.StatusToggle, "Plan not found")
	return types.Status(v), err
}

// TogglePlanHighlight marks the plan shown as recommended.
func (s *Service) TogglePlanHighlight(ctx context.Context, id string) (types.Flag, error) {
	v, err := toggle[types.SubscriptionPlan](ctx, s.Plans, id, store.HighlightToggle, "Plan not found")
	return types.Flag(v), err
}

func (s *Service) DeletePlan(ctx context.Context, id string) error {
	plan, err := s.Plans.Get(ctx, id)
	if err != nil {
		return notFound(err, "Plan not found")
	}
	return s.Runner.Remove(ctx, "subscription_plan", deleteRow[types.SubscriptionPlan](s.Plans, id), plan.BannerImage)
}

type RedeemCodeInput struct {
	PlanID    string `form:"planId" json:"planId" validate:"required"`
	Code      string `form:"redeemCode" json:"redeemCode" validate:"required"`
	Discount  int64  `form:"discount" json:"discount" validate:"gt=0"`
	StartDate string `form:"startDate" json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate   string `form:"endDate" json:"endDate" validate:"required,datetime=2006-01-02"`
}

// AddRedeemCode attaches a discount code to an existing plan. Codes are
// unique across plans and the window must end after it starts.
func (s *Service) AddRedeemCode(ctx context.Context, in *RedeemCodeInput) (*types.RedeemCode, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}

	start, _ := time.ParseInLocation(time.DateOnly, in.StartDate, s.Location)
	end, _ := time.ParseInLocation(time.DateOnly, in.EndDate, s.Location)
	// the code stays redeemable through the whole end day
	end = end.Add(24*time.Hour - time.Second)
	if !end.After(start) {
		return nil, pipeline.Validation("End date must be after start date")
	}

	if _, err := s.Plans.Get(ctx, in.PlanID); err != nil {
		return nil, notFound(err, "Plan not found")
	}

	code := &types.RedeemCode{
		ID:        newID(),
		PlanID:    in.PlanID,
		Code:      trimmed(in.Code),
		Discount:  in.Discount,
		StartDate: start,
		EndDate:   end,
		Status:    types.StatusActive,
	}

	taken, err := s.RedeemCodes.Exists(ctx, sq.Eq{"code": code.Code})
	if err != nil {
		return nil, upstream(err, "Database error")
	}
	if taken {
		return nil, pipeline.Conflict("Redeem code already exists")
	}

	code.Touch(s.now())
	if err := s.RedeemCodes.Insert(ctx, code); err != nil {
		if isDuplicate(err) {
			return nil, pipeline.Conflict("Redeem code already exists")
		}
		return nil, upstream(err, "failed to add redeem code")
	}
	return format(s.Location, code), nil
}

func (s *Service) ListRedeemCodes(ctx context.Context, planID string) ([]*types.RedeemCode, error) {
	where := sq.Eq{}
	if planID != "" {
		where["plan_id"] = planID
	}
	return list(ctx, s, s.RedeemCodes, where)
}

func (s *Service) ToggleRedeemCodeStatus(ctx context.Context, id string) (types.Status, error) {
	v, err := toggle(ctx, s.RedeemCodes, id, store.StatusToggle, "Redeem code not found")
	return types.Status(v), err
}

func (s *Service) DeleteRedeemCode(ctx context.Context, id string) error {
	if err := s.RedeemCodes.Delete(ctx, id); err != nil {
		return notFound(err, "Redeem code not found")
	}
	return nil
}
