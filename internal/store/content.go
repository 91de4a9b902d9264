package store

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/reparvservices/reparv-server-sub002/internal/utils"
	"github.com/reparvservices/reparv-server-sub002/pkg/types"
)

const (
	blogTableName        = "blogs"
	testimonialTableName = "testimonials"
	marketingTableName   = "marketing_contents"
	planTableName        = "subscription_plans"
	redeemCodeTableName  = "redeem_codes"
	sliderTableName      = "sliders"
)

var planColumns = utils.StructTagValues(types.SubscriptionPlan{})

func NewBlogTable(db DB) *Table[types.Blog] {
	return NewTable[types.Blog](db, blogTableName, types.ErrBlogNotFound)
}

func NewTestimonialTable(db DB) *Table[types.Testimonial] {
	return NewTable[types.Testimonial](db, testimonialTableName, types.ErrTestimonialNotFound)
}

func NewMarketingTable(db DB) *Table[types.MarketingContent] {
	return NewTable[types.MarketingContent](db, marketingTableName, types.ErrMarketingNotFound)
}

func NewSliderTable(db DB) *Table[types.Slider] {
	return NewTable[types.Slider](db, sliderTableName, types.ErrSliderNotFound)
}

func NewRedeemCodeTable(db DB) *Table[types.RedeemCode] {
	return NewTable[types.RedeemCode](db, redeemCodeTableName, types.ErrRedeemCodeNotFound)
}

type PlanRepository struct {
	*Table[types.SubscriptionPlan]
}

func NewPlanRepository(db DB) *PlanRepository {
	return &PlanRepository{
		Table: NewTable[types.SubscriptionPlan](db, planTableName, types.ErrPlanNotFound),
	}
}

// Listing returns plans with the code currently redeemable against each:
// Active, started and not yet expired. A plan with several such codes shows
// the one expiring last.
func (r *PlanRepository) Listing(ctx context.Context, where sq.Eq, now time.Time) ([]*types.PlanListing, error) {
	query, args, err := planListingQuery(where, now).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate plan listing query: %w", err)
	}

	var rows = make([]*types.PlanListing, 0)
	err = pgxscan.Select(ctx, r.db, &rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}

	return rows, nil
}

const activeRedeemCodes = `(SELECT DISTINCT ON (plan_id) plan_id, code, discount, end_date
	FROM ` + redeemCodeTableName + `
	WHERE status = ? AND start_date <= ? AND end_date >= ?
	ORDER BY plan_id, end_date DESC, id DESC) rc ON rc.plan_id = sp.id`

func planListingQuery(where sq.Eq, now time.Time) sq.SelectBuilder {
	columns := utils.PrefixSliceOfStrings("sp", planColumns)
	columns = append(columns,
		"rc.code AS redeem_code",
		"rc.discount",
		"rc.end_date AS code_end_date",
	)

	b := psql().Select(columns...).
		From(planTableName+" sp").
		LeftJoin(activeRedeemCodes, types.StatusActive, now, now)

	if len(where) > 0 {
		scoped := make(sq.Eq, len(where))
		for column, value := range where {
			scoped["sp."+column] = value
		}
		b = b.Where(scoped)
	}

	return b.OrderBy("sp.created_at DESC", "sp.id DESC")
}
