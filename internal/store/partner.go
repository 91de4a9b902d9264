package store

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/reparvservices/reparv-server-sub002/internal/utils"
	"github.com/reparvservices/reparv-server-sub002/pkg/types"
)

var partnerColumns = utils.StructTagValues(types.Partner{})

// PartnerRepository serves one partner role's table.
type PartnerRepository struct {
	*Table[types.Partner]
	kind types.PartnerKind
}

func NewPartnerRepository(db DB, kind types.PartnerKind) *PartnerRepository {
	return &PartnerRepository{
		Table: NewTable[types.Partner](db, kind.Table, types.ErrPartnerNotFound),
		kind:  kind,
	}
}

func (r *PartnerRepository) Kind() types.PartnerKind { return r.kind }

// Listing returns partners matching where, each with its latest follow-up
// for this role. Keys in where name partner columns.
func (r *PartnerRepository) Listing(ctx context.Context, where sq.Eq) ([]*types.PartnerListing, error) {
	query, args, err := listingQuery(r.kind, where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate %s listing query: %w", r.kind.Table, err)
	}

	var rows = make([]*types.PartnerListing, 0)
	err = pgxscan.Select(ctx, r.db, &rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s with follow-ups: %w", r.kind.Table, err)
	}

	return rows, nil
}

// latestFollowUps keeps one follow-up per partner: the newest by created_at,
// ties broken by the larger id.
const latestFollowUps = `(SELECT DISTINCT ON (partner_id) partner_id, status, followup, created_at
	FROM ` + followUpTableName + `
	WHERE role = ?
	ORDER BY partner_id, created_at DESC, id DESC) f ON f.partner_id = p.id`

func listingQuery(kind types.PartnerKind, where sq.Eq) sq.SelectBuilder {
	columns := utils.PrefixSliceOfStrings("p", partnerColumns)
	columns = append(columns,
		"f.status AS followup_status",
		"f.followup AS followup_note",
		"f.created_at AS followup_at",
	)

	b := psql().Select(columns...).
		From(kind.Table+" p").
		LeftJoin(latestFollowUps, string(kind.Role))

	if len(where) > 0 {
		scoped := make(sq.Eq, len(where))
		for column, value := range where {
			scoped["p."+column] = value
		}
		b = b.Where(scoped)
	}

	return b.OrderBy("p.created_at DESC", "p.id DESC")
}
