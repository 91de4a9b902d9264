package store

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/reparvservices/reparv-server-sub002/internal/utils"
	"github.com/reparvservices/reparv-server-sub002/pkg/types"
)

const wishlistTableName = "wishlists"

var wishlistColumns = utils.StructTagValues(types.Wishlist{})

type WishlistRepository struct {
	*Table[types.Wishlist]
}

func NewWishlistRepository(db DB) *WishlistRepository {
	return &WishlistRepository{
		Table: NewTable[types.Wishlist](db, wishlistTableName, types.ErrWishlistNotFound),
	}
}

// Entries lists a user's wishlist with the property summary of each entry.
func (r *WishlistRepository) Entries(ctx context.Context, userID string) ([]*types.WishlistRow, error) {
	query, args, err := wishlistQuery(userID).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate wishlist query: %w", err)
	}

	var rows = make([]*types.WishlistRow, 0)
	err = pgxscan.Select(ctx, r.db, &rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list wishlist: %w", err)
	}

	return rows, nil
}

func wishlistQuery(userID string) sq.SelectBuilder {
	columns := utils.PrefixSliceOfStrings("w", wishlistColumns)
	columns = append(columns,
		"p.property_name",
		"p.seo_slug",
		"p.property_category",
		"p.total_offer_price",
		"p.city",
		"p.front_view",
	)

	return psql().Select(columns...).
		From(wishlistTableName+" w").
		Join(propertyTableName+" p ON p.id = w.property_id").
		Where(sq.Eq{"w.user_id": userID}).
		OrderBy("w.created_at DESC", "w.id DESC")
}
