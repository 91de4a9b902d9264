package service

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/reparvservices/reparv-server-sub002/internal/pipeline"
	"github.com/reparvservices/reparv-server-sub002/pkg/types"
)

type WishlistInput struct {
	PropertyID string `form:"propertyId" json:"propertyId" validate:"required"`
}

func appUser(id types.Identity) (string, error) {
	if id.Subject == "" {
		return "", pipeline.Unauthorized("Unauthorized User")
	}
	return id.Subject, nil
}

func (s *Service) AddToWishlist(ctx context.Context, id types.Identity, in *WishlistInput) (*types.Wishlist, error) {
	userID, err := appUser(id)
	if err != nil {
		return nil, err
	}
	if err := s.check(in); err != nil {
		return nil, err
	}

	if _, err := s.Properties.Get(ctx, in.PropertyID); err != nil {
		return nil, notFound(err, "Property not found")
	}

	exists, err := s.Wishlists.Exists(ctx, sq.Eq{"user_id": userID, "property_id": in.PropertyID})
	if err != nil {
		return nil, upstream(err, "Database error")
	}
	if exists {
		return nil, pipeline.Conflict("Property already in wishlist")
	}

	entry := &types.Wishlist{
		ID:         newID(),
		UserID:     userID,
		PropertyID: in.PropertyID,
	}
	entry.Touch(s.now())

	if err := s.Wishlists.Insert(ctx, entry); err != nil {
		if isDuplicate(err) {
			return nil, pipeline.Conflict("Property already in wishlist")
		}
		return nil, upstream(err, "failed to add to wishlist")
	}
	return format(s.Location, entry), nil
}

// RemoveFromWishlist deletes an entry owned by the caller.
func (s *Service) RemoveFromWishlist(ctx context.Context, id types.Identity, entryID string) error {
	userID, err := appUser(id)
	if err != nil {
		return err
	}

	entry, err := s.Wishlists.Get(ctx, entryID)
	if err != nil {
		return notFound(err, "Wishlist entry not found")
	}
	if entry.UserID != userID {
		return pipeline.NotFound("Wishlist entry not found")
	}

	if err := s.Wishlists.Delete(ctx, entryID); err != nil {
		return notFound(err, "Wishlist entry not found")
	}
	return nil
}

func (s *Service) Wishlist(ctx context.Context, id types.Identity) ([]*types.WishlistRow, error) {
	userID, err := appUser(id)
	if err != nil {
		return nil, err
	}

	rows, err := s.Wishlists.Entries(ctx, userID)
	if err != nil {
		return nil, upstream(err, "Database error")
	}
	for _, r := range rows {
		r.FormatTimes(s.Location)
	}
	return rows, nil
}
