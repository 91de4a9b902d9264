package types

type Wishlist struct {
	ID         string `db:"id" json:"id"`
	UserID     string `db:"user_id" json:"userId"`
	PropertyID string `db:"property_id" json:"propertyId"`

	Timestamps
}

// WishlistRow is a wishlist entry with the listed property summary.
type WishlistRow struct {
	Wishlist

	PropertyName     string  `db:"property_name" json:"propertyName"`
	SeoSlug          string  `db:"seo_slug" json:"seoSlug"`
	PropertyCategory string  `db:"property_category" json:"propertyCategory"`
	TotalOfferPrice  int64   `db:"total_offer_price" json:"totalOfferPrice"`
	City             *string `db:"city" json:"city"`
	FrontView        *string `db:"front_view" json:"frontView"`
}
