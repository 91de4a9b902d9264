package types

// PropertyImageSlot maps a multipart field to the column storing its
// JSON-encoded URL collection.
type PropertyImageSlot struct {
	Field  string
	Column string
}

var PropertyImageSlots = []PropertyImageSlot{
	{Field: "frontView", Column: "front_view"},
	{Field: "sideView", Column: "side_view"},
	{Field: "kitchenView", Column: "kitchen_view"},
	{Field: "hallView", Column: "hall_view"},
	{Field: "bedroomView", Column: "bedroom_view"},
	{Field: "bathroomView", Column: "bathroom_view"},
	{Field: "balconyView", Column: "balcony_view"},
	{Field: "nearestLandmark", Column: "nearest_landmark"},
	{Field: "developedAmenities", Column: "developed_amenities"},
}

type Property struct {
	ID               string  `db:"id" json:"propertyid"`
	CustomerID       *string `db:"customer_id" json:"customerid"`
	ProjectPartnerID *string `db:"projectpartner_id" json:"projectpartnerid"`

	PropertyName     string  `db:"property_name" json:"propertyName"`
	SeoSlug          string  `db:"seo_slug" json:"seoSlug"`
	PropertyCategory string  `db:"property_category" json:"propertyCategory"`
	PropertyType     *string `db:"property_type" json:"propertyType"`
	Description      *string `db:"description" json:"propertyDescription"`

	TotalSalesPrice int64 `db:"total_sales_price" json:"totalSalesPrice"`
	TotalOfferPrice int64 `db:"total_offer_price" json:"totalOfferPrice"`
	AreaSqft        int64 `db:"area_sqft" json:"areaSqft"`

	State    *string `db:"state" json:"state"`
	City     *string `db:"city" json:"city"`
	Location *string `db:"location" json:"location"`
	Address  *string `db:"address" json:"address"`
	Pincode  *string `db:"pincode" json:"pincode"`

	FrontView          *string `db:"front_view" json:"frontView"`
	SideView           *string `db:"side_view" json:"sideView"`
	KitchenView        *string `db:"kitchen_view" json:"kitchenView"`
	HallView           *string `db:"hall_view" json:"hallView"`
	BedroomView        *string `db:"bedroom_view" json:"bedroomView"`
	BathroomView       *string `db:"bathroom_view" json:"bathroomView"`
	BalconyView        *string `db:"balcony_view" json:"balconyView"`
	NearestLandmark    *string `db:"nearest_landmark" json:"nearestLandmark"`
	DevelopedAmenities *string `db:"developed_amenities" json:"developedAmenities"`

	Status           Status  `db:"status" json:"status"`
	HotDeal          Flag    `db:"hot_deal" json:"hotDeal"`
	CommissionType   *string `db:"commission_type" json:"commissionType"`
	CommissionAmount int64   `db:"commission_amount" json:"commissionAmount"`

	Timestamps
}

// ImageValues returns the stored value of every image slot, nil slots included.
func (p *Property) ImageValues() []*string {
	return []*string{
		p.FrontView, p.SideView, p.KitchenView, p.HallView, p.BedroomView,
		p.BathroomView, p.BalconyView, p.NearestLandmark, p.DevelopedAmenities,
	}
}

// ImageValue returns the stored value for an image column.
func (p *Property) ImageValue(column string) *string {
	for i, slot := range PropertyImageSlots {
		if slot.Column == column {
			return p.ImageValues()[i]
		}
	}
	return nil
}
