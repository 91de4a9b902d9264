package service

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/reparvservices/reparv-server-sub002/internal/pipeline"
	"github.com/reparvservices/reparv-server-sub002/internal/store"
	"github.com/reparvservices/reparv-server-sub002/internal/utils"
	"github.com/reparvservices/reparv-server-sub002/pkg/types"
)

type PropertyInput struct {
	ProjectPartnerID string `form:"projectpartnerid" json:"projectpartnerid"`
	PropertyName     string `form:"propertyName" json:"propertyName" validate:"required"`
	PropertyCategory string `form:"propertyCategory" json:"propertyCategory" validate:"required"`
	PropertyType     string `form:"propertyType" json:"propertyType"`
	Description      string `form:"propertyDescription" json:"propertyDescription"`
	TotalSalesPrice  int64  `form:"totalSalesPrice" json:"totalSalesPrice" validate:"gte=0"`
	TotalOfferPrice  int64  `form:"totalOfferPrice" json:"totalOfferPrice" validate:"gte=0"`
	AreaSqft         int64  `form:"areaSqft" json:"areaSqft" validate:"gte=0"`
	State            string `form:"state" json:"state" validate:"required"`
	City             string `form:"city" json:"city" validate:"required"`
	Location         string `form:"location" json:"location"`
	Address          string `form:"address" json:"address"`
	Pincode          string `form:"pincode" json:"pincode"`
	CommissionType   string `form:"commissionType" json:"commissionType"`
	CommissionAmount int64  `form:"commissionAmount" json:"commissionAmount" validate:"gte=0"`
}

type PropertyPatch struct {
	PropertyName     *string `form:"propertyName" json:"propertyName"`
	PropertyCategory *string `form:"propertyCategory" json:"propertyCategory"`
	PropertyType     *string `form:"propertyType" json:"propertyType"`
	Description      *string `form:"propertyDescription" json:"propertyDescription"`
	TotalSalesPrice  *int64  `form:"totalSalesPrice" json:"totalSalesPrice" validate:"omitempty,gte=0"`
	TotalOfferPrice  *int64  `form:"totalOfferPrice" json:"totalOfferPrice" validate:"omitempty,gte=0"`
	AreaSqft         *int64  `form:"areaSqft" json:"areaSqft" validate:"omitempty,gte=0"`
	State            *string `form:"state" json:"state"`
	City             *string `form:"city" json:"city"`
	Location         *string `form:"location" json:"location"`
	Address          *string `form:"address" json:"address"`
	Pincode          *string `form:"pincode" json:"pincode"`
	CommissionType   *string `form:"commissionType" json:"commissionType"`
	CommissionAmount *int64  `form:"commissionAmount" json:"commissionAmount" validate:"omitempty,gte=0"`
}

func (p *PropertyPatch) columns() *store.Columns {
	cols := store.NewColumns()
	if p.PropertyName != nil && trimmed(*p.PropertyName) != "" {
		cols.Set("property_name", trimmed(*p.PropertyName)).
			Set("seo_slug", utils.Slugify(*p.PropertyName))
	}
	if p.PropertyCategory != nil {
		cols.SetString("property_category", *p.PropertyCategory)
	}
	cols.SetPtr("property_type", p.PropertyType).
		SetPtr("description", p.Description).
		SetPtr("state", p.State).
		SetPtr("city", p.City).
		SetPtr("location", p.Location).
		SetPtr("address", p.Address).
		SetPtr("pincode", p.Pincode).
		SetPtr("commission_type", p.CommissionType)

	for column, value := range map[string]*int64{
		"total_sales_price": p.TotalSalesPrice,
		"total_offer_price": p.TotalOfferPrice,
		"area_sqft":         p.AreaSqft,
		"commission_amount": p.CommissionAmount,
	} {
		if value != nil {
			cols.Set(column, *value)
		}
	}
	return cols
}

// propertyOwner fills the owner columns of a new property: app customers own
// their own listings, partners list under their tenant.
func propertyOwner(id types.Identity, p *types.Property, in *PropertyInput) error {
	switch id.Role {
	case types.AuthCustomer:
		if id.Subject == "" {
			return pipeline.Unauthorized("Unauthorized User")
		}
		p.CustomerID = utils.StringPtr(id.Subject)
	case types.AuthAdmin:
		p.ProjectPartnerID = utils.NilIfBlank(in.ProjectPartnerID)
	default:
		t, err := tenant(id)
		if err != nil {
			return err
		}
		p.ProjectPartnerID = &t
	}
	return nil
}

func ownsProperty(id types.Identity, p *types.Property) bool {
	if id.Role == types.AuthCustomer {
		return p.CustomerID != nil && *p.CustomerID == id.Subject
	}
	return visible(id, p.ProjectPartnerID)
}

// AddProperty lists a property with its image collections. Every image slot
// uploads concurrently and stores a JSON array of URLs.
func (s *Service) AddProperty(ctx context.Context, id types.Identity, in *PropertyInput, files Files) (*types.Property, error) {
	property := &types.Property{
		ID:               newID(),
		PropertyName:     trimmed(in.PropertyName),
		SeoSlug:          utils.Slugify(in.PropertyName),
		PropertyCategory: trimmed(in.PropertyCategory),
		PropertyType:     utils.NilIfBlank(in.PropertyType),
		Description:      utils.NilIfBlank(in.Description),
		TotalSalesPrice:  in.TotalSalesPrice,
		TotalOfferPrice:  in.TotalOfferPrice,
		AreaSqft:         in.AreaSqft,
		State:            utils.NilIfBlank(in.State),
		City:             utils.NilIfBlank(in.City),
		Location:         utils.NilIfBlank(in.Location),
		Address:          utils.NilIfBlank(in.Address),
		Pincode:          utils.NilIfBlank(in.Pincode),
		CommissionType:   utils.NilIfBlank(in.CommissionType),
		CommissionAmount: in.CommissionAmount,
		Status:           types.StatusActive,
		HotDeal:          types.FlagFalse,
	}
	if err := propertyOwner(id, property, in); err != nil {
		return nil, err
	}

	_, err := s.Runner.Run(ctx, &pipeline.Write{
		Entity:   "property",
		Op:       pipeline.OpCreate,
		Validate: func() error { return s.check(in) },
		CheckDuplicate: func(ctx context.Context) error {
			return conflictIf(s.Properties.Exists(ctx, sq.Eq{"property_name": property.PropertyName}))("Property already exists with this name")
		},
		Uploads: files.uploads(propertySlots()...),
		Persist: func(ctx context.Context, assets pipeline.Assets) error {
			values := make(map[string]any, len(assets))
			for column, value := range assets {
				values[column] = value
			}
			if err := utils.AssignColumns(property, values); err != nil {
				return pipeline.Unexpected("failed to assign property images", err)
			}
			property.Touch(s.now())
			return s.Properties.Insert(ctx, property)
		},
	})
	if err != nil {
		return nil, err
	}
	return format(s.Location, property), nil
}

func (s *Service) loadProperty(ctx context.Context, id types.Identity, propertyID string) (*types.Property, error) {
	property, err := s.Properties.Get(ctx, propertyID)
	if err != nil {
		return nil, notFound(err, "Property not found")
	}
	if !ownsProperty(id, property) {
		return nil, pipeline.NotFound("Property not found")
	}
	return property, nil
}

// EditProperty rewrites an image slot only when new files came for it; the
// replaced URLs are deleted after the row is updated.
func (s *Service) EditProperty(ctx context.Context, id types.Identity, propertyID string, patch *PropertyPatch, files Files) (*types.Property, error) {
	current, err := s.loadProperty(ctx, id, propertyID)
	if err != nil {
		return nil, err
	}

	previous := make(map[string]*string, len(types.PropertyImageSlots))
	for _, slot := range types.PropertyImageSlots {
		previous[slot.Column] = current.ImageValue(slot.Column)
	}

	cols := patch.columns()

	_, err = s.Runner.Run(ctx, &pipeline.Write{
		Entity:   "property",
		Op:       pipeline.OpEdit,
		Validate: func() error { return s.check(patch) },
		Uploads:  files.uploads(propertySlots()...),
		Previous: previous,
		Persist: func(ctx context.Context, assets pipeline.Assets) error {
			err := s.Properties.Update(ctx, propertyID, cols.Merge(assets))
			if isDuplicate(err) {
				return pipeline.Conflict("Property already exists with this name")
			}
			return err
		},
	})
	if err != nil {
		return nil, err
	}
	return s.GetProperty(ctx, propertyID)
}

func (s *Service) GetProperty(ctx context.Context, propertyID string) (*types.Property, error) {
	property, err := s.Properties.Get(ctx, propertyID)
	if err != nil {
		return nil, notFound(err, "Property not found")
	}
	return format(s.Location, property), nil
}

// PropertyBySlug serves the public property page.
func (s *Service) PropertyBySlug(ctx context.Context, slug string) (*types.Property, error) {
	property, err := s.Properties.Find(ctx, sq.Eq{"seo_slug": slug, "status": types.StatusActive})
	if err != nil {
		return nil, notFound(err, "Property not found")
	}
	return format(s.Location, property), nil
}

// ListProperties returns the caller's own properties; admins see all.
func (s *Service) ListProperties(ctx context.Context, id types.Identity, activeOnly bool) ([]*types.Property, error) {
	where := statusFilter(activeOnly)
	switch {
	case id.Role == types.AuthAdmin:
	case id.Role == types.AuthCustomer:
		where["customer_id"] = id.Subject
	default:
		t, err := tenant(id)
		if err != nil {
			return nil, err
		}
		where["projectpartner_id"] = t
	}
	return list(ctx, s, s.Properties, where)
}

// PublicProperties lists active properties, optionally filtered by city and
// category, for the storefront.
func (s *Service) PublicProperties(ctx context.Context, city, category string, hotDealsOnly bool) ([]*types.Property, error) {
	where := statusFilter(true)
	if city = trimmed(city); city != "" {
		where["city"] = city
	}
	if category = trimmed(category); category != "" {
		where["property_category"] = category
	}
	if hotDealsOnly {
		where["hot_deal"] = types.FlagTrue
	}
	return list(ctx, s, s.Properties, where)
}

func (s *Service) TogglePropertyStatus(ctx context.Context, id types.Identity, propertyID string) (types.Status, error) {
	if _, err := s.loadProperty(ctx, id, propertyID); err != nil {
		return "", err
	}
	v, err := toggle(ctx, s.Properties, propertyID, store.StatusToggle, "Property not found")
	return types.Status(v), err
}

func (s *Service) TogglePropertyHotDeal(ctx context.Context, id types.Identity, propertyID string) (types.Flag, error) {
	if _, err := s.loadProperty(ctx, id, propertyID); err != nil {
		return "", err
	}
	v, err := toggle(ctx, s.Properties, propertyID, store.HotDealToggle, "Property not found")
	return types.Flag(v), err
}

// DeleteProperty removes the row, then every URL of every image slot. Blob
// failures are logged and do not fail the request.
func (s *Service) DeleteProperty(ctx context.Context, id types.Identity, propertyID string) error {
	property, err := s.loadProperty(ctx, id, propertyID)
	if err != nil {
		return err
	}
	return s.Runner.Remove(ctx, "property", deleteRow(s.Properties, propertyID), property.ImageValues()...)
}
