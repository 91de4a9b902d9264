package service

import (
	"context"
	"testing"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"

	"github.com/reparvservices/reparv-server-sub002/internal/notify"
	"github.com/reparvservices/reparv-server-sub002/internal/pipeline"
	"github.com/reparvservices/reparv-server-sub002/internal/referral"
	"github.com/reparvservices/reparv-server-sub002/internal/storage"
	"github.com/reparvservices/reparv-server-sub002/internal/store"
	"github.com/reparvservices/reparv-server-sub002/pkg/types"
)

type partnerFake struct {
	*store.MemTable[types.Partner]
	followUps *followUpFake
	role      types.Role

	// beforeInsert runs once ahead of the next Insert.
	beforeInsert func()
}

func (f *partnerFake) Insert(ctx context.Context, row *types.Partner) error {
	if hook := f.beforeInsert; hook != nil {
		f.beforeInsert = nil
		hook()
	}
	return f.MemTable.Insert(ctx, row)
}

func (f *partnerFake) Listing(ctx context.Context, where sq.Eq) ([]*types.PartnerListing, error) {
	partners, err := f.List(ctx, where)
	if err != nil {
		return nil, err
	}

	out := make([]*types.PartnerListing, 0, len(partners))
	for _, p := range partners {
		row := &types.PartnerListing{Partner: *p}
		history, err := f.followUps.History(ctx, p.ID, f.role)
		if err != nil {
			return nil, err
		}
		if len(history) > 0 {
			latest := history[0]
			row.FollowUpStatus = &latest.Status
			row.FollowUpNote = &latest.Note
			row.FollowUpAt = &latest.CreatedAt
		}
		out = append(out, row)
	}
	return out, nil
}

type followUpFake struct {
	*store.MemTable[types.FollowUp]
}

func (f *followUpFake) History(ctx context.Context, partnerID string, role types.Role) ([]*types.FollowUp, error) {
	return f.List(ctx, sq.Eq{"partner_id": partnerID, "role": role})
}

func (f *followUpFake) DeleteForPartner(ctx context.Context, partnerID string, role types.Role) error {
	rows, err := f.History(ctx, partnerID, role)
	if err != nil {
		return err
	}
	for _, r := range rows {
		if err := f.Delete(ctx, r.ID); err != nil {
			return err
		}
	}
	return nil
}

type enquiryFake struct {
	*store.MemTable[types.Enquirer]
	properties *store.MemTable[types.Property]
	followUps  *store.MemTable[types.PropertyFollowUp]
}

func (f *enquiryFake) InsertMany(ctx context.Context, rows []*types.Enquirer) error {
	for _, r := range rows {
		if err := f.Insert(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

func (f *enquiryFake) Customers(ctx context.Context, projectPartnerID string) ([]*types.CustomerRow, error) {
	enquirers, err := f.List(ctx, sq.Eq{"status": types.StatusToken})
	if err != nil {
		return nil, err
	}

	out := make([]*types.CustomerRow, 0)
	for _, e := range enquirers {
		if e.PropertyID == nil {
			continue
		}
		p, err := f.properties.Get(ctx, *e.PropertyID)
		if err != nil || p.ProjectPartnerID == nil || *p.ProjectPartnerID != projectPartnerID {
			continue
		}
		tokens, err := f.followUps.List(ctx, sq.Eq{"enquirer_id": e.ID, "status": types.StatusToken})
		if err != nil || len(tokens) == 0 {
			continue
		}
		out = append(out, &types.CustomerRow{
			Enquirer:     *e,
			PropertyName: &p.PropertyName,
			TokenAmount:  &tokens[0].TokenAmount,
			TokenAt:      &tokens[0].CreatedAt,
		})
	}
	return out, nil
}

type planFake struct {
	*store.MemTable[types.SubscriptionPlan]
	codes *store.MemTable[types.RedeemCode]
}

func (f *planFake) Listing(ctx context.Context, where sq.Eq, now time.Time) ([]*types.PlanListing, error) {
	plans, err := f.List(ctx, where)
	if err != nil {
		return nil, err
	}

	out := make([]*types.PlanListing, 0, len(plans))
	for _, p := range plans {
		row := &types.PlanListing{SubscriptionPlan: *p}
		codes, err := f.codes.List(ctx, sq.Eq{"plan_id": p.ID, "status": types.StatusActive})
		if err != nil {
			return nil, err
		}
		for _, c := range codes {
			if c.StartDate.After(now) || c.EndDate.Before(now) {
				continue
			}
			if row.CodeExpiresAt == nil || c.EndDate.After(*row.CodeExpiresAt) {
				row.RedeemCode = &c.Code
				row.Discount = &c.Discount
				row.CodeExpiresAt = &c.EndDate
			}
		}
		out = append(out, row)
	}
	return out, nil
}

type wishlistFake struct {
	*store.MemTable[types.Wishlist]
	properties *store.MemTable[types.Property]
}

func (f *wishlistFake) Entries(ctx context.Context, userID string) ([]*types.WishlistRow, error) {
	entries, err := f.List(ctx, sq.Eq{"user_id": userID})
	if err != nil {
		return nil, err
	}

	out := make([]*types.WishlistRow, 0, len(entries))
	for _, w := range entries {
		p, err := f.properties.Get(ctx, w.PropertyID)
		if err != nil {
			continue
		}
		out = append(out, &types.WishlistRow{
			Wishlist:         *w,
			PropertyName:     p.PropertyName,
			SeoSlug:          p.SeoSlug,
			PropertyCategory: p.PropertyCategory,
			TotalOfferPrice:  p.TotalOfferPrice,
			City:             p.City,
			FrontView:        p.FrontView,
		})
	}
	return out, nil
}

type recordingMailer struct {
	sent []notify.Credentials
	err  error
}

func (m *recordingMailer) SendCredentials(_ context.Context, creds notify.Credentials) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, creds)
	return nil
}

// fixture bundles a Service wired to in-memory tables and blob storage.
type fixture struct {
	svc   *Service
	blobs *storage.MemoryStorage
	hook  *logtest.Hook
	mail  *recordingMailer

	partners     map[types.Role]*partnerFake
	followUps    *followUpFake
	properties   *store.MemTable[types.Property]
	enquiries    *enquiryFake
	propertyFups *store.MemTable[types.PropertyFollowUp]
	payments     *store.MemTable[types.CustomerPayment]
	blogs        *store.MemTable[types.Blog]
	testimonials *store.MemTable[types.Testimonial]
	marketing    *store.MemTable[types.MarketingContent]
	plans        *planFake
	codes        *store.MemTable[types.RedeemCode]
	sliders      *store.MemTable[types.Slider]
	wishlists    *wishlistFake
}

var fixedNow = time.Date(2025, time.March, 5, 10, 37, 0, 0, time.UTC)

func newFixture(t *testing.T, opts ...pipeline.Option) *fixture {
	t.Helper()

	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	f := &fixture{
		blobs:    storage.NewMemoryStorage(),
		hook:     hook,
		mail:     &recordingMailer{},
		partners: make(map[types.Role]*partnerFake),
		followUps: &followUpFake{
			MemTable: store.NewMemTable[types.FollowUp]("partner_followups", types.ErrFollowUpNotFound),
		},
		properties:   store.NewMemTable[types.Property]("properties", types.ErrPropertyNotFound).Unique("property_name"),
		propertyFups: store.NewMemTable[types.PropertyFollowUp]("property_followups", types.ErrFollowUpNotFound),
		payments:     store.NewMemTable[types.CustomerPayment]("customer_payments", types.ErrPaymentNotFound),
		blogs:        store.NewMemTable[types.Blog]("blogs", types.ErrBlogNotFound).Unique("seo_slug"),
		testimonials: store.NewMemTable[types.Testimonial]("testimonials", types.ErrTestimonialNotFound),
		marketing:    store.NewMemTable[types.MarketingContent]("marketing_contents", types.ErrMarketingNotFound),
		codes:        store.NewMemTable[types.RedeemCode]("redeem_codes", types.ErrRedeemCodeNotFound).Unique("code"),
		sliders:      store.NewMemTable[types.Slider]("sliders", types.ErrSliderNotFound),
	}
	f.enquiries = &enquiryFake{
		MemTable:   store.NewMemTable[types.Enquirer]("enquirers", types.ErrEnquirerNotFound),
		properties: f.properties,
		followUps:  f.propertyFups,
	}
	f.plans = &planFake{
		MemTable: store.NewMemTable[types.SubscriptionPlan]("subscription_plans", types.ErrPlanNotFound).Unique("plan_name", "plan_duration"),
		codes:    f.codes,
	}
	f.wishlists = &wishlistFake{
		MemTable:   store.NewMemTable[types.Wishlist]("wishlists", types.ErrWishlistNotFound).Unique("user_id", "property_id"),
		properties: f.properties,
	}

	partnerStores := make(map[types.Role]PartnerStore)
	for _, kind := range types.PartnerKinds {
		p := &partnerFake{
			MemTable:  store.NewMemTable[types.Partner](kind.Table, types.ErrPartnerNotFound).Unique("contact").Unique("email").Unique("referral"),
			followUps: f.followUps,
			role:      kind.Role,
		}
		f.partners[kind.Role] = p
		partnerStores[kind.Role] = p
	}

	f.svc = New(Deps{
		Logger:            logger,
		Runner:            pipeline.NewRunner(f.blobs, logger, opts...),
		Referrals:         referral.NewGenerator(referral.DefaultMaxAttempts),
		Mailer:            f.mail,
		Location:          time.UTC,
		Partners:          partnerStores,
		FollowUps:         f.followUps,
		Properties:        f.properties,
		Enquiries:         f.enquiries,
		PropertyFollowUps: f.propertyFups,
		Payments:          f.payments,
		Blogs:             f.blogs,
		Testimonials:      f.testimonials,
		Marketing:         f.marketing,
		Plans:             f.plans,
		RedeemCodes:       f.codes,
		Sliders:           f.sliders,
		Wishlists:         f.wishlists,
	})
	f.svc.now = func() time.Time { return fixedNow }

	return f
}

var (
	admin     = types.Identity{Subject: "admin-1", Role: types.AuthAdmin}
	tenantA   = types.Identity{Subject: "pp-a", Role: types.AuthProjectPartner}
	tenantB   = types.Identity{Subject: "pp-b", Role: types.AuthProjectPartner}
	appUserID = types.Identity{Subject: "user-1", Role: types.AuthCustomer}
)

func upload(field, name string) *storage.File {
	return &storage.File{Field: field, Filename: name, ContentType: "image/png", Data: []byte(field + "/" + name)}
}

func filesOf(uploads ...*storage.File) Files {
	files := Files{}
	for _, u := range uploads {
		files[u.Field] = append(files[u.Field], u)
	}
	return files
}

func kindOf(t *testing.T, err error) pipeline.Kind {
	t.Helper()
	return pipeline.KindOf(err)
}
