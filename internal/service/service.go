// Package service implements every entity operation on top of the write
// pipeline. Handlers call exactly one method per request.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/reparvservices/reparv-server-sub002/internal/notify"
	"github.com/reparvservices/reparv-server-sub002/internal/pipeline"
	"github.com/reparvservices/reparv-server-sub002/internal/referral"
	"github.com/reparvservices/reparv-server-sub002/internal/store"
	"github.com/reparvservices/reparv-server-sub002/internal/utils"
	"github.com/reparvservices/reparv-server-sub002/pkg/types"
)

// Repository is the row access every table offers. *store.Table and
// *store.MemTable satisfy it.
type Repository[T any] interface {
	Get(ctx context.Context, id string) (*T, error)
	Find(ctx context.Context, where sq.Sqlizer) (*T, error)
	List(ctx context.Context, where sq.Sqlizer) ([]*T, error)
	Exists(ctx context.Context, where sq.Sqlizer) (bool, error)
	Insert(ctx context.Context, row *T) error
	Update(ctx context.Context, id string, cols *store.Columns) error
	Delete(ctx context.Context, id string) error
	Toggle(ctx context.Context, id string, tg store.Toggle) (string, error)
}

type PartnerStore interface {
	Repository[types.Partner]
	Listing(ctx context.Context, where sq.Eq) ([]*types.PartnerListing, error)
}

type FollowUpStore interface {
	Repository[types.FollowUp]
	History(ctx context.Context, partnerID string, role types.Role) ([]*types.FollowUp, error)
	DeleteForPartner(ctx context.Context, partnerID string, role types.Role) error
}

type EnquiryStore interface {
	Repository[types.Enquirer]
	InsertMany(ctx context.Context, rows []*types.Enquirer) error
	Customers(ctx context.Context, projectPartnerID string) ([]*types.CustomerRow, error)
}

type PlanStore interface {
	Repository[types.SubscriptionPlan]
	Listing(ctx context.Context, where sq.Eq, now time.Time) ([]*types.PlanListing, error)
}

type WishlistStore interface {
	Repository[types.Wishlist]
	Entries(ctx context.Context, userID string) ([]*types.WishlistRow, error)
}

type Deps struct {
	Logger    *logrus.Logger
	Runner    *pipeline.Runner
	Referrals *referral.Generator
	Mailer    notify.Mailer
	Location  *time.Location

	Partners          map[types.Role]PartnerStore
	FollowUps         FollowUpStore
	Properties        Repository[types.Property]
	Enquiries         EnquiryStore
	PropertyFollowUps Repository[types.PropertyFollowUp]
	Payments          Repository[types.CustomerPayment]
	Blogs             Repository[types.Blog]
	Testimonials      Repository[types.Testimonial]
	Marketing         Repository[types.MarketingContent]
	Plans             PlanStore
	RedeemCodes       Repository[types.RedeemCode]
	Sliders           Repository[types.Slider]
	Wishlists         WishlistStore
}

type Service struct {
	Deps

	validate *validator.Validate
	now      func() time.Time
}

func New(deps Deps) *Service {
	if deps.Location == nil {
		deps.Location = time.UTC
	}
	if deps.Mailer == nil {
		deps.Mailer = notify.NopMailer{}
	}
	return &Service{
		Deps:     deps,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		now:      time.Now,
	}
}

// check runs the struct's validate tags. Missing required fields produce the
// generic message; the per-field tags ride along in Fields.
func (s *Service) check(input any) error {
	err := s.validate.Struct(input)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return pipeline.Validation("Invalid input")
	}

	fields := make(map[string]string, len(verrs))
	message := ""
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Tag()
		if fe.Tag() == "required" {
			message = "All Fields are required"
		}
	}
	if message == "" {
		message = fmt.Sprintf("Invalid %s", verrs[0].Field())
	}

	return &pipeline.Error{Kind: pipeline.KindValidation, Message: message, Fields: fields}
}

// tenant returns the caller's project partner, failing for identities that
// have none.
func tenant(id types.Identity) (string, error) {
	t := id.Tenant()
	if t == "" {
		return "", pipeline.Unauthorized("Unauthorized User")
	}
	return t, nil
}

// visible reports whether a row owned by owner may be seen by id. Admins see
// everything; tenant-scoped callers only their own rows.
func visible(id types.Identity, owner *string) bool {
	if id.Role == types.AuthAdmin {
		return true
	}
	t := id.Tenant()
	if t == "" {
		return true
	}
	return owner != nil && *owner == t
}

func newID() string {
	return utils.NanoID()
}

type formatter interface {
	FormatTimes(loc *time.Location)
}

// formatAll rewrites the display timestamps of every row.
func formatAll[T formatter](loc *time.Location, rows []T) []T {
	for _, r := range rows {
		r.FormatTimes(loc)
	}
	return rows
}

func format[T formatter](loc *time.Location, row T) T {
	row.FormatTimes(loc)
	return row
}

// notFound maps a store miss to a NotFound error with a client message.
func notFound(err error, msg string) error {
	if errors.Is(err, types.ErrNotFound) {
		return &pipeline.Error{Kind: pipeline.KindNotFound, Message: msg, Err: err}
	}
	return pipeline.Classify(err, pipeline.KindUpstream, "Database error")
}

func isDuplicate(err error) bool {
	return errors.Is(err, types.ErrDuplicate)
}

func upstream(err error, msg string) error {
	return pipeline.Classify(err, pipeline.KindUpstream, msg)
}

func statusFilter(activeOnly bool) sq.Eq {
	where := sq.Eq{}
	if activeOnly {
		where["status"] = types.StatusActive
	}
	return where
}

func trimmed(s string) string {
	return strings.TrimSpace(s)
}

// toggle flips tg on the row id after checking it exists.
func toggle[T any](ctx context.Context, rows Repository[T], id string, tg store.Toggle, missing string) (string, error) {
	value, err := rows.Toggle(ctx, id, tg)
	if err != nil {
		return "", notFound(err, missing)
	}
	return value, nil
}
