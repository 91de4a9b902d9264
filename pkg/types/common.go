package types

import (
	"errors"
	"time"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")

	ErrPartnerNotFound     = notFound("partner")
	ErrFollowUpNotFound    = notFound("follow-up")
	ErrPropertyNotFound    = notFound("property")
	ErrEnquirerNotFound    = notFound("enquirer")
	ErrPaymentNotFound     = notFound("payment")
	ErrBlogNotFound        = notFound("blog")
	ErrTestimonialNotFound = notFound("testimonial")
	ErrMarketingNotFound   = notFound("marketing content")
	ErrPlanNotFound        = notFound("subscription plan")
	ErrRedeemCodeNotFound  = notFound("redeem code")
	ErrSliderNotFound      = notFound("slider")
	ErrWishlistNotFound    = notFound("wishlist entry")
)

type entityError struct {
	entity string
	base   error
}

func (e *entityError) Error() string { return e.entity + " not found" }
func (e *entityError) Unwrap() error { return e.base }

func notFound(entity string) error {
	return &entityError{entity: entity, base: ErrNotFound}
}

// Status is the Active/Inactive token stored in most status columns.
type Status string

const (
	StatusActive   Status = "Active"
	StatusInactive Status = "Inactive"
)

// Flag is a "True"/"False" string column. These are not booleans in the schema.
type Flag string

const (
	FlagTrue  Flag = "True"
	FlagFalse Flag = "False"
)

// DisplayLayout renders as "05 Mar 2025 | 04:07 PM".
const DisplayLayout = "02 Jan 2006 | 03:04 PM"

// Timestamps is embedded by every row type. The raw columns are never
// serialized; FormatTimes fills the display strings that are.
type Timestamps struct {
	CreatedAt time.Time `db:"created_at" json:"-"`
	UpdatedAt time.Time `db:"updated_at" json:"-"`

	Created string `db:"-" json:"created_at"`
	Updated string `db:"-" json:"updated_at"`
}

func (t *Timestamps) FormatTimes(loc *time.Location) {
	if loc == nil {
		loc = time.UTC
	}
	t.Created = t.CreatedAt.In(loc).Format(DisplayLayout)
	t.Updated = t.UpdatedAt.In(loc).Format(DisplayLayout)
}

// Touch sets both timestamps for a freshly built row.
func (t *Timestamps) Touch(now time.Time) {
	t.CreatedAt = now
	t.UpdatedAt = now
}
