package types

import "time"

type Blog struct {
	ID          string  `db:"id" json:"id"`
	Type        string  `db:"type" json:"type"`
	Title       string  `db:"title" json:"tittle"`
	SeoSlug     string  `db:"seo_slug" json:"seoSlug"`
	Description string  `db:"description" json:"description"`
	Content     string  `db:"content" json:"content"`
	Image       *string `db:"image" json:"image"`
	Status      Status  `db:"status" json:"status"`

	Timestamps
}

type Testimonial struct {
	ID       string  `db:"id" json:"id"`
	Client   string  `db:"client" json:"client"`
	Message  string  `db:"message" json:"message"`
	VideoURL *string `db:"url" json:"url"`
	Photo    *string `db:"client_photo" json:"clientimage"`
	Status   Status  `db:"status" json:"status"`

	Timestamps
}

// MarketingContent keeps the sha256 of its uploaded file in ContentHash so a
// re-upload of the same file can be rejected.
type MarketingContent struct {
	ID               string  `db:"id" json:"id"`
	ProjectPartnerID *string `db:"projectpartner_id" json:"projectpartnerid"`
	ContentType      string  `db:"content_type" json:"contentType"`
	ContentFile      *string `db:"content_file" json:"contentFile"`
	ContentHash      *string `db:"content_hash" json:"-"`
	Status           Status  `db:"status" json:"status"`

	Timestamps
}

type SubscriptionPlan struct {
	ID           string  `db:"id" json:"id"`
	PlanName     string  `db:"plan_name" json:"planName"`
	PlanDuration string  `db:"plan_duration" json:"planDuration"`
	PlanFor      string  `db:"plan_for" json:"planFor"`
	TotalPrice   int64   `db:"total_price" json:"totalPrice"`
	Features     string  `db:"features" json:"features"`
	BannerImage  *string `db:"banner_image" json:"bannerImage"`
	Highlight    Flag    `db:"highlight" json:"highlight"`
	Status       Status  `db:"status" json:"status"`

	Timestamps
}

// PlanListing is a plan joined with its currently redeemable code, if any.
type PlanListing struct {
	SubscriptionPlan

	RedeemCode    *string    `db:"redeem_code" json:"redeemCode"`
	Discount      *int64     `db:"discount" json:"discount"`
	CodeExpiresAt *time.Time `db:"code_end_date" json:"codeEndDate"`
}

type RedeemCode struct {
	ID        string    `db:"id" json:"id"`
	PlanID    string    `db:"plan_id" json:"planId"`
	Code      string    `db:"code" json:"redeemCode"`
	Discount  int64     `db:"discount" json:"discount"`
	StartDate time.Time `db:"start_date" json:"startDate"`
	EndDate   time.Time `db:"end_date" json:"endDate"`
	Status    Status    `db:"status" json:"status"`

	Timestamps
}

type Slider struct {
	ID          string  `db:"id" json:"id"`
	Image       *string `db:"image" json:"image"`
	MobileImage *string `db:"mobile_image" json:"mobileImage"`
	Status      Status  `db:"status" json:"status"`

	Timestamps
}
