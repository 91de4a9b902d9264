package types

import "time"

type EnquirySource string

const (
	SourceDirect  EnquirySource = "Direct"
	SourceCSVFile EnquirySource = "CSV File"
)

// StatusToken marks an enquiry (and its property follow-up) that has paid a
// booking token and is therefore a customer.
const StatusToken = "Token"

type Enquirer struct {
	ID                 string  `db:"id" json:"enquirersid"`
	ProjectPartnerID   string  `db:"projectpartner_id" json:"projectpartnerid"`
	PropertyID         *string `db:"property_id" json:"propertyid"`
	TerritoryPartnerID *string `db:"territorypartner_id" json:"territorypartnerid"`

	CustomerName string  `db:"customer" json:"customer"`
	Contact      string  `db:"contact" json:"contact"`
	Email        *string `db:"email" json:"email"`
	Location     *string `db:"location" json:"location"`
	Category     *string `db:"category" json:"category"`
	MinBudget    int64   `db:"min_budget" json:"minbudget"`
	MaxBudget    int64   `db:"max_budget" json:"maxbudget"`
	Message      *string `db:"message" json:"message"`

	Source EnquirySource `db:"source" json:"source"`
	Status string        `db:"status" json:"status"`

	Timestamps
}

type PropertyFollowUp struct {
	ID          string `db:"id" json:"followupid"`
	EnquirerID  string `db:"enquirer_id" json:"enquirerid"`
	Status      string `db:"status" json:"status"`
	Note        string `db:"followup" json:"followup"`
	TokenAmount int64  `db:"token_amount" json:"tokenamount"`

	Timestamps
}

// CustomerRow is an enquirer that reached the Token stage, with the property,
// territory partner and token follow-up joined in.
type CustomerRow struct {
	Enquirer

	PropertyName         *string    `db:"property_name" json:"propertyName"`
	PropertyCategory     *string    `db:"property_category" json:"propertyCategory"`
	TerritoryName        *string    `db:"territory_name" json:"territoryName"`
	TerritoryContact     *string    `db:"territory_contact" json:"territoryContact"`
	TokenAmount          *int64     `db:"token_amount" json:"tokenamount"`
	TokenNote            *string    `db:"token_note" json:"tokenfollowup"`
	TokenAt              *time.Time `db:"token_at" json:"-"`
	TokenTime            string     `db:"-" json:"tokenAt,omitempty"`
	PropertyPartnerScope *string    `db:"property_projectpartner_id" json:"-"`
}

func (c *CustomerRow) FormatTimes(loc *time.Location) {
	c.Enquirer.FormatTimes(loc)
	if c.TokenAt != nil {
		if loc == nil {
			loc = time.UTC
		}
		c.TokenTime = c.TokenAt.In(loc).Format(DisplayLayout)
	}
}

type CustomerPayment struct {
	ID           string  `db:"id" json:"id"`
	EnquirerID   string  `db:"enquirer_id" json:"enquirerid"`
	PaymentType  string  `db:"payment_type" json:"paymentType"`
	Amount       int64   `db:"amount" json:"amount"`
	PaymentImage *string `db:"payment_image" json:"paymentImage"`
	Remark       *string `db:"remark" json:"remark"`

	Timestamps
}
