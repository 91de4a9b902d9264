package types

import "time"

type Role string

const (
	RoleGuestUser        Role = "Guest User"
	RoleSalesPerson      Role = "Sales Person"
	RoleTerritoryPartner Role = "Territory Partner"
	RoleProjectPartner   Role = "Project Partner"
	RoleEmployee         Role = "Employee"
)

// PartnerKind binds a role to the table holding its accounts.
type PartnerKind struct {
	Role  Role
	Table string
	// Scoped kinds belong to a project partner (the tenant).
	Scoped bool
	// Rera kinds accept a RERA certificate image.
	Rera bool
}

var PartnerKinds = []PartnerKind{
	{Role: RoleGuestUser, Table: "guest_users"},
	{Role: RoleSalesPerson, Table: "sales_persons", Scoped: true},
	{Role: RoleTerritoryPartner, Table: "territory_partners", Scoped: true, Rera: true},
	{Role: RoleProjectPartner, Table: "project_partners", Rera: true},
	{Role: RoleEmployee, Table: "employees", Scoped: true},
}

func KindOf(role Role) (PartnerKind, bool) {
	for _, k := range PartnerKinds {
		if k.Role == role {
			return k, true
		}
	}
	return PartnerKind{}, false
}

type Partner struct {
	ID               string  `db:"id" json:"id"`
	ProjectPartnerID *string `db:"projectpartner_id" json:"projectpartnerid"`

	FullName string  `db:"fullname" json:"fullname"`
	Contact  string  `db:"contact" json:"contact"`
	Email    string  `db:"email" json:"email"`
	Address  *string `db:"address" json:"address"`
	State    *string `db:"state" json:"state"`
	City     *string `db:"city" json:"city"`
	Pincode  *string `db:"pincode" json:"pincode"`

	AdharNo    *string `db:"adhar_no" json:"adharno"`
	PanNo      *string `db:"pan_no" json:"panno"`
	ReraNo     *string `db:"rera_no" json:"rerano"`
	AdharImage *string `db:"adhar_image" json:"adharimage"`
	PanImage   *string `db:"pan_image" json:"panimage"`
	ReraImage  *string `db:"rera_image" json:"reraimage"`

	BankName          *string `db:"bank_name" json:"bankname"`
	AccountHolderName *string `db:"account_holder_name" json:"accountholdername"`
	AccountNumber     *string `db:"account_number" json:"accountnumber"`
	IFSC              *string `db:"ifsc" json:"ifsc"`

	Status      Status  `db:"status" json:"status"`
	Referral    *string `db:"referral" json:"referral"`
	LoginStatus Status  `db:"loginstatus" json:"loginstatus"`
	Username    *string `db:"username" json:"username"`
	Password    *string `db:"password" json:"-"`

	Timestamps
}

// PartnerListing is a partner joined with its latest follow-up.
type PartnerListing struct {
	Partner

	FollowUpStatus *string    `db:"followup_status" json:"followupStatus"`
	FollowUpNote   *string    `db:"followup_note" json:"followup"`
	FollowUpAt     *time.Time `db:"followup_at" json:"-"`
	FollowUpTime   string     `db:"-" json:"followupAt,omitempty"`
}

func (l *PartnerListing) FormatTimes(loc *time.Location) {
	l.Partner.FormatTimes(loc)
	if l.FollowUpAt != nil {
		if loc == nil {
			loc = time.UTC
		}
		l.FollowUpTime = l.FollowUpAt.In(loc).Format(DisplayLayout)
	}
}

// FollowUpStatusNew seeds every newly created partner.
const FollowUpStatusNew = "New"

type FollowUp struct {
	ID        string `db:"id" json:"id"`
	PartnerID string `db:"partner_id" json:"partnerId"`
	Role      Role   `db:"role" json:"role"`
	Status    string `db:"status" json:"status"`
	Note      string `db:"followup" json:"followup"`

	Timestamps
}
