package types

// AuthRole is the role claim carried by an access token.
type AuthRole string

const (
	AuthAdmin            AuthRole = "admin"
	AuthProjectPartner   AuthRole = "projectpartner"
	AuthEmployee         AuthRole = "employee"
	AuthTerritoryPartner AuthRole = "territorypartner"
	AuthSalesPerson      AuthRole = "salesperson"
	AuthCustomer         AuthRole = "customer"
)

// Identity is attached to the request context by the auth middleware.
type Identity struct {
	Subject string
	Email   string
	Role    AuthRole
	// ProjectPartnerID is the tenant; for project partners it is their own id.
	ProjectPartnerID string
}

// Tenant returns the project partner scoping this identity, or "" for
// identities (admins, app customers) that are not tenant-scoped.
func (i Identity) Tenant() string {
	if i.Role == AuthProjectPartner && i.ProjectPartnerID == "" {
		return i.Subject
	}
	return i.ProjectPartnerID
}
