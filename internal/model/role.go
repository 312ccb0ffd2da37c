package model

import "fmt"

// Role is the closed set of staff roles.
type Role string

const (
	RoleOwner   Role = "owner"
	RoleManager Role = "manager"
	RoleCashier Role = "cashier"
)

// Capability names an operation that is gated by role.
type Capability string

const (
	CapBillingCheckout Capability = "billing.checkout"
	CapCatalogRead     Capability = "catalog.read"
	CapCatalogWrite    Capability = "catalog.write"
	CapCustomersRead   Capability = "customers.read"
	CapCustomersWrite  Capability = "customers.write"
	CapReportsRead     Capability = "reports.read"
	CapReordersManage  Capability = "reorders.manage"
	CapUsersManage     Capability = "users.manage"
	CapAuditRead       Capability = "audit.read"
)

// AllCapabilities lists every capability, in menu order.
var AllCapabilities = []Capability{
	CapBillingCheckout,
	CapCatalogRead,
	CapCatalogWrite,
	CapCustomersRead,
	CapCustomersWrite,
	CapReportsRead,
	CapReordersManage,
	CapUsersManage,
	CapAuditRead,
}

var capabilityTable = map[Role]map[Capability]bool{
	RoleOwner: capSet(AllCapabilities...),
	RoleManager: capSet(
		CapBillingCheckout,
		CapCatalogRead,
		CapCatalogWrite,
		CapCustomersRead,
		CapCustomersWrite,
		CapReportsRead,
		CapReordersManage,
	),
	RoleCashier: capSet(
		CapBillingCheckout,
		CapCatalogRead,
		CapCustomersRead,
	),
}

func capSet(caps ...Capability) map[Capability]bool {
	set := make(map[Capability]bool, len(caps))
	for _, c := range caps {
		set[c] = true
	}
	return set
}

// ParseRole validates a role name.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if _, ok := capabilityTable[r]; !ok {
		return "", fmt.Errorf("invalid role %q: must be owner, manager or cashier", s)
	}
	return r, nil
}

// Can reports whether the role grants the capability. Unknown roles grant nothing.
func (r Role) Can(c Capability) bool {
	return capabilityTable[r][c]
}

// Capabilities returns the capabilities granted to the role, in AllCapabilities order.
func (r Role) Capabilities() []Capability {
	var out []Capability
	for _, c := range AllCapabilities {
		if r.Can(c) {
			out = append(out, c)
		}
	}
	return out
}
