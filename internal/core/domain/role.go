package domain

// Role is the coarse identity category of a console user.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleMerchant Role = "merchant"
	RoleCustomer Role = "customer"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleMerchant, RoleCustomer:
		return true
	}
	return false
}

// ParseRole converts a wire value into a Role. Unknown values are returned
// as-is so that the permission lookups below fail closed for them.
func ParseRole(s string) Role {
	return Role(s)
}

// Capability identifies one protectable feature area of the console.
type Capability string

const (
	CapDashboard       Capability = "dashboard"
	CapStores          Capability = "stores"
	CapUsers           Capability = "users"
	CapCategoriesAdmin Capability = "categories-admin"
	CapAnalytics       Capability = "analytics"
	CapSettings        Capability = "settings"
	CapProducts        Capability = "products"
	CapCategories      Capability = "categories"
	CapPromotions      Capability = "promotions"
	CapOrders          Capability = "orders"
	CapInventory       Capability = "inventory"
	CapStoreInfo       Capability = "store-info"
	CapShippingConfig  Capability = "shipping-config"
)

// permissionMatrix lists every role's capabilities explicitly. Order is the
// navigation order; membership is exact-match and flat.
var permissionMatrix = map[Role][]Capability{
	RoleAdmin: {
		CapDashboard,
		CapStores,
		CapUsers,
		CapCategoriesAdmin,
		CapAnalytics,
		CapSettings,
	},
	RoleMerchant: {
		CapDashboard,
		CapProducts,
		CapCategories,
		CapPromotions,
		CapOrders,
		CapInventory,
		CapStoreInfo,
		CapShippingConfig,
		CapAnalytics,
	},
	RoleCustomer: {},
}

// capabilityIndex is built once from permissionMatrix for constant-time lookups.
var capabilityIndex = buildCapabilityIndex()

func buildCapabilityIndex() map[Role]map[Capability]struct{} {
	idx := make(map[Role]map[Capability]struct{}, len(permissionMatrix))
	for role, caps := range permissionMatrix {
		set := make(map[Capability]struct{}, len(caps))
		for _, c := range caps {
			set[c] = struct{}{}
		}
		idx[role] = set
	}
	return idx
}

// storeScoped are the capabilities a merchant may only use while their store
// is active.
var storeScoped = map[Capability]struct{}{
	CapProducts:       {},
	CapCategories:     {},
	CapPromotions:     {},
	CapOrders:         {},
	CapInventory:      {},
	CapShippingConfig: {},
	CapAnalytics:      {},
}

// StoreScoped reports whether c operates on a merchant's store.
func (c Capability) StoreScoped() bool {
	_, ok := storeScoped[c]
	return ok
}

// CapabilitiesFor returns a copy of the ordered capability list for role.
// Unknown roles get an empty list.
func CapabilitiesFor(role Role) []Capability {
	caps := permissionMatrix[role]
	out := make([]Capability, len(caps))
	copy(out, caps)
	return out
}

// CanAccessCMS is the coarse gate evaluated before any capability check.
// Customers are mobile-only and never reach the console.
func CanAccessCMS(role Role) bool {
	return role == RoleAdmin || role == RoleMerchant
}

// HasCapability reports whether role holds capability.
func HasCapability(role Role, capability Capability) bool {
	_, ok := capabilityIndex[role][capability]
	return ok
}

// AllCapabilities returns every capability granted to at least one role, in
// first-seen order (admin first).
func AllCapabilities() []Capability {
	seen := make(map[Capability]struct{})
	var out []Capability
	for _, role := range []Role{RoleAdmin, RoleMerchant, RoleCustomer} {
		for _, c := range permissionMatrix[role] {
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			out = append(out, c)
		}
	}
	return out
}
