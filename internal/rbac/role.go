package rbac

import (
	"sort"

	"github.com/google/uuid"
)

// Role is the name of one of the fixed portal roles.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleHR       Role = "hr_user"
	RoleSales    Role = "sales_user"
	RoleUser     Role = "user"
	RoleCustomer Role = "customer_user"
)

// DefaultRole is assigned when a user has no role, or when the stored role cannot be resolved.
const DefaultRole = RoleCustomer

// AllRoles lists the fixed role set in seeding order.
var AllRoles = []Role{RoleAdmin, RoleHR, RoleSales, RoleUser, RoleCustomer}

func (r Role) String() string { return string(r) }

// Valid reports whether r is one of the fixed roles.
func (r Role) Valid() bool {
	for _, known := range AllRoles {
		if r == known {
			return true
		}
	}
	return false
}

// Set is an immutable set of role names used to gate an operation.
type Set map[Role]struct{}

// NewSet builds a Set from the given roles.
func NewSet(roles ...Role) Set {
	s := make(Set, len(roles))
	for _, r := range roles {
		s[r] = struct{}{}
	}
	return s
}

// Has reports whether r is a member of the set.
func (s Set) Has(r Role) bool {
	_, ok := s[r]
	return ok
}

// Roles returns the members sorted by name.
func (s Set) Roles() []Role {
	out := make([]Role, 0, len(s))
	for r := range s {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Role sets gating each resource domain.
var (
	UserAdmins       = NewSet(RoleAdmin)
	ProductManagers  = NewSet(RoleAdmin, RoleSales)
	BulletinManagers = NewSet(RoleAdmin, RoleHR)
	ContactManagers  = NewSet(RoleAdmin, RoleHR)
)

// Principal is the authenticated identity attached to a request.
// A nil *Principal means the request is anonymous.
type Principal struct {
	UserID uuid.UUID
	Role   Role
}

// IsAdmin reports whether the principal holds the admin role.
func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}
