package rbac

import "strings"

// Permission codes granted implicitly by role membership.
const (
	PermUsersManage     = "users.manage"
	PermProductsWrite   = "products.write"
	PermBulletinsWrite  = "bulletins.write"
	PermContactManage   = "contact.manage"
	PermCatalogReadFull = "catalog.read_full"
	PermProfileManage   = "profile.manage"
)

// Registry maps role names to their descriptions and implicit permission sets.
type Registry struct {
	descriptions map[Role]string
	permissions  map[Role][]string
}

// NewRegistry returns the registry for the fixed portal roles.
func NewRegistry() *Registry {
	base := []string{PermCatalogReadFull, PermProfileManage}
	return &Registry{
		descriptions: map[Role]string{
			RoleAdmin:    "Administrator with full access",
			RoleHR:       "HR Manager",
			RoleSales:    "Sales Manager",
			RoleUser:     "Regular User",
			RoleCustomer: "Customer",
		},
		permissions: map[Role][]string{
			RoleAdmin: append([]string{
				PermUsersManage, PermProductsWrite, PermBulletinsWrite, PermContactManage,
			}, base...),
			RoleHR:       append([]string{PermBulletinsWrite, PermContactManage}, base...),
			RoleSales:    append([]string{PermProductsWrite}, base...),
			RoleUser:     base,
			RoleCustomer: base,
		},
	}
}

// Parse validates a role name supplied by a client. Names are matched exactly after trimming.
func (r *Registry) Parse(name string) (Role, bool) {
	role := Role(strings.TrimSpace(name))
	if _, ok := r.descriptions[role]; !ok {
		return "", false
	}
	return role, true
}

// Resolve returns the effective role for a stored role name, falling back to DefaultRole.
func (r *Registry) Resolve(name string) Role {
	if role, ok := r.Parse(name); ok {
		return role
	}
	return DefaultRole
}

// Description returns the human readable description of a role.
func (r *Registry) Description(role Role) string {
	return r.descriptions[role]
}

// Permissions returns a copy of the permission codes implied by the role.
func (r *Registry) Permissions(role Role) []string {
	perms := r.permissions[role]
	out := make([]string, len(perms))
	copy(out, perms)
	return out
}

// Can reports whether the role implies the given permission code.
func (r *Registry) Can(role Role, perm string) bool {
	for _, p := range r.permissions[role] {
		if p == perm {
			return true
		}
	}
	return false
}
