package rbac

import (
	"testing"

	"github.com/google/uuid"

	"portal/internal/apperr"
)

func TestAuthorizeAnonymousIsUnauthenticated(t *testing.T) {
	d := Authorize(nil, ProductManagers)
	if d.Allowed || d.Reason != ReasonUnauthenticated {
		t.Fatalf("expected unauthenticated denial, got %+v", d)
	}
	if !apperr.IsKind(d.Err(), apperr.KindUnauthenticated) {
		t.Fatalf("expected unauthenticated error, got %v", d.Err())
	}
}

func TestAuthorizeRoleMembership(t *testing.T) {
	cases := []struct {
		role    Role
		set     Set
		allowed bool
	}{
		{RoleAdmin, UserAdmins, true},
		{RoleHR, UserAdmins, false},
		{RoleSales, ProductManagers, true},
		{RoleHR, ProductManagers, false},
		{RoleHR, BulletinManagers, true},
		{RoleSales, BulletinManagers, false},
		{RoleHR, ContactManagers, true},
		{RoleCustomer, ContactManagers, false},
		{RoleUser, ProductManagers, false},
	}
	for _, tc := range cases {
		d := Authorize(&Principal{UserID: uuid.New(), Role: tc.role}, tc.set)
		if d.Allowed != tc.allowed {
			t.Fatalf("role %s on %v: expected allowed=%v, got %+v", tc.role, tc.set.Roles(), tc.allowed, d)
		}
		if !tc.allowed && d.Reason != ReasonForbidden {
			t.Fatalf("role %s: expected forbidden reason, got %s", tc.role, d.Reason)
		}
		if tc.allowed && d.Err() != nil {
			t.Fatalf("role %s: expected nil error on allow", tc.role)
		}
	}
}

func TestAuthorizeOwnerOrAdmin(t *testing.T) {
	owner := uuid.New()
	other := uuid.New()

	if d := AuthorizeOwnerOrAdmin(nil, owner); d.Reason != ReasonUnauthenticated {
		t.Fatalf("expected unauthenticated, got %+v", d)
	}
	if d := AuthorizeOwnerOrAdmin(&Principal{UserID: owner, Role: RoleCustomer}, owner); !d.Allowed {
		t.Fatal("owner must be allowed")
	}
	if d := AuthorizeOwnerOrAdmin(&Principal{UserID: other, Role: RoleAdmin}, owner); !d.Allowed {
		t.Fatal("admin must be allowed")
	}
	d := AuthorizeOwnerOrAdmin(&Principal{UserID: other, Role: RoleHR}, owner)
	if d.Allowed || !apperr.IsKind(d.Err(), apperr.KindForbidden) {
		t.Fatalf("expected forbidden for non-owner, got %+v", d)
	}
}

func TestRegistryResolveDefaultsToCustomer(t *testing.T) {
	reg := NewRegistry()
	if got := reg.Resolve(""); got != RoleCustomer {
		t.Fatalf("expected customer_user, got %s", got)
	}
	if got := reg.Resolve("superuser"); got != RoleCustomer {
		t.Fatalf("expected customer_user for unknown role, got %s", got)
	}
	if got := reg.Resolve(" sales_user "); got != RoleSales {
		t.Fatalf("expected sales_user, got %s", got)
	}
	if _, ok := reg.Parse("Admin"); ok {
		t.Fatal("role names are case-sensitive")
	}
}

func TestRegistryPermissions(t *testing.T) {
	reg := NewRegistry()
	if !reg.Can(RoleAdmin, PermUsersManage) {
		t.Fatal("admin must manage users")
	}
	if reg.Can(RoleSales, PermBulletinsWrite) {
		t.Fatal("sales must not write bulletins")
	}
	if !reg.Can(RoleCustomer, PermCatalogReadFull) {
		t.Fatal("any authenticated role reads the full catalog")
	}
	perms := reg.Permissions(RoleHR)
	perms[0] = "tampered"
	if reg.Permissions(RoleHR)[0] == "tampered" {
		t.Fatal("Permissions must return a copy")
	}
	for _, r := range AllRoles {
		if reg.Description(r) == "" {
			t.Fatalf("missing description for %s", r)
		}
	}
}
