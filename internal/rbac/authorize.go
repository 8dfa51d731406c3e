package rbac

import (
	"github.com/google/uuid"

	"portal/internal/apperr"
)

// Reason explains why an authorization check denied the request.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonUnauthenticated
	ReasonForbidden
)

func (r Reason) String() string {
	switch r {
	case ReasonUnauthenticated:
		return "unauthenticated"
	case ReasonForbidden:
		return "forbidden"
	default:
		return "none"
	}
}

// Decision is the outcome of an authorization check.
type Decision struct {
	Allowed bool
	Reason  Reason
}

var (
	allow               = Decision{Allowed: true}
	denyUnauthenticated = Decision{Reason: ReasonUnauthenticated}
	denyForbidden       = Decision{Reason: ReasonForbidden}
)

// Authorize allows the principal when it holds one of the required roles.
// Anonymous callers are always denied as unauthenticated.
func Authorize(p *Principal, required Set) Decision {
	if p == nil {
		return denyUnauthenticated
	}
	if !required.Has(p.Role) {
		return denyForbidden
	}
	return allow
}

// AuthorizeOwnerOrAdmin allows admins and the owner of the resource.
func AuthorizeOwnerOrAdmin(p *Principal, ownerID uuid.UUID) Decision {
	if p == nil {
		return denyUnauthenticated
	}
	if p.Role == RoleAdmin || p.UserID == ownerID {
		return allow
	}
	return denyForbidden
}

// Err converts a denial into the matching application error, or nil when allowed.
func (d Decision) Err() error {
	switch {
	case d.Allowed:
		return nil
	case d.Reason == ReasonUnauthenticated:
		return apperr.Unauthenticated("Unauthorized")
	default:
		return apperr.Forbidden("Forbidden: You do not have permission to access this resource")
	}
}
