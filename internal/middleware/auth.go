package middleware

import (
	"strings"

	"portal/internal/apperr"
	"portal/internal/rbac"
	"portal/internal/security"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	principalKey = "principal"
	tokenErrKey  = "token_error"
)

var anyRole = rbac.NewSet(rbac.AllRoles...)

// PrincipalFrom returns the principal resolved for this request, or nil for anonymous callers.
func PrincipalFrom(c *gin.Context) *rbac.Principal {
	if v, ok := c.Get(principalKey); ok {
		if p, ok := v.(*rbac.Principal); ok {
			return p
		}
	}
	return nil
}

// WithPrincipal attaches p to the request context.
func WithPrincipal(c *gin.Context, p *rbac.Principal) {
	c.Set(principalKey, p)
}

func abort(c *gin.Context, err error) {
	c.Error(err)
	c.Abort()
}

// Authenticate resolves an optional principal from "Authorization: Bearer <token>".
// A missing header leaves the request anonymous. A present but invalid token also leaves it
// anonymous and is remembered, so routes that read the principal can reject it while public
// routes (login, logout, refresh, contact) stay reachable with a stale header.
func Authenticate(tokens *security.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			c.Set(tokenErrKey, apperr.Unauthenticated("Invalid authorization format. Expected 'Bearer <token>'"))
			c.Next()
			return
		}

		p, err := tokens.ParseAccess(strings.TrimSpace(raw))
		if err != nil {
			c.Set(tokenErrKey, apperr.Unauthenticated("Invalid token"))
			c.Next()
			return
		}

		WithPrincipal(c, p)
		c.Next()
	}
}

func tokenError(c *gin.Context) error {
	if v, ok := c.Get(tokenErrKey); ok {
		if err, ok := v.(error); ok {
			return err
		}
	}
	return nil
}

// RejectInvalidToken fails requests that sent an Authorization header Authenticate could not accept.
// Tiered list routes use it so a bad token is reported instead of silently served the anonymous view.
func RejectInvalidToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := tokenError(c); err != nil {
			abort(c, err)
			return
		}
		c.Next()
	}
}

// RequireAuth rejects anonymous callers.
func RequireAuth() gin.HandlerFunc {
	return RequireRole(anyRole)
}

// RequireRole lets the request through only when the principal's role is in allowed.
func RequireRole(allowed rbac.Set) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d := rbac.Authorize(PrincipalFrom(c), allowed); !d.Allowed {
			if err := tokenError(c); err != nil {
				abort(c, err)
				return
			}
			abort(c, d.Err())
			return
		}
		c.Next()
	}
}

// RequireOwnerOrAdmin lets admins through, and other callers only when the path parameter is their id.
// A malformed id never matches an owner.
func RequireOwnerOrAdmin(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		owner, err := uuid.Parse(c.Param(param))
		if err != nil {
			owner = uuid.Nil
		}
		if d := rbac.AuthorizeOwnerOrAdmin(PrincipalFrom(c), owner); !d.Allowed {
			if err := tokenError(c); err != nil {
				abort(c, err)
				return
			}
			abort(c, d.Err())
			return
		}
		c.Next()
	}
}
