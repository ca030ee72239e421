// Package authz implements authorization checks over verified claims:
// role-based access and tenant isolation. It consumes the identity the
// authentication layer attached to the request; it never touches tokens.
package authz

import (
	"errors"
	"fmt"

	"github.com/brightclass/authcore/internal/token"
)

var (
	// ErrForbidden: the caller is authenticated but lacks permission.
	// Distinct from any authentication failure.
	ErrForbidden = errors.New("forbidden")

	// ErrTenantMismatch: the caller tried to act in another tenant without
	// elevated privilege. Wraps ErrForbidden.
	ErrTenantMismatch = fmt.Errorf("%w: tenant mismatch", ErrForbidden)
)

// RequireRole returns nil when the claims carry one of the allowed roles.
func RequireRole(c *token.Claims, roles ...token.Role) error {
	for _, r := range roles {
		if c.Role == r {
			return nil
		}
	}
	return fmt.Errorf("%w: role %q", ErrForbidden, c.Role)
}

// RequireTenant returns nil when the claims belong to tenantID. Admins are
// the elevated privilege and may cross tenant boundaries.
func RequireTenant(c *token.Claims, tenantID string) error {
	if c.Role == token.RoleAdmin {
		return nil
	}
	if c.TenantID != tenantID {
		return ErrTenantMismatch
	}
	return nil
}
