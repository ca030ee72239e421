package authz

import (
	"errors"
	"testing"

	"github.com/brightclass/authcore/internal/token"
)

func claimsFor(role token.Role, tenantID string) *token.Claims {
	return &token.Claims{TenantID: tenantID, Role: role}
}

func TestRequireRole_Allowed(t *testing.T) {
	t.Parallel()

	c := claimsFor(token.RoleEducator, "t1")
	if err := RequireRole(c, token.RoleEducator, token.RoleAdmin); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRequireRole_Denied(t *testing.T) {
	t.Parallel()

	c := claimsFor(token.RoleLearner, "t1")
	err := RequireRole(c, token.RoleEducator, token.RoleAdmin)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestRequireTenant_SameTenant(t *testing.T) {
	t.Parallel()

	c := claimsFor(token.RoleLearner, "t1")
	if err := RequireTenant(c, "t1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRequireTenant_CrossTenantDenied(t *testing.T) {
	t.Parallel()

	c := claimsFor(token.RoleEducator, "t1")
	err := RequireTenant(c, "t2")
	if !errors.Is(err, ErrTenantMismatch) {
		t.Fatalf("expected ErrTenantMismatch, got %v", err)
	}
	// Tenant mismatch is still an authorization denial.
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("ErrTenantMismatch must wrap ErrForbidden, got %v", err)
	}
}

func TestRequireTenant_AdminCrossesTenants(t *testing.T) {
	t.Parallel()

	c := claimsFor(token.RoleAdmin, "t1")
	if err := RequireTenant(c, "t2"); err != nil {
		t.Fatalf("admin must cross tenants, got %v", err)
	}
}
