// Package token implements the authentication core: the signed claims set,
// a codec for minting and verifying JWTs, and a service that layers
// refresh-token rotation and revocation on top of the codec.
package token

import (
	"github.com/golang-jwt/jwt/v5"
)

// Role is the caller's role within a tenant.
type Role string

const (
	RoleLearner  Role = "learner"
	RoleEducator Role = "educator"
	RoleAdmin    Role = "admin"
)

// Plan is the tenant's subscription tier.
type Plan string

const (
	PlanFree       Plan = "free"
	PlanPremium    Plan = "premium"
	PlanEnterprise Plan = "enterprise"
)

// Claims is the signed token payload. Standard claims (sub, iss, aud, iat,
// exp, jti) live in RegisteredClaims; the rest identify the caller within
// the platform. Family is set if and only if the token is a refresh token:
// it names the rotation chain the token belongs to.
type Claims struct {
	jwt.RegisteredClaims
	TenantID string `json:"tenantId"`
	Role     Role   `json:"role"`
	Plan     Plan   `json:"plan"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Family   string `json:"family,omitempty"`
}

// IsRefresh reports whether the claims describe a refresh token.
func (c *Claims) IsRefresh() bool {
	return c.Family != ""
}

// Identity extracts the identity tuple carried by the claims, suitable for
// minting successor tokens during rotation.
func (c *Claims) Identity() Identity {
	return Identity{
		UserID:   c.Subject,
		TenantID: c.TenantID,
		Role:     c.Role,
		Plan:     c.Plan,
		Email:    c.Email,
		Name:     c.Name,
	}
}

// Identity is the verified identity tuple the service signs tokens for.
// Producing it (checking a password against a stored hash) is the login
// flow's job, outside this package.
type Identity struct {
	UserID   string
	TenantID string
	Role     Role
	Plan     Plan
	Email    string
	Name     string
}
