package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/brightclass/authcore/internal/revocation"
)

// TokenPair bundles a short-lived access token and a long-lived refresh
// token, as returned by login and rotation.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// ServiceOptions configures token lifetimes and rotation policy.
type ServiceOptions struct {
	// AccessTTL is the access token lifetime. Defaults to one hour.
	AccessTTL time.Duration

	// RefreshTTL is the refresh token lifetime. Defaults to seven days.
	RefreshTTL time.Duration

	// RevokeFamilyOnReuse controls whether Rotate escalates a reused
	// (already consumed) refresh token to a whole-family revocation.
	// Deployments that prefer to only alert can turn this off and act on
	// ErrTokenReused themselves. Defaults to true via NewService.
	RevokeFamilyOnReuse bool
}

// Service implements issuance, verification, rotation, and revocation over
// a Codec and a revocation.Store. It is stateless: every operation is a
// function of its inputs plus store calls, so a single instance is safe
// for any number of concurrent requests.
//
// Two concurrent rotations of the same refresh token are an accepted race:
// both can pass verification before either revokes the old jti, yielding
// two live successors in one family. A well-behaved client presents each
// refresh token once, and the next reuse of the older chain still trips
// theft detection.
type Service struct {
	codec               *Codec
	store               revocation.Store
	accessTTL           time.Duration
	refreshTTL          time.Duration
	revokeFamilyOnReuse bool
}

// NewService constructs a Service. Dependencies are explicit: the codec
// carries the key material, the store carries revocation state.
func NewService(codec *Codec, store revocation.Store, opts ServiceOptions) *Service {
	accessTTL := opts.AccessTTL
	if accessTTL == 0 {
		accessTTL = time.Hour
	}
	refreshTTL := opts.RefreshTTL
	if refreshTTL == 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &Service{
		codec:               codec,
		store:               store,
		accessTTL:           accessTTL,
		refreshTTL:          refreshTTL,
		revokeFamilyOnReuse: opts.RevokeFamilyOnReuse,
	}
}

// IssueAccessToken signs a short-lived bearer token for the identity.
// Access tokens carry no family and are never rotated; they expire or get
// individually revoked.
func (s *Service) IssueAccessToken(id Identity) (string, error) {
	return s.codec.Sign(s.newClaims(id, s.accessTTL, ""))
}

// IssueRefreshToken signs a long-lived refresh token. An empty family
// starts a new rotation family (login); a non-empty one extends an
// existing chain (rotation).
func (s *Service) IssueRefreshToken(id Identity, family string) (string, error) {
	if family == "" {
		family = uuid.NewString()
	}
	return s.codec.Sign(s.newClaims(id, s.refreshTTL, family))
}

// IssuePair mints an access/refresh pair in a fresh family. This is the
// login-success path.
func (s *Service) IssuePair(id Identity) (*TokenPair, error) {
	access, err := s.IssueAccessToken(id)
	if err != nil {
		return nil, err
	}
	refresh, err := s.IssueRefreshToken(id, "")
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// VerifyAccessToken runs codec verification and then the individual
// revocation check. A token carrying a family is rejected: refresh tokens
// are not bearer credentials for API calls.
func (s *Service) VerifyAccessToken(ctx context.Context, tokenString string) (*Claims, error) {
	claims, err := s.codec.Verify(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.IsRefresh() {
		return nil, fmt.Errorf("%w: refresh token presented as access token", ErrTokenInvalid)
	}
	revoked, err := s.store.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("revocation check: %w", err)
	}
	if revoked {
		return nil, ErrTokenRevoked
	}
	return claims, nil
}

// VerifyRefreshToken runs codec verification plus the family and
// individual revocation checks. A revoked family yields ErrFamilyRevoked;
// a consumed jti yields the ErrTokenReused theft signal.
func (s *Service) VerifyRefreshToken(ctx context.Context, tokenString string) (*Claims, error) {
	claims, err := s.codec.Verify(tokenString)
	if err != nil {
		return nil, err
	}
	if err := s.checkRefreshRevocation(ctx, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// Rotate consumes oldToken and issues its successors: a fresh access token
// and a refresh token in the same family, both minted from the old token's
// identity claims. The old jti is revoked for its remaining validity
// before the successors are signed, so within this call's flow there is no
// window where predecessor and successor are both live.
//
// If oldToken was already consumed, the reuse is treated as suspected
// theft: under the default policy the whole family is revoked before
// ErrTokenReused is returned, invalidating every outstanding descendant.
func (s *Service) Rotate(ctx context.Context, oldToken string) (*TokenPair, *Claims, error) {
	claims, err := s.codec.Verify(oldToken)
	if err != nil {
		return nil, nil, err
	}
	if err := s.checkRefreshRevocation(ctx, claims); err != nil {
		if errors.Is(err, ErrTokenReused) && s.revokeFamilyOnReuse {
			if revErr := s.store.RevokeFamily(ctx, claims.Family, s.refreshTTL); revErr != nil {
				return nil, nil, fmt.Errorf("family revocation: %w", revErr)
			}
		}
		return nil, nil, err
	}

	if err := s.store.Revoke(ctx, claims.ID, time.Until(claims.ExpiresAt.Time)); err != nil {
		return nil, nil, fmt.Errorf("consuming refresh token: %w", err)
	}

	id := claims.Identity()
	access, err := s.IssueAccessToken(id)
	if err != nil {
		return nil, nil, err
	}
	refresh, err := s.IssueRefreshToken(id, claims.Family)
	if err != nil {
		return nil, nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, claims, nil
}

// RevokeToken revokes exactly the presented token for its remaining
// validity. This is the logout path: the family stays alive so other
// devices keep their sessions. An already-expired token is a no-op.
func (s *Service) RevokeToken(ctx context.Context, tokenString string) error {
	claims, err := s.codec.Verify(tokenString)
	if err != nil {
		if errors.Is(err, ErrTokenExpired) {
			return nil
		}
		return err
	}
	if err := s.store.Revoke(ctx, claims.ID, time.Until(claims.ExpiresAt.Time)); err != nil {
		return fmt.Errorf("revoking token: %w", err)
	}
	return nil
}

// RevokeFamilies revokes every listed rotation family for the full refresh
// lifetime, covering the longest-lived token that could still be
// outstanding. Used on password change and "log out everywhere".
func (s *Service) RevokeFamilies(ctx context.Context, families ...string) error {
	for _, family := range families {
		if family == "" {
			continue
		}
		if err := s.store.RevokeFamily(ctx, family, s.refreshTTL); err != nil {
			return fmt.Errorf("revoking family %s: %w", family, err)
		}
	}
	return nil
}

// checkRefreshRevocation applies the refresh-specific store checks to
// already codec-verified claims. Family first: a token from a killed
// family always reports ErrFamilyRevoked, even if its own jti was also
// consumed along the way.
func (s *Service) checkRefreshRevocation(ctx context.Context, claims *Claims) error {
	if !claims.IsRefresh() {
		return fmt.Errorf("%w: refresh token without family", ErrTokenInvalid)
	}
	famRevoked, err := s.store.IsFamilyRevoked(ctx, claims.Family)
	if err != nil {
		return fmt.Errorf("revocation check: %w", err)
	}
	if famRevoked {
		return ErrFamilyRevoked
	}
	revoked, err := s.store.IsRevoked(ctx, claims.ID)
	if err != nil {
		return fmt.Errorf("revocation check: %w", err)
	}
	if revoked {
		return ErrTokenReused
	}
	return nil
}

func (s *Service) newClaims(id Identity, ttl time.Duration, family string) *Claims {
	now := time.Now()
	return &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			Issuer:    s.codec.issuer,
			Audience:  jwt.ClaimStrings{s.codec.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
		TenantID: id.TenantID,
		Role:     id.Role,
		Plan:     id.Plan,
		Email:    id.Email,
		Name:     id.Name,
		Family:   family,
	}
}
