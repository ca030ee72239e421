package token

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Codec signs and verifies the claims set. It is a pure function pair over
// key material: no revocation state is consulted here, that is the
// Service's job.
//
// Production deployments use RS256 so any number of downstream services can
// verify tokens with the public key while only the issuer can mint them.
// HS256 exists for non-production setups where distributing a key pair is
// not worth the ceremony.
type Codec struct {
	method    jwt.SigningMethod
	signKey   any
	verifyKey any
	issuer    string
	audience  string
	leeway    time.Duration
}

// NewRS256Codec builds an asymmetric codec. priv may be nil for a
// verify-only codec (e.g. a downstream service that never issues tokens);
// Sign then fails with ErrNoSigningKey.
func NewRS256Codec(priv *rsa.PrivateKey, pub *rsa.PublicKey, issuer, audience string, leeway time.Duration) *Codec {
	c := &Codec{
		method:    jwt.SigningMethodRS256,
		verifyKey: pub,
		issuer:    issuer,
		audience:  audience,
		leeway:    leeway,
	}
	if priv != nil {
		c.signKey = priv
	}
	return c
}

// NewHS256Codec builds a symmetric codec sharing one secret for signing and
// verification. Not for production use.
func NewHS256Codec(secret []byte, issuer, audience string, leeway time.Duration) *Codec {
	return &Codec{
		method:    jwt.SigningMethodHS256,
		signKey:   secret,
		verifyKey: secret,
		issuer:    issuer,
		audience:  audience,
		leeway:    leeway,
	}
}

// Sign produces the compact serialized token for the given claims.
func (c *Codec) Sign(claims *Claims) (string, error) {
	if c.signKey == nil {
		return "", ErrNoSigningKey
	}
	tokenString, err := jwt.NewWithClaims(c.method, claims).SignedString(c.signKey)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return tokenString, nil
}

// Verify parses tokenString and checks, short-circuiting on the first
// failure: structure, signature, expiry (with the configured leeway),
// issuer, audience. On success the decoded claims are returned.
func (c *Codec) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) { return c.verifyKey, nil },
		jwt.WithValidMethods([]string{c.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(c.issuer),
		jwt.WithAudience(c.audience),
		jwt.WithLeeway(c.leeway),
	)
	if err != nil {
		return nil, classify(err)
	}
	return claims, nil
}

// classify maps golang-jwt's (possibly joined) errors onto the package
// sentinels in the order the contract checks them, so the most structural
// failure wins when several claims are bad at once.
func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: malformed", ErrTokenInvalid)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return fmt.Errorf("%w: signature", ErrTokenInvalid)
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return fmt.Errorf("%w: issuer mismatch", ErrTokenInvalid)
	case errors.Is(err, jwt.ErrTokenInvalidAudience):
		return fmt.Errorf("%w: audience mismatch", ErrTokenInvalid)
	default:
		return fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
}
