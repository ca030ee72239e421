// Package revocation defines the revocation store contract used by the
// token service, plus three implementations: an in-process map for tests
// and single-node setups, a Redis store for multi-node production, and a
// Postgres store for deployments that already run the platform database.
//
// Entries carry a TTL equal to the remaining validity of the token (or
// family) they revoke, so storage is bounded: a record disappears at the
// moment the token it blocks would have expired anyway.
package revocation

import (
	"context"
	"time"
)

// Store is the four-operation contract. All operations are idempotent and
// safe under concurrent callers.
//
// A ttl <= 0 means the token is already expired: Revoke and RevokeFamily
// treat it as a no-op, not an error, to keep callers simple. Repeated
// revocations of the same key simply reset the TTL.
//
// Errors must surface to the caller. Implementations never report "not
// revoked" on a failed lookup; the token service fails closed on any error
// from here.
type Store interface {
	// IsRevoked reports whether the token id has been revoked.
	IsRevoked(ctx context.Context, jti string) (bool, error)

	// Revoke marks the token id revoked for the next ttl.
	Revoke(ctx context.Context, jti string, ttl time.Duration) error

	// IsFamilyRevoked reports whether the whole rotation family has been
	// revoked.
	IsFamilyRevoked(ctx context.Context, family string) (bool, error)

	// RevokeFamily marks every token of the rotation family revoked for
	// the next ttl.
	RevokeFamily(ctx context.Context, family string, ttl time.Duration) error
}
