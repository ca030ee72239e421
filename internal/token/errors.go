package token

import "errors"

// Verification failures, distinguishable with errors.Is. Store failures are
// not in this list: they are wrapped and propagated as-is, so callers can
// tell a bad credential from unavailable infrastructure.
var (
	// ErrTokenExpired: the token's validity window has passed. The client
	// should re-authenticate or rotate its refresh token.
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenInvalid: malformed token, bad signature, or issuer/audience
	// mismatch. Never recoverable.
	ErrTokenInvalid = errors.New("token invalid")

	// ErrTokenRevoked: the token's jti was individually revoked.
	ErrTokenRevoked = errors.New("token revoked")

	// ErrTokenReused: a refresh token that was already consumed by rotation
	// (or logout) was presented again. This is the theft-suspicion signal;
	// depending on policy the whole family may already have been revoked by
	// the time the caller sees it.
	ErrTokenReused = errors.New("refresh token reused")

	// ErrFamilyRevoked: the token's whole rotation family was revoked. The
	// session lineage is dead; the client must log in again.
	ErrFamilyRevoked = errors.New("token family revoked")

	// ErrNoSigningKey: the codec was built for verification only.
	ErrNoSigningKey = errors.New("no signing key configured")
)
