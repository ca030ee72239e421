package token

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/brightclass/authcore/internal/revocation"
)

// --- helpers ---

func newTestService(t *testing.T, store revocation.Store, opts ServiceOptions) *Service {
	t.Helper()
	if store == nil {
		store = revocation.NewMemoryStore()
	}
	codec := NewHS256Codec([]byte("test-secret"), testIssuer, testAudience, 0)
	return NewService(codec, store, opts)
}

func testIdentity() Identity {
	return Identity{
		UserID:   "u1",
		TenantID: "t1",
		Role:     RoleLearner,
		Plan:     PlanFree,
		Email:    "learner@example.com",
		Name:     "Lea Learner",
	}
}

var errStoreDown = errors.New("store down")

// failingStore errors on every operation, to exercise fail-closed paths.
type failingStore struct{}

func (failingStore) IsRevoked(context.Context, string) (bool, error) { return false, errStoreDown }
func (failingStore) Revoke(context.Context, string, time.Duration) error {
	return errStoreDown
}
func (failingStore) IsFamilyRevoked(context.Context, string) (bool, error) {
	return false, errStoreDown
}
func (failingStore) RevokeFamily(context.Context, string, time.Duration) error {
	return errStoreDown
}

// --- issuance ---

func TestIssuePair_FreshFamily(t *testing.T) {
	t.Parallel()

	s := newTestService(t, nil, ServiceOptions{RevokeFamilyOnReuse: true})
	ctx := context.Background()

	pair, err := s.IssuePair(testIdentity())
	if err != nil {
		t.Fatalf("IssuePair error: %v", err)
	}

	access, err := s.VerifyAccessToken(ctx, pair.AccessToken)
	if err != nil {
		t.Fatalf("VerifyAccessToken error: %v", err)
	}
	if access.IsRefresh() {
		t.Fatalf("access token must not carry a family, got %q", access.Family)
	}

	refresh, err := s.VerifyRefreshToken(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("VerifyRefreshToken error: %v", err)
	}
	if !refresh.IsRefresh() {
		t.Fatal("refresh token must carry a family")
	}
	if refresh.ID == access.ID {
		t.Fatal("access and refresh tokens must have distinct jtis")
	}
	if refresh.Subject != "u1" || refresh.TenantID != "t1" || refresh.Role != RoleLearner {
		t.Fatalf("identity mismatch in refresh claims: %+v", refresh)
	}
}

func TestIssueRefreshToken_KeepsGivenFamily(t *testing.T) {
	t.Parallel()

	s := newTestService(t, nil, ServiceOptions{})
	ctx := context.Background()

	tok, err := s.IssueRefreshToken(testIdentity(), "family-42")
	if err != nil {
		t.Fatalf("IssueRefreshToken error: %v", err)
	}

	claims, err := s.VerifyRefreshToken(ctx, tok)
	if err != nil {
		t.Fatalf("VerifyRefreshToken error: %v", err)
	}
	if claims.Family != "family-42" {
		t.Fatalf("family mismatch: got %q want %q", claims.Family, "family-42")
	}
}

// --- cross-type checks ---

func TestVerifyAccessToken_RejectsRefreshToken(t *testing.T) {
	t.Parallel()

	s := newTestService(t, nil, ServiceOptions{})
	ctx := context.Background()

	refresh, err := s.IssueRefreshToken(testIdentity(), "")
	if err != nil {
		t.Fatalf("IssueRefreshToken error: %v", err)
	}

	_, err = s.VerifyAccessToken(ctx, refresh)
	if !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestVerifyRefreshToken_RejectsAccessToken(t *testing.T) {
	t.Parallel()

	s := newTestService(t, nil, ServiceOptions{})
	ctx := context.Background()

	access, err := s.IssueAccessToken(testIdentity())
	if err != nil {
		t.Fatalf("IssueAccessToken error: %v", err)
	}

	_, err = s.VerifyRefreshToken(ctx, access)
	if !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

// --- rotation ---

func TestRotate_SingleUse(t *testing.T) {
	t.Parallel()

	s := newTestService(t, nil, ServiceOptions{RevokeFamilyOnReuse: true})
	ctx := context.Background()

	r0, err := s.IssueRefreshToken(testIdentity(), "")
	if err != nil {
		t.Fatalf("IssueRefreshToken error: %v", err)
	}
	c0, err := s.VerifyRefreshToken(ctx, r0)
	if err != nil {
		t.Fatalf("VerifyRefreshToken error: %v", err)
	}

	pair, old, err := s.Rotate(ctx, r0)
	if err != nil {
		t.Fatalf("Rotate error: %v", err)
	}
	if old.ID != c0.ID {
		t.Fatalf("Rotate must return the consumed token's claims")
	}

	c1, err := s.VerifyRefreshToken(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("successor verification error: %v", err)
	}
	if c1.Family != c0.Family {
		t.Fatalf("rotation changed family: got %q want %q", c1.Family, c0.Family)
	}
	if c1.ID == c0.ID {
		t.Fatal("rotation must mint a fresh jti")
	}

	// Second use of the consumed token is the theft signal.
	_, _, err = s.Rotate(ctx, r0)
	if !errors.Is(err, ErrTokenReused) {
		t.Fatalf("expected ErrTokenReused on second rotation, got %v", err)
	}
}

func TestRotate_TheftPropagation(t *testing.T) {
	t.Parallel()

	s := newTestService(t, nil, ServiceOptions{RevokeFamilyOnReuse: true})
	ctx := context.Background()

	// Chain: r0 -> r1 -> r2.
	r0, err := s.IssueRefreshToken(testIdentity(), "")
	if err != nil {
		t.Fatalf("IssueRefreshToken error: %v", err)
	}
	pair1, _, err := s.Rotate(ctx, r0)
	if err != nil {
		t.Fatalf("first rotation error: %v", err)
	}
	pair2, _, err := s.Rotate(ctx, pair1.RefreshToken)
	if err != nil {
		t.Fatalf("second rotation error: %v", err)
	}

	// A stolen/replayed copy of r0 comes back.
	_, _, err = s.Rotate(ctx, r0)
	if !errors.Is(err, ErrTokenReused) {
		t.Fatalf("expected ErrTokenReused, got %v", err)
	}

	// The newest token's own jti was never individually revoked, but the
	// whole family is dead now.
	_, err = s.VerifyRefreshToken(ctx, pair2.RefreshToken)
	if !errors.Is(err, ErrFamilyRevoked) {
		t.Fatalf("expected ErrFamilyRevoked for newest token, got %v", err)
	}
}

func TestRotate_NoEscalationWhenPolicyOff(t *testing.T) {
	t.Parallel()

	s := newTestService(t, nil, ServiceOptions{RevokeFamilyOnReuse: false})
	ctx := context.Background()

	r0, err := s.IssueRefreshToken(testIdentity(), "")
	if err != nil {
		t.Fatalf("IssueRefreshToken error: %v", err)
	}
	pair1, _, err := s.Rotate(ctx, r0)
	if err != nil {
		t.Fatalf("rotation error: %v", err)
	}

	_, _, err = s.Rotate(ctx, r0)
	if !errors.Is(err, ErrTokenReused) {
		t.Fatalf("expected ErrTokenReused, got %v", err)
	}

	// Policy off: the reuse is reported but the family survives.
	if _, err := s.VerifyRefreshToken(ctx, pair1.RefreshToken); err != nil {
		t.Fatalf("successor must stay valid with escalation off, got %v", err)
	}
}

// --- revocation ---

func TestVerifyAccessToken_Revoked(t *testing.T) {
	t.Parallel()

	s := newTestService(t, nil, ServiceOptions{})
	ctx := context.Background()

	access, err := s.IssueAccessToken(testIdentity())
	if err != nil {
		t.Fatalf("IssueAccessToken error: %v", err)
	}

	if err := s.RevokeToken(ctx, access); err != nil {
		t.Fatalf("RevokeToken error: %v", err)
	}

	_, err = s.VerifyAccessToken(ctx, access)
	if !errors.Is(err, ErrTokenRevoked) {
		t.Fatalf("expected ErrTokenRevoked, got %v", err)
	}
}

func TestRevokeToken_LeavesFamilyAlive(t *testing.T) {
	t.Parallel()

	store := revocation.NewMemoryStore()
	s := newTestService(t, store, ServiceOptions{RevokeFamilyOnReuse: true})
	ctx := context.Background()

	r0, err := s.IssueRefreshToken(testIdentity(), "")
	if err != nil {
		t.Fatalf("IssueRefreshToken error: %v", err)
	}
	claims, err := s.VerifyRefreshToken(ctx, r0)
	if err != nil {
		t.Fatalf("VerifyRefreshToken error: %v", err)
	}

	// Logout revokes exactly the presented token.
	if err := s.RevokeToken(ctx, r0); err != nil {
		t.Fatalf("RevokeToken error: %v", err)
	}

	revoked, err := store.IsFamilyRevoked(ctx, claims.Family)
	if err != nil {
		t.Fatalf("IsFamilyRevoked error: %v", err)
	}
	if revoked {
		t.Fatal("logout must not revoke the whole family")
	}

	_, err = s.VerifyRefreshToken(ctx, r0)
	if !errors.Is(err, ErrTokenReused) {
		t.Fatalf("expected ErrTokenReused for logged-out token, got %v", err)
	}
}

func TestRevokeToken_ExpiredIsNoop(t *testing.T) {
	t.Parallel()

	codec := NewHS256Codec([]byte("test-secret"), testIssuer, testAudience, 0)
	s := NewService(codec, revocation.NewMemoryStore(), ServiceOptions{})
	ctx := context.Background()

	expired, err := codec.Sign(newTestClaims(-1*time.Minute, ""))
	if err != nil {
		t.Fatalf("Sign error: %v", err)
	}

	if err := s.RevokeToken(ctx, expired); err != nil {
		t.Fatalf("revoking an expired token must be a no-op, got %v", err)
	}
}

func TestRevokeFamilies(t *testing.T) {
	t.Parallel()

	s := newTestService(t, nil, ServiceOptions{})
	ctx := context.Background()

	r1, err := s.IssueRefreshToken(testIdentity(), "fam-1")
	if err != nil {
		t.Fatalf("IssueRefreshToken error: %v", err)
	}
	r2, err := s.IssueRefreshToken(testIdentity(), "fam-2")
	if err != nil {
		t.Fatalf("IssueRefreshToken error: %v", err)
	}

	// Empty ids are skipped, the rest are revoked.
	if err := s.RevokeFamilies(ctx, "fam-1", "", "fam-2"); err != nil {
		t.Fatalf("RevokeFamilies error: %v", err)
	}

	for _, tok := range []string{r1, r2} {
		_, err := s.VerifyRefreshToken(ctx, tok)
		if !errors.Is(err, ErrFamilyRevoked) {
			t.Fatalf("expected ErrFamilyRevoked, got %v", err)
		}
	}
}

// --- fail closed ---

func TestVerify_FailsClosedOnStoreError(t *testing.T) {
	t.Parallel()

	s := newTestService(t, failingStore{}, ServiceOptions{})
	ctx := context.Background()

	access, err := s.IssueAccessToken(testIdentity())
	if err != nil {
		t.Fatalf("IssueAccessToken error: %v", err)
	}
	refresh, err := s.IssueRefreshToken(testIdentity(), "")
	if err != nil {
		t.Fatalf("IssueRefreshToken error: %v", err)
	}

	_, err = s.VerifyAccessToken(ctx, access)
	if !errors.Is(err, errStoreDown) {
		t.Fatalf("store error must propagate from access verification, got %v", err)
	}

	_, err = s.VerifyRefreshToken(ctx, refresh)
	if !errors.Is(err, errStoreDown) {
		t.Fatalf("store error must propagate from refresh verification, got %v", err)
	}

	_, _, err = s.Rotate(ctx, refresh)
	if !errors.Is(err, errStoreDown) {
		t.Fatalf("store error must propagate from rotation, got %v", err)
	}
}

func TestService_DefaultTTLs(t *testing.T) {
	t.Parallel()

	s := newTestService(t, nil, ServiceOptions{})

	if s.accessTTL != time.Hour {
		t.Fatalf("default access TTL: got %v want %v", s.accessTTL, time.Hour)
	}
	if s.refreshTTL != 7*24*time.Hour {
		t.Fatalf("default refresh TTL: got %v want %v", s.refreshTTL, 7*24*time.Hour)
	}
}
