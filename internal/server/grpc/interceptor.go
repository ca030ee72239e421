package grpc

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/brightclass/authcore/internal/authz"
	"github.com/brightclass/authcore/internal/token"
)

type ctxKey string

const claimsKey ctxKey = "claims"

// FromContext returns the verified claims the auth interceptor attached to
// the request context.
func FromContext(ctx context.Context) (*token.Claims, bool) {
	c, ok := ctx.Value(claimsKey).(*token.Claims)
	return c, ok
}

const (
	authorizationHeader = "authorization"
	bearerPrefix        = "bearer "
)

// authInterceptor gates every unary call that is not explicitly exempt:
// it extracts the bearer token from metadata, verifies it through the
// token service, and attaches the verified claims to the context. Audit
// logging and metrics for failures happen here; the token service itself
// only returns typed errors.
func (s *Server) authInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {

	if _, ok := s.exempt[info.FullMethod]; ok {
		return handler(ctx, req)
	}

	accessToken := bearerFromMetadata(ctx)
	if accessToken == "" {
		authFailuresTotal.WithLabelValues("missing").Inc()
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	claims, err := s.tokens.VerifyAccessToken(ctx, accessToken)
	if err != nil {
		return nil, s.authStatus(ctx, info.FullMethod, err)
	}

	ctx = context.WithValue(ctx, claimsKey, claims)

	return handler(ctx, req)
}

// roleInterceptor enforces per-method role requirements over the claims
// attached by authInterceptor. Methods without an entry are open to any
// authenticated caller.
func (s *Server) roleInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {

	required, ok := s.methodRoles[info.FullMethod]
	if !ok {
		return handler(ctx, req)
	}

	claims, ok := FromContext(ctx)
	if !ok {
		authFailuresTotal.WithLabelValues("missing").Inc()
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	if err := authz.RequireRole(claims, required...); err != nil {
		authzDeniedTotal.Inc()
		s.logger.Warn(ctx, "role denied", "method", info.FullMethod, "sub", claims.Subject, "role", string(claims.Role))
		return nil, status.Error(codes.PermissionDenied, "forbidden")
	}

	return handler(ctx, req)
}

// authStatus maps token service errors onto gRPC statuses. Theft signals
// and store failures get dedicated treatment: the former are audit-logged
// and counted, the latter surface as Unavailable so clients do not discard
// credentials over an infrastructure hiccup.
func (s *Server) authStatus(ctx context.Context, method string, err error) error {
	switch {
	case errors.Is(err, token.ErrTokenExpired):
		authFailuresTotal.WithLabelValues("expired").Inc()
		return status.Error(codes.Unauthenticated, "token expired")

	case errors.Is(err, token.ErrFamilyRevoked), errors.Is(err, token.ErrTokenReused):
		theftSignalsTotal.Inc()
		authFailuresTotal.WithLabelValues("theft").Inc()
		s.logger.Warn(ctx, "possible token theft", "method", method, "error", err.Error())
		return status.Error(codes.Unauthenticated, "session revoked")

	case errors.Is(err, token.ErrTokenRevoked):
		authFailuresTotal.WithLabelValues("revoked").Inc()
		s.logger.Warn(ctx, "revoked token presented", "method", method)
		return status.Error(codes.Unauthenticated, "token revoked")

	case errors.Is(err, token.ErrTokenInvalid):
		authFailuresTotal.WithLabelValues("invalid").Inc()
		s.logger.Warn(ctx, "invalid token presented", "method", method, "error", err.Error())
		return status.Error(codes.Unauthenticated, "invalid token")

	default:
		// Revocation store failure. Fail closed, but signal infrastructure
		// rather than bad credentials.
		authFailuresTotal.WithLabelValues("store").Inc()
		s.logger.Error(ctx, "revocation check failed", "method", method, "error", err.Error())
		return status.Error(codes.Unavailable, "authentication unavailable")
	}
}

// bearerFromMetadata pulls the token out of the authorization metadata
// entry, accepting both a bare token and the "Bearer <token>" form.
func bearerFromMetadata(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	values := md.Get(authorizationHeader)
	if len(values) == 0 {
		return ""
	}
	v := values[0]
	if len(v) >= len(bearerPrefix) && strings.EqualFold(v[:len(bearerPrefix)], bearerPrefix) {
		return v[len(bearerPrefix):]
	}
	return v
}
