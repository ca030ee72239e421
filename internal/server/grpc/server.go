// Package grpc implements the authentication and authorization enforcement
// layer: unary interceptors that gate inbound calls with the token service
// and RBAC rules, and the server that carries them.
package grpc

import (
	"context"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/brightclass/authcore/internal/logging"
	"github.com/brightclass/authcore/internal/token"
)

type Server struct {
	address     string
	logger      logging.Logger
	tokens      *token.Service
	exempt      map[string]struct{}
	methodRoles map[string][]token.Role
}

func NewServer(address string, l logging.Logger, tokens *token.Service) *Server {
	return &Server{
		address: address,
		logger:  l.With("module", "grpc_server"),
		tokens:  tokens,
		exempt: map[string]struct{}{
			"/grpc.health.v1.Health/Check": {},
			"/grpc.health.v1.Health/Watch": {},
		},
		methodRoles: make(map[string][]token.Role),
	}
}

// Exempt marks full method names (e.g. "/pkg.Service/Login") that skip
// authentication. Health checks are exempt out of the box.
func (s *Server) Exempt(methods ...string) {
	for _, m := range methods {
		s.exempt[m] = struct{}{}
	}
}

// RequireRoles restricts a full method name to callers holding one of the
// given roles. Methods without an entry only require authentication.
func (s *Server) RequireRoles(method string, roles ...token.Role) {
	s.methodRoles[method] = roles
}

func (s *Server) Run(ctx context.Context) error {

	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.authInterceptor, s.roleInterceptor))

	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(srv, healthSrv)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		healthSrv.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", s.address)

	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
