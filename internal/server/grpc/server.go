// Package grpc exposes the account managers as the
// energyaudit.accounts.v1.AccountService gRPC service. Messages are plain Go
// structs carried by a JSON codec.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/energyaudit/internal/logging"
	"github.com/dmitrijs2005/energyaudit/internal/server/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// SessionService is the session part of the account core. Sign-out and
// refresh are scoped to the user of the bearer token.
type SessionService interface {
	SignIn(ctx context.Context, email, password string) (*models.SignInResult, error)
	SignOutOwned(ctx context.Context, userID, sessionID string) error
	ValidateSession(ctx context.Context, sessionID string) (bool, error)
	RefreshOwnedSession(ctx context.Context, userID, sessionID string) (string, error)
}

// SignUpService is the registration part of the account core.
type SignUpService interface {
	SignUp(ctx context.Context, in models.SignUpInput) (*models.SignUpResult, error)
	VerifyEmail(ctx context.Context, token string) (*models.VerifiedEmail, error)
	ResendVerification(ctx context.Context, email string) (*models.VerificationBundle, error)
}

// PasswordResetService is the password reset part of the account core.
type PasswordResetService interface {
	RequestReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	ValidateResetToken(ctx context.Context, token string) (bool, error)
}

// TokenParser resolves a bearer token to its user id.
type TokenParser interface {
	UserID(token string) (string, error)
}

type GRPCServer struct {
	address  string
	logger   logging.Logger
	sessions SessionService
	signup   SignUpService
	resets   PasswordResetService
	tokens   TokenParser
	health   *health.Server
}

func NewGRPCServer(a string, l logging.Logger, ss SessionService, su SignUpService, rs PasswordResetService, tp TokenParser) *GRPCServer {
	return &GRPCServer{
		address:  a,
		logger:   l.With("module", "grpc_server"),
		sessions: ss,
		signup:   su,
		resets:   rs,
		tokens:   tp,
		health:   health.NewServer(),
	}
}

// newServer builds the grpc.Server with interceptors, the account service
// and the standard health service registered.
func (s *GRPCServer) newServer(opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts, grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.accessTokenInterceptor))
	srv := grpc.NewServer(opts...)

	RegisterAccountServiceServer(srv, s)
	healthpb.RegisterHealthServer(srv, s.health)
	s.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)

	return srv
}

// Run listens on the configured address and serves until ctx is canceled.
func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}

// Serve serves on an existing listener until ctx is canceled, then stops
// gracefully.
func (s *GRPCServer) Serve(ctx context.Context, listen net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		s.health.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
