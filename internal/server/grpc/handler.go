package grpc

import (
	"context"

	"github.com/dmitrijs2005/energyaudit/internal/server/models"
	"github.com/dmitrijs2005/energyaudit/internal/server/services"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func (s *GRPCServer) SignIn(ctx context.Context, req *SignInRequest) (*SignInResponse, error) {
	res, err := s.sessions.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &SignInResponse{User: res.User, Token: res.Token, SessionID: res.SessionID}, nil
}

// SignOut only removes sessions of the caller; other ids are a no-op.
func (s *GRPCServer) SignOut(ctx context.Context, req *SessionRequest) (*Empty, error) {
	userID, ok := UserIDFromContext(ctx)
	if !ok {
		return nil, s.toStatus(ctx, services.ErrInvalidSession)
	}
	if err := s.sessions.SignOutOwned(ctx, userID, req.SessionID); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &Empty{}, nil
}

func (s *GRPCServer) ValidateSession(ctx context.Context, req *SessionRequest) (*ValidateResponse, error) {
	ok, err := s.sessions.ValidateSession(ctx, req.SessionID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &ValidateResponse{Valid: ok}, nil
}

func (s *GRPCServer) RefreshSession(ctx context.Context, req *SessionRequest) (*RefreshSessionResponse, error) {
	userID, ok := UserIDFromContext(ctx)
	if !ok {
		return nil, s.toStatus(ctx, services.ErrInvalidSession)
	}
	token, err := s.sessions.RefreshOwnedSession(ctx, userID, req.SessionID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &RefreshSessionResponse{Token: token}, nil
}

// SignUp does not return the verification token; it only travels by email.
func (s *GRPCServer) SignUp(ctx context.Context, req *SignUpRequest) (*SignUpResponse, error) {
	res, err := s.signup.SignUp(ctx, models.SignUpInput{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Phone:    req.Phone,
		Address:  req.Address,
	})
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &SignUpResponse{UserID: res.UserID, Email: res.Email, FullName: res.FullName}, nil
}

func (s *GRPCServer) VerifyEmail(ctx context.Context, req *TokenRequest) (*VerifyEmailResponse, error) {
	res, err := s.signup.VerifyEmail(ctx, req.Token)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &VerifyEmailResponse{UserID: res.UserID, Email: res.Email}, nil
}

func (s *GRPCServer) ResendVerification(ctx context.Context, req *EmailRequest) (*Empty, error) {
	if _, err := s.signup.ResendVerification(ctx, req.Email); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &Empty{}, nil
}

func (s *GRPCServer) RequestPasswordReset(ctx context.Context, req *EmailRequest) (*Empty, error) {
	if err := s.resets.RequestReset(ctx, req.Email); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &Empty{}, nil
}

func (s *GRPCServer) ResetPassword(ctx context.Context, req *ResetPasswordRequest) (*Empty, error) {
	if err := s.resets.ResetPassword(ctx, req.Token, req.NewPassword); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &Empty{}, nil
}

func (s *GRPCServer) ValidateResetToken(ctx context.Context, req *TokenRequest) (*ValidateResponse, error) {
	ok, err := s.resets.ValidateResetToken(ctx, req.Token)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &ValidateResponse{Valid: ok}, nil
}

// toStatus maps the account error kinds to gRPC codes. The message is
// "CODE: message"; internal causes are logged, never sent.
func (s *GRPCServer) toStatus(ctx context.Context, err error) error {
	var code codes.Code
	switch services.KindOf(err) {
	case services.KindInvalidCredentials, services.KindEmailNotVerified, services.KindInvalidSession:
		code = codes.Unauthenticated
	case services.KindEmailAlreadyRegistered, services.KindEmailAlreadyVerified:
		code = codes.AlreadyExists
	case services.KindInvalidOrExpiredToken, services.KindInvalidInput:
		code = codes.InvalidArgument
	case services.KindUserNotFound:
		code = codes.NotFound
	default:
		s.logger.Error(ctx, "internal error", "error", err)
		return status.Error(codes.Internal, services.ErrInternal.Code+": "+services.ErrInternal.Message)
	}
	return status.Error(code, services.CodeOf(err)+": "+err.Error())
}
