package grpc

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "energyaudit.accounts.v1.AccountService"

// Full method names.
const (
	MethodSignIn               = "/" + ServiceName + "/SignIn"
	MethodSignOut              = "/" + ServiceName + "/SignOut"
	MethodValidateSession      = "/" + ServiceName + "/ValidateSession"
	MethodRefreshSession       = "/" + ServiceName + "/RefreshSession"
	MethodSignUp               = "/" + ServiceName + "/SignUp"
	MethodVerifyEmail          = "/" + ServiceName + "/VerifyEmail"
	MethodResendVerification   = "/" + ServiceName + "/ResendVerification"
	MethodRequestPasswordReset = "/" + ServiceName + "/RequestPasswordReset"
	MethodResetPassword        = "/" + ServiceName + "/ResetPassword"
	MethodValidateResetToken   = "/" + ServiceName + "/ValidateResetToken"
)

// AccountServiceServer is implemented by GRPCServer.
type AccountServiceServer interface {
	SignIn(context.Context, *SignInRequest) (*SignInResponse, error)
	SignOut(context.Context, *SessionRequest) (*Empty, error)
	ValidateSession(context.Context, *SessionRequest) (*ValidateResponse, error)
	RefreshSession(context.Context, *SessionRequest) (*RefreshSessionResponse, error)
	SignUp(context.Context, *SignUpRequest) (*SignUpResponse, error)
	VerifyEmail(context.Context, *TokenRequest) (*VerifyEmailResponse, error)
	ResendVerification(context.Context, *EmailRequest) (*Empty, error)
	RequestPasswordReset(context.Context, *EmailRequest) (*Empty, error)
	ResetPassword(context.Context, *ResetPasswordRequest) (*Empty, error)
	ValidateResetToken(context.Context, *TokenRequest) (*ValidateResponse, error)
}

// AccountServiceDesc describes the service without generated code; messages
// travel through the json codec.
var AccountServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AccountServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("SignIn", AccountServiceServer.SignIn),
		unary("SignOut", AccountServiceServer.SignOut),
		unary("ValidateSession", AccountServiceServer.ValidateSession),
		unary("RefreshSession", AccountServiceServer.RefreshSession),
		unary("SignUp", AccountServiceServer.SignUp),
		unary("VerifyEmail", AccountServiceServer.VerifyEmail),
		unary("ResendVerification", AccountServiceServer.ResendVerification),
		unary("RequestPasswordReset", AccountServiceServer.RequestPasswordReset),
		unary("ResetPassword", AccountServiceServer.ResetPassword),
		unary("ValidateResetToken", AccountServiceServer.ValidateResetToken),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "energyaudit/accounts/v1/accounts",
}

// RegisterAccountServiceServer registers srv on s.
func RegisterAccountServiceServer(s grpc.ServiceRegistrar, srv AccountServiceServer) {
	s.RegisterService(&AccountServiceDesc, srv)
}

func unary[Req, Resp any](name string, call func(AccountServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	fullMethod := "/" + ServiceName + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(AccountServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(AccountServiceServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}
