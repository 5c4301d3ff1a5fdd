package grpc

import (
	"context"

	"github.com/dmitrijs2005/energyaudit/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// AccountClient calls the account service over a client connection.
type AccountClient struct {
	cc grpc.ClientConnInterface
}

func NewAccountClient(cc grpc.ClientConnInterface) *AccountClient {
	return &AccountClient{cc: cc}
}

// WithBearer attaches token as the authorization metadata of outgoing calls.
func WithBearer(ctx context.Context, token string) context.Context {
	return metadata.AppendToOutgoingContext(ctx, common.AuthorizationHeaderName, common.BearerPrefix+token)
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(codecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *AccountClient) SignIn(ctx context.Context, in *SignInRequest, opts ...grpc.CallOption) (*SignInResponse, error) {
	return invoke[SignInResponse](ctx, c.cc, MethodSignIn, in, opts)
}

func (c *AccountClient) SignOut(ctx context.Context, in *SessionRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, MethodSignOut, in, opts)
}

func (c *AccountClient) ValidateSession(ctx context.Context, in *SessionRequest, opts ...grpc.CallOption) (*ValidateResponse, error) {
	return invoke[ValidateResponse](ctx, c.cc, MethodValidateSession, in, opts)
}

func (c *AccountClient) RefreshSession(ctx context.Context, in *SessionRequest, opts ...grpc.CallOption) (*RefreshSessionResponse, error) {
	return invoke[RefreshSessionResponse](ctx, c.cc, MethodRefreshSession, in, opts)
}

func (c *AccountClient) SignUp(ctx context.Context, in *SignUpRequest, opts ...grpc.CallOption) (*SignUpResponse, error) {
	return invoke[SignUpResponse](ctx, c.cc, MethodSignUp, in, opts)
}

func (c *AccountClient) VerifyEmail(ctx context.Context, in *TokenRequest, opts ...grpc.CallOption) (*VerifyEmailResponse, error) {
	return invoke[VerifyEmailResponse](ctx, c.cc, MethodVerifyEmail, in, opts)
}

func (c *AccountClient) ResendVerification(ctx context.Context, in *EmailRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, MethodResendVerification, in, opts)
}

func (c *AccountClient) RequestPasswordReset(ctx context.Context, in *EmailRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, MethodRequestPasswordReset, in, opts)
}

func (c *AccountClient) ResetPassword(ctx context.Context, in *ResetPasswordRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, MethodResetPassword, in, opts)
}

func (c *AccountClient) ValidateResetToken(ctx context.Context, in *TokenRequest, opts ...grpc.CallOption) (*ValidateResponse, error) {
	return invoke[ValidateResponse](ctx, c.cc, MethodValidateResetToken, in, opts)
}
