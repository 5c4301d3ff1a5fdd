package grpc

import (
	"context"

	"github.com/dmitrijs2005/energyaudit/internal/common"
	"github.com/dmitrijs2005/energyaudit/internal/logging"
	"github.com/dmitrijs2005/energyaudit/internal/server/models"
)

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

type fakeSessions struct {
	signIn     *models.SignInResult
	signInErr  error
	signOutErr error
	valid      bool
	validErr   error
	refresh    string
	refreshErr error

	lastUserID    string
	lastSessionID string
}

func (f *fakeSessions) SignIn(ctx context.Context, email, password string) (*models.SignInResult, error) {
	return f.signIn, f.signInErr
}
func (f *fakeSessions) SignOutOwned(ctx context.Context, userID, sessionID string) error {
	f.lastUserID, f.lastSessionID = userID, sessionID
	return f.signOutErr
}
func (f *fakeSessions) ValidateSession(ctx context.Context, sessionID string) (bool, error) {
	return f.valid, f.validErr
}
func (f *fakeSessions) RefreshOwnedSession(ctx context.Context, userID, sessionID string) (string, error) {
	f.lastUserID, f.lastSessionID = userID, sessionID
	return f.refresh, f.refreshErr
}

type fakeSignUp struct {
	signUp    *models.SignUpResult
	signUpErr error
	lastIn    models.SignUpInput
	verified  *models.VerifiedEmail
	verifyErr error
	resendErr error
}

func (f *fakeSignUp) SignUp(ctx context.Context, in models.SignUpInput) (*models.SignUpResult, error) {
	f.lastIn = in
	return f.signUp, f.signUpErr
}
func (f *fakeSignUp) VerifyEmail(ctx context.Context, token string) (*models.VerifiedEmail, error) {
	return f.verified, f.verifyErr
}
func (f *fakeSignUp) ResendVerification(ctx context.Context, email string) (*models.VerificationBundle, error) {
	if f.resendErr != nil {
		return nil, f.resendErr
	}
	return &models.VerificationBundle{Email: email}, nil
}

type fakeResets struct {
	requestErr error
	resetErr   error
	valid      bool
	validErr   error
	lastEmail  string
}

func (f *fakeResets) RequestReset(ctx context.Context, email string) error {
	f.lastEmail = email
	return f.requestErr
}
func (f *fakeResets) ResetPassword(ctx context.Context, token, newPassword string) error {
	return f.resetErr
}
func (f *fakeResets) ValidateResetToken(ctx context.Context, token string) (bool, error) {
	return f.valid, f.validErr
}

// fakeTokens accepts only "good-token" and maps it to "u-1".
type fakeTokens struct{}

func (fakeTokens) UserID(token string) (string, error) {
	if token == "good-token" {
		return "u-1", nil
	}
	return "", common.ErrInvalidToken
}

// withUser mimics what the access token interceptor puts in the context.
func withUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

func newTestServer(ss *fakeSessions, su *fakeSignUp, rs *fakeResets) *GRPCServer {
	if ss == nil {
		ss = &fakeSessions{}
	}
	if su == nil {
		su = &fakeSignUp{}
	}
	if rs == nil {
		rs = &fakeResets{}
	}
	return NewGRPCServer("127.0.0.1:0", logging.Nop(), ss, su, rs, fakeTokens{})
}
