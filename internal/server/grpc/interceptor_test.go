package grpc

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/energyaudit/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func TestInterceptor_UnprotectedAllowsWithoutToken(t *testing.T) {
	s := newTestServer(nil, nil, nil)

	info := &grpc.UnaryServerInfo{FullMethod: MethodSignIn}
	handlerCalled := false

	h := func(ctx context.Context, req any) (any, error) {
		handlerCalled = true
		if _, ok := UserIDFromContext(ctx); ok {
			t.Fatal("unexpected user id in context")
		}
		return "ok", nil
	}

	resp, err := s.accessTokenInterceptor(context.Background(), nil, info, h)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !handlerCalled {
		t.Fatal("handler was not called")
	}
	if resp != "ok" {
		t.Fatalf("unexpected handler resp: %v", resp)
	}
}

func TestInterceptor_MissingToken(t *testing.T) {
	s := newTestServer(nil, nil, nil)

	for _, method := range []string{MethodSignOut, MethodRefreshSession} {
		info := &grpc.UnaryServerInfo{FullMethod: method}
		h := func(ctx context.Context, req any) (any, error) {
			t.Fatal("handler should not be called when token missing")
			return nil, nil
		}

		_, err := s.accessTokenInterceptor(context.Background(), nil, info, h)
		if status.Code(err) != codes.Unauthenticated {
			t.Fatalf("%s: expected Unauthenticated, got %v", method, status.Code(err))
		}
		if status.Convert(err).Message() != "missing token" {
			t.Fatalf("expected 'missing token', got %q", status.Convert(err).Message())
		}
	}
}

func TestInterceptor_InvalidToken(t *testing.T) {
	s := newTestServer(nil, nil, nil)

	md := metadata.Pairs(common.AuthorizationHeaderName, common.BearerPrefix+"not-a-valid-jwt")
	ctx := metadata.NewIncomingContext(context.Background(), md)
	info := &grpc.UnaryServerInfo{FullMethod: MethodSignOut}

	_, err := s.accessTokenInterceptor(ctx, nil, info, func(ctx context.Context, req any) (any, error) {
		t.Fatal("handler should not be called with invalid token")
		return nil, nil
	})
	if status.Code(err) != codes.Unauthenticated {
		t.Fatalf("expected Unauthenticated, got %v", status.Code(err))
	}
}

func TestInterceptor_ValidTokenSetsUserID(t *testing.T) {
	s := newTestServer(nil, nil, nil)

	md := metadata.Pairs(common.AuthorizationHeaderName, "bearer good-token")
	ctx := metadata.NewIncomingContext(context.Background(), md)
	info := &grpc.UnaryServerInfo{FullMethod: MethodRefreshSession}

	var got string
	_, err := s.accessTokenInterceptor(ctx, nil, info, func(ctx context.Context, req any) (any, error) {
		got, _ = UserIDFromContext(ctx)
		return nil, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "u-1" {
		t.Fatalf("expected user id u-1, got %q", got)
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name string
		md   metadata.MD
		want string
	}{
		{name: "no metadata", md: nil, want: ""},
		{name: "no scheme", md: metadata.Pairs(common.AuthorizationHeaderName, "good-token"), want: ""},
		{name: "prefix only", md: metadata.Pairs(common.AuthorizationHeaderName, "Bearer "), want: ""},
		{name: "canonical", md: metadata.Pairs(common.AuthorizationHeaderName, "Bearer abc"), want: "abc"},
		{name: "lower case scheme", md: metadata.Pairs(common.AuthorizationHeaderName, "bearer abc "), want: "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			if tt.md != nil {
				ctx = metadata.NewIncomingContext(ctx, tt.md)
			}
			if got := bearerToken(ctx); got != tt.want {
				t.Fatalf("bearerToken() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoggingInterceptor_PassesThrough(t *testing.T) {
	s := newTestServer(nil, nil, nil)
	info := &grpc.UnaryServerInfo{FullMethod: MethodValidateSession}

	resp, err := s.loggingInterceptor(context.Background(), nil, info, func(ctx context.Context, req any) (any, error) {
		return "ok", nil
	})
	if err != nil || resp != "ok" {
		t.Fatalf("unexpected result: %v, %v", resp, err)
	}

	wantErr := status.Error(codes.NotFound, "x")
	_, err = s.loggingInterceptor(context.Background(), nil, info, func(ctx context.Context, req any) (any, error) {
		return nil, wantErr
	})
	if err != wantErr {
		t.Fatalf("error not passed through: %v", err)
	}
}
