package interceptors

import (
	"context"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"login-api/internal/security"
)

func bearerContext(token string) context.Context {
	return metadata.NewIncomingContext(context.Background(), metadata.New(map[string]string{
		"authorization": "Bearer " + token,
	}))
}

func TestAuthUnary(t *testing.T) {
	codec, err := security.NewTestTokenCodec()
	if err != nil {
		t.Fatalf("NewTestTokenCodec: %v", err)
	}
	valid, err := codec.IssueAccessToken(security.NewClaims("alice", []string{"User"}))
	if err != nil {
		t.Fatalf("IssueAccessToken: %v", err)
	}
	past := time.Now().Add(-time.Hour)
	stale, _ := security.NewTestTokenCodec(security.WithClock(func() time.Time { return past }))
	expired, err := stale.IssueAccessToken(security.NewClaims("alice", []string{"User"}))
	if err != nil {
		t.Fatalf("IssueAccessToken: %v", err)
	}

	const (
		public    = "/test.Service/Public"
		protected = "/test.Service/Protected"
	)
	interceptor := AuthUnary(codec, map[string]bool{public: true})

	tests := []struct {
		name     string
		ctx      context.Context
		method   string
		wantCode codes.Code
		wantUser string
	}{
		{"public no token", context.Background(), public, codes.OK, ""},
		{"public invalid token runs anonymous", bearerContext("invalid-token"), public, codes.OK, ""},
		{"public valid token identifies caller", bearerContext(valid.Token), public, codes.OK, "alice"},
		{"protected no token", context.Background(), protected, codes.Unauthenticated, ""},
		{"protected invalid token", bearerContext("invalid-token"), protected, codes.Unauthenticated, ""},
		{"protected expired token", bearerContext(expired.Token), protected, codes.Unauthenticated, ""},
		{"protected valid token", bearerContext(valid.Token), protected, codes.OK, "alice"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotUser string
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				gotUser, _ = GetUsername(ctx)
				return "success", nil
			}
			resp, err := interceptor(tt.ctx, "request", &grpc.UnaryServerInfo{FullMethod: tt.method}, handler)
			if code := status.Code(err); code != tt.wantCode {
				t.Fatalf("code = %v, want %v (err %v)", code, tt.wantCode, err)
			}
			if tt.wantCode != codes.OK {
				if resp != nil {
					t.Errorf("handler must not run, got %v", resp)
				}
				return
			}
			if resp != "success" {
				t.Errorf("response = %v, want %q", resp, "success")
			}
			if gotUser != tt.wantUser {
				t.Errorf("username = %q, want %q", gotUser, tt.wantUser)
			}
		})
	}
}

func TestAuthUnary_StoresClaims(t *testing.T) {
	codec, err := security.NewTestTokenCodec()
	if err != nil {
		t.Fatalf("NewTestTokenCodec: %v", err)
	}
	tok, err := codec.IssueAccessToken(security.NewClaims("root", []string{"Admin", "User"}))
	if err != nil {
		t.Fatalf("IssueAccessToken: %v", err)
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		roles := GetRoles(ctx)
		if len(roles) != 2 || roles[0] != "Admin" || roles[1] != "User" {
			t.Errorf("roles = %v, want [Admin User]", roles)
		}
		jti, ok := GetTokenID(ctx)
		if !ok || jti != tok.Claims.TokenID.String() {
			t.Errorf("token id = %q, ok = %v, want %q", jti, ok, tok.Claims.TokenID)
		}
		return nil, nil
	}
	if _, err := AuthUnary(codec, nil)(bearerContext(tok.Token), nil, &grpc.UnaryServerInfo{FullMethod: "/x/Y"}, handler); err != nil {
		t.Fatalf("interceptor: %v", err)
	}
}

func TestExtractBearer(t *testing.T) {
	tests := []struct {
		name     string
		md       metadata.MD
		expected string
	}{
		{"valid bearer", metadata.New(map[string]string{"authorization": "Bearer token123"}), "token123"},
		{"lowercase bearer", metadata.New(map[string]string{"authorization": "bearer token123"}), "token123"},
		{"with spaces", metadata.New(map[string]string{"authorization": "  Bearer  token123  "}), "token123"},
		{"no bearer prefix", metadata.New(map[string]string{"authorization": "token123"}), ""},
		{"basic scheme", metadata.New(map[string]string{"authorization": "Basic dXNlcjpwYXNz"}), ""},
		{"empty", metadata.New(map[string]string{"authorization": ""}), ""},
		{"missing header", metadata.New(map[string]string{}), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := metadata.NewIncomingContext(context.Background(), tt.md)
			if got := extractBearer(ctx); got != tt.expected {
				t.Errorf("extractBearer() = %q, want %q", got, tt.expected)
			}
		})
	}
	if got := extractBearer(context.Background()); got != "" {
		t.Errorf("extractBearer without metadata = %q, want empty", got)
	}
}
