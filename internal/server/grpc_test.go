package server

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	adminv1 "login-api/api/admin/v1"
	authv1 "login-api/api/auth/v1"
	protectedv1 "login-api/api/protected/v1"
	identityservice "login-api/internal/identity/service"
	"login-api/internal/policy/engine"
	"login-api/internal/security"
	sessionrepo "login-api/internal/session/repository"
	"login-api/internal/user"
	userrepo "login-api/internal/user/repository"
)

// mockServiceRegistrar implements grpc.ServiceRegistrar for testing.
type mockServiceRegistrar struct {
	services []string
}

func (m *mockServiceRegistrar) RegisterService(desc *grpc.ServiceDesc, impl interface{}) {
	m.services = append(m.services, desc.ServiceName)
}

func TestRegisterServices_AllServicesRegistered(t *testing.T) {
	reg := &mockServiceRegistrar{}
	RegisterServices(reg, Deps{})
	want := []string{
		authv1.ServiceName,
		protectedv1.ServiceName,
		adminv1.ServiceName,
		"grpc.health.v1.Health",
	}
	require.Equal(t, want, reg.services)
}

type harness struct {
	auth      authv1.AuthServiceClient
	protected protectedv1.ProtectedServiceClient
	admin     adminv1.AdminServiceClient
	health    healthpb.HealthClient
	creds     *user.CredentialStore
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctx := context.Background()
	codec, err := security.NewTestTokenCodec()
	require.NoError(t, err)
	creds := user.NewCredentialStore(userrepo.NewMemoryRepository(), security.NewHasher(4))
	authz, err := engine.NewRoleEvaluator(ctx, "")
	require.NoError(t, err)
	svc := identityservice.NewAuthService(creds, sessionrepo.NewMemoryRepository(), codec, identityservice.Options{})

	srv, err := NewServer(Options{Validator: codec})
	require.NoError(t, err)
	RegisterServices(srv, Deps{Auth: svc, Authz: authz, HealthPolicyChecker: authz})

	lis := bufconn.Listen(1 << 20)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return &harness{
		auth:      authv1.NewAuthServiceClient(conn),
		protected: protectedv1.NewProtectedServiceClient(conn),
		admin:     adminv1.NewAdminServiceClient(conn),
		health:    healthpb.NewHealthClient(conn),
		creds:     creds,
	}
}

func bearer(token string) context.Context {
	return metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer "+token)
}

func TestServer_EndToEnd(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.auth.Register(ctx, &authv1.RegisterRequest{Username: "alice", Email: "alice@x.com", Password: "Pw1!"})
	require.NoError(t, err)

	login, err := h.auth.Login(ctx, &authv1.LoginRequest{Username: "alice", Password: "Pw1!"})
	require.NoError(t, err)
	require.NotEmpty(t, login.AccessToken)
	require.NotEmpty(t, login.RefreshToken)
	require.Equal(t, "alice", login.Username)
	require.True(t, login.RefreshExpiresAt.After(login.ExpiresAt))

	data, err := h.protected.GetData(bearer(login.AccessToken), &protectedv1.GetDataRequest{})
	require.NoError(t, err)
	require.Equal(t, 1, data.StatusCode)
	require.Equal(t, "Data from protected controller", data.Message)

	_, err = h.protected.GetData(ctx, &protectedv1.GetDataRequest{})
	require.Equal(t, codes.Unauthenticated, status.Code(err))

	_, err = h.admin.GetData(bearer(login.AccessToken), &adminv1.GetDataRequest{})
	require.Equal(t, codes.PermissionDenied, status.Code(err))

	refreshed, err := h.auth.Refresh(ctx, &authv1.RefreshRequest{AccessToken: login.AccessToken, RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	require.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	_, err = h.auth.Refresh(ctx, &authv1.RefreshRequest{AccessToken: login.AccessToken, RefreshToken: login.RefreshToken})
	st, _ := status.FromError(err)
	require.Equal(t, codes.InvalidArgument, st.Code())
	require.Equal(t, "invalid client request", st.Message())

	_, err = h.auth.Revoke(ctx, &authv1.RevokeRequest{})
	require.Equal(t, codes.Unauthenticated, status.Code(err))

	revoked, err := h.auth.Revoke(bearer(refreshed.AccessToken), &authv1.RevokeRequest{})
	require.NoError(t, err)
	require.True(t, revoked.Revoked)

	_, err = h.auth.Revoke(bearer(refreshed.AccessToken), &authv1.RevokeRequest{})
	require.Equal(t, codes.FailedPrecondition, status.Code(err))

	_, err = h.auth.Refresh(ctx, &authv1.RefreshRequest{AccessToken: refreshed.AccessToken, RefreshToken: refreshed.RefreshToken})
	require.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestServer_AdminRole(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	u, err := h.creds.CreateUser(ctx, user.NewUser{Username: "root", Email: "root@x.com", Password: "Adm1n!"})
	require.NoError(t, err)
	require.NoError(t, h.creds.EnsureRoleExists(ctx, security.RoleAdmin))
	require.NoError(t, h.creds.AssignRole(ctx, u, security.RoleAdmin))

	login, err := h.auth.Login(ctx, &authv1.LoginRequest{Username: "root", Password: "Adm1n!"})
	require.NoError(t, err)

	data, err := h.admin.GetData(bearer(login.AccessToken), &adminv1.GetDataRequest{})
	require.NoError(t, err)
	require.Equal(t, "Data from admin controller", data.Message)
}

func TestServer_Errors(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.auth.Login(ctx, &authv1.LoginRequest{Username: "ghost", Password: "Pw1!"})
	require.Equal(t, codes.Unauthenticated, status.Code(err))

	_, err = h.auth.Register(ctx, &authv1.RegisterRequest{Username: "bob", Email: "not-an-email", Password: "Pw1!"})
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = h.auth.Register(ctx, &authv1.RegisterRequest{Username: "bob", Email: "bob@x.com", Password: "Pw1!"})
	require.NoError(t, err)
	_, err = h.auth.Register(ctx, &authv1.RegisterRequest{Username: "bob", Email: "bob@x.com", Password: "Pw1!"})
	require.Equal(t, codes.AlreadyExists, status.Code(err))
}

func TestServer_Health(t *testing.T) {
	h := newHarness(t)
	resp, err := h.health.Check(context.Background(), &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	require.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)
}
