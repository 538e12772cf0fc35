package handler

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	authv1 "login-api/api/auth/v1"
	"login-api/internal/identity/service"
	"login-api/internal/server/interceptors"
)

// AuthServer implements login.auth.v1.AuthService on top of service.AuthService.
// Register, Login, ChangePassword and Refresh are public; Revoke needs a Bearer access token.
type AuthServer struct {
	authv1.UnimplementedAuthServiceServer
	auth *service.AuthService
}

// NewAuthServer returns a new Auth gRPC server. If auth is nil, every method returns Unimplemented.
func NewAuthServer(auth *service.AuthService) *AuthServer {
	return &AuthServer{auth: auth}
}

// Register creates a user with the default User role.
func (s *AuthServer) Register(ctx context.Context, req *authv1.RegisterRequest) (*authv1.RegisterResponse, error) {
	if s.auth == nil {
		return nil, status.Error(codes.Unimplemented, "method Register not implemented")
	}
	err := s.auth.Register(ctx, service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		return nil, authErr(err)
	}
	return &authv1.RegisterResponse{Message: "user registered"}, nil
}

// Login authenticates the user and returns an access/refresh token pair.
func (s *AuthServer) Login(ctx context.Context, req *authv1.LoginRequest) (*authv1.LoginResponse, error) {
	if s.auth == nil {
		return nil, status.Error(codes.Unimplemented, "method Login not implemented")
	}
	res, err := s.auth.Login(ctx, req.Username, req.Password)
	if err != nil {
		return nil, authErr(err)
	}
	return &authv1.LoginResponse{
		AccessToken:      res.AccessToken,
		RefreshToken:     res.RefreshToken,
		ExpiresAt:        res.ExpiresAt,
		RefreshExpiresAt: res.RefreshExpiresAt,
		Username:         res.Username,
		Name:             res.DisplayName,
	}, nil
}

// ChangePassword replaces the user's password after verifying the current one.
func (s *AuthServer) ChangePassword(ctx context.Context, req *authv1.ChangePasswordRequest) (*authv1.ChangePasswordResponse, error) {
	if s.auth == nil {
		return nil, status.Error(codes.Unimplemented, "method ChangePassword not implemented")
	}
	if err := s.auth.ChangePassword(ctx, req.Username, req.CurrentPassword, req.NewPassword); err != nil {
		return nil, authErr(err)
	}
	return &authv1.ChangePasswordResponse{Message: "password changed"}, nil
}

// Refresh rotates the refresh token and issues a new access token from the old one's claims.
func (s *AuthServer) Refresh(ctx context.Context, req *authv1.RefreshRequest) (*authv1.RefreshResponse, error) {
	if s.auth == nil {
		return nil, status.Error(codes.Unimplemented, "method Refresh not implemented")
	}
	res, err := s.auth.Refresh(ctx, req.AccessToken, req.RefreshToken)
	if err != nil {
		return nil, authErr(err)
	}
	return &authv1.RefreshResponse{
		AccessToken:      res.AccessToken,
		RefreshToken:     res.RefreshToken,
		ExpiresAt:        res.ExpiresAt,
		RefreshExpiresAt: res.RefreshExpiresAt,
	}, nil
}

// Revoke clears the caller's refresh session. The caller is identified by the access token.
func (s *AuthServer) Revoke(ctx context.Context, req *authv1.RevokeRequest) (*authv1.RevokeResponse, error) {
	if s.auth == nil {
		return nil, status.Error(codes.Unimplemented, "method Revoke not implemented")
	}
	username, ok := interceptors.GetUsername(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing or invalid authorization")
	}
	if err := s.auth.Revoke(ctx, username); err != nil {
		return nil, authErr(err)
	}
	return &authv1.RevokeResponse{Revoked: true}, nil
}

// authErr maps auth service errors to gRPC status. Messages never reveal which credential was wrong.
func authErr(err error) error {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	case errors.Is(err, service.ErrInvalidClientRequest):
		return status.Error(codes.InvalidArgument, service.ErrInvalidClientRequest.Error())
	case errors.Is(err, service.ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		return status.Error(codes.Unauthenticated, service.ErrInvalidCredentials.Error())
	case errors.Is(err, service.ErrUsernameTaken):
		return status.Error(codes.AlreadyExists, service.ErrUsernameTaken.Error())
	case errors.Is(err, service.ErrNoSession):
		return status.Error(codes.FailedPrecondition, service.ErrNoSession.Error())
	case errors.Is(err, service.ErrConcurrentRefreshConflict):
		return status.Error(codes.Aborted, service.ErrConcurrentRefreshConflict.Error())
	case errors.Is(err, service.ErrPersistenceUnavailable):
		return status.Error(codes.Unavailable, "service temporarily unavailable")
	default:
		return status.Error(codes.Internal, "internal error")
	}
}
