package handler

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	adminv1 "login-api/api/admin/v1"
	"login-api/internal/platform/rbac"
	"login-api/internal/policy/engine"
)

// Server implements AdminService. Access is decided by the role policy (Admin by default).
type Server struct {
	adminv1.UnimplementedAdminServiceServer
	authz engine.Authorizer
}

// NewServer returns a new Admin gRPC server. If authz is nil, GetData returns Unimplemented.
func NewServer(authz engine.Authorizer) *Server {
	return &Server{authz: authz}
}

// GetData returns the admin probe payload.
func (s *Server) GetData(ctx context.Context, req *adminv1.GetDataRequest) (*adminv1.GetDataResponse, error) {
	if s.authz == nil {
		return nil, status.Error(codes.Unimplemented, "method GetData not implemented")
	}
	if _, err := rbac.RequireRole(ctx, s.authz, adminv1.AdminService_GetData_FullMethodName); err != nil {
		return nil, err
	}
	return &adminv1.GetDataResponse{StatusCode: 1, Message: "Data from admin controller"}, nil
}
