package handler

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	protectedv1 "login-api/api/protected/v1"
	"login-api/internal/server/interceptors"
)

// Server implements ProtectedService. Any authenticated caller may use it.
type Server struct {
	protectedv1.UnimplementedProtectedServiceServer
}

// NewServer returns a new Protected gRPC server.
func NewServer() *Server {
	return &Server{}
}

// GetData returns the protected probe payload.
func (s *Server) GetData(ctx context.Context, req *protectedv1.GetDataRequest) (*protectedv1.GetDataResponse, error) {
	if _, ok := interceptors.GetUsername(ctx); !ok {
		return nil, status.Error(codes.Unauthenticated, "authentication required")
	}
	return &protectedv1.GetDataResponse{StatusCode: 1, Message: "Data from protected controller"}, nil
}
