// Package adminv1 defines login.admin.v1.AdminService.
package adminv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"login-api/api/rpcjson"
)

const ServiceName = "login.admin.v1.AdminService"

const AdminService_GetData_FullMethodName = "/login.admin.v1.AdminService/GetData"

type GetDataRequest struct{}

// GetDataResponse mirrors the status payload of the probe endpoints.
type GetDataResponse struct {
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
}

// AdminServiceServer is the server API for AdminService.
type AdminServiceServer interface {
	GetData(context.Context, *GetDataRequest) (*GetDataResponse, error)
}

type UnimplementedAdminServiceServer struct{}

func (UnimplementedAdminServiceServer) GetData(context.Context, *GetDataRequest) (*GetDataResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetData not implemented")
}

// AdminService_ServiceDesc is the grpc.ServiceDesc for AdminService.
var AdminService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AdminServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetData", Handler: rpcjson.UnaryHandler(AdminService_GetData_FullMethodName, AdminServiceServer.GetData)},
	},
	Metadata: "admin/v1/admin.go",
}

func RegisterAdminServiceServer(s grpc.ServiceRegistrar, srv AdminServiceServer) {
	s.RegisterService(&AdminService_ServiceDesc, srv)
}

// AdminServiceClient is the client API for AdminService.
type AdminServiceClient interface {
	GetData(ctx context.Context, in *GetDataRequest, opts ...grpc.CallOption) (*GetDataResponse, error)
}

type adminServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewAdminServiceClient(cc grpc.ClientConnInterface) AdminServiceClient {
	return &adminServiceClient{cc: cc}
}

func (c *adminServiceClient) GetData(ctx context.Context, in *GetDataRequest, opts ...grpc.CallOption) (*GetDataResponse, error) {
	return rpcjson.Invoke[GetDataResponse](ctx, c.cc, AdminService_GetData_FullMethodName, in, opts...)
}
