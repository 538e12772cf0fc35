// Package protectedv1 defines login.protected.v1.ProtectedService.
package protectedv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"login-api/api/rpcjson"
)

const ServiceName = "login.protected.v1.ProtectedService"

const ProtectedService_GetData_FullMethodName = "/login.protected.v1.ProtectedService/GetData"

type GetDataRequest struct{}

// GetDataResponse mirrors the status payload of the probe endpoints.
type GetDataResponse struct {
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
}

// ProtectedServiceServer is the server API for ProtectedService.
type ProtectedServiceServer interface {
	GetData(context.Context, *GetDataRequest) (*GetDataResponse, error)
}

type UnimplementedProtectedServiceServer struct{}

func (UnimplementedProtectedServiceServer) GetData(context.Context, *GetDataRequest) (*GetDataResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetData not implemented")
}

// ProtectedService_ServiceDesc is the grpc.ServiceDesc for ProtectedService.
var ProtectedService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ProtectedServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetData", Handler: rpcjson.UnaryHandler(ProtectedService_GetData_FullMethodName, ProtectedServiceServer.GetData)},
	},
	Metadata: "protected/v1/protected.go",
}

func RegisterProtectedServiceServer(s grpc.ServiceRegistrar, srv ProtectedServiceServer) {
	s.RegisterService(&ProtectedService_ServiceDesc, srv)
}

// ProtectedServiceClient is the client API for ProtectedService.
type ProtectedServiceClient interface {
	GetData(ctx context.Context, in *GetDataRequest, opts ...grpc.CallOption) (*GetDataResponse, error)
}

type protectedServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewProtectedServiceClient(cc grpc.ClientConnInterface) ProtectedServiceClient {
	return &protectedServiceClient{cc: cc}
}

func (c *protectedServiceClient) GetData(ctx context.Context, in *GetDataRequest, opts ...grpc.CallOption) (*GetDataResponse, error) {
	return rpcjson.Invoke[GetDataResponse](ctx, c.cc, ProtectedService_GetData_FullMethodName, in, opts...)
}
