package grpcserver

import (
	"context"
	"encoding/json"

	"admin-rbac/services"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// MenuServiceServer serves the menu tree of one namespace.
// AllNodes takes {"force": bool} and returns the nested tree as a list of JSON objects.
type MenuServiceServer interface {
	AllNodes(ctx context.Context, req *structpb.Struct) (*structpb.ListValue, error)
}

// MenuServiceDesc describes admin.MenuService for grpc.Server.RegisterService.
var MenuServiceDesc = grpc.ServiceDesc{
	ServiceName: "admin.MenuService",
	HandlerType: (*MenuServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "AllNodes", Handler: menuServiceAllNodesHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "admin/menu.proto",
}

func menuServiceAllNodesHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MenuServiceServer).AllNodes(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/admin.MenuService/AllNodes"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(MenuServiceServer).AllNodes(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

type menuServiceServer struct {
	menuService services.MenuService
}

// NewMenuServiceServer creates a new gRPC menu service server.
func NewMenuServiceServer(ms services.MenuService) MenuServiceServer {
	return &menuServiceServer{menuService: ms}
}

func (s *menuServiceServer) AllNodes(ctx context.Context, req *structpb.Struct) (*structpb.ListValue, error) {
	force := req.GetFields()["force"].GetBoolValue()

	nodes, err := s.menuService.AllNodes(ctx, force)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "Error loading menu tree: %v", err)
	}

	// Round trip through JSON so the wire shape matches the HTTP API.
	raw, err := json.Marshal(nodes)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "Error encoding menu tree: %v", err)
	}
	var items []interface{}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, status.Errorf(codes.Internal, "Error encoding menu tree: %v", err)
	}
	list, err := structpb.NewList(items)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "Error encoding menu tree: %v", err)
	}
	return list, nil
}
