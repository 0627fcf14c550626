package grpcserver

import (
	"context"
	"errors"
	"strconv"

	"admin-rbac/repositories"
	"admin-rbac/services"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// RoleServiceServer answers role permission questions.
// Can takes {"role_id": number, "permission": string}.
// GetPermissionID takes a list of role ids and returns {"<role id>": [permission ids]}.
type RoleServiceServer interface {
	Can(ctx context.Context, req *structpb.Struct) (*wrapperspb.BoolValue, error)
	GetPermissionID(ctx context.Context, req *structpb.ListValue) (*structpb.Struct, error)
}

// RoleServiceDesc describes admin.RoleService for grpc.Server.RegisterService.
var RoleServiceDesc = grpc.ServiceDesc{
	ServiceName: "admin.RoleService",
	HandlerType: (*RoleServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Can", Handler: roleServiceCanHandler},
		{MethodName: "GetPermissionID", Handler: roleServiceGetPermissionIDHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "admin/role.proto",
}

func roleServiceCanHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RoleServiceServer).Can(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/admin.RoleService/Can"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(RoleServiceServer).Can(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func roleServiceGetPermissionIDHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.ListValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RoleServiceServer).GetPermissionID(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/admin.RoleService/GetPermissionID"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(RoleServiceServer).GetPermissionID(ctx, req.(*structpb.ListValue))
	}
	return interceptor(ctx, in, info, handler)
}

type roleServiceServer struct {
	roleService services.RoleService
}

// NewRoleServiceServer creates a new gRPC role service server.
func NewRoleServiceServer(rs services.RoleService) RoleServiceServer {
	return &roleServiceServer{roleService: rs}
}

func (s *roleServiceServer) Can(ctx context.Context, req *structpb.Struct) (*wrapperspb.BoolValue, error) {
	fields := req.GetFields()
	roleID := fields["role_id"].GetNumberValue()
	permission := fields["permission"].GetStringValue()
	if roleID <= 0 || permission == "" {
		return nil, status.Error(codes.InvalidArgument, "role_id and permission are required")
	}

	granted, err := s.roleService.Can(ctx, uint(roleID), permission)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "Error checking permission: %v", err)
	}
	return wrapperspb.Bool(granted), nil
}

func (s *roleServiceServer) GetPermissionID(ctx context.Context, req *structpb.ListValue) (*structpb.Struct, error) {
	roleIDs := make([]uint, 0, len(req.GetValues()))
	for _, v := range req.GetValues() {
		if v.GetNumberValue() <= 0 {
			return nil, status.Error(codes.InvalidArgument, "role ids must be positive numbers")
		}
		roleIDs = append(roleIDs, uint(v.GetNumberValue()))
	}

	grouped, err := s.roleService.GetPermissionID(ctx, roleIDs)
	if err != nil {
		if errors.Is(err, repositories.ErrRoleNotFound) {
			return nil, status.Error(codes.NotFound, err.Error())
		}
		return nil, status.Errorf(codes.Internal, "Error loading permissions: %v", err)
	}

	out := make(map[string]interface{}, len(grouped))
	for roleID, ids := range grouped {
		values := make([]interface{}, len(ids))
		for i, id := range ids {
			values[i] = float64(id)
		}
		out[strconv.FormatUint(uint64(roleID), 10)] = values
	}
	return structpb.NewStruct(out)
}
