package grpcserver

import (
	"admin-rbac/auth"
	"admin-rbac/interceptors"
	"admin-rbac/services"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// NewServer builds the admin gRPC server of one namespace with logging, authentication and
// the standard health service.
func NewServer(logger *zap.Logger, tokens *auth.TokenManager, app string, ms services.MenuService, rs services.RoleService) *grpc.Server {
	server := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			interceptors.ZapLoggingInterceptor(logger, app),
			interceptors.AuthInterceptor(tokens, app),
		),
	)
	server.RegisterService(&MenuServiceDesc, NewMenuServiceServer(ms))
	server.RegisterService(&RoleServiceDesc, NewRoleServiceServer(rs))

	healthServer := health.NewServer()
	healthServer.SetServingStatus("admin.MenuService", healthpb.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus("admin.RoleService", healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(server, healthServer)
	return server
}
