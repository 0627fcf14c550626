package grpcserver

import (
	"context"
	"net"
	"testing"

	"admin-rbac/auth"
	"admin-rbac/cache"
	"admin-rbac/config"
	"admin-rbac/database"
	"admin-rbac/models"
	"admin-rbac/repositories"
	"admin-rbac/services"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type grpcFixture struct {
	conn  *grpc.ClientConn
	token string
}

func newGRPCFixture(t *testing.T) *grpcFixture {
	t.Helper()
	ctx := context.Background()
	app := testApp()
	db := setupTestDB(t, app)
	require.NoError(t, database.SeedTables(ctx, db, app))

	logger := zap.NewNop()
	stores := cache.NewManager(config.CacheConfig{}, afero.NewMemMapFs())
	menuCache := services.NewMenuCache(app, stores, logger.Sugar())
	roles := repositories.NewRoleRepository(db, app)
	ms := services.NewMenuService(app, repositories.NewMenuRepository(db, app), menuCache, logger.Sugar())
	rs := services.NewRoleService(app, roles, repositories.NewPermissionRepository(db, app), menuCache, logger.Sugar())

	editor := &models.Role{Name: "Editor", Slug: "editor"}
	require.NoError(t, roles.Create(ctx, editor))
	require.NoError(t, roles.SyncPermissions(ctx, editor.ID, []uint{2}))

	tokens := auth.NewTokenManager([]byte("secret"), "admin-rbac")
	server := NewServer(logger, tokens, app.Name, ms, rs)

	lis := bufconn.Listen(1024 * 1024)
	go func() { _ = server.Serve(lis) }()
	t.Cleanup(server.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	token, err := tokens.GenerateToken(app.Name, &models.User{ID: 1, Username: "admin"})
	require.NoError(t, err)
	return &grpcFixture{conn: conn, token: token}
}

func (f *grpcFixture) authed() context.Context {
	return metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer "+f.token)
}

func TestMenuService_AllNodes(t *testing.T) {
	f := newGRPCFixture(t)

	req, err := structpb.NewStruct(map[string]interface{}{"force": true})
	require.NoError(t, err)

	out := new(structpb.ListValue)
	require.NoError(t, f.conn.Invoke(f.authed(), "/admin.MenuService/AllNodes", req, out))
	require.Len(t, out.GetValues(), 2)

	admin := out.GetValues()[1].GetStructValue().GetFields()
	assert.Equal(t, "Admin", admin["title"].GetStringValue())
	assert.Len(t, admin["children"].GetListValue().GetValues(), 5)

	t.Run("Requires a token", func(t *testing.T) {
		err := f.conn.Invoke(context.Background(), "/admin.MenuService/AllNodes", req, new(structpb.ListValue))
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	})
}

func TestRoleService_Can(t *testing.T) {
	f := newGRPCFixture(t)

	can := func(roleID float64, permission string) (bool, error) {
		req, err := structpb.NewStruct(map[string]interface{}{"role_id": roleID, "permission": permission})
		require.NoError(t, err)
		out := new(wrapperspb.BoolValue)
		if err := f.conn.Invoke(f.authed(), "/admin.RoleService/Can", req, out); err != nil {
			return false, err
		}
		return out.GetValue(), nil
	}

	granted, err := can(2, "users")
	require.NoError(t, err)
	assert.True(t, granted)

	granted, err = can(2, "roles")
	require.NoError(t, err)
	assert.False(t, granted)

	_, err = can(0, "users")
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestRoleService_GetPermissionID(t *testing.T) {
	f := newGRPCFixture(t)

	req, err := structpb.NewList([]interface{}{1, 2})
	require.NoError(t, err)
	out := new(structpb.Struct)
	require.NoError(t, f.conn.Invoke(f.authed(), "/admin.RoleService/GetPermissionID", req, out))

	assert.Empty(t, out.GetFields()["1"].GetListValue().GetValues())
	editor := out.GetFields()["2"].GetListValue().GetValues()
	require.Len(t, editor, 1)
	assert.Equal(t, float64(2), editor[0].GetNumberValue())
}

func TestHealthIsPublic(t *testing.T) {
	f := newGRPCFixture(t)

	resp, err := healthpb.NewHealthClient(f.conn).Check(context.Background(), &healthpb.HealthCheckRequest{Service: "admin.MenuService"})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}
