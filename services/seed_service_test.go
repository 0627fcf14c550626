package services

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"admin-rbac/cache"
	"admin-rbac/config"
	"admin-rbac/database"
	"admin-rbac/models"
	"admin-rbac/repositories"
	"admin-rbac/schema"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

const seedNamespace = `
my-app:
  database:
    connection: memory
    users_table: my_app_users
    menu_table: my_app_menu
    roles_table: my_app_roles
    permissions_table: my_app_permissions
    role_menu_table: my_app_role_menu
    permission_menu_table: my_app_permission_menu
    role_users_table: my_app_role_users
    role_permissions_table: my_app_role_permissions
  permission:
    enable: true
  menu:
    cache:
      enable: true
      store: array
`

type seedFixture struct {
	seeder *SeedService
	conns  *database.Manager
	stores *cache.Manager
	reg    *schema.Registry
}

func newSeedFixture(t *testing.T) *seedFixture {
	t.Helper()
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(seedNamespace)))

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	conns := database.NewManager(config.DatabaseConfig{
		Default: "memory",
		Connections: map[string]config.DatabaseConnection{
			"memory": {Driver: "sqlite", DSN: dsn},
		},
	}, logger.Default.LogMode(logger.Silent))
	t.Cleanup(func() { _ = conns.Close() })

	stores := cache.NewManager(config.CacheConfig{}, afero.NewMemMapFs())
	reg := schema.NewRegistry(config.NewResolver(v))
	return &seedFixture{
		seeder: NewSeedService(reg, conns, stores, zapNop()),
		conns:  conns,
		stores: stores,
		reg:    reg,
	}
}

func TestNamespaceName(t *testing.T) {
	assert.Equal(t, "my-app", NamespaceName("MyApp"))
	assert.Equal(t, "my-app", NamespaceName("my-app"))
	assert.Equal(t, "admin", NamespaceName("Admin"))
	assert.Equal(t, "admin", NamespaceName("admin"))
	assert.Equal(t, "my_app", NamespaceName("my_app"))
	assert.Equal(t, "my_shop-admin", NamespaceName("my_shopAdmin"))
	assert.Equal(t, "httpadmin", NamespaceName("HTTPAdmin"))
	assert.Equal(t, "my-app2", NamespaceName("myApp2"))
	assert.Equal(t, "app2admin", NamespaceName("App2Admin"))
}

func TestSeedService_SeedsEmptyNamespace(t *testing.T) {
	ctx := context.Background()
	f := newSeedFixture(t)

	seeded, err := f.seeder.SeedApp(ctx, "MyApp")
	require.NoError(t, err)
	assert.True(t, seeded)

	app, err := f.reg.Get("my-app")
	require.NoError(t, err)
	db, err := f.conns.For(app)
	require.NoError(t, err)

	users := repositories.NewUserRepository(db, app)
	total, err := users.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	roles, err := repositories.NewRoleRepository(db, app).List(ctx)
	require.NoError(t, err)
	require.Len(t, roles, 1)
	assert.Equal(t, uint(models.AdministratorID), roles[0].ID)
	assert.Equal(t, models.Administrator, roles[0].Slug)

	admin, err := users.FindByUsername(ctx, database.DefaultAdminUsername)
	require.NoError(t, err)
	userRoles, err := users.RolesOf(ctx, admin.ID)
	require.NoError(t, err)
	require.Len(t, userRoles, 1)

	menus, err := NewMenuService(app, repositories.NewMenuRepository(db, app), NewMenuCache(app, f.stores, zapNop()), zapNop()).FetchAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Index", "Admin"}, titles(menus))
	assert.Equal(t, []string{"Users", "Roles", "Permission", "Menu", "Extensions"}, titles(menus[1].Children))

	perms, err := repositories.NewPermissionRepository(db, app).List(ctx)
	require.NoError(t, err)
	assert.Len(t, perms, 6)
}

func TestSeedService_PopulatedNamespaceIsUntouched(t *testing.T) {
	ctx := context.Background()
	f := newSeedFixture(t)

	seeded, err := f.seeder.SeedApp(ctx, "my-app")
	require.NoError(t, err)
	require.True(t, seeded)

	app, err := f.reg.Get("my-app")
	require.NoError(t, err)
	db, err := f.conns.For(app)
	require.NoError(t, err)
	menus := repositories.NewMenuRepository(db, app)
	before, err := menus.FindAll(ctx, false, false)
	require.NoError(t, err)

	seeded, err = f.seeder.SeedApp(ctx, "MyApp")
	require.NoError(t, err)
	assert.False(t, seeded)

	after, err := menus.FindAll(ctx, false, false)
	require.NoError(t, err)
	assert.Len(t, after, len(before))

	total, err := repositories.NewUserRepository(db, app).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestSeedService_PopulatedNamespaceKeepsSchema(t *testing.T) {
	ctx := context.Background()
	f := newSeedFixture(t)

	db, err := f.conns.Connection("memory")
	require.NoError(t, err)
	require.NoError(t, db.Exec(`CREATE TABLE my_app_users (
		id INTEGER PRIMARY KEY,
		username VARCHAR(120) NOT NULL,
		password VARCHAR(80) NOT NULL,
		name VARCHAR(255) NOT NULL
	)`).Error)
	require.NoError(t, db.Exec("INSERT INTO my_app_users (username, password, name) VALUES (?, ?, ?)", "legacy", "x", "Legacy").Error)

	seeded, err := f.seeder.SeedApp(ctx, "MyApp")
	require.NoError(t, err)
	assert.False(t, seeded)

	assert.False(t, db.Migrator().HasColumn("my_app_users", "remember_token"), "users table is not migrated")
	tables, err := db.Migrator().GetTables()
	require.NoError(t, err)
	assert.Equal(t, []string{"my_app_users"}, tables, "no other table is created")
}

func TestSeedService_UnconfiguredNamespace(t *testing.T) {
	ctx := context.Background()
	f := newSeedFixture(t)

	seeded, err := f.seeder.SeedApp(ctx, "OtherApp")
	assert.False(t, seeded)
	assert.ErrorIs(t, err, ErrConfigName)
	assert.EqualError(t, err, "Config name was wrong.")

	db, err := f.conns.Connection("memory")
	require.NoError(t, err)
	tables, err := db.Migrator().GetTables()
	require.NoError(t, err)
	assert.Empty(t, tables, "no tables are created")
}
