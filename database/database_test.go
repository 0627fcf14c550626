package database

import (
	"context"
	"testing"

	"admin-rbac/config"
	"admin-rbac/models"
	"admin-rbac/schema"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func testApp(prefix string) *schema.App {
	return &schema.App{
		Name: prefix,
		Tables: schema.Tables{
			Users:           prefix + "_users",
			Menu:            prefix + "_menu",
			Roles:           prefix + "_roles",
			Permissions:     prefix + "_permissions",
			RoleMenu:        prefix + "_role_menu",
			PermissionMenu:  prefix + "_permission_menu",
			RoleUsers:       prefix + "_role_users",
			RolePermissions: prefix + "_role_permissions",
		},
	}
}

func testManager(name string) *Manager {
	return NewManager(config.DatabaseConfig{
		Default: "memory",
		Connections: map[string]config.DatabaseConnection{
			"memory": {Driver: "sqlite", DSN: "file:" + name + "?mode=memory&cache=shared"},
			"broken": {Driver: "oracle", DSN: "x"},
		},
	}, logger.Default.LogMode(logger.Silent))
}

func TestOpen(t *testing.T) {
	_, err := Open(config.DatabaseConnection{Driver: "oracle"}, logger.Default)
	assert.EqualError(t, err, `unsupported database driver "oracle"`)
}

func TestManager(t *testing.T) {
	m := testManager("manager")
	defer m.Close()

	db, err := m.Connection("")
	require.NoError(t, err)
	same, err := m.Connection("memory")
	require.NoError(t, err)
	assert.Same(t, db, same)

	app := testApp("admin")
	app.Connection = "memory"
	forApp, err := m.For(app)
	require.NoError(t, err)
	assert.Same(t, db, forApp)

	_, err = m.Connection("missing")
	assert.Error(t, err)
	_, err = m.Connection("broken")
	assert.Error(t, err)

	require.NoError(t, m.Close())
	reopened, err := m.Connection("memory")
	require.NoError(t, err)
	assert.NotSame(t, db, reopened)
}

func TestMigrateAndSeed(t *testing.T) {
	ctx := context.Background()
	m := testManager("migrate")
	defer m.Close()
	db, err := m.Connection("")
	require.NoError(t, err)

	// Two namespaces share one connection without clashing.
	for _, prefix := range []string{"admin", "shop"} {
		app := testApp(prefix)
		require.NoError(t, Migrate(db, app))
		require.NoError(t, Migrate(db, app), "migrating twice is a no-op")
		assert.True(t, db.Migrator().HasIndex(app.Tables.Users, app.Tables.Users+"_username_unique"))
		for _, table := range []string{app.Tables.Users, app.Tables.Menu, app.Tables.RoleMenu, app.Tables.PermissionMenu} {
			assert.True(t, db.Migrator().HasTable(table), table)
		}
		require.NoError(t, SeedTables(ctx, db, app))
	}

	app := testApp("shop")
	var menus []models.Menu
	require.NoError(t, db.Table(app.Tables.Menu).Find(&menus).Error)
	assert.Len(t, menus, 7)

	var role models.Role
	require.NoError(t, db.Table(app.Tables.Roles).First(&role).Error)
	assert.Equal(t, models.Administrator, role.Slug)

	var pivot models.RoleUser
	require.NoError(t, db.Table(app.Tables.RoleUsers).First(&pivot).Error)
	assert.Equal(t, role.ID, pivot.RoleID)

	t.Run("Seeding twice violates unique usernames", func(t *testing.T) {
		assert.Error(t, SeedTables(ctx, db, app))

		var total int64
		require.NoError(t, db.Table(app.Tables.Menu).Count(&total).Error)
		assert.Equal(t, int64(7), total, "the failed seed rolled back")
	})
}
