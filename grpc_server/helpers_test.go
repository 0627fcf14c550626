package grpcserver

import (
	"fmt"
	"strings"
	"testing"

	"admin-rbac/database"
	"admin-rbac/schema"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testApp() *schema.App {
	return &schema.App{
		Name: "admin",
		Tables: schema.Tables{
			Users:           "admin_users",
			Menu:            "admin_menu",
			Roles:           "admin_roles",
			Permissions:     "admin_permissions",
			RoleMenu:        "admin_role_menu",
			PermissionMenu:  "admin_permission_menu",
			RoleUsers:       "admin_role_users",
			RolePermissions: "admin_role_permissions",
		},
		PermissionEnable: true,
		CacheStore:       "array",
	}
}

// setupTestDB opens a private in-memory database with every table of app migrated.
func setupTestDB(t *testing.T, app *schema.App) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err, "Failed to connect to test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db, app))
	return db
}
