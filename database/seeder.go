package database

import (
	"context"
	"fmt"
	"time"

	"admin-rbac/models"
	"admin-rbac/schema"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	DefaultAdminUsername = "admin"
	DefaultAdminPassword = "admin"
)

type seedMenu struct {
	menu     models.Menu
	children []models.Menu
}

var defaultPermissions = []struct {
	permission models.Permission
	children   []models.Permission
}{
	{
		permission: models.Permission{Name: "Auth management", Slug: "auth-management", Order: 1},
		children: []models.Permission{
			{Name: "Users", Slug: "users", HTTPPath: "/auth/users*", Order: 2},
			{Name: "Roles", Slug: "roles", HTTPPath: "/auth/roles*", Order: 3},
			{Name: "Permissions", Slug: "permissions", HTTPPath: "/auth/permissions*", Order: 4},
			{Name: "Menu", Slug: "menu", HTTPPath: "/auth/menu*", Order: 5},
			{Name: "Extension", Slug: "extension", HTTPPath: "/auth/extensions*", Order: 6},
		},
	},
}

var defaultMenus = []seedMenu{
	{menu: models.Menu{Title: "Index", Icon: "feather icon-bar-chart-2", URI: "/", Order: 1, Show: true}},
	{
		menu: models.Menu{Title: "Admin", Icon: "feather icon-settings", Order: 2, Show: true},
		children: []models.Menu{
			{Title: "Users", URI: "auth/users", Order: 3, Show: true},
			{Title: "Roles", URI: "auth/roles", Order: 4, Show: true},
			{Title: "Permission", URI: "auth/permissions", Order: 5, Show: true},
			{Title: "Menu", URI: "auth/menu", Order: 6, Show: true},
			{Title: "Extensions", URI: "auth/extensions", Order: 7, Show: true},
		},
	},
}

// SeedTables inserts the default administrator, role, permissions and menus of a namespace
// in a single transaction. Callers decide whether the namespace needs seeding.
func SeedTables(ctx context.Context, db *gorm.DB, app *schema.App) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(DefaultAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("could not hash default password: %w", err)
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()

		admin := models.User{Username: DefaultAdminUsername, Password: string(hashedPassword), Name: "Administrator"}
		if err := tx.Table(app.Tables.Users).Create(&admin).Error; err != nil {
			return fmt.Errorf("failed to seed administrator: %w", err)
		}

		role := models.Role{Name: "Administrator", Slug: models.Administrator}
		if err := tx.Table(app.Tables.Roles).Create(&role).Error; err != nil {
			return fmt.Errorf("failed to seed role %s: %w", role.Slug, err)
		}

		roleUser := models.RoleUser{RoleID: role.ID, UserID: admin.ID, CreatedAt: now, UpdatedAt: now}
		if err := tx.Table(app.Tables.RoleUsers).Create(&roleUser).Error; err != nil {
			return fmt.Errorf("failed to assign administrator role: %w", err)
		}

		for _, p := range defaultPermissions {
			parent := p.permission
			if err := tx.Table(app.Tables.Permissions).Create(&parent).Error; err != nil {
				return fmt.Errorf("failed to seed permission %s: %w", parent.Slug, err)
			}
			for _, child := range p.children {
				child.ParentID = parent.ID
				if err := tx.Table(app.Tables.Permissions).Create(&child).Error; err != nil {
					return fmt.Errorf("failed to seed permission %s: %w", child.Slug, err)
				}
			}
		}

		for _, m := range defaultMenus {
			parent := m.menu
			if err := tx.Table(app.Tables.Menu).Create(&parent).Error; err != nil {
				return fmt.Errorf("failed to seed menu %s: %w", parent.Title, err)
			}
			for _, child := range m.children {
				child.ParentID = parent.ID
				if err := tx.Table(app.Tables.Menu).Create(&child).Error; err != nil {
					return fmt.Errorf("failed to seed menu %s: %w", child.Title, err)
				}
			}
		}
		return nil
	})
}
