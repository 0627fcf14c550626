package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"admin-rbac/models"
	"admin-rbac/schema"

	"gorm.io/gorm"
)

// RoleRepository defines role related database operations of one namespace
type RoleRepository interface {
	Create(ctx context.Context, role *models.Role) error
	Update(ctx context.Context, role *models.Role) error
	// Save creates the role when its ID is zero and updates it otherwise, syncing permissionIDs
	// in the same transaction. Nil permissionIDs leave the pivot untouched.
	Save(ctx context.Context, role *models.Role, permissionIDs []uint) error
	FindByID(ctx context.Context, id uint) (*models.Role, error)
	FindBySlug(ctx context.Context, slug string) (*models.Role, error)
	FindByIDs(ctx context.Context, ids []uint) ([]models.Role, error)
	List(ctx context.Context) ([]models.Role, error)
	// Delete detaches the permission, administrator and menu pivots, then removes the row.
	Delete(ctx context.Context, id uint) error

	// HasPermission reports whether the role is attached to a permission with slug.
	HasPermission(ctx context.Context, roleID uint, slug string) (bool, error)
	// PermissionIDs groups attached permission ids by role id with a single left join.
	PermissionIDs(ctx context.Context, roleIDs []uint) (map[uint][]uint, error)
	SyncPermissions(ctx context.Context, roleID uint, permissionIDs []uint) error
	AttachAdministrators(ctx context.Context, roleID uint, userIDs []uint) error
	// PivotCount counts pivot rows still referencing a role, keyed by pivot table.
	PivotCount(ctx context.Context, roleID uint) (map[string]int64, error)
}

type roleRepository struct {
	db  *gorm.DB
	app *schema.App

	permissions    pivot
	administrators pivot
	menus          pivot
}

func NewRoleRepository(db *gorm.DB, app *schema.App) RoleRepository {
	return &roleRepository{
		db:             db,
		app:            app,
		permissions:    pivot{table: app.Tables.RolePermissions, foreignKey: "role_id", relatedKey: "permission_id", timestamps: true},
		administrators: pivot{table: app.Tables.RoleUsers, foreignKey: "role_id", relatedKey: "user_id", timestamps: true},
		menus:          pivot{table: app.Tables.RoleMenu, foreignKey: "role_id", relatedKey: "menu_id", timestamps: true},
	}
}

func (r *roleRepository) table(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Table(r.app.Tables.Roles)
}

func (r *roleRepository) Create(ctx context.Context, role *models.Role) error {
	return r.table(ctx).Create(role).Error
}

func (r *roleRepository) Update(ctx context.Context, role *models.Role) error {
	return r.update(r.db.WithContext(ctx), role)
}

func (r *roleRepository) Save(ctx context.Context, role *models.Role, permissionIDs []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if role.ID == 0 {
			if err := tx.Table(r.app.Tables.Roles).Create(role).Error; err != nil {
				return err
			}
		} else if err := r.update(tx, role); err != nil {
			return err
		}
		if permissionIDs == nil {
			return nil
		}
		return r.permissions.sync(tx, role.ID, permissionIDs)
	})
}

func (r *roleRepository) update(tx *gorm.DB, role *models.Role) error {
	result := tx.Table(r.app.Tables.Roles).Where("id = ?", role.ID).Updates(map[string]interface{}{
		"name":       role.Name,
		"slug":       role.Slug,
		"updated_at": time.Now(),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRoleNotFound
	}
	return nil
}

func (r *roleRepository) FindByID(ctx context.Context, id uint) (*models.Role, error) {
	var role models.Role
	result := r.table(ctx).Where("id = ?", id).First(&role)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, ErrRoleNotFound
	}
	if result.Error != nil {
		return nil, result.Error
	}
	return &role, nil
}

func (r *roleRepository) FindBySlug(ctx context.Context, slug string) (*models.Role, error) {
	var role models.Role
	result := r.table(ctx).Where("slug = ?", slug).First(&role)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, ErrRoleNotFound
	}
	if result.Error != nil {
		return nil, result.Error
	}
	return &role, nil
}

func (r *roleRepository) FindByIDs(ctx context.Context, ids []uint) ([]models.Role, error) {
	roles := []models.Role{}
	if len(ids) == 0 {
		return roles, nil
	}
	err := r.table(ctx).Where("id IN ?", ids).Order("id").Find(&roles).Error
	return roles, err
}

func (r *roleRepository) List(ctx context.Context) ([]models.Role, error) {
	var roles []models.Role
	err := r.table(ctx).Order("id").Find(&roles).Error
	return roles, err
}

func (r *roleRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.administrators.detach(tx, id); err != nil {
			return err
		}
		if err := r.permissions.detach(tx, id); err != nil {
			return err
		}
		if err := r.menus.detach(tx, id); err != nil {
			return err
		}
		result := tx.Table(r.app.Tables.Roles).Where("id = ?", id).Delete(&models.Role{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrRoleNotFound
		}
		return nil
	})
}

func (r *roleRepository) HasPermission(ctx context.Context, roleID uint, slug string) (bool, error) {
	perms, rp := r.app.Tables.Permissions, r.app.Tables.RolePermissions

	var n int64
	err := r.db.WithContext(ctx).Table(perms).
		Joins(fmt.Sprintf("JOIN %s ON %s.permission_id = %s.id", rp, rp, perms)).
		Where(fmt.Sprintf("%s.role_id = ? AND %s.slug = ?", rp, perms), roleID, slug).
		Count(&n).Error
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *roleRepository) PermissionIDs(ctx context.Context, roleIDs []uint) (map[uint][]uint, error) {
	out := make(map[uint][]uint)
	if len(roleIDs) == 0 {
		return out, nil
	}
	roles, rp := r.app.Tables.Roles, r.app.Tables.RolePermissions

	var rows []struct {
		RoleID       uint
		PermissionID *uint
	}
	err := r.db.WithContext(ctx).Table(roles).
		Select(fmt.Sprintf("%s.id AS role_id, %s.permission_id AS permission_id", roles, rp)).
		Joins(fmt.Sprintf("LEFT JOIN %s ON %s.id = %s.role_id", rp, roles, rp)).
		Where(fmt.Sprintf("%s.id IN ?", roles), roleIDs).
		Order(fmt.Sprintf("%s.id, %s.permission_id", roles, rp)).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		ids, ok := out[row.RoleID]
		if !ok {
			ids = []uint{}
		}
		if row.PermissionID != nil {
			ids = append(ids, *row.PermissionID)
		}
		out[row.RoleID] = ids
	}
	return out, nil
}

func (r *roleRepository) SyncPermissions(ctx context.Context, roleID uint, permissionIDs []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return r.permissions.sync(tx, roleID, permissionIDs)
	})
}

func (r *roleRepository) AttachAdministrators(ctx context.Context, roleID uint, userIDs []uint) error {
	return r.administrators.attach(r.db.WithContext(ctx), roleID, unique(userIDs))
}

func (r *roleRepository) PivotCount(ctx context.Context, roleID uint) (map[string]int64, error) {
	out := make(map[string]int64, 3)
	for _, p := range []pivot{r.permissions, r.administrators, r.menus} {
		n, err := p.count(r.db.WithContext(ctx), roleID)
		if err != nil {
			return nil, err
		}
		out[p.table] = n
	}
	return out, nil
}
