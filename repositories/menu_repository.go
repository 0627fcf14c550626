package repositories

import (
	"context"
	"errors"
	"time"

	"admin-rbac/models"
	"admin-rbac/schema"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Scope narrows a menu query, e.g. func(db *gorm.DB) *gorm.DB { return db.Where("extension = ?", "") }.
type Scope = func(*gorm.DB) *gorm.DB

// Position places a menu under a parent at a sibling order.
type Position struct {
	ID       uint
	ParentID uint
	Order    int
}

// MenuRepository defines menu related database operations of one namespace
type MenuRepository interface {
	// FindAll returns flat menu rows ordered by sort key, optionally loading roles and permissions.
	FindAll(ctx context.Context, withRoles, withPermissions bool, scopes ...Scope) ([]models.Menu, error)
	FindByID(ctx context.Context, id uint) (*models.Menu, error)
	// Parents maps every menu id to its parent id.
	Parents(ctx context.Context) (map[uint]uint, error)
	// NextOrder returns one past the largest sort key among the children of parentID.
	NextOrder(ctx context.Context, parentID uint) (int, error)
	Create(ctx context.Context, menu *models.Menu) error
	Update(ctx context.Context, menu *models.Menu) error
	// Save creates the menu when its ID is zero and updates it otherwise, syncing the role and
	// permission pivots in the same transaction. A nil id list leaves that pivot untouched.
	Save(ctx context.Context, menu *models.Menu, roleIDs, permissionIDs []uint) error
	// Delete detaches the role and permission pivots, then removes the row.
	Delete(ctx context.Context, id uint) error
	SyncRoles(ctx context.Context, menuID uint, roleIDs []uint) error
	SyncPermissions(ctx context.Context, menuID uint, permissionIDs []uint) error
	UpdatePositions(ctx context.Context, positions []Position) error
	PivotCount(ctx context.Context, menuID uint) (map[string]int64, error)
}

type menuRepository struct {
	db  *gorm.DB
	app *schema.App

	roles       pivot
	permissions pivot
}

func NewMenuRepository(db *gorm.DB, app *schema.App) MenuRepository {
	return &menuRepository{
		db:          db,
		app:         app,
		roles:       pivot{table: app.Tables.RoleMenu, foreignKey: "menu_id", relatedKey: "role_id", timestamps: true},
		permissions: pivot{table: app.Tables.PermissionMenu, foreignKey: "menu_id", relatedKey: "permission_id", timestamps: true},
	}
}

func (r *menuRepository) table(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Table(r.app.Tables.Menu)
}

func (r *menuRepository) FindAll(ctx context.Context, withRoles, withPermissions bool, scopes ...Scope) ([]models.Menu, error) {
	menus := []models.Menu{}
	err := r.table(ctx).Scopes(scopes...).Order(orderColumn()).Order("id").Find(&menus).Error
	if err != nil {
		return nil, err
	}
	if len(menus) == 0 {
		return menus, nil
	}

	ids := make([]uint, len(menus))
	for i, m := range menus {
		ids[i] = m.ID
	}

	if withRoles {
		byMenu, err := r.roles.relatedIDs(r.db.WithContext(ctx), ids)
		if err != nil {
			return nil, err
		}
		var roles []models.Role
		if related := flatten(byMenu); len(related) > 0 {
			if err := r.db.WithContext(ctx).Table(r.app.Tables.Roles).Where("id IN ?", related).Find(&roles).Error; err != nil {
				return nil, err
			}
		}
		index := make(map[uint]models.Role, len(roles))
		for _, role := range roles {
			index[role.ID] = role
		}
		for i := range menus {
			menus[i].Roles = []models.Role{}
			for _, id := range byMenu[menus[i].ID] {
				if role, ok := index[id]; ok {
					menus[i].Roles = append(menus[i].Roles, role)
				}
			}
		}
	}

	if withPermissions {
		byMenu, err := r.permissions.relatedIDs(r.db.WithContext(ctx), ids)
		if err != nil {
			return nil, err
		}
		var permissions []models.Permission
		if related := flatten(byMenu); len(related) > 0 {
			if err := r.db.WithContext(ctx).Table(r.app.Tables.Permissions).Where("id IN ?", related).Find(&permissions).Error; err != nil {
				return nil, err
			}
		}
		index := make(map[uint]models.Permission, len(permissions))
		for _, p := range permissions {
			index[p.ID] = p
		}
		for i := range menus {
			menus[i].Permissions = []models.Permission{}
			for _, id := range byMenu[menus[i].ID] {
				if p, ok := index[id]; ok {
					menus[i].Permissions = append(menus[i].Permissions, p)
				}
			}
		}
	}
	return menus, nil
}

func (r *menuRepository) FindByID(ctx context.Context, id uint) (*models.Menu, error) {
	var menu models.Menu
	result := r.table(ctx).Where("id = ?", id).First(&menu)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, ErrMenuNotFound
	}
	if result.Error != nil {
		return nil, result.Error
	}
	return &menu, nil
}

func (r *menuRepository) Parents(ctx context.Context) (map[uint]uint, error) {
	var rows []struct {
		ID       uint
		ParentID uint
	}
	if err := r.table(ctx).Select("id, parent_id").Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[uint]uint, len(rows))
	for _, row := range rows {
		out[row.ID] = row.ParentID
	}
	return out, nil
}

func (r *menuRepository) NextOrder(ctx context.Context, parentID uint) (int, error) {
	var max int
	err := r.table(ctx).
		Select("COALESCE(MAX(?), 0)", clause.Column{Name: "order"}).
		Where("parent_id = ?", parentID).
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	return max + 1, nil
}

func (r *menuRepository) Create(ctx context.Context, menu *models.Menu) error {
	return r.table(ctx).Create(menu).Error
}

func (r *menuRepository) Update(ctx context.Context, menu *models.Menu) error {
	return r.update(r.db.WithContext(ctx), menu)
}

func (r *menuRepository) Save(ctx context.Context, menu *models.Menu, roleIDs, permissionIDs []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if menu.ID == 0 {
			if err := tx.Table(r.app.Tables.Menu).Create(menu).Error; err != nil {
				return err
			}
		} else if err := r.update(tx, menu); err != nil {
			return err
		}
		if roleIDs != nil {
			if err := r.roles.sync(tx, menu.ID, roleIDs); err != nil {
				return err
			}
		}
		if permissionIDs != nil {
			if err := r.permissions.sync(tx, menu.ID, permissionIDs); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *menuRepository) update(tx *gorm.DB, menu *models.Menu) error {
	result := tx.Table(r.app.Tables.Menu).Where("id = ?", menu.ID).Updates(map[string]interface{}{
		"parent_id":  menu.ParentID,
		"order":      menu.Order,
		"title":      menu.Title,
		"icon":       menu.Icon,
		"uri":        menu.URI,
		"extension":  menu.Extension,
		"show":       menu.Show,
		"updated_at": time.Now(),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrMenuNotFound
	}
	return nil
}

func (r *menuRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.roles.detach(tx, id); err != nil {
			return err
		}
		if err := r.permissions.detach(tx, id); err != nil {
			return err
		}
		result := tx.Table(r.app.Tables.Menu).Where("id = ?", id).Delete(&models.Menu{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrMenuNotFound
		}
		return nil
	})
}

func (r *menuRepository) SyncRoles(ctx context.Context, menuID uint, roleIDs []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return r.roles.sync(tx, menuID, roleIDs)
	})
}

func (r *menuRepository) SyncPermissions(ctx context.Context, menuID uint, permissionIDs []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return r.permissions.sync(tx, menuID, permissionIDs)
	})
}

func (r *menuRepository) UpdatePositions(ctx context.Context, positions []Position) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, p := range positions {
			result := tx.Table(r.app.Tables.Menu).Where("id = ?", p.ID).Updates(map[string]interface{}{
				"parent_id":  p.ParentID,
				"order":      p.Order,
				"updated_at": time.Now(),
			})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return ErrMenuNotFound
			}
		}
		return nil
	})
}

func (r *menuRepository) PivotCount(ctx context.Context, menuID uint) (map[string]int64, error) {
	out := make(map[string]int64, 2)
	for _, p := range []pivot{r.roles, r.permissions} {
		n, err := p.count(r.db.WithContext(ctx), menuID)
		if err != nil {
			return nil, err
		}
		out[p.table] = n
	}
	return out, nil
}
