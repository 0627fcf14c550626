package repositories

import (
	"context"
	"errors"

	"admin-rbac/models"
	"admin-rbac/schema"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PermissionRepository reads and writes the permissions table of a namespace
type PermissionRepository interface {
	Create(ctx context.Context, permission *models.Permission) error
	FindBySlug(ctx context.Context, slug string) (*models.Permission, error)
	FindByIDs(ctx context.Context, ids []uint) ([]models.Permission, error)
	List(ctx context.Context) ([]models.Permission, error)
}

type permissionRepository struct {
	db  *gorm.DB
	app *schema.App
}

func NewPermissionRepository(db *gorm.DB, app *schema.App) PermissionRepository {
	return &permissionRepository{db: db, app: app}
}

func (r *permissionRepository) table(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Table(r.app.Tables.Permissions)
}

func (r *permissionRepository) Create(ctx context.Context, permission *models.Permission) error {
	return r.table(ctx).Create(permission).Error
}

func (r *permissionRepository) FindBySlug(ctx context.Context, slug string) (*models.Permission, error) {
	var permission models.Permission
	result := r.table(ctx).Where("slug = ?", slug).First(&permission)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, ErrPermissionNotFound
	}
	if result.Error != nil {
		return nil, result.Error
	}
	return &permission, nil
}

func (r *permissionRepository) FindByIDs(ctx context.Context, ids []uint) ([]models.Permission, error) {
	permissions := []models.Permission{}
	if len(ids) == 0 {
		return permissions, nil
	}
	err := r.table(ctx).Where("id IN ?", ids).Order(orderColumn()).Order("id").Find(&permissions).Error
	return permissions, err
}

func (r *permissionRepository) List(ctx context.Context) ([]models.Permission, error) {
	var permissions []models.Permission
	err := r.table(ctx).Order(orderColumn()).Order("id").Find(&permissions).Error
	return permissions, err
}

// orderColumn quotes the "order" sort column, a reserved word in every dialect.
func orderColumn() clause.OrderByColumn {
	return clause.OrderByColumn{Column: clause.Column{Name: "order"}}
}
