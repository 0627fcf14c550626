package repositories

import (
	"context"
	"errors"
	"fmt"

	"admin-rbac/models"
	"admin-rbac/schema"

	"gorm.io/gorm"
)

// UserRepository interface defines administrator related database operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uint) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	Count(ctx context.Context) (int64, error)
	// RolesOf returns the roles attached to a user.
	RolesOf(ctx context.Context, userID uint) ([]models.Role, error)
}

// userRepository implements the UserRepository interface
type userRepository struct {
	db        *gorm.DB
	app       *schema.App
	roleUsers pivot
}

// NewUserRepository creates a new UserRepository bound to a namespace
func NewUserRepository(db *gorm.DB, app *schema.App) UserRepository {
	return &userRepository{
		db:        db,
		app:       app,
		roleUsers: pivot{table: app.Tables.RoleUsers, foreignKey: "user_id", relatedKey: "role_id", timestamps: true},
	}
}

func (r *userRepository) table(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Table(r.app.Tables.Users)
}

// Create creates a new User
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return r.table(ctx).Create(user).Error
}

// FindByID finds User by ID
func (r *userRepository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	result := r.table(ctx).Where("id = ?", id).First(&user)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if result.Error != nil {
		return nil, result.Error
	}
	return &user, nil
}

// FindByUsername finds User by Username
func (r *userRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	result := r.table(ctx).Where("username = ?", username).First(&user)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if result.Error != nil {
		return nil, result.Error
	}
	return &user, nil
}

// Count returns the number of administrators of the namespace
func (r *userRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.table(ctx).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("count %s: %w", r.app.Tables.Users, err)
	}
	return total, nil
}

func (r *userRepository) RolesOf(ctx context.Context, userID uint) ([]models.Role, error) {
	ids, err := r.roleUsers.relatedIDs(r.db.WithContext(ctx), []uint{userID})
	if err != nil {
		return nil, err
	}
	roles := []models.Role{}
	if len(ids[userID]) == 0 {
		return roles, nil
	}
	err = r.db.WithContext(ctx).Table(r.app.Tables.Roles).Where("id IN ?", ids[userID]).Order("id").Find(&roles).Error
	return roles, err
}
