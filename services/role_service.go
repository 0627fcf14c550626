package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"admin-rbac/models"
	"admin-rbac/repositories"
	"admin-rbac/schema"

	"go.uber.org/zap"
)

// RoleService exposes roles and their permissions for one namespace
type RoleService interface {
	Can(ctx context.Context, roleID uint, permission string) (bool, error)
	Cannot(ctx context.Context, roleID uint, permission string) (bool, error)
	// GetPermissionID maps each role id to its permission ids. Empty input yields an empty map.
	GetPermissionID(ctx context.Context, roleIDs []uint) (map[uint][]uint, error)
	IsAdministrator(slug string) bool

	Find(ctx context.Context, id uint) (*models.Role, error)
	List(ctx context.Context) ([]models.Role, error)
	Create(ctx context.Context, input *RoleInput) (*models.Role, error)
	Update(ctx context.Context, id uint, input *RoleInput) (*models.Role, error)
	Delete(ctx context.Context, id uint) error
}

type RoleInput struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Permissions []uint `json:"permissions"` // nil keeps the current permissions on update
}

type roleService struct {
	app         *schema.App
	repo        repositories.RoleRepository
	permissions repositories.PermissionRepository
	menuCache   *MenuCache
	logger      *zap.SugaredLogger
}

var _ RoleService = (*roleService)(nil)

func NewRoleService(app *schema.App, repo repositories.RoleRepository, permissions repositories.PermissionRepository, menuCache *MenuCache, logger *zap.SugaredLogger) RoleService {
	return &roleService{app: app, repo: repo, permissions: permissions, menuCache: menuCache, logger: logger.Named("RoleService")}
}

func (s *roleService) Can(ctx context.Context, roleID uint, permission string) (bool, error) {
	return s.repo.HasPermission(ctx, roleID, permission)
}

func (s *roleService) Cannot(ctx context.Context, roleID uint, permission string) (bool, error) {
	can, err := s.Can(ctx, roleID, permission)
	if err != nil {
		return false, err
	}
	return !can, nil
}

func (s *roleService) GetPermissionID(ctx context.Context, roleIDs []uint) (map[uint][]uint, error) {
	return s.repo.PermissionIDs(ctx, roleIDs)
}

func (s *roleService) IsAdministrator(slug string) bool {
	return models.IsAdministrator(slug)
}

func (s *roleService) Find(ctx context.Context, id uint) (*models.Role, error) {
	role, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	ids, err := s.repo.PermissionIDs(ctx, []uint{id})
	if err != nil {
		return nil, err
	}
	role.Permissions, err = s.permissions.FindByIDs(ctx, ids[id])
	if err != nil {
		return nil, err
	}
	return role, nil
}

func (s *roleService) List(ctx context.Context) ([]models.Role, error) {
	return s.repo.List(ctx)
}

func (s *roleService) Create(ctx context.Context, input *RoleInput) (*models.Role, error) {
	if err := validateRole(input); err != nil {
		return nil, err
	}
	if err := s.checkSlug(ctx, 0, input.Slug); err != nil {
		return nil, err
	}

	role := &models.Role{Name: input.Name, Slug: input.Slug}
	if err := s.repo.Save(ctx, role, input.Permissions); err != nil {
		return nil, fmt.Errorf("Failed to create role: %w", err)
	}
	s.logger.Infow("Created role", "app", s.app.Name, "role_id", role.ID, "slug", role.Slug)
	return s.Find(ctx, role.ID)
}

func (s *roleService) Update(ctx context.Context, id uint, input *RoleInput) (*models.Role, error) {
	if err := validateRole(input); err != nil {
		return nil, err
	}
	if err := s.checkSlug(ctx, id, input.Slug); err != nil {
		return nil, err
	}

	role := &models.Role{ID: id, Name: input.Name, Slug: input.Slug}
	if err := s.repo.Save(ctx, role, input.Permissions); err != nil {
		return nil, err
	}
	// Cached menus embed their roles.
	if err := s.menuCache.FlushCache(ctx); err != nil {
		return nil, err
	}
	s.logger.Infow("Updated role", "app", s.app.Name, "role_id", id)
	return s.Find(ctx, id)
}

func (s *roleService) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Infow("Deleted role", "app", s.app.Name, "role_id", id)
	return s.menuCache.FlushCache(ctx)
}

func (s *roleService) checkSlug(ctx context.Context, id uint, slug string) error {
	existing, err := s.repo.FindBySlug(ctx, slug)
	if errors.Is(err, repositories.ErrRoleNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID != id {
		return ErrRoleSlugTaken
	}
	return nil
}

func validateRole(input *RoleInput) error {
	if strings.TrimSpace(input.Name) == "" || strings.TrimSpace(input.Slug) == "" {
		return ErrInvalidRole
	}
	return nil
}
