package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"admin-rbac/models"
	"admin-rbac/repositories"
	"admin-rbac/schema"
	"admin-rbac/tree"

	"go.uber.org/zap"
)

// MenuService exposes the menu tree of one namespace
type MenuService interface {
	// AllNodes returns the whole tree. force or any scope bypasses the cache.
	AllNodes(ctx context.Context, force bool, scopes ...repositories.Scope) ([]models.Menu, error)
	// FetchAll queries the store and assembles the tree.
	FetchAll(ctx context.Context, scopes ...repositories.Scope) ([]models.Menu, error)
	WithPermission() bool
	WithRole() bool

	Find(ctx context.Context, id uint) (*models.Menu, error)
	// Save creates the menu when its ID is zero and updates it otherwise.
	Save(ctx context.Context, menu *models.Menu) error
	// SaveWithRelations saves the menu and its role and permission bindings atomically.
	// A nil id list, or a binding switched off for the namespace, leaves that relation untouched.
	SaveWithRelations(ctx context.Context, menu *models.Menu, roleIDs, permissionIDs []uint) error
	Delete(ctx context.Context, id uint) error
	SyncRoles(ctx context.Context, menuID uint, roleIDs []uint) error
	SyncPermissions(ctx context.Context, menuID uint, permissionIDs []uint) error
	// SaveOrder rewrites parent ids and sort keys from a nested ordering.
	SaveOrder(ctx context.Context, nodes []OrderNode) error
	SelectOptions(ctx context.Context) ([]Option, error)
}

// OrderNode is one entry of a nested ordering submitted by the menu editor.
type OrderNode struct {
	ID       uint        `json:"id"`
	Children []OrderNode `json:"children,omitempty"`
}

// Option is a menu flattened for a parent selector.
type Option struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
}

type menuService struct {
	app    *schema.App
	repo   repositories.MenuRepository
	cache  *MenuCache
	logger *zap.SugaredLogger
}

var _ MenuService = (*menuService)(nil)

func NewMenuService(app *schema.App, repo repositories.MenuRepository, cache *MenuCache, logger *zap.SugaredLogger) MenuService {
	return &menuService{app: app, repo: repo, cache: cache, logger: logger.Named("MenuService")}
}

func (s *menuService) AllNodes(ctx context.Context, force bool, scopes ...repositories.Scope) ([]models.Menu, error) {
	if force || len(scopes) > 0 {
		return s.FetchAll(ctx, scopes...)
	}
	return s.cache.Remember(ctx, func() ([]models.Menu, error) {
		return s.FetchAll(ctx)
	})
}

func (s *menuService) FetchAll(ctx context.Context, scopes ...repositories.Scope) ([]models.Menu, error) {
	menus, err := s.repo.FindAll(ctx, true, s.WithPermission(), scopes...)
	if err != nil {
		return nil, err
	}
	nodes := tree.Build(menus, func(m models.Menu, children []models.Menu) models.Menu {
		m.Children = children
		return m
	})
	if nodes == nil {
		nodes = []models.Menu{}
	}
	return nodes, nil
}

func (s *menuService) WithPermission() bool {
	return s.app.WithPermission()
}

func (s *menuService) WithRole() bool {
	return s.app.WithRole()
}

func (s *menuService) Find(ctx context.Context, id uint) (*models.Menu, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *menuService) Save(ctx context.Context, menu *models.Menu) error {
	return s.SaveWithRelations(ctx, menu, nil, nil)
}

func (s *menuService) SaveWithRelations(ctx context.Context, menu *models.Menu, roleIDs, permissionIDs []uint) error {
	if !s.WithRole() {
		roleIDs = nil
	}
	if !s.WithPermission() {
		permissionIDs = nil
	}
	if strings.TrimSpace(menu.Title) == "" {
		return ErrInvalidMenu
	}
	if err := s.checkParent(ctx, menu); err != nil {
		return err
	}

	if menu.ID == 0 {
		if menu.Order == 0 {
			next, err := s.repo.NextOrder(ctx, menu.ParentID)
			if err != nil {
				return fmt.Errorf("determine menu order: %w", err)
			}
			menu.Order = next
		}
		if err := s.repo.Save(ctx, menu, roleIDs, permissionIDs); err != nil {
			menu.ID = 0
			return fmt.Errorf("Failed to create menu: %w", err)
		}
		s.logger.Infow("Created menu", "app", s.app.Name, "menu_id", menu.ID, "parent_id", menu.ParentID)
	} else {
		if err := s.repo.Save(ctx, menu, roleIDs, permissionIDs); err != nil {
			return err
		}
		s.logger.Infow("Updated menu", "app", s.app.Name, "menu_id", menu.ID)
	}
	return s.cache.FlushCache(ctx)
}

func (s *menuService) checkParent(ctx context.Context, menu *models.Menu) error {
	if menu.ParentID == tree.Root {
		return nil
	}
	parents, err := s.repo.Parents(ctx)
	if err != nil {
		return err
	}
	if _, ok := parents[menu.ParentID]; !ok {
		return ErrInvalidParent
	}
	if menu.ID != 0 && tree.CreatesCycle(parents, menu.ID, menu.ParentID) {
		return ErrMenuCycle
	}
	return nil
}

func (s *menuService) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Infow("Deleted menu", "app", s.app.Name, "menu_id", id)
	return s.cache.FlushCache(ctx)
}

func (s *menuService) SyncRoles(ctx context.Context, menuID uint, roleIDs []uint) error {
	if _, err := s.repo.FindByID(ctx, menuID); err != nil {
		return err
	}
	if err := s.repo.SyncRoles(ctx, menuID, roleIDs); err != nil {
		return err
	}
	return s.cache.FlushCache(ctx)
}

func (s *menuService) SyncPermissions(ctx context.Context, menuID uint, permissionIDs []uint) error {
	if _, err := s.repo.FindByID(ctx, menuID); err != nil {
		return err
	}
	if err := s.repo.SyncPermissions(ctx, menuID, permissionIDs); err != nil {
		return err
	}
	return s.cache.FlushCache(ctx)
}

func (s *menuService) SaveOrder(ctx context.Context, nodes []OrderNode) error {
	var positions []repositories.Position
	seen := make(map[uint]bool)
	order := 0

	var walk func(nodes []OrderNode, parentID uint) error
	walk = func(nodes []OrderNode, parentID uint) error {
		for _, n := range nodes {
			if n.ID == 0 || seen[n.ID] {
				return ErrInvalidOrder
			}
			seen[n.ID] = true
			order++
			positions = append(positions, repositories.Position{ID: n.ID, ParentID: parentID, Order: order})
			if err := walk(n.Children, n.ID); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(nodes, tree.Root); err != nil {
		return err
	}

	if err := s.repo.UpdatePositions(ctx, positions); err != nil {
		if errors.Is(err, repositories.ErrMenuNotFound) {
			return ErrInvalidOrder
		}
		return err
	}
	s.logger.Infow("Saved menu order", "app", s.app.Name, "count", len(positions))
	return s.cache.FlushCache(ctx)
}

func (s *menuService) SelectOptions(ctx context.Context) ([]Option, error) {
	nodes, err := s.AllNodes(ctx, false)
	if err != nil {
		return nil, err
	}
	options := []Option{{ID: tree.Root, Title: "Root"}}
	tree.Walk(nodes, func(m models.Menu) []models.Menu { return m.Children }, func(m models.Menu, depth int) {
		options = append(options, Option{ID: m.ID, Title: strings.Repeat("    ", depth+1) + "┝ " + m.Title})
	})
	return options, nil
}
