package auth

import (
	"context"
	"fmt"

	"admin-rbac/models"
	"admin-rbac/repositories"
	"admin-rbac/schema"
)

// Authorizer answers permission questions about administrators of one namespace.
type Authorizer struct {
	app         *schema.App
	users       repositories.UserRepository
	roles       repositories.RoleRepository
	permissions repositories.PermissionRepository
}

func NewAuthorizer(app *schema.App, users repositories.UserRepository, roles repositories.RoleRepository, permissions repositories.PermissionRepository) *Authorizer {
	return &Authorizer{app: app, users: users, roles: roles, permissions: permissions}
}

// UserHasPermissions checks if the user has all required permissions. Holders of the
// administrator role pass every check, and so does everyone when permissions are disabled.
func (a *Authorizer) UserHasPermissions(ctx context.Context, userID uint, requiredPermissions ...string) (bool, error) {
	if len(requiredPermissions) == 0 || !a.app.PermissionEnable {
		return true, nil
	}

	roles, err := a.users.RolesOf(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("database error checking permissions for user %d: %w", userID, err)
	}

	roleIDs := make([]uint, 0, len(roles))
	for _, role := range roles {
		if models.IsAdministrator(role.Slug) {
			return true, nil
		}
		roleIDs = append(roleIDs, role.ID)
	}

	byRole, err := a.roles.PermissionIDs(ctx, roleIDs)
	if err != nil {
		return false, err
	}
	var permissionIDs []uint
	for _, ids := range byRole {
		permissionIDs = append(permissionIDs, ids...)
	}
	permissions, err := a.permissions.FindByIDs(ctx, permissionIDs)
	if err != nil {
		return false, err
	}

	// Put all permissions that the user has into a map for quick lookup
	userPermissions := make(map[string]struct{}, len(permissions))
	for _, p := range permissions {
		userPermissions[p.Slug] = struct{}{}
	}
	for _, reqPerm := range requiredPermissions {
		if _, ok := userPermissions[reqPerm]; !ok {
			return false, nil
		}
	}
	return true, nil
}
