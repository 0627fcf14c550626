package repositories

import "errors"

var (
	ErrMenuNotFound       = errors.New("Menu not found")
	ErrRoleNotFound       = errors.New("Role not found")
	ErrUserNotFound       = errors.New("User not found")
	ErrPermissionNotFound = errors.New("Permission not found")
)
