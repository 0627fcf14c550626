package services

import "errors"

var (
	ErrInvalidMenu   = errors.New("Invalid request: menu title is required")
	ErrInvalidParent = errors.New("Invalid request: parent menu does not exist")
	ErrMenuCycle     = errors.New("Invalid request: a menu cannot be moved under itself or its descendants")
	ErrInvalidOrder  = errors.New("Invalid request: menu order tree is malformed")
	ErrInvalidRole   = errors.New("Invalid request: role name and slug are required")
	ErrRoleSlugTaken = errors.New("Role slug already exists")
)
