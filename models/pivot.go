package models

import "time"

// Pivot rows. Table names are resolved per namespace, so none of these implement Tabler.

type RoleMenu struct {
	RoleID    uint `gorm:"primaryKey;autoIncrement:false"`
	MenuID    uint `gorm:"primaryKey;autoIncrement:false"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type PermissionMenu struct {
	PermissionID uint `gorm:"primaryKey;autoIncrement:false"`
	MenuID       uint `gorm:"primaryKey;autoIncrement:false"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type RolePermission struct {
	RoleID       uint `gorm:"primaryKey;autoIncrement:false"`
	PermissionID uint `gorm:"primaryKey;autoIncrement:false"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type RoleUser struct {
	RoleID    uint `gorm:"primaryKey;autoIncrement:false"`
	UserID    uint `gorm:"primaryKey;autoIncrement:false"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
