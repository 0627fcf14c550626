package models

import "time"

// User is an administrator account of a namespace.
type User struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Username      string    `gorm:"size:120;not null" json:"username"`
	Password      string    `gorm:"size:80;not null" json:"-"` // Don't expose password hash
	Name          string    `gorm:"not null" json:"name"`
	Avatar        string    `json:"avatar"`
	RememberToken string    `gorm:"size:100" json:"-"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	Roles []Role `gorm:"-" json:"roles,omitempty"`
}
