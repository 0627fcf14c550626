package models

import "time"

// Permission represents an action that can be performed (e.g., "auth-management", "users")
type Permission struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"size:50;not null" json:"name"`
	Slug       string    `gorm:"size:50;not null" json:"slug"`
	HTTPMethod string    `gorm:"column:http_method" json:"http_method"` // comma separated, empty means any
	HTTPPath   string    `gorm:"column:http_path;type:text" json:"http_path"`
	Order      int       `gorm:"column:order;not null;default:0" json:"order"`
	ParentID   uint      `gorm:"not null;default:0" json:"parent_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
