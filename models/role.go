package models

import "time"

const (
	// Administrator is the slug of the reserved super role. Holders bypass explicit permission checks.
	Administrator = "administrator"
	// AdministratorID is the primary key of the super role in a freshly seeded namespace.
	AdministratorID = 1
)

// Role is a named permission group.
type Role struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:50;not null" json:"name"`
	Slug      string    `gorm:"size:50;not null" json:"slug"` // used for permission checks
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Permissions []Permission `gorm:"-" json:"permissions,omitempty"`
}

// IsAdministrator reports whether slug names the reserved super role.
func IsAdministrator(slug string) bool {
	return slug == Administrator
}
