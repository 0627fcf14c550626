package models

import "time"

// Menu is a node of the admin navigation tree. ParentID 0 marks a root node.
type Menu struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ParentID  uint      `gorm:"not null;default:0" json:"parent_id"`
	Order     int       `gorm:"column:order;not null;default:0" json:"order"`
	Title     string    `gorm:"size:50;not null" json:"title"`
	Icon      string    `gorm:"size:50" json:"icon"`
	URI       string    `gorm:"column:uri;size:50" json:"uri"`
	Extension string    `gorm:"size:50;not null;default:''" json:"extension"` // owning extension, empty for core menus
	Show      bool      `gorm:"not null" json:"show"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Roles       []Role       `gorm:"-" json:"roles"`
	Permissions []Permission `gorm:"-" json:"permissions"`
	Children    []Menu       `gorm:"-" json:"children,omitempty"`
}

// TreeID, TreeParentID and TreeOrder let the tree package assemble menus.
func (m Menu) TreeID() uint       { return m.ID }
func (m Menu) TreeParentID() uint { return m.ParentID }
func (m Menu) TreeOrder() int     { return m.Order }
