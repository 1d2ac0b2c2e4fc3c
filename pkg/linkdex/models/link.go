package models

import (
	"time"

	"gorm.io/gorm"
)

// Link represents a saved bookmark. UserID is set on create and never
// changes afterwards.
type Link struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	UserID      uint           `gorm:"not null;index" json:"user_id"`
	URL         string         `gorm:"not null" json:"url"`
	Title       string         `gorm:"not null" json:"title"`
	Description string         `json:"description"`

	// Relationships
	User User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Tags []Tag `gorm:"many2many:link_tags;" json:"tags,omitempty"`
}
