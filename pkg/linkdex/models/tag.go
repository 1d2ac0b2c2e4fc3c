package models

import "time"

// Tag represents a user-scoped label attachable to links. Names are unique
// per user; case-insensitive duplicate detection happens in the handlers
// before this index is hit.
type Tag struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_tags_user_name" json:"user_id"`
	Name      string    `gorm:"not null;uniqueIndex:idx_tags_user_name" json:"name"`

	// Relationships
	User  User   `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Links []Link `gorm:"many2many:link_tags;" json:"links,omitempty"`
}
