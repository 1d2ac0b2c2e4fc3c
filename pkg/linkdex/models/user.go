package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a registered account. Links and tags hang directly off
// the user; there is no sharing between accounts.
type User struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string         `json:"-"`
	Name         string         `json:"name,omitempty"`

	// Relationships
	Links []Link `gorm:"foreignKey:UserID" json:"links,omitempty"`
	Tags  []Tag  `gorm:"foreignKey:UserID" json:"tags,omitempty"`
}
