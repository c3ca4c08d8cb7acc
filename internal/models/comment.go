// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// Comment represents a comment on a listing.
type Comment struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	ListingID uint           `gorm:"not null;index" json:"listing_id"`
	Listing   Listing        `gorm:"foreignKey:ListingID" json:"listing,omitempty"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`
	User      User           `gorm:"foreignKey:UserID" json:"user"`
	Content   string         `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
