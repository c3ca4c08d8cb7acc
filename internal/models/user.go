// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// Role defines the access level of a user account.
type Role string

const (
	// RoleGuest is a placeholder role for unauthenticated visitors.
	RoleGuest Role = "guest"
	// RoleUser is the default role for registered accounts.
	RoleUser Role = "user"
	// RoleAdmin grants moderation capabilities.
	RoleAdmin Role = "admin"
)

// User represents an account in the marketplace.
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"not null" json:"name"`
	Email     string         `gorm:"uniqueIndex;not null" json:"email"`
	Password  string         `gorm:"not null" json:"-"`
	Role      Role           `gorm:"type:varchar(20);not null;default:'user'" json:"role"`
	Credits   int            `gorm:"not null;default:0" json:"credits"`
	IsBlocked bool           `gorm:"not null;default:false" json:"is_blocked"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	Listings  []Listing      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"listings,omitempty"`
	Comments  []Comment      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"comments,omitempty"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
