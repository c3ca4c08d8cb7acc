package models

import (
	"time"

	"gorm.io/gorm"
)

// ListingStatus defines the moderation state of a listing.
type ListingStatus string

const (
	// ListingStatusPending indicates a listing is awaiting moderation.
	ListingStatusPending ListingStatus = "pending"
	// ListingStatusApproved indicates a listing is publicly visible.
	ListingStatusApproved ListingStatus = "approved"
	// ListingStatusRejected indicates a listing was declined by an admin.
	ListingStatusRejected ListingStatus = "rejected"
	// ListingStatusSold indicates the owner marked the vehicle as sold.
	ListingStatusSold ListingStatus = "sold"
	// ListingStatusReserved indicates the owner marked the vehicle as reserved.
	ListingStatusReserved ListingStatus = "reserved"
)

// Listing represents a for-sale vehicle post owned by a user.
type Listing struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	UserID       uint           `gorm:"not null;index" json:"user_id"`
	User         User           `gorm:"foreignKey:UserID" json:"user"`
	CarModelID   uint           `gorm:"not null;index" json:"car_model_id"`
	CarModel     CarModel       `gorm:"foreignKey:CarModelID" json:"car_model"`
	Title        string         `gorm:"not null" json:"title"`
	Description  string         `gorm:"type:text;not null" json:"description"`
	Price        float64        `gorm:"type:decimal(10,2);not null" json:"price"`
	Mileage      int            `gorm:"not null" json:"mileage"`
	Color        string         `gorm:"not null" json:"color"`
	Status       ListingStatus  `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	AdminComment *string        `gorm:"type:text" json:"admin_comment"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	Comments     []Comment      `gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE" json:"comments,omitempty"`
}
