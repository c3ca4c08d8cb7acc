package models

import "time"

// CarModel represents a specific model of a brand (e.g. Corolla 2016).
type CarModel struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	BrandID     uint      `gorm:"not null;index" json:"brand_id"`
	Brand       Brand     `gorm:"foreignKey:BrandID" json:"brand,omitempty"`
	Name        string    `gorm:"not null" json:"name"`
	Year        int       `gorm:"not null" json:"year"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Listings    []Listing `gorm:"foreignKey:CarModelID;constraint:OnDelete:CASCADE" json:"listings,omitempty"`
}

// TableName specifies the table name for GORM.
func (CarModel) TableName() string {
	return "car_models"
}
