package models

import "time"

// Brand represents a vehicle manufacturer (e.g. Toyota, BMW).
type Brand struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Name        string     `gorm:"uniqueIndex;not null" json:"name"`
	Description string     `gorm:"type:text" json:"description"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CarModels   []CarModel `gorm:"foreignKey:BrandID;constraint:OnDelete:CASCADE" json:"car_models,omitempty"`
}
