package models

import (
	"time"

	"github.com/google/uuid"
)

type Property struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string    `json:"name" gorm:"size:255;not null"`
	Address   string    `json:"address" gorm:"type:text;not null"`
	City      string    `json:"city" gorm:"size:100"`
	State     string    `json:"state" gorm:"size:100"`
	ZipCode   string    `json:"zip_code" gorm:"size:20"`
	ImageURL  string    `json:"image_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Units []Unit `json:"units,omitempty" gorm:"foreignKey:PropertyID"`
}

type Unit struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PropertyID uuid.UUID `json:"property_id" gorm:"type:uuid;not null;index"`
	Number     string    `json:"number" gorm:"size:50;not null"`
	Bedrooms   int       `json:"bedrooms" gorm:"default:1"`
	Bathrooms  int       `json:"bathrooms" gorm:"default:1"`
	// RentCents is the monthly rent in cents; currency math never touches floats
	RentCents int64     `json:"rent_cents" gorm:"not null;default:0"`
	Occupied  bool      `json:"occupied" gorm:"default:false"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Property Property `json:"property" gorm:"foreignKey:PropertyID"`
}
