package models

import (
	"time"

	"gorm.io/gorm"
)

// EstablishmentProfile holds the profile of a healthcare establishment user
type EstablishmentProfile struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	UserID       uint           `json:"user_id" gorm:"uniqueIndex;not null"`
	User         User           `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Name         string         `json:"name" gorm:"size:200;not null"`
	Type         string         `json:"type" gorm:"size:100"` // hospital, clinic, ehpad, laboratory, cabinet
	City         string         `json:"city" gorm:"size:100;not null"`
	Address      string         `json:"address" gorm:"size:500"`
	ContactPhone string         `json:"contact_phone" gorm:"size:20"`
	Description  string         `json:"description" gorm:"type:text"`
	LogoURL      *string        `json:"logo_url" gorm:"size:255"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

func (EstablishmentProfile) TableName() string {
	return "establishment_profiles"
}

// EstablishmentProfileUpsert represents the request structure for creating/updating an establishment profile
type EstablishmentProfileUpsert struct {
	Name         string `json:"name" binding:"required,min=1,max=200"`
	Type         string `json:"type"`
	City         string `json:"city" binding:"required"`
	Address      string `json:"address"`
	ContactPhone string `json:"contact_phone"`
	Description  string `json:"description"`
}
