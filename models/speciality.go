package models

import (
	"time"
)

// Speciality is the reference list of medical specialities used by doctor
// profiles and vacation posts
type Speciality struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"size:100;uniqueIndex;not null"`
	Code      string    `json:"code" gorm:"size:50;uniqueIndex;not null"`
	IsActive  bool      `json:"is_active" gorm:"default:true"`
	SortOrder int       `json:"sort_order" gorm:"default:0"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Speciality) TableName() string {
	return "specialities"
}
