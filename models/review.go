package models

import (
	"time"

	"gorm.io/gorm"
)

// DoctorReview represents a review left by an establishment for a doctor
// after a completed booking
type DoctorReview struct {
	ID              uint    `json:"id" gorm:"primaryKey"`
	EstablishmentID uint    `json:"establishment_id" gorm:"not null"`
	Establishment   User    `json:"establishment,omitempty" gorm:"foreignKey:EstablishmentID"`
	DoctorID        uint    `json:"doctor_id" gorm:"not null;index"`
	Doctor          User    `json:"doctor,omitempty" gorm:"foreignKey:DoctorID"`
	BookingID       uint    `json:"booking_id" gorm:"uniqueIndex;not null"`
	Booking         Booking `json:"booking,omitempty" gorm:"foreignKey:BookingID"`

	Stars   int    `json:"stars" gorm:"type:int;not null;check:stars >= 1 AND stars <= 5"`
	Comment string `json:"comment" gorm:"type:text"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

func (DoctorReview) TableName() string {
	return "doctor_reviews"
}

// DoctorReviewCreate represents the request structure for creating a review
type DoctorReviewCreate struct {
	BookingID uint   `json:"booking_id" binding:"required"`
	Stars     int    `json:"stars" binding:"required,min=1,max=5"`
	Comment   string `json:"comment"`
}
