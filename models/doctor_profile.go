package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// DoctorProfile holds the professional profile of a doctor user
type DoctorProfile struct {
	ID              uint           `json:"id" gorm:"primaryKey"`
	UserID          uint           `json:"user_id" gorm:"uniqueIndex;not null"`
	User            User           `json:"user,omitempty" gorm:"foreignKey:UserID"`
	FirstName       string         `json:"first_name" gorm:"size:100;not null"`
	LastName        string         `json:"last_name" gorm:"size:100;not null"`
	Speciality      string         `json:"speciality" gorm:"size:100;not null"`
	ExperienceYears int            `json:"experience_years" gorm:"default:0"`
	Languages       pq.StringArray `json:"languages" gorm:"type:text[]"`
	Bio             string         `json:"bio" gorm:"type:text"`
	HourlyRate      float64        `json:"hourly_rate" gorm:"type:decimal(10,2)"`
	LicenceNumber   string         `json:"licence_number" gorm:"size:100"`
	LicenceDocURL   *string        `json:"licence_doc_url" gorm:"size:255"`
	IsVerified      bool           `json:"is_verified" gorm:"default:false"`
	City            string         `json:"city" gorm:"size:100"`
	ContactPhone    string         `json:"contact_phone" gorm:"size:20"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

func (DoctorProfile) TableName() string {
	return "doctor_profiles"
}

// FullName returns the doctor's display name
func (p *DoctorProfile) FullName() string {
	return p.FirstName + " " + p.LastName
}

// DoctorProfileUpsert represents the request structure for creating/updating a doctor profile
type DoctorProfileUpsert struct {
	FirstName       string   `json:"first_name" binding:"required,min=1,max=100"`
	LastName        string   `json:"last_name" binding:"required,min=1,max=100"`
	Speciality      string   `json:"speciality" binding:"required"`
	ExperienceYears int      `json:"experience_years" binding:"gte=0"`
	Languages       []string `json:"languages"`
	Bio             string   `json:"bio"`
	HourlyRate      float64  `json:"hourly_rate" binding:"gte=0"`
	LicenceNumber   string   `json:"licence_number"`
	City            string   `json:"city"`
	ContactPhone    string   `json:"contact_phone"`
}
