package models

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleDoctor        UserRole = "doctor"
	RoleEstablishment UserRole = "establishment"
	RoleAdmin         UserRole = "admin"
	// RoleUnknown is returned for unrecognized role strings so that a bad
	// value shows up in responses instead of silently defaulting.
	RoleUnknown UserRole = "unknown"
)

// ParseUserRole maps a raw string to a closed UserRole value.
func ParseUserRole(s string) UserRole {
	switch UserRole(s) {
	case RoleDoctor, RoleEstablishment, RoleAdmin:
		return UserRole(s)
	default:
		return RoleUnknown
	}
}

type User struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	Email          string    `json:"email" gorm:"size:255;uniqueIndex;not null"`
	PasswordHash   string    `json:"-" gorm:"size:255;not null"` // Hidden from JSON
	Role           UserRole  `json:"role" gorm:"type:varchar(20);not null;check:role IN ('doctor','establishment','admin')"`
	EmailConfirmed bool      `json:"email_confirmed" gorm:"default:false"`
	IsActive       bool      `json:"is_active" gorm:"default:true"`
	CreatedAt      time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// Relationships
	DoctorProfile        *DoctorProfile        `json:"doctor_profile,omitempty" gorm:"foreignKey:UserID"`
	EstablishmentProfile *EstablishmentProfile `json:"establishment_profile,omitempty" gorm:"foreignKey:UserID"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}

// BeforeCreate is a GORM hook that runs before creating a user
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.Role == "" {
		u.Role = RoleUnknown
	}
	return nil
}

// IsValidRole checks if the user role is valid
func (u *User) IsValidRole() bool {
	switch u.Role {
	case RoleDoctor, RoleEstablishment, RoleAdmin:
		return true
	default:
		return false
	}
}

// IsDoctor checks if the user is a doctor
func (u *User) IsDoctor() bool {
	return u.Role == RoleDoctor
}

// IsEstablishment checks if the user is an establishment
func (u *User) IsEstablishment() bool {
	return u.Role == RoleEstablishment
}

// IsAdmin checks if the user is an admin
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
