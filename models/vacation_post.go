package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// PostStatus represents the current state of a vacation post in its lifecycle
type PostStatus string

const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusAvailable PostStatus = "available"
	PostStatusPending   PostStatus = "pending"
	PostStatusBooked    PostStatus = "booked"
	PostStatusCompleted PostStatus = "completed"
	PostStatusCancelled PostStatus = "cancelled"
	PostStatusUnknown   PostStatus = "unknown"
)

// postTransitions defines the state machine for vacation post status changes.
var postTransitions = map[PostStatus][]PostStatus{
	PostStatusDraft:     {PostStatusAvailable, PostStatusCancelled},
	PostStatusAvailable: {PostStatusBooked, PostStatusCancelled, PostStatusPending},
	PostStatusPending:   {PostStatusAvailable, PostStatusBooked, PostStatusCancelled},
	PostStatusBooked:    {PostStatusCompleted, PostStatusAvailable, PostStatusCancelled},
	PostStatusCompleted: {},
	PostStatusCancelled: {},
}

// ParsePostStatus maps a raw string to a closed PostStatus value.
func ParsePostStatus(s string) PostStatus {
	if _, ok := postTransitions[PostStatus(s)]; ok {
		return PostStatus(s)
	}
	return PostStatusUnknown
}

// IsValid returns true if the status is a recognized post status.
func (s PostStatus) IsValid() bool {
	_, ok := postTransitions[s]
	return ok
}

// CanTransitionTo returns true if a transition from this status to the target is allowed.
func (s PostStatus) CanTransitionTo(target PostStatus) bool {
	for _, t := range postTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// VacationPost represents a doctor-published availability slot
type VacationPost struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	DoctorID     uint           `json:"doctor_id" gorm:"not null;index"`
	Doctor       User           `json:"doctor,omitempty" gorm:"foreignKey:DoctorID"`
	Title        string         `json:"title" gorm:"size:200;not null"`
	Speciality   string         `json:"speciality" gorm:"size:100;not null"`
	Location     string         `json:"location" gorm:"size:200;not null"`
	HourlyRate   float64        `json:"hourly_rate" gorm:"type:decimal(10,2);not null"`
	StartDate    time.Time      `json:"start_date" gorm:"not null"`
	EndDate      time.Time      `json:"end_date" gorm:"not null"`
	Requirements pq.StringArray `json:"requirements" gorm:"type:text[]"`
	Description  string         `json:"description" gorm:"type:text"`
	Status       PostStatus     `json:"status" gorm:"type:varchar(20);not null;default:'draft'"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

func (VacationPost) TableName() string {
	return "vacation_posts"
}

// HasValidDates checks the end_date >= start_date invariant
func (p *VacationPost) HasValidDates() bool {
	return !p.EndDate.Before(p.StartDate)
}

// VacationPostCreate represents the request structure for creating a vacation post
type VacationPostCreate struct {
	Title        string   `json:"title" binding:"required,min=3,max=200"`
	Speciality   string   `json:"speciality" binding:"required"`
	Location     string   `json:"location" binding:"required"`
	HourlyRate   float64  `json:"hourly_rate" binding:"required,gt=0"`
	StartDate    string   `json:"start_date" binding:"required"` // ISO8601
	EndDate      string   `json:"end_date" binding:"required"`   // ISO8601
	Requirements []string `json:"requirements"`
	Description  string   `json:"description"`
}
