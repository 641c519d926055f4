package models

import (
	"time"

	"gorm.io/gorm"
)

// Payment records one payment attempt for a confirmed booking
type Payment struct {
	ID        uint          `json:"id" gorm:"primaryKey"`
	BookingID uint          `json:"booking_id" gorm:"not null;index"`
	Booking   Booking       `json:"booking,omitempty" gorm:"foreignKey:BookingID"`
	PayerID   uint          `json:"payer_id" gorm:"not null"`
	Amount    float64       `json:"amount" gorm:"type:decimal(10,2);not null"`
	Currency  string        `json:"currency" gorm:"size:3;not null;default:'EUR'"`
	Status    PaymentStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending'"`
	// Reference is the identifier shared with the payment processor
	Reference string         `json:"reference" gorm:"size:64;uniqueIndex;not null"`
	PaidAt    *time.Time     `json:"paid_at"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

func (Payment) TableName() string {
	return "payments"
}
