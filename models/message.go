package models

import (
	"time"
)

// Conversation represents a message thread between a doctor and an establishment,
// scoped to one booking
type Conversation struct {
	ID              uint       `json:"id" gorm:"primaryKey"`
	BookingID       uint       `json:"booking_id" gorm:"uniqueIndex;not null"`
	Booking         Booking    `json:"booking,omitempty" gorm:"foreignKey:BookingID"`
	DoctorID        uint       `json:"doctor_id" gorm:"not null"`
	Doctor          User       `json:"doctor,omitempty" gorm:"foreignKey:DoctorID"`
	EstablishmentID uint       `json:"establishment_id" gorm:"not null"`
	Establishment   User       `json:"establishment,omitempty" gorm:"foreignKey:EstablishmentID"`
	LastMessageAt   *time.Time `json:"last_message_at"`
	LastMessageText string     `json:"last_message_text" gorm:"size:500"`
	IsActive        bool       `json:"is_active" gorm:"default:true"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	DeletedAt       *time.Time `json:"deleted_at,omitempty" gorm:"index"`
}

// ChatMessage represents a single message in a conversation
type ChatMessage struct {
	ID             uint       `json:"id" gorm:"primaryKey"`
	ConversationID uint       `json:"conversation_id" gorm:"not null;index"`
	SenderID       uint       `json:"sender_id" gorm:"not null"`
	SenderRole     string     `json:"sender_role" gorm:"size:20;not null"` // "doctor" or "establishment"
	Content        string     `json:"content" gorm:"type:text;not null"`
	IsRead         bool       `json:"is_read" gorm:"default:false"`
	ReadAt         *time.Time `json:"read_at"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	DeletedAt      *time.Time `json:"deleted_at,omitempty" gorm:"index"`
}

// TableName specifies the table name for Conversation
func (Conversation) TableName() string {
	return "conversations"
}

// TableName specifies the table name for ChatMessage
func (ChatMessage) TableName() string {
	return "chat_messages"
}

// Participants returns the user ids of both parties in the conversation
func (c *Conversation) Participants() []uint {
	return []uint{c.DoctorID, c.EstablishmentID}
}

// HasParticipant checks whether a user is part of the conversation
func (c *Conversation) HasParticipant(userID uint) bool {
	return userID == c.DoctorID || userID == c.EstablishmentID
}
