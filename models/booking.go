package models

import (
	"time"

	"gorm.io/gorm"
)

// BookingStatus represents the current state of a booking in its lifecycle
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusRejected  BookingStatus = "rejected"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
	// BookingStatusUnknown is returned for unrecognized status strings so a
	// bad value is visible instead of being swallowed by a default case.
	BookingStatusUnknown BookingStatus = "unknown"
)

// PaymentStatus represents the payment state attached to a booking.
// It is only meaningful once a booking is confirmed or completed.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// BookingUrgency represents how urgent the staffing need is
type BookingUrgency string

const (
	UrgencyLow    BookingUrgency = "low"
	UrgencyMedium BookingUrgency = "medium"
	UrgencyHigh   BookingUrgency = "high"
)

// TransitionActor identifies who is allowed to perform a given status transition.
type TransitionActor string

const (
	// ActorListingOwner is the doctor who owns the vacation post
	ActorListingOwner TransitionActor = "listing_owner"
	// ActorRequester is the user who created the booking
	ActorRequester TransitionActor = "requester"
	// ActorEitherParty is the booking's doctor or establishment
	ActorEitherParty TransitionActor = "either_party"
)

// bookingTransitions defines the state machine for booking status changes,
// keyed by current status then target status, with the actor allowed to
// perform each transition. Statuses missing as keys are terminal.
var bookingTransitions = map[BookingStatus]map[BookingStatus]TransitionActor{
	BookingStatusPending: {
		BookingStatusConfirmed: ActorListingOwner,
		BookingStatusRejected:  ActorListingOwner,
		BookingStatusCancelled: ActorRequester,
	},
	BookingStatusConfirmed: {
		BookingStatusCompleted: ActorListingOwner,
		BookingStatusCancelled: ActorEitherParty,
	},
	BookingStatusRejected:  {},
	BookingStatusCancelled: {},
	BookingStatusCompleted: {},
}

// ParseBookingStatus maps a raw string to a closed BookingStatus value.
// "booked" is accepted as a legacy alias for confirmed.
func ParseBookingStatus(s string) BookingStatus {
	if s == "booked" {
		return BookingStatusConfirmed
	}
	if _, ok := bookingTransitions[BookingStatus(s)]; ok {
		return BookingStatus(s)
	}
	return BookingStatusUnknown
}

// IsValid returns true if the status is a recognized booking status.
func (s BookingStatus) IsValid() bool {
	_, ok := bookingTransitions[s]
	return ok
}

// IsTerminal returns true if no further transitions are possible from this status.
func (s BookingStatus) IsTerminal() bool {
	targets, ok := bookingTransitions[s]
	return ok && len(targets) == 0
}

// TransitionRule returns the actor allowed to perform the from->to transition,
// or ok=false when the transition is not in the table.
func TransitionRule(from, to BookingStatus) (TransitionActor, bool) {
	targets, ok := bookingTransitions[from]
	if !ok {
		return "", false
	}
	actor, ok := targets[to]
	return actor, ok
}

// CanTransitionTo returns true if a transition from this status to the target is allowed
// for at least one actor.
func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	_, ok := TransitionRule(s, target)
	return ok
}

// RulesForTarget returns the actors allowed to reach the target status from
// any source status. Empty when nothing ever transitions to the target.
func RulesForTarget(to BookingStatus) []TransitionActor {
	var rules []TransitionActor
	for _, targets := range bookingTransitions {
		if actor, ok := targets[to]; ok {
			rules = append(rules, actor)
		}
	}
	return rules
}

// Booking represents one doctor<->establishment agreement over a vacation post
type Booking struct {
	ID              uint           `json:"id" gorm:"primaryKey"`
	VacationPostID  uint           `json:"vacation_post_id" gorm:"not null;index"`
	VacationPost    VacationPost   `json:"vacation_post,omitempty" gorm:"foreignKey:VacationPostID"`
	DoctorID        uint           `json:"doctor_id" gorm:"not null;index"`
	Doctor          User           `json:"doctor,omitempty" gorm:"foreignKey:DoctorID"`
	EstablishmentID uint           `json:"establishment_id" gorm:"not null;index"`
	Establishment   User           `json:"establishment,omitempty" gorm:"foreignKey:EstablishmentID"`
	RequestedByID   uint           `json:"requested_by_id" gorm:"not null"`
	Status          BookingStatus  `json:"status" gorm:"type:varchar(20);not null;default:'pending'"`
	PaymentStatus   *PaymentStatus `json:"payment_status" gorm:"type:varchar(20)"`
	StartDate       time.Time      `json:"start_date" gorm:"not null"`
	EndDate         time.Time      `json:"end_date" gorm:"not null"`
	TotalAmount     float64        `json:"total_amount" gorm:"type:decimal(10,2);not null"`
	DurationHours   float64        `json:"duration_hours" gorm:"type:decimal(6,2)"`
	Message         *string        `json:"message" gorm:"type:text"`
	ContactPhone    *string        `json:"contact_phone" gorm:"size:20"`
	Urgency         BookingUrgency `json:"urgency" gorm:"type:varchar(10);not null;default:'medium'"`
	// Version guards status writes against concurrent lost updates. Every
	// transition is a compare-and-swap on (id, version).
	Version   int            `json:"version" gorm:"not null;default:1"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

func (Booking) TableName() string {
	return "bookings"
}

// HasValidDates checks the end_date >= start_date invariant
func (b *Booking) HasValidDates() bool {
	return !b.EndDate.Before(b.StartDate)
}

// BookingCreate represents the request structure for creating a booking
type BookingCreate struct {
	VacationPostID uint    `json:"vacation_post_id" binding:"required"`
	StartDate      string  `json:"start_date" binding:"required"` // ISO8601
	EndDate        string  `json:"end_date" binding:"required"`   // ISO8601
	DurationHours  float64 `json:"duration_hours" binding:"omitempty,gt=0"`
	Message        *string `json:"message"`
	ContactPhone   *string `json:"contact_phone"`
	Urgency        string  `json:"urgency" binding:"omitempty,oneof=low medium high"`
}
