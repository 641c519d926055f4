package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"cureliah-server/models"
)

// Booking engine errors, mapped to HTTP statuses at the route boundary.
var (
	ErrInvalidTransition  = errors.New("transition is not allowed from the current status")
	ErrForbidden          = errors.New("actor is not allowed to perform this transition")
	ErrNotFound           = errors.New("booking not found")
	ErrConflict           = errors.New("booking was modified concurrently, refetch and retry")
	ErrListingUnavailable = errors.New("vacation post is not open for booking requests")
	ErrInvalidDates       = errors.New("end date must not be before start date")
	ErrQueryFailure       = errors.New("unable to load bookings")
)

// Principal is the authenticated actor performing an operation. It is passed
// explicitly to every engine call so there is no ambient session state.
type Principal struct {
	UserID uint
	Role   models.UserRole
}

// BookingService owns the booking lifecycle: creation, status transitions and
// the listing dual-writes that go with them.
type BookingService struct {
	db *gorm.DB

	// CompletionRequiresElapsed gates confirmed->completed behind the
	// booking end date having passed.
	CompletionRequiresElapsed bool

	now func() time.Time
}

// NewBookingService creates a booking service on top of the given database
func NewBookingService(db *gorm.DB) *BookingService {
	return &BookingService{db: db, now: time.Now}
}

// Create creates a new pending booking against an available vacation post.
// Only establishments request bookings; the doctor side is resolved from the
// post's owner.
func (s *BookingService) Create(p Principal, req models.BookingCreate) (*models.Booking, error) {
	if p.Role != models.RoleEstablishment {
		return nil, ErrForbidden
	}

	startDate, err := time.Parse(time.RFC3339, req.StartDate)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid start_date", ErrInvalidDates)
	}
	endDate, err := time.Parse(time.RFC3339, req.EndDate)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid end_date", ErrInvalidDates)
	}
	if endDate.Before(startDate) {
		return nil, ErrInvalidDates
	}

	var post models.VacationPost
	if err := s.db.First(&post, req.VacationPostID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if post.Status != models.PostStatusAvailable {
		return nil, ErrListingUnavailable
	}

	durationHours := req.DurationHours
	if durationHours <= 0 {
		durationHours = endDate.Sub(startDate).Hours()
	}

	urgency := models.BookingUrgency(req.Urgency)
	if urgency == "" {
		urgency = models.UrgencyMedium
	}

	booking := models.Booking{
		VacationPostID:  post.ID,
		DoctorID:        post.DoctorID,
		EstablishmentID: p.UserID,
		RequestedByID:   p.UserID,
		Status:          models.BookingStatusPending,
		StartDate:       startDate,
		EndDate:         endDate,
		DurationHours:   durationHours,
		TotalAmount:     durationHours * post.HourlyRate,
		Message:         req.Message,
		ContactPhone:    req.ContactPhone,
		Urgency:         urgency,
		Version:         1,
	}

	if err := s.db.Create(&booking).Error; err != nil {
		return nil, err
	}

	s.notify(post.DoctorID, "New booking request", "An establishment requested one of your vacation posts", "booking_created", booking.ID)

	return &booking, nil
}

// Transition validates and applies a status change on a booking. Writes are
// compare-and-swap on (id, version); a concurrent writer surfaces as
// ErrConflict and the caller is expected to refetch and retry.
func (s *BookingService) Transition(p Principal, bookingID uint, target models.BookingStatus) (*models.Booking, error) {
	if !target.IsValid() {
		return nil, fmt.Errorf("%w: unrecognized target status %q", ErrInvalidTransition, string(target))
	}

	var booking models.Booking
	if err := s.db.Preload("VacationPost").First(&booking, bookingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	rule, ok := models.TransitionRule(booking.Status, target)
	if !ok {
		return nil, s.unreachableTransitionError(p, &booking, target)
	}
	if err := s.checkActor(p, &booking, rule); err != nil {
		return nil, err
	}

	if target == models.BookingStatusCompleted && s.CompletionRequiresElapsed && s.now().Before(booking.EndDate) {
		return nil, fmt.Errorf("%w: service period has not ended yet", ErrInvalidTransition)
	}

	fromStatus := booking.Status

	err := s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Booking{}).
			Where("id = ? AND version = ?", booking.ID, booking.Version).
			Updates(map[string]interface{}{
				"status":     target,
				"version":    gorm.Expr("version + 1"),
				"updated_at": s.now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrConflict
		}

		// Keep the listing status in step with the booking, inside the
		// same transaction.
		switch target {
		case models.BookingStatusConfirmed:
			return tx.Model(&models.VacationPost{}).
				Where("id = ?", booking.VacationPostID).
				Updates(map[string]interface{}{"status": models.PostStatusBooked, "updated_at": s.now()}).Error
		case models.BookingStatusCancelled:
			if fromStatus == models.BookingStatusConfirmed {
				// Reopen the slot if it was held by this booking
				return tx.Model(&models.VacationPost{}).
					Where("id = ? AND status = ?", booking.VacationPostID, models.PostStatusBooked).
					Updates(map[string]interface{}{"status": models.PostStatusAvailable, "updated_at": s.now()}).Error
			}
		case models.BookingStatusCompleted:
			return tx.Model(&models.VacationPost{}).
				Where("id = ? AND status = ?", booking.VacationPostID, models.PostStatusBooked).
				Updates(map[string]interface{}{"status": models.PostStatusCompleted, "updated_at": s.now()}).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyTransition(&booking, p, target)

	var updated models.Booking
	if err := s.db.Preload("VacationPost").First(&updated, booking.ID).Error; err != nil {
		return nil, err
	}
	return &updated, nil
}

// checkActor verifies the principal against the allowed-actor rule of a transition
func (s *BookingService) checkActor(p Principal, b *models.Booking, rule models.TransitionActor) error {
	switch rule {
	case models.ActorListingOwner:
		if p.Role == models.RoleDoctor && p.UserID == b.DoctorID {
			return nil
		}
	case models.ActorRequester:
		if p.UserID == b.RequestedByID {
			return nil
		}
	case models.ActorEitherParty:
		if p.UserID == b.DoctorID || p.UserID == b.EstablishmentID {
			return nil
		}
	}
	return ErrForbidden
}

// unreachableTransitionError picks between ErrInvalidTransition and
// ErrForbidden when the (from, target) pair is not in the table: an actor who
// could never perform the target transition from any status gets the
// permission error, everyone else the state error.
func (s *BookingService) unreachableTransitionError(p Principal, b *models.Booking, target models.BookingStatus) error {
	rules := models.RulesForTarget(target)
	if len(rules) == 0 {
		return ErrInvalidTransition
	}
	for _, rule := range rules {
		if s.checkActor(p, b, rule) == nil {
			return ErrInvalidTransition
		}
	}
	return ErrForbidden
}

// notifyTransition records a notification for the counterpart of the acting user
func (s *BookingService) notifyTransition(b *models.Booking, p Principal, target models.BookingStatus) {
	recipient := b.DoctorID
	if p.UserID == b.DoctorID {
		recipient = b.EstablishmentID
	}

	var title, body string
	switch target {
	case models.BookingStatusConfirmed:
		title, body = "Booking confirmed", "The doctor accepted the booking request"
	case models.BookingStatusRejected:
		title, body = "Booking rejected", "The doctor declined the booking request"
	case models.BookingStatusCancelled:
		title, body = "Booking cancelled", "The booking has been cancelled"
	case models.BookingStatusCompleted:
		title, body = "Booking completed", "The vacation has been marked as completed"
	default:
		return
	}

	s.notify(recipient, title, body, "booking_"+string(target), b.ID)
}

func (s *BookingService) notify(userID uint, title, body, notifType string, bookingID uint) {
	notification := models.Notification{
		UserID: userID,
		Title:  title,
		Body:   body,
		Type:   notifType,
		Data:   fmt.Sprintf(`{"booking_id":%d}`, bookingID),
	}
	if err := s.db.Create(&notification).Error; err != nil {
		// Notifications are best effort, never fail the transition
		log.Printf("⚠️ Failed to create notification for user %d: %v", userID, err)
	}
}
