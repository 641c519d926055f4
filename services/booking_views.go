package services

import (
	"fmt"
	"log"
	"strings"
	"time"

	"cureliah-server/models"
)

// DateBucket narrows a booking list by where the listing dates fall relative to now
type DateBucket string

const (
	DateBucketAll      DateBucket = "all"
	DateBucketUpcoming DateBucket = "upcoming"
	DateBucketCurrent  DateBucket = "current"
	DateBucketPast     DateBucket = "past"
)

// ParseDateBucket maps a raw query value to a DateBucket; empty means all.
func ParseDateBucket(s string) (DateBucket, bool) {
	switch DateBucket(s) {
	case DateBucketAll, DateBucketUpcoming, DateBucketCurrent, DateBucketPast:
		return DateBucket(s), true
	case "":
		return DateBucketAll, true
	default:
		return DateBucketAll, false
	}
}

// InDateBucket reports whether a listing window falls into the bucket.
// A listing starting exactly now is current, not upcoming.
func InDateBucket(start, end, now time.Time, bucket DateBucket) bool {
	switch bucket {
	case DateBucketUpcoming:
		return start.After(now)
	case DateBucketCurrent:
		return !start.After(now) && !end.Before(now)
	case DateBucketPast:
		return start.Before(now)
	default:
		return true
	}
}

// BookingFilters are the optional narrowing criteria for ListBookings
type BookingFilters struct {
	// Status is a single status or a comma-separated set
	Status            string
	DateBucket        DateBucket
	Location          string
	EstablishmentType string
}

// CounterpartProfile is the display profile of the other party on a booking
type CounterpartProfile struct {
	Name            string `json:"name"`
	Type            string `json:"type,omitempty"`
	Speciality      string `json:"speciality,omitempty"`
	City            string `json:"city,omitempty"`
	ContactPhone    string `json:"contact_phone,omitempty"`
	ExperienceYears int    `json:"experience_years,omitempty"`
}

// BadgeSeverity is the styling hint attached to a payment badge
type BadgeSeverity string

const (
	SeverityPositive BadgeSeverity = "positive"
	SeverityNegative BadgeSeverity = "negative"
	SeverityWarning  BadgeSeverity = "warning"
)

// PaymentBadge is the derived, read-only payment label for a booking
type PaymentBadge struct {
	Label    string        `json:"label"`
	Severity BadgeSeverity `json:"severity"`
}

// BookingView is one enriched booking row as presented to a principal
type BookingView struct {
	models.Booking
	Counterpart  CounterpartProfile `json:"counterpart"`
	PaymentBadge *PaymentBadge      `json:"payment_badge,omitempty"`
}

// DerivePaymentBadge computes the payment badge for a booking. The badge only
// exists for confirmed or completed bookings ("booked" counts as confirmed);
// everything else returns ok=false since no payment expectation exists yet.
// Unset payment status falls back to the pending variant.
func DerivePaymentBadge(paymentStatus models.PaymentStatus, bookingStatus models.BookingStatus) (PaymentBadge, bool) {
	status := models.ParseBookingStatus(string(bookingStatus))
	if status != models.BookingStatusConfirmed && status != models.BookingStatusCompleted {
		return PaymentBadge{}, false
	}

	switch paymentStatus {
	case models.PaymentStatusPaid:
		return PaymentBadge{Label: "Paid", Severity: SeverityPositive}, true
	case models.PaymentStatusFailed:
		return PaymentBadge{Label: "Payment failed", Severity: SeverityNegative}, true
	default:
		return PaymentBadge{Label: "Pending payment", Severity: SeverityWarning}, true
	}
}

// BookingBuckets are the dashboard badge counts. Every booking lands in
// exactly one bucket; unrecognized statuses are tallied separately instead of
// being folded into a default.
type BookingBuckets struct {
	Pending   int `json:"pending"`
	Active    int `json:"active"`
	Completed int `json:"completed"`
	Cancelled int `json:"cancelled"`
	Unknown   int `json:"unknown,omitempty"`
}

// GroupByBucket partitions a booking collection into dashboard buckets
func GroupByBucket(bookings []models.Booking) BookingBuckets {
	var buckets BookingBuckets
	for _, b := range bookings {
		switch models.ParseBookingStatus(string(b.Status)) {
		case models.BookingStatusPending:
			buckets.Pending++
		case models.BookingStatusConfirmed:
			buckets.Active++
		case models.BookingStatusCompleted:
			buckets.Completed++
		case models.BookingStatusCancelled, models.BookingStatusRejected:
			buckets.Cancelled++
		default:
			buckets.Unknown++
		}
	}
	return buckets
}

// ListBookings returns the bookings visible to the principal, filtered and
// enriched for display, most recent first. An empty result is an empty slice,
// not an error.
func (s *BookingService) ListBookings(p Principal, f BookingFilters) ([]BookingView, error) {
	q := s.db.Model(&models.Booking{}).Preload("VacationPost")

	switch p.Role {
	case models.RoleDoctor:
		q = q.Where("doctor_id = ?", p.UserID)
	case models.RoleEstablishment:
		q = q.Where("establishment_id = ?", p.UserID)
	case models.RoleAdmin:
		// admins see the full collection
	default:
		return nil, ErrForbidden
	}

	if f.Status != "" {
		statuses := parseStatusSet(f.Status)
		if len(statuses) == 1 {
			q = q.Where("status = ?", statuses[0])
		} else {
			q = q.Where("status IN ?", statuses)
		}
	}

	var bookings []models.Booking
	if err := q.Order("created_at DESC").Find(&bookings).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryFailure, err)
	}

	now := s.now()
	views := make([]BookingView, 0, len(bookings))
	for _, b := range bookings {
		if !InDateBucket(b.VacationPost.StartDate, b.VacationPost.EndDate, now, f.DateBucket) {
			continue
		}
		if f.Location != "" && !containsFold(b.VacationPost.Location, f.Location) {
			continue
		}

		counterpart := s.counterpartProfile(p, &b)
		if f.EstablishmentType != "" && p.Role == models.RoleDoctor && counterpart.Type != f.EstablishmentType {
			continue
		}

		view := BookingView{Booking: b, Counterpart: counterpart}
		if badge, ok := DerivePaymentBadge(paymentStatusOf(&b), b.Status); ok {
			view.PaymentBadge = &badge
		}
		views = append(views, view)
	}

	return views, nil
}

// GetBooking loads one booking for display. Only the two parties and admins
// may see it.
func (s *BookingService) GetBooking(p Principal, bookingID uint) (*BookingView, error) {
	var booking models.Booking
	if err := s.db.Preload("VacationPost").First(&booking, bookingID).Error; err != nil {
		return nil, ErrNotFound
	}

	if p.Role != models.RoleAdmin && booking.DoctorID != p.UserID && booking.EstablishmentID != p.UserID {
		return nil, ErrForbidden
	}

	view := BookingView{Booking: booking, Counterpart: s.counterpartProfile(p, &booking)}
	if badge, ok := DerivePaymentBadge(paymentStatusOf(&booking), booking.Status); ok {
		view.PaymentBadge = &badge
	}
	return &view, nil
}

// counterpartProfile resolves the other party's display profile. A missing
// profile yields a placeholder so the booking never disappears from the list.
func (s *BookingService) counterpartProfile(p Principal, b *models.Booking) CounterpartProfile {
	if p.Role == models.RoleEstablishment {
		var doctor models.DoctorProfile
		if err := s.db.Where("user_id = ?", b.DoctorID).First(&doctor).Error; err != nil {
			log.Printf("⚠️ Doctor profile missing for booking %d (user %d): %v", b.ID, b.DoctorID, err)
			return CounterpartProfile{Name: "Unknown", Speciality: "Unspecified"}
		}
		return CounterpartProfile{
			Name:            doctor.FullName(),
			Speciality:      doctor.Speciality,
			City:            doctor.City,
			ContactPhone:    doctor.ContactPhone,
			ExperienceYears: doctor.ExperienceYears,
		}
	}

	// Doctors and admins see the establishment side
	var establishment models.EstablishmentProfile
	if err := s.db.Where("user_id = ?", b.EstablishmentID).First(&establishment).Error; err != nil {
		log.Printf("⚠️ Establishment profile missing for booking %d (user %d): %v", b.ID, b.EstablishmentID, err)
		return CounterpartProfile{Name: "Unknown", Type: "Unspecified"}
	}
	return CounterpartProfile{
		Name:         establishment.Name,
		Type:         establishment.Type,
		City:         establishment.City,
		ContactPhone: establishment.ContactPhone,
	}
}

func paymentStatusOf(b *models.Booking) models.PaymentStatus {
	if b.PaymentStatus == nil {
		return ""
	}
	return *b.PaymentStatus
}

// parseStatusSet splits a comma-separated status filter into closed statuses.
// The "booked" alias folds into confirmed; unrecognized values are kept as
// the unknown marker so they match nothing rather than everything.
func parseStatusSet(raw string) []models.BookingStatus {
	parts := strings.Split(raw, ",")
	statuses := make([]models.BookingStatus, 0, len(parts))
	for _, part := range parts {
		statuses = append(statuses, models.ParseBookingStatus(strings.TrimSpace(part)))
	}
	return statuses
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
