package services

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"cureliah-server/models"
)

var (
	ErrPaymentNotEligible = errors.New("booking is not in a payable status")
	ErrPaymentNotFound    = errors.New("payment not found")
)

// PaymentService handles payment initiation and processor callbacks. There is
// no real processor integration here, only the state contract: a payment is
// initiated against a confirmed booking and later resolves to paid or failed.
type PaymentService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewPaymentService(db *gorm.DB) *PaymentService {
	return &PaymentService{db: db, now: time.Now}
}

// Initiate creates a pending payment for a confirmed or completed booking.
// Only the establishment on the booking may pay.
func (s *PaymentService) Initiate(p Principal, bookingID uint) (*models.Payment, error) {
	var booking models.Booking
	if err := s.db.First(&booking, bookingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if p.UserID != booking.EstablishmentID {
		return nil, ErrForbidden
	}

	status := models.ParseBookingStatus(string(booking.Status))
	if status != models.BookingStatusConfirmed && status != models.BookingStatusCompleted {
		return nil, ErrPaymentNotEligible
	}

	payment := models.Payment{
		BookingID: booking.ID,
		PayerID:   p.UserID,
		Amount:    booking.TotalAmount,
		Currency:  "EUR",
		Status:    models.PaymentStatusPending,
		Reference: uuid.NewString(),
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}
		pending := models.PaymentStatusPending
		return tx.Model(&models.Booking{}).
			Where("id = ?", booking.ID).
			Updates(map[string]interface{}{"payment_status": pending, "updated_at": s.now()}).Error
	})
	if err != nil {
		return nil, err
	}

	return &payment, nil
}

// RecordResult applies a processor outcome to a payment and mirrors it on the
// booking's payment_status field.
func (s *PaymentService) RecordResult(reference string, result models.PaymentStatus) (*models.Payment, error) {
	if result != models.PaymentStatusPaid && result != models.PaymentStatusFailed {
		return nil, ErrPaymentNotEligible
	}

	var payment models.Payment
	if err := s.db.Where("reference = ?", reference).First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{"status": result, "updated_at": s.now()}
		if result == models.PaymentStatusPaid {
			paidAt := s.now()
			updates["paid_at"] = paidAt
		}
		if err := tx.Model(&models.Payment{}).Where("id = ?", payment.ID).Updates(updates).Error; err != nil {
			return err
		}
		return tx.Model(&models.Booking{}).
			Where("id = ?", payment.BookingID).
			Updates(map[string]interface{}{"payment_status": result, "updated_at": s.now()}).Error
	})
	if err != nil {
		return nil, err
	}

	if result == models.PaymentStatusPaid {
		var booking models.Booking
		if err := s.db.First(&booking, payment.BookingID).Error; err == nil {
			notification := models.Notification{
				UserID: booking.DoctorID,
				Title:  "Payment received",
				Body:   "The establishment paid for the booking",
				Type:   "payment_received",
			}
			s.db.Create(&notification)
		}
	}

	if err := s.db.First(&payment, payment.ID).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}
