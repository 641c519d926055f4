package services

import (
	"errors"
	"testing"

	"cureliah-server/models"
)

func TestPaymentService_Initiate(t *testing.T) {
	db := newTestDB(t)
	svc := NewPaymentService(db)
	start, end := futureWindow()
	post := seedPost(t, db, models.PostStatusBooked, start, end)
	booking := seedBooking(t, db, post, models.BookingStatusConfirmed)

	payment, err := svc.Initiate(establishmentPrincipal(), booking.ID)
	if err != nil {
		t.Fatalf("Initiate: %v", err)
	}

	if payment.Status != models.PaymentStatusPending {
		t.Errorf("payment status = %q, want pending", payment.Status)
	}
	if payment.Amount != booking.TotalAmount {
		t.Errorf("amount = %v, want the booking total %v", payment.Amount, booking.TotalAmount)
	}
	if payment.Reference == "" {
		t.Error("payment must carry a processor reference")
	}

	// The booking overlay moves to pending in the same transaction
	var fresh models.Booking
	db.First(&fresh, booking.ID)
	if fresh.PaymentStatus == nil || *fresh.PaymentStatus != models.PaymentStatusPending {
		t.Errorf("booking payment_status = %v, want pending", fresh.PaymentStatus)
	}
}

func TestPaymentService_InitiateRejections(t *testing.T) {
	db := newTestDB(t)
	svc := NewPaymentService(db)
	start, end := futureWindow()
	post := seedPost(t, db, models.PostStatusAvailable, start, end)
	pending := seedBooking(t, db, post, models.BookingStatusPending)
	confirmed := seedBooking(t, db, post, models.BookingStatusConfirmed)

	if _, err := svc.Initiate(establishmentPrincipal(), pending.ID); !errors.Is(err, ErrPaymentNotEligible) {
		t.Errorf("paying a pending booking: err = %v, want ErrPaymentNotEligible", err)
	}

	if _, err := svc.Initiate(doctorPrincipal(), confirmed.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("doctor paying: err = %v, want ErrForbidden", err)
	}

	if _, err := svc.Initiate(establishmentPrincipal(), 9999); !errors.Is(err, ErrNotFound) {
		t.Errorf("paying a missing booking: err = %v, want ErrNotFound", err)
	}
}

func TestPaymentService_RecordResultPaid(t *testing.T) {
	db := newTestDB(t)
	svc := NewPaymentService(db)
	start, end := futureWindow()
	post := seedPost(t, db, models.PostStatusBooked, start, end)
	booking := seedBooking(t, db, post, models.BookingStatusConfirmed)

	payment, err := svc.Initiate(establishmentPrincipal(), booking.ID)
	if err != nil {
		t.Fatalf("Initiate: %v", err)
	}

	updated, err := svc.RecordResult(payment.Reference, models.PaymentStatusPaid)
	if err != nil {
		t.Fatalf("RecordResult: %v", err)
	}
	if updated.Status != models.PaymentStatusPaid {
		t.Errorf("payment status = %q, want paid", updated.Status)
	}
	if updated.PaidAt == nil {
		t.Error("paid_at must be set on a paid payment")
	}

	var fresh models.Booking
	db.First(&fresh, booking.ID)
	if fresh.PaymentStatus == nil || *fresh.PaymentStatus != models.PaymentStatusPaid {
		t.Errorf("booking payment_status = %v, want paid", fresh.PaymentStatus)
	}

	// The doctor is told about the money
	var notifCount int64
	db.Model(&models.Notification{}).Where("user_id = ? AND type = ?", booking.DoctorID, "payment_received").Count(&notifCount)
	if notifCount != 1 {
		t.Errorf("payment notifications = %d, want 1", notifCount)
	}
}

func TestPaymentService_RecordResultFailed(t *testing.T) {
	db := newTestDB(t)
	svc := NewPaymentService(db)
	start, end := futureWindow()
	post := seedPost(t, db, models.PostStatusBooked, start, end)
	booking := seedBooking(t, db, post, models.BookingStatusConfirmed)

	payment, err := svc.Initiate(establishmentPrincipal(), booking.ID)
	if err != nil {
		t.Fatalf("Initiate: %v", err)
	}

	updated, err := svc.RecordResult(payment.Reference, models.PaymentStatusFailed)
	if err != nil {
		t.Fatalf("RecordResult: %v", err)
	}
	if updated.Status != models.PaymentStatusFailed {
		t.Errorf("payment status = %q, want failed", updated.Status)
	}
	if updated.PaidAt != nil {
		t.Error("paid_at must stay empty on a failed payment")
	}

	var fresh models.Booking
	db.First(&fresh, booking.ID)
	if fresh.PaymentStatus == nil || *fresh.PaymentStatus != models.PaymentStatusFailed {
		t.Errorf("booking payment_status = %v, want failed", fresh.PaymentStatus)
	}
}

func TestPaymentService_RecordResultValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewPaymentService(db)

	if _, err := svc.RecordResult("no-such-ref", models.PaymentStatusPaid); !errors.Is(err, ErrPaymentNotFound) {
		t.Errorf("unknown reference: err = %v, want ErrPaymentNotFound", err)
	}
	if _, err := svc.RecordResult("whatever", models.PaymentStatusPending); !errors.Is(err, ErrPaymentNotEligible) {
		t.Errorf("pending is not a processor outcome: err = %v, want ErrPaymentNotEligible", err)
	}
}
