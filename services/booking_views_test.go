package services

import (
	"testing"
	"time"

	"cureliah-server/models"
)

func TestParseDateBucket(t *testing.T) {
	tests := []struct {
		raw    string
		want   DateBucket
		wantOK bool
	}{
		{"", DateBucketAll, true},
		{"all", DateBucketAll, true},
		{"upcoming", DateBucketUpcoming, true},
		{"current", DateBucketCurrent, true},
		{"past", DateBucketPast, true},
		{"future", DateBucketAll, false},
		{"Upcoming", DateBucketAll, false},
	}

	for _, tt := range tests {
		got, ok := ParseDateBucket(tt.raw)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseDateBucket(%q) = (%q, %v), want (%q, %v)", tt.raw, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestInDateBucket(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	hour := time.Hour

	tests := []struct {
		name       string
		start, end time.Time
		bucket     DateBucket
		want       bool
	}{
		{"future listing is upcoming", now.Add(hour), now.Add(2 * hour), DateBucketUpcoming, true},
		{"running listing is not upcoming", now.Add(-hour), now.Add(hour), DateBucketUpcoming, false},
		{"listing starting exactly now is not upcoming", now, now.Add(hour), DateBucketUpcoming, false},

		{"running listing is current", now.Add(-hour), now.Add(hour), DateBucketCurrent, true},
		{"listing starting exactly now is current", now, now.Add(hour), DateBucketCurrent, true},
		{"listing ending exactly now is current", now.Add(-hour), now, DateBucketCurrent, true},
		{"future listing is not current", now.Add(hour), now.Add(2 * hour), DateBucketCurrent, false},
		{"finished listing is not current", now.Add(-2 * hour), now.Add(-hour), DateBucketCurrent, false},

		{"finished listing is past", now.Add(-2 * hour), now.Add(-hour), DateBucketPast, true},
		{"running listing is also past once started", now.Add(-hour), now.Add(hour), DateBucketPast, true},
		{"future listing is not past", now.Add(hour), now.Add(2 * hour), DateBucketPast, false},

		{"all matches everything", now.Add(hour), now.Add(2 * hour), DateBucketAll, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InDateBucket(tt.start, tt.end, now, tt.bucket); got != tt.want {
				t.Errorf("InDateBucket(%v, %v, now, %q) = %v, want %v", tt.start, tt.end, tt.bucket, got, tt.want)
			}
		})
	}
}

func TestDerivePaymentBadge(t *testing.T) {
	tests := []struct {
		name          string
		paymentStatus models.PaymentStatus
		bookingStatus models.BookingStatus
		wantLabel     string
		wantSeverity  BadgeSeverity
		wantOK        bool
	}{
		{"paid on confirmed", models.PaymentStatusPaid, models.BookingStatusConfirmed, "Paid", SeverityPositive, true},
		{"paid on completed", models.PaymentStatusPaid, models.BookingStatusCompleted, "Paid", SeverityPositive, true},
		{"failed on confirmed", models.PaymentStatusFailed, models.BookingStatusConfirmed, "Payment failed", SeverityNegative, true},
		{"pending on confirmed", models.PaymentStatusPending, models.BookingStatusConfirmed, "Pending payment", SeverityWarning, true},
		{"unset on confirmed falls back to pending", "", models.BookingStatusConfirmed, "Pending payment", SeverityWarning, true},
		{"booked alias counts as confirmed", models.PaymentStatusPaid, models.BookingStatus("booked"), "Paid", SeverityPositive, true},

		{"no badge on pending booking", models.PaymentStatusPaid, models.BookingStatusPending, "", "", false},
		{"no badge on rejected booking", models.PaymentStatusPaid, models.BookingStatusRejected, "", "", false},
		{"no badge on cancelled booking", models.PaymentStatusFailed, models.BookingStatusCancelled, "", "", false},
		{"no badge on unrecognized status", models.PaymentStatusPaid, models.BookingStatus("weird"), "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			badge, ok := DerivePaymentBadge(tt.paymentStatus, tt.bookingStatus)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if badge.Label != tt.wantLabel || badge.Severity != tt.wantSeverity {
				t.Errorf("badge = {%q, %q}, want {%q, %q}", badge.Label, badge.Severity, tt.wantLabel, tt.wantSeverity)
			}
		})
	}
}

func TestGroupByBucket(t *testing.T) {
	bookings := []models.Booking{
		{Status: models.BookingStatusPending},
		{Status: models.BookingStatusPending},
		{Status: models.BookingStatusConfirmed},
		{Status: models.BookingStatus("booked")}, // legacy rows count as active
		{Status: models.BookingStatusCompleted},
		{Status: models.BookingStatusCancelled},
		{Status: models.BookingStatusRejected},
		{Status: models.BookingStatus("corrupt")},
	}

	buckets := GroupByBucket(bookings)

	if buckets.Pending != 2 {
		t.Errorf("Pending = %d, want 2", buckets.Pending)
	}
	if buckets.Active != 2 {
		t.Errorf("Active = %d, want 2", buckets.Active)
	}
	if buckets.Completed != 1 {
		t.Errorf("Completed = %d, want 1", buckets.Completed)
	}
	if buckets.Cancelled != 2 {
		t.Errorf("Cancelled = %d, want 2", buckets.Cancelled)
	}
	if buckets.Unknown != 1 {
		t.Errorf("Unknown = %d, want 1", buckets.Unknown)
	}

	total := buckets.Pending + buckets.Active + buckets.Completed + buckets.Cancelled + buckets.Unknown
	if total != len(bookings) {
		t.Errorf("buckets total %d, want %d: every booking lands in exactly one bucket", total, len(bookings))
	}
}

func TestParseStatusSet(t *testing.T) {
	got := parseStatusSet("pending, booked,nonsense")
	want := []models.BookingStatus{
		models.BookingStatusPending,
		models.BookingStatusConfirmed,
		models.BookingStatusUnknown,
	}
	if len(got) != len(want) {
		t.Fatalf("parseStatusSet returned %d statuses, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("parseStatusSet[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
