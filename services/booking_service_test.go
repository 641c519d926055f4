package services

import (
	"errors"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"cureliah-server/models"
)

const (
	testDoctorID        = uint(1)
	testEstablishmentID = uint(2)
	testOtherDoctorID   = uint(3)
	testOtherEstabID    = uint(4)
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	// Minimal sqlite-friendly schema for the booking engine. Array columns
	// are stored as TEXT.
	schema := []string{
		`CREATE TABLE vacation_posts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			doctor_id INTEGER NOT NULL,
			title TEXT NOT NULL,
			speciality TEXT NOT NULL,
			location TEXT NOT NULL,
			hourly_rate REAL NOT NULL,
			start_date DATETIME NOT NULL,
			end_date DATETIME NOT NULL,
			requirements TEXT,
			description TEXT,
			status TEXT NOT NULL DEFAULT 'draft',
			created_at DATETIME,
			updated_at DATETIME,
			deleted_at DATETIME
		);`,
		`CREATE TABLE bookings (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			vacation_post_id INTEGER NOT NULL,
			doctor_id INTEGER NOT NULL,
			establishment_id INTEGER NOT NULL,
			requested_by_id INTEGER NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			payment_status TEXT,
			start_date DATETIME NOT NULL,
			end_date DATETIME NOT NULL,
			total_amount REAL NOT NULL,
			duration_hours REAL,
			message TEXT,
			contact_phone TEXT,
			urgency TEXT NOT NULL DEFAULT 'medium',
			version INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME,
			updated_at DATETIME,
			deleted_at DATETIME
		);`,
		`CREATE TABLE doctor_profiles (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL UNIQUE,
			first_name TEXT NOT NULL,
			last_name TEXT NOT NULL,
			speciality TEXT NOT NULL,
			experience_years INTEGER DEFAULT 0,
			languages TEXT,
			bio TEXT,
			hourly_rate REAL,
			licence_number TEXT,
			licence_doc_url TEXT,
			is_verified INTEGER DEFAULT 0,
			city TEXT,
			contact_phone TEXT,
			created_at DATETIME,
			updated_at DATETIME,
			deleted_at DATETIME
		);`,
		`CREATE TABLE establishment_profiles (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL UNIQUE,
			name TEXT NOT NULL,
			type TEXT,
			city TEXT,
			address TEXT,
			contact_phone TEXT,
			description TEXT,
			logo_url TEXT,
			created_at DATETIME,
			updated_at DATETIME,
			deleted_at DATETIME
		);`,
		`CREATE TABLE notifications (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			title TEXT NOT NULL,
			body TEXT NOT NULL,
			type TEXT NOT NULL,
			data TEXT,
			read INTEGER DEFAULT 0,
			read_at DATETIME,
			created_at DATETIME,
			updated_at DATETIME,
			deleted_at DATETIME
		);`,
		`CREATE TABLE payments (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			booking_id INTEGER NOT NULL,
			payer_id INTEGER NOT NULL,
			amount REAL NOT NULL,
			currency TEXT NOT NULL DEFAULT 'EUR',
			status TEXT NOT NULL DEFAULT 'pending',
			reference TEXT NOT NULL UNIQUE,
			paid_at DATETIME,
			created_at DATETIME,
			updated_at DATETIME,
			deleted_at DATETIME
		);`,
	}
	for _, stmt := range schema {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}

	return db
}

func seedPost(t *testing.T, db *gorm.DB, status models.PostStatus, start, end time.Time) *models.VacationPost {
	t.Helper()
	post := models.VacationPost{
		DoctorID:   testDoctorID,
		Title:      "Remplacement cardiologie",
		Speciality: "cardiology",
		Location:   "Lyon",
		HourlyRate: 80,
		StartDate:  start,
		EndDate:    end,
		Status:     status,
	}
	if err := db.Create(&post).Error; err != nil {
		t.Fatalf("seed post: %v", err)
	}
	return &post
}

func seedBooking(t *testing.T, db *gorm.DB, post *models.VacationPost, status models.BookingStatus) *models.Booking {
	t.Helper()
	booking := models.Booking{
		VacationPostID:  post.ID,
		DoctorID:        post.DoctorID,
		EstablishmentID: testEstablishmentID,
		RequestedByID:   testEstablishmentID,
		Status:          status,
		StartDate:       post.StartDate,
		EndDate:         post.EndDate,
		TotalAmount:     640,
		DurationHours:   8,
		Urgency:         models.UrgencyMedium,
		Version:         1,
	}
	if err := db.Create(&booking).Error; err != nil {
		t.Fatalf("seed booking: %v", err)
	}
	return &booking
}

func doctorPrincipal() Principal {
	return Principal{UserID: testDoctorID, Role: models.RoleDoctor}
}

func establishmentPrincipal() Principal {
	return Principal{UserID: testEstablishmentID, Role: models.RoleEstablishment}
}

func futureWindow() (time.Time, time.Time) {
	start := time.Now().Add(48 * time.Hour).UTC().Truncate(time.Second)
	return start, start.Add(8 * time.Hour)
}

func TestBookingService_Create(t *testing.T) {
	db := newTestDB(t)
	svc := NewBookingService(db)
	start, end := futureWindow()
	post := seedPost(t, db, models.PostStatusAvailable, start, end)

	req := models.BookingCreate{
		VacationPostID: post.ID,
		StartDate:      start.Format(time.RFC3339),
		EndDate:        end.Format(time.RFC3339),
		DurationHours:  8,
	}

	booking, err := svc.Create(establishmentPrincipal(), req)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if booking.Status != models.BookingStatusPending {
		t.Errorf("status = %q, want pending", booking.Status)
	}
	if booking.DoctorID != post.DoctorID {
		t.Errorf("doctor_id = %d, want the post owner %d", booking.DoctorID, post.DoctorID)
	}
	if booking.RequestedByID != testEstablishmentID {
		t.Errorf("requested_by_id = %d, want %d", booking.RequestedByID, testEstablishmentID)
	}
	if booking.TotalAmount != 8*80 {
		t.Errorf("total_amount = %v, want %v", booking.TotalAmount, 8*80.0)
	}
	if booking.Version != 1 {
		t.Errorf("version = %d, want 1", booking.Version)
	}

	// The post owner is notified of the new request
	var notifCount int64
	db.Model(&models.Notification{}).Where("user_id = ? AND type = ?", post.DoctorID, "booking_created").Count(&notifCount)
	if notifCount != 1 {
		t.Errorf("doctor notifications = %d, want 1", notifCount)
	}
}

func TestBookingService_Create_Rejections(t *testing.T) {
	db := newTestDB(t)
	svc := NewBookingService(db)
	start, end := futureWindow()

	available := seedPost(t, db, models.PostStatusAvailable, start, end)
	draft := seedPost(t, db, models.PostStatusDraft, start, end)

	validReq := func(postID uint) models.BookingCreate {
		return models.BookingCreate{
			VacationPostID: postID,
			StartDate:      start.Format(time.RFC3339),
			EndDate:        end.Format(time.RFC3339),
		}
	}

	if _, err := svc.Create(doctorPrincipal(), validReq(available.ID)); !errors.Is(err, ErrForbidden) {
		t.Errorf("doctor creating a booking: err = %v, want ErrForbidden", err)
	}

	if _, err := svc.Create(establishmentPrincipal(), validReq(draft.ID)); !errors.Is(err, ErrListingUnavailable) {
		t.Errorf("booking a draft post: err = %v, want ErrListingUnavailable", err)
	}

	if _, err := svc.Create(establishmentPrincipal(), validReq(9999)); !errors.Is(err, ErrNotFound) {
		t.Errorf("booking a missing post: err = %v, want ErrNotFound", err)
	}

	badDates := validReq(available.ID)
	badDates.StartDate = end.Format(time.RFC3339)
	badDates.EndDate = start.Format(time.RFC3339)
	if _, err := svc.Create(establishmentPrincipal(), badDates); !errors.Is(err, ErrInvalidDates) {
		t.Errorf("end before start: err = %v, want ErrInvalidDates", err)
	}
}

func TestBookingService_ConfirmByDoctor(t *testing.T) {
	db := newTestDB(t)
	svc := NewBookingService(db)
	start, end := futureWindow()
	post := seedPost(t, db, models.PostStatusAvailable, start, end)
	booking := seedBooking(t, db, post, models.BookingStatusPending)

	updated, err := svc.Transition(doctorPrincipal(), booking.ID, models.BookingStatusConfirmed)
	if err != nil {
		t.Fatalf("Transition: %v", err)
	}

	if updated.Status != models.BookingStatusConfirmed {
		t.Errorf("status = %q, want confirmed", updated.Status)
	}
	if updated.Version != 2 {
		t.Errorf("version = %d, want 2 after one transition", updated.Version)
	}

	// The listing flips to booked in the same transaction
	var freshPost models.VacationPost
	if err := db.First(&freshPost, post.ID).Error; err != nil {
		t.Fatalf("reload post: %v", err)
	}
	if freshPost.Status != models.PostStatusBooked {
		t.Errorf("post status = %q, want booked", freshPost.Status)
	}

	// The establishment is notified
	var notifCount int64
	db.Model(&models.Notification{}).Where("user_id = ? AND type = ?", testEstablishmentID, "booking_confirmed").Count(&notifCount)
	if notifCount != 1 {
		t.Errorf("establishment notifications = %d, want 1", notifCount)
	}
}

func TestBookingService_ConfirmByEstablishmentIsForbidden(t *testing.T) {
	db := newTestDB(t)
	svc := NewBookingService(db)
	start, end := futureWindow()
	post := seedPost(t, db, models.PostStatusAvailable, start, end)
	booking := seedBooking(t, db, post, models.BookingStatusPending)

	_, err := svc.Transition(establishmentPrincipal(), booking.ID, models.BookingStatusConfirmed)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}

	assertUnchanged(t, db, booking.ID, models.BookingStatusPending, 1)
}

func TestBookingService_StrangerCannotTouchBooking(t *testing.T) {
	db := newTestDB(t)
	svc := NewBookingService(db)
	start, end := futureWindow()
	post := seedPost(t, db, models.PostStatusAvailable, start, end)
	booking := seedBooking(t, db, post, models.BookingStatusPending)

	stranger := Principal{UserID: testOtherDoctorID, Role: models.RoleDoctor}
	if _, err := svc.Transition(stranger, booking.ID, models.BookingStatusConfirmed); !errors.Is(err, ErrForbidden) {
		t.Errorf("stranger doctor confirming: err = %v, want ErrForbidden", err)
	}

	otherEstab := Principal{UserID: testOtherEstabID, Role: models.RoleEstablishment}
	if _, err := svc.Transition(otherEstab, booking.ID, models.BookingStatusCancelled); !errors.Is(err, ErrForbidden) {
		t.Errorf("stranger establishment cancelling: err = %v, want ErrForbidden", err)
	}

	assertUnchanged(t, db, booking.ID, models.BookingStatusPending, 1)
}

func TestBookingService_RejectConfirmedBooking(t *testing.T) {
	db := newTestDB(t)
	svc := NewBookingService(db)
	start, end := futureWindow()
	post := seedPost(t, db, models.PostStatusBooked, start, end)
	booking := seedBooking(t, db, post, models.BookingStatusConfirmed)

	// The doctor could reject in principle, just not from confirmed:
	// that is a state problem.
	if _, err := svc.Transition(doctorPrincipal(), booking.ID, models.BookingStatusRejected); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("doctor rejecting confirmed booking: err = %v, want ErrInvalidTransition", err)
	}

	// The establishment could never reject anything: that is a
	// permission problem regardless of state.
	if _, err := svc.Transition(establishmentPrincipal(), booking.ID, models.BookingStatusRejected); !errors.Is(err, ErrForbidden) {
		t.Errorf("establishment rejecting confirmed booking: err = %v, want ErrForbidden", err)
	}

	assertUnchanged(t, db, booking.ID, models.BookingStatusConfirmed, 1)
}

func TestBookingService_TerminalStatusesAreFrozen(t *testing.T) {
	db := newTestDB(t)
	svc := NewBookingService(db)
	start, end := futureWindow()

	for _, terminal := range []models.BookingStatus{
		models.BookingStatusRejected,
		models.BookingStatusCancelled,
		models.BookingStatusCompleted,
	} {
		post := seedPost(t, db, models.PostStatusAvailable, start, end)
		booking := seedBooking(t, db, post, terminal)

		if _, err := svc.Transition(doctorPrincipal(), booking.ID, models.BookingStatusCancelled); err == nil {
			t.Errorf("transition out of %q succeeded, want error", terminal)
		}
		assertUnchanged(t, db, booking.ID, terminal, 1)
	}
}

func TestBookingService_CancelConfirmedReopensPost(t *testing.T) {
	db := newTestDB(t)
	svc := NewBookingService(db)
	start, end := futureWindow()
	post := seedPost(t, db, models.PostStatusBooked, start, end)
	booking := seedBooking(t, db, post, models.BookingStatusConfirmed)

	// Either party may cancel a confirmed booking; here the establishment
	updated, err := svc.Transition(establishmentPrincipal(), booking.ID, models.BookingStatusCancelled)
	if err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if updated.Status != models.BookingStatusCancelled {
		t.Errorf("status = %q, want cancelled", updated.Status)
	}

	var freshPost models.VacationPost
	if err := db.First(&freshPost, post.ID).Error; err != nil {
		t.Fatalf("reload post: %v", err)
	}
	if freshPost.Status != models.PostStatusAvailable {
		t.Errorf("post status = %q, want available again", freshPost.Status)
	}
}

func TestBookingService_CancelPendingByRequester(t *testing.T) {
	db := newTestDB(t)
	svc := NewBookingService(db)
	start, end := futureWindow()
	post := seedPost(t, db, models.PostStatusAvailable, start, end)
	booking := seedBooking(t, db, post, models.BookingStatusPending)

	// The doctor did not request this booking and cannot withdraw it
	if _, err := svc.Transition(doctorPrincipal(), booking.ID, models.BookingStatusCancelled); !errors.Is(err, ErrForbidden) {
		t.Errorf("doctor cancelling pending booking: err = %v, want ErrForbidden", err)
	}

	updated, err := svc.Transition(establishmentPrincipal(), booking.ID, models.BookingStatusCancelled)
	if err != nil {
		t.Fatalf("requester cancelling: %v", err)
	}
	if updated.Status != models.BookingStatusCancelled {
		t.Errorf("status = %q, want cancelled", updated.Status)
	}

	// The post was never booked, it stays available
	var freshPost models.VacationPost
	db.First(&freshPost, post.ID)
	if freshPost.Status != models.PostStatusAvailable {
		t.Errorf("post status = %q, want available", freshPost.Status)
	}
}

func TestBookingService_CompleteClosesPost(t *testing.T) {
	db := newTestDB(t)
	svc := NewBookingService(db)
	start, end := futureWindow()
	post := seedPost(t, db, models.PostStatusBooked, start, end)
	booking := seedBooking(t, db, post, models.BookingStatusConfirmed)

	updated, err := svc.Transition(doctorPrincipal(), booking.ID, models.BookingStatusCompleted)
	if err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if updated.Status != models.BookingStatusCompleted {
		t.Errorf("status = %q, want completed", updated.Status)
	}

	var freshPost models.VacationPost
	db.First(&freshPost, post.ID)
	if freshPost.Status != models.PostStatusCompleted {
		t.Errorf("post status = %q, want completed", freshPost.Status)
	}
}

func TestBookingService_CompletionTimeGate(t *testing.T) {
	db := newTestDB(t)
	svc := NewBookingService(db)
	svc.CompletionRequiresElapsed = true

	start, end := futureWindow()
	post := seedPost(t, db, models.PostStatusBooked, start, end)
	booking := seedBooking(t, db, post, models.BookingStatusConfirmed)

	// Service period has not ended yet
	if _, err := svc.Transition(doctorPrincipal(), booking.ID, models.BookingStatusCompleted); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("completing before end date: err = %v, want ErrInvalidTransition", err)
	}
	assertUnchanged(t, db, booking.ID, models.BookingStatusConfirmed, 1)

	// Move the clock past the end date and retry
	svc.now = func() time.Time { return end.Add(time.Hour) }
	if _, err := svc.Transition(doctorPrincipal(), booking.ID, models.BookingStatusCompleted); err != nil {
		t.Fatalf("completing after end date: %v", err)
	}
}

func TestBookingService_UnknownTargetStatus(t *testing.T) {
	db := newTestDB(t)
	svc := NewBookingService(db)
	start, end := futureWindow()
	post := seedPost(t, db, models.PostStatusAvailable, start, end)
	booking := seedBooking(t, db, post, models.BookingStatusPending)

	if _, err := svc.Transition(doctorPrincipal(), booking.ID, models.BookingStatus("approved")); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("unrecognized target: err = %v, want ErrInvalidTransition", err)
	}
	assertUnchanged(t, db, booking.ID, models.BookingStatusPending, 1)
}

func TestBookingService_ConcurrentTransitionConflicts(t *testing.T) {
	db := newTestDB(t)
	svc := NewBookingService(db)
	start, end := futureWindow()
	post := seedPost(t, db, models.PostStatusAvailable, start, end)
	booking := seedBooking(t, db, post, models.BookingStatusPending)

	// Sneak a competing version bump in between the engine's read and its
	// compare-and-swap, so the CAS predicate no longer matches.
	raced := false
	err := db.Callback().Update().Before("gorm:update").Register("test_competing_writer", func(tx *gorm.DB) {
		if raced {
			return
		}
		raced = true
		tx.Session(&gorm.Session{NewDB: true}).
			Exec("UPDATE bookings SET version = version + 1 WHERE id = ?", booking.ID)
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}

	if _, err := svc.Transition(doctorPrincipal(), booking.ID, models.BookingStatusConfirmed); !errors.Is(err, ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}

	// The transaction rolled back, nothing changed
	assertUnchanged(t, db, booking.ID, models.BookingStatusPending, 1)

	var freshPost models.VacationPost
	db.First(&freshPost, post.ID)
	if freshPost.Status != models.PostStatusAvailable {
		t.Errorf("post status = %q, the listing must not flip on a lost race", freshPost.Status)
	}
}

func assertUnchanged(t *testing.T, db *gorm.DB, bookingID uint, wantStatus models.BookingStatus, wantVersion int) {
	t.Helper()
	var fresh models.Booking
	if err := db.First(&fresh, bookingID).Error; err != nil {
		t.Fatalf("reload booking: %v", err)
	}
	if fresh.Status != wantStatus {
		t.Errorf("status = %q, want unchanged %q", fresh.Status, wantStatus)
	}
	if fresh.Version != wantVersion {
		t.Errorf("version = %d, want unchanged %d", fresh.Version, wantVersion)
	}
}
