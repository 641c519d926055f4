package jobs

import (
	"log"
	"time"

	"cureliah-server/database"
	"cureliah-server/models"
)

// ExpirationJob cancels stale pending bookings and closes past vacation posts
type ExpirationJob struct {
	interval time.Duration
	stopChan chan bool
}

// NewExpirationJob creates a new expiration job
func NewExpirationJob(interval time.Duration) *ExpirationJob {
	if interval <= 0 {
		interval = 60 * time.Second
	}
	return &ExpirationJob{
		interval: interval,
		stopChan: make(chan bool),
	}
}

// Start begins the expiration job
func (j *ExpirationJob) Start() {
	go j.run()
	log.Println("🚀 Expiration job started")
}

// Stop stops the expiration job
func (j *ExpirationJob) Stop() {
	j.stopChan <- true
	log.Println("🛑 Expiration job stopped")
}

func (j *ExpirationJob) run() {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			j.cancelStalePendingBookings()
			j.closePastPosts()
		case <-j.stopChan:
			return
		}
	}
}

// cancelStalePendingBookings cancels pending bookings whose service period has
// already started without a decision from the listing owner.
func (j *ExpirationJob) cancelStalePendingBookings() {
	var stale []models.Booking
	err := database.DB.
		Joins("JOIN vacation_posts ON vacation_posts.id = bookings.vacation_post_id").
		Where("bookings.status = ? AND vacation_posts.start_date <= ?",
			models.BookingStatusPending, time.Now()).
		Find(&stale).Error
	if err != nil {
		log.Printf("❌ Error checking stale bookings: %v", err)
		return
	}

	if len(stale) == 0 {
		return
	}
	log.Printf("⏰ Found %d stale pending bookings", len(stale))

	for _, booking := range stale {
		j.expireBooking(booking)
	}
}

func (j *ExpirationJob) expireBooking(booking models.Booking) {
	res := database.DB.Model(&models.Booking{}).
		Where("id = ? AND version = ? AND status = ?",
			booking.ID, booking.Version, models.BookingStatusPending).
		Updates(map[string]interface{}{
			"status":  models.BookingStatusCancelled,
			"version": booking.Version + 1,
		})
	if res.Error != nil {
		log.Printf("❌ Failed to expire booking %d: %v", booking.ID, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		// Someone transitioned it concurrently, leave it alone
		return
	}

	log.Printf("✅ Booking %d auto-cancelled (start date passed)", booking.ID)

	for _, userID := range []uint{booking.DoctorID, booking.EstablishmentID} {
		notification := models.Notification{
			UserID: userID,
			Title:  "Booking expired",
			Body:   "A pending booking was cancelled because its start date passed without confirmation",
			Type:   "booking_cancelled",
		}
		if err := database.DB.Create(&notification).Error; err != nil {
			log.Printf("⚠️ Failed to notify user %d about expired booking %d: %v", userID, booking.ID, err)
		}
	}
}

// closePastPosts cancels still-available posts whose end date has passed.
func (j *ExpirationJob) closePastPosts() {
	res := database.DB.Model(&models.VacationPost{}).
		Where("status = ? AND end_date < ?", models.PostStatusAvailable, time.Now()).
		Update("status", models.PostStatusCancelled)
	if res.Error != nil {
		log.Printf("❌ Error closing past posts: %v", res.Error)
		return
	}
	if res.RowsAffected > 0 {
		log.Printf("✅ Closed %d past vacation posts", res.RowsAffected)
	}
}
