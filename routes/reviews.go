package routes

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"cureliah-server/database"
	"cureliah-server/models"
)

// RegisterReviewRoutes registers doctor review routes
func RegisterReviewRoutes(router *gin.RouterGroup) {
	// Leave a review for a completed booking (establishment side)
	router.POST("/reviews", func(c *gin.Context) {
		userID := c.GetUint("user_id")
		role := models.ParseUserRole(c.GetString("user_role"))
		if role != models.RoleEstablishment {
			c.JSON(http.StatusForbidden, gin.H{"error": "Only establishments can review doctors"})
			return
		}

		var req models.DoctorReviewCreate
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid request",
				"message": err.Error(),
			})
			return
		}

		var booking models.Booking
		if err := database.DB.First(&booking, req.BookingID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
			return
		}
		if booking.EstablishmentID != userID {
			c.JSON(http.StatusForbidden, gin.H{"error": "You can only review your own bookings"})
			return
		}
		if booking.Status != models.BookingStatusCompleted {
			c.JSON(http.StatusConflict, gin.H{"error": "Only completed bookings can be reviewed"})
			return
		}

		var existing models.DoctorReview
		if err := database.DB.Where("booking_id = ?", booking.ID).First(&existing).Error; err == nil {
			c.JSON(http.StatusConflict, gin.H{"error": "This booking has already been reviewed"})
			return
		}

		review := models.DoctorReview{
			EstablishmentID: userID,
			DoctorID:        booking.DoctorID,
			BookingID:       booking.ID,
			Stars:           req.Stars,
			Comment:         req.Comment,
		}
		if err := database.DB.Create(&review).Error; err != nil {
			log.Printf("❌ Review creation failed for booking %d: %v", booking.ID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create review"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"message": "Review submitted",
			"review":  review,
		})
	})

	// List reviews for a doctor, with the average rating
	router.GET("/doctors/:id/reviews", func(c *gin.Context) {
		doctorID, err := parseIDParam(c, "id")
		if err != nil {
			return
		}

		var reviews []models.DoctorReview
		if err := database.DB.
			Where("doctor_id = ?", doctorID).
			Order("created_at DESC").
			Find(&reviews).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load reviews"})
			return
		}

		var average float64
		if len(reviews) > 0 {
			total := 0
			for _, r := range reviews {
				total += r.Stars
			}
			average = float64(total) / float64(len(reviews))
		}

		c.JSON(http.StatusOK, gin.H{
			"reviews":        reviews,
			"count":          len(reviews),
			"average_rating": average,
		})
	})
}
