package routes

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"cureliah-server/database"
	"cureliah-server/models"
	"cureliah-server/services"
)

// RegisterPaymentRoutes registers payment initiation and provider callback routes
func RegisterPaymentRoutes(router *gin.RouterGroup) {
	paymentService := services.NewPaymentService(database.DB)

	// Initiate a payment for a confirmed or completed booking (establishment side)
	router.POST("/bookings/:id/payments", func(c *gin.Context) {
		principal := currentPrincipal(c)
		bookingID, err := parseIDParam(c, "id")
		if err != nil {
			return
		}

		payment, err := paymentService.Initiate(principal, bookingID)
		if err != nil {
			respondPaymentError(c, err)
			return
		}

		log.Printf("✅ Payment %s initiated for booking %d", payment.Reference, bookingID)
		c.JSON(http.StatusCreated, gin.H{
			"message": "Payment initiated",
			"payment": payment,
		})
	})

	// Provider callback reporting the payment outcome
	router.POST("/payments/callback", func(c *gin.Context) {
		var req struct {
			Reference string `json:"reference" binding:"required"`
			Result    string `json:"result" binding:"required,oneof=paid failed"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid request",
				"message": err.Error(),
			})
			return
		}

		payment, err := paymentService.RecordResult(req.Reference, models.PaymentStatus(req.Result))
		if err != nil {
			respondPaymentError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "Payment result recorded",
			"payment": payment,
		})
	})

	// List payments for a booking (parties and admins)
	router.GET("/bookings/:id/payments", func(c *gin.Context) {
		principal := currentPrincipal(c)
		bookingID, err := parseIDParam(c, "id")
		if err != nil {
			return
		}

		var booking models.Booking
		if err := database.DB.First(&booking, bookingID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
			return
		}
		if principal.Role != models.RoleAdmin &&
			booking.DoctorID != principal.UserID &&
			booking.EstablishmentID != principal.UserID {
			c.JSON(http.StatusForbidden, gin.H{"error": "You are not allowed to view these payments"})
			return
		}

		var payments []models.Payment
		if err := database.DB.
			Where("booking_id = ?", bookingID).
			Order("created_at DESC").
			Find(&payments).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load payments"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"payments": payments, "count": len(payments)})
	})
}

func respondPaymentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrPaymentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Payment not found"})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not allowed to perform this action"})
	case errors.Is(err, services.ErrPaymentNotEligible):
		c.JSON(http.StatusConflict, gin.H{
			"error":   "Payment not eligible",
			"message": "Payments apply to confirmed or completed bookings only",
		})
	default:
		log.Printf("❌ Payment operation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
