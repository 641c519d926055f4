package routes

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"cureliah-server/config"
	"cureliah-server/database"
	"cureliah-server/models"
	"cureliah-server/services"
	"cureliah-server/websocket"
)

// RegisterBookingRoutes registers booking lifecycle routes
func RegisterBookingRoutes(router *gin.RouterGroup, hub *websocket.Hub) {
	bookingService := services.NewBookingService(database.DB)
	if config.AppConfig != nil {
		bookingService.CompletionRequiresElapsed = config.AppConfig.Booking.CompletionRequiresElapsed
	}

	// Create a booking request for a vacation post
	router.POST("/bookings", func(c *gin.Context) {
		principal := currentPrincipal(c)

		var req models.BookingCreate
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid request",
				"message": err.Error(),
			})
			return
		}

		booking, err := bookingService.Create(principal, req)
		if err != nil {
			respondBookingError(c, err)
			return
		}

		log.Printf("✅ Booking %d created by user %d for post %d", booking.ID, principal.UserID, req.VacationPostID)
		c.JSON(http.StatusCreated, gin.H{
			"message": "Booking request sent",
			"booking": booking,
		})
	})

	// List bookings visible to the current user, with optional filters
	router.GET("/bookings", func(c *gin.Context) {
		principal := currentPrincipal(c)

		filters := services.BookingFilters{
			Status:            c.Query("status"),
			Location:          c.Query("location"),
			EstablishmentType: c.Query("establishment_type"),
		}
		if raw := c.Query("date_bucket"); raw != "" {
			bucket, ok := services.ParseDateBucket(raw)
			if !ok {
				c.JSON(http.StatusBadRequest, gin.H{
					"error":   "Invalid request",
					"message": "date_bucket must be one of: all, upcoming, current, past",
				})
				return
			}
			filters.DateBucket = bucket
		}

		views, err := bookingService.ListBookings(principal, filters)
		if err != nil {
			respondBookingError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"bookings": views,
			"count":    len(views),
		})
	})

	// Get a single booking (parties and admins only)
	router.GET("/bookings/:id", func(c *gin.Context) {
		principal := currentPrincipal(c)
		bookingID, err := parseIDParam(c, "id")
		if err != nil {
			return
		}

		view, err := bookingService.GetBooking(principal, bookingID)
		if err != nil {
			respondBookingError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"booking": view})
	})

	// Dashboard buckets grouped by lifecycle stage
	router.GET("/bookings/dashboard", func(c *gin.Context) {
		principal := currentPrincipal(c)

		views, err := bookingService.ListBookings(principal, services.BookingFilters{})
		if err != nil {
			respondBookingError(c, err)
			return
		}

		bookings := make([]models.Booking, 0, len(views))
		for _, v := range views {
			bookings = append(bookings, v.Booking)
		}

		c.JSON(http.StatusOK, gin.H{
			"counts":   services.GroupByBucket(bookings),
			"bookings": views,
		})
	})

	transition := func(target models.BookingStatus, successMessage string) gin.HandlerFunc {
		return func(c *gin.Context) {
			principal := currentPrincipal(c)
			bookingID, err := parseIDParam(c, "id")
			if err != nil {
				return
			}

			booking, err := bookingService.Transition(principal, bookingID, target)
			if err != nil {
				respondBookingError(c, err)
				return
			}

			hub.SendToUser(counterpartID(booking, principal.UserID), &websocket.Message{
				Type:      "booking_update",
				Timestamp: time.Now(),
				Data: map[string]interface{}{
					"booking_id": booking.ID,
					"status":     string(booking.Status),
				},
			})

			c.JSON(http.StatusOK, gin.H{
				"message": successMessage,
				"booking": booking,
			})
		}
	}

	router.POST("/bookings/:id/confirm", transition(models.BookingStatusConfirmed, "Booking confirmed"))
	router.POST("/bookings/:id/reject", transition(models.BookingStatusRejected, "Booking rejected"))
	router.POST("/bookings/:id/cancel", transition(models.BookingStatusCancelled, "Booking cancelled"))
	router.POST("/bookings/:id/complete", transition(models.BookingStatusCompleted, "Booking completed"))
}

func counterpartID(booking *models.Booking, userID uint) uint {
	if booking.DoctorID == userID {
		return booking.EstablishmentID
	}
	return booking.DoctorID
}

func currentPrincipal(c *gin.Context) services.Principal {
	return services.Principal{
		UserID: c.GetUint("user_id"),
		Role:   models.ParseUserRole(c.GetString("user_role")),
	}
}

func parseIDParam(c *gin.Context, name string) (uint, error) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"message": "Invalid " + name + " parameter",
		})
		return 0, errors.New("invalid id param")
	}
	return uint(id), nil
}

func respondBookingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not allowed to perform this action"})
	case errors.Is(err, services.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{
			"error":   "Conflict",
			"message": "The booking was modified concurrently, please retry",
		})
	case errors.Is(err, services.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{
			"error":   "Invalid transition",
			"message": err.Error(),
		})
	case errors.Is(err, services.ErrListingUnavailable):
		c.JSON(http.StatusConflict, gin.H{
			"error":   "Listing unavailable",
			"message": "This vacation post is no longer available for booking",
		})
	case errors.Is(err, services.ErrInvalidDates):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid dates",
			"message": err.Error(),
		})
	case errors.Is(err, services.ErrQueryFailure):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to load bookings"})
	default:
		log.Printf("❌ Booking operation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
