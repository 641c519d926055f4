package routes

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"cureliah-server/database"
	"cureliah-server/models"
)

// RegisterAdminRoutes registers administration routes. The group is expected
// to be gated with RequireRole("admin") by the caller.
func RegisterAdminRoutes(router *gin.RouterGroup) {
	// List users with optional role filter
	router.GET("/users", func(c *gin.Context) {
		q := database.DB.Model(&models.User{}).
			Preload("DoctorProfile").
			Preload("EstablishmentProfile")

		if role := c.Query("role"); role != "" {
			q = q.Where("role = ?", models.ParseUserRole(role))
		}

		var users []models.User
		if err := q.Order("created_at DESC").Limit(200).Find(&users).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load users"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"users": users, "count": len(users)})
	})

	// Verify a doctor's licence
	router.POST("/doctors/:id/verify", func(c *gin.Context) {
		doctorUserID, err := parseIDParam(c, "id")
		if err != nil {
			return
		}

		var profile models.DoctorProfile
		if err := database.DB.Where("user_id = ?", doctorUserID).First(&profile).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Doctor profile not found"})
			return
		}
		if profile.LicenceDocURL == nil {
			c.JSON(http.StatusConflict, gin.H{"error": "Doctor has not uploaded a licence document"})
			return
		}

		if err := database.DB.Model(&profile).Update("is_verified", true).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
			return
		}

		log.Printf("✅ Doctor %d verified by admin %d", doctorUserID, c.GetUint("user_id"))
		c.JSON(http.StatusOK, gin.H{"message": "Doctor verified"})
	})

	// Deactivate or reactivate a user account
	router.POST("/users/:id/active", func(c *gin.Context) {
		userID, err := parseIDParam(c, "id")
		if err != nil {
			return
		}

		var req struct {
			Active *bool `json:"active" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "message": err.Error()})
			return
		}

		res := database.DB.Model(&models.User{}).
			Where("id = ?", userID).
			Update("is_active", *req.Active)
		if res.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
			return
		}
		if res.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "User updated"})
	})

	// Platform statistics
	router.GET("/stats", func(c *gin.Context) {
		var (
			userCount    int64
			postCount    int64
			bookingCount int64
			paymentCount int64
		)
		database.DB.Model(&models.User{}).Count(&userCount)
		database.DB.Model(&models.VacationPost{}).Count(&postCount)
		database.DB.Model(&models.Booking{}).Count(&bookingCount)
		database.DB.Model(&models.Payment{}).Count(&paymentCount)

		var bookingsByStatus []struct {
			Status models.BookingStatus `json:"status"`
			Count  int64                `json:"count"`
		}
		database.DB.Model(&models.Booking{}).
			Select("status, COUNT(*) AS count").
			Group("status").
			Scan(&bookingsByStatus)

		c.JSON(http.StatusOK, gin.H{
			"users":              userCount,
			"vacation_posts":     postCount,
			"bookings":           bookingCount,
			"payments":           paymentCount,
			"bookings_by_status": bookingsByStatus,
		})
	})
}
