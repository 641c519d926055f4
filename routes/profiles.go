package routes

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"cureliah-server/database"
	"cureliah-server/models"
)

// RegisterProfileRoutes registers doctor and establishment profile routes
func RegisterProfileRoutes(router *gin.RouterGroup) {
	// Create or update the doctor profile of the current user
	router.PUT("/profiles/doctor", func(c *gin.Context) {
		userID := c.GetUint("user_id")
		role := models.ParseUserRole(c.GetString("user_role"))
		if role != models.RoleDoctor {
			c.JSON(http.StatusForbidden, gin.H{"error": "Only doctors can manage a doctor profile"})
			return
		}

		var req models.DoctorProfileUpsert
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid request",
				"message": err.Error(),
			})
			return
		}

		var profile models.DoctorProfile
		err := database.DB.Where("user_id = ?", userID).First(&profile).Error
		isNew := err == gorm.ErrRecordNotFound
		if err != nil && !isNew {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load profile"})
			return
		}

		profile.UserID = userID
		profile.FirstName = req.FirstName
		profile.LastName = req.LastName
		profile.Speciality = req.Speciality
		profile.ExperienceYears = req.ExperienceYears
		profile.Languages = pq.StringArray(req.Languages)
		profile.Bio = req.Bio
		profile.HourlyRate = req.HourlyRate
		profile.LicenceNumber = req.LicenceNumber
		profile.City = req.City
		profile.ContactPhone = req.ContactPhone

		if err := database.DB.Save(&profile).Error; err != nil {
			log.Printf("❌ Doctor profile save failed for user %d: %v", userID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save profile"})
			return
		}

		status := http.StatusOK
		if isNew {
			status = http.StatusCreated
		}
		c.JSON(status, gin.H{"message": "Profile saved", "profile": profile})
	})

	// Create or update the establishment profile of the current user
	router.PUT("/profiles/establishment", func(c *gin.Context) {
		userID := c.GetUint("user_id")
		role := models.ParseUserRole(c.GetString("user_role"))
		if role != models.RoleEstablishment {
			c.JSON(http.StatusForbidden, gin.H{"error": "Only establishments can manage an establishment profile"})
			return
		}

		var req models.EstablishmentProfileUpsert
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid request",
				"message": err.Error(),
			})
			return
		}

		var profile models.EstablishmentProfile
		err := database.DB.Where("user_id = ?", userID).First(&profile).Error
		isNew := err == gorm.ErrRecordNotFound
		if err != nil && !isNew {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load profile"})
			return
		}

		profile.UserID = userID
		profile.Name = req.Name
		profile.Type = req.Type
		profile.City = req.City
		profile.Address = req.Address
		profile.ContactPhone = req.ContactPhone
		profile.Description = req.Description

		if err := database.DB.Save(&profile).Error; err != nil {
			log.Printf("❌ Establishment profile save failed for user %d: %v", userID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save profile"})
			return
		}

		status := http.StatusOK
		if isNew {
			status = http.StatusCreated
		}
		c.JSON(status, gin.H{"message": "Profile saved", "profile": profile})
	})

	// Public doctor profile by user id
	router.GET("/profiles/doctor/:id", func(c *gin.Context) {
		doctorUserID, err := parseIDParam(c, "id")
		if err != nil {
			return
		}

		var profile models.DoctorProfile
		if err := database.DB.Where("user_id = ?", doctorUserID).First(&profile).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Doctor profile not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"profile": profile})
	})

	// Public establishment profile by user id
	router.GET("/profiles/establishment/:id", func(c *gin.Context) {
		establishmentUserID, err := parseIDParam(c, "id")
		if err != nil {
			return
		}

		var profile models.EstablishmentProfile
		if err := database.DB.Where("user_id = ?", establishmentUserID).First(&profile).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Establishment profile not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"profile": profile})
	})
}
