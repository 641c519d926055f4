package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cureliah-server/database"
	"cureliah-server/models"
)

// RegisterSpecialityRoutes registers the public speciality reference list
func RegisterSpecialityRoutes(router *gin.RouterGroup) {
	router.GET("/specialities", func(c *gin.Context) {
		var specialities []models.Speciality
		if err := database.DB.
			Where("is_active = ?", true).
			Order("sort_order ASC").
			Find(&specialities).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load specialities"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"specialities": specialities, "count": len(specialities)})
	})
}
