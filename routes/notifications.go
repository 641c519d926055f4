package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"cureliah-server/database"
	"cureliah-server/models"
)

// RegisterNotificationRoutes registers notification routes
func RegisterNotificationRoutes(router *gin.RouterGroup) {
	// List own notifications, newest first
	router.GET("/notifications", func(c *gin.Context) {
		userID := c.GetUint("user_id")

		var notifications []models.Notification
		if err := database.DB.
			Where("user_id = ?", userID).
			Order("created_at DESC").
			Limit(100).
			Find(&notifications).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load notifications"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"notifications": notifications, "count": len(notifications)})
	})

	// Unread notification count
	router.GET("/notifications/unread-count", func(c *gin.Context) {
		userID := c.GetUint("user_id")

		var count int64
		if err := database.DB.Model(&models.Notification{}).
			Where("user_id = ? AND read = ?", userID, false).
			Count(&count).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count notifications"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"unread_count": count})
	})

	// Mark one notification as read
	router.POST("/notifications/:id/read", func(c *gin.Context) {
		userID := c.GetUint("user_id")
		notificationID, err := parseIDParam(c, "id")
		if err != nil {
			return
		}

		res := database.DB.Model(&models.Notification{}).
			Where("id = ? AND user_id = ?", notificationID, userID).
			Updates(map[string]interface{}{"read": true, "read_at": time.Now()})
		if res.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notification"})
			return
		}
		if res.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
	})

	// Mark all notifications as read
	router.POST("/notifications/read-all", func(c *gin.Context) {
		userID := c.GetUint("user_id")

		if err := database.DB.Model(&models.Notification{}).
			Where("user_id = ? AND read = ?", userID, false).
			Updates(map[string]interface{}{"read": true, "read_at": time.Now()}).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notifications"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "All notifications marked as read"})
	})
}
