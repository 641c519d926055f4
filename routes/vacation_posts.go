package routes

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"

	"cureliah-server/database"
	"cureliah-server/models"
)

// RegisterVacationPostRoutes registers vacation post management routes
func RegisterVacationPostRoutes(router *gin.RouterGroup) {
	// Create a new vacation post (doctors only, starts as draft)
	router.POST("/vacation-posts", func(c *gin.Context) {
		userID := c.GetUint("user_id")
		role := models.ParseUserRole(c.GetString("user_role"))
		if role != models.RoleDoctor {
			c.JSON(http.StatusForbidden, gin.H{"error": "Only doctors can publish vacation posts"})
			return
		}

		var req models.VacationPostCreate
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid request",
				"message": err.Error(),
			})
			return
		}

		startDate, err := time.Parse(time.RFC3339, req.StartDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid start_date, expected ISO8601"})
			return
		}
		endDate, err := time.Parse(time.RFC3339, req.EndDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid end_date, expected ISO8601"})
			return
		}

		post := models.VacationPost{
			DoctorID:     userID,
			Title:        req.Title,
			Speciality:   req.Speciality,
			Location:     req.Location,
			HourlyRate:   req.HourlyRate,
			StartDate:    startDate,
			EndDate:      endDate,
			Requirements: pq.StringArray(req.Requirements),
			Description:  req.Description,
			Status:       models.PostStatusDraft,
		}
		if !post.HasValidDates() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "end_date must not be before start_date"})
			return
		}

		if err := database.DB.Create(&post).Error; err != nil {
			log.Printf("❌ Vacation post creation failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create vacation post"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"message": "Vacation post created",
			"post":    post,
		})
	})

	// List own posts (doctors); establishments get the public search instead
	router.GET("/vacation-posts/mine", func(c *gin.Context) {
		userID := c.GetUint("user_id")

		var posts []models.VacationPost
		if err := database.DB.
			Where("doctor_id = ?", userID).
			Order("created_at DESC").
			Find(&posts).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load posts"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"posts": posts, "count": len(posts)})
	})

	// Search available posts (any authenticated user)
	router.GET("/vacation-posts", func(c *gin.Context) {
		q := database.DB.Model(&models.VacationPost{}).
			Where("status = ?", models.PostStatusAvailable)

		if speciality := c.Query("speciality"); speciality != "" {
			q = q.Where("LOWER(speciality) = LOWER(?)", speciality)
		}
		if location := c.Query("location"); location != "" {
			q = q.Where("location ILIKE ?", "%"+location+"%")
		}
		if from := c.Query("from"); from != "" {
			if t, err := time.Parse(time.RFC3339, from); err == nil {
				q = q.Where("start_date >= ?", t)
			}
		}

		var posts []models.VacationPost
		if err := q.Order("start_date ASC").Find(&posts).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search posts"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"posts": posts, "count": len(posts)})
	})

	// Get a single post
	router.GET("/vacation-posts/:id", func(c *gin.Context) {
		postID, err := parseIDParam(c, "id")
		if err != nil {
			return
		}

		var post models.VacationPost
		if err := database.DB.First(&post, postID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Vacation post not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"post": post})
	})

	// Update a draft post (owner only)
	router.PUT("/vacation-posts/:id", func(c *gin.Context) {
		userID := c.GetUint("user_id")
		postID, err := parseIDParam(c, "id")
		if err != nil {
			return
		}

		var post models.VacationPost
		if err := database.DB.First(&post, postID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Vacation post not found"})
			return
		}
		if post.DoctorID != userID {
			c.JSON(http.StatusForbidden, gin.H{"error": "You can only edit your own posts"})
			return
		}
		if post.Status != models.PostStatusDraft {
			c.JSON(http.StatusConflict, gin.H{"error": "Only draft posts can be edited"})
			return
		}

		var req models.VacationPostCreate
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid request",
				"message": err.Error(),
			})
			return
		}

		startDate, err := time.Parse(time.RFC3339, req.StartDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid start_date, expected ISO8601"})
			return
		}
		endDate, err := time.Parse(time.RFC3339, req.EndDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid end_date, expected ISO8601"})
			return
		}
		if endDate.Before(startDate) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "end_date must not be before start_date"})
			return
		}

		post.Title = req.Title
		post.Speciality = req.Speciality
		post.Location = req.Location
		post.HourlyRate = req.HourlyRate
		post.StartDate = startDate
		post.EndDate = endDate
		post.Requirements = pq.StringArray(req.Requirements)
		post.Description = req.Description

		if err := database.DB.Save(&post).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update post"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Post updated", "post": post})
	})

	// Publish a draft post, making it bookable
	router.POST("/vacation-posts/:id/publish", func(c *gin.Context) {
		changePostStatus(c, models.PostStatusAvailable, "Post published")
	})

	// Cancel a post (draft, available or booked)
	router.POST("/vacation-posts/:id/cancel", func(c *gin.Context) {
		changePostStatus(c, models.PostStatusCancelled, "Post cancelled")
	})
}

func changePostStatus(c *gin.Context, target models.PostStatus, successMessage string) {
	userID := c.GetUint("user_id")
	postID, err := parseIDParam(c, "id")
	if err != nil {
		return
	}

	var post models.VacationPost
	if err := database.DB.First(&post, postID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Vacation post not found"})
		return
	}
	if post.DoctorID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only manage your own posts"})
		return
	}
	if !post.Status.CanTransitionTo(target) {
		c.JSON(http.StatusConflict, gin.H{
			"error": "Cannot move post from " + string(post.Status) + " to " + string(target),
		})
		return
	}

	if err := database.DB.Model(&post).Update("status", target).Error; err != nil {
		log.Printf("❌ Post status update failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update post status"})
		return
	}
	post.Status = target

	c.JSON(http.StatusOK, gin.H{"message": successMessage, "post": post})
}
