package routes

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"cureliah-server/database"
	"cureliah-server/middleware"
	"cureliah-server/models"
	"cureliah-server/services"
	"cureliah-server/utils"
)

// RegisterAuthRoutes registers authentication routes
func RegisterAuthRoutes(router *gin.RouterGroup) {
	jwtService := services.NewJWTService()

	// Sign up endpoint
	router.POST("/signup", func(c *gin.Context) {
		var req struct {
			Email           string `json:"email" binding:"required"`
			Password        string `json:"password" binding:"required,min=8,max=128"`
			ConfirmPassword string `json:"confirm_password" binding:"required"`
			Role            string `json:"role" binding:"required,oneof=doctor establishment"`
		}

		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid request",
				"message": err.Error(),
			})
			return
		}

		email := utils.NormalizeEmail(req.Email)
		if !utils.ValidateEmail(email) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid email",
				"message": "Please provide a valid email address",
			})
			return
		}

		// Validate password strength
		isStrong, errors := middleware.ValidatePasswordStrength(req.Password)
		if !isStrong {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Weak password",
				"message": "Password does not meet security requirements",
				"details": errors,
			})
			return
		}

		// Check password confirmation
		if req.Password != req.ConfirmPassword {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Password mismatch",
				"message": "Passwords do not match",
			})
			return
		}

		// Check if user already exists
		var existingUser models.User
		if err := database.DB.Where("email = ?", email).First(&existingUser).Error; err == nil {
			c.JSON(http.StatusConflict, gin.H{
				"error":   "User already exists",
				"message": "An account with this email already exists",
			})
			return
		}

		// Hash password
		hashedPassword, err := jwtService.HashPassword(req.Password)
		if err != nil {
			log.Printf("❌ Password hashing failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Internal server error",
				"message": "Failed to process password",
			})
			return
		}

		role := models.ParseUserRole(strings.ToLower(req.Role))
		if role != models.RoleDoctor && role != models.RoleEstablishment {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid role",
				"message": "Role must be doctor or establishment",
			})
			return
		}

		user := models.User{
			Email:        email,
			PasswordHash: hashedPassword,
			Role:         role,
			IsActive:     true,
		}

		if err := database.DB.Create(&user).Error; err != nil {
			log.Printf("❌ User creation failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Internal server error",
				"message": "Failed to create account",
			})
			return
		}

		// Generate tokens
		deviceID := c.GetHeader("X-Device-ID")
		userAgent := c.GetHeader("User-Agent")
		tokens, err := jwtService.GenerateTokenPair(&user, deviceID, userAgent, c.ClientIP())
		if err != nil {
			log.Printf("❌ Token generation failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Internal server error",
				"message": "Account created but failed to generate tokens, please log in",
			})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"message": "Account created successfully",
			"user":    user,
			"tokens":  tokens,
		})
	})

	// Login endpoint
	router.POST("/login", func(c *gin.Context) {
		var req struct {
			Email    string `json:"email" binding:"required"`
			Password string `json:"password" binding:"required"`
		}

		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid request",
				"message": err.Error(),
			})
			return
		}

		email := utils.NormalizeEmail(req.Email)

		var user models.User
		if err := database.DB.Where("email = ?", email).First(&user).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Invalid credentials",
				"message": "Email or password is incorrect",
			})
			return
		}

		if !jwtService.CheckPasswordHash(req.Password, user.PasswordHash) {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Invalid credentials",
				"message": "Email or password is incorrect",
			})
			return
		}

		if !user.IsActive {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Account deactivated",
				"message": "This account has been deactivated",
			})
			return
		}

		deviceID := c.GetHeader("X-Device-ID")
		userAgent := c.GetHeader("User-Agent")
		tokens, err := jwtService.GenerateTokenPair(&user, deviceID, userAgent, c.ClientIP())
		if err != nil {
			log.Printf("❌ Token generation failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Internal server error",
				"message": "Failed to generate tokens",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "Login successful",
			"user":    user,
			"tokens":  tokens,
		})
	})

	// Refresh token endpoint
	router.POST("/refresh", func(c *gin.Context) {
		var req struct {
			RefreshToken string `json:"refresh_token" binding:"required"`
		}

		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid request",
				"message": err.Error(),
			})
			return
		}

		tokens, err := jwtService.RefreshAccessToken(req.RefreshToken)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Invalid refresh token",
				"message": err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "Token refreshed",
			"tokens":  tokens,
		})
	})

	// Logout endpoint (requires authentication)
	router.POST("/logout", middleware.AuthMiddleware(), func(c *gin.Context) {
		var req struct {
			RefreshToken string `json:"refresh_token"`
		}
		_ = c.ShouldBindJSON(&req)

		if req.RefreshToken != "" {
			if err := jwtService.RevokeRefreshToken(req.RefreshToken); err != nil {
				log.Printf("⚠️ Failed to revoke refresh token: %v", err)
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "Logged out successfully",
		})
	})

	// Current user endpoint
	router.GET("/me", middleware.AuthMiddleware(), func(c *gin.Context) {
		userID := c.GetUint("user_id")

		var user models.User
		if err := database.DB.
			Preload("DoctorProfile").
			Preload("EstablishmentProfile").
			First(&user, userID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"user": user})
	})
}
