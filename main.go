package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"cureliah-server/config"
	"cureliah-server/database"
	"cureliah-server/jobs"
	"cureliah-server/middleware"
	"cureliah-server/models"
	"cureliah-server/routes"
	"cureliah-server/services"
	ws "cureliah-server/websocket"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Load configuration
	config.Load()

	// Initialize database
	if err := database.Initialize(); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}

	// Seed reference data
	if err := seedSpecialities(); err != nil {
		log.Printf("⚠️ Speciality seeding failed: %v", err)
	}

	// Set Gin mode
	if config.AppConfig.Server.GinMode == "release" || os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create router
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Disable automatic redirects for trailing slashes
	router.RedirectTrailingSlash = false
	router.RedirectFixedPath = false

	// Security headers (must be first)
	router.Use(middleware.SecurityHeadersMiddleware())

	// Input validation
	router.Use(middleware.InputValidationMiddleware())

	// Rate limiting
	router.Use(middleware.RateLimitMiddleware())

	// Secure CORS
	router.Use(middleware.CORSMiddleware())

	// Audit logging
	router.Use(middleware.AuditLogMiddleware())

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Cureliah server is running",
			"time":    time.Now().UTC(),
		})
	})

	// Websocket hub for chat and booking notifications
	hub := ws.NewHub()
	go hub.Run()

	router.GET("/api/v1/ws", middleware.WebSocketAuthMiddleware(), func(c *gin.Context) {
		ws.ServeWebSocket(hub, c.Writer, c.Request, c.GetUint("user_id"), c.GetString("user_role"))
	})

	// API routes
	api := router.Group("/api/v1")
	{
		// Auth routes with strict rate limiting
		authRoutes := api.Group("/auth")
		authRoutes.Use(middleware.AuthRateLimitMiddleware())
		routes.RegisterAuthRoutes(authRoutes)

		// Public reference data
		routes.RegisterSpecialityRoutes(api)

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			routes.RegisterProfileRoutes(protected)
			routes.RegisterVacationPostRoutes(protected)
			routes.RegisterBookingRoutes(protected, hub)
			routes.RegisterPaymentRoutes(protected)
			routes.RegisterMessageRoutes(protected, hub)
			routes.RegisterNotificationRoutes(protected)
			routes.RegisterReviewRoutes(protected)
			routes.RegisterDocumentRoutes(protected, &config.AppConfig.Cloudinary)
		}

		// Admin routes
		admin := api.Group("/admin")
		admin.Use(middleware.AuthMiddleware(), middleware.RequireRole(models.RoleAdmin))
		routes.RegisterAdminRoutes(admin)
	}

	// Background job cancelling stale pending bookings and past posts
	expirationJob := jobs.NewExpirationJob(
		time.Duration(config.AppConfig.Booking.PendingExpiryCheckSeconds) * time.Second)
	expirationJob.Start()
	defer expirationJob.Stop()

	// Periodic cleanup of expired refresh tokens
	jwtService := services.NewJWTService()
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			if err := jwtService.CleanupExpiredTokens(); err != nil {
				log.Printf("⚠️ Token cleanup failed: %v", err)
			}
		}
	}()

	port := config.AppConfig.Server.Port
	log.Printf("🚀 Server starting on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
