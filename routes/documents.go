package routes

import (
	"context"
	"log"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/gin-gonic/gin"

	"cureliah-server/config"
	"cureliah-server/database"
	"cureliah-server/models"
)

// validateUploadFile validates mimetype and size (<= 5MB)
func validateUploadFile(h *multipart.FileHeader) bool {
	if h == nil || h.Size <= 0 || h.Size > 5*1024*1024 {
		return false
	}
	ext := strings.ToLower(filepath.Ext(h.Filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp", ".pdf":
		return true
	default:
		return false
	}
}

// RegisterDocumentRoutes adds document upload endpoints under the protected group
func RegisterDocumentRoutes(router *gin.RouterGroup, cfg *config.CloudinaryConfig) {
	uploadFile := func(c *gin.Context, header *multipart.FileHeader, folder string) (string, bool) {
		if cfg.URL == "" {
			log.Printf("❌ Cloudinary not configured")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Document storage not configured"})
			return "", false
		}

		cld, err := cloudinary.NewFromURL(cfg.URL)
		if err != nil {
			log.Printf("❌ Failed to initialize Cloudinary: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Document storage unavailable"})
			return "", false
		}

		file, err := header.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unable to read uploaded file"})
			return "", false
		}
		defer file.Close()

		overwrite := true
		unique := true
		up, err := cld.Upload.Upload(context.Background(), file, uploader.UploadParams{
			Folder:         folder,
			PublicID:       strings.TrimSuffix(header.Filename, filepath.Ext(header.Filename)),
			Overwrite:      &overwrite,
			UniqueFilename: &unique,
			ResourceType:   "auto",
		})
		if err != nil {
			log.Printf("❌ Upload failed: %v", err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "Upload failed"})
			return "", false
		}
		return up.SecureURL, true
	}

	// Upload a licence document for the doctor profile
	router.POST("/profiles/doctor/licence", func(c *gin.Context) {
		userID := c.GetUint("user_id")
		role := models.ParseUserRole(c.GetString("user_role"))
		if role != models.RoleDoctor {
			c.JSON(http.StatusForbidden, gin.H{"error": "Only doctors can upload licence documents"})
			return
		}

		header, err := c.FormFile("licence")
		if err != nil || !validateUploadFile(header) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "A licence file up to 5MB (jpg, png, webp or pdf) is required"})
			return
		}

		var profile models.DoctorProfile
		if err := database.DB.Where("user_id = ?", userID).First(&profile).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Doctor profile not found, create it first"})
			return
		}

		folder := cfg.Folder + "/licences/" + strconv.Itoa(int(userID))
		url, ok := uploadFile(c, header, folder)
		if !ok {
			return
		}

		profile.LicenceDocURL = &url
		// A fresh document invalidates any previous verification
		profile.IsVerified = false
		if err := database.DB.Save(&profile).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save profile"})
			return
		}

		log.Printf("✅ Licence document uploaded for doctor %d", userID)
		c.JSON(http.StatusOK, gin.H{
			"message":         "Licence document uploaded",
			"licence_doc_url": url,
		})
	})

	// Upload an establishment logo
	router.POST("/profiles/establishment/logo", func(c *gin.Context) {
		userID := c.GetUint("user_id")
		role := models.ParseUserRole(c.GetString("user_role"))
		if role != models.RoleEstablishment {
			c.JSON(http.StatusForbidden, gin.H{"error": "Only establishments can upload a logo"})
			return
		}

		header, err := c.FormFile("logo")
		if err != nil || !validateUploadFile(header) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "A logo file up to 5MB (jpg, png or webp) is required"})
			return
		}
		if strings.ToLower(filepath.Ext(header.Filename)) == ".pdf" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Logo must be an image"})
			return
		}

		var profile models.EstablishmentProfile
		if err := database.DB.Where("user_id = ?", userID).First(&profile).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Establishment profile not found, create it first"})
			return
		}

		folder := cfg.Folder + "/logos/" + strconv.Itoa(int(userID))
		url, ok := uploadFile(c, header, folder)
		if !ok {
			return
		}

		profile.LogoURL = &url
		if err := database.DB.Save(&profile).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save profile"})
			return
		}

		log.Printf("✅ Logo uploaded for establishment %d", userID)
		c.JSON(http.StatusOK, gin.H{
			"message":  "Logo uploaded",
			"logo_url": url,
		})
	})
}
