package routes

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"cureliah-server/database"
	"cureliah-server/models"
	"cureliah-server/websocket"
)

// RegisterMessageRoutes registers booking-scoped messaging routes
func RegisterMessageRoutes(router *gin.RouterGroup, hub *websocket.Hub) {
	// Get or create the conversation for a booking
	router.POST("/bookings/:id/conversation", func(c *gin.Context) {
		userID := c.GetUint("user_id")
		bookingID, err := parseIDParam(c, "id")
		if err != nil {
			return
		}

		var booking models.Booking
		if err := database.DB.First(&booking, bookingID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
			return
		}
		if booking.DoctorID != userID && booking.EstablishmentID != userID {
			c.JSON(http.StatusForbidden, gin.H{"error": "You are not a party to this booking"})
			return
		}

		var conversation models.Conversation
		err = database.DB.Where("booking_id = ?", bookingID).First(&conversation).Error
		if err == gorm.ErrRecordNotFound {
			conversation = models.Conversation{
				BookingID:       booking.ID,
				DoctorID:        booking.DoctorID,
				EstablishmentID: booking.EstablishmentID,
				IsActive:        true,
			}
			if err := database.DB.Create(&conversation).Error; err != nil {
				log.Printf("❌ Conversation creation failed for booking %d: %v", bookingID, err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create conversation"})
				return
			}
		} else if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load conversation"})
			return
		}

		hub.AddUserToConversation(booking.DoctorID, conversation.ID)
		hub.AddUserToConversation(booking.EstablishmentID, conversation.ID)

		c.JSON(http.StatusOK, gin.H{"conversation": conversation})
	})

	// List own conversations, most recently active first
	router.GET("/conversations", func(c *gin.Context) {
		userID := c.GetUint("user_id")

		var conversations []models.Conversation
		if err := database.DB.
			Where("doctor_id = ? OR establishment_id = ?", userID, userID).
			Order("last_message_at DESC NULLS LAST").
			Find(&conversations).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load conversations"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"conversations": conversations, "count": len(conversations)})
	})

	// Send a message in a conversation
	router.POST("/conversations/:id/messages", func(c *gin.Context) {
		userID := c.GetUint("user_id")
		role := c.GetString("user_role")
		conversationID, err := parseIDParam(c, "id")
		if err != nil {
			return
		}

		var req struct {
			Content string `json:"content" binding:"required,min=1,max=2000"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid request",
				"message": err.Error(),
			})
			return
		}

		var conversation models.Conversation
		if err := database.DB.First(&conversation, conversationID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
			return
		}
		if !conversation.HasParticipant(userID) {
			c.JSON(http.StatusForbidden, gin.H{"error": "You are not part of this conversation"})
			return
		}

		message := models.ChatMessage{
			ConversationID: conversation.ID,
			SenderID:       userID,
			SenderRole:     role,
			Content:        req.Content,
		}

		now := time.Now()
		err = database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&message).Error; err != nil {
				return err
			}
			return tx.Model(&conversation).Updates(map[string]interface{}{
				"last_message_at":   now,
				"last_message_text": req.Content,
			}).Error
		})
		if err != nil {
			log.Printf("❌ Message send failed in conversation %d: %v", conversationID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send message"})
			return
		}

		// Push to the other participant over websocket, best effort
		hub.SendToConversation(conversation.ID, &websocket.Message{
			Type:           "message",
			ConversationID: conversation.ID,
			SenderID:       userID,
			SenderRole:     role,
			Content:        req.Content,
			Timestamp:      now,
		}, userID)

		c.JSON(http.StatusCreated, gin.H{
			"message": "Message sent",
			"data":    message,
		})
	})

	// List messages in a conversation, oldest first
	router.GET("/conversations/:id/messages", func(c *gin.Context) {
		userID := c.GetUint("user_id")
		conversationID, err := parseIDParam(c, "id")
		if err != nil {
			return
		}

		var conversation models.Conversation
		if err := database.DB.First(&conversation, conversationID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
			return
		}
		if !conversation.HasParticipant(userID) {
			c.JSON(http.StatusForbidden, gin.H{"error": "You are not part of this conversation"})
			return
		}

		var messages []models.ChatMessage
		if err := database.DB.
			Where("conversation_id = ?", conversationID).
			Order("created_at ASC").
			Find(&messages).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load messages"})
			return
		}

		// Mark messages from the other party as read
		database.DB.Model(&models.ChatMessage{}).
			Where("conversation_id = ? AND sender_id != ? AND is_read = ?", conversationID, userID, false).
			Updates(map[string]interface{}{"is_read": true, "read_at": time.Now()})

		c.JSON(http.StatusOK, gin.H{"messages": messages, "count": len(messages)})
	})

	// Unread message count across all conversations
	router.GET("/conversations/unread-count", func(c *gin.Context) {
		userID := c.GetUint("user_id")

		var count int64
		if err := database.DB.Model(&models.ChatMessage{}).
			Joins("JOIN conversations ON conversations.id = chat_messages.conversation_id").
			Where("(conversations.doctor_id = ? OR conversations.establishment_id = ?)", userID, userID).
			Where("chat_messages.sender_id != ? AND chat_messages.is_read = ?", userID, false).
			Count(&count).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count unread messages"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"unread_count": count})
	})
}
