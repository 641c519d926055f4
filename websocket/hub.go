package websocket

import (
	"encoding/json"
	"log"
	"sync"
	"time"
)

// Hub manages all WebSocket connections
type Hub struct {
	// Registered clients keyed by user id
	Clients map[uint]*Client

	// Conversation members keyed by conversation id
	ConversationMembers map[uint]map[uint]bool

	// Broadcast channel for messages to all clients
	Broadcast chan *Message

	// Register requests from clients
	Register chan *Client

	// Unregister requests from clients
	Unregister chan *Client

	// Message handlers
	MessageHandlers map[string]MessageHandler

	mu sync.RWMutex
}

// Message represents a websocket event
type Message struct {
	Type           string      `json:"type"`
	ConversationID uint        `json:"conversation_id,omitempty"`
	SenderID       uint        `json:"sender_id,omitempty"`
	SenderRole     string      `json:"sender_role,omitempty"`
	Content        string      `json:"content,omitempty"`
	Timestamp      time.Time   `json:"timestamp"`
	Data           interface{} `json:"data,omitempty"`
}

// MessageHandler handles different types of messages
type MessageHandler func(*Client, *Message) error

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	hub := &Hub{
		Clients:             make(map[uint]*Client),
		ConversationMembers: make(map[uint]map[uint]bool),
		Broadcast:           make(chan *Message),
		Register:            make(chan *Client),
		Unregister:          make(chan *Client),
		MessageHandlers:     make(map[string]MessageHandler),
	}

	hub.registerDefaultHandlers()

	return hub
}

// registerDefaultHandlers registers default message handlers
func (h *Hub) registerDefaultHandlers() {
	h.MessageHandlers["message"] = h.handleChatMessage
	h.MessageHandlers["typing"] = h.handleTypingIndicator
	h.MessageHandlers["read"] = h.handleReadReceipt
	h.MessageHandlers["ping"] = h.handlePing
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			h.Clients[client.ID] = client
			h.mu.Unlock()
			log.Printf("🔌 Client registered: ID=%d, Role=%s", client.ID, client.Role)

		case client := <-h.Unregister:
			h.mu.Lock()
			if _, ok := h.Clients[client.ID]; ok {
				// Remove user from all conversations
				for conversationID := range h.ConversationMembers {
					delete(h.ConversationMembers[conversationID], client.ID)
				}

				delete(h.Clients, client.ID)
				close(client.Send)
			}
			h.mu.Unlock()
			log.Printf("🔌 Client unregistered: ID=%d, Role=%s", client.ID, client.Role)

		case message := <-h.Broadcast:
			h.broadcastMessage(message)
		}
	}
}

// broadcastMessage sends a message to all connected clients
func (h *Hub) broadcastMessage(message *Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("❌ Error marshaling message: %v", err)
		return
	}

	for _, client := range h.Clients {
		select {
		case client.Send <- data:
		default:
			close(client.Send)
			delete(h.Clients, client.ID)
		}
	}
}

// SendToUser sends a message to a specific user
func (h *Hub) SendToUser(userID uint, message *Message) {
	h.mu.RLock()
	client, exists := h.Clients[userID]
	h.mu.RUnlock()

	if !exists {
		return
	}

	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("❌ Error marshaling message: %v", err)
		return
	}

	select {
	case client.Send <- data:
	default:
		log.Printf("⚠️ User %d's send buffer is full", userID)
	}
}

// AddUserToConversation adds a user to a conversation
func (h *Hub) AddUserToConversation(userID uint, conversationID uint) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.ConversationMembers[conversationID] == nil {
		h.ConversationMembers[conversationID] = make(map[uint]bool)
	}
	h.ConversationMembers[conversationID][userID] = true
}

// RemoveUserFromConversation removes a user from a conversation
func (h *Hub) RemoveUserFromConversation(userID uint, conversationID uint) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.ConversationMembers[conversationID] != nil {
		delete(h.ConversationMembers[conversationID], userID)
	}
}

// SendToConversation sends a message to all members of a conversation
func (h *Hub) SendToConversation(conversationID uint, message *Message, excludeUserID uint) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("❌ Error marshaling message: %v", err)
		return
	}

	members := h.ConversationMembers[conversationID]
	if members == nil {
		return
	}

	for userID := range members {
		if userID == excludeUserID {
			continue // Skip the sender
		}

		client, exists := h.Clients[userID]
		if !exists {
			continue
		}

		select {
		case client.Send <- data:
		default:
			log.Printf("⚠️ User %d's send buffer is full", userID)
		}
	}
}

// IsUserConnected checks if a user is currently connected
func (h *Hub) IsUserConnected(userID uint) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, exists := h.Clients[userID]
	return exists
}

// handleChatMessage relays incoming chat messages to the conversation
func (h *Hub) handleChatMessage(client *Client, message *Message) error {
	h.SendToConversation(message.ConversationID, message, client.ID)
	return nil
}

// handleTypingIndicator relays typing indicators to the conversation
func (h *Hub) handleTypingIndicator(client *Client, message *Message) error {
	h.SendToConversation(message.ConversationID, message, client.ID)
	return nil
}

// handleReadReceipt relays read receipts to the conversation
func (h *Hub) handleReadReceipt(client *Client, message *Message) error {
	h.SendToConversation(message.ConversationID, message, client.ID)
	return nil
}

// handlePing handles ping messages for connection health
func (h *Hub) handlePing(client *Client, message *Message) error {
	pongMessage := &Message{
		Type:      "pong",
		Timestamp: time.Now(),
	}

	data, err := json.Marshal(pongMessage)
	if err != nil {
		return err
	}

	select {
	case client.Send <- data:
	default:
		log.Printf("⚠️ Could not send pong to user %d", client.ID)
	}

	return nil
}
