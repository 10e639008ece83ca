package server

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/amorlink/amorlink/models"
	"github.com/amorlink/amorlink/realtime"
	"github.com/amorlink/amorlink/services/jwt"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// cross-origin browsers are allowed; auth happens via the token
		return true
	},
}

type typingRequest struct {
	RecipientID uint `json:"recipient_id"`
	IsTyping    bool `json:"is_typing"`
}

type markReadRequest struct {
	PeerID uint `json:"peer_id"`
}

// handleWS authenticates the handshake, registers the participant in the
// presence registry and serves the event loop until the connection drops.
func (s *Server) handleWS() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			token = getTokenFromHeader(c)
		}
		if token == "" || s.AuthRepository.IsTokenInBlacklist(token) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		claims, err := jwt.ValidateAndGetClaims(token, s.Config.JWTSecret)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		idValue, ok := claims["id"].(float64)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid userID format"})
			return
		}
		user, err := s.AuthRepository.FindUserByID(uint(idValue))
		if err != nil || !user.IsActive {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("ws upgrade failed for user %d: %v", user.ID, err)
			return
		}

		client := realtime.NewClient(user.ID, conn)
		s.Hub.Register(client)
		s.setPresence(user, true)
		log.Printf("user %d connected", user.ID)

		go client.WritePump()
		client.ReadPump(func(event string, data json.RawMessage) {
			s.dispatchWSEvent(client, user, event, data)
		})

		s.Hub.Unregister(client)
		// on reconnect the fresh connection closes this one; only write
		// offline presence when no live connection remains
		if !s.Hub.IsOnline(user.ID) {
			s.setPresence(user, false)
		}
		log.Printf("user %d disconnected", user.ID)
	}
}

func (s *Server) setPresence(user *models.User, online bool) {
	if err := s.AuthRepository.UpdateUserOnlineStatus(user.ID, online); err != nil {
		log.Printf("failed to update online status for user %d: %v", user.ID, err)
	}
	if user.Role == models.RoleModel {
		if err := s.ModelService.SetOnline(user.ID, online); err != nil {
			log.Printf("failed to update model online status for user %d: %v", user.ID, err)
		}
	}
}

func (s *Server) dispatchWSEvent(client *realtime.Client, user *models.User, event string, data json.RawMessage) {
	switch event {
	case realtime.EventSendMessage:
		var req models.SendMessageRequest
		if err := json.Unmarshal(data, &req); err != nil {
			client.Enqueue(realtime.EventMessageError, gin.H{"message": "invalid send-message payload"})
			return
		}

		msg, insufficient, apiErr := s.ChatService.SendMessage(user.ID, req.RecipientID, req.Content, req.Type)
		if apiErr != nil {
			client.Enqueue(realtime.EventMessageError, gin.H{"message": apiErr.Message})
			return
		}
		if insufficient != nil {
			client.Enqueue(realtime.EventMessageError, gin.H{
				"message":              "insufficient credits",
				"insufficient_credits": true,
				"current_credits":      insufficient.CurrentCredits,
				"required_credits":     insufficient.RequiredCredits,
				"model_name":           insufficient.ModelName,
				"credits_url":          insufficient.CreditsURL,
			})
			return
		}
		// recipient push is handled inside the chat service
		client.Enqueue(realtime.EventMessageSent, gin.H{"message": msg})

	case realtime.EventTyping:
		var req typingRequest
		if err := json.Unmarshal(data, &req); err != nil {
			return
		}
		s.Hub.Send(req.RecipientID, realtime.EventUserTyping, gin.H{
			"user_id":   user.ID,
			"is_typing": req.IsTyping,
		})

	case realtime.EventMarkRead:
		var req markReadRequest
		if err := json.Unmarshal(data, &req); err != nil {
			return
		}
		if apiErr := s.ChatService.MarkRead(user.ID, req.PeerID); apiErr != nil {
			log.Printf("failed to mark conversation read over ws: %v", apiErr)
			return
		}
		client.Enqueue(realtime.EventMessagesRead, gin.H{"peer_id": req.PeerID})

	default:
		log.Printf("unknown ws event %q from user %d", event, user.ID)
	}
}
