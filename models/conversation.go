package models

import (
	"time"

	"github.com/google/uuid"
)

// Conversation is one participant's private view of their history with a
// single peer. A dialogue is always two Conversation rows, one per side,
// paired by (owner, peer). Messages append in order; rows are never deleted.
type Conversation struct {
	ID            uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID       uint          `gorm:"not null;uniqueIndex:idx_conversations_owner_peer" json:"owner_id"`
	PeerID        uint          `gorm:"not null;uniqueIndex:idx_conversations_owner_peer" json:"peer_id"`
	LastMessageAt time.Time     `json:"last_message_at"`
	UnreadCount   int           `gorm:"default:0" json:"unread_count"`
	Messages      []ChatMessage `gorm:"foreignKey:ConversationID" json:"messages,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// ChatMessage is one copy of a logical message inside a Conversation. The
// owner-side and peer-side copies share MessageID, sender, content, type and
// timestamp; IsRead is tracked per copy.
type ChatMessage struct {
	MessageID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ConversationID uuid.UUID `gorm:"type:uuid;primaryKey" json:"-"`
	SenderID       uint      `gorm:"not null" json:"sender_id"`
	Content        string    `gorm:"size:1000;not null" json:"content"`
	Type           string    `gorm:"type:varchar(10);default:text" json:"type"`
	CreditsCharged int       `gorm:"default:0" json:"credits_charged"`
	IsRead         bool      `gorm:"default:false" json:"is_read"`
	CreatedAt      time.Time `json:"created_at"`
}

const MaxMessageLength = 1000

const (
	MessageTypeText  = "text"
	MessageTypeImage = "image"
	MessageTypeAudio = "audio"
	MessageTypeVideo = "video"
)

func IsValidMessageType(t string) bool {
	switch t {
	case MessageTypeText, MessageTypeImage, MessageTypeAudio, MessageTypeVideo:
		return true
	}
	return false
}

type SendMessageRequest struct {
	RecipientID uint   `json:"recipient_id" binding:"required"`
	Content     string `json:"content" binding:"required,max=1000"`
	Type        string `json:"type"`
}

// InsufficientCredits is returned when the credit gate rejects a send,
// with enough detail for the client to prompt a top-up.
type InsufficientCredits struct {
	CurrentCredits  int    `json:"current_credits"`
	RequiredCredits int    `json:"required_credits"`
	ModelName       string `json:"model_name"`
	CreditsURL      string `json:"credits_url"`
}

// MessagePush is the live-connection payload for a newly delivered message.
type MessagePush struct {
	Message  ChatMessage `json:"message"`
	SenderID uint        `json:"sender_id"`
}

type PeerInfo struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Avatar   string `json:"avatar,omitempty"`
	Role     string `json:"role"`
	IsOnline bool   `json:"is_online"`
}

type ConversationSummary struct {
	Peer               PeerInfo  `json:"peer"`
	LastMessageAt      time.Time `json:"last_message_at"`
	UnreadCount        int       `json:"unread_count"`
	LastMessagePreview string    `json:"last_message_preview"`
}
