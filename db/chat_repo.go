package db

import (
	"github.com/amorlink/amorlink/models"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// ChatRepository owns the per-participant conversation records. Every logical
// message lives twice, once in each participant's Conversation; the two
// copies share a message id but keep independent read flags. No other
// component writes these tables.
type ChatRepository interface {
	AppendMessage(ownerID, peerID uint, msg models.ChatMessage) (*models.Conversation, error)
	AppendMessagePair(senderID, recipientID uint, msg models.ChatMessage) error
	MarkRead(ownerID, peerID uint) error
	ListConversations(ownerID uint) ([]models.Conversation, error)
	GetConversation(ownerID, peerID uint) ([]models.ChatMessage, error)
}

type chatRepo struct {
	DB *gorm.DB
}

func NewChatRepo(db *GormDB) ChatRepository {
	return &chatRepo{db.DB}
}

func (c *chatRepo) AppendMessage(ownerID, peerID uint, msg models.ChatMessage) (*models.Conversation, error) {
	var conv *models.Conversation
	err := c.DB.Transaction(func(tx *gorm.DB) error {
		var txErr error
		conv, txErr = appendMessageTx(tx, ownerID, peerID, msg)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return conv, nil
}

// AppendMessagePair writes the sender-side and recipient-side copies of one
// logical message in a single database transaction, so a logical send is
// never half-visible.
func (c *chatRepo) AppendMessagePair(senderID, recipientID uint, msg models.ChatMessage) error {
	return c.DB.Transaction(func(tx *gorm.DB) error {
		if _, err := appendMessageTx(tx, senderID, recipientID, msg); err != nil {
			return err
		}
		if _, err := appendMessageTx(tx, recipientID, senderID, msg); err != nil {
			return err
		}
		return nil
	})
}

func appendMessageTx(tx *gorm.DB, ownerID, peerID uint, msg models.ChatMessage) (*models.Conversation, error) {
	var conv models.Conversation
	err := tx.Where("owner_id = ? AND peer_id = ?", ownerID, peerID).First(&conv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		conv = models.Conversation{
			ID:            uuid.New(),
			OwnerID:       ownerID,
			PeerID:        peerID,
			LastMessageAt: msg.CreatedAt,
		}
		if err := tx.Create(&conv).Error; err != nil {
			return nil, errors.Wrap(err, "gorm.Create conversation error")
		}
	} else if err != nil {
		return nil, errors.Wrap(err, "gorm.First conversation error")
	}

	copy := msg
	copy.ConversationID = conv.ID
	copy.IsRead = false
	if err := tx.Create(&copy).Error; err != nil {
		return nil, errors.Wrap(err, "gorm.Create message error")
	}

	updates := map[string]interface{}{"last_message_at": msg.CreatedAt}
	if msg.SenderID != ownerID {
		updates["unread_count"] = gorm.Expr("unread_count + 1")
	}
	if err := tx.Model(&models.Conversation{}).Where("id = ?", conv.ID).Updates(updates).Error; err != nil {
		return nil, errors.Wrap(err, "gorm.Update conversation error")
	}
	return &conv, nil
}

// MarkRead flags every peer-sent message as read and resets the unread
// counter. A missing conversation is a no-op, and repeating the call changes
// nothing.
func (c *chatRepo) MarkRead(ownerID, peerID uint) error {
	var conv models.Conversation
	err := c.DB.Where("owner_id = ? AND peer_id = ?", ownerID, peerID).First(&conv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "gorm.First conversation error")
	}

	return c.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.ChatMessage{}).
			Where("conversation_id = ? AND sender_id <> ? AND is_read = ?", conv.ID, ownerID, false).
			Update("is_read", true).Error; err != nil {
			return errors.Wrap(err, "gorm.Update messages error")
		}
		return tx.Model(&models.Conversation{}).Where("id = ?", conv.ID).
			Update("unread_count", 0).Error
	})
}

func (c *chatRepo) ListConversations(ownerID uint) ([]models.Conversation, error) {
	var conversations []models.Conversation
	err := c.DB.Where("owner_id = ?", ownerID).
		Order("last_message_at DESC").
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Find(&conversations).Error
	if err != nil {
		return nil, errors.Wrap(err, "gorm.Find conversations error")
	}
	return conversations, nil
}

func (c *chatRepo) GetConversation(ownerID, peerID uint) ([]models.ChatMessage, error) {
	var conv models.Conversation
	err := c.DB.Where("owner_id = ? AND peer_id = ?", ownerID, peerID).First(&conv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return []models.ChatMessage{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "gorm.First conversation error")
	}

	var messages []models.ChatMessage
	err = c.DB.Where("conversation_id = ?", conv.ID).
		Order("created_at ASC").
		Find(&messages).Error
	if err != nil {
		return nil, errors.Wrap(err, "gorm.Find messages error")
	}
	return messages, nil
}
