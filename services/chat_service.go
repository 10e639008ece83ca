package services

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/amorlink/amorlink/config"
	"github.com/amorlink/amorlink/db"
	apiError "github.com/amorlink/amorlink/errors"
	"github.com/amorlink/amorlink/models"
	"github.com/amorlink/amorlink/realtime"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ChatNotifier is the presence registry as seen by the chat service:
// best-effort push to a participant's live connection.
type ChatNotifier interface {
	Send(userID uint, event string, data interface{}) bool
	IsOnline(userID uint) bool
}

// BridgeSender is the outbound half of the WhatsApp bridge.
type BridgeSender interface {
	SendText(modelUserID, senderUserID uint, text string) error
}

// ChatService routes messages between participants: it gates priced sends,
// writes both conversation copies, and fans out to the bridge and the live
// connection. Both the HTTP handlers and the websocket handler call it
// directly.
type ChatService interface {
	SendMessage(senderID, recipientID uint, content, msgType string) (*models.ChatMessage, *models.InsufficientCredits, *apiError.Error)
	DeliverInbound(modelID, userID uint, content string) (*models.ChatMessage, *apiError.Error)
	MarkRead(ownerID, peerID uint) *apiError.Error
	ListConversations(ownerID uint) ([]models.ConversationSummary, *apiError.Error)
	GetConversation(ownerID, peerID uint) ([]models.ChatMessage, *apiError.Error)
}

type chatService struct {
	Config       *config.Config
	chatRepo     db.ChatRepository
	authRepo     db.AuthRepository
	modelService ModelService
	notifier     ChatNotifier
	bridge       BridgeSender
}

func NewChatService(chatRepo db.ChatRepository, authRepo db.AuthRepository, modelService ModelService,
	notifier ChatNotifier, bridge BridgeSender, conf *config.Config) ChatService {
	return &chatService{
		Config:       conf,
		chatRepo:     chatRepo,
		authRepo:     authRepo,
		modelService: modelService,
		notifier:     notifier,
		bridge:       bridge,
	}
}

// SendMessage delivers a live-connection-originated message. The credit gate
// runs before any write and only for model recipients; no conversation is
// touched on rejection. The two conversation copies are written together,
// then the bridge and the live push happen asynchronously and never fail the
// send.
func (cs *chatService) SendMessage(senderID, recipientID uint, content, msgType string) (*models.ChatMessage, *models.InsufficientCredits, *apiError.Error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, nil, apiError.New("recipient and content are required", http.StatusBadRequest)
	}
	if len(content) > models.MaxMessageLength {
		return nil, nil, apiError.New("message is too long", http.StatusBadRequest)
	}
	if msgType == "" {
		msgType = models.MessageTypeText
	}
	if !models.IsValidMessageType(msgType) {
		return nil, nil, apiError.New("invalid message type", http.StatusBadRequest)
	}

	sender, err := cs.authRepo.FindUserByID(senderID)
	if err != nil {
		return nil, nil, apiError.New("sender not found", http.StatusNotFound)
	}
	recipient, err := cs.authRepo.FindUserByID(recipientID)
	if err != nil {
		return nil, nil, apiError.New("recipient not found", http.StatusNotFound)
	}

	isRecipientModel := recipient.Role == models.RoleModel
	if isRecipientModel {
		price, modelName, apiErr := cs.modelService.PriceForModel(recipientID)
		switch {
		case apiErr == nil:
			decision := Gate(sender.Credits, recipient.Role, price)
			if !decision.Admitted {
				log.Printf("insufficient credits: user %d has %d, needs %d", senderID, decision.Current, decision.Required)
				return nil, &models.InsufficientCredits{
					CurrentCredits:  decision.Current,
					RequiredCredits: decision.Required,
					ModelName:       modelName,
					CreditsURL:      cs.creditsURL(),
				}, nil
			}
		case apiErr.Status == http.StatusNotFound:
			// model account without a catalog profile, the send is free
		default:
			log.Printf("failed to resolve price for model %d: %v", recipientID, apiErr)
			return nil, nil, apiError.ErrInternalServerError
		}
	}

	msg := models.ChatMessage{
		MessageID: uuid.New(),
		SenderID:  senderID,
		Content:   content,
		Type:      msgType,
		// the actual charge is applied by the payment ledger, not here
		CreditsCharged: 0,
		CreatedAt:      time.Now().UTC(),
	}

	if err := cs.chatRepo.AppendMessagePair(senderID, recipientID, msg); err != nil {
		log.Printf("failed to store message from %d to %d: %v", senderID, recipientID, err)
		return nil, nil, apiError.New("failed to send message", http.StatusInternalServerError)
	}

	if isRecipientModel && cs.bridge != nil {
		go func() {
			if err := cs.bridge.SendText(recipientID, senderID, content); err != nil {
				log.Printf("whatsapp send failed (non-critical): %v", err)
			}
		}()
	}

	cs.notifier.Send(recipientID, realtime.EventReceiveMessage, models.MessagePush{
		Message:  msg,
		SenderID: senderID,
	})

	return &msg, nil, nil
}

// DeliverInbound is the bridge-originated variant: a model replying from
// WhatsApp. No credit gate applies and nothing goes back out over the
// bridge.
func (cs *chatService) DeliverInbound(modelID, userID uint, content string) (*models.ChatMessage, *apiError.Error) {
	msg := models.ChatMessage{
		MessageID:      uuid.New(),
		SenderID:       modelID,
		Content:        content,
		Type:           models.MessageTypeText,
		CreditsCharged: 0,
		CreatedAt:      time.Now().UTC(),
	}

	if err := cs.chatRepo.AppendMessagePair(modelID, userID, msg); err != nil {
		log.Printf("failed to store inbound bridge message from %d to %d: %v", modelID, userID, err)
		return nil, apiError.New("failed to store message", http.StatusInternalServerError)
	}

	cs.notifier.Send(userID, realtime.EventReceiveMessage, models.MessagePush{
		Message:  msg,
		SenderID: modelID,
	})

	return &msg, nil
}

func (cs *chatService) MarkRead(ownerID, peerID uint) *apiError.Error {
	if err := cs.chatRepo.MarkRead(ownerID, peerID); err != nil {
		log.Printf("failed to mark conversation read for %d/%d: %v", ownerID, peerID, err)
		return apiError.ErrInternalServerError
	}
	return nil
}

func (cs *chatService) ListConversations(ownerID uint) ([]models.ConversationSummary, *apiError.Error) {
	conversations, err := cs.chatRepo.ListConversations(ownerID)
	if err != nil {
		log.Printf("failed to list conversations for %d: %v", ownerID, err)
		return nil, apiError.ErrInternalServerError
	}

	summaries := make([]models.ConversationSummary, 0, len(conversations))
	for _, conv := range conversations {
		peer, err := cs.authRepo.FindUserByID(conv.PeerID)
		if err != nil {
			// orphaned conversation, skip rather than fail the listing
			continue
		}

		info := models.PeerInfo{
			ID:       peer.ID,
			Name:     peer.Name,
			Avatar:   peer.Avatar,
			Role:     peer.Role,
			IsOnline: cs.notifier.IsOnline(peer.ID),
		}
		if peer.Role == models.RoleModel {
			if profile, err := cs.modelService.ProfileForUser(peer.ID); err == nil {
				info.Name = profile.Name
				info.Avatar = profile.CoverPhoto
				info.IsOnline = profile.IsOnline
			}
		}

		preview := ""
		if n := len(conv.Messages); n > 0 {
			preview = conv.Messages[n-1].Content
		}

		summaries = append(summaries, models.ConversationSummary{
			Peer:               info,
			LastMessageAt:      conv.LastMessageAt,
			UnreadCount:        conv.UnreadCount,
			LastMessagePreview: preview,
		})
	}
	return summaries, nil
}

func (cs *chatService) GetConversation(ownerID, peerID uint) ([]models.ChatMessage, *apiError.Error) {
	messages, err := cs.chatRepo.GetConversation(ownerID, peerID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return []models.ChatMessage{}, nil
		}
		log.Printf("failed to load conversation %d/%d: %v", ownerID, peerID, err)
		return nil, apiError.ErrInternalServerError
	}
	return messages, nil
}

func (cs *chatService) creditsURL() string {
	frontend := cs.Config.FrontendURL
	if i := strings.Index(frontend, ","); i >= 0 {
		frontend = frontend[:i]
	}
	return strings.TrimSpace(frontend) + "/credits"
}
