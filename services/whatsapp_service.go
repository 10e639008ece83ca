package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/amorlink/amorlink/config"
	"github.com/amorlink/amorlink/db"
	apiError "github.com/amorlink/amorlink/errors"
	"github.com/amorlink/amorlink/models"
	"github.com/go-redis/redis/v8"
)

const (
	bridgeCountryPrefix = "55"
	bridgeDedupTTL      = 24 * time.Hour
)

// InboundMessage is a bridge event that survived classification: a model
// replying to a known client. BridgeMessageID is the bridge's id for the
// event, already claimed as the dedup marker.
type InboundMessage struct {
	Model           *models.User
	Client          *models.User
	Content         string
	BridgeMessageID string
}

// WhatsAppService is the bridge adapter. Outbound it translates a message
// into the bridge's wire shape; inbound it classifies webhook events and
// resolves the two participants. Delivery over the bridge is at-least-once,
// so inbound events are dedupped on the bridge message id.
type WhatsAppService interface {
	SendText(modelUserID, senderUserID uint, text string) error
	ClassifyInbound(ctx context.Context, event *models.BridgeEvent) (*InboundMessage, *apiError.Error)
	// ReleaseInbound clears the dedup marker of a classified event whose
	// delivery failed, so the bridge's retry is processed instead of
	// dropped.
	ReleaseInbound(ctx context.Context, bridgeMsgID string)
}

type whatsappService struct {
	Config   *config.Config
	authRepo db.AuthRepository
	rdb      *redis.Client
	client   *http.Client
}

func NewWhatsAppService(authRepo db.AuthRepository, rdb *redis.Client, conf *config.Config) WhatsAppService {
	return &whatsappService{
		Config:   conf,
		authRepo: authRepo,
		rdb:      rdb,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// SendText posts a user's message to the model's WhatsApp via the bridge
// webhook. Callers treat a failure as log-only: by the time this runs the
// message is already stored and delivered in-app.
func (w *whatsappService) SendText(modelUserID, senderUserID uint, text string) error {
	if w.Config.WhatsappWebhookURL == "" || w.Config.WhatsappInstance == "" {
		log.Println("whatsapp webhook not configured, skipping bridge send")
		return nil
	}

	sender, err := w.authRepo.FindUserByID(senderUserID)
	if err != nil {
		return fmt.Errorf("bridge sender %d not found: %w", senderUserID, err)
	}
	phone := models.NormalizePhone(sender.Phone)
	if phone == "" {
		return fmt.Errorf("bridge sender %d has no phone", senderUserID)
	}
	if !strings.HasPrefix(phone, bridgeCountryPrefix) {
		phone = bridgeCountryPrefix + phone
	}

	payload := models.BridgeMessage{
		Instance:     w.Config.WhatsappInstance,
		RemoteJid:    phone,
		FromMe:       false,
		PushName:     sender.Name,
		Conversation: text,
		MessageType:  models.BridgeMessageType,
		ModelID:      modelUserID,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, w.Config.WhatsappWebhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("bridge request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("bridge returned status %d", resp.StatusCode)
	}
	return nil
}

// ClassifyInbound runs the inbound discard chain in order. A (nil, nil)
// return means the event was dropped on purpose; an error means the event
// named participants we could not resolve. Nothing here mutates state except
// the dedup marker.
func (w *whatsappService) ClassifyInbound(ctx context.Context, event *models.BridgeEvent) (*InboundMessage, *apiError.Error) {
	if event.Event != models.BridgeEventMessageUpsert {
		log.Printf("bridge event ignored: %s", event.Event)
		return nil, nil
	}

	if event.Data.Key.FromMe == nil || *event.Data.Key.FromMe || event.Frontend != "true" {
		log.Println("bridge message ignored: fromMe or not destined for frontend")
		return nil, nil
	}

	content := event.Message.Text()
	if content == "" {
		log.Println("bridge message ignored: empty content")
		return nil, nil
	}

	if w.isDuplicate(ctx, event.Data.Key.ID) {
		log.Printf("bridge message %s already processed, dropping", event.Data.Key.ID)
		return nil, nil
	}

	model, err := w.authRepo.FindUserByID(event.ModelAccountID)
	if err != nil || model.Role != models.RoleModel {
		log.Printf("bridge model account %d not found", event.ModelAccountID)
		return nil, apiError.New("model not found", http.StatusNotFound)
	}

	phone := models.NormalizePhone(strings.TrimSuffix(event.Data.Key.RemoteJid, models.BridgeJidSuffix))
	client, err := w.authRepo.FindUserByPhone(phone)
	if err != nil && strings.HasPrefix(phone, bridgeCountryPrefix) {
		// jids carry the country code, stored phones may not
		client, err = w.authRepo.FindUserByPhone(strings.TrimPrefix(phone, bridgeCountryPrefix))
	}
	if err != nil {
		log.Printf("bridge client not found by phone %s", phone)
		return nil, apiError.New("client not found", http.StatusNotFound)
	}

	return &InboundMessage{
		Model:           model,
		Client:          client,
		Content:         content,
		BridgeMessageID: event.Data.Key.ID,
	}, nil
}

func (w *whatsappService) ReleaseInbound(ctx context.Context, bridgeMsgID string) {
	if w.rdb == nil || bridgeMsgID == "" {
		return
	}
	if err := w.rdb.Del(ctx, "wa:msg:"+bridgeMsgID).Err(); err != nil {
		log.Printf("failed to release bridge dedup marker %s: %v", bridgeMsgID, err)
	}
}

// isDuplicate marks the bridge message id as seen and reports whether it
// already was. Events without an id are processed as-is.
func (w *whatsappService) isDuplicate(ctx context.Context, bridgeMsgID string) bool {
	if w.rdb == nil || bridgeMsgID == "" {
		return false
	}
	set, err := w.rdb.SetNX(ctx, "wa:msg:"+bridgeMsgID, 1, bridgeDedupTTL).Result()
	if err != nil {
		log.Printf("bridge dedup check failed, processing anyway: %v", err)
		return false
	}
	return !set
}
