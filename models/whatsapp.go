package models

// Wire shapes for the WhatsApp bridge (Evolution-API style).

const (
	BridgeEventMessageUpsert = "messages.upsert"
	BridgeJidSuffix          = "@s.whatsapp.net"
	BridgeMessageType        = "conversation"
)

// BridgeMessage is the outbound payload posted to the bridge webhook when a
// user messages a model.
type BridgeMessage struct {
	Instance     string `json:"instance"`
	RemoteJid    string `json:"remoteJid"`
	FromMe       bool   `json:"fromMe"`
	PushName     string `json:"pushName"`
	Conversation string `json:"conversation"`
	MessageType  string `json:"messageType"`
	ModelID      uint   `json:"modelId"`
}

// BridgeEvent is an inbound bridge webhook event (a model replying from
// WhatsApp). Delivery is at-least-once; Data.Key.ID dedups retries.
type BridgeEvent struct {
	Event          string          `json:"event"`
	Frontend       string          `json:"frontend"`
	ModelAccountID uint            `json:"modelAccountId"`
	Data           BridgeEventData `json:"data"`
	Message        BridgeEventBody `json:"message"`
}

type BridgeEventData struct {
	Key BridgeEventKey `json:"key"`
}

type BridgeEventKey struct {
	ID        string `json:"id"`
	RemoteJid string `json:"remoteJid"`
	FromMe    *bool  `json:"fromMe"`
}

type BridgeEventBody struct {
	Conversation        string `json:"conversation"`
	ExtendedTextMessage struct {
		Text string `json:"text"`
	} `json:"extendedTextMessage"`
}

// Text returns the message body, preferring the plain conversation field.
func (b BridgeEventBody) Text() string {
	if b.Conversation != "" {
		return b.Conversation
	}
	return b.ExtendedTextMessage.Text
}

type PaymentWebhookRequest struct {
	TransactionID string                 `json:"transaction_id"`
	Status        string                 `json:"status"`
	Amount        float64                `json:"amount"`
	Metadata      map[string]interface{} `json:"metadata"`
}
